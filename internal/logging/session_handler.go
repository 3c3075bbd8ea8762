package logging

import (
	"context"
	"log/slog"
)

// FieldSessionID is the structured logging key that ties together every record
// written by one CLI invocation.
const FieldSessionID = "session_id"

// sessionIDHandler stamps session_id onto records as they are handled so it
// stays a top-level key even inside groups.
type sessionIDHandler struct {
	base      slog.Handler
	sessionID string
}

func newSessionIDHandler(base slog.Handler, sessionID string) slog.Handler {
	if base == nil {
		return NoopHandler{}
	}
	return &sessionIDHandler{base: base, sessionID: sessionID}
}

func (h *sessionIDHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

func (h *sessionIDHandler) Handle(ctx context.Context, record slog.Record) error {
	record.AddAttrs(slog.String(FieldSessionID, h.sessionID))
	return h.base.Handle(ctx, record)
}

func (h *sessionIDHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return newSessionIDHandler(h.base.WithAttrs(attrs), h.sessionID)
}

func (h *sessionIDHandler) WithGroup(name string) slog.Handler {
	return newSessionIDHandler(h.base.WithGroup(name), h.sessionID)
}
