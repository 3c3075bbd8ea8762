package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestSessionIDHandler(t *testing.T) {
	var buf bytes.Buffer
	handler := newSessionIDHandler(slog.NewJSONHandler(&buf, nil), "session-abc")

	slog.New(handler).With("extra", "value").Info("test message")

	output := buf.String()
	if !strings.Contains(output, `"session_id":"session-abc"`) {
		t.Errorf("expected session_id in output, got: %s", output)
	}
	if !strings.Contains(output, `"extra":"value"`) {
		t.Errorf("expected extra attr in output, got: %s", output)
	}
}

func TestSessionIDHandlerNilBase(t *testing.T) {
	handler := newSessionIDHandler(nil, "session-123")
	if _, ok := handler.(NoopHandler); !ok {
		t.Errorf("expected NoopHandler when base is nil, got: %T", handler)
	}
}

func TestPrettyHandlerHidesSessionAndComponent(t *testing.T) {
	var buf bytes.Buffer
	level := new(slog.LevelVar)
	handler := newSessionIDHandler(newPrettyHandler(&buf, level, false), "session-xyz")

	logger := slog.New(handler).With(FieldComponent, "watchlog")
	logger.Info("repaired open records", "series_id", "6", "note", "two words")

	line := buf.String()
	if strings.Contains(line, "session-xyz") {
		t.Fatalf("expected console line without session id, got %q", line)
	}
	if !strings.Contains(line, "INFO watchlog: repaired open records") {
		t.Fatalf("expected level, component and message, got %q", line)
	}
	if !strings.Contains(line, `series_id=6`) || !strings.Contains(line, `note="two words"`) {
		t.Fatalf("expected formatted attrs, got %q", line)
	}
}

func TestFanoutHandlerRespectsChildLevels(t *testing.T) {
	var quiet, loud bytes.Buffer
	warnLevel := new(slog.LevelVar)
	warnLevel.Set(slog.LevelWarn)
	debugLevel := new(slog.LevelVar)
	debugLevel.Set(slog.LevelDebug)

	logger := slog.New(newFanoutHandler(
		newPrettyHandler(&quiet, warnLevel, false),
		newJSONHandler(&loud, debugLevel, false),
	))
	logger.Info("only in json")
	logger.Warn("in both")

	if strings.Contains(quiet.String(), "only in json") {
		t.Fatalf("warn handler received info record: %q", quiet.String())
	}
	if !strings.Contains(quiet.String(), "in both") {
		t.Fatalf("warn handler missed warn record: %q", quiet.String())
	}
	if strings.Count(loud.String(), "\n") != 2 {
		t.Fatalf("expected two json records, got %q", loud.String())
	}
}
