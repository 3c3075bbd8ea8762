// Package logging assembles structured slog loggers and formatting helpers used
// across watchlog.
//
// It owns the configurable console/JSON handlers, the rotating log file sink,
// and the session handler that stamps every record of one CLI invocation with
// the same session_id. The package also provides a no-op logger for tests and
// wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits records with the same shape and routing.
package logging
