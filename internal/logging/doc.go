// Package logging assembles structured slog loggers and formatting helpers used
// across janitor components.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, defines the standard field keys (component, run_id, event_type,
// decision_*), and prunes old per-run log files. A no-op logger is provided
// for tests and wiring code that cannot fail.
package logging
