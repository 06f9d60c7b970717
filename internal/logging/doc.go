// Package logging assembles structured slog loggers and formatting helpers used
// across podmatch.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so API calls can tag log lines
// with their request identifier. Credential-bearing attributes are redacted
// before they reach any handler. The package also provides a no-op logger for
// tests and wiring code that cannot fail.
package logging
