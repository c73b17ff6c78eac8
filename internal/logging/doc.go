// Package logging assembles structured slog loggers and formatting helpers used
// across folio.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and stamps every record of a run with a session identifier so a
// transcript can be correlated with the summary printed at the end. The
// package also provides a no-op logger for tests and wiring code that cannot
// fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape.
package logging
