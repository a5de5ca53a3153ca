// Package logging defines the structured-logging interface used across the
// sync engine. The only implementation wraps log/slog, but repositories and
// the orchestrator depend on the interface so tests can plug anything in.
package logging

import "context"

// Logger is a context-aware, structured logger. Variadic args are key-value
// pairs:
//
//	log.Info(ctx, "page applied", "entity", "customers", "part", 3)
type Logger interface {
	// Debug logs detail useful only when diagnosing a sync run.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs normal progress.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs unusual but non-fatal conditions (e.g. a skipped record).
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given pairs.
	With(args ...any) Logger
}
