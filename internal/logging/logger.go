// Package logging defines the structured-logging contract shared by the
// server and its tools. The rest of the code depends on this interface,
// not on a concrete logging backend.
package logging

import "context"

// Logger logs structured, context-aware messages. Variadic args are
// alternating key-value pairs:
//
//	log.Info(ctx, "portfolio submitted", "candidate_id", id, "storage_key", key)
type Logger interface {
	// Info records normal operational events.
	Info(ctx context.Context, msg string, args ...any)

	// Warn records conditions that need attention but do not fail the
	// operation.
	Warn(ctx context.Context, msg string, args ...any)

	// Error records failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a derived logger carrying the given key-value pairs on
	// every record.
	With(args ...any) Logger
}
