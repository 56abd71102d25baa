// Package logging abstracts the structured logger the server code writes
// to, so the backing implementation (slog today) can change without
// touching callers.
package logging

import "context"

// Logger writes leveled, structured log records. Args are alternating
// key/value pairs appended to the record:
//
//	log.Info(ctx, "blob stored", "key", key, "size", len(data))
type Logger interface {
	// Info records routine operational events.
	Info(ctx context.Context, msg string, args ...any)

	// Warn records conditions that are recoverable but worth noticing.
	Warn(ctx context.Context, msg string, args ...any)

	// Error records failed operations.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a logger that stamps every record with the given pairs.
	With(args ...any) Logger
}
