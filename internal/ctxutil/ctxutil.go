// Copyright (c) 2026 FractalDB Authors. All rights reserved.

// Package ctxutil carries a structured logger through a [context.Context] so
// that deeply nested collection operations can log with request-scoped
// fields without threading a *slog.Logger through every call site.
package ctxutil

import (
	"context"
	"log/slog"
)

// key is an unexported type so FractalDB's context keys never collide with
// keys set by other packages sharing the same context.
type key string

// keyLogger is the context key for the per-operation [*slog.Logger].
const keyLogger key = "fractaldb_logger"

// WithLogger returns a new context carrying logger, to be picked up by
// [LoggerFrom] at the point an operation emits a log record.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, keyLogger, logger)
}

// LoggerFrom retrieves the logger attached to ctx, falling back to
// [slog.Default] if none was attached.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(keyLogger).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}
