package slogx

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// WithContext stores a logger in the context. The transport stamps its
// configured logger here so hooks and nested calls share one request-scoped
// logger.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the logger stored in the context. A context without
// one yields the discard logger: the SDK never falls back to the process
// default, logging is strictly opt-in.
func FromContext(ctx context.Context) *slog.Logger {
	l, ok := ctx.Value(ctxKey{}).(*slog.Logger)
	if !ok {
		return Discard()
	}
	return l
}

// WithRequestID re-stores the context logger with the request ID attached,
// so every line logged for the request carries req_id.
func WithRequestID(ctx context.Context, reqID string) context.Context {
	l := FromContext(ctx)
	return WithContext(ctx, l.With("req_id", reqID))
}
