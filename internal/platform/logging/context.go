package logging

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

var defaultLogger = slog.Default()

// FromContext returns the request logger stored in ctx, or the default
// logger when there is none.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return defaultLogger
	}

	if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return logger
	}

	return defaultLogger
}

// WithContext stores a logger in the context.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// WithAttrs returns a context whose logger carries attrs on every record.
func WithAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}

	return WithContext(ctx, FromContext(ctx).With(args...))
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return WithAttrs(ctx, slog.String("request_id", requestID))
}

func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return WithAttrs(ctx, slog.String("correlation_id", correlationID))
}

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return WithAttrs(ctx, slog.String("trace_id", traceID))
}

// SetDefault sets the logger used when a context carries none.
func SetDefault(logger *slog.Logger) {
	defaultLogger = logger
	slog.SetDefault(logger)
}

// Trace logs at LevelTrace with the logger stored in ctx.
func Trace(ctx context.Context, msg string, attrs ...slog.Attr) {
	FromContext(ctx).LogAttrs(ctx, LevelTrace, msg, attrs...)
}
