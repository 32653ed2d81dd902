package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey int

const loggerKey contextKey = iota

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the logger from context, or returns the default logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return Default()
	}

	if logger, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok && logger != nil {
		return logger
	}

	return Default()
}

// Ctx is a shorter alias for FromContext.
func Ctx(ctx context.Context) *zerolog.Logger {
	return FromContext(ctx)
}

// WithFields adds structured fields to the logger in the context.
func WithFields(ctx context.Context, fields map[string]any) context.Context {
	logger := FromContext(ctx).With().Fields(fields).Logger()
	return WithLogger(ctx, &logger)
}

// WithField adds a single field to the logger in the context.
func WithField(ctx context.Context, key string, value any) context.Context {
	logger := FromContext(ctx).With().Fields([]any{key, value}).Logger()
	return WithLogger(ctx, &logger)
}

// WithReach adds the reach identifier to the logger.
func WithReach(ctx context.Context, reachID int64) context.Context {
	logger := FromContext(ctx).With().Int64("reach_id", reachID).Logger()
	return WithLogger(ctx, &logger)
}

// WithAlgorithm adds the FLPE algorithm name to the logger.
func WithAlgorithm(ctx context.Context, algorithm string) context.Context {
	return WithField(ctx, "algorithm", algorithm)
}

// WithRunType adds the requested run type to the logger.
func WithRunType(ctx context.Context, runType string) context.Context {
	return WithField(ctx, "run_type", runType)
}

// WithLayout adds the FLPE storage layout to the logger.
func WithLayout(ctx context.Context, layout string) context.Context {
	return WithField(ctx, "layout", layout)
}

// WithOperation adds operation context to the logger.
func WithOperation(ctx context.Context, operation string) context.Context {
	return WithField(ctx, "operation", operation)
}
