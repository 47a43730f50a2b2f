package infrastructure

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

type contextKey string

// RunIDContextKey is the context key holding the id of the current command
// or request.
const RunIDContextKey contextKey = "run_id"

// GenerateRunID creates a new unique run ID using UUID v4
func GenerateRunID() string {
	return uuid.New().String()
}

// WithRunID adds a run ID to the context
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDContextKey, runID)
}

// RunIDFromContext returns the run ID, or "" when none is set.
func RunIDFromContext(ctx context.Context) string {
	if runID, ok := ctx.Value(RunIDContextKey).(string); ok {
		return runID
	}
	return ""
}

// EnsureRunID ensures the context has a run ID, generating one if needed
func EnsureRunID(ctx context.Context) context.Context {
	if RunIDFromContext(ctx) == "" {
		return WithRunID(ctx, GenerateRunID())
	}
	return ctx
}

// WithComponent creates a logger with a component field
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	return logger.With("component", component)
}

// WithError creates a logger with an error field
func WithError(logger *slog.Logger, err error) *slog.Logger {
	if err == nil {
		return logger
	}
	return logger.With("error", err.Error())
}
