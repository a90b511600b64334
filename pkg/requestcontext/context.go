// Package requestcontext provides HTTP-independent context accessors for
// request- and run-scoped values.
//
// Values are typically set by HTTP middleware or the pipeline service but
// consumed by services and stores. Keeping this package free of net/http
// dependencies lets workers and CLI paths use the same accessors.
//
// Usage in services (read values):
//
//	requestID := requestcontext.RequestID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"

	"mindcast/pkg/domain"
)

// Context key types (unexported for encapsulation).
type (
	requestIDKey   struct{}
	requestTimeKey struct{}
	runIDKey       struct{}
)

// Exported context keys for tests that need context.WithValue directly.
var (
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
	ContextKeyRunID       = runIDKey{}
)

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// RunID retrieves the pipeline run ID from the context.
// Returns the zero value if not set.
func RunID(ctx context.Context) domain.RunID {
	if runID, ok := ctx.Value(ContextKeyRunID).(domain.RunID); ok {
		return runID
	}
	return domain.RunID{}
}

// WithRunID injects a pipeline run ID into the context so stage code and
// external clients can tag logs and events with the run they belong to.
func WithRunID(ctx context.Context, runID domain.RunID) context.Context {
	return context.WithValue(ctx, ContextKeyRunID, runID)
}

// Now retrieves the request- or run-scoped time from context.
// Falls back to time.Now() if not set (for non-HTTP contexts like the
// scheduler, CLI, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
// Useful for:
//   - Service unit tests that don't run the full HTTP middleware chain
//   - The scheduler, which pins one time for a whole run
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
