// Package requestcontext carries request-scoped values (request ID, authenticated
// principal, request time) through context.Context.
package requestcontext

import (
	"context"
	"time"

	id "zkid/pkg/domain"
)

type (
	contextKeyRequestID   struct{}
	contextKeyPrincipal   struct{}
	contextKeyRequestTime struct{}
)

// WithRequestID stores the correlation ID for the current request.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID{}, requestID)
}

// RequestID returns the correlation ID, or "" outside a request.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(contextKeyRequestID{}).(string); ok {
		return v
	}
	return ""
}

// WithPrincipal stores the authenticated caller.
func WithPrincipal(ctx context.Context, p id.Principal) context.Context {
	return context.WithValue(ctx, contextKeyPrincipal{}, p)
}

// Principal returns the authenticated caller, or "" when unauthenticated.
func Principal(ctx context.Context) id.Principal {
	if v, ok := ctx.Value(contextKeyPrincipal{}).(id.Principal); ok {
		return v
	}
	return ""
}

// WithTime injects a specific time into a context.
// Useful for service unit tests that don't run the HTTP middleware chain.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, contextKeyRequestTime{}, t)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set (workers, CLI, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(contextKeyRequestTime{}).(time.Time); ok {
		return t
	}
	return time.Now()
}
