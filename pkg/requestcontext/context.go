// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// Middleware sets these values; services read them without importing net/http.
//
//	identityID := requestcontext.IdentityID(ctx)
//	now := requestcontext.Now(ctx)
//
// Tests inject values directly:
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"
)

type (
	identityIDKey  struct{}
	roleKey        struct{}
	clientIPKey    struct{}
	userAgentKey   struct{}
	deviceKey      struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// -----------------------------------------------------------------------------
// Identity (populated from verified session claims)
// -----------------------------------------------------------------------------

// IdentityID returns the authenticated identity id, or "" when unauthenticated.
func IdentityID(ctx context.Context) string {
	if v, ok := ctx.Value(identityIDKey{}).(string); ok {
		return v
	}
	return ""
}

// Role returns the role asserted by the session credential, or "".
func Role(ctx context.Context) string {
	if v, ok := ctx.Value(roleKey{}).(string); ok {
		return v
	}
	return ""
}

// WithIdentity injects the authenticated identity id and role.
func WithIdentity(ctx context.Context, identityID, role string) context.Context {
	ctx = context.WithValue(ctx, identityIDKey{}, identityID)
	return context.WithValue(ctx, roleKey{}, role)
}

// -----------------------------------------------------------------------------
// Client metadata (IP, User-Agent, device label)
// -----------------------------------------------------------------------------

func ClientIP(ctx context.Context) string {
	if v, ok := ctx.Value(clientIPKey{}).(string); ok {
		return v
	}
	return ""
}

func UserAgent(ctx context.Context) string {
	if v, ok := ctx.Value(userAgentKey{}).(string); ok {
		return v
	}
	return ""
}

// Device returns the human-readable device label derived from the User-Agent.
func Device(ctx context.Context) string {
	if v, ok := ctx.Value(deviceKey{}).(string); ok {
		return v
	}
	return ""
}

// WithClientMetadata injects client IP, User-Agent and device label.
// Useful for service unit tests that don't run the full HTTP middleware chain.
func WithClientMetadata(ctx context.Context, clientIP, userAgent, device string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey{}, clientIP)
	ctx = context.WithValue(ctx, userAgentKey{}, userAgent)
	return context.WithValue(ctx, deviceKey{}, device)
}

// -----------------------------------------------------------------------------
// Request metadata
// -----------------------------------------------------------------------------

func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() outside HTTP requests (workers, tests, CLI).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
