// Package requesttime pins a single "now" per request so the cooldown check,
// the credited scan timestamp and the audit trail all agree.
package requesttime

import (
	"net/http"
	"time"

	"smartbin/pkg/requestcontext"
)

// Clock returns the current instant. Tests substitute a fixed clock.
type Clock func() time.Time

// Middleware captures the current time at the start of the request.
func Middleware(next http.Handler) http.Handler {
	return WithClock(time.Now)(next)
}

// WithClock builds the middleware around an explicit clock.
func WithClock(clock Clock) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithTime(r.Context(), clock())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
