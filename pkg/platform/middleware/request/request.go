// Package request assigns a correlation id to every inbound request.
package request

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"smartbin/pkg/requestcontext"
)

// HeaderRequestID is echoed on every response.
const HeaderRequestID = "X-Request-ID"

// maxInboundIDLen caps caller-provided ids so they stay log-safe.
const maxInboundIDLen = 128

// RequestID reuses a caller-provided X-Request-ID when sane, otherwise mints one.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(HeaderRequestID))
		if id == "" || len(id) > maxInboundIDLen {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(requestcontext.WithRequestID(r.Context(), id)))
	})
}

// GetRequestID retrieves the request id from the context.
func GetRequestID(ctx context.Context) string {
	return requestcontext.RequestID(ctx)
}
