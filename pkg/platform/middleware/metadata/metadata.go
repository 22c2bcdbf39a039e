package metadata

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"smartbin/pkg/requestcontext"
)

// ClientMetadata extracts client IP, User-Agent and a device label from the
// request and adds them to the context. Apply it early in the chain.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua := r.Header.Get("User-Agent")
		ctx := requestcontext.WithClientMetadata(r.Context(), ClientIPFromRequest(r), ua, DeviceLabel(ua))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// DeviceLabel renders a short "<browser> on <os>" label for a User-Agent.
func DeviceLabel(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return "Unknown Device"
	}
	ua := useragent.New(userAgent)
	browser, _ := ua.Browser()
	if browser == "" {
		browser = "Unknown Browser"
	}
	platform := ua.OS()
	if platform == "" {
		platform = ua.Platform()
	}
	if platform == "" {
		platform = "Unknown OS"
	}
	if ua.Mobile() && !strings.Contains(platform, "Mobile") {
		platform += " (mobile)"
	}
	return strings.TrimSpace(fmt.Sprintf("%s on %s", browser, platform))
}

// ClientIPFromRequest extracts the real client IP, honouring proxy headers.
func ClientIPFromRequest(r *http.Request) string {
	// X-Forwarded-For may hold a chain; the first hop is the client.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// RemoteAddr is "ip:port" or "[::1]:port".
	if addr := r.RemoteAddr; addr != "" {
		if idx := strings.LastIndex(addr, ":"); idx != -1 {
			return strings.Trim(addr[:idx], "[]")
		}
		return addr
	}

	return "unknown"
}
