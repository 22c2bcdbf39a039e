package request

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	t.Run("propagates inbound id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderRequestID, "abc-123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, "abc-123", seen)
		assert.Equal(t, "abc-123", rec.Header().Get(HeaderRequestID))
	})

	t.Run("mints id when missing or oversized", func(t *testing.T) {
		for _, inbound := range []string{"", strings.Repeat("x", maxInboundIDLen+1)} {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(HeaderRequestID, inbound)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.NotEmpty(t, seen)
			assert.NotEqual(t, inbound, seen)
			assert.Equal(t, seen, rec.Header().Get(HeaderRequestID))
		}
	})
}
