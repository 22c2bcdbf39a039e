package testutil

import (
	"net/http"
	"time"

	"smartbin/pkg/requestcontext"
)

// AsIdentity marks the request as authenticated, the way RequireAuth would.
func AsIdentity(req *http.Request, identityID, role string) *http.Request {
	return req.WithContext(requestcontext.WithIdentity(req.Context(), identityID, role))
}

// At pins the request time seen by handlers.
func At(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}
