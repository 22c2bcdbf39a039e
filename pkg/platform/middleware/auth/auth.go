package auth

import (
	"log/slog"
	"net/http"
	"strings"

	dErrors "smartbin/pkg/domain-errors"
	"smartbin/pkg/platform/httputil"
	request "smartbin/pkg/platform/middleware/request"
	"smartbin/pkg/requestcontext"
)

// CookieName is the cookie carrying the session credential for browser clients.
const CookieName = "token"

// TokenVerifier validates a presented credential.
type TokenVerifier interface {
	VerifyToken(token string) (*Claims, error)
}

// RoleAuthorizer decides whether verified claims satisfy a required role.
type RoleAuthorizer interface {
	AuthorizeRole(claims *Claims, role string) error
}

// Authenticator verifies credentials and authorizes roles.
type Authenticator interface {
	TokenVerifier
	RoleAuthorizer
}

// Claims is the subset of session claims the middleware forwards downstream.
type Claims struct {
	IdentityID string
	Role       string
}

// TokenFromRequest reads the credential from the session cookie, falling back
// to an Authorization: Bearer header.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	const bearerPrefix = "Bearer "
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix); ok {
		return strings.TrimSpace(after)
	}
	return ""
}

// RequireAuth rejects requests without a valid credential and places the
// verified identity id and role in the context.
func RequireAuth(verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token := TokenFromRequest(r)
			if token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", request.GetRequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "no token, authorization denied"))
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", request.GetRequestID(ctx),
				)
				httputil.WriteError(w, err)
				return
			}

			ctx = requestcontext.WithIdentity(ctx, claims.IdentityID, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole admits only requests whose verified claims satisfy role
// according to authorizer. Must run after RequireAuth.
func RequireRole(authorizer RoleAuthorizer, role string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			var claims *Claims
			if id := requestcontext.IdentityID(ctx); id != "" {
				claims = &Claims{IdentityID: id, Role: requestcontext.Role(ctx)}
			}
			if err := authorizer.AuthorizeRole(claims, role); err != nil {
				logger.WarnContext(ctx, "forbidden - role mismatch",
					"identity_id", requestcontext.IdentityID(ctx),
					"required_role", role,
					"request_id", request.GetRequestID(ctx),
				)
				httputil.WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
