package session

import (
	"smartbin/internal/identity/models"
	authmw "smartbin/pkg/platform/middleware/auth"
)

// ToMiddlewareClaims narrows session claims to what the auth middleware needs.
func ToMiddlewareClaims(claims *Claims) *authmw.Claims {
	return &authmw.Claims{
		IdentityID: claims.IdentityID,
		Role:       string(claims.Role),
	}
}

// MiddlewareAdapter exposes a Manager as an authmw.Authenticator.
type MiddlewareAdapter struct {
	manager *Manager
}

func NewMiddlewareAdapter(manager *Manager) *MiddlewareAdapter {
	return &MiddlewareAdapter{manager: manager}
}

func (a *MiddlewareAdapter) VerifyToken(token string) (*authmw.Claims, error) {
	claims, err := a.manager.Verify(token)
	if err != nil {
		return nil, err
	}
	return ToMiddlewareClaims(claims), nil
}

// AuthorizeRole applies RequireRole to claims forwarded by the middleware.
func (a *MiddlewareAdapter) AuthorizeRole(claims *authmw.Claims, role string) error {
	if claims == nil {
		return RequireRole(nil, models.Role(role))
	}
	return RequireRole(&Claims{IdentityID: claims.IdentityID, Role: models.Role(claims.Role)}, models.Role(role))
}
