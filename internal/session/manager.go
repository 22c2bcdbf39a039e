// Package session issues and verifies the signed, time-limited credentials
// that carry identity claims between requests. Verification is stateless:
// nothing is stored server-side, and the credential store is never consulted.
package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"smartbin/internal/identity/models"
	dErrors "smartbin/pkg/domain-errors"
)

// DefaultTTL is the credential lifetime.
const DefaultTTL = 7 * 24 * time.Hour

// Claims asserts an identity as of issuance.
type Claims struct {
	IdentityID string      `json:"id"`
	Email      string      `json:"email"`
	Name       string      `json:"name"`
	Role       models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Manager handles credential creation and validation.
type Manager struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
	clock      func() time.Time
}

type Option func(*Manager)

// WithTTL overrides the credential lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithClock sets the time source used for issuance and expiry checks.
func WithClock(clock func() time.Time) Option {
	return func(m *Manager) {
		if clock != nil {
			m.clock = clock
		}
	}
}

func NewManager(signingKey, issuer string, opts ...Option) *Manager {
	m := &Manager{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		ttl:        DefaultTTL,
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// TTL returns the configured credential lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue mints a signed credential embedding {id, email, name, role}.
func (m *Manager) Issue(identity *models.Identity) (string, error) {
	if identity == nil || identity.ID == "" {
		return "", dErrors.New(dErrors.CodeInternal, "cannot issue credential without identity")
	}
	now := m.clock()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		IdentityID: identity.ID,
		Email:      identity.Email,
		Name:       identity.Name,
		Role:       identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			ID:        uuid.NewString(),
		},
	})

	signed, err := token.SignedString(m.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign credential")
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the embedded claims.
// Expired credentials fail with CodeTokenExpired, everything else with
// CodeUnauthorized.
func (m *Manager) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing token")
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return m.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.clock),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeTokenExpired, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.IdentityID == "" || !claims.Role.IsValid() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// RequireRole rejects claims whose role differs from the required role.
func RequireRole(claims *Claims, role models.Role) error {
	if claims == nil {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if claims.Role != role {
		return dErrors.New(dErrors.CodeForbidden, "forbidden")
	}
	return nil
}
