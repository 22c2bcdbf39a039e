// Package service implements signup, login and identity resolution.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"smartbin/internal/identity/models"
	"smartbin/internal/identity/secrets"
	"smartbin/internal/platform/metrics"
	"smartbin/internal/platform/observability"
	dErrors "smartbin/pkg/domain-errors"
	audit "smartbin/pkg/platform/audit"
	"smartbin/pkg/platform/sentinel"
)

// msgInvalidCredentials is shared by unknown-email and wrong-password
// outcomes so the response never reveals which one happened.
const msgInvalidCredentials = "Invalid credentials"

type Service struct {
	store          Store
	hasher         PasswordHasher
	tokens         TokenIssuer
	auditPublisher AuditPublisher
	logger         *slog.Logger
	metrics        *metrics.Metrics
	clock          func() time.Time
	newID          func() string

	decoyOnce sync.Once
	decoyHash string
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

// WithIDGenerator overrides uuid-based identity ids.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		s.newID = gen
	}
}

func New(store Store, hasher PasswordHasher, tokens TokenIssuer, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("identity store is required")
	}
	if hasher == nil {
		return nil, fmt.Errorf("password hasher is required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token issuer is required")
	}
	svc := &Service{
		store:  store,
		hasher: hasher,
		tokens: tokens,
		clock:  time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

type SignupRequest struct {
	Name     string
	Email    string
	Password string
}

type LoginRequest struct {
	Email    string
	Password string
}

// AuthResult is returned by signup and login.
type AuthResult struct {
	Identity *models.Identity
	Token    string
}

// Signup creates a user-role identity and signs a session for it.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*AuthResult, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "All fields are required")
	}
	if len(req.Password) < secrets.MinPasswordLength {
		return nil, dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("Password must be at least %d characters", secrets.MinPasswordLength))
	}
	email, err := models.NormalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}

	identity, err := s.create(ctx, req.Name, email, req.Password, models.RoleUser)
	if err != nil {
		return nil, err
	}
	token, err := s.issue(identity)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Identity: identity, Token: token}, nil
}

func (s *Service) create(ctx context.Context, name, email, password string, role models.Role) (*models.Identity, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		if _, coded := dErrors.As(err); coded {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}
	identity, err := models.NewIdentity(s.newID(), name, email, hash, role, s.clock())
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, identity); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "User already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create identity")
	}
	if s.metrics != nil {
		s.metrics.IncrementUsersCreated()
	}
	s.logAudit(ctx, audit.EventUserCreated,
		"user_id", identity.ID,
		"email", identity.Email,
		"role", identity.Role.String(),
	)
	return identity, nil
}

// Login matches email case-insensitively. Unknown email and wrong password
// are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "Email and password are required")
	}

	identity, err := s.store.FindByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up identity")
	}

	hash := s.decoy()
	if identity != nil {
		hash = identity.PasswordHash
	}
	ok, verr := s.hasher.Verify(req.Password, hash)
	if verr != nil {
		return nil, dErrors.Wrap(verr, dErrors.CodeInternal, "failed to verify password")
	}
	if identity == nil || !ok {
		s.loginOutcome(false)
		s.logAudit(ctx, audit.EventAuthFailed, "email", req.Email, "reason", "invalid_credentials")
		return nil, dErrors.New(dErrors.CodeValidation, msgInvalidCredentials)
	}

	token, err := s.issue(identity)
	if err != nil {
		return nil, err
	}
	s.loginOutcome(true)
	s.logAudit(ctx, audit.EventUserLoggedIn, "user_id", identity.ID, "email", identity.Email)
	return &AuthResult{Identity: identity, Token: token}, nil
}

// Me re-resolves the identity so a deleted account stops working at once
// even while its token is unexpired.
func (s *Service) Me(ctx context.Context, identityID string) (*models.Identity, error) {
	identity, err := s.store.FindByID(ctx, identityID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "User not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load identity")
	}
	return identity, nil
}

// EnsureAdmin seeds the administrator. An existing identity with the same
// email is left untouched.
func (s *Service) EnsureAdmin(ctx context.Context, name, email, password string) (*models.Identity, error) {
	existing, err := s.store.FindByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up admin")
	}
	normalized, err := models.NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, name, normalized, password, models.RoleAdmin)
}

func (s *Service) issue(identity *models.Identity) (string, error) {
	token, err := s.tokens.Issue(identity)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue session")
	}
	return token, nil
}

// fallbackDecoyHash is a valid cost-10 bcrypt hash, used when a fresh decoy
// cannot be generated.
const fallbackDecoyHash = "$2a$10$XajjQvNhvvRt5GSeFk1xFeyqRrsxkhBkUiQeg0dt.wU1qD4aFDcga"

// decoy returns a hash to verify against when the email is unknown, so both
// failure paths pay the same bcrypt cost and end in the same response.
func (s *Service) decoy() string {
	s.decoyOnce.Do(func() {
		s.decoyHash = fallbackDecoyHash
		if h, err := s.hasher.Hash(uuid.NewString()); err == nil {
			s.decoyHash = h
		} else if s.logger != nil {
			s.logger.Error("decoy hash generation failed, using fallback", "error", err)
		}
	})
	return s.decoyHash
}

func (s *Service) loginOutcome(ok bool) {
	if s.metrics != nil {
		s.metrics.IncrementLogin(ok)
	}
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, attributes ...any) {
	var publisher observability.AuditPublisher
	if s.auditPublisher != nil {
		publisher = s.auditPublisher
	}
	observability.LogAudit(ctx, s.logger, publisher, event, attributes...)
}
