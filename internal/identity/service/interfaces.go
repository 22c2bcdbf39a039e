package service

import (
	"context"

	"smartbin/internal/identity/models"
	audit "smartbin/pkg/platform/audit"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks Store,TokenIssuer,AuditPublisher

type Store interface {
	Create(ctx context.Context, identity *models.Identity) error
	FindByID(ctx context.Context, id string) (*models.Identity, error)
	FindByEmail(ctx context.Context, email string) (*models.Identity, error)
}

type TokenIssuer interface {
	Issue(identity *models.Identity) (string, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) (bool, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}
