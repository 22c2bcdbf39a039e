package admin

import (
	"context"

	"smartbin/internal/dustbin"
	idmodels "smartbin/internal/identity/models"
	"smartbin/internal/ranking"
	audit "smartbin/pkg/platform/audit"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

type IdentityStore interface {
	FindByID(ctx context.Context, id string) (*idmodels.Identity, error)
	List(ctx context.Context) ([]*idmodels.Identity, error)
	Update(ctx context.Context, id string, fn func(*idmodels.Identity) error) (*idmodels.Identity, error)
}

// Purger removes an identity together with its cooldown entries.
type Purger interface {
	Purge(ctx context.Context, identityID string) error
}

type DustbinLister interface {
	List() []dustbin.Dustbin
}

type Leaderboard interface {
	Leaderboard(ctx context.Context) ([]ranking.Entry, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// AuditReader exposes recent audit events when the configured store keeps them.
type AuditReader interface {
	ListRecent(ctx context.Context, limit int) ([]audit.Event, error)
}
