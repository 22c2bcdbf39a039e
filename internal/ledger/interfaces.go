package ledger

import (
	"context"
	"time"

	"smartbin/internal/dustbin"
	idmodels "smartbin/internal/identity/models"
	audit "smartbin/pkg/platform/audit"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks IdentityStore,CooldownIndex,DustbinCatalog,AuditPublisher

// IdentityStore is the slice of the credential store the ledger mutates.
type IdentityStore interface {
	FindByID(ctx context.Context, id string) (*idmodels.Identity, error)
	// Update applies fn to a copy and commits it atomically.
	Update(ctx context.Context, id string, fn func(*idmodels.Identity) error) (*idmodels.Identity, error)
	Delete(ctx context.Context, id string) error
}

// CooldownIndex maps (identity, dustbin) to the instant of the last credited scan.
type CooldownIndex interface {
	Get(ctx context.Context, identityID, dustbinID string) (time.Time, bool, error)
	Set(ctx context.Context, identityID, dustbinID string, at time.Time) error
	Delete(ctx context.Context, identityID, dustbinID string) error
	DeleteByIdentity(ctx context.Context, identityID string) error
}

type DustbinCatalog interface {
	Lookup(ctx context.Context, id string) (dustbin.Dustbin, bool)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}
