// Package ranking derives the leaderboard from current point totals.
package ranking

import (
	"context"
	"iter"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	idmodels "smartbin/internal/identity/models"
	dErrors "smartbin/pkg/domain-errors"
)

// Entry is one leaderboard row. Rank is 1-based and strictly increasing.
type Entry struct {
	Rank        int
	ID          string
	Name        string
	Email       string
	TotalPoints int
	ScanCount   int
	LastScan    *time.Time
	Role        idmodels.Role
}

// Rank orders identities by points descending. Equal totals keep their input
// order, which for the identity store is signup order. The input is not
// modified.
func Rank(identities []*idmodels.Identity) iter.Seq[Entry] {
	sorted := slices.Clone(identities)
	slices.SortStableFunc(sorted, func(a, b *idmodels.Identity) int {
		return b.TotalPoints - a.TotalPoints
	})
	return func(yield func(Entry) bool) {
		for i, ident := range sorted {
			e := Entry{
				Rank:        i + 1,
				ID:          ident.ID,
				Name:        ident.Name,
				Email:       ident.Email,
				TotalPoints: ident.TotalPoints,
				ScanCount:   len(ident.ScanHistory),
				Role:        ident.Role,
			}
			if last, ok := ident.LastScan(); ok {
				e.LastScan = &last
			}
			if !yield(e) {
				return
			}
		}
	}
}

// Lister reads a consistent snapshot of all identities in insertion order.
type Lister interface {
	List(ctx context.Context) ([]*idmodels.Identity, error)
}

// View computes rankings on demand; nothing is cached.
type View struct {
	identities Lister
	tracer     trace.Tracer
}

func NewView(identities Lister) *View {
	return &View{identities: identities, tracer: otel.Tracer("smartbin/ranking")}
}

func (v *View) Leaderboard(ctx context.Context) ([]Entry, error) {
	ctx, span := v.tracer.Start(ctx, "ranking.Leaderboard")
	defer span.End()

	identities, err := v.identities.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list identities")
	}
	entries := slices.Collect(Rank(identities))
	span.SetAttributes(attribute.Int("ranking.size", len(entries)))
	return entries, nil
}
