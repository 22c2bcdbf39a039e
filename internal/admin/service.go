// Package admin implements the privileged views and edits over identities.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	idmodels "smartbin/internal/identity/models"
	"smartbin/internal/platform/metrics"
	"smartbin/internal/platform/observability"
	"smartbin/internal/ranking"
	dErrors "smartbin/pkg/domain-errors"
	audit "smartbin/pkg/platform/audit"
	"smartbin/pkg/platform/sentinel"
)

// Service re-resolves the acting identity from the store on every call, so
// a demoted or deleted admin loses access even with an unexpired token.
type Service struct {
	identities     IdentityStore
	purger         Purger
	dustbins       DustbinLister
	board          Leaderboard
	auditPublisher AuditPublisher
	auditReader    AuditReader
	logger         *slog.Logger
	metrics        *metrics.Metrics
	tracer         trace.Tracer
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

func WithAuditReader(reader AuditReader) Option {
	return func(s *Service) {
		s.auditReader = reader
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(identities IdentityStore, purger Purger, dustbins DustbinLister, board Leaderboard, opts ...Option) (*Service, error) {
	if identities == nil {
		return nil, fmt.Errorf("identity store is required")
	}
	if purger == nil {
		return nil, fmt.Errorf("purger is required")
	}
	if dustbins == nil {
		return nil, fmt.Errorf("dustbin catalog is required")
	}
	if board == nil {
		return nil, fmt.Errorf("leaderboard is required")
	}
	svc := &Service{
		identities: identities,
		purger:     purger,
		dustbins:   dustbins,
		board:      board,
		tracer:     otel.Tracer("smartbin/admin"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

func (s *Service) authorize(ctx context.Context, actorID string) (*idmodels.Identity, error) {
	actor, err := s.identities.FindByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "User not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load acting identity")
	}
	if !actor.IsAdmin() {
		return nil, dErrors.New(dErrors.CodeForbidden, "Forbidden")
	}
	return actor, nil
}

func (s *Service) list(ctx context.Context) ([]*idmodels.Identity, error) {
	all, err := s.identities.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list identities")
	}
	return all, nil
}

func (s *Service) ListUsers(ctx context.Context, actorID string) ([]UserSummary, error) {
	if _, err := s.authorize(ctx, actorID); err != nil {
		return nil, err
	}
	all, err := s.list(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]UserSummary, 0, len(all))
	for _, i := range all {
		out = append(out, UserSummary{
			ID:          i.ID,
			Name:        i.Name,
			Email:       i.Email,
			TotalPoints: i.TotalPoints,
			ScanCount:   len(i.ScanHistory),
			Role:        i.Role,
			CreatedAt:   i.CreatedAt,
		})
	}
	return out, nil
}

func (s *Service) GetUser(ctx context.Context, actorID, id string) (*idmodels.Identity, error) {
	if _, err := s.authorize(ctx, actorID); err != nil {
		return nil, err
	}
	identity, err := s.identities.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "User not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load identity")
	}
	return identity, nil
}

// UpdateUser validates every field before touching the store, then applies
// the patch in one store update. Any failure leaves the record unchanged.
func (s *Service) UpdateUser(ctx context.Context, actorID, id string, patch Patch) (*idmodels.Identity, error) {
	ctx, span := s.tracer.Start(ctx, "admin.UpdateUser", trace.WithAttributes(
		attribute.String("actor.id", actorID),
		attribute.String("identity.id", id),
		attribute.StringSlice("patch.fields", patch.fields()),
	))
	defer span.End()

	if _, err := s.authorize(ctx, actorID); err != nil {
		return nil, err
	}
	if patch.empty() {
		return nil, dErrors.New(dErrors.CodeValidation, "no updatable fields supplied")
	}

	var (
		name  string
		email string
		role  idmodels.Role
	)
	if patch.Name != nil {
		name = strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, dErrors.New(dErrors.CodeValidation, "name cannot be empty")
		}
	}
	if patch.Email != nil {
		normalized, err := idmodels.NormalizeEmail(*patch.Email)
		if err != nil {
			return nil, err
		}
		email = normalized
	}
	if patch.TotalPoints != nil && *patch.TotalPoints < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "totalPoints must be a non-negative integer")
	}
	if patch.Role != nil {
		parsed, err := idmodels.ParseRole(*patch.Role)
		if err != nil {
			return nil, err
		}
		role = parsed
		if id == actorID && role != idmodels.RoleAdmin {
			return nil, dErrors.New(dErrors.CodeInvalidOperation, "Cannot remove admin role from yourself")
		}
	}

	updated, err := s.identities.Update(ctx, id, func(i *idmodels.Identity) error {
		if patch.Name != nil {
			i.Name = name
		}
		if patch.Email != nil {
			i.Email = email
		}
		if patch.TotalPoints != nil {
			i.TotalPoints = *patch.TotalPoints
		}
		if patch.Role != nil {
			i.Role = role
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "User not found")
		case errors.Is(err, sentinel.ErrConflict):
			return nil, dErrors.New(dErrors.CodeConflict, "Email already in use")
		case errors.Is(err, sentinel.ErrInvalidState):
			return nil, dErrors.Wrap(err, dErrors.CodeValidation, "update rejected")
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update identity")
		}
	}

	s.logAudit(ctx, audit.EventUserUpdated,
		"user_id", id,
		"actor_id", actorID,
		"reason", strings.Join(patch.fields(), ","),
	)
	return updated, nil
}

// DeleteUser removes an identity and its cooldown entries. Admins cannot
// delete themselves.
func (s *Service) DeleteUser(ctx context.Context, actorID, id string) error {
	ctx, span := s.tracer.Start(ctx, "admin.DeleteUser", trace.WithAttributes(
		attribute.String("actor.id", actorID),
		attribute.String("identity.id", id),
	))
	defer span.End()

	if _, err := s.authorize(ctx, actorID); err != nil {
		return err
	}
	if id == actorID {
		return dErrors.New(dErrors.CodeInvalidOperation, "Cannot delete your own account")
	}

	// Capture before deletion to enrich the audit event.
	target, err := s.identities.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "User not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load identity")
	}
	if err := s.purger.Purge(ctx, id); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.IncrementUsersDeleted()
	}
	s.logAudit(ctx, audit.EventUserDeleted,
		"user_id", id,
		"actor_id", actorID,
		"email", target.Email,
	)
	return nil
}

func (s *Service) Stats(ctx context.Context, actorID string) (*Stats, error) {
	if _, err := s.authorize(ctx, actorID); err != nil {
		return nil, err
	}
	all, err := s.list(ctx)
	if err != nil {
		return nil, err
	}

	usage := make(map[string]int)
	total := 0
	for _, i := range all {
		for _, scan := range i.ScanHistory {
			usage[scan.DustbinID]++
			total++
		}
	}
	bins := s.dustbins.List()
	stats := &Stats{
		TotalScans:   total,
		TotalUsers:   len(all),
		DustbinStats: make([]DustbinStat, 0, len(bins)),
	}
	for _, d := range bins {
		stats.DustbinStats = append(stats.DustbinStats, DustbinStat{
			DustbinID: d.ID,
			Location:  d.Location,
			Scans:     usage[d.ID],
		})
	}
	return stats, nil
}

// RecentScans merges retained histories newest first. A non-positive limit
// selects DefaultRecentScans.
func (s *Service) RecentScans(ctx context.Context, actorID string, limit int) ([]RecentScan, error) {
	if _, err := s.authorize(ctx, actorID); err != nil {
		return nil, err
	}
	all, err := s.list(ctx)
	if err != nil {
		return nil, err
	}

	var scans []RecentScan
	for _, i := range all {
		for _, e := range i.ScanHistory {
			scans = append(scans, RecentScan{
				UserID:    i.ID,
				UserName:  i.Name,
				UserEmail: i.Email,
				DustbinID: e.DustbinID,
				Timestamp: e.Timestamp,
			})
		}
	}
	slices.SortStableFunc(scans, func(a, b RecentScan) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return scans[:min(clampLimit(limit), len(scans))], nil
}

func (s *Service) Leaderboard(ctx context.Context, actorID string) ([]ranking.Entry, error) {
	if _, err := s.authorize(ctx, actorID); err != nil {
		return nil, err
	}
	return s.board.Leaderboard(ctx)
}

// AuditTrail returns recent audit events, or not_found when no readable
// audit store is configured.
func (s *Service) AuditTrail(ctx context.Context, actorID string, limit int) ([]audit.Event, error) {
	if _, err := s.authorize(ctx, actorID); err != nil {
		return nil, err
	}
	if s.auditReader == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "audit trail is not available")
	}
	events, err := s.auditReader.ListRecent(ctx, clampLimit(limit))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read audit trail")
	}
	return events, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultRecentScans
	}
	return min(limit, MaxListLimit)
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, attributes ...any) {
	var publisher observability.AuditPublisher
	if s.auditPublisher != nil {
		publisher = s.auditPublisher
	}
	observability.LogAudit(ctx, s.logger, publisher, event, attributes...)
}
