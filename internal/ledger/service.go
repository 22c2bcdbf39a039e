// Package ledger credits reward points for dustbin scans under a per-pair
// cooldown policy.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	idmodels "smartbin/internal/identity/models"
	"smartbin/internal/platform/metrics"
	"smartbin/internal/platform/observability"
	dErrors "smartbin/pkg/domain-errors"
	audit "smartbin/pkg/platform/audit"
	"smartbin/pkg/platform/sentinel"
)

// Config holds the reward policy.
type Config struct {
	Cooldown     time.Duration
	Award        int
	HistoryLimit int
}

func DefaultConfig() Config {
	return Config{Cooldown: 5 * time.Minute, Award: 10, HistoryLimit: 20}
}

// Service is the scan ledger. A single lock serializes every credit and
// purge, so the cooldown check and the writes that follow it form one
// critical section.
type Service struct {
	mu sync.Mutex

	identities     IdentityStore
	cooldowns      CooldownIndex
	dustbins       DustbinCatalog
	auditPublisher AuditPublisher
	logger         *slog.Logger
	metrics        *metrics.Metrics
	tracer         trace.Tracer
	config         Config
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

func WithConfig(cfg Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

func New(identities IdentityStore, cooldowns CooldownIndex, dustbins DustbinCatalog, opts ...Option) (*Service, error) {
	if identities == nil {
		return nil, fmt.Errorf("identity store is required")
	}
	if cooldowns == nil {
		return nil, fmt.Errorf("cooldown index is required")
	}
	if dustbins == nil {
		return nil, fmt.Errorf("dustbin catalog is required")
	}

	svc := &Service{
		identities: identities,
		cooldowns:  cooldowns,
		dustbins:   dustbins,
		config:     DefaultConfig(),
		tracer:     otel.Tracer("smartbin/ledger"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.config.Cooldown <= 0 || svc.config.Award <= 0 || svc.config.HistoryLimit <= 0 {
		return nil, fmt.Errorf("ledger config must be positive: %+v", svc.config)
	}
	return svc, nil
}

// Config returns the active policy.
func (s *Service) Config() Config {
	return s.config
}

// Credit awards points for scanning dustbinID at now. A scan of the same
// pair inside the cooldown window fails with rate_limited wrapping a
// *CooldownError. Once the lock is held the request runs to completion
// regardless of caller cancellation, and a failed store write rolls the
// cooldown entry back, so points and cooldown never diverge.
func (s *Service) Credit(ctx context.Context, identityID, dustbinID string, now time.Time) (*ScanResult, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.Credit", trace.WithAttributes(
		attribute.String("identity.id", identityID),
		attribute.String("dustbin.id", dustbinID),
	))
	defer span.End()

	result, err := s.credit(ctx, identityID, dustbinID, now)
	if err != nil {
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
		return nil, err
	}
	span.SetAttributes(attribute.Int("ledger.total_points", result.TotalPoints))
	return result, nil
}

func (s *Service) credit(ctx context.Context, identityID, dustbinID string, now time.Time) (*ScanResult, error) {
	if strings.TrimSpace(dustbinID) == "" {
		s.rejected(metrics.ReasonInvalid)
		return nil, dErrors.New(dErrors.CodeValidation, "dustbinId is required")
	}
	bin, ok := s.dustbins.Lookup(ctx, dustbinID)
	if !ok {
		s.rejected(metrics.ReasonUnknownDustbin)
		return nil, dErrors.New(dErrors.CodeNotFound, "Dustbin not found")
	}

	if err := ctx.Err(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "scan aborted before it was recorded")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "scan aborted before it was recorded")
	}
	started := time.Now()
	defer s.observeLatency(started)
	work := context.WithoutCancel(ctx)

	if _, err := s.identities.FindByID(work, identityID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.rejected(metrics.ReasonUnknownIdentity)
			return nil, dErrors.New(dErrors.CodeUnauthorized, "User not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load identity")
	}

	last, seen, err := s.cooldowns.Get(work, identityID, dustbinID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read cooldown index")
	}
	if seen {
		if elapsed := now.Sub(last); elapsed < s.config.Cooldown {
			remaining, minutes := remainingWait(s.config.Cooldown, elapsed)
			cerr := &CooldownError{DustbinID: dustbinID, RetryAfter: remaining, Minutes: minutes}
			s.rejected(metrics.ReasonCooldown)
			s.logAudit(ctx, audit.EventScanRejected,
				"user_id", identityID,
				"dustbin_id", dustbinID,
				"reason", "cooldown",
				"retry_after_minutes", minutes,
			)
			return nil, dErrors.Wrap(cerr, dErrors.CodeRateLimited, cerr.Error())
		}
	}

	if err := s.cooldowns.Set(work, identityID, dustbinID, now); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update cooldown index")
	}

	event := idmodels.ScanEvent{DustbinID: dustbinID, Timestamp: now}
	updated, err := s.identities.Update(work, identityID, func(i *idmodels.Identity) error {
		i.RecordScan(event, s.config.Award, s.config.HistoryLimit)
		return nil
	})
	if err != nil {
		s.rollbackCooldown(work, identityID, dustbinID, last, seen)
		s.rejected(metrics.ReasonStoreFailure)
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "User not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to credit scan")
	}

	if s.metrics != nil {
		s.metrics.IncrementScanCredited(s.config.Award)
	}
	s.logAudit(ctx, audit.EventScanCredited,
		"user_id", identityID,
		"dustbin_id", dustbinID,
		"points", s.config.Award,
		"total_points", updated.TotalPoints,
	)

	return &ScanResult{
		Message:     fmt.Sprintf("Scan successful. %d points added.", s.config.Award),
		IdentityID:  identityID,
		Dustbin:     bin,
		Awarded:     s.config.Award,
		TotalPoints: updated.TotalPoints,
		Scan:        event,
	}, nil
}

// rollbackCooldown restores the index to its pre-credit state.
func (s *Service) rollbackCooldown(ctx context.Context, identityID, dustbinID string, last time.Time, seen bool) {
	var err error
	if seen {
		err = s.cooldowns.Set(ctx, identityID, dustbinID, last)
	} else {
		err = s.cooldowns.Delete(ctx, identityID, dustbinID)
	}
	if err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "cooldown rollback failed",
			"user_id", identityID,
			"dustbin_id", dustbinID,
			"error", err,
		)
	}
}

// Purge removes an identity and every cooldown entry it owns. It holds the
// ledger lock so no credit for the identity can interleave.
func (s *Service) Purge(ctx context.Context, identityID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	work := context.WithoutCancel(ctx)

	if err := s.cooldowns.DeleteByIdentity(work, identityID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear cooldown entries")
	}
	if err := s.identities.Delete(work, identityID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "User not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete identity")
	}
	return nil
}

func (s *Service) rejected(reason string) {
	if s.metrics != nil {
		s.metrics.IncrementScanRejected(reason)
	}
}

func (s *Service) observeLatency(started time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveCreditLatency(time.Since(started).Seconds())
	}
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, attributes ...any) {
	var publisher observability.AuditPublisher
	if s.auditPublisher != nil {
		publisher = s.auditPublisher
	}
	observability.LogAudit(ctx, s.logger, publisher, event, attributes...)
}
