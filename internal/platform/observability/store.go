package observability

import (
	"context"

	"smartbin/internal/platform/metrics"
	audit "smartbin/pkg/platform/audit"
)

// MeteredStore counts audit appends by outcome.
type MeteredStore struct {
	next    audit.Store
	metrics *metrics.Metrics
}

func NewMeteredStore(next audit.Store, m *metrics.Metrics) *MeteredStore {
	return &MeteredStore{next: next, metrics: m}
}

func (s *MeteredStore) Append(ctx context.Context, event audit.Event) error {
	err := s.next.Append(ctx, event)
	s.metrics.IncrementAuditPublish(err == nil)
	return err
}
