package memory

import (
	"context"
	"slices"
	"sync"

	audit "smartbin/pkg/platform/audit"
)

// maxRetained bounds memory use; the oldest events are dropped first.
const maxRetained = 10_000

type InMemoryStore struct {
	mu     sync.RWMutex
	events []audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	if over := len(s.events) - maxRetained; over > 0 {
		s.events = slices.Delete(s.events, 0, over)
	}
	return nil
}

func (s *InMemoryStore) ListByUser(_ context.Context, userID string) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []audit.Event
	for _, e := range s.events {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

// ListRecent returns up to limit events, newest first.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := min(limit, len(s.events))
	out := make([]audit.Event, 0, n)
	for i := len(s.events) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.events[i])
	}
	return out, nil
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}
