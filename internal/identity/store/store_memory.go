// Package store is the Credential Store: the authoritative in-memory table of
// identity records. Callers only ever see copies; every mutation runs under
// the store's write lock.
package store

import (
	"context"
	"fmt"
	"sync"

	"smartbin/internal/identity/models"
	"smartbin/pkg/platform/sentinel"
)

// ErrNotFound is returned when an identity does not exist.
var ErrNotFound = sentinel.ErrNotFound

// ErrEmailTaken is returned when an email collides case-insensitively.
var ErrEmailTaken = fmt.Errorf("email already registered: %w", sentinel.ErrConflict)

// InMemory keeps identities in insertion order. Insertion order is the
// ranking tie-break, so it is preserved across updates.
type InMemory struct {
	mu      sync.RWMutex
	records map[string]*models.Identity
	emails  map[string]string // email key -> identity id
	order   []string
}

func New() *InMemory {
	return &InMemory{
		records: make(map[string]*models.Identity),
		emails:  make(map[string]string),
	}
}

// Create inserts a new identity. The email must be unused case-insensitively.
func (s *InMemory) Create(_ context.Context, identity *models.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[identity.ID]; exists {
		return fmt.Errorf("identity %s already exists: %w", identity.ID, sentinel.ErrConflict)
	}
	key := models.EmailKey(identity.Email)
	if _, taken := s.emails[key]; taken {
		return ErrEmailTaken
	}

	s.records[identity.ID] = identity.Clone()
	s.emails[key] = identity.ID
	s.order = append(s.order, identity.ID)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id string) (*models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec, ok := s.records[id]; ok {
		return rec.Clone(), nil
	}
	return nil, ErrNotFound
}

// FindByEmail looks an identity up case-insensitively.
func (s *InMemory) FindByEmail(_ context.Context, email string) (*models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, ok := s.emails[models.EmailKey(email)]; ok {
		return s.records[id].Clone(), nil
	}
	return nil, ErrNotFound
}

// List returns every identity in insertion order.
func (s *InMemory) List(_ context.Context) ([]*models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Identity, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.records[id].Clone())
	}
	return out, nil
}

func (s *InMemory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// Update applies fn to a copy of the identity and commits it only if fn
// succeeds and the result still satisfies the store's invariants. fn runs
// under the write lock and must not call back into the store.
func (s *InMemory) Update(_ context.Context, id string, fn func(*models.Identity) error) (*models.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}

	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	if next.ID != current.ID {
		return nil, fmt.Errorf("identity id is immutable: %w", sentinel.ErrInvalidState)
	}
	if next.TotalPoints < 0 {
		return nil, fmt.Errorf("total points cannot be negative: %w", sentinel.ErrInvalidState)
	}

	oldKey, newKey := models.EmailKey(current.Email), models.EmailKey(next.Email)
	if oldKey != newKey {
		if owner, taken := s.emails[newKey]; taken && owner != id {
			return nil, ErrEmailTaken
		}
		delete(s.emails, oldKey)
		s.emails[newKey] = id
	}

	s.records[id] = next
	return next.Clone(), nil
}

// Delete removes the identity permanently.
func (s *InMemory) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.records, id)
	delete(s.emails, models.EmailKey(rec.Email))
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}
