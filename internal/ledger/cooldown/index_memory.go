// Package cooldown stores the instant of the last credited scan per
// (identity, dustbin) pair.
package cooldown

import (
	"context"
	"sync"
	"time"
)

// InMemoryIndex keeps entries grouped by identity so an identity's entries
// can be dropped in one step.
type InMemoryIndex struct {
	mu      sync.RWMutex
	entries map[string]map[string]time.Time
}

func NewInMemoryIndex() *InMemoryIndex {
	return &InMemoryIndex{entries: make(map[string]map[string]time.Time)}
}

func (x *InMemoryIndex) Get(_ context.Context, identityID, dustbinID string) (time.Time, bool, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	at, ok := x.entries[identityID][dustbinID]
	return at, ok, nil
}

// Set overwrites the entry for the pair.
func (x *InMemoryIndex) Set(_ context.Context, identityID, dustbinID string, at time.Time) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	bins, ok := x.entries[identityID]
	if !ok {
		bins = make(map[string]time.Time)
		x.entries[identityID] = bins
	}
	bins[dustbinID] = at
	return nil
}

func (x *InMemoryIndex) Delete(_ context.Context, identityID, dustbinID string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	bins, ok := x.entries[identityID]
	if !ok {
		return nil
	}
	delete(bins, dustbinID)
	if len(bins) == 0 {
		delete(x.entries, identityID)
	}
	return nil
}

func (x *InMemoryIndex) DeleteByIdentity(_ context.Context, identityID string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.entries, identityID)
	return nil
}

// Len reports the number of tracked pairs.
func (x *InMemoryIndex) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	n := 0
	for _, bins := range x.entries {
		n += len(bins)
	}
	return n
}
