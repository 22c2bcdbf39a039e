package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "smartbin/pkg/platform/audit"
)

func TestListRecent_NewestFirst(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	for n := range 5 {
		require.NoError(t, s.Append(ctx, audit.Event{ID: fmt.Sprint(n)}))
	}

	recent, err := s.ListRecent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, []string{"4", "3", "2"}, []string{recent[0].ID, recent[1].ID, recent[2].ID})

	all, err := s.ListRecent(ctx, 50)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestClear(t *testing.T) {
	s := NewInMemoryStore()
	require.NoError(t, s.Append(context.Background(), audit.Event{UserID: "1"}))
	s.Clear()
	events, err := s.ListByUser(context.Background(), "1")
	require.NoError(t, err)
	assert.Empty(t, events)
}
