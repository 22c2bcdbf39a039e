package cooldown

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIndex(t *testing.T) {
	ctx := context.Background()
	x := NewInMemoryIndex()
	t0 := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)

	_, ok, err := x.Get(ctx, "u1", "DB101")
	require.NoError(t, err)
	assert.False(t, ok)

	t.Run("set then overwrite", func(t *testing.T) {
		require.NoError(t, x.Set(ctx, "u1", "DB101", t0))
		require.NoError(t, x.Set(ctx, "u1", "DB101", t0.Add(6*time.Minute)))
		at, ok, err := x.Get(ctx, "u1", "DB101")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, t0.Add(6*time.Minute), at)
		assert.Equal(t, 1, x.Len())
	})

	t.Run("pairs are independent", func(t *testing.T) {
		require.NoError(t, x.Set(ctx, "u1", "DB102", t0))
		require.NoError(t, x.Set(ctx, "u2", "DB101", t0))
		assert.Equal(t, 3, x.Len())

		require.NoError(t, x.Delete(ctx, "u1", "DB102"))
		_, ok, _ := x.Get(ctx, "u1", "DB102")
		assert.False(t, ok)
		_, ok, _ = x.Get(ctx, "u1", "DB101")
		assert.True(t, ok)
	})

	t.Run("delete by identity leaves others", func(t *testing.T) {
		require.NoError(t, x.DeleteByIdentity(ctx, "u1"))
		_, ok, _ := x.Get(ctx, "u1", "DB101")
		assert.False(t, ok)
		_, ok, _ = x.Get(ctx, "u2", "DB101")
		assert.True(t, ok)
		assert.NoError(t, x.Delete(ctx, "ghost", "DB101"))
	})
}
