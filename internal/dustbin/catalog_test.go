package dustbin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "smartbin/pkg/domain-errors"
)

func TestDefaults(t *testing.T) {
	c, err := NewCatalog(Defaults...)
	require.NoError(t, err)

	d, ok := c.Lookup(context.Background(), "DB102")
	require.True(t, ok)
	assert.Equal(t, "City Mall - Entrance", d.Location)
	assert.Equal(t, "QR_DB102", d.QRCode)

	assert.Len(t, c.List(), 3)
	assert.Equal(t, "DB101", c.List()[0].ID)
}

func TestLookupIsExact(t *testing.T) {
	c, err := NewCatalog(Defaults...)
	require.NoError(t, err)

	for _, id := range []string{"db101", " DB101", "DB999", ""} {
		_, ok := c.Lookup(context.Background(), id)
		assert.False(t, ok, "id %q", id)
	}
}

func TestRegisterRejectsDuplicatesAndBlank(t *testing.T) {
	_, err := NewCatalog(Defaults[0], Defaults[0])
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))

	c, err := NewCatalog()
	require.NoError(t, err)
	assert.True(t, dErrors.HasCode(c.Register(Dustbin{ID: "  "}), dErrors.CodeValidation))
}
