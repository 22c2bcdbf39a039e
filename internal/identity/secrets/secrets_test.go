package secrets

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	dErrors "smartbin/pkg/domain-errors"
)

func TestHashAndVerify(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	hash, err := h.Hash("admin123")
	require.NoError(t, err)
	assert.NotEqual(t, "admin123", hash)

	ok, err := h.Verify("admin123", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify("wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashIsSalted(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	a, err := h.Hash("secret1")
	require.NoError(t, err)
	b, err := h.Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHashRejectsEmptyAndOversized(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	_, err := h.Hash("")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = h.Hash(strings.Repeat("x", 73))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestVerifyMalformedHash(t *testing.T) {
	_, err := NewHasher(bcrypt.MinCost).Verify("pw", "not-a-bcrypt-hash")
	assert.Error(t, err)
}
