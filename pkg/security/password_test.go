package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher_RoundTrip(t *testing.T) {
	t.Parallel()

	h := NewHasher(bcrypt.MinCost)

	digest, err := h.GenerateFromPassword("Password1")
	require.NoError(t, err)
	assert.NotEqual(t, "Password1", digest)

	ok, err := h.VerifyPasswd("Password1", digest)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.VerifyPasswd("Password2", digest)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasher_Salted(t *testing.T) {
	t.Parallel()

	h := NewHasher(bcrypt.MinCost)

	a, err := h.GenerateFromPassword("Password1")
	require.NoError(t, err)
	b, err := h.GenerateFromPassword("Password1")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestHasher_DefaultCost(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 12, NewHasher(0).Cost)
	assert.Equal(t, 12, NewHasher(99).Cost)
	assert.Equal(t, bcrypt.MinCost, NewHasher(bcrypt.MinCost).Cost)
}

func TestHasher_CorruptDigest(t *testing.T) {
	t.Parallel()

	ok, err := NewHasher(bcrypt.MinCost).VerifyPasswd("Password1", "not-a-digest")
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestHasher_LongPasswordsUseFirst72Bytes(t *testing.T) {
	t.Parallel()

	h := NewHasher(bcrypt.MinCost)
	long := "Aa1" + strings.Repeat("b", 97)

	digest, err := h.GenerateFromPassword(long)
	require.NoError(t, err)

	ok, err := h.VerifyPasswd(long, digest)
	require.NoError(t, err)
	assert.True(t, ok)

	// Anything past byte 72 is ignored
	ok, err = h.VerifyPasswd(long[:72]+"different tail", digest)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.VerifyPasswd(long[:71], digest)
	require.NoError(t, err)
	assert.False(t, ok)
}
