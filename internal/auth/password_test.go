package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("password")
	require.NoError(t, err)
	assert.NotEqual(t, "password", hash)

	assert.True(t, h.Matches(hash, "password"))
	assert.False(t, h.Matches(hash, "Password"))
	assert.False(t, h.Matches("not-a-hash", "password"))

	again, err := h.Hash("password")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "hashes are salted")
}

func TestPasswordHasher_DummyHash(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher(bcrypt.MinCost)
	dummy, err := h.DummyHash()
	require.NoError(t, err)
	assert.False(t, h.Matches(dummy, ""))
	assert.False(t, h.Matches(dummy, "password"))
}

func TestNewPasswordHasher_ClampsCost(t *testing.T) {
	t.Parallel()

	assert.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(0).cost)
	assert.Equal(t, bcrypt.MaxCost, NewPasswordHasher(99).cost)
}
