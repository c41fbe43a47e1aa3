package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	encoded, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.Contains(t, encoded, "$argon2id$")

	ok, err := VerifyPassword("hunter2", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("hunter3", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashesAreSalted(t *testing.T) {
	a, err := HashPassword("same")
	require.NoError(t, err)
	b, err := HashPassword("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	_, err := VerifyPassword("x", "not-an-encoded-hash")
	assert.ErrorIs(t, err, ErrInvalidHash)

	_, err = VerifyPassword("x", "$argon2id$v=9999$m=65536,t=3,p=2$AAAA$BBBB")
	assert.ErrorIs(t, err, ErrIncompatibleVersion)
}
