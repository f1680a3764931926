package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	t.Run("Produces bcrypt digest", func(t *testing.T) {
		hash, err := HashPassword("correct horse battery staple")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(hash, "$2"), "expected bcrypt digest, got %q", hash)
	})

	t.Run("Same password produces different digests", func(t *testing.T) {
		hash1, err := HashPassword("secret")
		require.NoError(t, err)
		hash2, err := HashPassword("secret")
		require.NoError(t, err)
		assert.NotEqual(t, hash1, hash2, "bcrypt salts should differ per call")
	})
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("secret")
	require.NoError(t, err)

	t.Run("Correct password verifies", func(t *testing.T) {
		assert.True(t, VerifyPassword("secret", hash))
	})

	t.Run("Wrong password fails", func(t *testing.T) {
		assert.False(t, VerifyPassword("not-secret", hash))
	})

	t.Run("Malformed digest fails without panic", func(t *testing.T) {
		assert.False(t, VerifyPassword("secret", "not-a-bcrypt-hash"))
		assert.False(t, VerifyPassword("secret", ""))
	})
}
