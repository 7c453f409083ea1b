package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func Test_BcryptHasher(t *testing.T) {
	t.Parallel()

	hasher := BcryptHasher{Cost: bcrypt.MinCost}

	t.Run("hash and compare ok", func(t *testing.T) {
		hash, err := hasher.Hash("password123")

		require.NoError(t, err)
		require.NotEmpty(t, hash)
		require.NotContains(t, hash, "password123", "hash must not contain the plaintext")

		require.NoError(t, hasher.Compare(hash, "password123"))
	})

	t.Run("compare fails on wrong password", func(t *testing.T) {
		hash, err := hasher.Hash("password123")
		require.NoError(t, err)

		err = hasher.Compare(hash, "wrong-password")

		require.Error(t, err)
		require.ErrorIs(t, err, ErrPasswordMismatch)
	})

	t.Run("compare distinguishes malformed hash", func(t *testing.T) {
		err := hasher.Compare("not-a-bcrypt-hash", "password123")

		require.Error(t, err)
		require.NotErrorIs(t, err, ErrPasswordMismatch, "malformed hash is an internal fault, not a mismatch")
	})

	t.Run("same password hashes differently", func(t *testing.T) {
		first, err := hasher.Hash("password123")
		require.NoError(t, err)
		second, err := hasher.Hash("password123")
		require.NoError(t, err)

		assert.NotEqual(t, first, second, "bcrypt salts must differ")
	})

	t.Run("long password ok", func(t *testing.T) {
		// sha256 pre-hash keeps input under bcrypt's 72 byte limit
		long := strings.Repeat("a", 200)

		hash, err := hasher.Hash(long)
		require.NoError(t, err)

		require.NoError(t, hasher.Compare(hash, long))
	})
}
