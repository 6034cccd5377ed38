// service/password_test.go
package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPasswordHasher_Hash(t *testing.T) {
	hasher := NewPasswordHasher()

	t.Run("produces a PHC format hash", func(t *testing.T) {
		hash, err := hasher.Hash("correct horse battery")

		assert.NoError(t, err)
		assert.True(t, strings.HasPrefix(hash, "$argon2id$"))
		assert.Contains(t, hash, "m=19456,t=2,p=1")
	})

	t.Run("same password hashes differently", func(t *testing.T) {
		first, err := hasher.Hash("correct horse battery")
		assert.NoError(t, err)
		second, err := hasher.Hash("correct horse battery")
		assert.NoError(t, err)

		assert.NotEqual(t, first, second)
	})

	t.Run("too short", func(t *testing.T) {
		_, err := hasher.Hash("short")

		assert.ErrorIs(t, err, ErrWeakPassword)
	})

	t.Run("too long", func(t *testing.T) {
		_, err := hasher.Hash(strings.Repeat("a", 129))

		assert.ErrorIs(t, err, ErrWeakPassword)
	})
}

func TestPasswordHasher_Verify(t *testing.T) {
	hasher := NewPasswordHasher()
	hash, err := hasher.Hash("correct horse battery")
	assert.NoError(t, err)

	t.Run("matching password", func(t *testing.T) {
		match, err := hasher.Verify("correct horse battery", hash)

		assert.NoError(t, err)
		assert.True(t, match)
	})

	t.Run("wrong password", func(t *testing.T) {
		match, err := hasher.Verify("wrong password!", hash)

		assert.NoError(t, err)
		assert.False(t, match)
	})

	t.Run("malformed stored hash", func(t *testing.T) {
		match, err := hasher.Verify("correct horse battery", "not-a-phc-string")

		assert.False(t, match)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unsupported algorithm", func(t *testing.T) {
		bcryptLike := "$2a$10$N9qo8uLOickgx2ZMRZoMye"
		match, err := hasher.Verify("correct horse battery", bcryptLike)

		assert.False(t, match)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("verifies against parameters embedded in the hash", func(t *testing.T) {
		// Older hash produced with a different cost profile still verifies.
		legacy := "$argon2id$v=19$m=65536,t=1,p=2$c29tZXNhbHRzb21lc2FsdA$m+2KbXTsUJyfJPKiBCmlQvRRYFCLgirTGqLvyfaWpBM"

		_, err := hasher.Verify("whatever", legacy)
		assert.NoError(t, err)
	})
}
