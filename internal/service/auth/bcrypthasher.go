package auth

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Compare returns ErrPasswordMismatch for a wrong password. Any other
// non-nil error means the stored hash itself is unusable and must be
// treated as an internal fault, not a user mistake
var ErrPasswordMismatch = errors.New("password mismatch")

// Interface to create or compare user password hashes
type PasswordHasher interface {
	// Generate hash from password
	Hash(password string) (string, error)

	// Compare known hashedPassword and user provided password
	// Must be protected against timing attacks
	Compare(hashedPassword string, password string) error
}

// Bcrypt password hasher
// Passwords are pre-hashed with sha256 so bcrypt's 72 byte input limit
// never truncates anything
type BcryptHasher struct {
	// bcrypt work factor. Zero means bcrypt.DefaultCost.
	// Tests inject bcrypt.MinCost to stay fast
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	sum := sha256.Sum256([]byte(password))
	hash, err := bcrypt.GenerateFromPassword(sum[:], cost)
	return string(hash), err
}

func (h BcryptHasher) Compare(hashedPassword string, password string) error {
	sum := sha256.Sum256([]byte(password))
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), sum[:])

	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrPasswordMismatch
	default:
		return fmt.Errorf("stored hash is malformed. Err: %w", err)
	}
}
