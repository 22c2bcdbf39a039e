package secrets

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	dErrors "smartbin/pkg/domain-errors"
)

// MinPasswordLength is the shortest password accepted at signup.
const MinPasswordLength = 6

// Hasher hashes and verifies passwords with bcrypt at a fixed cost.
type Hasher struct {
	cost int
}

// NewHasher returns a bcrypt hasher. A cost of 0 selects bcrypt.DefaultCost;
// tests pass bcrypt.MinCost to stay fast.
func NewHasher(cost int) *Hasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash creates a salted bcrypt hash of the password.
func (h *Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", dErrors.New(dErrors.CodeValidation, "password cannot be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", dErrors.New(dErrors.CodeValidation, "password is too long")
		}
		return "", fmt.Errorf("could not hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether password matches hash. A mismatch is not an error.
func (h *Hasher) Verify(password, hash string) (bool, error) {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, fmt.Errorf("could not verify password: %w", err)
	}
	return true, nil
}
