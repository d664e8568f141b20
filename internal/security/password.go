package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinBcryptCost = 8
	MaxBcryptCost = 15
)

// PasswordHasher wraps bcrypt with a bounded, configurable cost factor.
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) (*PasswordHasher, error) {
	if cost < MinBcryptCost || cost > MaxBcryptCost {
		return nil, fmt.Errorf("bcrypt cost %d outside allowed range [%d, %d]", cost, MinBcryptCost, MaxBcryptCost)
	}
	return &PasswordHasher{cost: cost}, nil
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether password matches digest. Malformed digests are
// treated as a mismatch, never as success.
func (h *PasswordHasher) Verify(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
