package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordVerifier checks a plaintext password against a stored hash.
type PasswordVerifier interface {
	// Compare returns nil when password matches hashedPassword.
	Compare(hashedPassword, password string) error
}

// BcryptVerifier is the bcrypt PasswordVerifier.
type BcryptVerifier struct{}

var _ PasswordVerifier = (*BcryptVerifier)(nil)

func NewBcryptVerifier() *BcryptVerifier {
	return &BcryptVerifier{}
}

func (v *BcryptVerifier) Compare(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// HashPassword returns the bcrypt hash of password. A cost outside bcrypt's
// range falls back to bcrypt.DefaultCost.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
