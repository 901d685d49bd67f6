package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrNoPassword is returned when a user has no usable password set.
var ErrNoPassword = errors.New("no usable password")

// HashPassword creates a bcrypt hash from the given plaintext password.
func HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// VerifyPassword checks if the provided plaintext password matches the stored bcrypt hash.
// An unset hash never matches.
func VerifyPassword(hashedPassword *string, providedPassword string) error {
	if hashedPassword == nil || *hashedPassword == "" {
		return ErrNoPassword
	}
	return bcrypt.CompareHashAndPassword([]byte(*hashedPassword), []byte(providedPassword))
}
