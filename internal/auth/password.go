package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	dom "vidtube/internal/domain"
)

// PasswordCost is the bcrypt cost used for stored password hashes.
const PasswordCost = 10

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", fmt.Errorf("%w: password is longer than 72 bytes", dom.ErrValidation)
	}
	if err != nil {
		return "", fmt.Errorf("%w: hash password: %v", dom.ErrInternal, err)
	}
	return string(h), nil
}

// CheckPassword reports whether password matches the stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
