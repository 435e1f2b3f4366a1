package auth

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// NewConfirmationCode returns a fresh random code to mail to the user.
func NewConfirmationCode() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// HashCode creates a bcrypt hash from the given plaintext confirmation code.
func HashCode(code string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// VerifyCode checks if the provided code matches the stored bcrypt hash.
// An empty hash means no code is outstanding and never matches.
func VerifyCode(hashedCode, providedCode string) error {
	if hashedCode == "" {
		return bcrypt.ErrMismatchedHashAndPassword
	}
	return bcrypt.CompareHashAndPassword([]byte(hashedCode), []byte(providedCode))
}
