package util

import (
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost applies to every stored credential, including the placeholder
// passwords created by the roster import.
const bcryptCost = 12

// HashPassword derives the bcrypt hash stored on the account record.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches the stored bcrypt hash.
func VerifyPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}
