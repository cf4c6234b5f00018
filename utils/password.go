package utils

import (
	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor for stored passwords.
const PasswordCost = 12

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword reports whether password matches hash. An empty hash (a
// client created without a password) never matches.
func CheckPassword(password, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
