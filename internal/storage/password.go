package storage

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashCost is the bcrypt work factor used for new passwords.
var HashCost = bcrypt.DefaultCost

// HashPassword returns a salted bcrypt hash of the password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	if err != nil {
		return "", fmt.Errorf("storage: hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
