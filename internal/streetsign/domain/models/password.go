package models

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// SetPassword derives a fresh salted hash from plaintext. Two calls with
// the same plaintext produce different hashes; both verify.
func (u *User) SetPassword(plaintext string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("generate from password error: %w", err)
	}

	u.PasswordHash = string(hash)

	return nil
}

// CheckPassword reports whether plaintext matches the stored hash.
func (u User) CheckPassword(plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plaintext)) == nil
}
