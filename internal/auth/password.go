package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the fixed work factor for password hashes.
const BcryptCost = 10

// maxBcryptInput is the number of bytes bcrypt actually reads.
const maxBcryptInput = 72

// HashPassword hashes a plaintext password with a per-call random salt.
// Only the first 72 bytes take part in the hash.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword(bcryptInput(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// ComparePassword reports whether plain matches hashed. A malformed hash is an error.
func ComparePassword(hashed, plain string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), bcryptInput(plain))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("compare password: %w", err)
}

// bcryptInput truncates to the bytes bcrypt reads, so longer passwords are
// accepted instead of failing with bcrypt.ErrPasswordTooLong.
func bcryptInput(password string) []byte {
	b := []byte(password)
	if len(b) > maxBcryptInput {
		b = b[:maxBcryptInput]
	}
	return b
}
