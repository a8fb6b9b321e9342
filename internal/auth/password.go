package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// SaltLength is the number of random salt bytes generated per user.
	SaltLength = 16

	// KeyLength is the size of the derived key in bytes.
	KeyLength = 32

	// MinIterations is the lowest PBKDF2 work factor the hasher will
	// accept; smaller configured values are raised to this floor.
	MinIterations = 100000
)

// HashPassword derives a key from the password with a fresh random salt
// using PBKDF2-HMAC-SHA256. It returns the effective iteration count
// actually used in the derivation; the salt, derived key and that count
// must all be stored to verify later.
func HashPassword(password string, iterations int) (salt, derivedKey []byte, effective int, err error) {
	if iterations < MinIterations {
		iterations = MinIterations
	}

	salt = make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, nil, 0, err
	}

	derivedKey = pbkdf2.Key([]byte(password), salt, iterations, KeyLength, sha256.New)
	return salt, derivedKey, iterations, nil
}

// VerifyPassword recomputes the derived key and compares it in constant
// time. Mismatched input lengths simply compare unequal.
func VerifyPassword(password string, salt, derivedKey []byte, iterations int) bool {
	if len(salt) == 0 || len(derivedKey) == 0 || iterations <= 0 {
		return false
	}
	candidate := pbkdf2.Key([]byte(password), salt, iterations, len(derivedKey), sha256.New)
	return subtle.ConstantTimeCompare(candidate, derivedKey) == 1
}
