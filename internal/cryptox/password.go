// Package cryptox provides the credential-hashing primitive and opaque
// token generation used by the auth server.
package cryptox

import (
	"crypto/rand"
	"encoding/base64"

	"golang.org/x/crypto/bcrypt"
)

// refreshTokenBytes is the entropy of an opaque refresh token. 48 random
// bytes encode to a 64-character URL-safe string.
const refreshTokenBytes = 48

// HashPassword returns a bcrypt hash of the given plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword checks plaintext against a stored bcrypt hash. A malformed
// stored hash is a verification failure, not an error.
func VerifyPassword(password, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password)) == nil
}

// NewRefreshToken generates a cryptographically random, URL-safe opaque
// token. The value is never interpreted, only compared for exact equality
// against the ledger.
func NewRefreshToken() (string, error) {
	b := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
