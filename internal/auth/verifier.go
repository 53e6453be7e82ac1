// Package auth guards the admin surface with a single shared password hash
// and short-lived bearer sessions.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// DefaultPasswordHash is the SHA-256 hex digest of "admin123".
const DefaultPasswordHash = "240be518fabd2724ddb6f04eeb1da5967448d7e831c08c8fa822809f74c720a9"

// MinPasswordLength is enforced when generating new hashes.
const MinPasswordLength = 6

var (
	// ErrUnauthorized is returned for a wrong password or an unknown session.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrPasswordTooShort is returned by the hash helpers.
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
)

// Verifier checks passwords against a SHA-256 hex digest or a bcrypt hash.
type Verifier struct {
	hash string
}

// NewVerifier returns a verifier for hash, falling back to DefaultPasswordHash.
func NewVerifier(hash string) *Verifier {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		hash = DefaultPasswordHash
	}
	return &Verifier{hash: hash}
}

// IsBcrypt reports whether hash is a bcrypt hash.
func IsBcrypt(hash string) bool { return strings.HasPrefix(hash, "$2") }

// UsesDefault reports whether the verifier still holds the shipped default.
func (v *Verifier) UsesDefault() bool { return v.hash == DefaultPasswordHash }

// Verify returns nil when password matches the configured hash.
func (v *Verifier) Verify(password string) error {
	if IsBcrypt(v.hash) {
		if err := bcrypt.CompareHashAndPassword([]byte(v.hash), []byte(password)); err != nil {
			return ErrUnauthorized
		}
		return nil
	}
	sum := HashSHA256(password)
	if subtle.ConstantTimeCompare([]byte(sum), []byte(strings.ToLower(v.hash))) != 1 {
		return ErrUnauthorized
	}
	return nil
}

// HashSHA256 returns the lowercase hex SHA-256 digest of password.
func HashSHA256(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// HashBcrypt hashes password with bcrypt at cost (bcrypt.DefaultCost when zero).
func HashBcrypt(password string, cost int) (string, error) {
	if len(password) < MinPasswordLength {
		return "", ErrPasswordTooShort
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	out, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
