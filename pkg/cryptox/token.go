package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// Token size constants (in bytes before encoding).
const (
	// Size128 provides 128 bits of entropy (22 chars base64url).
	Size128 = 16
	// Size256 provides 256 bits of entropy (43 chars base64url).
	Size256 = 32
)

// NewToken creates a cryptographically secure random token of the given byte
// length, encoded as base64url without padding. Authorization codes and other
// opaque credentials use Size256 so the encoded form stays above 32 chars.
func NewToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("cryptox: token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("cryptox: read random: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// MustNewToken is like NewToken but panics on error. Only for init paths
// where a failing RNG is unrecoverable anyway.
func MustNewToken(size int) string {
	token, err := NewToken(size)
	if err != nil {
		panic(err)
	}
	return token
}

// Fingerprint returns a deterministic SHA-256 fingerprint of a token,
// base64url encoded. Stores keep fingerprints instead of the raw value so a
// database leak never exposes live credentials.
func Fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
