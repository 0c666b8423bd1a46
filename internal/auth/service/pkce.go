package service

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"strings"
)

// normalizePKCE validates and canonicalizes the challenge/method pair at
// issuance time. A challenge without a method defaults to S256. An unknown
// method is rejected up front so a bad pair can never be stored.
func normalizePKCE(challenge, method string) (string, string, error) {
	challenge = strings.TrimSpace(challenge)
	method = strings.TrimSpace(method)

	if challenge == "" {
		if method != "" {
			return "", "", ErrInvalidRequest
		}
		return "", "", nil
	}

	switch {
	case method == "" || strings.EqualFold(method, "S256"):
		return challenge, "S256", nil
	case strings.EqualFold(method, "plain"):
		return challenge, "plain", nil
	default:
		return "", "", ErrInvalidRequest
	}
}

// verifyCodeVerifier checks the verifier presented at redemption against
// the challenge stored at issuance. No stored challenge means the flow ran
// without PKCE and verification is skipped; a stored challenge with a
// missing verifier is a hard failure.
func verifyCodeVerifier(challenge, method, verifier string) bool {
	challenge = strings.TrimSpace(challenge)
	if challenge == "" {
		// No PKCE challenge stored; accept regardless of verifier.
		return true
	}

	verifier = strings.TrimSpace(verifier)
	if verifier == "" {
		return false
	}

	method = strings.TrimSpace(method)
	switch {
	case strings.EqualFold(method, "plain"):
		return subtle.ConstantTimeCompare([]byte(challenge), []byte(verifier)) == 1
	case method == "" || strings.EqualFold(method, "S256"):
		sum := sha256.Sum256([]byte(verifier))
		expected := base64.RawURLEncoding.EncodeToString(sum[:])
		return subtle.ConstantTimeCompare([]byte(challenge), []byte(expected)) == 1
	default:
		return false
	}
}
