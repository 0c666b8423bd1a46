// Package jwtx holds the token formats used by the service: EdDSA-signed
// access tokens handed to clients, and HS256-signed session tokens carried in
// the browser cookie.
package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAccessTokenTTL is the default lifetime for access tokens.
const DefaultAccessTokenTTL = 15 * time.Minute

// DefaultSessionTTL is the default lifetime for browser sessions.
const DefaultSessionTTL = 7 * 24 * time.Hour

// AccessClaims are the claims carried by access tokens.
type AccessClaims struct {
	jwt.RegisteredClaims

	// SID is the session the token was minted under.
	SID string `json:"sid,omitempty"`

	// Scopes granted to the token, e.g. "profile:read admin:write".
	Scopes []string `json:"scopes,omitempty"`

	// Nonce is the opaque value from the authorization request, passed
	// through untouched so clients can bind tokens to their request.
	Nonce string `json:"nonce,omitempty"`
}

// NewAccessClaims builds minimally-correct access-token claims.
func NewAccessClaims(
	subject, sid string,
	scopes []string,
	nonce string,
	ttl time.Duration,
	issuer string,
	audience []string,
	now time.Time,
) AccessClaims {
	return AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings(audience),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		SID:    sid,
		Scopes: scopes,
		Nonce:  nonce,
	}
}

// SessionClaims are the claims carried by the browser session cookie. The
// subject is the user ID; SID identifies the server-side session row that
// holds the authoritative revocation state.
type SessionClaims struct {
	jwt.RegisteredClaims

	SID string `json:"sid"`
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
