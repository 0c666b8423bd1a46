package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidSession is the single error returned for every session-token
// failure mode. Callers must not be able to distinguish a bad signature from
// a structurally broken token, so there is exactly one error.
var ErrInvalidSession = errors.New("jwtx: invalid session token")

// SessionCodec signs and verifies browser session tokens with a symmetric
// server-held secret (HS256).
type SessionCodec struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

// Sign mints a session token for the given user and session IDs.
func (c *SessionCodec) Sign(userID, sessionID string, now time.Time) (string, error) {
	ttl := c.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.Issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		SID: sessionID,
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.Secret)
}

// Verify validates a session token and returns its claims. All failures map
// to ErrInvalidSession.
func (c *SessionCodec) Verify(token string) (SessionClaims, error) {
	var claims SessionClaims

	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, ErrInvalidSession
		}
		return c.Secret, nil
	})
	if err != nil || !parsed.Valid {
		return SessionClaims{}, ErrInvalidSession
	}

	if c.Issuer != "" && claims.Issuer != c.Issuer {
		return SessionClaims{}, ErrInvalidSession
	}
	if claims.Subject == "" || claims.SID == "" {
		return SessionClaims{}, ErrInvalidSession
	}

	return claims, nil
}
