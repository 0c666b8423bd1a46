package jwtx

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrAlgMismatch = errors.New("jwtx: algorithm mismatch")
	ErrUnknownKID  = errors.New("jwtx: unknown kid")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")
)

// Signer mints signed access tokens.
type Signer interface {
	Alg() string
	KID() string
	Sign(claims AccessClaims) (string, error)
}

// Verifier validates an access token and returns the claims if it's legit.
type Verifier interface {
	Verify(token string) (AccessClaims, error)
}

// EdDSASigner signs access tokens with an Ed25519 key.
type EdDSASigner struct {
	kid string
	key ed25519.PrivateKey
	pub ed25519.PublicKey
}

// NewEphemeralEdDSASigner generates a fresh Ed25519 keypair. Keys live only
// in memory; all access tokens become invalid on restart, which is fine for
// 15-minute tokens.
func NewEphemeralEdDSASigner(kid string) (*EdDSASigner, error) {
	pub, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("jwtx: generate ed25519 key: %w", err)
	}
	return &EdDSASigner{kid: kid, key: key, pub: pub}, nil
}

func (s *EdDSASigner) Alg() string { return jwt.SigningMethodEdDSA.Alg() }
func (s *EdDSASigner) KID() string { return s.kid }

func (s *EdDSASigner) Sign(claims AccessClaims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	t.Header["kid"] = s.kid
	return t.SignedString(s.key)
}

// Verifier returns a Verifier for tokens minted by this signer.
func (s *EdDSASigner) Verifier(issuer string) Verifier {
	return &edDSAVerifier{kid: s.kid, pub: s.pub, issuer: issuer}
}

type edDSAVerifier struct {
	kid    string
	pub    ed25519.PublicKey
	issuer string
}

func (v *edDSAVerifier) Verify(token string) (AccessClaims, error) {
	var claims AccessClaims

	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodEdDSA.Alg() {
			return nil, ErrAlgMismatch
		}
		if kid, _ := t.Header["kid"].(string); kid != v.kid {
			return nil, ErrUnknownKID
		}
		return v.pub, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return AccessClaims{}, ErrExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return AccessClaims{}, ErrMalformed
		case errors.Is(err, ErrAlgMismatch), errors.Is(err, ErrUnknownKID):
			return AccessClaims{}, err
		default:
			return AccessClaims{}, ErrInvalidSig
		}
	}

	if !parsed.Valid {
		return AccessClaims{}, ErrInvalidSig
	}
	if v.issuer != "" && claims.Issuer != v.issuer {
		return AccessClaims{}, ErrIssuer
	}

	return claims, nil
}
