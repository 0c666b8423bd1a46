package domain

import "time"

// AuthorizationCode is one issued code. The opaque code value is never
// stored; CodeHash is its SHA-256 fingerprint. A code moves from issued to
// consumed exactly once; expiry is detected lazily at redemption.
type AuthorizationCode struct {
	ID                  string
	UserID              string
	ClientID            string // internal client ID, not the public client_id
	CodeHash            string
	RedirectURI         string
	Scopes              []string
	State               string
	Nonce               string
	SessionID           string
	CodeChallenge       string
	CodeChallengeMethod string
	ExpiresAt           time.Time
	ConsumedAt          *time.Time
	CreatedAt           time.Time
}
