package domain

import "time"

// Session is the server-side record backing a browser session cookie. The
// cookie signature proves integrity; Active is the authoritative revocation
// state. Sessions are never deleted, only revoked, so the audit trail stays
// intact.
type Session struct {
	ID           string
	UserID       string
	Active       bool
	RevokedAt    *time.Time
	RevokeReason string
	UserAgent    string
	IPAddress    string
	ExpiresAt    time.Time
	CreatedAt    time.Time
}
