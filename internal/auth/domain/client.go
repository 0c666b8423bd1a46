package domain

import "time"

// Client is a registered client application allowed to request authorization
// codes. ClientID is the public identifier presented on the wire; ID is the
// internal key authorization codes are bound to.
type Client struct {
	ID           string
	ClientID     string
	Name         string
	SecretHash   string // empty for public clients
	RedirectURIs []string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Confidential reports whether the client authenticates with a secret.
func (c Client) Confidential() bool { return c.SecretHash != "" }
