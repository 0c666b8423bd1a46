package domain

import "time"

// User is the minimal slice of the platform's user directory the auth
// service needs: enough to verify credentials at login and to mint tokens.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	OTPSecret    *string // set when the user enrolled a TOTP second factor
	Scopes       []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
