package service

import (
	"errors"
	"fmt"
)

// Request-phase errors. HTTP handlers map these with errors.Is onto
// RFC 6749 wire errors.
var (
	ErrInvalidRequest      = errors.New("invalid_request")
	ErrInvalidClient       = errors.New("invalid_client")
	ErrRedirectURIMismatch = errors.New("redirect_uri_mismatch")
	ErrLoginRequired       = errors.New("login_required")
	ErrInvalidCredentials  = errors.New("invalid_credentials")
	ErrOTPRequired         = errors.New("otp_required")
	ErrInvalidScope        = errors.New("invalid_scope")
)

// ErrInvalidGrant is the umbrella for every way a code redemption can fail.
// The token endpoint deliberately reports all of them as a single
// invalid_grant so a caller cannot probe which check rejected the code.
// The wrapped variants below exist for logs and tests only.
var (
	ErrInvalidGrant = errors.New("invalid_grant")

	ErrInvalidCode            = fmt.Errorf("%w: unknown code", ErrInvalidGrant)
	ErrCodeExpired            = fmt.Errorf("%w: code expired", ErrInvalidGrant)
	ErrCodeAlreadyUsed        = fmt.Errorf("%w: code already used", ErrInvalidGrant)
	ErrClientMismatch         = fmt.Errorf("%w: code issued to another client", ErrInvalidGrant)
	ErrRedirectBindingBroken  = fmt.Errorf("%w: redirect_uri does not match issuance", ErrInvalidGrant)
	ErrPKCEVerificationFailed = fmt.Errorf("%w: pkce verification failed", ErrInvalidGrant)
)
