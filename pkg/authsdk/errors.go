package authsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/hearthlabs/hearth-auth/pkg/httpx"
)

// OAuth2 error codes per RFC 6749.
const (
	ErrorCodeInvalidRequest       = "invalid_request"
	ErrorCodeInvalidClient        = "invalid_client"
	ErrorCodeInvalidGrant         = "invalid_grant"
	ErrorCodeUnsupportedGrantType = "unsupported_grant_type"
	ErrorCodeInvalidScope         = "invalid_scope"
	ErrorCodeServerError          = "server_error"
	ErrorCodeLoginRequired        = "login_required"
	ErrorCodeAccessDenied         = "access_denied"
)

// OAuth2Error represents a standard OAuth2 error response per RFC 6749. It
// implements the error interface and is used both by the server (to write
// HTTP responses) and by the SDK client (to surface failures).
type OAuth2Error struct {
	// StatusCode is the HTTP status code for this error.
	StatusCode int `json:"-"`

	// Code is the OAuth2 error code (e.g. "invalid_request").
	Code string `json:"error"`

	// Description is a human-readable description of the error.
	Description string `json:"error_description"`
}

func (e *OAuth2Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes this OAuth2Error to an HTTP response writer.
func (e *OAuth2Error) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             e.Code,
		"error_description": e.Description,
	})
}

// NewOAuth2Error builds a one-off error value.
func NewOAuth2Error(status int, code, description string) *OAuth2Error {
	return &OAuth2Error{StatusCode: status, Code: code, Description: description}
}

var (
	// ErrInvalidRequest: missing, repeated, or malformed parameters.
	ErrInvalidRequest = &OAuth2Error{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed or missing required parameters",
	}

	// ErrInvalidClient: unknown, inactive, or unauthenticated client.
	ErrInvalidClient = &OAuth2Error{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidClient,
		Description: "unknown or invalid client",
	}

	// ErrInvalidGrant: the authorization code is invalid, expired, already
	// used, bound to another client or redirect URI, or failed PKCE.
	ErrInvalidGrant = &OAuth2Error{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidGrant,
		Description: "the provided authorization grant is invalid",
	}

	// ErrUnsupportedGrantType: only authorization_code is supported.
	ErrUnsupportedGrantType = &OAuth2Error{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeUnsupportedGrantType,
		Description: "grant type not supported",
	}

	// ErrInvalidScope: none of the requested scopes can be granted.
	ErrInvalidScope = &OAuth2Error{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidScope,
		Description: "the requested scope cannot be granted",
	}

	// ErrLoginRequired: prompt=none with no usable session.
	ErrLoginRequired = &OAuth2Error{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeLoginRequired,
		Description: "user authentication required",
	}

	// ErrServerError: something went wrong on our side.
	ErrServerError = &OAuth2Error{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}

	// ErrInvalidContentType: token-style endpoints only accept forms.
	ErrInvalidContentType = &OAuth2Error{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "content type must be application/x-www-form-urlencoded",
	}

	// ErrInvalidFormBody: the form body failed to parse.
	ErrInvalidFormBody = &OAuth2Error{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "malformed form body",
	}
)
