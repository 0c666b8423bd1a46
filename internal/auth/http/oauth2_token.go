package http

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/hearthlabs/hearth-auth/internal/auth/domain"
	"github.com/hearthlabs/hearth-auth/internal/auth/service"
	"github.com/hearthlabs/hearth-auth/pkg/authsdk"
	"github.com/hearthlabs/hearth-auth/pkg/httpx"
	"github.com/hearthlabs/hearth-auth/pkg/slogx"
)

// TokenHandler serves POST /v1/oauth2/token
// Accepts application/x-www-form-urlencoded per the RFC 6749 framework.
type TokenHandler struct {
	TokenService *service.TokenService
	Audit        *service.AuditService
}

// ServeHTTP godoc
//
//	@Summary		OAuth2 Token Endpoint
//	@Description	Redeems a single-use authorization code for an EdDSA-signed access token.
//	@Description	Every way a redemption can fail (unknown code, expired, already used, wrong
//	@Description	client, wrong redirect_uri, failed PKCE) reports the same invalid_grant error.
//	@Tags			OAuth2
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			grant_type		formData	string					true	"Must be 'authorization_code'"
//	@Param			code			formData	string					true	"Authorization code"
//	@Param			redirect_uri	formData	string					true	"Redirect URI used at authorization"
//	@Param			client_id		formData	string					true	"Client identifier"
//	@Param			code_verifier	formData	string					false	"PKCE code_verifier (required when PKCE was used)"
//	@Param			client_secret	formData	string					false	"Client secret (required for confidential clients)"
//	@Success		200				{object}	authsdk.TokenResponse	"access_token, token_type, expires_in, scope"
//	@Failure		400				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		500				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Header			200				{string}	Cache-Control			"no-store"
//	@Router			/v1/oauth2/token [post].
func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// 1. Ensure the right content-type
	if ct := r.Header.Get("Content-Type"); ct != "" &&
		!strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		authsdk.ErrInvalidContentType.WriteError(w)
		return
	}

	// 2. Parse the form body
	if err := r.ParseForm(); err != nil {
		authsdk.ErrInvalidFormBody.WriteError(w)
		return
	}

	// 3. Handle the grant type
	switch r.Form.Get("grant_type") {
	case "authorization_code":
		h.handleAuthorizationCodeGrant(w, r, r.Form)
	default:
		authsdk.ErrUnsupportedGrantType.WriteError(w)
	}
}

func (h *TokenHandler) handleAuthorizationCodeGrant(
	w http.ResponseWriter,
	r *http.Request,
	form url.Values,
) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	code := strings.TrimSpace(form.Get("code"))
	redirectURI := strings.TrimSpace(form.Get("redirect_uri"))
	clientID := strings.TrimSpace(form.Get("client_id"))
	codeVerifier := strings.TrimSpace(form.Get("code_verifier"))
	clientSecret := form.Get("client_secret")

	if code == "" || redirectURI == "" || clientID == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	result, err := h.TokenService.ExchangeAuthorizationCode(ctx, clientID, clientSecret, code, redirectURI, codeVerifier)
	if err != nil {
		h.Audit.Record(domain.AuditEvent{
			Event:     domain.AuditEventToken,
			Action:    domain.AuditActionFailed,
			ClientID:  clientID,
			IPAddress: httpx.GetRemoteIP(r),
			UserAgent: r.UserAgent(),
		})
		switch {
		case errors.Is(err, service.ErrInvalidClient):
			authsdk.ErrInvalidClient.WriteError(w)
		case errors.Is(err, service.ErrInvalidGrant):
			authsdk.ErrInvalidGrant.WriteError(w)
		case errors.Is(err, service.ErrInvalidRequest):
			authsdk.ErrInvalidRequest.WriteError(w)
		default:
			log.Error("authorization_code grant failed", "err", err)
			authsdk.ErrServerError.WriteError(w)
		}
		return
	}

	h.Audit.Record(domain.AuditEvent{
		Event:     domain.AuditEventToken,
		Action:    domain.AuditActionAccess,
		ClientID:  clientID,
		IPAddress: httpx.GetRemoteIP(r),
		UserAgent: r.UserAgent(),
	})

	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	httpx.WriteJSON(w, http.StatusOK, authsdk.TokenResponse{
		AccessToken: result.AccessToken,
		TokenType:   result.TokenType,
		ExpiresIn:   int(result.ExpiresIn),
		Scope:       strings.Join(result.Scope, " "),
	})
}
