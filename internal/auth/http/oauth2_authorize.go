package http

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/hearthlabs/hearth-auth/internal/auth/domain"
	"github.com/hearthlabs/hearth-auth/internal/auth/service"
	"github.com/hearthlabs/hearth-auth/pkg/authsdk"
	"github.com/hearthlabs/hearth-auth/pkg/httpx"
)

const sessionCookieName = authsdk.SessionCookieName

const loginPath = "/v1/login"

// AuthorizeHandler serves GET /v1/oauth2/authorize, the front door of the
// authorization-code flow.
type AuthorizeHandler struct {
	Registry  *service.RegistryService
	Authorize *service.AuthorizeService
	Sessions  *service.SessionService
	Audit     *service.AuditService
	Logger    *slog.Logger
}

// HandleGet godoc
//
//	@Summary		OAuth2 authorization endpoint
//	@Description	Starts the authorization-code flow. With a valid session cookie the user is
//	@Description	redirected back to the client with a single-use code; without one the browser
//	@Description	is bounced to the login page carrying the original request as a round-trip
//	@Description	target (unless prompt=none, which returns 401 login_required instead).
//	@Description
//	@Description	Validation failures are always JSON on this endpoint; the browser is never
//	@Description	redirected to a redirect_uri that has not passed the registry check.
//	@Tags			OAuth2
//	@Produce		json
//	@Param			response_type			query		string					true	"Must be 'code'"	default(code)
//	@Param			client_id				query		string					true	"OAuth2 client identifier"
//	@Param			redirect_uri			query		string					true	"Callback URI (must exactly match a registered redirect URI)"
//	@Param			scope					query		string					false	"Space-delimited list of scopes"	example("profile:read admin:write")
//	@Param			state					query		string					false	"Opaque value echoed back on the redirect (CSRF protection)"
//	@Param			nonce					query		string					false	"Opaque value passed through into the access token"
//	@Param			prompt					query		string					false	"login forces re-authentication, none forbids interaction"	Enums(login, none)
//	@Param			screen_hint				query		string					false	"signup sends unauthenticated users to the signup variant of the login page"
//	@Param			code_challenge			query		string					false	"PKCE code challenge"
//	@Param			code_challenge_method	query		string					false	"PKCE method (S256 or plain, defaults to S256)"	Enums(S256, plain)
//	@Success		302						{string}	string					"Redirect to redirect_uri with code and state"
//	@Failure		400						{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		401						{object}	authsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/oauth2/authorize [get]
func (h *AuthorizeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	clientID := strings.TrimSpace(query.Get("client_id"))
	redirectURI := strings.TrimSpace(query.Get("redirect_uri"))
	responseType := strings.TrimSpace(query.Get("response_type"))

	if clientID == "" || redirectURI == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}
	if !strings.EqualFold(responseType, "code") {
		authsdk.NewOAuth2Error(http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest,
			"response_type must be 'code'").WriteError(w)
		return
	}

	prompt := strings.TrimSpace(query.Get("prompt"))
	switch prompt {
	case "", "login", "none":
	default:
		authsdk.NewOAuth2Error(http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest,
			"unsupported prompt value").WriteError(w)
		return
	}

	// The registry check gates everything else: until the client and
	// redirect URI pass, no response may point the browser at redirectURI.
	client, err := h.Registry.ValidateClient(ctx, clientID, redirectURI)
	if err != nil {
		h.auditFailure(r, clientID, "registry rejection")
		switch {
		case errors.Is(err, service.ErrInvalidClient):
			authsdk.ErrInvalidClient.WriteError(w)
		case errors.Is(err, service.ErrRedirectURIMismatch):
			authsdk.NewOAuth2Error(http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest,
				"redirect_uri is not registered for this client").WriteError(w)
		case errors.Is(err, service.ErrInvalidRequest):
			authsdk.ErrInvalidRequest.WriteError(w)
		default:
			h.Logger.Error("authorize client validation failed", "err", err)
			authsdk.ErrServerError.WriteError(w)
		}
		return
	}

	// Resolve the browser session; prompt=login discards it to force
	// re-authentication.
	var session *domain.Session
	if prompt != "login" {
		if cookie, err := r.Cookie(sessionCookieName); err == nil {
			if resolved, err := h.Sessions.Resolve(ctx, cookie.Value); err == nil {
				session = &resolved
			}
		}
	}

	if session == nil {
		if prompt == "none" {
			authsdk.ErrLoginRequired.WriteError(w)
			return
		}
		h.redirectToLogin(w, r, clientID, query.Get("screen_hint"))
		return
	}

	resp, err := h.Authorize.IssueAuthorizationCode(ctx, service.AuthorizeRequest{
		Client:              client,
		UserID:              session.UserID,
		SessionID:           session.ID,
		RedirectURI:         redirectURI,
		Scope:               httpx.ParseSpaceDelimitedFields(query.Get("scope")),
		State:               query.Get("state"),
		Nonce:               query.Get("nonce"),
		CodeChallenge:       query.Get("code_challenge"),
		CodeChallengeMethod: query.Get("code_challenge_method"),
	})
	if err != nil {
		h.auditFailure(r, clientID, "code issuance failed")
		switch {
		case errors.Is(err, service.ErrInvalidScope):
			authsdk.ErrInvalidScope.WriteError(w)
		case errors.Is(err, service.ErrInvalidRequest):
			authsdk.ErrInvalidRequest.WriteError(w)
		case errors.Is(err, service.ErrLoginRequired):
			authsdk.ErrLoginRequired.WriteError(w)
		default:
			h.Logger.Error("authorization code issuance failed", "err", err)
			authsdk.ErrServerError.WriteError(w)
		}
		return
	}

	h.Audit.Record(domain.AuditEvent{
		Event:     domain.AuditEventAuthorize,
		Action:    domain.AuditActionAccess,
		ActorID:   session.UserID,
		ClientID:  clientID,
		IPAddress: httpx.GetRemoteIP(r),
		UserAgent: r.UserAgent(),
	})

	// The code is durably stored at this point; hand it over.
	target, err := url.Parse(resp.RedirectURI)
	if err != nil {
		authsdk.ErrServerError.WriteError(w)
		return
	}
	q := target.Query()
	q.Set("code", resp.Code)
	if resp.State != "" {
		q.Set("state", resp.State)
	}
	target.RawQuery = q.Encode()

	httpx.NoCache(w)
	http.Redirect(w, r, target.String(), http.StatusFound)
}

// redirectToLogin bounces the browser to the login page, round-tripping the
// full authorization URL so login can resume the flow.
func (h *AuthorizeHandler) redirectToLogin(w http.ResponseWriter, r *http.Request, clientID, screenHint string) {
	v := url.Values{}
	v.Set("redirect", r.URL.RequestURI())
	v.Set("client_id", clientID)
	if screenHint == "signup" {
		v.Set("mode", "signup")
	}

	httpx.NoCache(w)
	http.Redirect(w, r, loginPath+"?"+v.Encode(), http.StatusFound)
}

func (h *AuthorizeHandler) auditFailure(r *http.Request, clientID, detail string) {
	h.Audit.Record(domain.AuditEvent{
		Event:     domain.AuditEventAuthorize,
		Action:    domain.AuditActionFailed,
		ClientID:  clientID,
		IPAddress: httpx.GetRemoteIP(r),
		UserAgent: r.UserAgent(),
		Detail:    detail,
	})
}
