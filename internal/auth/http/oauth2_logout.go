package http

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/hearthlabs/hearth-auth/internal/auth/domain"
	"github.com/hearthlabs/hearth-auth/internal/auth/service"
	"github.com/hearthlabs/hearth-auth/pkg/authsdk"
	"github.com/hearthlabs/hearth-auth/pkg/httpx"
	"github.com/hearthlabs/hearth-auth/pkg/jwtx"
)

// LogoutHandler serves GET /v1/oauth2/logout.
//
// Logout is deliberately forgiving: once the redirect target is validated,
// the response is always a 302, whatever state the session was in.
// Revocation is best effort; the only hard failure is an untrusted
// post_logout_redirect_uri.
type LogoutHandler struct {
	Registry     *service.RegistryService
	Sessions     *service.SessionService
	Audit        *service.AuditService
	Verifier     jwtx.Verifier
	SecureCookie bool
}

// ServeHTTP godoc
//
//	@Summary		OAuth2 logout endpoint
//	@Description	Revokes the caller's session (best effort), clears the session cookie and
//	@Description	redirects. A post_logout_redirect_uri must belong to the named client: either
//	@Description	an exact registered match or, failing that, a shared origin with a registered
//	@Description	redirect URI. Without a URI the browser lands on the login page.
//	@Tags			OAuth2
//	@Produce		json
//	@Param			client_id					query		string					false	"Client identifier (required when post_logout_redirect_uri is given)"
//	@Param			post_logout_redirect_uri	query		string					false	"Where to send the browser afterwards"
//	@Param			state						query		string					false	"Opaque value appended to the redirect target"
//	@Success		302							{string}	string					"Redirect to the validated target"
//	@Failure		400							{object}	authsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/oauth2/logout [get]
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	clientID := strings.TrimSpace(query.Get("client_id"))
	postLogoutURI := strings.TrimSpace(query.Get("post_logout_redirect_uri"))
	state := query.Get("state")

	// Validate the redirect target before touching any session state.
	target := loginPath
	if postLogoutURI != "" {
		if clientID == "" {
			authsdk.NewOAuth2Error(http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest,
				"post_logout_redirect_uri requires client_id").WriteError(w)
			return
		}

		_, err := h.Registry.ValidateClient(ctx, clientID, postLogoutURI)
		switch {
		case err == nil:
			target = postLogoutURI
		default:
			// Exact match failed; a shared origin with a registered
			// redirect URI is still acceptable for a logout landing page.
			c, gerr := h.Registry.GetClient(ctx, clientID)
			if gerr != nil || !h.Registry.HasTrustedOriginMatch(c, postLogoutURI) {
				authsdk.NewOAuth2Error(http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest,
					"post_logout_redirect_uri is not trusted for this client").WriteError(w)
				return
			}
			target = postLogoutURI
		}
	}

	// Best-effort revocation: session cookie first, bearer token second.
	// Neither being present or parseable does not block logout.
	var actorID string
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if sess, err := h.Sessions.Resolve(ctx, cookie.Value); err == nil {
			actorID = sess.UserID
		}
		h.Sessions.RevokeFromToken(ctx, cookie.Value, service.RevokeReasonLogout)
	} else if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		if claims, err := h.Verifier.Verify(strings.TrimPrefix(auth, "Bearer ")); err == nil {
			actorID = claims.Subject
			_ = h.Sessions.Revoke(ctx, claims.SID, service.RevokeReasonLogout)
		}
	}

	clearSessionCookie(w, h.SecureCookie)

	h.Audit.Record(domain.AuditEvent{
		Event:     domain.AuditEventLogout,
		Action:    domain.AuditActionLogout,
		ActorID:   actorID,
		ClientID:  clientID,
		IPAddress: httpx.GetRemoteIP(r),
		UserAgent: r.UserAgent(),
	})

	if state != "" {
		if u, err := url.Parse(target); err == nil {
			q := u.Query()
			q.Set("state", state)
			u.RawQuery = q.Encode()
			target = u.String()
		}
	}

	httpx.NoCache(w)
	http.Redirect(w, r, target, http.StatusFound)
}

func clearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
