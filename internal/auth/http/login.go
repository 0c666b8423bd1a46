package http

import (
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"

	"github.com/hearthlabs/hearth-auth/internal/auth/domain"
	"github.com/hearthlabs/hearth-auth/internal/auth/service"
	"github.com/hearthlabs/hearth-auth/pkg/authsdk"
	"github.com/hearthlabs/hearth-auth/pkg/httpx"
	"github.com/hearthlabs/hearth-auth/pkg/jwtx"
)

// LoginHandler serves GET and POST /v1/login. The authorize endpoint bounces
// unauthenticated browsers here with the original authorization URL in the
// `redirect` query parameter; a successful POST sets the session cookie and
// sends the browser back to resume the flow.
type LoginHandler struct {
	Users        *service.UserService
	Sessions     *service.SessionService
	Audit        *service.AuditService
	SecureCookie bool
}

// HandleGet godoc
//
//	@Summary		Login form
//	@Description	Renders a minimal login form for browser flows. The redirect parameter is
//	@Description	carried into the form and round-tripped on submit.
//	@Tags			Auth
//	@Produce		html
//	@Param			redirect	query		string	false	"Relative URL to resume after login"
//	@Param			mode		query		string	false	"signup switches the form heading"
//	@Success		200			{string}	string	"HTML form"
//	@Router			/v1/login [get]
func (h *LoginHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	redirect := sanitizeRedirectTarget(r.URL.Query().Get("redirect"))
	heading := "Sign in"
	if r.URL.Query().Get("mode") == "signup" {
		heading = "Create your account"
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	httpx.NoCache(w)
	fmt.Fprintf(w, `<!doctype html>
<html>
<head><title>%s - Hearth</title></head>
<body>
<h1>%s</h1>
<form method="post" action="/v1/login">
<input type="hidden" name="redirect" value="%s">
<label>Username <input type="text" name="username" autocomplete="username"></label>
<label>Password <input type="password" name="password" autocomplete="current-password"></label>
<label>One-time code <input type="text" name="otp_code" autocomplete="one-time-code"></label>
<button type="submit">%s</button>
</form>
</body>
</html>`, heading, heading, html.EscapeString(redirect), heading)
}

// HandlePost godoc
//
//	@Summary		Authenticate
//	@Description	Verifies username/password (and a TOTP code for enrolled users), establishes
//	@Description	a session, sets the session cookie and redirects to the round-trip target.
//	@Description	Only relative same-origin targets are honoured.
//	@Tags			Auth
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			username	formData	string					true	"Username"
//	@Param			password	formData	string					true	"Password"
//	@Param			otp_code	formData	string					false	"TOTP code (required for enrolled users)"
//	@Param			redirect	formData	string					false	"Relative URL to resume after login"
//	@Success		302			{string}	string					"Redirect to the resume target"
//	@Failure		400			{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		401			{object}	authsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/login [post]
func (h *LoginHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		authsdk.ErrInvalidFormBody.WriteError(w)
		return
	}

	username := strings.TrimSpace(r.Form.Get("username"))
	password := r.Form.Get("password")
	otpCode := r.Form.Get("otp_code")

	user, err := h.Users.Authenticate(ctx, username, password, otpCode)
	if err != nil {
		h.Audit.Record(domain.AuditEvent{
			Event:     domain.AuditEventLogin,
			Action:    domain.AuditActionFailed,
			IPAddress: httpx.GetRemoteIP(r),
			UserAgent: r.UserAgent(),
		})
		switch {
		case errors.Is(err, service.ErrOTPRequired):
			authsdk.NewOAuth2Error(http.StatusUnauthorized, authsdk.ErrorCodeAccessDenied,
				"one-time code required").WriteError(w)
		case errors.Is(err, service.ErrInvalidCredentials):
			authsdk.NewOAuth2Error(http.StatusUnauthorized, authsdk.ErrorCodeAccessDenied,
				"invalid username or password").WriteError(w)
		default:
			authsdk.ErrServerError.WriteError(w)
		}
		return
	}

	token, _, err := h.Sessions.Create(ctx, user.ID, r.UserAgent(), httpx.GetRemoteIP(r))
	if err != nil {
		authsdk.ErrServerError.WriteError(w)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(jwtx.DefaultSessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	h.Audit.Record(domain.AuditEvent{
		Event:     domain.AuditEventLogin,
		Action:    domain.AuditActionLogin,
		ActorID:   user.ID,
		IPAddress: httpx.GetRemoteIP(r),
		UserAgent: r.UserAgent(),
	})

	target := sanitizeRedirectTarget(r.Form.Get("redirect"))
	httpx.NoCache(w)
	http.Redirect(w, r, target, http.StatusFound)
}

// sanitizeRedirectTarget accepts only relative same-origin paths. Anything
// absolute, protocol-relative or unparseable falls back to the root, so the
// login round-trip cannot be abused as an open redirect.
func sanitizeRedirectTarget(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") {
		return "/"
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return raw
}
