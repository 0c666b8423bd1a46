package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/hearthlabs/hearth-auth/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) authsdk.ErrorResponse {
	t.Helper()

	var body authsdk.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestAuthorizeValidation(t *testing.T) {
	env := newTestEnv(t, false)

	t.Run("missing client_id", func(t *testing.T) {
		rec := env.do(httptest.NewRequest(http.MethodGet,
			authorizeURL(map[string]string{"redirect_uri": testRedirectURI}), nil))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "invalid_request", decodeErrorBody(t, rec).Error)
		require.Empty(t, rec.Header().Get("Location"))
	})

	t.Run("missing redirect_uri", func(t *testing.T) {
		rec := env.do(httptest.NewRequest(http.MethodGet,
			authorizeURL(map[string]string{"client_id": env.client.ClientID}), nil))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "invalid_request", decodeErrorBody(t, rec).Error)
	})

	t.Run("wrong response_type", func(t *testing.T) {
		rec := env.do(httptest.NewRequest(http.MethodGet, authorizeURL(map[string]string{
			"client_id":     env.client.ClientID,
			"redirect_uri":  testRedirectURI,
			"response_type": "token",
		}), nil))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "invalid_request", decodeErrorBody(t, rec).Error)
	})

	t.Run("unknown client", func(t *testing.T) {
		rec := env.do(httptest.NewRequest(http.MethodGet, authorizeURL(map[string]string{
			"client_id":    "no-such-client",
			"redirect_uri": testRedirectURI,
		}), nil))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "invalid_client", decodeErrorBody(t, rec).Error)
	})

	t.Run("unregistered redirect_uri never redirects", func(t *testing.T) {
		cookie, _ := env.sessionCookie(t)
		for _, uri := range []string{
			"https://evil.example.com/callback",
			testRedirectURI + "/",
			"https://app.example.com/callback?x=1",
		} {
			req := httptest.NewRequest(http.MethodGet, authorizeURL(map[string]string{
				"client_id":    env.client.ClientID,
				"redirect_uri": uri,
			}), nil)
			req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: cookie})

			rec := env.do(req)
			require.Equal(t, http.StatusBadRequest, rec.Code, "uri %q", uri)
			require.Equal(t, "invalid_request", decodeErrorBody(t, rec).Error)
			require.Empty(t, rec.Header().Get("Location"), "uri %q must not redirect", uri)
		}
	})

	t.Run("unsupported prompt", func(t *testing.T) {
		rec := env.do(httptest.NewRequest(http.MethodGet, authorizeURL(map[string]string{
			"client_id":    env.client.ClientID,
			"redirect_uri": testRedirectURI,
			"prompt":       "consent",
		}), nil))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAuthorizeLoginRoundTrip(t *testing.T) {
	env := newTestEnv(t, false)

	t.Run("unauthenticated browser is sent to login", func(t *testing.T) {
		rec := env.do(httptest.NewRequest(http.MethodGet, authorizeURL(map[string]string{
			"client_id":    env.client.ClientID,
			"redirect_uri": testRedirectURI,
			"state":        "abc",
		}), nil))
		require.Equal(t, http.StatusFound, rec.Code)

		loc, err := url.Parse(rec.Header().Get("Location"))
		require.NoError(t, err)
		require.Equal(t, loginPath, loc.Path)
		require.Equal(t, env.client.ClientID, loc.Query().Get("client_id"))

		// The round-trip target is the full original authorization URL.
		resume, err := url.Parse(loc.Query().Get("redirect"))
		require.NoError(t, err)
		require.Equal(t, "/v1/oauth2/authorize", resume.Path)
		require.Equal(t, "abc", resume.Query().Get("state"))
		require.Empty(t, loc.Query().Get("mode"))
	})

	t.Run("screen_hint=signup adds mode=signup", func(t *testing.T) {
		rec := env.do(httptest.NewRequest(http.MethodGet, authorizeURL(map[string]string{
			"client_id":    env.client.ClientID,
			"redirect_uri": testRedirectURI,
			"screen_hint":  "signup",
		}), nil))
		require.Equal(t, http.StatusFound, rec.Code)

		loc, err := url.Parse(rec.Header().Get("Location"))
		require.NoError(t, err)
		require.Equal(t, "signup", loc.Query().Get("mode"))
	})

	t.Run("garbage cookie behaves like no session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, authorizeURL(map[string]string{
			"client_id":    env.client.ClientID,
			"redirect_uri": testRedirectURI,
		}), nil)
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "not-a-session"})

		rec := env.do(req)
		require.Equal(t, http.StatusFound, rec.Code)
		loc, err := url.Parse(rec.Header().Get("Location"))
		require.NoError(t, err)
		require.Equal(t, loginPath, loc.Path)
	})

	t.Run("prompt=none without session is 401 login_required", func(t *testing.T) {
		rec := env.do(httptest.NewRequest(http.MethodGet, authorizeURL(map[string]string{
			"client_id":    env.client.ClientID,
			"redirect_uri": testRedirectURI,
			"prompt":       "none",
		}), nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "login_required", decodeErrorBody(t, rec).Error)
	})

	t.Run("prompt=login ignores a perfectly good session", func(t *testing.T) {
		cookie, _ := env.sessionCookie(t)
		req := httptest.NewRequest(http.MethodGet, authorizeURL(map[string]string{
			"client_id":    env.client.ClientID,
			"redirect_uri": testRedirectURI,
			"prompt":       "login",
		}), nil)
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: cookie})

		rec := env.do(req)
		require.Equal(t, http.StatusFound, rec.Code)
		loc, err := url.Parse(rec.Header().Get("Location"))
		require.NoError(t, err)
		require.Equal(t, loginPath, loc.Path)
	})
}

func TestAuthorizeIssuesCode(t *testing.T) {
	env := newTestEnv(t, false)
	cookie, _ := env.sessionCookie(t)

	t.Run("valid session gets code and state", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, authorizeURL(map[string]string{
			"client_id":    env.client.ClientID,
			"redirect_uri": testRedirectURI,
			"state":        "opaque-state",
			"scope":        "profile:read",
		}), nil)
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: cookie})

		rec := env.do(req)
		require.Equal(t, http.StatusFound, rec.Code)

		loc, err := url.Parse(rec.Header().Get("Location"))
		require.NoError(t, err)
		require.Equal(t, "app.example.com", loc.Host)
		require.Equal(t, "/callback", loc.Path)
		require.Equal(t, "opaque-state", loc.Query().Get("state"))
		require.GreaterOrEqual(t, len(loc.Query().Get("code")), 32)
	})

	t.Run("prompt=none with session still issues a code", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, authorizeURL(map[string]string{
			"client_id":    env.client.ClientID,
			"redirect_uri": testRedirectURI,
			"prompt":       "none",
		}), nil)
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: cookie})

		rec := env.do(req)
		require.Equal(t, http.StatusFound, rec.Code)
		loc, err := url.Parse(rec.Header().Get("Location"))
		require.NoError(t, err)
		require.NotEmpty(t, loc.Query().Get("code"))
	})

	t.Run("unheld scopes are rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, authorizeURL(map[string]string{
			"client_id":    env.client.ClientID,
			"redirect_uri": testRedirectURI,
			"scope":        "banking:write",
		}), nil)
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: cookie})

		rec := env.do(req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "invalid_scope", decodeErrorBody(t, rec).Error)
	})
}
