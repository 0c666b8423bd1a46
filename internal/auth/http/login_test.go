package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func postLogin(env *testEnv, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/login",
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return env.do(req)
}

func TestLoginForm(t *testing.T) {
	env := newTestEnv(t, false)

	t.Run("renders the form", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/login?redirect=%2Fv1%2Foauth2%2Fauthorize%3Fclient_id%3Dabc", nil)
		rec := env.do(req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
		require.Contains(t, rec.Body.String(), `name="redirect"`)
		require.Contains(t, rec.Body.String(), "Sign in")
	})

	t.Run("signup mode changes the heading", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/login?mode=signup", nil)
		rec := env.do(req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "Create your account")
	})

	t.Run("absolute redirect is not embedded", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet,
			"/v1/login?redirect="+url.QueryEscape("https://evil.example.net/"), nil)
		rec := env.do(req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotContains(t, rec.Body.String(), "evil.example.net")
	})
}

func TestLoginSubmit(t *testing.T) {
	env := newTestEnv(t, false)

	t.Run("valid credentials set the session cookie", func(t *testing.T) {
		form := url.Values{}
		form.Set("username", "alice")
		form.Set("password", testPassword)
		form.Set("redirect", "/v1/oauth2/authorize?client_id=abc&state=xyz")

		rec := postLogin(env, form)
		require.Equal(t, http.StatusFound, rec.Code)
		require.Equal(t, "/v1/oauth2/authorize?client_id=abc&state=xyz",
			rec.Header().Get("Location"))

		var session *http.Cookie
		for _, c := range rec.Result().Cookies() {
			if c.Name == sessionCookieName {
				session = c
			}
		}
		require.NotNil(t, session)
		require.NotEmpty(t, session.Value)
		require.True(t, session.HttpOnly)

		// The cookie resumes the flow: authorize now issues a code.
		req := httptest.NewRequest(http.MethodGet, authorizeURL(map[string]string{
			"client_id":    env.client.ClientID,
			"redirect_uri": testRedirectURI,
		}), nil)
		req.AddCookie(session)
		rec = env.do(req)
		require.Equal(t, http.StatusFound, rec.Code)
	})

	t.Run("absolute redirect collapses to root", func(t *testing.T) {
		form := url.Values{}
		form.Set("username", "alice")
		form.Set("password", testPassword)
		form.Set("redirect", "https://evil.example.net/phish")

		rec := postLogin(env, form)
		require.Equal(t, http.StatusFound, rec.Code)
		require.Equal(t, "/", rec.Header().Get("Location"))
	})

	t.Run("protocol-relative redirect collapses to root", func(t *testing.T) {
		form := url.Values{}
		form.Set("username", "alice")
		form.Set("password", testPassword)
		form.Set("redirect", "//evil.example.net/phish")

		rec := postLogin(env, form)
		require.Equal(t, http.StatusFound, rec.Code)
		require.Equal(t, "/", rec.Header().Get("Location"))
	})

	t.Run("wrong password", func(t *testing.T) {
		form := url.Values{}
		form.Set("username", "alice")
		form.Set("password", "wrong")

		rec := postLogin(env, form)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "access_denied", decodeErrorBody(t, rec).Error)
	})

	t.Run("unknown user", func(t *testing.T) {
		form := url.Values{}
		form.Set("username", "nobody")
		form.Set("password", testPassword)

		rec := postLogin(env, form)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
