// Package authsdk is a small client for the hearth-auth HTTP API. It is used
// by the end-to-end tests and by first-party services that drive the
// authorization flow programmatically.
package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SessionCookieName matches the cookie set by the auth service.
const SessionCookieName = "hearth_session"

// Client talks to a hearth-auth deployment. Redirects are never followed
// automatically; the caller inspects Location headers, which is what the
// authorization-code flow requires.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New returns a Client for the given base URL (no trailing slash).
func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 10 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// AuthorizeParams are the query parameters for the authorize endpoint.
type AuthorizeParams struct {
	ClientID            string
	RedirectURI         string
	ResponseType        string
	Scope               string
	State               string
	Nonce               string
	Prompt              string
	ScreenHint          string
	CodeChallenge       string
	CodeChallengeMethod string
}

func (p AuthorizeParams) values() url.Values {
	v := url.Values{}
	set := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}
	set("client_id", p.ClientID)
	set("redirect_uri", p.RedirectURI)
	set("response_type", p.ResponseType)
	set("scope", p.Scope)
	set("state", p.State)
	set("nonce", p.Nonce)
	set("prompt", p.Prompt)
	set("screen_hint", p.ScreenHint)
	set("code_challenge", p.CodeChallenge)
	set("code_challenge_method", p.CodeChallengeMethod)
	return v
}

// Login authenticates with username/password and returns the session cookie
// value. An empty otpCode is fine for users without a second factor.
func (c *Client) Login(ctx context.Context, username, password, otpCode string) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	if otpCode != "" {
		form.Set("otp_code", otpCode)
	}

	resp, err := c.postForm(ctx, "/v1/login", form)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusFound && resp.StatusCode != http.StatusOK {
		return "", decodeError(resp)
	}

	for _, cookie := range resp.Cookies() {
		if cookie.Name == SessionCookieName && cookie.Value != "" {
			return cookie.Value, nil
		}
	}
	return "", fmt.Errorf("authsdk: login response carried no session cookie")
}

// Authorize performs GET /v1/oauth2/authorize with the given session cookie
// and returns the raw response. The caller decides whether a 302 or an error
// body was expected.
func (c *Client) Authorize(ctx context.Context, params AuthorizeParams, sessionCookie string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.BaseURL+"/v1/oauth2/authorize?"+params.values().Encode(), nil)
	if err != nil {
		return nil, err
	}
	if sessionCookie != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sessionCookie})
	}
	return c.HTTP.Do(req)
}

// AuthorizeCode runs Authorize and extracts the code and state from the
// redirect Location, failing when the server did not redirect.
func (c *Client) AuthorizeCode(ctx context.Context, params AuthorizeParams, sessionCookie string) (code, state string, err error) {
	resp, err := c.Authorize(ctx, params, sessionCookie)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusFound {
		return "", "", decodeError(resp)
	}

	loc, err := url.Parse(resp.Header.Get("Location"))
	if err != nil {
		return "", "", fmt.Errorf("authsdk: parse redirect location: %w", err)
	}
	return loc.Query().Get("code"), loc.Query().Get("state"), nil
}

// ExchangeCode redeems an authorization code at the token endpoint.
func (c *Client) ExchangeCode(ctx context.Context, clientID, clientSecret, code, redirectURI, codeVerifier string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", clientID)
	form.Set("code", code)
	form.Set("redirect_uri", redirectURI)
	if clientSecret != "" {
		form.Set("client_secret", clientSecret)
	}
	if codeVerifier != "" {
		form.Set("code_verifier", codeVerifier)
	}

	resp, err := c.postForm(ctx, "/v1/oauth2/token", form)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var token TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, fmt.Errorf("authsdk: decode token response: %w", err)
	}
	return &token, nil
}

// Logout performs GET /v1/oauth2/logout and returns the raw response.
func (c *Client) Logout(ctx context.Context, clientID, postLogoutRedirectURI, state, sessionCookie string) (*http.Response, error) {
	v := url.Values{}
	if clientID != "" {
		v.Set("client_id", clientID)
	}
	if postLogoutRedirectURI != "" {
		v.Set("post_logout_redirect_uri", postLogoutRedirectURI)
	}
	if state != "" {
		v.Set("state", state)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.BaseURL+"/v1/oauth2/logout?"+v.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if sessionCookie != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sessionCookie})
	}
	return c.HTTP.Do(req)
}

// CreateClient registers a client application via the admin API.
func (c *Client) CreateClient(ctx context.Context, adminToken string, req CreateClientRequest) (*CreateClientResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/clients", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+adminToken)

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, decodeError(resp)
	}

	var created CreateClientResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("authsdk: decode create client response: %w", err)
	}
	return &created, nil
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.HTTP.Do(req)
}

// decodeError turns a non-2xx response into an *OAuth2Error when the body is
// a standard error payload, falling back to a generic error otherwise.
func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	var body ErrorResponse
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		return &OAuth2Error{
			StatusCode:  resp.StatusCode,
			Code:        body.Error,
			Description: body.ErrorDescription,
		}
	}
	return fmt.Errorf("authsdk: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
}
