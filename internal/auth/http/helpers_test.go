package http

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hearthlabs/hearth-auth/internal/auth/domain"
	"github.com/hearthlabs/hearth-auth/internal/auth/service"
	"github.com/hearthlabs/hearth-auth/internal/auth/store"
	"github.com/hearthlabs/hearth-auth/internal/auth/store/drivers/sqlite"
	"github.com/hearthlabs/hearth-auth/pkg/cryptox"
	"github.com/hearthlabs/hearth-auth/pkg/jwtx"
	"github.com/hearthlabs/hearth-auth/pkg/slogx"
	"github.com/stretchr/testify/require"
)

const (
	testRedirectURI = "https://app.example.com/callback"
	testPassword    = "hunter2-hunter2"
)

var remoteAddrSeq atomic.Int64

type testEnv struct {
	router   *Router
	store    store.Store
	signer   *jwtx.EdDSASigner
	sessions *service.SessionService
	users    *service.UserService

	user   domain.User
	client domain.Client
	secret string
}

func newTestEnv(t *testing.T, confidential bool) *testEnv {
	t.Helper()

	dir := t.TempDir()
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	st, err := sqlite.NewStore(filepath.Join(dir, "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	signer, err := jwtx.NewEphemeralEdDSASigner("test-key")
	require.NoError(t, err)
	verifier := signer.Verifier("hearth-auth")

	logger := slogx.Discard()
	codec := &jwtx.SessionCodec{
		Secret: []byte("test-session-secret-test-session"),
		Issuer: "hearth-auth",
	}

	sessions := &service.SessionService{Store: st, Codec: codec, SessionTTL: time.Hour}
	users := &service.UserService{Store: st}
	audit := &service.AuditService{Store: st, Logger: logger}

	router := NewRouter(verifier, "hearth-auth", "test", false, st, logger)
	router.RegistryService = &service.RegistryService{Store: st}
	router.AuthorizeService = &service.AuthorizeService{Store: st, CodeTTL: time.Minute}
	router.TokenService = &service.TokenService{Store: st, Signer: signer, Issuer: "hearth-auth"}
	router.SessionService = sessions
	router.UserService = users
	router.ClientService = &service.ClientService{Store: st}
	router.AuditService = audit
	router.ApplyRoutes()

	user, err := users.CreateUser(context.Background(), "alice", testPassword,
		[]string{"profile:read", "admin:read", "admin:write"})
	require.NoError(t, err)

	clientSvc := &service.ClientService{Store: st}
	created, err := clientSvc.CreateClient(context.Background(), "Test App",
		[]string{testRedirectURI, "https://app.example.com/alt"}, confidential)
	require.NoError(t, err)

	return &testEnv{
		router:   router,
		store:    st,
		signer:   signer,
		sessions: sessions,
		users:    users,
		user:     user,
		client:   created.Client,
		secret:   created.ClientSecret,
	}
}

// do serves the request through the full router; each request gets a fresh
// remote address so rate limits never interfere with assertions.
func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	req.RemoteAddr = fmt.Sprintf("192.0.2.%d:4000", remoteAddrSeq.Add(1)%250+1)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// sessionCookie establishes a session for the test user and returns the
// signed cookie value.
func (e *testEnv) sessionCookie(t *testing.T) (string, domain.Session) {
	t.Helper()

	token, sess, err := e.sessions.Create(context.Background(), e.user.ID, "test-agent", "192.0.2.1")
	require.NoError(t, err)
	return token, sess
}

// accessToken mints a bearer token for the test user with the given scopes.
func (e *testEnv) accessToken(t *testing.T, sessionID string, scopes []string) string {
	t.Helper()

	claims := jwtx.NewAccessClaims(e.user.ID, sessionID, scopes, "", time.Minute,
		"hearth-auth", []string{e.client.ClientID}, time.Now().UTC())
	token, err := e.signer.Sign(claims)
	require.NoError(t, err)
	return token
}

// authorizeURL builds an authorize request URL. response_type defaults to
// "code" and can be overridden (or blanked) via params.
func authorizeURL(params map[string]string) string {
	v := url.Values{}
	v.Set("response_type", "code")
	for key, val := range params {
		if val == "" {
			v.Del(key)
			continue
		}
		v.Set(key, val)
	}
	return "/v1/oauth2/authorize?" + v.Encode()
}
