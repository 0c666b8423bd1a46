package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/hearthlabs/hearth-auth/internal/auth/service"
	"github.com/hearthlabs/hearth-auth/internal/auth/store"
	"github.com/hearthlabs/hearth-auth/pkg/httpx"
	"github.com/hearthlabs/hearth-auth/pkg/jwtx"
	"github.com/hearthlabs/hearth-auth/pkg/slogx"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	issuer       string
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	secureCookie bool

	store            store.Store
	RegistryService  *service.RegistryService
	AuthorizeService *service.AuthorizeService
	TokenService     *service.TokenService
	SessionService   *service.SessionService
	UserService      *service.UserService
	ClientService    *service.ClientService
	AuditService     *service.AuditService
}

func NewRouter(
	verifier jwtx.Verifier,
	issuer, buildVersion string,
	secureCookie bool,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		issuer:       issuer,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		secureCookie: secureCookie,
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerOAuth2()
	r.registerLogin()
	r.registerClients()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Hearth Auth Service API
//	@version		0.1.0
//	@description	Authorization flow engine for the Hearth platform: OAuth2 authorization-code
//	@description	issuance with PKCE, strict redirect-URI validation, session-bound logout and
//	@description	a token exchange endpoint issuing EdDSA-signed access tokens.
//
//	@contact.name				Hearth Labs
//	@contact.url				https://github.com/hearthlabs/hearth-auth
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerOAuth2() {
	authorizeHandler := &AuthorizeHandler{
		Registry:  r.RegistryService,
		Authorize: r.AuthorizeService,
		Sessions:  r.SessionService,
		Audit:     r.AuditService,
		Logger:    r.logger,
	}

	// GET /authorize - lenient rate limit (session-holding browsers)
	r.Mux.Handle("GET /v1/oauth2/authorize",
		httpx.Chain(http.HandlerFunc(authorizeHandler.HandleGet),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	// POST /token - strict rate limit by IP (code redemption attempts)
	tokenHandler := &TokenHandler{TokenService: r.TokenService, Audit: r.AuditService}
	r.Mux.Handle("POST /v1/oauth2/token",
		httpx.Chain(tokenHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// GET /logout - moderate rate limit
	logoutHandler := &LogoutHandler{
		Registry:     r.RegistryService,
		Sessions:     r.SessionService,
		Audit:        r.AuditService,
		Verifier:     r.verifier,
		SecureCookie: r.secureCookie,
	}
	r.Mux.Handle("GET /v1/oauth2/logout",
		httpx.Chain(logoutHandler,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerLogin() {
	h := &LoginHandler{
		Users:        r.UserService,
		Sessions:     r.SessionService,
		Audit:        r.AuditService,
		SecureCookie: r.secureCookie,
	}

	// GET /login - lenient rate limit (just renders the form)
	r.Mux.Handle("GET /v1/login",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	// POST /login - strict rate limit by IP + username to slow brute force
	r.Mux.Handle("POST /v1/login",
		httpx.Chain(http.HandlerFunc(h.HandlePost),
			httpx.RateLimitByIPAndFormField(httpx.StrictLimit, "username"),
		),
	)
}

func (r *Router) registerClients() {
	h := &ClientsHandler{ClientService: r.ClientService}

	// POST /v1/clients - Create client (requires admin:write)
	securedCreate := httpx.Chain(http.HandlerFunc(h.HandleCreate),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAnyScope("admin:write"),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)

	// GET /v1/clients - List clients (requires admin:read)
	securedList := httpx.Chain(http.HandlerFunc(h.HandleList),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAnyScope("admin:read"),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)

	// DELETE /v1/clients/{id} - Remove registration (requires admin:write)
	securedDelete := httpx.Chain(http.HandlerFunc(h.HandleDelete),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAnyScope("admin:write"),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)

	// PUT /v1/clients/{id}/redirect-uris - Replace redirect set (requires admin:write)
	securedUpdate := httpx.Chain(http.HandlerFunc(h.HandleUpdateRedirectURIs),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAnyScope("admin:write"),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)

	r.Mux.Handle("POST /v1/clients", securedCreate)
	r.Mux.Handle("GET /v1/clients", securedList)
	r.Mux.Handle("DELETE /v1/clients/{id}", securedDelete)
	r.Mux.Handle("PUT /v1/clients/{id}/redirect-uris", securedUpdate)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.buildVersion, r.startTime))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.store))
}
