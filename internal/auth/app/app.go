package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/hearthlabs/hearth-auth/internal/auth/http"
	"github.com/hearthlabs/hearth-auth/internal/auth/service"
	"github.com/hearthlabs/hearth-auth/internal/auth/store"
	"github.com/hearthlabs/hearth-auth/internal/auth/store/drivers/sqlite"
	"github.com/hearthlabs/hearth-auth/pkg/cryptox"
	"github.com/hearthlabs/hearth-auth/pkg/jwtx"
	"github.com/hearthlabs/hearth-auth/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	signer *jwtx.EdDSASigner

	registryService     *service.RegistryService
	authorizeService    *service.AuthorizeService
	tokenService        *service.TokenService
	sessionService      *service.SessionService
	userService         *service.UserService
	clientService       *service.ClientService
	auditService        *service.AuditService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "hearth-auth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	signer, err := jwtx.NewEphemeralEdDSASigner("sig-1")
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize signing key: %w", err)
	}
	app.signer = signer

	app.initServices()
	app.initHTTP()

	if err := app.seedAdmin(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	if err := app.seedClient(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

func (app *Application) initServices() {
	sessionSecret := []byte(app.cfg.SessionSecret)
	if len(sessionSecret) == 0 {
		// Sessions will not survive a restart without a configured secret.
		sessionSecret = []byte(cryptox.MustNewToken(cryptox.Size256))
		app.logger.Warn("AUTH_SESSION_SECRET not set, using a random per-process secret")
	}

	app.registryService = &service.RegistryService{Store: app.db}
	app.authorizeService = &service.AuthorizeService{
		Store:   app.db,
		CodeTTL: app.cfg.CodeTTL,
	}
	app.tokenService = &service.TokenService{
		Store:     app.db,
		Signer:    app.signer,
		Issuer:    app.cfg.Issuer,
		AccessTTL: app.cfg.AccessTTL,
	}
	app.sessionService = &service.SessionService{
		Store: app.db,
		Codec: &jwtx.SessionCodec{
			Secret: sessionSecret,
			Issuer: app.cfg.Issuer,
			TTL:    app.cfg.SessionTTL,
		},
		SessionTTL: app.cfg.SessionTTL,
	}
	app.userService = &service.UserService{Store: app.db}
	app.clientService = &service.ClientService{Store: app.db}
	app.auditService = &service.AuditService{Store: app.db, Logger: app.logger}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.signer.Verifier(app.cfg.Issuer),
		app.cfg.Issuer,
		BuildVersion,
		app.cfg.SecureCookies,
		app.db,
		app.logger,
	)

	router.RegistryService = app.registryService
	router.AuthorizeService = app.authorizeService
	router.TokenService = app.tokenService
	router.SessionService = app.sessionService
	router.UserService = app.userService
	router.ClientService = app.clientService
	router.AuditService = app.auditService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

// seedAdmin provisions the first user when the store is empty so a fresh
// deployment can be administered immediately.
func (app *Application) seedAdmin() error {
	password := app.cfg.AdminPassword
	generated := false
	if password == "" {
		password = cryptox.MustNewToken(cryptox.Size128)
		generated = true
	}

	user, seeded, err := app.userService.SeedAdmin(context.Background(), app.cfg.AdminUsername, password)
	if err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}
	if !seeded {
		return nil
	}

	if generated {
		// Logged exactly once; the operator is expected to rotate it.
		app.logger.Warn("seeded admin user with a generated password",
			"username", user.Username, "password", password)
	} else {
		app.logger.Info("seeded admin user", "username", user.Username)
	}
	return nil
}

// seedClient provisions a public client with a fixed client_id when one is
// configured, so deployments can register their first-party app without
// going through the admin API.
func (app *Application) seedClient() error {
	if app.cfg.SeedClientID == "" {
		return nil
	}

	created, err := app.clientService.SeedClient(context.Background(),
		app.cfg.SeedClientID, app.cfg.SeedClientName, app.cfg.SeedClientRedirectURIs)
	if err != nil {
		return fmt.Errorf("failed to seed client: %w", err)
	}
	if created {
		app.logger.Info("seeded client registration", "client_id", app.cfg.SeedClientID)
	}
	return nil
}
