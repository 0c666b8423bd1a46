package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hearthlabs/hearth-auth/internal/auth/service"
	"github.com/hearthlabs/hearth-auth/pkg/jwtx"
)

type Config struct {
	Issuer        string // Optional: issuer claim for tokens (default: hearth-auth)
	SessionSecret string // Optional: HS256 key for session cookies (default: random per process)

	DatabaseFile string        // Optional: path to SQLite database file (default: ./auth.db)
	PepperFile   string        // Optional: path to file containing pepper for password hashing (default: ./pepper)
	CodeTTL      time.Duration // Optional: authorization code lifetime (default: 60s)
	SessionTTL   time.Duration // Optional: browser session lifetime (default: 7 days)
	AccessTTL    time.Duration // Optional: access token lifetime (default: 15m)

	AdminUsername string // Optional: username seeded into an empty store (default: admin)
	AdminPassword string // Optional: password for the seeded admin (default: random, logged once)

	SeedClientID           string   // Optional: client_id for a declaratively seeded public client
	SeedClientName         string   // Optional: display name for the seeded client (default: First Party)
	SeedClientRedirectURIs []string // Optional: space-separated redirect URIs for the seeded client

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	SecureCookies        bool          // Mark cookies Secure (default: true outside dev)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 10m)
}

func LoadConfig() Config {
	env := getEnvOrDefault("ENV", "dev")

	return Config{
		Issuer:        getEnvOrDefault("AUTH_ISSUER", "hearth-auth"),
		SessionSecret: os.Getenv("AUTH_SESSION_SECRET"),

		DatabaseFile: getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		PepperFile:   getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),
		CodeTTL:      getEnvDurationOrDefault("AUTH_CODE_TTL", service.DefaultCodeTTL),
		SessionTTL:   getEnvDurationOrDefault("AUTH_SESSION_TTL", jwtx.DefaultSessionTTL),
		AccessTTL:    getEnvDurationOrDefault("AUTH_ACCESS_TTL", jwtx.DefaultAccessTokenTTL),

		AdminUsername: getEnvOrDefault("AUTH_ADMIN_USERNAME", "admin"),
		AdminPassword: os.Getenv("AUTH_ADMIN_PASSWORD"),

		SeedClientID:           os.Getenv("AUTH_SEED_CLIENT_ID"),
		SeedClientName:         getEnvOrDefault("AUTH_SEED_CLIENT_NAME", "First Party"),
		SeedClientRedirectURIs: strings.Fields(os.Getenv("AUTH_SEED_CLIENT_REDIRECT_URIS")),

		Env:                  env,
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		SecureCookies:        getEnvBoolOrDefault("AUTH_SECURE_COOKIES", env != "dev"),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 10*time.Minute),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Plain integers are read as seconds.
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
