package store

import (
	"context"
	"errors"
	"time"

	"github.com/hearthlabs/hearth-auth/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today,
// postgres later) implement this. Sub-repositories keep concerns tidy and
// let tests swap a single repo without faking the world.
type Store interface {
	Users() Users
	Clients() Clients
	Sessions() Sessions
	AuthorizationCodes() AuthorizationCodes
	AuditEvents() AuditEvents

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing when fn returns
	// nil and rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds
// Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername is used during interactive login.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by the app via ULID).
	CreateUser(ctx context.Context, u domain.User) error

	// IsEmpty returns true if there are no users. Used for admin seeding.
	IsEmpty(ctx context.Context) (bool, error)
}

type Clients interface {
	// GetClientByClientID fetches a client by its public client_id. This is
	// the hot-path lookup behind every authorize/token/logout request.
	GetClientByClientID(ctx context.Context, clientID string) (domain.Client, error)

	// GetClientByID fetches a client by internal id.
	GetClientByID(ctx context.Context, id string) (domain.Client, error)

	// ListClients returns all clients ordered by creation date (newest first).
	ListClients(ctx context.Context) ([]domain.Client, error)

	// CreateClient inserts a new client.
	CreateClient(ctx context.Context, c domain.Client) error

	// UpdateClientRedirectURIs replaces the registered redirect URI set.
	UpdateClientRedirectURIs(ctx context.Context, id string, uris []string) error

	// SetClientActive flips the active gate.
	SetClientActive(ctx context.Context, id string, active bool) error

	// DeleteClient removes a client registration.
	DeleteClient(ctx context.Context, id string) error
}

type Sessions interface {
	// CreateSession stores a freshly established browser session.
	CreateSession(ctx context.Context, s domain.Session) error

	// GetSessionByID returns a session regardless of its active state.
	GetSessionByID(ctx context.Context, id string) (domain.Session, error)

	// RevokeSession flips active=0 and records when and why. Revoking an
	// already-revoked or unknown session is a no-op success, which makes
	// logout idempotent.
	RevokeSession(ctx context.Context, id, reason string, now time.Time) error
}

type AuthorizationCodes interface {
	// CreateAuthorizationCode stores a freshly minted authorization code.
	CreateAuthorizationCode(ctx context.Context, code domain.AuthorizationCode) error

	// GetAuthorizationCodeByHash fetches a code by its hashed value.
	GetAuthorizationCodeByHash(ctx context.Context, hash string) (domain.AuthorizationCode, error)

	// ConsumeAuthorizationCode marks a code consumed with a single
	// conditional update. It returns ErrNotFound when the code was already
	// consumed (or never existed), so two racing redemptions cannot both
	// succeed.
	ConsumeAuthorizationCode(ctx context.Context, id string, now time.Time) error

	// DeleteExpiredAuthorizationCodes removes codes past their deadline.
	// Storage hygiene only; expiry is enforced at redemption time.
	DeleteExpiredAuthorizationCodes(ctx context.Context) error
}

type AuditEvents interface {
	// CreateAuditEvent appends an audit record.
	CreateAuditEvent(ctx context.Context, ev domain.AuditEvent) error

	// ListRecentAuditEvents returns up to limit events, newest first.
	ListRecentAuditEvents(ctx context.Context, limit int) ([]domain.AuditEvent, error)
}
