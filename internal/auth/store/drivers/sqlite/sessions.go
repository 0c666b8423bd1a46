package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/hearthlabs/hearth-auth/internal/auth/domain"
)

type sessionsRepo struct {
	db DBTX
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (
			id, user_id, active, user_agent, ip_address, expires_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ID,
		s.UserID,
		s.Active,
		mapStringNull(s.UserAgent),
		mapStringNull(s.IPAddress),
		s.ExpiresAt,
		s.CreatedAt,
	)
	return err
}

func (r *sessionsRepo) GetSessionByID(ctx context.Context, id string) (domain.Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, active, revoked_at, revoke_reason,
		       user_agent, ip_address, expires_at, created_at
		FROM sessions
		WHERE id = ?`, id)

	var (
		s            domain.Session
		revokedAt    sql.NullTime
		revokeReason sql.NullString
		userAgent    sql.NullString
		ipAddress    sql.NullString
	)
	err := row.Scan(&s.ID, &s.UserID, &s.Active, &revokedAt, &revokeReason,
		&userAgent, &ipAddress, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}
	s.RevokedAt = mapNullTimePtr(revokedAt)
	s.RevokeReason = mapNullString(revokeReason)
	s.UserAgent = mapNullString(userAgent)
	s.IPAddress = mapNullString(ipAddress)
	return s, nil
}

// RevokeSession flips the active gate. The WHERE clause skips sessions
// that are already revoked so the first revocation's timestamp and reason
// win; zero matched rows is still success, which keeps logout idempotent.
func (r *sessionsRepo) RevokeSession(ctx context.Context, id, reason string, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE sessions
		SET active = FALSE, revoked_at = ?, revoke_reason = ?
		WHERE id = ? AND active = TRUE`, now, reason, id)
	return err
}
