package sqlite

import (
	"context"
	"database/sql"

	"github.com/hearthlabs/hearth-auth/internal/auth/domain"
)

type auditEventsRepo struct {
	db DBTX
}

func (r *auditEventsRepo) CreateAuditEvent(ctx context.Context, ev domain.AuditEvent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_events (
			id, event, action, actor_id, client_id, ip_address, user_agent,
			detail, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.ID,
		ev.Event,
		ev.Action,
		mapStringNull(ev.ActorID),
		mapStringNull(ev.ClientID),
		mapStringNull(ev.IPAddress),
		mapStringNull(ev.UserAgent),
		mapStringNull(ev.Detail),
		ev.CreatedAt,
	)
	return err
}

func (r *auditEventsRepo) ListRecentAuditEvents(ctx context.Context, limit int) ([]domain.AuditEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, event, action, actor_id, client_id, ip_address, user_agent,
		       detail, created_at
		FROM audit_events
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AuditEvent
	for rows.Next() {
		var (
			ev        domain.AuditEvent
			actorID   sql.NullString
			clientID  sql.NullString
			ipAddress sql.NullString
			userAgent sql.NullString
			detail    sql.NullString
		)
		if err := rows.Scan(&ev.ID, &ev.Event, &ev.Action, &actorID, &clientID,
			&ipAddress, &userAgent, &detail, &ev.CreatedAt); err != nil {
			return nil, err
		}
		ev.ActorID = mapNullString(actorID)
		ev.ClientID = mapNullString(clientID)
		ev.IPAddress = mapNullString(ipAddress)
		ev.UserAgent = mapNullString(userAgent)
		ev.Detail = mapNullString(detail)
		out = append(out, ev)
	}
	return out, rows.Err()
}
