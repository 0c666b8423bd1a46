package sqlite

import (
	"context"
	"database/sql"

	"github.com/hearthlabs/hearth-auth/internal/auth/domain"
	"github.com/hearthlabs/hearth-auth/internal/auth/store"
)

type clientsRepo struct {
	db DBTX
}

const clientColumns = `id, client_id, name, secret_hash, redirect_uris, active, created_at, updated_at`

func (r *clientsRepo) GetClientByClientID(ctx context.Context, clientID string) (domain.Client, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+clientColumns+`
		FROM clients
		WHERE client_id = ?`, clientID)
	return scanClient(row)
}

func (r *clientsRepo) GetClientByID(ctx context.Context, id string) (domain.Client, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+clientColumns+`
		FROM clients
		WHERE id = ?`, id)
	return scanClient(row)
}

func (r *clientsRepo) ListClients(ctx context.Context) ([]domain.Client, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+clientColumns+`
		FROM clients
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Client
	for rows.Next() {
		c, err := scanClientRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *clientsRepo) CreateClient(ctx context.Context, c domain.Client) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO clients (
			id, client_id, name, secret_hash, redirect_uris, active,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID,
		c.ClientID,
		c.Name,
		mapStringNull(c.SecretHash),
		joinFields(c.RedirectURIs),
		c.Active,
		c.CreatedAt,
		c.UpdatedAt,
	)
	return err
}

func (r *clientsRepo) UpdateClientRedirectURIs(ctx context.Context, id string, uris []string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE clients
		SET redirect_uris = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, joinFields(uris), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *clientsRepo) SetClientActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE clients
		SET active = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, active, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *clientsRepo) DeleteClient(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func scanClient(row *sql.Row) (domain.Client, error) {
	var (
		c            domain.Client
		secretHash   sql.NullString
		redirectURIs string
	)
	err := row.Scan(&c.ID, &c.ClientID, &c.Name, &secretHash, &redirectURIs, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return domain.Client{}, mapNotFound(err)
	}
	c.SecretHash = mapNullString(secretHash)
	c.RedirectURIs = splitAndFilter(redirectURIs)
	return c, nil
}

func scanClientRows(rows *sql.Rows) (domain.Client, error) {
	var (
		c            domain.Client
		secretHash   sql.NullString
		redirectURIs string
	)
	err := rows.Scan(&c.ID, &c.ClientID, &c.Name, &secretHash, &redirectURIs, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return domain.Client{}, err
	}
	c.SecretHash = mapNullString(secretHash)
	c.RedirectURIs = splitAndFilter(redirectURIs)
	return c, nil
}
