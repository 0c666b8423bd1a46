package sqlite

import (
	"context"
	"database/sql"

	"github.com/hearthlabs/hearth-auth/internal/auth/domain"
)

type usersRepo struct {
	db DBTX
}

const userColumns = `id, username, password_hash, otp_secret, scopes, created_at, updated_at`

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = ?`, id)
	return scanUser(row)
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE username = ?`, username)
	return scanUser(row)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (
			id, username, password_hash, otp_secret, scopes, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID,
		u.Username,
		u.PasswordHash,
		mapOptionalString(u.OTPSecret),
		joinFields(u.Scopes),
		u.CreatedAt,
		u.UpdatedAt,
	)
	return err
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

func scanUser(row *sql.Row) (domain.User, error) {
	var (
		u         domain.User
		otpSecret sql.NullString
		scopes    string
	)
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &otpSecret, &scopes, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.OTPSecret = mapNullStringPtr(otpSecret)
	u.Scopes = splitAndFilter(scopes)
	return u, nil
}
