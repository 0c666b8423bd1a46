package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/hearthlabs/hearth-auth/internal/auth/domain"
	"github.com/hearthlabs/hearth-auth/internal/auth/store"
)

type authorizationCodesRepo struct {
	db DBTX
}

func (r *authorizationCodesRepo) CreateAuthorizationCode(ctx context.Context, code domain.AuthorizationCode) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO authorization_codes (
			id, user_id, client_id, code_hash, redirect_uri, scopes,
			state, nonce, session_id, code_challenge, code_challenge_method,
			expires_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		code.ID,
		code.UserID,
		code.ClientID,
		code.CodeHash,
		code.RedirectURI,
		joinFields(code.Scopes),
		mapStringNull(code.State),
		mapStringNull(code.Nonce),
		code.SessionID,
		mapStringNull(code.CodeChallenge),
		mapStringNull(code.CodeChallengeMethod),
		code.ExpiresAt,
		code.CreatedAt,
	)
	return err
}

func (r *authorizationCodesRepo) GetAuthorizationCodeByHash(ctx context.Context, hash string) (domain.AuthorizationCode, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, client_id, code_hash, redirect_uri, scopes,
		       state, nonce, session_id, code_challenge, code_challenge_method,
		       expires_at, consumed_at, created_at
		FROM authorization_codes
		WHERE code_hash = ?`, hash)
	return scanAuthorizationCode(row)
}

// ConsumeAuthorizationCode marks a code consumed with a single conditional
// update. The `consumed_at IS NULL` guard is what makes redemption
// single-use: of two racing exchanges, exactly one update matches a row.
func (r *authorizationCodesRepo) ConsumeAuthorizationCode(ctx context.Context, id string, now time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE authorization_codes
		SET consumed_at = ?
		WHERE id = ? AND consumed_at IS NULL`, now, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *authorizationCodesRepo) DeleteExpiredAuthorizationCodes(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM authorization_codes
		WHERE expires_at < CURRENT_TIMESTAMP`)
	return err
}

func scanAuthorizationCode(row *sql.Row) (domain.AuthorizationCode, error) {
	var (
		code            domain.AuthorizationCode
		scopes          string
		state, nonce    sql.NullString
		challenge       sql.NullString
		challengeMethod sql.NullString
		consumedAt      sql.NullTime
	)
	err := row.Scan(
		&code.ID,
		&code.UserID,
		&code.ClientID,
		&code.CodeHash,
		&code.RedirectURI,
		&scopes,
		&state,
		&nonce,
		&code.SessionID,
		&challenge,
		&challengeMethod,
		&code.ExpiresAt,
		&consumedAt,
		&code.CreatedAt,
	)
	if err != nil {
		return domain.AuthorizationCode{}, mapNotFound(err)
	}
	code.Scopes = splitAndFilter(scopes)
	code.State = mapNullString(state)
	code.Nonce = mapNullString(nonce)
	code.CodeChallenge = mapNullString(challenge)
	code.CodeChallengeMethod = mapNullString(challengeMethod)
	code.ConsumedAt = mapNullTimePtr(consumedAt)
	return code, nil
}
