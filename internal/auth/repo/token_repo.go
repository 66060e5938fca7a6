package repo

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// TokenRepo persists issued access tokens in the access_tokens table so they
// can be revoked before they expire (see pkg/database/migrations).
type TokenRepo struct {
	db *sqlx.DB
}

func NewTokenRepo(db *sqlx.DB) *TokenRepo {
	return &TokenRepo{db: db}
}

// Save records an issued token. Re-saving an identical token is a no-op.
func (r *TokenRepo) Save(ctx context.Context, token, subject string, expiresAt time.Time) error {
	const q = `INSERT INTO access_tokens (token, subject, expires_at) VALUES ($1, $2, $3) ON CONFLICT (token) DO NOTHING`
	_, err := r.db.ExecContext(ctx, q, token, subject, expiresAt)
	return err
}

// Exists reports whether the token is still recorded (i.e. not revoked).
func (r *TokenRepo) Exists(ctx context.Context, token string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM access_tokens WHERE token = $1)`
	var ok bool
	if err := r.db.GetContext(ctx, &ok, q, token); err != nil {
		return false, err
	}
	return ok, nil
}

// DeleteByToken removes every row whose token equals the given value and returns the count.
func (r *TokenRepo) DeleteByToken(ctx context.Context, token string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM access_tokens WHERE token = $1`, token)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// PurgeExpired drops rows past their expiry.
func (r *TokenRepo) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM access_tokens WHERE expires_at < NOW()`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
