package session

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// MySQLRevocationRepo keeps the deny-list in the revoked_sessions table.
// Expiry is stored as epoch milliseconds.
type MySQLRevocationRepo struct {
	DB  *sql.DB
	now func() time.Time
}

func NewMySQLRevocationRepo(db *sql.DB, now func() time.Time) *MySQLRevocationRepo {
	if now == nil {
		now = time.Now
	}
	return &MySQLRevocationRepo{DB: db, now: now}
}

func (r *MySQLRevocationRepo) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin revoke: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := r.now()
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM revoked_sessions
		WHERE expires_at <= ? OR token_id = ?
	`, now.UnixMilli(), tokenID); err != nil {
		return fmt.Errorf("purge revoked sessions: %w", err)
	}

	if !expiresAt.After(now) {
		return tx.Commit()
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO revoked_sessions (token_id, expires_at)
		VALUES (?, ?)
	`, tokenID, expiresAt.UnixMilli()); err != nil {
		return fmt.Errorf("insert revoked session: %w", err)
	}

	return tx.Commit()
}

func (r *MySQLRevocationRepo) IsRevoked(ctx context.Context, tokenID string, now time.Time) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM revoked_sessions
			WHERE token_id = ? AND expires_at > ?
		)
	`, tokenID, now.UnixMilli()).Scan(&exists)
	return exists, err
}
