package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ericfisherdev/examdesk/internal/domain/model"
	"github.com/ericfisherdev/examdesk/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.RecoveryStore = (*RecoveryRepo)(nil)

// RecoveryRepo is the SQLite implementation of the RecoveryStore port interface.
type RecoveryRepo struct {
	db *DB
}

// NewRecoveryRepo creates a new RecoveryRepo backed by the given DB.
func NewRecoveryRepo(db *DB) *RecoveryRepo {
	return &RecoveryRepo{db: db}
}

// Insert stores a new recovery grant.
func (r *RecoveryRepo) Insert(ctx context.Context, grant model.RecoveryGrant) error {
	const query = `INSERT INTO recovery_grants (token, email, expires_at, used, created_at) VALUES (?, ?, ?, ?, ?)`

	_, err := r.db.Writer.ExecContext(ctx, query,
		grant.Token,
		grant.Email,
		formatTime(grant.ExpiresAt),
		grant.Used,
		formatTime(grant.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert recovery grant: %w", err)
	}
	return nil
}

// GetByToken returns the grant for token, or nil if none exists.
func (r *RecoveryRepo) GetByToken(ctx context.Context, token string) (*model.RecoveryGrant, error) {
	const query = `SELECT token, email, expires_at, used, created_at FROM recovery_grants WHERE token = ?`

	var grant model.RecoveryGrant
	var expiresAt, createdAt string

	err := r.db.Reader.QueryRowContext(ctx, query, token).Scan(
		&grant.Token, &grant.Email, &expiresAt, &grant.Used, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get recovery grant: %w", err)
	}

	if grant.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return nil, fmt.Errorf("parse expires_at: %w", err)
	}
	if grant.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &grant, nil
}

// MarkUsed flips used in a single conditional UPDATE so two callers can never
// both redeem the same grant.
func (r *RecoveryRepo) MarkUsed(ctx context.Context, token string, now time.Time) (bool, error) {
	const query = `UPDATE recovery_grants SET used = 1 WHERE token = ? AND used = 0 AND expires_at > ?`

	result, err := r.db.Writer.ExecContext(ctx, query, token, formatTime(now))
	if err != nil {
		return false, fmt.Errorf("mark recovery grant used: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check rows affected: %w", err)
	}
	return rows == 1, nil
}

// DeleteInert removes grants that expired before cutoff, or that were used
// and created before cutoff.
func (r *RecoveryRepo) DeleteInert(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM recovery_grants WHERE expires_at < ? OR (used = 1 AND created_at < ?)`

	c := formatTime(cutoff)
	result, err := r.db.Writer.ExecContext(ctx, query, c, c)
	if err != nil {
		return 0, fmt.Errorf("delete inert recovery grants: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check rows affected: %w", err)
	}
	return rows, nil
}
