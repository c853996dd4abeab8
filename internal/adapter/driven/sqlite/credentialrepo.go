package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ericfisherdev/examdesk/internal/domain/model"
	"github.com/ericfisherdev/examdesk/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CredentialStore = (*CredentialRepo)(nil)

const credentialColumns = `id, email, token, status, created_at, updated_at, last_login`

// CredentialRepo is the SQLite implementation of the CredentialStore port interface.
type CredentialRepo struct {
	db *DB
}

// NewCredentialRepo creates a new CredentialRepo backed by the given DB.
func NewCredentialRepo(db *DB) *CredentialRepo {
	return &CredentialRepo{db: db}
}

// Insert stores a new credential. The unique index on email turns a
// concurrent duplicate into ErrEmailTaken.
func (r *CredentialRepo) Insert(ctx context.Context, cred model.Credential) error {
	const query = `INSERT INTO credentials (` + credentialColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.Writer.ExecContext(ctx, query,
		cred.ID,
		cred.Email,
		cred.Token,
		string(cred.Status),
		formatTime(cred.CreatedAt),
		formatTime(cred.UpdatedAt),
		formatNullableTime(cred.LastLogin),
	)
	if err != nil {
		if isUniqueViolation(err, "credentials.email") {
			return fmt.Errorf("insert credential %s: %w", cred.ID, driven.ErrEmailTaken)
		}
		return fmt.Errorf("insert credential %s: %w", cred.ID, err)
	}
	return nil
}

// Update rewrites the mutable fields of an existing credential.
func (r *CredentialRepo) Update(ctx context.Context, cred model.Credential) error {
	const query = `UPDATE credentials SET token = ?, status = ?, updated_at = ?, last_login = ? WHERE id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query,
		cred.Token,
		string(cred.Status),
		formatTime(cred.UpdatedAt),
		formatNullableTime(cred.LastLogin),
		cred.ID,
	)
	if err != nil {
		return fmt.Errorf("update credential %s: %w", cred.ID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update credential %s: %w", cred.ID, driven.ErrCredentialNotFound)
	}
	return nil
}

// Delete removes a credential by id.
func (r *CredentialRepo) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM credentials WHERE id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete credential %s: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete credential %s: %w", id, driven.ErrCredentialNotFound)
	}
	return nil
}

// GetByID returns the credential with the given id, or nil if none exists.
func (r *CredentialRepo) GetByID(ctx context.Context, id string) (*model.Credential, error) {
	return r.getOne(ctx, "id", id)
}

// GetByEmail returns the credential owning email, or nil if none exists.
// Matching is case-sensitive.
func (r *CredentialRepo) GetByEmail(ctx context.Context, email string) (*model.Credential, error) {
	return r.getOne(ctx, "email", email)
}

// GetByToken returns the credential holding token, or nil if none exists.
func (r *CredentialRepo) GetByToken(ctx context.Context, token string) (*model.Credential, error) {
	return r.getOne(ctx, "token", token)
}

// ListAll returns all credentials ordered by creation time.
func (r *CredentialRepo) ListAll(ctx context.Context) ([]model.Credential, error) {
	const query = `SELECT ` + credentialColumns + ` FROM credentials ORDER BY created_at, id`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close()

	var creds []model.Credential
	for rows.Next() {
		cred, err := scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		creds = append(creds, *cred)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credentials: %w", err)
	}

	return creds, nil
}

// getOne looks up a single credential by one of the fixed key columns.
func (r *CredentialRepo) getOne(ctx context.Context, column, value string) (*model.Credential, error) {
	query := `SELECT ` + credentialColumns + ` FROM credentials WHERE ` + column + ` = ?`

	cred, err := scanCredential(r.db.Reader.QueryRowContext(ctx, query, value))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get credential by %s: %w", column, err)
	}
	return cred, nil
}

func scanCredential(s scanner) (*model.Credential, error) {
	var cred model.Credential
	var status, createdAt, updatedAt string
	var lastLogin sql.NullString

	err := s.Scan(&cred.ID, &cred.Email, &cred.Token, &status, &createdAt, &updatedAt, &lastLogin)
	if err != nil {
		return nil, err
	}
	cred.Status = model.CredentialStatus(status)

	if cred.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if cred.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	if lastLogin.Valid {
		t, err := parseTime(lastLogin.String)
		if err != nil {
			return nil, fmt.Errorf("parse last_login: %w", err)
		}
		cred.LastLogin = &t
	}

	return &cred, nil
}
