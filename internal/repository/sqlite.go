package repository

import (
	"context"
	"fmt"

	"github.com/atinyakov/GophVault/internal/db"
	"github.com/atinyakov/GophVault/internal/models"
)

// SQLiteCredentialRepository stores credential records in an embedded
// SQLite database. Writes go through the single-connection writer pool.
type SQLiteCredentialRepository struct {
	db *db.SQLite
}

// NewSQLiteCredentialRepository creates a repository over s.
func NewSQLiteCredentialRepository(s *db.SQLite) *SQLiteCredentialRepository {
	return &SQLiteCredentialRepository{db: s}
}

// Insert appends one record.
func (r *SQLiteCredentialRepository) Insert(ctx context.Context, rec models.CredentialRecord) error {
	const query = `INSERT INTO password_records (id, account_owner, account_name, account_username, account_password) VALUES (?, ?, ?, ?, ?)`
	if _, err := r.db.Writer.ExecContext(ctx, query, rec.ID, rec.Owner, rec.Name, rec.Username, rec.PasswordHash); err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// ListByOwner returns every record of owner in storage order.
func (r *SQLiteCredentialRepository) ListByOwner(ctx context.Context, owner string) ([]models.CredentialRecord, error) {
	const query = `SELECT id, account_owner, account_name, account_username, account_password FROM password_records WHERE account_owner = ? ORDER BY rowid`
	rows, err := r.db.Reader.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// DeleteByOwnerName removes every record matching the (owner, name) pair.
func (r *SQLiteCredentialRepository) DeleteByOwnerName(ctx context.Context, owner, name string) (int64, error) {
	const query = `DELETE FROM password_records WHERE account_owner = ? AND account_name = ?`
	res, err := r.db.Writer.ExecContext(ctx, query, owner, name)
	if err != nil {
		return 0, fmt.Errorf("delete records: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
