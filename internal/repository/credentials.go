// Package repository provides persistence implementations for credential
// records.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/atinyakov/GophVault/internal/models"
)

// PostgresCredentialRepository stores credential records in PostgreSQL.
type PostgresCredentialRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresCredentialRepository creates a repository over db.
// db must be a valid connection to a PostgreSQL instance with the schema applied.
func NewPostgresCredentialRepository(db *sql.DB) *PostgresCredentialRepository {
	return &PostgresCredentialRepository{DB: db}
}

// Insert appends one record.
func (r *PostgresCredentialRepository) Insert(ctx context.Context, rec models.CredentialRecord) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO password_records (id, account_owner, account_name, account_username, account_password)
		VALUES ($1, $2, $3, $4, $5)
	`, rec.ID, rec.Owner, rec.Name, rec.Username, rec.PasswordHash)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// ListByOwner returns every record of owner in storage order.
// An owner with no records yields an empty slice.
func (r *PostgresCredentialRepository) ListByOwner(ctx context.Context, owner string) ([]models.CredentialRecord, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, account_owner, account_name, account_username, account_password
		FROM password_records WHERE account_owner = $1
	`, owner)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// DeleteByOwnerName removes every record matching the (owner, name) pair in
// one statement and returns the number of rows removed.
func (r *PostgresCredentialRepository) DeleteByOwnerName(ctx context.Context, owner, name string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM password_records WHERE account_owner = $1 AND account_name = $2
	`, owner, name)
	if err != nil {
		return 0, fmt.Errorf("delete records: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func scanRecords(rows *sql.Rows) ([]models.CredentialRecord, error) {
	records := make([]models.CredentialRecord, 0)
	for rows.Next() {
		var rec models.CredentialRecord
		if err := rows.Scan(&rec.ID, &rec.Owner, &rec.Name, &rec.Username, &rec.PasswordHash); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate: %w", err)
	}
	return records, nil
}
