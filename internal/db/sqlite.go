package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLite holds separate writer and reader pools over one database file.
// The writer is limited to a single connection so concurrent sessions never
// hit "database is locked"; readers may run in parallel under WAL.
type SQLite struct {
	Writer *sql.DB
	Reader *sql.DB
}

// InitSQLite opens (creating if needed) the database at path and applies
// the schema migrations.
func InitSQLite(path string) (*SQLite, error) {
	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)",
		path,
	)
	return OpenSQLite(dsn)
}

// OpenSQLite opens the database described by a full modernc sqlite DSN,
// e.g. a shared in-memory database in tests.
func OpenSQLite(dsn string) (*SQLite, error) {
	writer, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open writer: %w", err)
	}
	writer.SetMaxOpenConns(1)

	if err := writer.Ping(); err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("ping writer: %w", err)
	}

	reader, err := sql.Open("sqlite", dsn)
	if err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("open reader: %w", err)
	}
	reader.SetMaxOpenConns(4)

	if err := reader.Ping(); err != nil {
		_ = reader.Close()
		_ = writer.Close()
		return nil, fmt.Errorf("ping reader: %w", err)
	}

	s := &SQLite{Writer: writer, Reader: reader}
	if err := RunMigrations(writer, DriverSQLite); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return s, nil
}

// Close closes both pools and returns the first error encountered.
func (s *SQLite) Close() error {
	var firstErr error
	if err := s.Reader.Close(); err != nil {
		firstErr = fmt.Errorf("close reader: %w", err)
	}
	if err := s.Writer.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close writer: %w", err)
	}
	return firstErr
}
