package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"sync/atomic"
)

// SQLStorage is a SQL-backed Storage.
// It works with any database/sql driver; the dialect picks placeholder
// and upsert syntax. The table schema is:
//
//	CREATE TABLE console_session (
//	    key        VARCHAR(64) PRIMARY KEY,
//	    value      TEXT NOT NULL,
//	    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
//	);
//
// EnsureSchema creates it when missing.
type SQLStorage struct {
	db        *sql.DB
	tableName string
	dialect   SQLDialect
	owned     bool
	closed    atomic.Bool
}

// SQLDialect represents the SQL dialect for query generation.
type SQLDialect int

const (
	// DialectSQLite uses SQLite syntax (? placeholders).
	DialectSQLite SQLDialect = iota
	// DialectPostgreSQL uses PostgreSQL syntax ($1, $2 placeholders).
	DialectPostgreSQL
)

// String returns the dialect name.
func (d SQLDialect) String() string {
	switch d {
	case DialectSQLite:
		return "sqlite"
	case DialectPostgreSQL:
		return "postgres"
	default:
		return fmt.Sprintf("SQLDialect(%d)", int(d))
	}
}

// ErrInvalidTableName is returned for table names that are not plain identifiers.
var ErrInvalidTableName = errors.New("session: invalid SQL table name")

var identRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLStorageOption configures SQLStorage behavior.
type SQLStorageOption func(*SQLStorage)

// WithSQLTableName sets the table name for session storage.
// Default: "console_session".
func WithSQLTableName(name string) SQLStorageOption {
	return func(s *SQLStorage) {
		s.tableName = name
	}
}

// WithSQLDialect sets the SQL dialect for query generation.
// Default: DialectSQLite.
func WithSQLDialect(dialect SQLDialect) SQLStorageOption {
	return func(s *SQLStorage) {
		s.dialect = dialect
	}
}

// WithOwnedDB makes Close also close the underlying *sql.DB.
func WithOwnedDB() SQLStorageOption {
	return func(s *SQLStorage) {
		s.owned = true
	}
}

// NewSQLStorage creates a SQL-backed storage on top of db.
func NewSQLStorage(db *sql.DB, opts ...SQLStorageOption) (*SQLStorage, error) {
	s := &SQLStorage{
		db:        db,
		tableName: "console_session",
		dialect:   DialectSQLite,
	}
	for _, opt := range opts {
		opt(s)
	}
	if !identRE.MatchString(s.tableName) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTableName, s.tableName)
	}
	return s, nil
}

// Dialect returns the configured dialect.
func (s *SQLStorage) Dialect() SQLDialect {
	return s.dialect
}

// placeholder returns the placeholder syntax for the dialect.
func (s *SQLStorage) placeholder(n int) string {
	if s.dialect == DialectPostgreSQL {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// EnsureSchema creates the session table if it does not exist.
func (s *SQLStorage) EnsureSchema(ctx context.Context) error {
	if s.closed.Load() {
		return ErrStorageClosed
	}

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			key        VARCHAR(64) PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`, s.tableName)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("session: create table %s: %w", s.tableName, err)
	}
	return nil
}

// Get returns the value stored under key.
func (s *SQLStorage) Get(ctx context.Context, key string) (string, bool, error) {
	if s.closed.Load() {
		return "", false, ErrStorageClosed
	}

	query := fmt.Sprintf(`SELECT value FROM %s WHERE key = %s`, s.tableName, s.placeholder(1))

	var value string
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

// Set stores value under key.
func (s *SQLStorage) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if s.closed.Load() {
		return ErrStorageClosed
	}

	var query string
	switch s.dialect {
	case DialectPostgreSQL:
		query = fmt.Sprintf(`
			INSERT INTO %s (key, value, updated_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT (key) DO UPDATE SET
				value = EXCLUDED.value,
				updated_at = NOW()
		`, s.tableName)
	default:
		query = fmt.Sprintf(`
			INSERT OR REPLACE INTO %s (key, value, updated_at)
			VALUES (?, ?, datetime('now'))
		`, s.tableName)
	}

	_, err := s.db.ExecContext(ctx, query, key, value)
	return err
}

// Delete removes key.
func (s *SQLStorage) Delete(ctx context.Context, key string) error {
	if s.closed.Load() {
		return ErrStorageClosed
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE key = %s`, s.tableName, s.placeholder(1))
	_, err := s.db.ExecContext(ctx, query, key)
	return err
}

// Close marks the storage closed.
// The database is only closed when created WithOwnedDB.
func (s *SQLStorage) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	if s.owned {
		return s.db.Close()
	}
	return nil
}
