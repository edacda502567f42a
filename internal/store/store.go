package store

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Sentinel conditions for schema lifecycle misuse. Callers distinguish them
// with errors.Is; everything else coming out of this package is a storage
// failure.
var (
	// ErrAlreadyInitialized is reported by Init when the schema is already
	// present. No data is touched in that case.
	ErrAlreadyInitialized = errors.New("database already initialized")

	// ErrNotInitialized is reported when an operation needs the schema and
	// it does not exist (init was never run, or drop removed it).
	ErrNotInitialized = errors.New("database not initialized (run 'db init' first)")

	// ErrUnavailable wraps failures to reach or use the storage engine.
	ErrUnavailable = errors.New("storage unavailable")
)

// Store owns the SQLite database file holding users and invoices.
// All repository operations go through a Store.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens a SQLite database at the given path.
//
// The connection is configured with:
//   - foreign key enforcement (the cascade constraint depends on it)
//   - recursive triggers disabled
//   - 5-second busy timeout for lock contention across invocations
//   - a single connection, since SQLite allows one writer at a time
//
// Open does not create the schema; see Init.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrUnavailable, path, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: connect %s: %v", ErrUnavailable, path, err)
	}

	// Single writer avoids SQLITE_BUSY between our own connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the filesystem path of the database file.
func (s *Store) Path() string {
	return s.path
}

// DB returns the underlying sql.DB for direct queries.
// Prefer the repository layer; this exists for tests and the repositories.
func (s *Store) DB() *sql.DB {
	return s.db
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA recursive_triggers = OFF",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// IsNotInitialized reports whether err indicates a missing schema, either
// the sentinel itself or SQLite complaining about a missing table/view.
func IsNotInitialized(err error) bool {
	if errors.Is(err, ErrNotInitialized) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "no such table")
}

// MapQueryErr translates low-level query failures into the package's
// sentinel conditions so callers see NotInitialized instead of a raw
// "no such table" message.
func MapQueryErr(err error) error {
	if err == nil {
		return nil
	}
	if IsNotInitialized(err) {
		return fmt.Errorf("%w: %v", ErrNotInitialized, err)
	}
	return err
}
