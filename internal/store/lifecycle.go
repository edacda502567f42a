package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
)

// Initialized reports whether the schema has been created in this database.
// It checks for the users table, which init always creates first.
func (s *Store) Initialized(ctx context.Context) (bool, error) {
	var name string
	err := s.db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name='users'",
	).Scan(&name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// Init creates all persistent structures: both tables, their indexes, the
// updated_at triggers, the cascade foreign key and the summary view.
//
// Init is safe to call on an initialized database - the schema uses
// IF NOT EXISTS throughout and never touches existing rows - but it reports
// ErrAlreadyInitialized so the caller can surface the condition.
func (s *Store) Init(ctx context.Context) error {
	initialized, err := s.Initialized(ctx)
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("%w: apply schema: %v", ErrUnavailable, err)
	}

	if initialized {
		return ErrAlreadyInitialized
	}
	return nil
}

// Drop removes all tables, views and triggers but keeps the database file.
// The schema is empty afterward; the next data operation requires Init.
func (s *Store) Drop(ctx context.Context) error {
	stmts := []string{
		"DROP VIEW IF EXISTS user_invoice_summary",
		"DROP TABLE IF EXISTS invoices",
		"DROP TABLE IF EXISTS users",
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrUnavailable, stmt, err)
		}
	}
	return nil
}

// Destroy closes the connection and removes the database file from disk.
// Irreversible; the path must exist.
func (s *Store) Destroy() error {
	if err := s.Close(); err != nil {
		return fmt.Errorf("%w: close before destroy: %v", ErrUnavailable, err)
	}
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("no database found at %s", s.path)
	}
	if err := os.Remove(s.path); err != nil {
		return fmt.Errorf("%w: remove %s: %v", ErrUnavailable, s.path, err)
	}
	return nil
}
