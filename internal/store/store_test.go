package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestInit_CreatesSchema(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	if err := s.Init(ctx); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	for _, table := range []string{"users", "invoices"} {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after init: %v", table, err)
		}
	}

	var view string
	err := s.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='view' AND name='user_invoice_summary'",
	).Scan(&view)
	if err != nil {
		t.Errorf("summary view not found after init: %v", err)
	}
}

func TestInit_SecondCallReportsAlreadyInitialized(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	if err := s.Init(ctx); err != nil {
		t.Fatalf("first Init() failed: %v", err)
	}

	// Seed a row to prove the second init never loses data.
	if _, err := s.db.Exec(
		"INSERT INTO users (name, email) VALUES ('John', 'john@x.com')"); err != nil {
		t.Fatalf("seed insert failed: %v", err)
	}

	err := s.Init(ctx)
	if !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("second Init() = %v, want ErrAlreadyInitialized", err)
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("user count after re-init = %d, want 1", count)
	}
}

func TestDrop_EmptiesSchemaKeepsFile(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	if err := s.Init(ctx); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	if err := s.Drop(ctx); err != nil {
		t.Fatalf("Drop() failed: %v", err)
	}

	initialized, err := s.Initialized(ctx)
	if err != nil {
		t.Fatalf("Initialized() failed: %v", err)
	}
	if initialized {
		t.Error("schema still present after Drop()")
	}
	if _, err := os.Stat(s.Path()); err != nil {
		t.Errorf("database file missing after Drop(): %v", err)
	}

	// Dropping twice is harmless.
	if err := s.Drop(ctx); err != nil {
		t.Errorf("second Drop() failed: %v", err)
	}
}

func TestDestroy_RemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	if err := s.Destroy(); err != nil {
		t.Fatalf("Destroy() failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("database file still exists after Destroy()")
	}
}

func TestForeignKeysEnabled(t *testing.T) {
	s := openTest(t)

	var enabled int
	if err := s.db.QueryRow("PRAGMA foreign_keys").Scan(&enabled); err != nil {
		t.Fatalf("query pragma: %v", err)
	}
	if enabled != 1 {
		t.Errorf("foreign_keys = %d, want 1", enabled)
	}
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	if err := s.Init(ctx); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	wantErr := errors.New("boom")
	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.Exec(
			"INSERT INTO users (name, email) VALUES ('John', 'john@x.com')"); err != nil {
			return err
		}
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("WithTx() = %v, want %v", err, wantErr)
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("insert survived rollback: count = %d", count)
	}
}

func TestIsNotInitialized(t *testing.T) {
	s := openTest(t)

	_, err := s.db.Query("SELECT * FROM users")
	if err == nil {
		t.Fatal("query against missing table succeeded")
	}
	if !IsNotInitialized(err) {
		t.Errorf("IsNotInitialized(%v) = false, want true", err)
	}
	if !errors.Is(MapQueryErr(err), ErrNotInitialized) {
		t.Errorf("MapQueryErr did not map to ErrNotInitialized")
	}
}
