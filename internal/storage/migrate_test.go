package storage

import (
	"database/sql"
	"path/filepath"
	"testing"
)

func TestRunMigrations(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "finsum.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if err := RunMigrations(db); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}

	// A second run against a current schema must be a no-op, not an error.
	if err := RunMigrations(db); err != nil {
		t.Fatalf("RunMigrations rerun: %v", err)
	}

	// The connection stays usable for queries afterwards.
	var name string
	err = db.QueryRow(
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'transactions'`,
	).Scan(&name)
	if err != nil {
		t.Fatalf("schema missing transactions table: %v", err)
	}
}
