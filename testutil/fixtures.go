package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

// OpenFixtureDB creates a throwaway SQLite database under the test's temp
// directory and returns the open handle plus its path. The schema is NOT
// applied; use internal.OpenDatabase for a schema'd store.
func OpenFixtureDB(t *testing.T) (*sql.DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engine.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("Failed to open fixture database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, path
}

// FixtureDBPath returns a path for a fresh database file in the test's
// temp directory without opening it.
func FixtureDBPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "engine.db")
}
