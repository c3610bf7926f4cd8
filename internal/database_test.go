package internal

import (
	"testing"

	"github.com/rufusmd/ai-medical-note-writer-sub003/testutil"
)

func TestOpenDatabaseAppliesSchema(t *testing.T) {
	path := testutil.FixtureDBPath(t)

	db, err := OpenDatabase(path)
	if err != nil {
		t.Fatalf("OpenDatabase() error: %v", err)
	}
	defer db.Close()

	for _, table := range []string{"notes", "note_versions", "sessions", "feedback", "experiments", "prompt_evolutions"} {
		var n int
		if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestOpenDatabaseIdempotentOnExistingFile(t *testing.T) {
	// A pre-existing database file gains the schema without data loss.
	raw, path := testutil.OpenFixtureDB(t)
	if _, err := raw.Exec("CREATE TABLE leftover (x TEXT)"); err != nil {
		t.Fatal(err)
	}
	if err := raw.Close(); err != nil {
		t.Fatal(err)
	}

	db, err := OpenDatabase(path)
	if err != nil {
		t.Fatalf("OpenDatabase() on existing file error: %v", err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM leftover").Scan(&n); err != nil {
		t.Errorf("existing table lost: %v", err)
	}
	if err := NewStore(db).Healthcheck(); err != nil {
		t.Errorf("Healthcheck() error: %v", err)
	}
}
