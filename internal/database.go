package internal

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// schema is the full store layout. Feedback and versions are append-only;
// notes and experiments update by id.
const schema = `
CREATE TABLE IF NOT EXISTS notes (
	note_id    TEXT PRIMARY KEY,
	content    TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS note_versions (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	note_id    TEXT NOT NULL,
	content    TEXT NOT NULL,
	created_at TEXT NOT NULL,
	changes    INTEGER NOT NULL,
	analytics  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS sessions (
	session_id TEXT PRIMARY KEY,
	note_id    TEXT NOT NULL,
	started_at TEXT NOT NULL,
	ended_at   TEXT,
	data       TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS feedback (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id    TEXT NOT NULL,
	data       TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS experiments (
	experiment_id TEXT PRIMARY KEY,
	user_id       TEXT NOT NULL,
	status        TEXT NOT NULL,
	data          TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS prompt_evolutions (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id    TEXT NOT NULL,
	data       TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_versions_note ON note_versions(note_id);
CREATE INDEX IF NOT EXISTS idx_sessions_note ON sessions(note_id);
CREATE INDEX IF NOT EXISTS idx_feedback_user ON feedback(user_id);
`

// OpenDatabase opens (creating if needed) the engine's SQLite database and
// ensures the schema exists.
func OpenDatabase(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return db, nil
}
