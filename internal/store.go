package internal

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Store is the durable persistence layer: notes and version history keyed
// by noteId, feedback and prompt evolutions keyed by userId, experiments
// by experimentId. Only append/read/update-by-id semantics are used.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// SaveNoteContent overwrites the current content of a note
// (last-write-wins; the engine guarantees a single writer per open note).
func (s *Store) SaveNoteContent(noteID, content string) error {
	_, err := s.db.Exec(
		`INSERT INTO notes (note_id, content, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(note_id) DO UPDATE SET content = excluded.content, updated_at = excluded.updated_at`,
		noteID, content, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return &PersistenceError{Op: "save-note", Key: noteID, Err: err}
	}
	return nil
}

// NoteContent reads the current content of a note.
func (s *Store) NoteContent(noteID string) (string, error) {
	var content string
	err := s.db.QueryRow(`SELECT content FROM notes WHERE note_id = ?`, noteID).Scan(&content)
	if err != nil {
		return "", &PersistenceError{Op: "read-note", Key: noteID, Err: err}
	}
	return content, nil
}

// AppendNoteVersion appends an immutable snapshot to a note's history.
func (s *Store) AppendNoteVersion(v NoteVersion) error {
	analytics, err := json.Marshal(v.Analytics)
	if err != nil {
		return &PersistenceError{Op: "append-version", Key: v.NoteID, Err: err}
	}
	_, err = s.db.Exec(
		`INSERT INTO note_versions (note_id, content, created_at, changes, analytics) VALUES (?, ?, ?, ?, ?)`,
		v.NoteID, v.Content, v.Timestamp.UTC().Format(time.RFC3339Nano), v.Changes, string(analytics))
	if err != nil {
		return &PersistenceError{Op: "append-version", Key: v.NoteID, Err: err}
	}
	return nil
}

// NoteVersions returns a note's version history, oldest first.
func (s *Store) NoteVersions(noteID string) ([]NoteVersion, error) {
	rows, err := s.db.Query(
		`SELECT content, created_at, changes, analytics FROM note_versions WHERE note_id = ? ORDER BY id`, noteID)
	if err != nil {
		return nil, &PersistenceError{Op: "read-versions", Key: noteID, Err: err}
	}
	defer rows.Close()

	var versions []NoteVersion
	for rows.Next() {
		v := NoteVersion{NoteID: noteID}
		var createdAt, analytics string
		if err := rows.Scan(&v.Content, &createdAt, &v.Changes, &analytics); err != nil {
			return nil, &PersistenceError{Op: "read-versions", Key: noteID, Err: err}
		}
		v.Timestamp, _ = time.Parse(time.RFC3339Nano, createdAt)
		if err := json.Unmarshal([]byte(analytics), &v.Analytics); err != nil {
			LogWarn("note %s: skipping malformed analytics on version: %v", noteID, err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "read-versions", Key: noteID, Err: err}
	}
	return versions, nil
}

// SaveSession persists a session record. Open sessions (auto-save drafts)
// and finalized sessions both land here; a later save with the same id
// overwrites the draft.
func (s *Store) SaveSession(session *EditSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return &PersistenceError{Op: "save-session", Key: session.ID, Err: err}
	}
	var endedAt interface{}
	if session.EndTime != nil {
		endedAt = session.EndTime.UTC().Format(time.RFC3339Nano)
	}
	_, err = s.db.Exec(
		`INSERT INTO sessions (session_id, note_id, started_at, ended_at, data) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET ended_at = excluded.ended_at, data = excluded.data`,
		session.ID, session.NoteID, session.StartTime.UTC().Format(time.RFC3339Nano), endedAt, string(data))
	if err != nil {
		return &PersistenceError{Op: "save-session", Key: session.ID, Err: err}
	}
	return nil
}

// Session reads one session by id.
func (s *Store) Session(sessionID string) (*EditSession, error) {
	var data string
	err := s.db.QueryRow(`SELECT data FROM sessions WHERE session_id = ?`, sessionID).Scan(&data)
	if err != nil {
		return nil, &PersistenceError{Op: "read-session", Key: sessionID, Err: err}
	}
	var session EditSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, &PersistenceError{Op: "read-session", Key: sessionID, Err: err}
	}
	return &session, nil
}

// Sessions lists all stored sessions, most recently started first.
func (s *Store) Sessions() ([]*EditSession, error) {
	rows, err := s.db.Query(`SELECT data FROM sessions ORDER BY started_at DESC`)
	if err != nil {
		return nil, &PersistenceError{Op: "list-sessions", Key: "", Err: err}
	}
	defer rows.Close()

	var sessions []*EditSession
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, &PersistenceError{Op: "list-sessions", Key: "", Err: err}
		}
		var session EditSession
		if err := json.Unmarshal([]byte(data), &session); err != nil {
			LogWarn("skipping malformed session record: %v", err)
			continue
		}
		sessions = append(sessions, &session)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "list-sessions", Key: "", Err: err}
	}
	return sessions, nil
}

// AppendFeedback appends one feedback record to a user's stream.
func (s *Store) AppendFeedback(userID string, record FeedbackRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return &PersistenceError{Op: "append-feedback", Key: userID, Err: err}
	}
	_, err = s.db.Exec(
		`INSERT INTO feedback (user_id, data, created_at) VALUES (?, ?, ?)`,
		userID, string(data), record.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return &PersistenceError{Op: "append-feedback", Key: userID, Err: err}
	}
	return nil
}

// Feedback returns a user's feedback records, oldest first.
func (s *Store) Feedback(userID string) ([]FeedbackRecord, error) {
	rows, err := s.db.Query(`SELECT data FROM feedback WHERE user_id = ? ORDER BY created_at`, userID)
	if err != nil {
		return nil, &PersistenceError{Op: "read-feedback", Key: userID, Err: err}
	}
	defer rows.Close()

	var records []FeedbackRecord
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, &PersistenceError{Op: "read-feedback", Key: userID, Err: err}
		}
		var record FeedbackRecord
		if err := json.Unmarshal([]byte(data), &record); err != nil {
			LogWarn("user %s: skipping malformed feedback record: %v", userID, err)
			continue
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "read-feedback", Key: userID, Err: err}
	}
	return records, nil
}

// SaveExperiment inserts or updates an experiment by id.
func (s *Store) SaveExperiment(exp *PromptExperiment) error {
	data, err := json.Marshal(exp)
	if err != nil {
		return &PersistenceError{Op: "save-experiment", Key: exp.ID, Err: err}
	}
	_, err = s.db.Exec(
		`INSERT INTO experiments (experiment_id, user_id, status, data) VALUES (?, ?, ?, ?)
		 ON CONFLICT(experiment_id) DO UPDATE SET status = excluded.status, data = excluded.data`,
		exp.ID, exp.UserID, string(exp.Status), string(data))
	if err != nil {
		return &PersistenceError{Op: "save-experiment", Key: exp.ID, Err: err}
	}
	return nil
}

// Experiment reads one experiment by id.
func (s *Store) Experiment(experimentID string) (*PromptExperiment, error) {
	var data string
	err := s.db.QueryRow(`SELECT data FROM experiments WHERE experiment_id = ?`, experimentID).Scan(&data)
	if err != nil {
		return nil, &PersistenceError{Op: "read-experiment", Key: experimentID, Err: err}
	}
	var exp PromptExperiment
	if err := json.Unmarshal([]byte(data), &exp); err != nil {
		return nil, &PersistenceError{Op: "read-experiment", Key: experimentID, Err: err}
	}
	return &exp, nil
}

// AppendPromptEvolution records a generated personalized prompt so
// successive generations are comparable over time.
func (s *Store) AppendPromptEvolution(userID string, prompt *PersonalizedPrompt) error {
	data, err := json.Marshal(prompt)
	if err != nil {
		return &PersistenceError{Op: "append-evolution", Key: userID, Err: err}
	}
	_, err = s.db.Exec(
		`INSERT INTO prompt_evolutions (user_id, data, created_at) VALUES (?, ?, ?)`,
		userID, string(data), prompt.GeneratedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return &PersistenceError{Op: "append-evolution", Key: userID, Err: err}
	}
	return nil
}

// PromptEvolutions returns a user's generated prompts, oldest first.
func (s *Store) PromptEvolutions(userID string) ([]*PersonalizedPrompt, error) {
	rows, err := s.db.Query(`SELECT data FROM prompt_evolutions WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, &PersistenceError{Op: "read-evolutions", Key: userID, Err: err}
	}
	defer rows.Close()

	var prompts []*PersonalizedPrompt
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, &PersistenceError{Op: "read-evolutions", Key: userID, Err: err}
		}
		var p PersonalizedPrompt
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			LogWarn("user %s: skipping malformed prompt record: %v", userID, err)
			continue
		}
		prompts = append(prompts, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "read-evolutions", Key: userID, Err: err}
	}
	return prompts, nil
}

// Healthcheck verifies the schema is reachable.
func (s *Store) Healthcheck() error {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&n); err != nil {
		return &PersistenceError{Op: "healthcheck", Key: "", Err: err}
	}
	return nil
}
