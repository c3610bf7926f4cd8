package internal

import "fmt"

// SessionClosedError is returned when a mutation is recorded against a
// session that has already been closed. This indicates a programming error
// in the caller's flow, not a recoverable condition.
type SessionClosedError struct {
	SessionID string
	NoteID    string
}

func (e *SessionClosedError) Error() string {
	return fmt.Sprintf("session closed: %s (note %s)", e.SessionID, e.NoteID)
}

// InsufficientDataError is returned when feedback analysis is attempted
// with fewer records than the minimum. Callers recover by skipping
// personalization and falling back to the base prompt.
type InsufficientDataError struct {
	Got  int
	Need int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient feedback: have %d records, need %d", e.Got, e.Need)
}

// PersistenceError represents a failure writing to or reading from the store.
type PersistenceError struct {
	Op  string // "save-session", "save-note", "append-feedback", ...
	Key string // noteId, userId or experimentId
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error: %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
