package export

import (
	"encoding/json"
	"io"

	"github.com/rufusmd/ai-medical-note-writer-sub003/internal"
)

// JSONLExporter exports sessions as JSON Lines: one change record per
// line, suitable for downstream stream processing.
type JSONLExporter struct{}

// ExportSession writes one line per DeltaChange, each carrying the
// session and note ids for joinability.
func (e *JSONLExporter) ExportSession(session *internal.EditSession, w io.Writer) error {
	enc := json.NewEncoder(w)
	for _, change := range session.Changes {
		line := struct {
			SessionID string `json:"sessionId"`
			NoteID    string `json:"noteId"`
			internal.DeltaChange
		}{
			SessionID:   session.ID,
			NoteID:      session.NoteID,
			DeltaChange: change,
		}
		if err := enc.Encode(line); err != nil {
			return err
		}
	}
	return nil
}

// ExportAnalysis writes one line per issue pattern.
func (e *JSONLExporter) ExportAnalysis(analysis *internal.FeedbackAnalysis, w io.Writer) error {
	enc := json.NewEncoder(w)
	for _, p := range analysis.IssuePatterns {
		if err := enc.Encode(p); err != nil {
			return err
		}
	}
	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
