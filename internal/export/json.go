package export

import (
	"encoding/json"
	"io"

	"github.com/rufusmd/ai-medical-note-writer-sub003/internal"
)

// JSONExporter exports records as indented JSON
type JSONExporter struct{}

// ExportSession exports one session as a JSON document
func (e *JSONExporter) ExportSession(session *internal.EditSession, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(session)
}

// ExportAnalysis exports a feedback analysis as a JSON document
func (e *JSONExporter) ExportAnalysis(analysis *internal.FeedbackAnalysis, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(analysis)
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}
