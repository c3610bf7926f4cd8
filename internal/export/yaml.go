package export

import (
	"io"

	"github.com/rufusmd/ai-medical-note-writer-sub003/internal"
	"gopkg.in/yaml.v3"
)

// YAMLExporter exports records in YAML format
type YAMLExporter struct{}

// ExportSession exports a session to YAML format
func (e *YAMLExporter) ExportSession(session *internal.EditSession, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer func() { _ = enc.Close() }()

	return enc.Encode(session)
}

// ExportAnalysis exports a feedback analysis to YAML format
func (e *YAMLExporter) ExportAnalysis(analysis *internal.FeedbackAnalysis, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer func() { _ = enc.Close() }()

	return enc.Encode(analysis)
}

// Extension returns the file extension for this format
func (e *YAMLExporter) Extension() string {
	return "yaml"
}
