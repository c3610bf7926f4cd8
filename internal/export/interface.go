package export

import (
	"fmt"
	"io"

	"github.com/rufusmd/ai-medical-note-writer-sub003/internal"
)

// Exporter defines the interface for all export formats
type Exporter interface {
	ExportSession(session *internal.EditSession, w io.Writer) error
	ExportAnalysis(analysis *internal.FeedbackAnalysis, w io.Writer) error
	Extension() string
}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "jsonl":
		return &JSONLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: jsonl, md, yaml, json)", format)
	}
}
