package export

import (
	"fmt"
	"io"
	"time"

	"github.com/rufusmd/ai-medical-note-writer-sub003/internal"
)

// MarkdownExporter exports records in human-readable Markdown
type MarkdownExporter struct{}

// ExportSession renders a session as a Markdown change log
func (e *MarkdownExporter) ExportSession(session *internal.EditSession, w io.Writer) error {
	_, _ = fmt.Fprintf(w, "# Edit Session %s\n\n", session.ID)
	_, _ = fmt.Fprintf(w, "**Note:** %s  \n", session.NoteID)
	_, _ = fmt.Fprintf(w, "**Started:** %s  \n", session.StartTime.Format(time.RFC3339))
	if session.EndTime != nil {
		_, _ = fmt.Fprintf(w, "**Ended:** %s  \n", session.EndTime.Format(time.RFC3339))
	}
	_, _ = fmt.Fprintf(w, "**Changes:** %d\n\n", session.TotalChanges)

	_, _ = fmt.Fprintf(w, "---\n\n## Changes\n\n")
	for i, ch := range session.Changes {
		section := ch.Section
		if section == "" {
			section = "Unknown"
		}
		_, _ = fmt.Fprintf(w, "**%d. %s** in *%s* at offset %d\n\n", i+1, ch.Type, section, ch.Position)
		if ch.Content != "" {
			_, _ = fmt.Fprintf(w, "```\n%s\n```\n\n", ch.Content)
		}
	}
	return nil
}

// ExportAnalysis renders a feedback analysis as a readable report
func (e *MarkdownExporter) ExportAnalysis(analysis *internal.FeedbackAnalysis, w io.Writer) error {
	_, _ = fmt.Fprintf(w, "# Feedback Analysis\n\n")
	_, _ = fmt.Fprintf(w, "**Records:** %d  \n", analysis.FeedbackCount)
	_, _ = fmt.Fprintf(w, "**Confidence:** %.2f  \n", analysis.ConfidenceScore)
	_, _ = fmt.Fprintf(w, "**Trend:** %s (recent %.2f vs older %.2f)\n\n",
		analysis.RatingTrends.Direction, analysis.RatingTrends.RecentAverage, analysis.RatingTrends.OlderAverage)

	if len(analysis.IssuePatterns) > 0 {
		_, _ = fmt.Fprintf(w, "## Issue Patterns\n\n")
		_, _ = fmt.Fprintf(w, "| Issue | Frequency | Avg Rating | Severity |\n")
		_, _ = fmt.Fprintf(w, "|-------|-----------|------------|----------|\n")
		for _, p := range analysis.IssuePatterns {
			_, _ = fmt.Fprintf(w, "| %s | %d (%.0f%%) | %.1f | %.2f |\n",
				p.Issue, p.Frequency, p.Percentage, p.AverageRating, p.Severity)
		}
		_, _ = fmt.Fprintf(w, "\n")
	}

	if len(analysis.ProviderAnalysis.Providers) > 0 {
		_, _ = fmt.Fprintf(w, "## Providers\n\n")
		for _, p := range analysis.ProviderAnalysis.Providers {
			_, _ = fmt.Fprintf(w, "- **%s**: %.2f avg over %d notes (consistency %.2f)\n",
				p.Provider, p.AverageRating, p.Count, p.Consistency)
		}
		if analysis.ProviderAnalysis.Recommended != "" {
			_, _ = fmt.Fprintf(w, "\nRecommended: **%s**\n", analysis.ProviderAnalysis.Recommended)
		}
		_, _ = fmt.Fprintf(w, "\n")
	}

	if len(analysis.ContentAnalysis.Templates) > 0 {
		_, _ = fmt.Fprintf(w, "## Templates\n\n")
		for _, t := range analysis.ContentAnalysis.Templates {
			_, _ = fmt.Fprintf(w, "- **%s**: %.2f avg, %s\n", t.Template, t.AverageRating, t.Performance)
		}
	}
	return nil
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
