package internal

import "time"

// ChangeType classifies one delta
type ChangeType string

const (
	ChangeAddition     ChangeType = "addition"
	ChangeDeletion     ChangeType = "deletion"
	ChangeModification ChangeType = "modification"
)

// ChangeContext is the bounded window of text surrounding a change in the
// new content.
type ChangeContext struct {
	Before string `json:"before"`
	After  string `json:"after"`
}

// ChangeMetadata carries size and timing measurements taken when the
// change was observed.
type ChangeMetadata struct {
	WordCount      int   `json:"wordCount"`
	CharacterCount int   `json:"characterCount"`
	ElapsedMs      int64 `json:"elapsedSinceSessionStartMs"`
	KeystrokeCount int   `json:"keystrokeCountAtEvent"`
}

// DeltaChange is one classified, section-attributed unit of document
// change. Immutable once created; owned by exactly one session.
type DeltaChange struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Type      ChangeType     `json:"type"`
	Content   string         `json:"content"`
	Position  int            `json:"position"`
	Context   ChangeContext  `json:"context"`
	Section   string         `json:"section,omitempty"`
	Metadata  ChangeMetadata `json:"metadata"`
}

// EditSession is the record of one bounded editing interval on a note.
// It is mutated only by its owning tracker and frozen on close.
type EditSession struct {
	ID              string                 `json:"id"`
	NoteID          string                 `json:"noteId"`
	StartTime       time.Time              `json:"startTime"`
	EndTime         *time.Time             `json:"endTime,omitempty"`
	OriginalContent string                 `json:"originalContent"`
	CurrentContent  string                 `json:"currentContent"`
	Changes         []DeltaChange          `json:"changes"`
	TotalChanges    int                    `json:"totalChanges"`
	ClinicalContext map[string]interface{} `json:"clinicalContext,omitempty"`
}

// NoteVersion is an immutable snapshot appended to a note's version
// history on each save.
type NoteVersion struct {
	NoteID    string           `json:"noteId"`
	Content   string           `json:"content"`
	Timestamp time.Time        `json:"timestamp"`
	Changes   int              `json:"changes"`
	Analytics SessionAnalytics `json:"analytics"`
}

// SessionAnalytics aggregates the accumulated changes of one session.
type SessionAnalytics struct {
	Additions           int            `json:"additions"`
	Deletions           int            `json:"deletions"`
	Modifications       int            `json:"modifications"`
	TotalChanges        int            `json:"totalChanges"`
	SectionCounts       map[string]int `json:"sectionCounts,omitempty"`
	AvgWordsPerChange   float64        `json:"avgWordsPerChange"`
	KeystrokesPerMinute float64        `json:"keystrokesPerMinute"`
	DurationSeconds     float64        `json:"durationSeconds"`
}
