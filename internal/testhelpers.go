package internal

import "time"

// CreateTestSession creates a finalized session with sample changes.
func CreateTestSession(id string) *EditSession {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(5 * time.Minute)
	return &EditSession{
		ID:              id,
		NoteID:          "note-" + id,
		StartTime:       start,
		EndTime:         &end,
		OriginalContent: "Assessment: stable",
		CurrentContent:  "Assessment: improving steadily",
		Changes: []DeltaChange{
			{
				ID:        "change-" + id,
				Timestamp: start.Add(time.Minute),
				Type:      ChangeModification,
				Content:   "improving steadily",
				Position:  12,
				Section:   "Assessment",
				Metadata:  ChangeMetadata{WordCount: 2, CharacterCount: 18, ElapsedMs: 60000, KeystrokeCount: 1},
			},
		},
		TotalChanges: 1,
	}
}

// CreateTestFeedback builds n feedback records with the given ratings
// cycling through two providers and two templates, spaced a day apart
// ending at the reference time.
func CreateTestFeedback(ratings []int, ref time.Time) []FeedbackRecord {
	providers := []string{"gemini", "claude"}
	templates := []string{"soap", "progress"}
	records := make([]FeedbackRecord, len(ratings))
	for i, r := range ratings {
		records[i] = FeedbackRecord{
			Rating:       r,
			TimeToReview: float64(60 + i*10),
			AIProvider:   providers[i%len(providers)],
			TemplateUsed: templates[i%len(templates)],
			CreatedAt:    ref.Add(-time.Duration(len(ratings)-1-i) * 24 * time.Hour),
		}
	}
	return records
}
