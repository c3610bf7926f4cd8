package internal

import "time"

// ComputeAnalytics aggregates a change list into session analytics.
// Sections with no label are counted under "Unknown".
func ComputeAnalytics(changes []DeltaChange, keystrokes int, elapsed time.Duration) SessionAnalytics {
	a := SessionAnalytics{
		TotalChanges:    len(changes),
		SectionCounts:   make(map[string]int),
		DurationSeconds: elapsed.Seconds(),
	}

	totalWords := 0
	for _, ch := range changes {
		switch ch.Type {
		case ChangeAddition:
			a.Additions++
		case ChangeDeletion:
			a.Deletions++
		case ChangeModification:
			a.Modifications++
		}
		section := ch.Section
		if section == "" {
			section = "Unknown"
		}
		a.SectionCounts[section]++
		totalWords += ch.Metadata.WordCount
	}

	if len(changes) > 0 {
		a.AvgWordsPerChange = float64(totalWords) / float64(len(changes))
	}
	if minutes := elapsed.Minutes(); minutes > 0 {
		a.KeystrokesPerMinute = float64(keystrokes) / minutes
	}
	return a
}
