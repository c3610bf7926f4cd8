package internal

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// contextWindow bounds the surrounding text captured with each change.
const contextWindow = 50

// Classifier turns diff operations into DeltaChange records. It is pure
// with respect to document content: all mutable session state (clock,
// keystroke counter) is passed in per call.
type Classifier struct {
	sections *SectionTable
}

// NewClassifier creates a Classifier using the given section table.
func NewClassifier(sections *SectionTable) *Classifier {
	return &Classifier{sections: sections}
}

// Classify diffs the previous and current content and emits one
// DeltaChange per non-equal operation. A single-word delete immediately
// followed by a single-word insert at the same location collapses into one
// modification whose content is the inserted word; larger replacements
// are reported as an addition followed by a deletion. Positions are
// character offsets into the current content at the start of each
// operation.
func (c *Classifier) Classify(prev, current string, now time.Time, sessionStart time.Time, keystrokes int) []DeltaChange {
	ops := Diff(prev, current)
	if len(ops) == 0 {
		return nil
	}

	var changes []DeltaChange
	pos := 0 // cursor into current content
	for i := 0; i < len(ops); i++ {
		op := ops[i]
		switch op.Kind {
		case OpEqual:
			pos += len(op.Text)
		case OpDelete:
			if i+1 < len(ops) && ops[i+1].Kind == OpInsert {
				ins := ops[i+1]
				if singleToken(op.Text) && singleToken(ins.Text) {
					// One word replaced by one word is a modification.
					changes = append(changes, c.newChange(ChangeModification, ins.Text, pos, current, now, sessionStart, keystrokes))
					pos += len(ins.Text)
					i++
					continue
				}
				// Larger replacements stay split: the addition first, then
				// the deletion it displaced.
				changes = append(changes, c.newChange(ChangeAddition, ins.Text, pos, current, now, sessionStart, keystrokes))
				pos += len(ins.Text)
				changes = append(changes, c.newChange(ChangeDeletion, op.Text, pos, current, now, sessionStart, keystrokes))
				i++
				continue
			}
			changes = append(changes, c.newChange(ChangeDeletion, op.Text, pos, current, now, sessionStart, keystrokes))
		case OpInsert:
			changes = append(changes, c.newChange(ChangeAddition, op.Text, pos, current, now, sessionStart, keystrokes))
			pos += len(op.Text)
		}
	}
	return changes
}

func (c *Classifier) newChange(kind ChangeType, content string, pos int, doc string, now, sessionStart time.Time, keystrokes int) DeltaChange {
	section := ""
	if c.sections != nil {
		section = c.sections.SectionAt(doc, pos)
	}
	// Deleted text occupies no span in the new content.
	span := len(content)
	if kind == ChangeDeletion {
		span = 0
	}
	return DeltaChange{
		ID:        uuid.NewString(),
		Timestamp: now,
		Type:      kind,
		Content:   content,
		Position:  pos,
		Context:   extractContext(doc, pos, span),
		Section:   section,
		Metadata: ChangeMetadata{
			WordCount:      len(strings.Fields(content)),
			CharacterCount: len(content),
			ElapsedMs:      now.Sub(sessionStart).Milliseconds(),
			KeystrokeCount: keystrokes,
		},
	}
}

// singleToken reports whether s is one word token (one word plus optional
// trailing whitespace).
func singleToken(s string) bool {
	return len(tokenize(s)) == 1
}

// extractContext returns up to contextWindow characters on either side of
// the changed span in the new content, clipped at document bounds.
func extractContext(doc string, pos, length int) ChangeContext {
	if pos < 0 {
		pos = 0
	}
	if pos > len(doc) {
		pos = len(doc)
	}
	end := pos + length
	if end > len(doc) {
		end = len(doc)
	}
	beforeStart := pos - contextWindow
	if beforeStart < 0 {
		beforeStart = 0
	}
	afterEnd := end + contextWindow
	if afterEnd > len(doc) {
		afterEnd = len(doc)
	}
	return ChangeContext{
		Before: doc[beforeStart:pos],
		After:  doc[end:afterEnd],
	}
}
