package internal

import (
	"strings"
	"testing"
	"time"
)

func testClassifier(t *testing.T) *Classifier {
	t.Helper()
	return NewClassifier(defaultTable(t))
}

func TestClassifyAddition(t *testing.T) {
	c := testClassifier(t)
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	now := start.Add(30 * time.Second)

	changes := c.Classify("patient stable", "patient is stable", now, start, 3)
	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %d: %+v", len(changes), changes)
	}
	ch := changes[0]
	if ch.Type != ChangeAddition {
		t.Errorf("Type = %q, want addition", ch.Type)
	}
	if !strings.Contains(ch.Content, "is") {
		t.Errorf("Content = %q, want the inserted text", ch.Content)
	}
	if ch.Metadata.ElapsedMs != 30000 {
		t.Errorf("ElapsedMs = %d, want 30000", ch.Metadata.ElapsedMs)
	}
	if ch.Metadata.KeystrokeCount != 3 {
		t.Errorf("KeystrokeCount = %d, want 3", ch.Metadata.KeystrokeCount)
	}
	if ch.ID == "" {
		t.Error("change ID should be set")
	}
}

func TestClassifyDeletion(t *testing.T) {
	c := testClassifier(t)
	now := time.Now()

	changes := c.Classify("patient is very stable", "patient is stable", now, now, 1)
	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %d: %+v", len(changes), changes)
	}
	if changes[0].Type != ChangeDeletion {
		t.Errorf("Type = %q, want deletion", changes[0].Type)
	}
	if !strings.Contains(changes[0].Content, "very") {
		t.Errorf("Content = %q, want deleted text", changes[0].Content)
	}
}

func TestClassifyModificationCollapse(t *testing.T) {
	c := testClassifier(t)
	now := time.Now()

	changes := c.Classify("mood low today", "mood improved today", now, now, 1)
	if len(changes) != 1 {
		t.Fatalf("adjacent delete+insert should collapse: got %d changes %+v", len(changes), changes)
	}
	ch := changes[0]
	if ch.Type != ChangeModification {
		t.Errorf("Type = %q, want modification", ch.Type)
	}
	if !strings.Contains(ch.Content, "improved") {
		t.Errorf("Content = %q, want inserted side of the modification", ch.Content)
	}
}

func TestClassifyPositionIsRealOffset(t *testing.T) {
	c := testClassifier(t)
	now := time.Now()
	prev := "HPI:\nfoo\nAssessment:\nbar"
	curr := "HPI:\nfoo\nAssessment:\nbaz"

	changes := c.Classify(prev, curr, now, now, 1)
	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %d: %+v", len(changes), changes)
	}
	want := strings.Index(curr, "baz")
	if changes[0].Position != want {
		t.Errorf("Position = %d, want %d", changes[0].Position, want)
	}
}

func TestClassifySectionAttribution(t *testing.T) {
	c := testClassifier(t)
	now := time.Now()

	changes := c.Classify("HPI:\nfoo\nAssessment:\nbar", "HPI:\nfoo\nAssessment:\nbaz", now, now, 1)
	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(changes))
	}
	if changes[0].Section != "Assessment" {
		t.Errorf("Section = %q, want Assessment", changes[0].Section)
	}
}

func TestClassifyContextWindow(t *testing.T) {
	c := testClassifier(t)
	now := time.Now()
	long := strings.Repeat("word ", 40)

	changes := c.Classify(long+"tail", long+"changed tail", now, now, 1)
	if len(changes) == 0 {
		t.Fatal("expected changes")
	}
	ch := changes[0]
	if len(ch.Context.Before) > contextWindow {
		t.Errorf("Before context %d chars, cap is %d", len(ch.Context.Before), contextWindow)
	}
	if len(ch.Context.After) > contextWindow {
		t.Errorf("After context %d chars, cap is %d", len(ch.Context.After), contextWindow)
	}
}

func TestClassifyShortDocumentNeverPanics(t *testing.T) {
	c := testClassifier(t)
	now := time.Now()

	for _, pair := range [][2]string{
		{"", "a"},
		{"a", ""},
		{"", ""},
		{"x", "y"},
	} {
		changes := c.Classify(pair[0], pair[1], now, now, 1)
		for _, ch := range changes {
			if ch.Position < 0 || ch.Position > len(pair[1]) {
				t.Errorf("Classify(%q, %q): position %d out of bounds", pair[0], pair[1], ch.Position)
			}
		}
	}
}

func TestClassifyIdenticalContent(t *testing.T) {
	c := testClassifier(t)
	now := time.Now()
	if changes := c.Classify("same", "same", now, now, 1); len(changes) != 0 {
		t.Errorf("identical content produced %d changes", len(changes))
	}
}

func TestClassifyWordAndCharacterCounts(t *testing.T) {
	c := testClassifier(t)
	now := time.Now()

	changes := c.Classify("start ", "start one two three", now, now, 1)
	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(changes))
	}
	md := changes[0].Metadata
	if md.WordCount != 3 {
		t.Errorf("WordCount = %d, want 3", md.WordCount)
	}
	if md.CharacterCount != len(changes[0].Content) {
		t.Errorf("CharacterCount = %d, want %d", md.CharacterCount, len(changes[0].Content))
	}
}
