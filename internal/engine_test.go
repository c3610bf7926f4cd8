package internal

import (
	"errors"
	"testing"
	"time"

	"github.com/rufusmd/ai-medical-note-writer-sub003/testutil"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	db, err := OpenDatabase(testutil.FixtureDBPath(t))
	if err != nil {
		t.Fatalf("OpenDatabase() error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewEngine(NewStore(db), WithSaveDelay(time.Hour))
}

func TestEngineSessionLifecycle(t *testing.T) {
	engine := testEngine(t)

	id := engine.StartSession("note-1", "Assessment: baseline")
	changes, err := engine.RecordMutation(id, "Assessment: baseline improving")
	if err != nil {
		t.Fatal(err)
	}
	if len(changes) == 0 {
		t.Fatal("expected changes")
	}

	analytics, err := engine.Analytics(id)
	if err != nil {
		t.Fatal(err)
	}
	if analytics.TotalChanges == 0 {
		t.Error("mid-session analytics should see changes")
	}

	session, err := engine.CloseSession(id)
	if err != nil {
		t.Fatal(err)
	}
	if session.EndTime == nil {
		t.Error("EndTime unset after close")
	}

	// Close persisted the session, the note content and a version.
	stored, err := engine.Store().Session(session.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.TotalChanges != session.TotalChanges {
		t.Errorf("stored session changes = %d, want %d", stored.TotalChanges, session.TotalChanges)
	}
	content, err := engine.Store().NoteContent("note-1")
	if err != nil {
		t.Fatal(err)
	}
	if content != "Assessment: baseline improving" {
		t.Errorf("note content = %q", content)
	}
	versions, err := engine.Store().NoteVersions("note-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(versions) != 1 {
		t.Errorf("versions = %d, want 1", len(versions))
	}

	if _, err := engine.RecordMutation(id, "anything"); err == nil {
		t.Error("mutation after close should fail")
	}
	if _, err := engine.CloseSession(id); err == nil {
		t.Error("closing an unknown (already closed) session should fail")
	}
}

func TestEngineAnalyzeFromStore(t *testing.T) {
	engine := testEngine(t)
	ref := time.Now()

	for _, r := range CreateTestFeedback([]int{3, 3, 3, 3, 3, 4, 4, 4, 4, 4}, ref) {
		if err := engine.Store().AppendFeedback("user-1", r); err != nil {
			t.Fatal(err)
		}
	}

	analysis, err := engine.AnalyzeFeedback("user-1")
	if err != nil {
		t.Fatal(err)
	}
	if analysis.RatingTrends.Direction != "improving" {
		t.Errorf("Direction = %q, want improving", analysis.RatingTrends.Direction)
	}
}

func TestEngineInsufficientFeedback(t *testing.T) {
	engine := testEngine(t)

	_, err := engine.AnalyzeFeedback("user-empty")
	var insufficient *InsufficientDataError
	if !errors.As(err, &insufficient) {
		t.Errorf("err = %v, want InsufficientDataError", err)
	}

	_, err = engine.GeneratePersonalizedPrompt("user-empty", StyleProfile{}, GenerationContext{BasePrompt: "Base."})
	if !errors.As(err, &insufficient) {
		t.Errorf("personalize err = %v, want InsufficientDataError", err)
	}
}

func TestEnginePersonalizeRecordsEvolution(t *testing.T) {
	engine := testEngine(t)
	ref := time.Now()

	records := CreateTestFeedback([]int{1, 1, 1, 1, 1, 5, 5, 5, 5, 5}, ref)
	for i := 0; i < 5; i++ {
		records[i].QualityIssues = []string{"too_long"}
	}
	for _, r := range records {
		if err := engine.Store().AppendFeedback("user-1", r); err != nil {
			t.Fatal(err)
		}
	}

	prompt, err := engine.GeneratePersonalizedPrompt("user-1", StyleProfile{}, GenerationContext{UserID: "user-1", BasePrompt: "Base."})
	if err != nil {
		t.Fatal(err)
	}
	if len(prompt.Personalizations) == 0 {
		t.Error("expected directives from a dominant issue")
	}

	evolutions, err := engine.Store().PromptEvolutions("user-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(evolutions) != 1 {
		t.Errorf("evolutions = %d, want 1", len(evolutions))
	}
}

func TestEngineExperimentFlow(t *testing.T) {
	engine := testEngine(t)

	exp, err := engine.CreateExperiment("Base.", GenerationContext{UserID: "user-1", BasePrompt: "Base."})
	if err != nil {
		t.Fatal(err)
	}

	v, err := engine.Experiments().AssignVariant(exp.ID)
	if err != nil {
		t.Fatal(err)
	}
	if err := engine.RecordExperimentOutcome(exp.ID, v.ID, 4, 850); err != nil {
		t.Fatal(err)
	}

	stored, err := engine.Store().Experiment(exp.ID)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, r := range stored.Results {
		if r.VariantID == v.ID && r.NoteCount == 1 {
			found = true
		}
	}
	if !found {
		t.Errorf("outcome not persisted: %+v", stored.Results)
	}
}
