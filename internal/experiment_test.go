package internal

import (
	"sync"
	"testing"
)

func TestCreateExperimentVariantCap(t *testing.T) {
	c := NewExperimentController()
	analysis := testAnalysis()

	exp, err := c.CreateExperiment("Base prompt.", GenerationContext{UserID: "u1"}, analysis)
	if err != nil {
		t.Fatalf("CreateExperiment() error: %v", err)
	}
	if len(exp.Variants) > maxVariants {
		t.Errorf("variants = %d, cap is %d", len(exp.Variants), maxVariants)
	}
	if exp.Variants[0].Label != "control" || exp.Variants[0].Prompt != "Base prompt." {
		t.Errorf("first variant should be the unmodified control: %+v", exp.Variants[0])
	}
	if exp.Status != ExperimentActive {
		t.Errorf("Status = %q, want active", exp.Status)
	}
	if len(exp.Results) != len(exp.Variants) {
		t.Errorf("results not initialized per variant: %d vs %d", len(exp.Results), len(exp.Variants))
	}
}

func TestCreateExperimentWithoutAnalysis(t *testing.T) {
	c := NewExperimentController()
	exp, err := c.CreateExperiment("Base prompt.", GenerationContext{UserID: "u1"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	// Control plus the style transforms.
	if len(exp.Variants) != maxVariants {
		t.Errorf("variants = %d, want %d from style transforms alone", len(exp.Variants), maxVariants)
	}
}

func TestCreateExperimentRequiresBasePrompt(t *testing.T) {
	c := NewExperimentController()
	if _, err := c.CreateExperiment("", GenerationContext{}, nil); err == nil {
		t.Error("CreateExperiment() should reject an empty base prompt")
	}
}

func TestAssignVariantRoundRobin(t *testing.T) {
	c := NewExperimentController()
	exp, err := c.CreateExperiment("Base.", GenerationContext{}, nil)
	if err != nil {
		t.Fatal(err)
	}

	counts := make(map[string]int)
	rounds := 5
	for i := 0; i < rounds*len(exp.Variants); i++ {
		v, err := c.AssignVariant(exp.ID)
		if err != nil {
			t.Fatal(err)
		}
		counts[v.ID]++
	}
	for _, v := range exp.Variants {
		if counts[v.ID] != rounds {
			t.Errorf("variant %s assigned %d times, want %d", v.Label, counts[v.ID], rounds)
		}
	}
}

func TestAssignVariantConcurrent(t *testing.T) {
	c := NewExperimentController()
	exp, err := c.CreateExperiment("Base.", GenerationContext{}, nil)
	if err != nil {
		t.Fatal(err)
	}

	const workers = 8
	const perWorker = 25
	var mu sync.Mutex
	counts := make(map[string]int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				v, err := c.AssignVariant(exp.ID)
				if err != nil {
					t.Error(err)
					return
				}
				mu.Lock()
				counts[v.ID]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	total := 0
	for _, n := range counts {
		total += n
	}
	if total != workers*perWorker {
		t.Errorf("assignments lost under concurrency: %d", total)
	}
	want := workers * perWorker / len(exp.Variants)
	for id, n := range counts {
		if n != want {
			t.Errorf("variant %s: %d assignments, want %d", id, n, want)
		}
	}
}

func TestRecordOutcomeAverages(t *testing.T) {
	c := NewExperimentController()
	exp, err := c.CreateExperiment("Base.", GenerationContext{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	variantID := exp.Variants[0].ID

	for _, rating := range []int{5, 3} {
		if err := c.RecordOutcome(exp.ID, variantID, rating, 1000); err != nil {
			t.Fatal(err)
		}
	}

	got, err := c.Get(exp.ID)
	if err != nil {
		t.Fatal(err)
	}
	r := got.Results[0]
	if r.NoteCount != 2 || r.FeedbackCount != 2 {
		t.Errorf("counts = %d/%d, want 2/2", r.NoteCount, r.FeedbackCount)
	}
	if r.AverageRating != 4.0 {
		t.Errorf("AverageRating = %f, want 4.0", r.AverageRating)
	}
	if r.AverageProcessingTime != 1000 {
		t.Errorf("AverageProcessingTime = %f, want 1000", r.AverageProcessingTime)
	}

	if err := c.RecordOutcome(exp.ID, "no-such-variant", 4, 100); err == nil {
		t.Error("RecordOutcome() should fail for an unknown variant")
	}
}

func TestLeaderRequiresSamples(t *testing.T) {
	c := NewExperimentController()
	exp, err := c.CreateExperiment("Base.", GenerationContext{}, nil)
	if err != nil {
		t.Fatal(err)
	}

	leader, _, err := c.Leader(exp.ID)
	if err != nil {
		t.Fatal(err)
	}
	if leader != nil {
		t.Errorf("leader = %+v, want nil before any samples", leader)
	}

	// targetNoteCount/variants samples on one variant makes it eligible.
	minSamples := exp.TargetNoteCount / len(exp.Variants)
	winner := exp.Variants[1]
	for i := 0; i < minSamples; i++ {
		if err := c.RecordOutcome(exp.ID, winner.ID, 5, 500); err != nil {
			t.Fatal(err)
		}
	}
	// A higher-rated but under-sampled variant must not win.
	if err := c.RecordOutcome(exp.ID, exp.Variants[2].ID, 5, 500); err != nil {
		t.Fatal(err)
	}

	leader, result, err := c.Leader(exp.ID)
	if err != nil {
		t.Fatal(err)
	}
	if leader == nil || leader.ID != winner.ID {
		t.Fatalf("leader = %+v, want %s", leader, winner.Label)
	}
	if result.NoteCount != minSamples {
		t.Errorf("leader NoteCount = %d, want %d", result.NoteCount, minSamples)
	}
}

func TestConcludeFlipsStatus(t *testing.T) {
	c := NewExperimentController()
	exp, err := c.CreateExperiment("Base.", GenerationContext{}, nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, _, err := c.Conclude(exp.ID); err != nil {
		t.Fatal(err)
	}
	got, err := c.Get(exp.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != ExperimentConcluded {
		t.Errorf("Status = %q, want concluded", got.Status)
	}
	if _, err := c.AssignVariant(exp.ID); err == nil {
		t.Error("AssignVariant() should fail on a concluded experiment")
	}
}

func TestAdoptResumesCounter(t *testing.T) {
	c := NewExperimentController()
	exp, err := c.CreateExperiment("Base.", GenerationContext{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.RecordOutcome(exp.ID, exp.Variants[0].ID, 4, 100); err != nil {
		t.Fatal(err)
	}

	other := NewExperimentController()
	if err := other.Adopt(exp); err != nil {
		t.Fatal(err)
	}
	v, err := other.AssignVariant(exp.ID)
	if err != nil {
		t.Fatal(err)
	}
	if v.ID != exp.Variants[1].ID {
		t.Errorf("adopted counter should resume past recorded notes: got %s", v.Label)
	}
}
