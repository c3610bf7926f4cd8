package internal

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// maxVariants bounds an experiment to the control plus three
	// perturbations.
	maxVariants = 4
	// defaultTargetNoteCount is how many notes an experiment wants before
	// its leader is considered meaningful.
	defaultTargetNoteCount = 20
	// defaultConfidenceThreshold gates leader reporting.
	defaultConfidenceThreshold = 0.8
)

// ExperimentStatus is the lifecycle state of a prompt experiment.
type ExperimentStatus string

const (
	ExperimentActive    ExperimentStatus = "active"
	ExperimentConcluded ExperimentStatus = "concluded"
)

// PromptVariant is one candidate prompt under comparison.
type PromptVariant struct {
	ID          string `json:"id"`
	Label       string `json:"label"` // "control", "concise", "formal", ...
	Prompt      string `json:"prompt"`
	Description string `json:"description,omitempty"`
}

// VariantResult accumulates outcomes recorded against one variant.
type VariantResult struct {
	VariantID             string  `json:"variantId"`
	NoteCount             int     `json:"noteCount"`
	AverageRating         float64 `json:"averageRating"`
	AverageProcessingTime float64 `json:"averageProcessingTimeMs"`
	FeedbackCount         int     `json:"feedbackCount"`
}

// PromptExperiment is a controlled comparison of prompt variants.
type PromptExperiment struct {
	ID                  string           `json:"id"`
	UserID              string           `json:"userId"`
	BasePrompt          string           `json:"basePrompt"`
	Variants            []PromptVariant  `json:"variants"`
	Results             []VariantResult  `json:"results"`
	Status              ExperimentStatus `json:"status"`
	TargetNoteCount     int              `json:"targetNoteCount"`
	ConfidenceThreshold float64          `json:"confidenceThreshold"`
	CreatedAt           time.Time        `json:"createdAt"`
}

// styleTransforms are the mechanical tone/length perturbations applied to
// a base prompt, in priority order.
var styleTransforms = []struct {
	label       string
	description string
	suffix      string
}{
	{"concise", "shorter output", "\n\nKeep the note tight: short sentences, no filler, only clinically relevant content."},
	{"formal", "more formal register", "\n\nUse a formal clinical register throughout; avoid conversational phrasing."},
	{"detailed", "richer detail", "\n\nExpand each section with complete detail, including pertinent negatives and timelines."},
}

// ExperimentController builds prompt variants and records per-variant
// outcomes. Variant assignment uses a per-experiment atomic counter so
// concurrent generations for the same user stay balanced.
type ExperimentController struct {
	mu          sync.Mutex
	experiments map[string]*PromptExperiment
	counters    map[string]*uint64
}

// NewExperimentController creates an empty controller.
func NewExperimentController() *ExperimentController {
	return &ExperimentController{
		experiments: make(map[string]*PromptExperiment),
		counters:    make(map[string]*uint64),
	}
}

// CreateExperiment builds up to three non-control variants from the top
// issue patterns of the analysis (nil analysis is allowed: style
// transforms alone apply) and registers an active experiment.
func (c *ExperimentController) CreateExperiment(basePrompt string, ctx GenerationContext, analysis *FeedbackAnalysis) (*PromptExperiment, error) {
	if basePrompt == "" {
		return nil, fmt.Errorf("experiment requires a base prompt")
	}

	exp := &PromptExperiment{
		ID:                  uuid.NewString(),
		UserID:              ctx.UserID,
		BasePrompt:          basePrompt,
		Status:              ExperimentActive,
		TargetNoteCount:     defaultTargetNoteCount,
		ConfidenceThreshold: defaultConfidenceThreshold,
		CreatedAt:           time.Now(),
	}

	exp.Variants = append(exp.Variants, PromptVariant{
		ID:     uuid.NewString(),
		Label:  "control",
		Prompt: basePrompt,
	})

	// Issue-driven variants first: they target observed problems.
	if analysis != nil {
		for _, p := range analysis.IssuePatterns {
			if len(exp.Variants) >= maxVariants {
				break
			}
			instruction, ok := issueInstructions[p.Issue]
			if !ok {
				continue
			}
			exp.Variants = append(exp.Variants, PromptVariant{
				ID:          uuid.NewString(),
				Label:       "fix_" + p.Issue,
				Prompt:      basePrompt + "\n\n" + instruction,
				Description: fmt.Sprintf("targets %q (severity %.2f)", p.Issue, p.Severity),
			})
		}
	}

	for _, tr := range styleTransforms {
		if len(exp.Variants) >= maxVariants {
			break
		}
		exp.Variants = append(exp.Variants, PromptVariant{
			ID:          uuid.NewString(),
			Label:       tr.label,
			Prompt:      basePrompt + tr.suffix,
			Description: tr.description,
		})
	}

	for _, v := range exp.Variants {
		exp.Results = append(exp.Results, VariantResult{VariantID: v.ID})
	}

	c.mu.Lock()
	c.experiments[exp.ID] = exp
	var counter uint64
	c.counters[exp.ID] = &counter
	c.mu.Unlock()

	LogInfo("experiment %s created with %d variants", exp.ID, len(exp.Variants))
	return exp, nil
}

// Adopt registers a previously-persisted experiment with the controller,
// resuming its round-robin counter from the recorded note counts.
func (c *ExperimentController) Adopt(exp *PromptExperiment) error {
	if exp == nil || exp.ID == "" {
		return fmt.Errorf("cannot adopt empty experiment")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.experiments[exp.ID]; exists {
		return nil
	}
	c.experiments[exp.ID] = exp
	var counter uint64
	for _, r := range exp.Results {
		counter += uint64(r.NoteCount)
	}
	c.counters[exp.ID] = &counter
	return nil
}

// AssignVariant returns the next variant in round-robin order. Safe under
// concurrent generations.
func (c *ExperimentController) AssignVariant(experimentID string) (*PromptVariant, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	exp, ok := c.experiments[experimentID]
	if !ok {
		return nil, fmt.Errorf("unknown experiment: %s", experimentID)
	}
	if exp.Status != ExperimentActive {
		return nil, fmt.Errorf("experiment %s is not active", experimentID)
	}
	counter := c.counters[experimentID]
	idx := int(*counter % uint64(len(exp.Variants)))
	*counter++
	v := exp.Variants[idx]
	return &v, nil
}

// RecordOutcome folds one generation's rating and processing time into the
// variant's running averages.
func (c *ExperimentController) RecordOutcome(experimentID, variantID string, rating int, processingTimeMs float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	exp, ok := c.experiments[experimentID]
	if !ok {
		return fmt.Errorf("unknown experiment: %s", experimentID)
	}
	for i := range exp.Results {
		r := &exp.Results[i]
		if r.VariantID != variantID {
			continue
		}
		r.AverageRating = (r.AverageRating*float64(r.FeedbackCount) + float64(rating)) / float64(r.FeedbackCount+1)
		r.AverageProcessingTime = (r.AverageProcessingTime*float64(r.NoteCount) + processingTimeMs) / float64(r.NoteCount+1)
		r.FeedbackCount++
		r.NoteCount++
		return nil
	}
	return fmt.Errorf("unknown variant %s in experiment %s", variantID, experimentID)
}

// Get returns a copy-safe view of an experiment.
func (c *ExperimentController) Get(experimentID string) (*PromptExperiment, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	exp, ok := c.experiments[experimentID]
	if !ok {
		return nil, fmt.Errorf("unknown experiment: %s", experimentID)
	}
	return exp, nil
}

// Leader reports the variant with the highest average rating among those
// with at least targetNoteCount/len(variants) recorded notes. Returns nil
// while no variant has enough samples. Promotion of the leader to the new
// base prompt is the caller's explicit decision; the controller only
// records and reports.
func (c *ExperimentController) Leader(experimentID string) (*PromptVariant, *VariantResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	exp, ok := c.experiments[experimentID]
	if !ok {
		return nil, nil, fmt.Errorf("unknown experiment: %s", experimentID)
	}
	minSamples := exp.TargetNoteCount / len(exp.Variants)
	if minSamples < 1 {
		minSamples = 1
	}

	results := make([]VariantResult, len(exp.Results))
	copy(results, exp.Results)
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].AverageRating > results[j].AverageRating
	})
	for _, r := range results {
		if r.NoteCount < minSamples {
			continue
		}
		for _, v := range exp.Variants {
			if v.ID == r.VariantID {
				leader := v
				result := r
				return &leader, &result, nil
			}
		}
	}
	return nil, nil, nil
}

// Conclude flips the experiment to concluded and returns its leader (which
// may be nil when no variant has enough samples).
func (c *ExperimentController) Conclude(experimentID string) (*PromptVariant, *VariantResult, error) {
	leader, result, err := c.Leader(experimentID)
	if err != nil {
		return nil, nil, err
	}
	c.mu.Lock()
	c.experiments[experimentID].Status = ExperimentConcluded
	c.mu.Unlock()
	return leader, result, nil
}
