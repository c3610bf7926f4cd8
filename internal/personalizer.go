package internal

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

const (
	// severityFloor gates which issue patterns earn a directive.
	severityFloor = 0.7
	// maxDirectives caps the personalizations applied to one prompt.
	maxDirectives = 5
)

// StyleProfile describes a clinician's documentation preferences. Opaque
// to the analyzer; the generator folds it into directive wording.
type StyleProfile struct {
	Tone          string `json:"tone,omitempty"`          // e.g. "formal", "conversational"
	Verbosity     string `json:"verbosity,omitempty"`     // e.g. "concise", "detailed"
	PreferredEMR  string `json:"preferredEmr,omitempty"`  // e.g. "epic"
	SpecialtyHint string `json:"specialtyHint,omitempty"` // e.g. "psychiatry"
}

// GenerationContext carries per-request facts the generator may reference.
type GenerationContext struct {
	UserID     string `json:"userId"`
	BasePrompt string `json:"basePrompt"`
	Template   string `json:"template,omitempty"`
	Provider   string `json:"provider,omitempty"`
}

// Personalization is one ranked prompt-modification directive.
type Personalization struct {
	Type       string  `json:"type"` // "issue_correction", "trend", "template", "provider", "style"
	Text       string  `json:"text"`
	Reasoning  string  `json:"reasoning"`
	Impact     float64 `json:"impact"`
	Confidence float64 `json:"confidence"`
}

// PersonalizedPrompt is the assembled prompt plus the directives that
// shaped it.
type PersonalizedPrompt struct {
	Prompt             string            `json:"prompt"`
	Personalizations   []Personalization `json:"personalizations"`
	ConfidenceScore    float64           `json:"confidenceScore"`
	BaselineComparison string            `json:"baselineComparison"`
	GeneratedAt        time.Time         `json:"generatedAt"`
}

// issueInstructions maps known quality-issue tags to corrective prompt
// instructions.
var issueInstructions = map[string]string{
	"too_long":           "Be concise. Trim redundant phrasing and keep each section focused on clinically relevant findings.",
	"too_short":          "Provide more complete detail in each section; do not omit pertinent negatives.",
	"missing_details":    "Include all clinically relevant details mentioned in the encounter, especially dosages, durations, and symptom timelines.",
	"wrong_tone":         "Match the clinician's documentation tone; avoid casual or speculative language.",
	"epic_syntax_errors": "Preserve all markup tokens exactly as written, including @-tokens and dotphrases; never rewrite or expand them.",
	"formatting_issues":  "Keep section headers and list formatting exactly consistent with the template.",
	"inaccurate_content": "Only document findings supported by the encounter; never infer or invent clinical facts.",
	"repetitive":         "Avoid repeating the same finding across sections; state each fact once in its proper section.",
}

// GeneratePersonalizedPrompt turns a feedback analysis and a style profile
// into a ranked set of prompt directives appended to the base prompt.
// Deterministic for identical inputs: no randomness, no global state.
func GeneratePersonalizedPrompt(analysis *FeedbackAnalysis, profile StyleProfile, ctx GenerationContext) *PersonalizedPrompt {
	var directives []Personalization

	for _, p := range analysis.IssuePatterns {
		if p.Severity <= severityFloor {
			continue
		}
		text, ok := issueInstructions[p.Issue]
		if !ok {
			text = fmt.Sprintf("Address the recurring quality issue %q reported on previous notes.", p.Issue)
		}
		directives = append(directives, Personalization{
			Type:       "issue_correction",
			Text:       text,
			Reasoning:  fmt.Sprintf("%q reported in %d of %d notes (avg rating %.1f when present)", p.Issue, p.Frequency, analysis.FeedbackCount, p.AverageRating),
			Impact:     p.Severity,
			Confidence: math.Min(float64(p.Frequency)/10, 1),
		})
	}

	if analysis.RatingTrends.Direction == "declining" {
		directives = append(directives, Personalization{
			Type:       "trend",
			Text:       "Recent notes have rated lower than earlier ones. Review each section against the template before finalizing and prioritize accuracy over speed.",
			Reasoning:  fmt.Sprintf("recent average %.2f vs older %.2f", analysis.RatingTrends.RecentAverage, analysis.RatingTrends.OlderAverage),
			Impact:     math.Min(1, analysis.RatingTrends.OlderAverage-analysis.RatingTrends.RecentAverage),
			Confidence: analysis.RatingTrends.ConsistencyScore,
		})
	}

	if best := analysis.ContentAnalysis.BestTemplate; best != "" && len(analysis.ContentAnalysis.Templates) > 1 {
		worst := analysis.ContentAnalysis.Templates[len(analysis.ContentAnalysis.Templates)-1]
		if worst.Template != best && worst.Performance == "needs_improvement" {
			directives = append(directives, Personalization{
				Type:       "template",
				Text:       fmt.Sprintf("Structure the note following the %q template conventions, which have produced this clinician's best-rated notes.", best),
				Reasoning:  fmt.Sprintf("template %q averages %.1f while %q averages %.1f", best, analysis.ContentAnalysis.Templates[0].AverageRating, worst.Template, worst.AverageRating),
				Impact:     math.Min(1, (analysis.ContentAnalysis.Templates[0].AverageRating-worst.AverageRating)/4),
				Confidence: math.Min(float64(analysis.ContentAnalysis.Templates[0].Count)/10, 1),
			})
		}
	}

	if rec := analysis.ProviderAnalysis.Recommended; rec != "" && ctx.Provider != "" && ctx.Provider != rec {
		directives = append(directives, Personalization{
			Type:       "provider",
			Text:       fmt.Sprintf("Note: provider %q has historically produced higher-rated drafts for this clinician than %q.", rec, ctx.Provider),
			Reasoning:  "provider comparison over historical feedback",
			Impact:     0.5,
			Confidence: analysis.ConfidenceScore,
		})
	}

	if profile.Verbosity == "concise" {
		directives = append(directives, Personalization{
			Type:       "style",
			Text:       "Prefer brief, direct sentences; this clinician favors concise documentation.",
			Reasoning:  "style profile verbosity preference",
			Impact:     0.3,
			Confidence: 1,
		})
	}

	sort.SliceStable(directives, func(i, j int) bool {
		return directives[i].Impact > directives[j].Impact
	})
	if len(directives) > maxDirectives {
		directives = directives[:maxDirectives]
	}

	return &PersonalizedPrompt{
		Prompt:             assemblePrompt(ctx.BasePrompt, directives),
		Personalizations:   directives,
		ConfidenceScore:    analysis.ConfidenceScore,
		BaselineComparison: baselineComparison(len(directives), analysis),
		GeneratedAt:        analysis.AnalyzedAt,
	}
}

func assemblePrompt(base string, directives []Personalization) string {
	if len(directives) == 0 {
		return base
	}
	var b strings.Builder
	b.WriteString(base)
	b.WriteString("\n\nPersonalized instructions based on this clinician's feedback history:\n")
	for i, d := range directives {
		fmt.Fprintf(&b, "%d. %s\n", i+1, d.Text)
	}
	return b.String()
}

func baselineComparison(applied int, analysis *FeedbackAnalysis) string {
	if applied == 0 {
		return "no adjustments: base prompt unchanged"
	}
	return fmt.Sprintf("%d adjustment(s) derived from %d feedback records (confidence %.2f)",
		applied, analysis.FeedbackCount, analysis.ConfidenceScore)
}
