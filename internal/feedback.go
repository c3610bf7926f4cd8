package internal

import "time"

// FeedbackRecord is one clinician rating of a generated note. Records are
// an append-only input stream; the engine never mutates them.
type FeedbackRecord struct {
	Rating        int       `json:"rating"` // 1-5
	QualityIssues []string  `json:"qualityIssues,omitempty"`
	TimeToReview  float64   `json:"timeToReviewSeconds"`
	AIProvider    string    `json:"aiProvider"`
	TemplateUsed  string    `json:"templateUsed"`
	CreatedAt     time.Time `json:"createdAt"`
}

// RatingTrends summarizes the recent-versus-older rating movement.
type RatingTrends struct {
	Direction        string  `json:"direction"` // "improving", "declining", "stable"
	RecentAverage    float64 `json:"recentAverage"`
	OlderAverage     float64 `json:"olderAverage"`
	ConsistencyScore float64 `json:"consistencyScore"`
}

// IssuePattern is one recurring quality complaint with its measured
// frequency and rating impact.
type IssuePattern struct {
	Issue         string  `json:"issue"`
	Frequency     int     `json:"frequency"`
	Percentage    float64 `json:"percentage"`
	AverageRating float64 `json:"averageRating"`
	Severity      float64 `json:"severity"`
}

// ReviewRange is the review-time window associated with the highest
// ratings.
type ReviewRange struct {
	MinSeconds float64 `json:"minSeconds"`
	MaxSeconds float64 `json:"maxSeconds"`
}

// TemporalPatterns correlates review time with rating.
type TemporalPatterns struct {
	ReviewTimeCorrelation float64      `json:"reviewTimeCorrelation"`
	OptimalReviewRange    *ReviewRange `json:"optimalReviewRange,omitempty"`
}

// ProviderStats holds per-provider aggregate quality numbers.
type ProviderStats struct {
	Provider      string  `json:"provider"`
	Count         int     `json:"count"`
	AverageRating float64 `json:"averageRating"`
	Consistency   float64 `json:"consistency"`
}

// ProviderAnalysis compares generation backends.
type ProviderAnalysis struct {
	Providers   []ProviderStats `json:"providers"`
	Recommended string          `json:"recommended,omitempty"`
}

// TemplatePerformance grades one note template.
type TemplatePerformance struct {
	Template      string  `json:"template"`
	Count         int     `json:"count"`
	AverageRating float64 `json:"averageRating"`
	Performance   string  `json:"performance"` // "excellent", "good", "needs_improvement"
}

// ContentAnalysis summarizes per-template quality.
type ContentAnalysis struct {
	Templates    []TemplatePerformance `json:"templates"`
	BestTemplate string                `json:"bestTemplate,omitempty"`
}

// FeedbackAnalysis is the derived output of the pattern analyzer. It is
// recomputed on demand from the supplied feedback set and is never
// persisted incrementally.
type FeedbackAnalysis struct {
	FeedbackCount    int              `json:"feedbackCount"`
	RatingTrends     RatingTrends     `json:"ratingTrends"`
	IssuePatterns    []IssuePattern   `json:"issuePatterns"`
	TemporalPatterns TemporalPatterns `json:"temporalPatterns"`
	ProviderAnalysis ProviderAnalysis `json:"providerAnalysis"`
	ContentAnalysis  ContentAnalysis  `json:"contentAnalysis"`
	ConfidenceScore  float64          `json:"confidenceScore"`
	AnalyzedAt       time.Time        `json:"analyzedAt"`
}
