package internal

import (
	"errors"
	"math"
	"testing"
	"time"
)

var analyzerRef = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func TestAnalyzeFeedbackInsufficientData(t *testing.T) {
	for _, n := range []int{0, 1, 2} {
		ratings := make([]int, n)
		for i := range ratings {
			ratings[i] = 3
		}
		_, err := analyzeFeedbackAt(CreateTestFeedback(ratings, analyzerRef), analyzerRef)
		var insufficient *InsufficientDataError
		if !errors.As(err, &insufficient) {
			t.Errorf("n=%d: err = %v, want InsufficientDataError", n, err)
		}
	}

	if _, err := analyzeFeedbackAt(CreateTestFeedback([]int{3, 4, 5}, analyzerRef), analyzerRef); err != nil {
		t.Errorf("n=3 should analyze, got %v", err)
	}
}

func TestRatingTrendImproving(t *testing.T) {
	records := CreateTestFeedback([]int{3, 3, 3, 3, 3, 4, 4, 4, 4, 4}, analyzerRef)
	analysis, err := analyzeFeedbackAt(records, analyzerRef)
	if err != nil {
		t.Fatal(err)
	}

	trend := analysis.RatingTrends
	if trend.Direction != "improving" {
		t.Errorf("Direction = %q, want improving", trend.Direction)
	}
	if trend.OlderAverage != 3.0 {
		t.Errorf("OlderAverage = %f, want 3.0", trend.OlderAverage)
	}
	if trend.RecentAverage != 4.0 {
		t.Errorf("RecentAverage = %f, want 4.0", trend.RecentAverage)
	}
	// Recent ratings are all 4: zero deviation, full consistency.
	if trend.ConsistencyScore != 1.0 {
		t.Errorf("ConsistencyScore = %f, want 1.0", trend.ConsistencyScore)
	}
}

func TestRatingTrendDecliningAndStable(t *testing.T) {
	declining, err := analyzeFeedbackAt(CreateTestFeedback([]int{5, 5, 5, 5, 5, 3, 3, 3, 3, 3}, analyzerRef), analyzerRef)
	if err != nil {
		t.Fatal(err)
	}
	if declining.RatingTrends.Direction != "declining" {
		t.Errorf("Direction = %q, want declining", declining.RatingTrends.Direction)
	}

	stable, err := analyzeFeedbackAt(CreateTestFeedback([]int{4, 4, 4, 4, 4, 4}, analyzerRef), analyzerRef)
	if err != nil {
		t.Fatal(err)
	}
	if stable.RatingTrends.Direction != "stable" {
		t.Errorf("Direction = %q, want stable", stable.RatingTrends.Direction)
	}
}

func TestAnalyzeOrderIndependence(t *testing.T) {
	records := CreateTestFeedback([]int{3, 3, 3, 3, 3, 4, 4, 4, 4, 4}, analyzerRef)
	reversed := make([]FeedbackRecord, len(records))
	for i, r := range records {
		reversed[len(records)-1-i] = r
	}

	a1, err := analyzeFeedbackAt(records, analyzerRef)
	if err != nil {
		t.Fatal(err)
	}
	a2, err := analyzeFeedbackAt(reversed, analyzerRef)
	if err != nil {
		t.Fatal(err)
	}
	if a1.RatingTrends != a2.RatingTrends {
		t.Errorf("trend depends on input order: %+v vs %+v", a1.RatingTrends, a2.RatingTrends)
	}
	if a1.ConfidenceScore != a2.ConfidenceScore {
		t.Errorf("confidence depends on input order")
	}
}

func TestIssuePatternsSeverityOrdering(t *testing.T) {
	records := CreateTestFeedback([]int{5, 5, 5, 5, 5, 5, 5, 5}, analyzerRef)
	// "too_long" is frequent and rating-damaging; "wrong_tone" rare and mild.
	for i := range records {
		if i < 6 {
			records[i].Rating = 2
			records[i].QualityIssues = []string{"too_long"}
		}
	}
	records[7].QualityIssues = []string{"wrong_tone"}

	analysis, err := analyzeFeedbackAt(records, analyzerRef)
	if err != nil {
		t.Fatal(err)
	}
	patterns := analysis.IssuePatterns
	if len(patterns) != 2 {
		t.Fatalf("expected 2 issue patterns, got %d", len(patterns))
	}
	if patterns[0].Issue != "too_long" {
		t.Errorf("top pattern = %q, want too_long", patterns[0].Issue)
	}
	if patterns[0].Severity <= patterns[1].Severity {
		t.Errorf("patterns not sorted by severity: %+v", patterns)
	}
	if patterns[0].Frequency != 6 {
		t.Errorf("Frequency = %d, want 6", patterns[0].Frequency)
	}
	if want := 75.0; patterns[0].Percentage != want {
		t.Errorf("Percentage = %f, want %f", patterns[0].Percentage, want)
	}
	if patterns[0].AverageRating != 2.0 {
		t.Errorf("AverageRating = %f, want 2.0", patterns[0].AverageRating)
	}
}

func TestTemporalCorrelationZeroVariance(t *testing.T) {
	records := CreateTestFeedback([]int{4, 4, 4, 4}, analyzerRef)
	for i := range records {
		records[i].TimeToReview = 120 // constant
	}
	analysis, err := analyzeFeedbackAt(records, analyzerRef)
	if err != nil {
		t.Fatal(err)
	}
	corr := analysis.TemporalPatterns.ReviewTimeCorrelation
	if math.IsNaN(corr) || corr != 0 {
		t.Errorf("correlation = %f, want 0 on zero variance", corr)
	}
}

func TestOptimalReviewRange(t *testing.T) {
	records := CreateTestFeedback([]int{2, 4, 5, 3}, analyzerRef)
	records[1].TimeToReview = 90
	records[2].TimeToReview = 150

	analysis, err := analyzeFeedbackAt(records, analyzerRef)
	if err != nil {
		t.Fatal(err)
	}
	rng := analysis.TemporalPatterns.OptimalReviewRange
	if rng == nil {
		t.Fatal("expected an optimal review range")
	}
	if rng.MinSeconds != 90 || rng.MaxSeconds != 150 {
		t.Errorf("range = [%f, %f], want [90, 150]", rng.MinSeconds, rng.MaxSeconds)
	}
}

func TestProviderRecommendation(t *testing.T) {
	var records []FeedbackRecord
	for i := 0; i < 6; i++ {
		records = append(records, FeedbackRecord{
			Rating: 5, AIProvider: "claude", TemplateUsed: "soap",
			CreatedAt: analyzerRef.Add(-time.Duration(i) * time.Hour),
		})
		records = append(records, FeedbackRecord{
			Rating: 3, AIProvider: "gemini", TemplateUsed: "soap",
			CreatedAt: analyzerRef.Add(-time.Duration(i) * time.Hour),
		})
	}

	analysis, err := analyzeFeedbackAt(records, analyzerRef)
	if err != nil {
		t.Fatal(err)
	}
	if analysis.ProviderAnalysis.Recommended != "claude" {
		t.Errorf("Recommended = %q, want claude", analysis.ProviderAnalysis.Recommended)
	}
}

func TestProviderRecommendationNeedsSamplesAndStrictWinner(t *testing.T) {
	// Too few samples per provider: no recommendation.
	small, err := analyzeFeedbackAt(CreateTestFeedback([]int{5, 3, 5, 3}, analyzerRef), analyzerRef)
	if err != nil {
		t.Fatal(err)
	}
	if small.ProviderAnalysis.Recommended != "" {
		t.Errorf("Recommended = %q, want none with small samples", small.ProviderAnalysis.Recommended)
	}

	// Equal averages: no strict winner.
	var tied []FeedbackRecord
	for i := 0; i < 10; i++ {
		provider := "claude"
		if i%2 == 0 {
			provider = "gemini"
		}
		tied = append(tied, FeedbackRecord{Rating: 4, AIProvider: provider, CreatedAt: analyzerRef})
	}
	analysis, err := analyzeFeedbackAt(tied, analyzerRef)
	if err != nil {
		t.Fatal(err)
	}
	if analysis.ProviderAnalysis.Recommended != "" {
		t.Errorf("Recommended = %q, want none on a tie", analysis.ProviderAnalysis.Recommended)
	}
}

func TestTemplatePerformanceTiers(t *testing.T) {
	records := []FeedbackRecord{
		{Rating: 5, TemplateUsed: "soap", CreatedAt: analyzerRef},
		{Rating: 4, TemplateUsed: "soap", CreatedAt: analyzerRef},
		{Rating: 3, TemplateUsed: "progress", CreatedAt: analyzerRef},
		{Rating: 3, TemplateUsed: "progress", CreatedAt: analyzerRef},
		{Rating: 2, TemplateUsed: "discharge", CreatedAt: analyzerRef},
		{Rating: 1, TemplateUsed: "discharge", CreatedAt: analyzerRef},
	}
	analysis, err := analyzeFeedbackAt(records, analyzerRef)
	if err != nil {
		t.Fatal(err)
	}

	byName := make(map[string]TemplatePerformance)
	for _, tp := range analysis.ContentAnalysis.Templates {
		byName[tp.Template] = tp
	}
	if byName["soap"].Performance != "excellent" {
		t.Errorf("soap = %q, want excellent", byName["soap"].Performance)
	}
	if byName["progress"].Performance != "good" {
		t.Errorf("progress = %q, want good", byName["progress"].Performance)
	}
	if byName["discharge"].Performance != "needs_improvement" {
		t.Errorf("discharge = %q, want needs_improvement", byName["discharge"].Performance)
	}
	if analysis.ContentAnalysis.BestTemplate != "soap" {
		t.Errorf("BestTemplate = %q, want soap", analysis.ContentAnalysis.BestTemplate)
	}
}

func TestConfidenceMonotonicInCount(t *testing.T) {
	// All records identical ratings at the same recent instant: consistency
	// and recency fixed, only count varies.
	build := func(n int) []FeedbackRecord {
		records := make([]FeedbackRecord, n)
		for i := range records {
			records[i] = FeedbackRecord{Rating: 4, CreatedAt: analyzerRef.Add(-time.Hour)}
		}
		return records
	}

	prev := -1.0
	for _, n := range []int{5, 10, 20, 40} {
		analysis, err := analyzeFeedbackAt(build(n), analyzerRef)
		if err != nil {
			t.Fatal(err)
		}
		if analysis.ConfidenceScore < prev {
			t.Errorf("confidence decreased going to n=%d: %f < %f", n, analysis.ConfidenceScore, prev)
		}
		if analysis.ConfidenceScore > maxConfidence {
			t.Errorf("confidence %f exceeds cap %f", analysis.ConfidenceScore, maxConfidence)
		}
		prev = analysis.ConfidenceScore
	}
}

func TestConfidenceComponents(t *testing.T) {
	// 20 consistent, fully recent records: 0.5 + 0.3 + 0.2 = 1.0, capped.
	records := make([]FeedbackRecord, 20)
	for i := range records {
		records[i] = FeedbackRecord{Rating: 4, CreatedAt: analyzerRef.Add(-time.Hour)}
	}
	analysis, err := analyzeFeedbackAt(records, analyzerRef)
	if err != nil {
		t.Fatal(err)
	}
	if analysis.ConfidenceScore != maxConfidence {
		t.Errorf("ConfidenceScore = %f, want capped at %f", analysis.ConfidenceScore, maxConfidence)
	}
}
