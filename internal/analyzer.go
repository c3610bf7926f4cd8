package internal

import (
	"math"
	"sort"
	"time"
)

const (
	// minFeedbackForAnalysis is the smallest feedback set worth analyzing.
	minFeedbackForAnalysis = 3
	// recentWindow is how many chronologically-latest ratings count as
	// "recent" for trend detection.
	recentWindow = 10
	// trendThreshold separates improving/declining from stable.
	trendThreshold = 0.2
	// minProviderSamples gates the provider recommendation.
	minProviderSamples = 5
	// optimalRatingFloor selects the feedback whose review times define
	// the optimal range.
	optimalRatingFloor = 4
	// maxConfidence caps the analysis confidence score.
	maxConfidence = 0.95
)

// AnalyzeFeedback computes a FeedbackAnalysis over a user's historical
// feedback. It is a pure function of its input: re-running it over the
// same records yields the same result (modulo AnalyzedAt). Returns
// InsufficientDataError when fewer than three records are supplied.
func AnalyzeFeedback(records []FeedbackRecord) (*FeedbackAnalysis, error) {
	return analyzeFeedbackAt(records, time.Now())
}

// analyzeFeedbackAt is AnalyzeFeedback with an explicit reference time so
// the recency computation is deterministic under test.
func analyzeFeedbackAt(records []FeedbackRecord, now time.Time) (*FeedbackAnalysis, error) {
	if len(records) < minFeedbackForAnalysis {
		return nil, &InsufficientDataError{Got: len(records), Need: minFeedbackForAnalysis}
	}

	// Work on a chronologically-sorted copy so the caller's slice order
	// never influences the result.
	sorted := make([]FeedbackRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	trends := computeRatingTrends(sorted)
	analysis := &FeedbackAnalysis{
		FeedbackCount:    len(sorted),
		RatingTrends:     trends,
		IssuePatterns:    computeIssuePatterns(sorted),
		TemporalPatterns: computeTemporalPatterns(sorted),
		ProviderAnalysis: computeProviderAnalysis(sorted),
		ContentAnalysis:  computeContentAnalysis(sorted),
		AnalyzedAt:       now,
	}
	analysis.ConfidenceScore = computeConfidence(sorted, trends.ConsistencyScore, now)
	return analysis, nil
}

func computeRatingTrends(sorted []FeedbackRecord) RatingTrends {
	// Recent = the last recentWindow ratings; when the whole set fits in
	// the window, split at the midpoint so the older cohort is never empty.
	split := len(sorted) - recentWindow
	if split <= 0 {
		split = len(sorted) / 2
	}
	older := sorted[:split]
	recent := sorted[split:]

	recentAvg := averageRating(recent)
	olderAvg := averageRating(older)

	direction := "stable"
	if len(older) > 0 {
		switch diff := recentAvg - olderAvg; {
		case diff > trendThreshold:
			direction = "improving"
		case diff < -trendThreshold:
			direction = "declining"
		}
	}

	return RatingTrends{
		Direction:        direction,
		RecentAverage:    recentAvg,
		OlderAverage:     olderAvg,
		ConsistencyScore: math.Max(0, 1-stdDevRating(recent)/2),
	}
}

func computeIssuePatterns(records []FeedbackRecord) []IssuePattern {
	overall := averageRating(records)

	byIssue := make(map[string][]FeedbackRecord)
	for _, r := range records {
		for _, issue := range r.QualityIssues {
			byIssue[issue] = append(byIssue[issue], r)
		}
	}

	var patterns []IssuePattern
	for issue, group := range byIssue {
		avg := averageRating(group)
		depression := math.Max(0, overall-avg)
		severity := 0.5*math.Min(float64(len(group))/10, 1) + 0.5*math.Min(depression/2, 1)
		patterns = append(patterns, IssuePattern{
			Issue:         issue,
			Frequency:     len(group),
			Percentage:    float64(len(group)) / float64(len(records)) * 100,
			AverageRating: avg,
			Severity:      severity,
		})
	}

	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].Severity != patterns[j].Severity {
			return patterns[i].Severity > patterns[j].Severity
		}
		return patterns[i].Issue < patterns[j].Issue
	})
	return patterns
}

func computeTemporalPatterns(records []FeedbackRecord) TemporalPatterns {
	times := make([]float64, len(records))
	ratings := make([]float64, len(records))
	for i, r := range records {
		times[i] = r.TimeToReview
		ratings[i] = float64(r.Rating)
	}

	tp := TemporalPatterns{ReviewTimeCorrelation: pearson(times, ratings)}

	minTime, maxTime := math.Inf(1), math.Inf(-1)
	found := false
	for _, r := range records {
		if r.Rating >= optimalRatingFloor {
			found = true
			minTime = math.Min(minTime, r.TimeToReview)
			maxTime = math.Max(maxTime, r.TimeToReview)
		}
	}
	if found {
		tp.OptimalReviewRange = &ReviewRange{MinSeconds: minTime, MaxSeconds: maxTime}
	}
	return tp
}

func computeProviderAnalysis(records []FeedbackRecord) ProviderAnalysis {
	byProvider := make(map[string][]FeedbackRecord)
	for _, r := range records {
		if r.AIProvider == "" {
			continue
		}
		byProvider[r.AIProvider] = append(byProvider[r.AIProvider], r)
	}

	var stats []ProviderStats
	for provider, group := range byProvider {
		stats = append(stats, ProviderStats{
			Provider:      provider,
			Count:         len(group),
			AverageRating: averageRating(group),
			Consistency:   math.Max(0, 1-stdDevRating(group)/2),
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Provider < stats[j].Provider })

	recommended := ""
	best := -1.0
	tied := false
	for _, s := range stats {
		if s.Count < minProviderSamples {
			continue
		}
		switch {
		case s.AverageRating > best:
			best = s.AverageRating
			recommended = s.Provider
			tied = false
		case s.AverageRating == best:
			tied = true
		}
	}
	if tied {
		// A recommendation requires a strictly better provider.
		recommended = ""
	}
	return ProviderAnalysis{Providers: stats, Recommended: recommended}
}

func computeContentAnalysis(records []FeedbackRecord) ContentAnalysis {
	byTemplate := make(map[string][]FeedbackRecord)
	for _, r := range records {
		if r.TemplateUsed == "" {
			continue
		}
		byTemplate[r.TemplateUsed] = append(byTemplate[r.TemplateUsed], r)
	}

	var templates []TemplatePerformance
	for tmpl, group := range byTemplate {
		avg := averageRating(group)
		performance := "needs_improvement"
		switch {
		case avg >= 4:
			performance = "excellent"
		case avg >= 3:
			performance = "good"
		}
		templates = append(templates, TemplatePerformance{
			Template:      tmpl,
			Count:         len(group),
			AverageRating: avg,
			Performance:   performance,
		})
	}
	sort.Slice(templates, func(i, j int) bool {
		if templates[i].AverageRating != templates[j].AverageRating {
			return templates[i].AverageRating > templates[j].AverageRating
		}
		return templates[i].Template < templates[j].Template
	})

	best := ""
	if len(templates) > 0 {
		best = templates[0].Template
	}
	return ContentAnalysis{Templates: templates, BestTemplate: best}
}

func computeConfidence(records []FeedbackRecord, consistency float64, now time.Time) float64 {
	volume := math.Min(float64(len(records))/20, 1)

	cutoff := now.AddDate(0, 0, -7)
	recentCount := 0
	for _, r := range records {
		if r.CreatedAt.After(cutoff) {
			recentCount++
		}
	}
	recency := float64(recentCount) / float64(len(records))

	return math.Min(maxConfidence, 0.5*volume+0.3*consistency+0.2*recency)
}

func averageRating(records []FeedbackRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	sum := 0
	for _, r := range records {
		sum += r.Rating
	}
	return float64(sum) / float64(len(records))
}

func stdDevRating(records []FeedbackRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	mean := averageRating(records)
	variance := 0.0
	for _, r := range records {
		d := float64(r.Rating) - mean
		variance += d * d
	}
	return math.Sqrt(variance / float64(len(records)))
}

// pearson computes the correlation coefficient of two equal-length series,
// returning 0 (never NaN) when either series has zero variance.
func pearson(xs, ys []float64) float64 {
	n := float64(len(xs))
	if n == 0 {
		return 0
	}
	var sumX, sumY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX, meanY := sumX/n, sumY/n

	var cov, varX, varY float64
	for i := range xs {
		dx, dy := xs[i]-meanX, ys[i]-meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0
	}
	return cov / math.Sqrt(varX*varY)
}
