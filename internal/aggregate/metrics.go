// Package aggregate computes reputation metrics over a review snapshot.
// It is pure: callers load the data and persist the result.
package aggregate

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/utafrali/reputation/internal/domain"
)

// TopKeywordLimit caps MetricsData.TopKeywords.
const TopKeywordLimit = 10

// Snapshot is the data a metrics run reads. Reviews may span any range;
// Generate keeps only those published inside the requested window.
type Snapshot struct {
	Reviews     []domain.Review
	Responses   []domain.ReviewResponse
	Competitors []domain.Competitor
}

// Generate builds a metrics record for [start, end]. The record has no ID;
// the metrics repository assigns one on append.
func Generate(period string, start, end time.Time, snap Snapshot, now time.Time) domain.ReputationMetrics {
	window := domain.InPeriod(start, end)
	reviews := make([]domain.Review, 0, len(snap.Reviews))
	for i := range snap.Reviews {
		if window.Matches(&snap.Reviews[i]) {
			reviews = append(reviews, snap.Reviews[i])
		}
	}

	data := Compute(reviews)
	data.AverageResponseTime = averageResponseHours(reviews, snap.Responses)
	data.TopKeywords = TopKeywords(reviews, TopKeywordLimit)
	data.RatingTrend, data.VolumeTrend = Trends(period, start, end, reviews)

	return domain.ReputationMetrics{
		Period:      period,
		StartDate:   start,
		EndDate:     end,
		Metrics:     data,
		Competitive: Compare(data.AverageRating, snap.Competitors),
		GeneratedAt: now,
	}
}

// Compute fills the summary figures for reviews. Every ratio is 0 for an
// empty slice.
func Compute(reviews []domain.Review) domain.MetricsData {
	data := domain.MetricsData{
		TotalReviews:    len(reviews),
		ReviewsBySource: make(map[string]int),
		ReviewsByRating: make(map[string]int),
		TopKeywords:     []domain.KeywordCount{},
		RatingTrend:     []domain.TrendPoint{},
		VolumeTrend:     []domain.TrendPoint{},
	}
	if len(reviews) == 0 {
		return data
	}

	var ratingSum, sentimentSum float64
	var responded int
	for i := range reviews {
		r := &reviews[i]
		ratingSum += float64(r.Rating)
		sentimentSum += r.SentimentScore()
		if r.HasResponse() {
			responded++
		}
		data.ReviewsBySource[r.SourceID]++
		data.ReviewsByRating[strconv.Itoa(r.Rating)]++
	}

	n := float64(len(reviews))
	data.AverageRating = ratingSum / n
	data.SentimentScore = sentimentSum / n
	data.ResponseRate = float64(responded) / n
	return data
}

// averageResponseHours is the mean delay between publication and the
// linked response, over reviews whose response still exists.
func averageResponseHours(reviews []domain.Review, responses []domain.ReviewResponse) float64 {
	created := make(map[string]time.Time, len(responses))
	for _, resp := range responses {
		created[resp.ID] = resp.CreatedAt
	}

	var total float64
	var n int
	for i := range reviews {
		at, ok := created[reviews[i].ResponseID]
		if !reviews[i].HasResponse() || !ok {
			continue
		}
		delay := at.Sub(reviews[i].PublishedAt)
		if delay < 0 {
			delay = 0
		}
		total += delay.Hours()
		n++
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}

// TopKeywords ranks keywords by occurrence, then mean relevance, then word.
// Words are compared case-insensitively.
func TopKeywords(reviews []domain.Review, limit int) []domain.KeywordCount {
	type tally struct {
		count     int
		relevance float64
	}
	tallies := make(map[string]*tally)
	for i := range reviews {
		for _, kw := range reviews[i].Keywords {
			word := strings.ToLower(strings.TrimSpace(kw.Word))
			if word == "" {
				continue
			}
			t, ok := tallies[word]
			if !ok {
				t = &tally{}
				tallies[word] = t
			}
			t.count++
			t.relevance += kw.Relevance
		}
	}

	out := make([]domain.KeywordCount, 0, len(tallies))
	for word, t := range tallies {
		out = append(out, domain.KeywordCount{
			Word:      word,
			Count:     t.count,
			Relevance: t.relevance / float64(t.count),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].Relevance != out[j].Relevance {
			return out[i].Relevance > out[j].Relevance
		}
		return out[i].Word < out[j].Word
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
