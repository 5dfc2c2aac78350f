package aggregate

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/reputation/internal/domain"
)

var (
	windowStart = time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	windowEnd   = time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC)
	generatedAt = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
)

func review(rating int, day int, opts ...func(*domain.Review)) domain.Review {
	r := domain.Review{
		SourceID:    "google",
		Rating:      rating,
		PublishedAt: windowStart.AddDate(0, 0, day),
	}
	for _, o := range opts {
		o(&r)
	}
	return r
}

func withSentiment(score float64) func(*domain.Review) {
	return func(r *domain.Review) { r.Sentiment = &domain.Sentiment{Score: score} }
}

func withSource(id string) func(*domain.Review) {
	return func(r *domain.Review) { r.SourceID = id }
}

func withResponse(id string) func(*domain.Review) {
	return func(r *domain.Review) { r.ResponseID = id }
}

func withKeywords(kws ...domain.Keyword) func(*domain.Review) {
	return func(r *domain.Review) { r.Keywords = kws }
}

// ---------------------------------------------------------------------------
// Generate / Compute
// ---------------------------------------------------------------------------

func TestGenerate_MonthlyScenario(t *testing.T) {
	snap := Snapshot{Reviews: []domain.Review{
		review(5, 1),
		review(4, 10),
		review(2, 20),
	}}

	m := Generate(domain.PeriodMonthly, windowStart, windowEnd, snap, generatedAt)

	assert.InDelta(t, 11.0/3.0, m.Metrics.AverageRating, 1e-12)
	assert.Equal(t, 3, m.Metrics.TotalReviews)
	assert.Equal(t, domain.PeriodMonthly, m.Period)
	assert.Equal(t, windowStart, m.StartDate)
	assert.Equal(t, windowEnd, m.EndDate)
	assert.Equal(t, generatedAt, m.GeneratedAt)
	assert.Empty(t, m.ID)
}

func TestGenerate_EmptySnapshotHasNoNaN(t *testing.T) {
	outside := review(5, 60)
	m := Generate(domain.PeriodMonthly, windowStart, windowEnd, Snapshot{Reviews: []domain.Review{outside}}, generatedAt)

	data := m.Metrics
	assert.Equal(t, 0, data.TotalReviews)
	assert.Equal(t, 0.0, data.AverageRating)
	assert.Equal(t, 0.0, data.ResponseRate)
	assert.Equal(t, 0.0, data.SentimentScore)
	assert.Equal(t, 0.0, data.AverageResponseTime)
	for _, v := range []float64{data.AverageRating, data.ResponseRate, data.SentimentScore} {
		assert.False(t, math.IsNaN(v))
	}
	assert.NotNil(t, data.ReviewsBySource)
	assert.NotNil(t, data.TopKeywords)
	assert.NotNil(t, data.RatingTrend)
	assert.Len(t, data.VolumeTrend, 31)
	assert.Nil(t, m.Competitive)
}

func TestGenerate_WindowIsInclusive(t *testing.T) {
	atStart := domain.Review{Rating: 5, PublishedAt: windowStart}
	atEnd := domain.Review{Rating: 1, PublishedAt: windowEnd}
	before := domain.Review{Rating: 3, PublishedAt: windowStart.Add(-time.Second)}
	after := domain.Review{Rating: 3, PublishedAt: windowEnd.Add(time.Second)}

	m := Generate(domain.PeriodMonthly, windowStart, windowEnd, Snapshot{Reviews: []domain.Review{atStart, atEnd, before, after}}, generatedAt)
	assert.Equal(t, 2, m.Metrics.TotalReviews)
	assert.Equal(t, 3.0, m.Metrics.AverageRating)
}

func TestCompute_Breakdowns(t *testing.T) {
	reviews := []domain.Review{
		review(5, 1, withSource("google"), withSentiment(0.8), withResponse("resp-1")),
		review(5, 2, withSource("yelp"), withSentiment(0.4)),
		review(1, 3, withSource("google")),
		review(3, 4, withSource("google"), withSentiment(-0.6), withResponse("resp-2")),
	}

	data := Compute(reviews)

	assert.Equal(t, map[string]int{"google": 3, "yelp": 1}, data.ReviewsBySource)
	assert.Equal(t, map[string]int{"5": 2, "1": 1, "3": 1}, data.ReviewsByRating)
	assert.Equal(t, 0.5, data.ResponseRate)
	assert.InDelta(t, (0.8+0.4+0-0.6)/4, data.SentimentScore, 1e-12)
	assert.Equal(t, 3.5, data.AverageRating)
}

func TestGenerate_AverageResponseTime(t *testing.T) {
	r1 := review(5, 1, withResponse("resp-1"))
	r2 := review(4, 2, withResponse("resp-2"))
	r3 := review(3, 3, withResponse("resp-deleted"))
	responses := []domain.ReviewResponse{
		{ID: "resp-1", CreatedAt: r1.PublishedAt.Add(2 * time.Hour)},
		{ID: "resp-2", CreatedAt: r2.PublishedAt.Add(6 * time.Hour)},
	}

	m := Generate(domain.PeriodMonthly, windowStart, windowEnd, Snapshot{
		Reviews:   []domain.Review{r1, r2, r3},
		Responses: responses,
	}, generatedAt)

	assert.InDelta(t, 4.0, m.Metrics.AverageResponseTime, 1e-9)
}

// ---------------------------------------------------------------------------
// Keywords
// ---------------------------------------------------------------------------

func TestTopKeywords_Ranking(t *testing.T) {
	reviews := []domain.Review{
		review(5, 1, withKeywords(
			domain.Keyword{Word: "Coffee", Relevance: 0.9},
			domain.Keyword{Word: "staff", Relevance: 0.5},
		)),
		review(4, 2, withKeywords(
			domain.Keyword{Word: "coffee", Relevance: 0.7},
			domain.Keyword{Word: "price", Relevance: 0.8},
			domain.Keyword{Word: "wifi", Relevance: 0.8},
		)),
	}

	got := TopKeywords(reviews, 10)
	require.Len(t, got, 4)
	assert.Equal(t, "coffee", got[0].Word)
	assert.Equal(t, 2, got[0].Count)
	assert.InDelta(t, 0.8, got[0].Relevance, 1e-9)
	assert.Equal(t, "price", got[1].Word)
	assert.Equal(t, "wifi", got[2].Word)
	assert.Equal(t, "staff", got[3].Word)
}

func TestTopKeywords_Limit(t *testing.T) {
	var kws []domain.Keyword
	for _, w := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"} {
		kws = append(kws, domain.Keyword{Word: w, Relevance: 0.5})
	}
	got := TopKeywords([]domain.Review{review(5, 1, withKeywords(kws...))}, TopKeywordLimit)
	assert.Len(t, got, TopKeywordLimit)
	assert.Equal(t, "a", got[0].Word)
}

// ---------------------------------------------------------------------------
// Trends
// ---------------------------------------------------------------------------

func TestTrends_DailyUsesHourBuckets(t *testing.T) {
	start := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24*time.Hour - time.Second)
	reviews := []domain.Review{
		{Rating: 5, PublishedAt: start.Add(30 * time.Minute)},
		{Rating: 3, PublishedAt: start.Add(45 * time.Minute)},
		{Rating: 1, PublishedAt: start.Add(5 * time.Hour)},
	}

	rating, volume := Trends(domain.PeriodDaily, start, end, reviews)

	require.Len(t, volume, 24)
	assert.Equal(t, 2.0, volume[0].Value)
	assert.Equal(t, 1.0, volume[5].Value)
	assert.Equal(t, 0.0, volume[1].Value)

	require.Len(t, rating, 2)
	assert.Equal(t, start, rating[0].Timestamp)
	assert.Equal(t, 4.0, rating[0].Value)
	assert.Equal(t, start.Add(5*time.Hour), rating[1].Timestamp)
	assert.Equal(t, 1.0, rating[1].Value)
}

func TestTrends_BucketWidthPerPeriod(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	_, weekly := Trends(domain.PeriodWeekly, start, start.AddDate(0, 0, 6), nil)
	assert.Len(t, weekly, 7)

	_, quarterly := Trends(domain.PeriodQuarterly, start, start.AddDate(0, 3, 0).Add(-time.Second), nil)
	assert.Len(t, quarterly, 13)

	_, yearly := Trends(domain.PeriodYearly, start, start.AddDate(1, 0, 0).Add(-time.Second), nil)
	assert.Len(t, yearly, 12)
}

func TestTrends_WideWindowFallsBackToWiderBuckets(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	_, volume := Trends(domain.PeriodDaily, start, start.AddDate(2, 0, 0), nil)
	assert.LessOrEqual(t, len(volume), MaxTrendBuckets)
	assert.NotEmpty(t, volume)
}

func TestTrends_MonthEndStartKeepsEveryMonth(t *testing.T) {
	start := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	feb := domain.Review{Rating: 4, PublishedAt: time.Date(2024, 2, 15, 9, 0, 0, 0, time.UTC)}

	rating, volume := Trends(domain.PeriodYearly, start, end, []domain.Review{feb})

	require.Len(t, volume, 12)
	for i, p := range volume {
		assert.Equal(t, time.Date(2024, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC), p.Timestamp)
	}
	assert.Equal(t, 0.0, volume[0].Value)
	assert.Equal(t, 1.0, volume[1].Value)

	require.Len(t, rating, 1)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), rating[0].Timestamp)
	assert.Equal(t, 4.0, rating[0].Value)
}

func TestTrends_DecadesWidenToQuarters(t *testing.T) {
	start := time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	late := domain.Review{Rating: 2, PublishedAt: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)}

	rating, volume := Trends(domain.PeriodYearly, start, end, []domain.Review{late})

	require.NotEmpty(t, volume)
	assert.LessOrEqual(t, len(volume), MaxTrendBuckets)
	assert.Equal(t, start, volume[0].Timestamp)
	assert.Equal(t, end, volume[len(volume)-1].Timestamp)

	require.Len(t, rating, 1)
	assert.Equal(t, time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC), rating[0].Timestamp)
}

func TestTrends_CenturiesUseMultiYearBuckets(t *testing.T) {
	start := time.Date(1000, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2999, 12, 31, 0, 0, 0, 0, time.UTC)
	last := domain.Review{Rating: 5, PublishedAt: end}

	rating, volume := Trends(domain.PeriodDaily, start, end, []domain.Review{last})

	assert.LessOrEqual(t, len(volume), MaxTrendBuckets)
	lastStart := volume[len(volume)-1].Timestamp
	assert.False(t, lastStart.After(end))
	assert.True(t, lastStart.AddDate(5, 0, 0).After(end), "last bucket must reach end")

	require.Len(t, rating, 1)
	assert.Equal(t, lastStart, rating[0].Timestamp)
}

func TestSeries_IndexOutsideBuckets(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	s := buckets(domain.PeriodWeekly, start, start.AddDate(0, 0, 2))

	require.Len(t, s.starts, 3)
	assert.Equal(t, 2, s.index(start.AddDate(0, 0, 2).Add(time.Hour)))
	assert.Equal(t, -1, s.index(start.AddDate(0, 0, 3)))
	assert.Equal(t, -1, s.index(start.Add(-time.Second)))
}

func TestTrends_InvertedWindow(t *testing.T) {
	rating, volume := Trends(domain.PeriodMonthly, windowEnd, windowStart, nil)
	assert.Empty(t, rating)
	assert.Empty(t, volume)
}

// ---------------------------------------------------------------------------
// Competitive comparison
// ---------------------------------------------------------------------------

func TestCompare_Rank(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	n := func(v int) *int { return &v }
	competitors := []domain.Competitor{
		{ID: "c1", Name: "Bean There", AverageRating: f(4.6), TotalReviews: n(210)},
		{ID: "c2", Name: "Grind House", AverageRating: f(3.9)},
		{ID: "c3", Name: "No Data"},
	}

	cmp := Compare(4.2, competitors)
	require.NotNil(t, cmp)
	assert.Equal(t, 2, cmp.Rank)
	assert.Equal(t, 3, cmp.Total)
	require.Len(t, cmp.Competitors, 2)
	assert.Equal(t, "c1", cmp.Competitors[0].ID)
	assert.Equal(t, 210, cmp.Competitors[0].TotalReviews)
}

func TestCompare_TieSharesRank(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	cmp := Compare(4.0, []domain.Competitor{{ID: "c1", AverageRating: f(4.0)}})
	require.NotNil(t, cmp)
	assert.Equal(t, 1, cmp.Rank)
}

func TestCompare_NoCachedRatings(t *testing.T) {
	assert.Nil(t, Compare(4.0, []domain.Competitor{{ID: "c1"}}))
	assert.Nil(t, Compare(4.0, nil))
}
