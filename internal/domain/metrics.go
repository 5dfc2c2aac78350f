package domain

import (
	"maps"
	"slices"
	"time"
)

// Aggregation periods.
const (
	PeriodDaily     = "daily"
	PeriodWeekly    = "weekly"
	PeriodMonthly   = "monthly"
	PeriodQuarterly = "quarterly"
	PeriodYearly    = "yearly"
)

// ReputationMetrics is a point-in-time aggregate over the reviews published
// in [StartDate, EndDate]. Records are only ever appended.
type ReputationMetrics struct {
	ID          string                 `json:"id"`
	Period      string                 `json:"period"`
	StartDate   time.Time              `json:"start_date"`
	EndDate     time.Time              `json:"end_date"`
	Metrics     MetricsData            `json:"metrics"`
	Competitive *CompetitiveComparison `json:"competitive_comparison,omitempty"`
	GeneratedAt time.Time              `json:"generated_at"`
}

// MetricsData holds the computed figures. AverageResponseTime is in hours.
type MetricsData struct {
	AverageRating       float64        `json:"average_rating"`
	TotalReviews        int            `json:"total_reviews"`
	ReviewsBySource     map[string]int `json:"reviews_by_source"`
	ReviewsByRating     map[string]int `json:"reviews_by_rating"`
	ResponseRate        float64        `json:"response_rate"`
	AverageResponseTime float64        `json:"average_response_time"`
	SentimentScore      float64        `json:"sentiment_score"`
	TopKeywords         []KeywordCount `json:"top_keywords"`
	RatingTrend         []TrendPoint   `json:"rating_trend"`
	VolumeTrend         []TrendPoint   `json:"volume_trend"`
}

// KeywordCount is a keyword ranked across a snapshot.
type KeywordCount struct {
	Word      string  `json:"word"`
	Count     int     `json:"count"`
	Relevance float64 `json:"relevance"`
}

// TrendPoint is one bucket of a time series, labeled by its start.
type TrendPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// CompetitiveComparison ranks our average rating among tracked competitors.
type CompetitiveComparison struct {
	OurRating   float64              `json:"our_rating"`
	Rank        int                  `json:"rank"`
	Total       int                  `json:"total"`
	Competitors []CompetitorStanding `json:"competitors"`
}

// CompetitorStanding is a competitor's cached figures at generation time.
type CompetitorStanding struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	AverageRating float64 `json:"average_rating"`
	TotalReviews  int     `json:"total_reviews"`
}

// Clone returns a deep copy.
func (m ReputationMetrics) Clone() ReputationMetrics {
	m.Metrics.ReviewsBySource = maps.Clone(m.Metrics.ReviewsBySource)
	m.Metrics.ReviewsByRating = maps.Clone(m.Metrics.ReviewsByRating)
	m.Metrics.TopKeywords = slices.Clone(m.Metrics.TopKeywords)
	m.Metrics.RatingTrend = slices.Clone(m.Metrics.RatingTrend)
	m.Metrics.VolumeTrend = slices.Clone(m.Metrics.VolumeTrend)
	if m.Competitive != nil {
		c := *m.Competitive
		c.Competitors = slices.Clone(c.Competitors)
		m.Competitive = &c
	}
	return m
}

// ValidPeriods returns the set of aggregation periods.
func ValidPeriods() []string {
	return []string{PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodQuarterly, PeriodYearly}
}

// IsValidPeriod checks whether p is an aggregation period.
func IsValidPeriod(p string) bool {
	return slices.Contains(ValidPeriods(), p)
}
