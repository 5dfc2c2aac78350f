package domain

import "slices"

// Sentiment classes used by filters and templates.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// Scores strictly beyond these thresholds are positive or negative.
const (
	PositiveThreshold = 0.1
	NegativeThreshold = -0.1
)

// ClassifySentiment maps a score to its class. The thresholds themselves
// are neutral.
func ClassifySentiment(score float64) string {
	switch {
	case score > PositiveThreshold:
		return SentimentPositive
	case score < NegativeThreshold:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// ValidSentiments returns the set of sentiment classes.
func ValidSentiments() []string {
	return []string{SentimentPositive, SentimentNeutral, SentimentNegative}
}

// IsValidSentiment checks whether s is a sentiment class.
func IsValidSentiment(s string) bool {
	return slices.Contains(ValidSentiments(), s)
}
