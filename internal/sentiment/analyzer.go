// Package sentiment scores review text and extracts keywords.
package sentiment

import (
	"context"

	"github.com/utafrali/reputation/internal/domain"
)

// Analysis is the result of scoring one piece of text.
type Analysis struct {
	Sentiment domain.Sentiment `json:"sentiment"`
	Keywords  []domain.Keyword `json:"keywords"`
}

// Analyzer scores text. Implementations must be safe for concurrent use.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (*Analysis, error)
}

// ReviewText is the text analyzed for a review.
func ReviewText(r *domain.Review) string {
	if r.Title == "" {
		return r.Content
	}
	return r.Title + ". " + r.Content
}
