// Package search maintains a full-text index of reviews.
package search

import (
	"context"
	"time"

	"github.com/utafrali/reputation/internal/domain"
)

// Indexer keeps the review index in step with the store and answers
// full-text queries.
type Indexer interface {
	IndexReview(ctx context.Context, r *domain.Review) error
	DeleteReview(ctx context.Context, id string) error
	Search(ctx context.Context, q Query) (*Result, error)
	Ping(ctx context.Context) error
}

// Query is a full-text query with optional structured filters.
type Query struct {
	Text      string
	SourceID  string
	Status    string
	Sentiment string
	MinRating int
	MaxRating int
	Page      int
	PerPage   int
}

// Result lists matching review IDs by descending relevance.
type Result struct {
	IDs     []string `json:"ids"`
	Total   int      `json:"total"`
	Page    int      `json:"page"`
	PerPage int      `json:"per_page"`
	TookMs  int64    `json:"took_ms"`
}

// Document is the indexed shape of a review.
type Document struct {
	ID             string    `json:"id"`
	SourceID       string    `json:"source_id"`
	AuthorName     string    `json:"author_name"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	Rating         int       `json:"rating"`
	Status         string    `json:"status"`
	Sentiment      string    `json:"sentiment"`
	SentimentScore float64   `json:"sentiment_score"`
	Tags           []string  `json:"tags"`
	Keywords       []string  `json:"keywords"`
	PublishedAt    time.Time `json:"published_at"`
}

// NewDocument projects a review onto its index document.
func NewDocument(r *domain.Review) Document {
	keywords := make([]string, 0, len(r.Keywords))
	for _, kw := range r.Keywords {
		keywords = append(keywords, kw.Word)
	}
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	return Document{
		ID:             r.ID,
		SourceID:       r.SourceID,
		AuthorName:     r.AuthorName,
		Title:          r.Title,
		Content:        r.Content,
		Rating:         r.Rating,
		Status:         r.Status,
		Sentiment:      domain.ClassifySentiment(r.SentimentScore()),
		SentimentScore: r.SentimentScore(),
		Tags:           tags,
		Keywords:       keywords,
		PublishedAt:    r.PublishedAt,
	}
}

func (q Query) pagination() (page, perPage int) {
	page, perPage = q.Page, q.PerPage
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}
	return page, perPage
}
