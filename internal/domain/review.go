package domain

import (
	"maps"
	"slices"
	"time"
)

// Review status constants. Any status may follow any other.
const (
	ReviewStatusNew       = "new"
	ReviewStatusRead      = "read"
	ReviewStatusResponded = "responded"
	ReviewStatusFlagged   = "flagged"
	ReviewStatusArchived  = "archived"
)

// Review is a single customer review ingested from an external source.
// SourceID is not checked against the source collection.
type Review struct {
	ID           string     `json:"id"`
	SourceID     string     `json:"source_id"`
	AuthorName   string     `json:"author_name"`
	AuthorID     string     `json:"author_id,omitempty"`
	AuthorAvatar string     `json:"author_avatar,omitempty"`
	Rating       int        `json:"rating"`
	Title        string     `json:"title,omitempty"`
	Content      string     `json:"content"`
	PublishedAt  time.Time  `json:"published_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
	Status       string     `json:"status"`
	Sentiment    *Sentiment `json:"sentiment,omitempty"`
	Keywords     []Keyword  `json:"keywords"`
	Tags         []string   `json:"tags,omitempty"`
	AssignedTo   string     `json:"assigned_to,omitempty"`
	ResponseID   string     `json:"response_id,omitempty"`
}

// Sentiment is the inferred polarity of a review. Score lies roughly in
// [-1, 1]; Magnitude is non-negative.
type Sentiment struct {
	Score      float64            `json:"score"`
	Magnitude  float64            `json:"magnitude"`
	Categories map[string]float64 `json:"categories,omitempty"`
}

// Keyword is an extracted term with its relevance weight.
type Keyword struct {
	Word      string  `json:"word"`
	Relevance float64 `json:"relevance"`
}

// ApplyDefaults fills the fields a freshly stored review always carries.
func (r *Review) ApplyDefaults() {
	if r.Sentiment == nil {
		r.Sentiment = &Sentiment{}
	}
	if r.Keywords == nil {
		r.Keywords = []Keyword{}
	}
	if r.Status == "" {
		r.Status = ReviewStatusNew
	}
}

// SentimentScore returns the review's score, or 0 when none was computed.
func (r *Review) SentimentScore() float64 {
	if r.Sentiment == nil {
		return 0
	}
	return r.Sentiment.Score
}

// HasResponse reports whether a response is linked to the review.
func (r *Review) HasResponse() bool {
	return r.ResponseID != ""
}

// Clone returns a deep copy.
func (r Review) Clone() Review {
	if r.UpdatedAt != nil {
		t := *r.UpdatedAt
		r.UpdatedAt = &t
	}
	if r.Sentiment != nil {
		s := *r.Sentiment
		s.Categories = maps.Clone(s.Categories)
		r.Sentiment = &s
	}
	r.Keywords = slices.Clone(r.Keywords)
	r.Tags = slices.Clone(r.Tags)
	return r
}

// ReviewPatch is a shallow partial update. Nil fields are left untouched;
// an empty ResponseID or AssignedTo clears the link.
type ReviewPatch struct {
	SourceID     *string
	AuthorName   *string
	AuthorID     *string
	AuthorAvatar *string
	Rating       *int
	Title        *string
	Content      *string
	PublishedAt  *time.Time
	UpdatedAt    *time.Time
	Status       *string
	Sentiment    *Sentiment
	Keywords     []Keyword
	Tags         []string
	AssignedTo   *string
	ResponseID   *string
}

// Apply merges the patch into r.
func (p ReviewPatch) Apply(r *Review) {
	setIf(&r.SourceID, p.SourceID)
	setIf(&r.AuthorName, p.AuthorName)
	setIf(&r.AuthorID, p.AuthorID)
	setIf(&r.AuthorAvatar, p.AuthorAvatar)
	setIf(&r.Rating, p.Rating)
	setIf(&r.Title, p.Title)
	setIf(&r.Content, p.Content)
	setIf(&r.PublishedAt, p.PublishedAt)
	setIf(&r.Status, p.Status)
	setIf(&r.AssignedTo, p.AssignedTo)
	setIf(&r.ResponseID, p.ResponseID)
	if p.UpdatedAt != nil {
		t := *p.UpdatedAt
		r.UpdatedAt = &t
	}
	if p.Sentiment != nil {
		s := *p.Sentiment
		s.Categories = maps.Clone(s.Categories)
		r.Sentiment = &s
	}
	if p.Keywords != nil {
		r.Keywords = slices.Clone(p.Keywords)
	}
	if p.Tags != nil {
		r.Tags = slices.Clone(p.Tags)
	}
}

// ValidReviewStatuses returns the set of valid review statuses.
func ValidReviewStatuses() []string {
	return []string{
		ReviewStatusNew,
		ReviewStatusRead,
		ReviewStatusResponded,
		ReviewStatusFlagged,
		ReviewStatusArchived,
	}
}

// IsValidReviewStatus checks whether s is a valid review status.
func IsValidReviewStatus(s string) bool {
	return slices.Contains(ValidReviewStatuses(), s)
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
