package domain

import (
	"slices"
	"time"
)

// Competitor is a tracked competing business. The cached aggregates are
// filled in by whoever last looked the competitor up.
type Competitor struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Sources       []CompetitorSource `json:"sources"`
	AverageRating *float64           `json:"average_rating,omitempty"`
	TotalReviews  *int               `json:"total_reviews,omitempty"`
	LastUpdated   *time.Time         `json:"last_updated,omitempty"`
}

// CompetitorSource points at a competitor's listing on one platform.
type CompetitorSource struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// Clone returns a deep copy.
func (c Competitor) Clone() Competitor {
	c.Sources = slices.Clone(c.Sources)
	if c.AverageRating != nil {
		v := *c.AverageRating
		c.AverageRating = &v
	}
	if c.TotalReviews != nil {
		v := *c.TotalReviews
		c.TotalReviews = &v
	}
	if c.LastUpdated != nil {
		v := *c.LastUpdated
		c.LastUpdated = &v
	}
	return c
}

// ApplyDefaults ensures Sources is never nil.
func (c *Competitor) ApplyDefaults() {
	if c.Sources == nil {
		c.Sources = []CompetitorSource{}
	}
}

// CompetitorPatch is a shallow partial update of a Competitor.
type CompetitorPatch struct {
	Name          *string
	Sources       []CompetitorSource
	AverageRating *float64
	TotalReviews  *int
	LastUpdated   *time.Time
}

// Apply merges the patch into c.
func (p CompetitorPatch) Apply(c *Competitor) {
	setIf(&c.Name, p.Name)
	if p.Sources != nil {
		c.Sources = slices.Clone(p.Sources)
	}
	if p.AverageRating != nil {
		v := *p.AverageRating
		c.AverageRating = &v
	}
	if p.TotalReviews != nil {
		v := *p.TotalReviews
		c.TotalReviews = &v
	}
	if p.LastUpdated != nil {
		v := *p.LastUpdated
		c.LastUpdated = &v
	}
}
