package domain

import (
	"slices"
	"strings"
	"time"
)

// ReviewFilter narrows a review listing. Nil fields and empty Tags or
// Search impose no constraint; the remaining fields are ANDed.
type ReviewFilter struct {
	SourceID    *string
	MinRating   *int
	MaxRating   *int
	Status      *string
	StartDate   *time.Time
	EndDate     *time.Time
	Sentiment   *string
	HasResponse *bool
	Search      *string
	Tags        []string
	AssignedTo  *string
}

// Matches reports whether r satisfies every set constraint. Date bounds
// are inclusive on PublishedAt.
func (f ReviewFilter) Matches(r *Review) bool {
	if f.SourceID != nil && r.SourceID != *f.SourceID {
		return false
	}
	if f.MinRating != nil && r.Rating < *f.MinRating {
		return false
	}
	if f.MaxRating != nil && r.Rating > *f.MaxRating {
		return false
	}
	if f.Status != nil && r.Status != *f.Status {
		return false
	}
	if f.StartDate != nil && r.PublishedAt.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && r.PublishedAt.After(*f.EndDate) {
		return false
	}
	if f.Sentiment != nil && ClassifySentiment(r.SentimentScore()) != *f.Sentiment {
		return false
	}
	if f.HasResponse != nil && r.HasResponse() != *f.HasResponse {
		return false
	}
	if f.Search != nil && *f.Search != "" && !matchesSearch(r, *f.Search) {
		return false
	}
	if len(f.Tags) > 0 && !slices.ContainsFunc(r.Tags, func(t string) bool { return slices.Contains(f.Tags, t) }) {
		return false
	}
	if f.AssignedTo != nil && r.AssignedTo != *f.AssignedTo {
		return false
	}
	return true
}

func matchesSearch(r *Review, term string) bool {
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(r.Content), term) ||
		strings.Contains(strings.ToLower(r.AuthorName), term)
}

// InPeriod returns a filter selecting reviews published in [start, end].
func InPeriod(start, end time.Time) ReviewFilter {
	return ReviewFilter{StartDate: &start, EndDate: &end}
}
