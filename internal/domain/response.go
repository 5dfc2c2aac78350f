package domain

import (
	"slices"
	"time"
)

// Response status constants.
const (
	ResponseStatusDraft     = "draft"
	ResponseStatusPublished = "published"
)

// ReviewResponse is a reply written to a review.
type ReviewResponse struct {
	ID         string    `json:"id"`
	ReviewID   string    `json:"review_id"`
	Content    string    `json:"content"`
	AuthorID   string    `json:"author_id,omitempty"`
	TemplateID string    `json:"template_id,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ApplyDefaults sets a draft status when none is given.
func (r *ReviewResponse) ApplyDefaults() {
	if r.Status == "" {
		r.Status = ResponseStatusDraft
	}
}

// ResponsePatch is a shallow partial update of a ReviewResponse.
type ResponsePatch struct {
	Content   *string
	Status    *string
	UpdatedAt *time.Time
}

// Apply merges the patch into r.
func (p ResponsePatch) Apply(r *ReviewResponse) {
	setIf(&r.Content, p.Content)
	setIf(&r.Status, p.Status)
	setIf(&r.UpdatedAt, p.UpdatedAt)
}

// IsValidResponseStatus checks whether s is a response status.
func IsValidResponseStatus(s string) bool {
	return slices.Contains([]string{ResponseStatusDraft, ResponseStatusPublished}, s)
}
