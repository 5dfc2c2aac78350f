package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/utafrali/reputation/internal/domain"
)

// ReviewRepository implements repository.ReviewRepository in memory.
type ReviewRepository struct {
	items *collection[domain.Review]
}

// NewReviewRepository creates an empty review collection.
func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{
		items: newCollection(func(r *domain.Review) string { return r.ID }, domain.Review.Clone),
	}
}

// Add stores r under a fresh ID.
func (s *ReviewRepository) Add(_ context.Context, r *domain.Review) error {
	r.ID = uuid.NewString()
	r.ApplyDefaults()
	s.items.add(*r)
	return nil
}

// Get returns the review with the given ID.
func (s *ReviewRepository) Get(_ context.Context, id string) (*domain.Review, bool, error) {
	r, ok := s.items.get(id)
	return r, ok, nil
}

// List returns every review in insertion order.
func (s *ReviewRepository) List(_ context.Context) ([]domain.Review, error) {
	return s.items.list(nil), nil
}

// Find scans the collection once, keeping reviews that match filter.
func (s *ReviewRepository) Find(_ context.Context, filter domain.ReviewFilter) ([]domain.Review, error) {
	return s.items.list(filter.Matches), nil
}

// Update shallow-merges patch into the stored review. Fields the patch
// leaves nil are untouched.
func (s *ReviewRepository) Update(_ context.Context, id string, patch domain.ReviewPatch) (*domain.Review, bool, error) {
	r, ok := s.items.update(id, patch.Apply)
	return r, ok, nil
}

// Delete removes the review.
func (s *ReviewRepository) Delete(_ context.Context, id string) (bool, error) {
	return s.items.delete(id), nil
}
