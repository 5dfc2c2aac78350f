package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/reputation/internal/domain"
)

// ResponseRepository implements repository.ResponseRepository in memory.
type ResponseRepository struct {
	items *collection[domain.ReviewResponse]
}

// NewResponseRepository creates an empty response collection.
func NewResponseRepository() *ResponseRepository {
	return &ResponseRepository{
		items: newCollection[domain.ReviewResponse](func(r *domain.ReviewResponse) string { return r.ID }, nil),
	}
}

func (s *ResponseRepository) Add(_ context.Context, r *domain.ReviewResponse) error {
	r.ID = uuid.NewString()
	r.ApplyDefaults()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = r.CreatedAt
	}
	s.items.add(*r)
	return nil
}

func (s *ResponseRepository) Get(_ context.Context, id string) (*domain.ReviewResponse, bool, error) {
	r, ok := s.items.get(id)
	return r, ok, nil
}

func (s *ResponseRepository) List(_ context.Context) ([]domain.ReviewResponse, error) {
	return s.items.list(nil), nil
}

func (s *ResponseRepository) ListByReview(_ context.Context, reviewID string) ([]domain.ReviewResponse, error) {
	return s.items.list(func(r *domain.ReviewResponse) bool { return r.ReviewID == reviewID }), nil
}

func (s *ResponseRepository) Update(_ context.Context, id string, patch domain.ResponsePatch) (*domain.ReviewResponse, bool, error) {
	r, ok := s.items.update(id, func(r *domain.ReviewResponse) {
		patch.Apply(r)
		if patch.UpdatedAt == nil {
			r.UpdatedAt = time.Now().UTC()
		}
	})
	return r, ok, nil
}

func (s *ResponseRepository) Delete(_ context.Context, id string) (bool, error) {
	return s.items.delete(id), nil
}
