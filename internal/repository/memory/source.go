package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/utafrali/reputation/internal/domain"
)

// SourceRepository implements repository.SourceRepository in memory.
type SourceRepository struct {
	items *collection[domain.ReviewSource]
}

// NewSourceRepository creates an empty source collection.
func NewSourceRepository() *SourceRepository {
	return &SourceRepository{
		items: newCollection(func(s *domain.ReviewSource) string { return s.ID }, domain.ReviewSource.Clone),
	}
}

func (s *SourceRepository) Add(_ context.Context, src *domain.ReviewSource) error {
	src.ID = uuid.NewString()
	s.items.add(*src)
	return nil
}

func (s *SourceRepository) Get(_ context.Context, id string) (*domain.ReviewSource, bool, error) {
	src, ok := s.items.get(id)
	return src, ok, nil
}

func (s *SourceRepository) List(_ context.Context) ([]domain.ReviewSource, error) {
	return s.items.list(nil), nil
}

func (s *SourceRepository) Update(_ context.Context, id string, patch domain.SourcePatch) (*domain.ReviewSource, bool, error) {
	src, ok := s.items.update(id, patch.Apply)
	return src, ok, nil
}

func (s *SourceRepository) Delete(_ context.Context, id string) (bool, error) {
	return s.items.delete(id), nil
}
