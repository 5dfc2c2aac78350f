package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/utafrali/reputation/internal/domain"
)

// CompetitorRepository implements repository.CompetitorRepository in memory.
type CompetitorRepository struct {
	items *collection[domain.Competitor]
}

// NewCompetitorRepository creates an empty competitor collection.
func NewCompetitorRepository() *CompetitorRepository {
	return &CompetitorRepository{
		items: newCollection(func(c *domain.Competitor) string { return c.ID }, domain.Competitor.Clone),
	}
}

func (s *CompetitorRepository) Add(_ context.Context, c *domain.Competitor) error {
	c.ID = uuid.NewString()
	c.ApplyDefaults()
	s.items.add(*c)
	return nil
}

func (s *CompetitorRepository) Get(_ context.Context, id string) (*domain.Competitor, bool, error) {
	c, ok := s.items.get(id)
	return c, ok, nil
}

func (s *CompetitorRepository) List(_ context.Context) ([]domain.Competitor, error) {
	return s.items.list(nil), nil
}

func (s *CompetitorRepository) Update(_ context.Context, id string, patch domain.CompetitorPatch) (*domain.Competitor, bool, error) {
	c, ok := s.items.update(id, patch.Apply)
	return c, ok, nil
}

func (s *CompetitorRepository) Delete(_ context.Context, id string) (bool, error) {
	return s.items.delete(id), nil
}
