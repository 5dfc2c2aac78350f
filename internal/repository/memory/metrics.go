package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/utafrali/reputation/internal/domain"
)

// MetricsRepository is an append-only in-memory metrics history.
type MetricsRepository struct {
	items *collection[domain.ReputationMetrics]
}

// NewMetricsRepository creates an empty history.
func NewMetricsRepository() *MetricsRepository {
	return &MetricsRepository{
		items: newCollection(func(m *domain.ReputationMetrics) string { return m.ID }, domain.ReputationMetrics.Clone),
	}
}

// Append stores m under a fresh ID. Earlier records for the same period are
// kept.
func (s *MetricsRepository) Append(_ context.Context, m *domain.ReputationMetrics) error {
	m.ID = uuid.NewString()
	s.items.add(*m)
	return nil
}

func (s *MetricsRepository) Get(_ context.Context, id string) (*domain.ReputationMetrics, bool, error) {
	m, ok := s.items.get(id)
	return m, ok, nil
}

func (s *MetricsRepository) List(_ context.Context) ([]domain.ReputationMetrics, error) {
	return s.items.list(nil), nil
}
