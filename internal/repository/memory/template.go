package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/utafrali/reputation/internal/domain"
)

// TemplateRepository implements repository.TemplateRepository in memory.
type TemplateRepository struct {
	items *collection[domain.ResponseTemplate]
}

// NewTemplateRepository creates an empty template collection.
func NewTemplateRepository() *TemplateRepository {
	return &TemplateRepository{
		items: newCollection[domain.ResponseTemplate](func(t *domain.ResponseTemplate) string { return t.ID }, nil),
	}
}

func (s *TemplateRepository) Add(_ context.Context, t *domain.ResponseTemplate) error {
	t.ID = uuid.NewString()
	s.items.add(*t)
	return nil
}

func (s *TemplateRepository) Get(_ context.Context, id string) (*domain.ResponseTemplate, bool, error) {
	t, ok := s.items.get(id)
	return t, ok, nil
}

func (s *TemplateRepository) List(_ context.Context) ([]domain.ResponseTemplate, error) {
	return s.items.list(nil), nil
}

func (s *TemplateRepository) Update(_ context.Context, id string, patch domain.TemplatePatch) (*domain.ResponseTemplate, bool, error) {
	t, ok := s.items.update(id, patch.Apply)
	return t, ok, nil
}

func (s *TemplateRepository) Delete(_ context.Context, id string) (bool, error) {
	return s.items.delete(id), nil
}

// IncrementUsage bumps the template's usage count under the write lock.
func (s *TemplateRepository) IncrementUsage(_ context.Context, id string) (bool, error) {
	_, ok := s.items.update(id, func(t *domain.ResponseTemplate) { t.UsageCount++ })
	return ok, nil
}
