package service

import (
	"context"
	"fmt"

	"github.com/utafrali/reputation/internal/domain"
)

// ---------------------------------------------------------------------------
// Sources
// ---------------------------------------------------------------------------

func (s *ReputationService) GetSources(ctx context.Context) ([]domain.ReviewSource, error) {
	sources, err := s.store.Sources.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("get sources: %w", err)
	}
	return sources, nil
}

func (s *ReputationService) GetSource(ctx context.Context, id string) (*domain.ReviewSource, bool, error) {
	src, found, err := s.store.Sources.Get(ctx, id)
	if err != nil {
		return nil, false, fmt.Errorf("get source: %w", err)
	}
	return src, found, nil
}

func (s *ReputationService) AddSource(ctx context.Context, src *domain.ReviewSource) (*domain.ReviewSource, error) {
	if err := s.store.Sources.Add(ctx, src); err != nil {
		return nil, fmt.Errorf("add source: %w", err)
	}
	return src, nil
}

func (s *ReputationService) UpdateSource(ctx context.Context, id string, patch domain.SourcePatch) (*domain.ReviewSource, bool, error) {
	src, found, err := s.store.Sources.Update(ctx, id, patch)
	if err != nil {
		return nil, false, fmt.Errorf("update source: %w", err)
	}
	return src, found, nil
}

// DeleteSource removes a source. Reviews referencing it are kept.
func (s *ReputationService) DeleteSource(ctx context.Context, id string) (bool, error) {
	deleted, err := s.store.Sources.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete source: %w", err)
	}
	return deleted, nil
}

// ---------------------------------------------------------------------------
// Competitors
// ---------------------------------------------------------------------------

func (s *ReputationService) GetCompetitors(ctx context.Context) ([]domain.Competitor, error) {
	competitors, err := s.store.Competitors.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("get competitors: %w", err)
	}
	return competitors, nil
}

func (s *ReputationService) GetCompetitor(ctx context.Context, id string) (*domain.Competitor, bool, error) {
	c, found, err := s.store.Competitors.Get(ctx, id)
	if err != nil {
		return nil, false, fmt.Errorf("get competitor: %w", err)
	}
	return c, found, nil
}

func (s *ReputationService) AddCompetitor(ctx context.Context, c *domain.Competitor) (*domain.Competitor, error) {
	if err := s.store.Competitors.Add(ctx, c); err != nil {
		return nil, fmt.Errorf("add competitor: %w", err)
	}
	return c, nil
}

func (s *ReputationService) UpdateCompetitor(ctx context.Context, id string, patch domain.CompetitorPatch) (*domain.Competitor, bool, error) {
	c, found, err := s.store.Competitors.Update(ctx, id, patch)
	if err != nil {
		return nil, false, fmt.Errorf("update competitor: %w", err)
	}
	return c, found, nil
}

func (s *ReputationService) DeleteCompetitor(ctx context.Context, id string) (bool, error) {
	deleted, err := s.store.Competitors.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete competitor: %w", err)
	}
	return deleted, nil
}

// ---------------------------------------------------------------------------
// Templates
// ---------------------------------------------------------------------------

func (s *ReputationService) GetTemplates(ctx context.Context) ([]domain.ResponseTemplate, error) {
	templates, err := s.store.Templates.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("get templates: %w", err)
	}
	return templates, nil
}

func (s *ReputationService) GetTemplate(ctx context.Context, id string) (*domain.ResponseTemplate, bool, error) {
	t, found, err := s.store.Templates.Get(ctx, id)
	if err != nil {
		return nil, false, fmt.Errorf("get template: %w", err)
	}
	return t, found, nil
}

func (s *ReputationService) AddTemplate(ctx context.Context, t *domain.ResponseTemplate) (*domain.ResponseTemplate, error) {
	if err := s.store.Templates.Add(ctx, t); err != nil {
		return nil, fmt.Errorf("add template: %w", err)
	}
	return t, nil
}

func (s *ReputationService) UpdateTemplate(ctx context.Context, id string, patch domain.TemplatePatch) (*domain.ResponseTemplate, bool, error) {
	t, found, err := s.store.Templates.Update(ctx, id, patch)
	if err != nil {
		return nil, false, fmt.Errorf("update template: %w", err)
	}
	return t, found, nil
}

func (s *ReputationService) DeleteTemplate(ctx context.Context, id string) (bool, error) {
	deleted, err := s.store.Templates.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete template: %w", err)
	}
	return deleted, nil
}

// RenderTemplate substitutes name into the template without recording a
// use.
func (s *ReputationService) RenderTemplate(ctx context.Context, id, name string) (string, bool, error) {
	t, found, err := s.GetTemplate(ctx, id)
	if err != nil || !found {
		return "", found, err
	}
	return t.Render(name), true, nil
}
