// Package repository declares the store contracts shared by the memory and
// postgres backends.
//
// Absence is not an error: Get and Update report it through their bool
// result and Delete through its bool result. The error result is reserved
// for backend failures.
package repository

import (
	"context"

	"github.com/utafrali/reputation/internal/domain"
)

// ReviewRepository stores reviews and answers filtered listings.
type ReviewRepository interface {
	// Add assigns an ID and defaults to r, stores it and leaves the stored
	// state in r.
	Add(ctx context.Context, r *domain.Review) error

	Get(ctx context.Context, id string) (*domain.Review, bool, error)

	// List returns every review in insertion order.
	List(ctx context.Context) ([]domain.Review, error)

	// Find returns the reviews matching filter, in insertion order.
	Find(ctx context.Context, filter domain.ReviewFilter) ([]domain.Review, error)

	Update(ctx context.Context, id string, patch domain.ReviewPatch) (*domain.Review, bool, error)

	Delete(ctx context.Context, id string) (bool, error)
}

// SourceRepository stores review sources.
type SourceRepository interface {
	Add(ctx context.Context, s *domain.ReviewSource) error
	Get(ctx context.Context, id string) (*domain.ReviewSource, bool, error)
	List(ctx context.Context) ([]domain.ReviewSource, error)
	Update(ctx context.Context, id string, patch domain.SourcePatch) (*domain.ReviewSource, bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// CompetitorRepository stores tracked competitors.
type CompetitorRepository interface {
	Add(ctx context.Context, c *domain.Competitor) error
	Get(ctx context.Context, id string) (*domain.Competitor, bool, error)
	List(ctx context.Context) ([]domain.Competitor, error)
	Update(ctx context.Context, id string, patch domain.CompetitorPatch) (*domain.Competitor, bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// TemplateRepository stores response templates.
type TemplateRepository interface {
	Add(ctx context.Context, t *domain.ResponseTemplate) error
	Get(ctx context.Context, id string) (*domain.ResponseTemplate, bool, error)
	List(ctx context.Context) ([]domain.ResponseTemplate, error)
	Update(ctx context.Context, id string, patch domain.TemplatePatch) (*domain.ResponseTemplate, bool, error)
	Delete(ctx context.Context, id string) (bool, error)

	// IncrementUsage bumps UsageCount by one and reports whether the
	// template exists.
	IncrementUsage(ctx context.Context, id string) (bool, error)
}

// ResponseRepository stores review responses.
type ResponseRepository interface {
	Add(ctx context.Context, r *domain.ReviewResponse) error
	Get(ctx context.Context, id string) (*domain.ReviewResponse, bool, error)
	List(ctx context.Context) ([]domain.ReviewResponse, error)
	ListByReview(ctx context.Context, reviewID string) ([]domain.ReviewResponse, error)
	Update(ctx context.Context, id string, patch domain.ResponsePatch) (*domain.ReviewResponse, bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// MetricsRepository is the append-only metrics history.
type MetricsRepository interface {
	Append(ctx context.Context, m *domain.ReputationMetrics) error
	Get(ctx context.Context, id string) (*domain.ReputationMetrics, bool, error)
	List(ctx context.Context) ([]domain.ReputationMetrics, error)
}

// Store bundles every collection behind one backend.
type Store struct {
	Reviews     ReviewRepository
	Sources     SourceRepository
	Competitors CompetitorRepository
	Templates   TemplateRepository
	Responses   ResponseRepository
	Metrics     MetricsRepository
}
