package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/utafrali/reputation/internal/aggregate"
	"github.com/utafrali/reputation/internal/domain"
	"github.com/utafrali/reputation/pkg/logger"
)

// GenerateMetrics computes the metrics for [start, end] and appends them
// to the history.
func (s *ReputationService) GenerateMetrics(ctx context.Context, period string, start, end time.Time) (*domain.ReputationMetrics, error) {
	reviews, err := s.store.Reviews.Find(ctx, domain.InPeriod(start, end))
	if err != nil {
		return nil, fmt.Errorf("generate metrics: load reviews: %w", err)
	}
	responses, err := s.store.Responses.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate metrics: load responses: %w", err)
	}
	competitors, err := s.store.Competitors.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate metrics: load competitors: %w", err)
	}

	m := aggregate.Generate(period, start, end, aggregate.Snapshot{
		Reviews:     reviews,
		Responses:   responses,
		Competitors: competitors,
	}, s.now())

	if err := s.store.Metrics.Append(ctx, &m); err != nil {
		return nil, fmt.Errorf("generate metrics: %w", err)
	}
	metricsGenerated.WithLabelValues(period).Inc()

	if s.cache != nil {
		if err := s.cache.Set(ctx, &m); err != nil {
			s.sideEffectFailed(ctx, "cache", "failed to cache metrics", err, slog.String("metrics_id", m.ID))
		}
	}
	s.publish(ctx, "metrics.generated", m.ID, func(p EventPublisher) error { return p.PublishMetricsGenerated(ctx, &m) })

	logger.WithContext(ctx, s.logger).InfoContext(ctx, "metrics generated",
		slog.String("metrics_id", m.ID),
		slog.String("period", period),
		slog.Int("total_reviews", m.Metrics.TotalReviews),
	)
	return &m, nil
}

// GetMetrics retrieves a metrics record, reading through the cache.
func (s *ReputationService) GetMetrics(ctx context.Context, id string) (*domain.ReputationMetrics, bool, error) {
	if s.cache != nil {
		m, hit, err := s.cache.Get(ctx, id)
		if err != nil {
			s.sideEffectFailed(ctx, "cache", "metrics cache read failed", err, slog.String("metrics_id", id))
		} else if hit {
			return m, true, nil
		}
	}

	m, found, err := s.store.Metrics.Get(ctx, id)
	if err != nil {
		return nil, false, fmt.Errorf("get metrics: %w", err)
	}
	if !found {
		return nil, false, nil
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, m); err != nil {
			s.sideEffectFailed(ctx, "cache", "failed to cache metrics", err, slog.String("metrics_id", id))
		}
	}
	return m, true, nil
}

// GetAllMetrics returns the metrics history in generation order.
func (s *ReputationService) GetAllMetrics(ctx context.Context) ([]domain.ReputationMetrics, error) {
	all, err := s.store.Metrics.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("get all metrics: %w", err)
	}
	return all, nil
}
