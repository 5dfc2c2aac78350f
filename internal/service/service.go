// Package service is the facade the transport layers talk to. It forwards
// to the repositories unchanged; indexing, caching and domain events are
// side channels whose failures are logged and never returned.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/utafrali/reputation/internal/domain"
	"github.com/utafrali/reputation/internal/repository"
	"github.com/utafrali/reputation/internal/search"
	"github.com/utafrali/reputation/internal/sentiment"
	"github.com/utafrali/reputation/pkg/logger"
)

var (
	reviewsAdded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reputation_reviews_added_total",
		Help: "Total number of reviews added",
	})

	responsesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reputation_responses_created_total",
		Help: "Total number of review responses created",
	}, []string{"from_template"})

	metricsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reputation_metrics_generated_total",
		Help: "Total number of metrics records generated",
	}, []string{"period"})

	sideEffectFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reputation_side_effect_failures_total",
		Help: "Failures of indexing, caching or event publishing",
	}, []string{"channel"})
)

// EventPublisher emits domain events. *event.Producer implements it.
type EventPublisher interface {
	PublishReviewCreated(ctx context.Context, r *domain.Review) error
	PublishReviewUpdated(ctx context.Context, r *domain.Review) error
	PublishReviewDeleted(ctx context.Context, id string) error
	PublishResponseCreated(ctx context.Context, r *domain.ReviewResponse) error
	PublishMetricsGenerated(ctx context.Context, m *domain.ReputationMetrics) error
}

// MetricsCache caches metrics records by ID.
type MetricsCache interface {
	Get(ctx context.Context, id string) (*domain.ReputationMetrics, bool, error)
	Set(ctx context.Context, m *domain.ReputationMetrics) error
}

// Dependencies wires a ReputationService. Store and Logger are required;
// a nil Analyzer selects the lexicon analyzer and the remaining fields are
// optional side channels.
type Dependencies struct {
	Store    repository.Store
	Analyzer sentiment.Analyzer
	Events   EventPublisher
	Search   search.Indexer
	Cache    MetricsCache
	Logger   *slog.Logger
	Now      func() time.Time
}

// ReputationService exposes every reputation operation.
type ReputationService struct {
	store    repository.Store
	analyzer sentiment.Analyzer
	events   EventPublisher
	search   search.Indexer
	cache    MetricsCache
	logger   *slog.Logger
	now      func() time.Time
}

// NewReputationService creates the facade over deps.
func NewReputationService(deps Dependencies) *ReputationService {
	s := &ReputationService{
		store:    deps.Store,
		analyzer: deps.Analyzer,
		events:   deps.Events,
		search:   deps.Search,
		cache:    deps.Cache,
		logger:   deps.Logger,
		now:      deps.Now,
	}
	if s.analyzer == nil {
		s.analyzer = sentiment.NewLexiconAnalyzer()
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	return s
}

// sideEffectFailed logs a failed side channel. The operation that triggered
// it still succeeds.
func (s *ReputationService) sideEffectFailed(ctx context.Context, channel, msg string, err error, attrs ...any) {
	sideEffectFailures.WithLabelValues(channel).Inc()
	attrs = append(attrs, slog.String("error", err.Error()))
	logger.WithContext(ctx, s.logger).WarnContext(ctx, msg, attrs...)
}

func (s *ReputationService) indexReview(ctx context.Context, r *domain.Review) {
	if s.search == nil {
		return
	}
	if err := s.search.IndexReview(ctx, r); err != nil {
		s.sideEffectFailed(ctx, "search", "failed to index review", err, slog.String("review_id", r.ID))
	}
}

func (s *ReputationService) publish(ctx context.Context, what, id string, fn func(EventPublisher) error) {
	if s.events == nil {
		return
	}
	if err := fn(s.events); err != nil {
		s.sideEffectFailed(ctx, "events", "failed to publish "+what+" event", err, slog.String("aggregate_id", id))
	}
}
