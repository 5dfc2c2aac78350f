// Package event publishes reputation domain events and consumes ingested
// reviews from Kafka.
package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/utafrali/reputation/internal/domain"
	pkgkafka "github.com/utafrali/reputation/pkg/kafka"
)

// Topics published by the reputation service.
var (
	TopicReviewCreated    = pkgkafka.Topic("review", "created")
	TopicReviewUpdated    = pkgkafka.Topic("review", "updated")
	TopicReviewDeleted    = pkgkafka.Topic("review", "deleted")
	TopicResponseCreated  = pkgkafka.Topic("response", "created")
	TopicMetricsGenerated = pkgkafka.Topic("metrics", "generated")
)

// Aggregate types.
const (
	AggregateTypeReview   = "review"
	AggregateTypeResponse = "response"
	AggregateTypeMetrics  = "metrics"
)

// SourceReputationService identifies events emitted by this service.
const SourceReputationService = "reputation-service"

// ReviewData is the payload of review.created and review.updated.
type ReviewData struct {
	ID             string    `json:"id"`
	SourceID       string    `json:"source_id"`
	AuthorName     string    `json:"author_name"`
	Rating         int       `json:"rating"`
	Status         string    `json:"status"`
	SentimentScore float64   `json:"sentiment_score"`
	Sentiment      string    `json:"sentiment"`
	HasResponse    bool      `json:"has_response"`
	Tags           []string  `json:"tags,omitempty"`
	AssignedTo     string    `json:"assigned_to,omitempty"`
	PublishedAt    time.Time `json:"published_at"`
}

// ReviewDeletedData is the payload of review.deleted.
type ReviewDeletedData struct {
	ID string `json:"id"`
}

// ResponseCreatedData is the payload of response.created.
type ResponseCreatedData struct {
	ID         string `json:"id"`
	ReviewID   string `json:"review_id"`
	AuthorID   string `json:"author_id,omitempty"`
	TemplateID string `json:"template_id,omitempty"`
	Status     string `json:"status"`
}

// MetricsGeneratedData is the payload of metrics.generated.
type MetricsGeneratedData struct {
	ID             string    `json:"id"`
	Period         string    `json:"period"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	AverageRating  float64   `json:"average_rating"`
	TotalReviews   int       `json:"total_reviews"`
	ResponseRate   float64   `json:"response_rate"`
	SentimentScore float64   `json:"sentiment_score"`
}

// Publisher writes an event to a topic. *pkgkafka.Producer implements it.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes reputation domain events.
type Producer struct {
	publisher Publisher
	logger    *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(publisher Publisher, logger *slog.Logger) *Producer {
	return &Producer{publisher: publisher, logger: logger}
}

func reviewData(r *domain.Review) ReviewData {
	return ReviewData{
		ID:             r.ID,
		SourceID:       r.SourceID,
		AuthorName:     r.AuthorName,
		Rating:         r.Rating,
		Status:         r.Status,
		SentimentScore: r.SentimentScore(),
		Sentiment:      domain.ClassifySentiment(r.SentimentScore()),
		HasResponse:    r.HasResponse(),
		Tags:           r.Tags,
		AssignedTo:     r.AssignedTo,
		PublishedAt:    r.PublishedAt,
	}
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceReputationService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if err := p.publisher.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published domain event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)
	return nil
}

// PublishReviewCreated publishes a review.created event.
func (p *Producer) PublishReviewCreated(ctx context.Context, r *domain.Review) error {
	return p.publish(ctx, TopicReviewCreated, r.ID, AggregateTypeReview, reviewData(r))
}

// PublishReviewUpdated publishes a review.updated event.
func (p *Producer) PublishReviewUpdated(ctx context.Context, r *domain.Review) error {
	return p.publish(ctx, TopicReviewUpdated, r.ID, AggregateTypeReview, reviewData(r))
}

// PublishReviewDeleted publishes a review.deleted event.
func (p *Producer) PublishReviewDeleted(ctx context.Context, id string) error {
	return p.publish(ctx, TopicReviewDeleted, id, AggregateTypeReview, ReviewDeletedData{ID: id})
}

// PublishResponseCreated publishes a response.created event.
func (p *Producer) PublishResponseCreated(ctx context.Context, r *domain.ReviewResponse) error {
	return p.publish(ctx, TopicResponseCreated, r.ID, AggregateTypeResponse, ResponseCreatedData{
		ID:         r.ID,
		ReviewID:   r.ReviewID,
		AuthorID:   r.AuthorID,
		TemplateID: r.TemplateID,
		Status:     r.Status,
	})
}

// PublishMetricsGenerated publishes a metrics.generated event.
func (p *Producer) PublishMetricsGenerated(ctx context.Context, m *domain.ReputationMetrics) error {
	return p.publish(ctx, TopicMetricsGenerated, m.ID, AggregateTypeMetrics, MetricsGeneratedData{
		ID:             m.ID,
		Period:         m.Period,
		StartDate:      m.StartDate,
		EndDate:        m.EndDate,
		AverageRating:  m.Metrics.AverageRating,
		TotalReviews:   m.Metrics.TotalReviews,
		ResponseRate:   m.Metrics.ResponseRate,
		SentimentScore: m.Metrics.SentimentScore,
	})
}
