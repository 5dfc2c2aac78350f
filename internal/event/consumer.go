package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/utafrali/reputation/internal/domain"
	pkgkafka "github.com/utafrali/reputation/pkg/kafka"
	"github.com/utafrali/reputation/pkg/validator"
)

// TopicReviewIngested carries reviews pulled from external platforms.
var TopicReviewIngested = pkgkafka.Topic("review", "ingested")

// ConsumerGroupID is the consumer group of the reputation service.
const ConsumerGroupID = "reputation-service"

// ReviewIngestedData is the payload of review.ingested.
type ReviewIngestedData struct {
	SourceID     string    `json:"source_id" validate:"required"`
	AuthorName   string    `json:"author_name" validate:"required,max=255"`
	AuthorID     string    `json:"author_id,omitempty"`
	AuthorAvatar string    `json:"author_avatar,omitempty" validate:"omitempty,url"`
	Rating       int       `json:"rating" validate:"min=1,max=5"`
	Title        string    `json:"title,omitempty" validate:"max=500"`
	Content      string    `json:"content" validate:"required"`
	PublishedAt  time.Time `json:"published_at" validate:"required"`
	Tags         []string  `json:"tags,omitempty"`
}

// ReviewAdder stores an ingested review.
type ReviewAdder interface {
	AddReview(ctx context.Context, r *domain.Review) (*domain.Review, error)
}

// ConsumerHandler turns ingestion events into stored reviews.
type ConsumerHandler struct {
	reviews ReviewAdder
	logger  *slog.Logger
}

// NewConsumerHandler creates a new event consumer handler.
func NewConsumerHandler(reviews ReviewAdder, logger *slog.Logger) *ConsumerHandler {
	return &ConsumerHandler{reviews: reviews, logger: logger}
}

// Handle processes one event. Unknown event types are skipped.
func (h *ConsumerHandler) Handle(ctx context.Context, event *pkgkafka.Event) error {
	if event.EventType != TopicReviewIngested {
		h.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}
	return h.handleReviewIngested(ctx, event)
}

func (h *ConsumerHandler) handleReviewIngested(ctx context.Context, event *pkgkafka.Event) error {
	var data ReviewIngestedData
	if err := event.UnmarshalData(&data); err != nil {
		return err
	}
	if err := validator.Validate(&data); err != nil {
		return fmt.Errorf("invalid review.ingested payload: %w", err)
	}

	stored, err := h.reviews.AddReview(ctx, &domain.Review{
		SourceID:     data.SourceID,
		AuthorName:   data.AuthorName,
		AuthorID:     data.AuthorID,
		AuthorAvatar: data.AuthorAvatar,
		Rating:       data.Rating,
		Title:        data.Title,
		Content:      data.Content,
		PublishedAt:  data.PublishedAt,
		Tags:         data.Tags,
	})
	if err != nil {
		return fmt.Errorf("add ingested review: %w", err)
	}

	h.logger.InfoContext(ctx, "ingested review",
		slog.String("event_id", event.EventID),
		slog.String("review_id", stored.ID),
		slog.String("source_id", stored.SourceID),
	)
	return nil
}

// NewIngestionConsumer creates the review.ingested consumer. Events already
// recorded in idem are skipped and failures end up on the DLQ topic.
func NewIngestionConsumer(brokers []string, handler *ConsumerHandler, idem pkgkafka.IdempotencyStore, logger *slog.Logger) *pkgkafka.Consumer {
	cfg := pkgkafka.ConsumerConfig{
		Brokers:   brokers,
		GroupID:   ConsumerGroupID,
		Topic:     TopicReviewIngested,
		MinBytes:  1,
		MaxBytes:  10e6,
		EnableDLQ: true,
	}
	return pkgkafka.NewConsumer(cfg, pkgkafka.IdempotentHandler(idem, handler.Handle, logger), logger)
}
