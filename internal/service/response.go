package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/utafrali/reputation/internal/domain"
	apperrors "github.com/utafrali/reputation/pkg/errors"
	"github.com/utafrali/reputation/pkg/logger"
)

// CreateResponseInput describes a reply to a review. When Content is empty
// the template named by TemplateID is rendered with the reviewer's name.
type CreateResponseInput struct {
	ReviewID   string
	Content    string
	AuthorID   string
	TemplateID string
	Status     string
}

// CreateResponse stores a reply, links it to the review and marks the
// review responded. The bool result is false when the review does not
// exist. When linking or counting template usage fails, the writes already
// made are undone before the error is returned.
func (s *ReputationService) CreateResponse(ctx context.Context, in CreateResponseInput) (*domain.ReviewResponse, bool, error) {
	review, found, err := s.GetReview(ctx, in.ReviewID)
	if err != nil || !found {
		return nil, found, err
	}

	content := in.Content
	if in.TemplateID != "" {
		tmpl, ok, err := s.store.Templates.Get(ctx, in.TemplateID)
		if err != nil {
			return nil, false, fmt.Errorf("create response: load template: %w", err)
		}
		if !ok {
			return nil, false, apperrors.InvalidInput("unknown template " + in.TemplateID)
		}
		if content == "" {
			content = tmpl.Render(review.AuthorName)
		}
	}
	if content == "" {
		return nil, false, apperrors.InvalidInput("response content is required")
	}

	now := s.now()
	resp := &domain.ReviewResponse{
		ReviewID:   review.ID,
		Content:    content,
		AuthorID:   in.AuthorID,
		TemplateID: in.TemplateID,
		Status:     in.Status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.Responses.Add(ctx, resp); err != nil {
		return nil, false, fmt.Errorf("create response: %w", err)
	}

	status := domain.ReviewStatusResponded
	linked, found, err := s.store.Reviews.Update(ctx, review.ID, domain.ReviewPatch{
		ResponseID: &resp.ID,
		Status:     &status,
	})
	if err != nil || !found {
		s.discardResponse(ctx, resp.ID)
		if err != nil {
			return nil, false, fmt.Errorf("create response: link review: %w", err)
		}
		return nil, false, nil
	}

	if in.TemplateID != "" {
		if _, err := s.store.Templates.IncrementUsage(ctx, in.TemplateID); err != nil {
			s.unlinkReview(ctx, review)
			s.discardResponse(ctx, resp.ID)
			return nil, false, fmt.Errorf("create response: template usage: %w", err)
		}
	}
	responsesCreated.WithLabelValues(strconv.FormatBool(in.TemplateID != "")).Inc()

	s.publish(ctx, "response.created", resp.ID, func(p EventPublisher) error { return p.PublishResponseCreated(ctx, resp) })
	s.indexReview(ctx, linked)

	logger.WithContext(ctx, s.logger).InfoContext(ctx, "response created",
		slog.String("response_id", resp.ID),
		slog.String("review_id", review.ID),
		slog.String("template_id", in.TemplateID),
	)
	return resp, true, nil
}

// discardResponse removes a response whose creation could not complete.
func (s *ReputationService) discardResponse(ctx context.Context, id string) {
	if _, err := s.store.Responses.Delete(ctx, id); err != nil {
		logger.WithContext(ctx, s.logger).ErrorContext(ctx, "failed to discard incomplete response",
			slog.String("response_id", id),
			slog.String("error", err.Error()),
		)
	}
}

// unlinkReview restores the link and status prev had before CreateResponse.
func (s *ReputationService) unlinkReview(ctx context.Context, prev *domain.Review) {
	patch := domain.ReviewPatch{ResponseID: &prev.ResponseID, Status: &prev.Status}
	if _, _, err := s.store.Reviews.Update(ctx, prev.ID, patch); err != nil {
		logger.WithContext(ctx, s.logger).ErrorContext(ctx, "failed to restore review link",
			slog.String("review_id", prev.ID),
			slog.String("error", err.Error()),
		)
	}
}

// GetResponse retrieves a response by its ID.
func (s *ReputationService) GetResponse(ctx context.Context, id string) (*domain.ReviewResponse, bool, error) {
	r, found, err := s.store.Responses.Get(ctx, id)
	if err != nil {
		return nil, false, fmt.Errorf("get response: %w", err)
	}
	return r, found, nil
}

// ListResponses returns the responses written to a review, oldest first.
func (s *ReputationService) ListResponses(ctx context.Context, reviewID string) ([]domain.ReviewResponse, error) {
	responses, err := s.store.Responses.ListByReview(ctx, reviewID)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	return responses, nil
}

// UpdateResponse edits a response's content or status.
func (s *ReputationService) UpdateResponse(ctx context.Context, id string, patch domain.ResponsePatch) (*domain.ReviewResponse, bool, error) {
	if patch.UpdatedAt == nil {
		now := s.now()
		patch.UpdatedAt = &now
	}
	r, found, err := s.store.Responses.Update(ctx, id, patch)
	if err != nil {
		return nil, false, fmt.Errorf("update response: %w", err)
	}
	return r, found, nil
}

// DeleteResponse removes a response and unlinks it from its review when
// the review still points at it.
func (s *ReputationService) DeleteResponse(ctx context.Context, id string) (bool, error) {
	resp, found, err := s.store.Responses.Get(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete response: %w", err)
	}
	if !found {
		return false, nil
	}

	deleted, err := s.store.Responses.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete response: %w", err)
	}
	if !deleted {
		return false, nil
	}

	review, ok, err := s.store.Reviews.Get(ctx, resp.ReviewID)
	if err != nil {
		return true, fmt.Errorf("delete response: load review: %w", err)
	}
	if ok && review.ResponseID == id {
		empty := ""
		if _, _, err := s.UpdateReview(ctx, review.ID, domain.ReviewPatch{ResponseID: &empty}); err != nil {
			return true, fmt.Errorf("delete response: unlink review: %w", err)
		}
	}
	return true, nil
}
