package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/reputation/internal/domain"
	"github.com/utafrali/reputation/internal/search"
	"github.com/utafrali/reputation/internal/sentiment"
	"github.com/utafrali/reputation/pkg/logger"
	"github.com/utafrali/reputation/pkg/pagination"
)

// GetReviews returns the reviews matching filter in insertion order.
func (s *ReputationService) GetReviews(ctx context.Context, filter domain.ReviewFilter) ([]domain.Review, error) {
	reviews, err := s.store.Reviews.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get reviews: %w", err)
	}
	return reviews, nil
}

// GetReview retrieves a review by its ID.
func (s *ReputationService) GetReview(ctx context.Context, id string) (*domain.Review, bool, error) {
	r, found, err := s.store.Reviews.Get(ctx, id)
	if err != nil {
		return nil, false, fmt.Errorf("get review: %w", err)
	}
	return r, found, nil
}

// AddReview stores r and returns it with its ID and defaults.
func (s *ReputationService) AddReview(ctx context.Context, r *domain.Review) (*domain.Review, error) {
	if err := s.store.Reviews.Add(ctx, r); err != nil {
		return nil, fmt.Errorf("add review: %w", err)
	}
	reviewsAdded.Inc()

	s.indexReview(ctx, r)
	s.publish(ctx, "review.created", r.ID, func(p EventPublisher) error { return p.PublishReviewCreated(ctx, r) })

	logger.WithContext(ctx, s.logger).InfoContext(ctx, "review added",
		slog.String("review_id", r.ID),
		slog.String("source_id", r.SourceID),
		slog.Int("rating", r.Rating),
	)
	return r, nil
}

// UpdateReview merges patch into the review. Any status may follow any
// other.
func (s *ReputationService) UpdateReview(ctx context.Context, id string, patch domain.ReviewPatch) (*domain.Review, bool, error) {
	r, found, err := s.store.Reviews.Update(ctx, id, patch)
	if err != nil {
		return nil, false, fmt.Errorf("update review: %w", err)
	}
	if !found {
		return nil, false, nil
	}

	s.indexReview(ctx, r)
	s.publish(ctx, "review.updated", r.ID, func(p EventPublisher) error { return p.PublishReviewUpdated(ctx, r) })
	return r, true, nil
}

// DeleteReview removes a review. Its responses are kept.
func (s *ReputationService) DeleteReview(ctx context.Context, id string) (bool, error) {
	deleted, err := s.store.Reviews.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete review: %w", err)
	}
	if !deleted {
		return false, nil
	}

	if s.search != nil {
		if err := s.search.DeleteReview(ctx, id); err != nil {
			s.sideEffectFailed(ctx, "search", "failed to remove review from index", err, slog.String("review_id", id))
		}
	}
	s.publish(ctx, "review.deleted", id, func(p EventPublisher) error { return p.PublishReviewDeleted(ctx, id) })

	logger.WithContext(ctx, s.logger).InfoContext(ctx, "review deleted", slog.String("review_id", id))
	return true, nil
}

// AnalyzeReview scores the review's text and stores the sentiment and
// keywords on it.
func (s *ReputationService) AnalyzeReview(ctx context.Context, id string) (*domain.Review, bool, error) {
	r, found, err := s.GetReview(ctx, id)
	if err != nil || !found {
		return nil, found, err
	}

	analysis, err := s.analyzer.Analyze(ctx, sentiment.ReviewText(r))
	if err != nil {
		return nil, false, fmt.Errorf("analyze review: %w", err)
	}

	result := analysis.Sentiment
	return s.UpdateReview(ctx, id, domain.ReviewPatch{
		Sentiment: &result,
		Keywords:  analysis.Keywords,
	})
}

// SearchReviews runs a full-text query. Without a search index, or when
// the index fails, it falls back to the store's substring search over
// content and author name.
func (s *ReputationService) SearchReviews(ctx context.Context, q search.Query) (pagination.Result[domain.Review], error) {
	params := pagination.Params{Page: q.Page, PerPage: q.PerPage}
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PerPage < 1 {
		params.PerPage = pagination.DefaultParams().PerPage
	}
	params.Offset = (params.Page - 1) * params.PerPage
	q.Page, q.PerPage = params.Page, params.PerPage

	if s.search != nil {
		res, err := s.search.Search(ctx, q)
		if err == nil {
			return s.loadHits(ctx, res, params)
		}
		s.sideEffectFailed(ctx, "search", "search index query failed, falling back to store", err)
	}

	reviews, err := s.store.Reviews.Find(ctx, fallbackFilter(q))
	if err != nil {
		return pagination.Result[domain.Review]{}, fmt.Errorf("search reviews: %w", err)
	}
	return pagination.Slice(reviews, params), nil
}

// loadHits resolves index hits against the store, dropping IDs the store
// no longer has.
func (s *ReputationService) loadHits(ctx context.Context, res *search.Result, params pagination.Params) (pagination.Result[domain.Review], error) {
	reviews := make([]domain.Review, 0, len(res.IDs))
	for _, id := range res.IDs {
		r, found, err := s.store.Reviews.Get(ctx, id)
		if err != nil {
			return pagination.Result[domain.Review]{}, fmt.Errorf("load search hit: %w", err)
		}
		if found {
			reviews = append(reviews, *r)
		}
	}
	return pagination.NewResult(reviews, res.Total, params), nil
}

func fallbackFilter(q search.Query) domain.ReviewFilter {
	var f domain.ReviewFilter
	if q.Text != "" {
		f.Search = &q.Text
	}
	if q.SourceID != "" {
		f.SourceID = &q.SourceID
	}
	if q.Status != "" {
		f.Status = &q.Status
	}
	if q.Sentiment != "" {
		f.Sentiment = &q.Sentiment
	}
	if q.MinRating > 0 {
		f.MinRating = &q.MinRating
	}
	if q.MaxRating > 0 {
		f.MaxRating = &q.MaxRating
	}
	return f
}
