package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/utafrali/reputation/internal/domain"
	"github.com/utafrali/reputation/internal/search"
	"github.com/utafrali/reputation/pkg/httputil"
	"github.com/utafrali/reputation/pkg/pagination"
	"github.com/utafrali/reputation/pkg/validator"
)

// --- Request DTOs ---

// CreateReviewRequest is the JSON request body for adding a review.
type CreateReviewRequest struct {
	SourceID     string            `json:"source_id" validate:"required,notblank,max=255"`
	AuthorName   string            `json:"author_name" validate:"required,notblank,max=255"`
	AuthorID     string            `json:"author_id" validate:"max=255"`
	AuthorAvatar string            `json:"author_avatar" validate:"omitempty,url"`
	Rating       int               `json:"rating" validate:"required,gte=1,lte=5"`
	Title        string            `json:"title" validate:"max=500"`
	Content      string            `json:"content" validate:"max=10000"`
	PublishedAt  *time.Time        `json:"published_at"`
	Status       string            `json:"status" validate:"omitempty,oneof=new read responded flagged archived"`
	Sentiment    *domain.Sentiment `json:"sentiment"`
	Keywords     []domain.Keyword  `json:"keywords" validate:"omitempty,dive"`
	Tags         []string          `json:"tags" validate:"omitempty,dive,notblank,max=100"`
	AssignedTo   string            `json:"assigned_to" validate:"max=255"`
}

// UpdateReviewRequest is the JSON request body for patching a review.
type UpdateReviewRequest struct {
	SourceID     *string           `json:"source_id" validate:"omitempty,notblank,max=255"`
	AuthorName   *string           `json:"author_name" validate:"omitempty,notblank,max=255"`
	AuthorID     *string           `json:"author_id" validate:"omitempty,max=255"`
	AuthorAvatar *string           `json:"author_avatar" validate:"omitempty,url"`
	Rating       *int              `json:"rating" validate:"omitempty,gte=1,lte=5"`
	Title        *string           `json:"title" validate:"omitempty,max=500"`
	Content      *string           `json:"content" validate:"omitempty,max=10000"`
	PublishedAt  *time.Time        `json:"published_at"`
	Status       *string           `json:"status" validate:"omitempty,oneof=new read responded flagged archived"`
	Sentiment    *domain.Sentiment `json:"sentiment"`
	Keywords     []domain.Keyword  `json:"keywords"`
	Tags         []string          `json:"tags" validate:"omitempty,dive,notblank,max=100"`
	AssignedTo   *string           `json:"assigned_to" validate:"omitempty,max=255"`
}

func (req UpdateReviewRequest) patch(now time.Time) domain.ReviewPatch {
	return domain.ReviewPatch{
		SourceID:     req.SourceID,
		AuthorName:   req.AuthorName,
		AuthorID:     req.AuthorID,
		AuthorAvatar: req.AuthorAvatar,
		Rating:       req.Rating,
		Title:        req.Title,
		Content:      req.Content,
		PublishedAt:  req.PublishedAt,
		UpdatedAt:    &now,
		Status:       req.Status,
		Sentiment:    req.Sentiment,
		Keywords:     req.Keywords,
		Tags:         req.Tags,
		AssignedTo:   req.AssignedTo,
	}
}

// reviewFilter reads the listing filters from the query string.
func reviewFilter(r *http.Request) (domain.ReviewFilter, error) {
	f := domain.ReviewFilter{
		SourceID:   httputil.QueryString(r, "source_id"),
		Status:     httputil.QueryString(r, "status"),
		Sentiment:  httputil.QueryString(r, "sentiment"),
		Search:     httputil.QueryString(r, "search"),
		AssignedTo: httputil.QueryString(r, "assigned_to"),
		Tags:       httputil.QueryList(r, "tags"),
	}

	var err error
	if f.MinRating, err = httputil.QueryInt(r, "min_rating"); err != nil {
		return f, err
	}
	if f.MaxRating, err = httputil.QueryInt(r, "max_rating"); err != nil {
		return f, err
	}
	if f.StartDate, err = httputil.QueryTime(r, "start_date"); err != nil {
		return f, err
	}
	if f.EndDate, err = httputil.QueryTimeUntil(r, "end_date"); err != nil {
		return f, err
	}
	if f.HasResponse, err = httputil.QueryBool(r, "has_response"); err != nil {
		return f, err
	}
	return f, nil
}

// --- Handlers ---

// ListReviews handles GET /api/v1/reviews
func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	filter, err := reviewFilter(r)
	if err != nil {
		h.writeBadRequest(w, r, err)
		return
	}

	reviews, err := h.svc.GetReviews(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writePage(w, r, reviews)
}

// SearchReviews handles GET /api/v1/reviews/search
func (h *Handler) SearchReviews(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)
	q := search.Query{
		Text:    r.URL.Query().Get("q"),
		Page:    params.Page,
		PerPage: params.PerPage,
	}
	if v := httputil.QueryString(r, "source_id"); v != nil {
		q.SourceID = *v
	}
	if v := httputil.QueryString(r, "status"); v != nil {
		q.Status = *v
	}
	if v := httputil.QueryString(r, "sentiment"); v != nil {
		q.Sentiment = *v
	}
	if v, err := httputil.QueryInt(r, "min_rating"); err != nil {
		h.writeBadRequest(w, r, err)
		return
	} else if v != nil {
		q.MinRating = *v
	}
	if v, err := httputil.QueryInt(r, "max_rating"); err != nil {
		h.writeBadRequest(w, r, err)
		return
	} else if v != nil {
		q.MaxRating = *v
	}

	res, err := h.svc.SearchReviews(r.Context(), q)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteData(w, http.StatusOK, res)
}

// GetReview handles GET /api/v1/reviews/{id}
func (h *Handler) GetReview(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	review, found, err := h.svc.GetReview(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !found {
		h.writeNotFound(w, r, "review", id)
		return
	}

	httputil.WriteData(w, http.StatusOK, review)
}

// CreateReview handles POST /api/v1/reviews
func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	var req CreateReviewRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	review := &domain.Review{
		SourceID:     req.SourceID,
		AuthorName:   req.AuthorName,
		AuthorID:     req.AuthorID,
		AuthorAvatar: req.AuthorAvatar,
		Rating:       req.Rating,
		Title:        req.Title,
		Content:      req.Content,
		Status:       req.Status,
		Sentiment:    req.Sentiment,
		Keywords:     req.Keywords,
		Tags:         req.Tags,
		AssignedTo:   req.AssignedTo,
	}
	if req.PublishedAt != nil {
		review.PublishedAt = req.PublishedAt.UTC()
	} else {
		review.PublishedAt = time.Now().UTC()
	}

	created, err := h.svc.AddReview(r.Context(), review)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteData(w, http.StatusCreated, created)
}

// UpdateReview handles PATCH /api/v1/reviews/{id}
func (h *Handler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)

	var req UpdateReviewRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	review, found, err := h.svc.UpdateReview(r.Context(), id, req.patch(time.Now().UTC()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !found {
		h.writeNotFound(w, r, "review", id)
		return
	}

	httputil.WriteData(w, http.StatusOK, review)
}

// DeleteReview handles DELETE /api/v1/reviews/{id}
func (h *Handler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	deleted, err := h.svc.DeleteReview(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !deleted {
		h.writeNotFound(w, r, "review", id)
		return
	}

	writeDeleted(w, id)
}

// AnalyzeReview handles POST /api/v1/reviews/{id}/analyze
func (h *Handler) AnalyzeReview(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	review, found, err := h.svc.AnalyzeReview(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !found {
		h.writeNotFound(w, r, "review", id)
		return
	}

	h.logger.InfoContext(r.Context(), "review analyzed",
		slog.String("review_id", id),
		slog.Float64("score", review.SentimentScore()),
	)

	httputil.WriteData(w, http.StatusOK, review)
}
