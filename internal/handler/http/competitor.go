package http

import (
	"net/http"
	"time"

	"github.com/utafrali/reputation/internal/domain"
	"github.com/utafrali/reputation/pkg/httputil"
	"github.com/utafrali/reputation/pkg/validator"
)

// CompetitorSourceRequest is one platform listing of a competitor.
type CompetitorSourceRequest struct {
	Type string `json:"type" validate:"required,oneof=google yelp facebook tripadvisor trustpilot custom"`
	URL  string `json:"url" validate:"required,url"`
}

// CreateCompetitorRequest is the JSON request body for tracking a competitor.
type CreateCompetitorRequest struct {
	Name          string                    `json:"name" validate:"required,notblank,max=255"`
	Sources       []CompetitorSourceRequest `json:"sources" validate:"omitempty,dive"`
	AverageRating *float64                  `json:"average_rating" validate:"omitempty,gte=0,lte=5"`
	TotalReviews  *int                      `json:"total_reviews" validate:"omitempty,gte=0"`
	LastUpdated   *time.Time                `json:"last_updated"`
}

// UpdateCompetitorRequest is the JSON request body for patching a competitor.
type UpdateCompetitorRequest struct {
	Name          *string                   `json:"name" validate:"omitempty,notblank,max=255"`
	Sources       []CompetitorSourceRequest `json:"sources" validate:"omitempty,dive"`
	AverageRating *float64                  `json:"average_rating" validate:"omitempty,gte=0,lte=5"`
	TotalReviews  *int                      `json:"total_reviews" validate:"omitempty,gte=0"`
	LastUpdated   *time.Time                `json:"last_updated"`
}

func competitorSources(in []CompetitorSourceRequest) []domain.CompetitorSource {
	if in == nil {
		return nil
	}
	out := make([]domain.CompetitorSource, len(in))
	for i, s := range in {
		out[i] = domain.CompetitorSource{Type: s.Type, URL: s.URL}
	}
	return out
}

// ListCompetitors handles GET /api/v1/competitors
func (h *Handler) ListCompetitors(w http.ResponseWriter, r *http.Request) {
	competitors, err := h.svc.GetCompetitors(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, competitors)
}

// GetCompetitor handles GET /api/v1/competitors/{id}
func (h *Handler) GetCompetitor(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	c, found, err := h.svc.GetCompetitor(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !found {
		h.writeNotFound(w, r, "competitor", id)
		return
	}
	httputil.WriteData(w, http.StatusOK, c)
}

// CreateCompetitor handles POST /api/v1/competitors
func (h *Handler) CreateCompetitor(w http.ResponseWriter, r *http.Request) {
	var req CreateCompetitorRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	c, err := h.svc.AddCompetitor(r.Context(), &domain.Competitor{
		Name:          req.Name,
		Sources:       competitorSources(req.Sources),
		AverageRating: req.AverageRating,
		TotalReviews:  req.TotalReviews,
		LastUpdated:   req.LastUpdated,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteData(w, http.StatusCreated, c)
}

// UpdateCompetitor handles PATCH /api/v1/competitors/{id}
func (h *Handler) UpdateCompetitor(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)

	var req UpdateCompetitorRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	c, found, err := h.svc.UpdateCompetitor(r.Context(), id, domain.CompetitorPatch{
		Name:          req.Name,
		Sources:       competitorSources(req.Sources),
		AverageRating: req.AverageRating,
		TotalReviews:  req.TotalReviews,
		LastUpdated:   req.LastUpdated,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !found {
		h.writeNotFound(w, r, "competitor", id)
		return
	}
	httputil.WriteData(w, http.StatusOK, c)
}

// DeleteCompetitor handles DELETE /api/v1/competitors/{id}
func (h *Handler) DeleteCompetitor(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	deleted, err := h.svc.DeleteCompetitor(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !deleted {
		h.writeNotFound(w, r, "competitor", id)
		return
	}
	writeDeleted(w, id)
}
