package http

import (
	"net/http"

	"github.com/utafrali/reputation/internal/domain"
	"github.com/utafrali/reputation/internal/service"
	"github.com/utafrali/reputation/pkg/httputil"
	"github.com/utafrali/reputation/pkg/middleware"
	"github.com/utafrali/reputation/pkg/validator"
)

// CreateResponseRequest is the JSON request body for replying to a review.
// Either content or template_id must be present.
type CreateResponseRequest struct {
	Content    string `json:"content" validate:"required_without=TemplateID,max=5000"`
	TemplateID string `json:"template_id" validate:"max=255"`
	AuthorID   string `json:"author_id" validate:"max=255"`
	Status     string `json:"status" validate:"omitempty,oneof=draft published"`
}

// UpdateResponseRequest is the JSON request body for editing a response.
type UpdateResponseRequest struct {
	Content *string `json:"content" validate:"omitempty,notblank,max=5000"`
	Status  *string `json:"status" validate:"omitempty,oneof=draft published"`
}

// ListResponses handles GET /api/v1/reviews/{id}/responses
func (h *Handler) ListResponses(w http.ResponseWriter, r *http.Request) {
	reviewID := idParam(r)
	_, found, err := h.svc.GetReview(r.Context(), reviewID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !found {
		h.writeNotFound(w, r, "review", reviewID)
		return
	}

	responses, err := h.svc.ListResponses(r.Context(), reviewID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteData(w, http.StatusOK, responses)
}

// CreateResponse handles POST /api/v1/reviews/{id}/responses
func (h *Handler) CreateResponse(w http.ResponseWriter, r *http.Request) {
	reviewID := idParam(r)

	var req CreateResponseRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	authorID := req.AuthorID
	if authorID == "" {
		authorID = middleware.SubjectFromContext(r.Context())
	}

	resp, found, err := h.svc.CreateResponse(r.Context(), service.CreateResponseInput{
		ReviewID:   reviewID,
		Content:    req.Content,
		AuthorID:   authorID,
		TemplateID: req.TemplateID,
		Status:     req.Status,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !found {
		h.writeNotFound(w, r, "review", reviewID)
		return
	}

	httputil.WriteData(w, http.StatusCreated, resp)
}

// GetResponse handles GET /api/v1/responses/{id}
func (h *Handler) GetResponse(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	resp, found, err := h.svc.GetResponse(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !found {
		h.writeNotFound(w, r, "response", id)
		return
	}

	httputil.WriteData(w, http.StatusOK, resp)
}

// UpdateResponse handles PATCH /api/v1/responses/{id}
func (h *Handler) UpdateResponse(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)

	var req UpdateResponseRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	resp, found, err := h.svc.UpdateResponse(r.Context(), id, domain.ResponsePatch{
		Content: req.Content,
		Status:  req.Status,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !found {
		h.writeNotFound(w, r, "response", id)
		return
	}

	httputil.WriteData(w, http.StatusOK, resp)
}

// DeleteResponse handles DELETE /api/v1/responses/{id}
func (h *Handler) DeleteResponse(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	deleted, err := h.svc.DeleteResponse(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !deleted {
		h.writeNotFound(w, r, "response", id)
		return
	}

	writeDeleted(w, id)
}
