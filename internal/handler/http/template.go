package http

import (
	"net/http"

	"github.com/utafrali/reputation/internal/domain"
	"github.com/utafrali/reputation/pkg/httputil"
	"github.com/utafrali/reputation/pkg/validator"
)

// CreateTemplateRequest is the JSON request body for a response template.
type CreateTemplateRequest struct {
	Name        string  `json:"name" validate:"required,notblank,max=255"`
	Content     string  `json:"content" validate:"required,notblank,max=5000"`
	Sentiment   string  `json:"sentiment" validate:"omitempty,oneof=positive neutral negative"`
	Category    string  `json:"category" validate:"max=100"`
	UsageCount  int     `json:"usage_count" validate:"gte=0"`
	SuccessRate float64 `json:"success_rate" validate:"gte=0,lte=1"`
}

// UpdateTemplateRequest is the JSON request body for patching a template.
type UpdateTemplateRequest struct {
	Name        *string  `json:"name" validate:"omitempty,notblank,max=255"`
	Content     *string  `json:"content" validate:"omitempty,notblank,max=5000"`
	Sentiment   *string  `json:"sentiment" validate:"omitempty,oneof=positive neutral negative"`
	Category    *string  `json:"category" validate:"omitempty,max=100"`
	UsageCount  *int     `json:"usage_count" validate:"omitempty,gte=0"`
	SuccessRate *float64 `json:"success_rate" validate:"omitempty,gte=0,lte=1"`
}

// RenderTemplateRequest names the reviewer a template is previewed for.
type RenderTemplateRequest struct {
	Name string `json:"name" validate:"required,notblank,max=255"`
}

// ListTemplates handles GET /api/v1/templates
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.svc.GetTemplates(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, templates)
}

// GetTemplate handles GET /api/v1/templates/{id}
func (h *Handler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	t, found, err := h.svc.GetTemplate(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !found {
		h.writeNotFound(w, r, "template", id)
		return
	}
	httputil.WriteData(w, http.StatusOK, t)
}

// CreateTemplate handles POST /api/v1/templates
func (h *Handler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req CreateTemplateRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	sentiment := req.Sentiment
	if sentiment == "" {
		sentiment = domain.SentimentNeutral
	}

	t, err := h.svc.AddTemplate(r.Context(), &domain.ResponseTemplate{
		Name:        req.Name,
		Content:     req.Content,
		Sentiment:   sentiment,
		Category:    req.Category,
		UsageCount:  req.UsageCount,
		SuccessRate: req.SuccessRate,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteData(w, http.StatusCreated, t)
}

// UpdateTemplate handles PATCH /api/v1/templates/{id}
func (h *Handler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)

	var req UpdateTemplateRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	t, found, err := h.svc.UpdateTemplate(r.Context(), id, domain.TemplatePatch{
		Name:        req.Name,
		Content:     req.Content,
		Sentiment:   req.Sentiment,
		Category:    req.Category,
		UsageCount:  req.UsageCount,
		SuccessRate: req.SuccessRate,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !found {
		h.writeNotFound(w, r, "template", id)
		return
	}
	httputil.WriteData(w, http.StatusOK, t)
}

// DeleteTemplate handles DELETE /api/v1/templates/{id}
func (h *Handler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	deleted, err := h.svc.DeleteTemplate(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !deleted {
		h.writeNotFound(w, r, "template", id)
		return
	}
	writeDeleted(w, id)
}

// RenderTemplate handles POST /api/v1/templates/{id}/render
func (h *Handler) RenderTemplate(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)

	var req RenderTemplateRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	content, found, err := h.svc.RenderTemplate(r.Context(), id, req.Name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !found {
		h.writeNotFound(w, r, "template", id)
		return
	}
	httputil.WriteData(w, http.StatusOK, map[string]string{"template_id": id, "content": content})
}
