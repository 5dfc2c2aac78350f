package http

import (
	"net/http"
	"time"

	"github.com/utafrali/reputation/internal/domain"
	"github.com/utafrali/reputation/pkg/httputil"
	"github.com/utafrali/reputation/pkg/validator"
)

// CreateSourceRequest is the JSON request body for configuring a source.
type CreateSourceRequest struct {
	Name          string            `json:"name" validate:"required,notblank,max=255"`
	Type          string            `json:"type" validate:"required,oneof=google yelp facebook tripadvisor trustpilot custom"`
	URL           string            `json:"url" validate:"omitempty,url"`
	APIKey        string            `json:"api_key" validate:"max=512,startsnotwith=sealed:v1:"`
	Credentials   map[string]string `json:"credentials" validate:"omitempty,dive,startsnotwith=sealed:v1:"`
	Enabled       *bool             `json:"enabled"`
	LastSync      *time.Time        `json:"last_sync"`
	SyncFrequency string            `json:"sync_frequency" validate:"omitempty,oneof=hourly daily weekly never"`
}

// UpdateSourceRequest is the JSON request body for patching a source.
type UpdateSourceRequest struct {
	Name          *string           `json:"name" validate:"omitempty,notblank,max=255"`
	Type          *string           `json:"type" validate:"omitempty,oneof=google yelp facebook tripadvisor trustpilot custom"`
	URL           *string           `json:"url" validate:"omitempty,url"`
	APIKey        *string           `json:"api_key" validate:"omitempty,max=512,startsnotwith=sealed:v1:"`
	Credentials   map[string]string `json:"credentials" validate:"omitempty,dive,startsnotwith=sealed:v1:"`
	Enabled       *bool             `json:"enabled"`
	LastSync      *time.Time        `json:"last_sync"`
	SyncFrequency *string           `json:"sync_frequency" validate:"omitempty,oneof=hourly daily weekly never"`
}

// ListSources handles GET /api/v1/sources
func (h *Handler) ListSources(w http.ResponseWriter, r *http.Request) {
	sources, err := h.svc.GetSources(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, sources)
}

// GetSource handles GET /api/v1/sources/{id}
func (h *Handler) GetSource(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	src, found, err := h.svc.GetSource(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !found {
		h.writeNotFound(w, r, "source", id)
		return
	}
	httputil.WriteData(w, http.StatusOK, src)
}

// CreateSource handles POST /api/v1/sources
func (h *Handler) CreateSource(w http.ResponseWriter, r *http.Request) {
	var req CreateSourceRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	syncFrequency := req.SyncFrequency
	if syncFrequency == "" {
		syncFrequency = domain.SyncDaily
	}

	src, err := h.svc.AddSource(r.Context(), &domain.ReviewSource{
		Name:          req.Name,
		Type:          req.Type,
		URL:           req.URL,
		APIKey:        req.APIKey,
		Credentials:   req.Credentials,
		Enabled:       enabled,
		LastSync:      req.LastSync,
		SyncFrequency: syncFrequency,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteData(w, http.StatusCreated, src)
}

// UpdateSource handles PATCH /api/v1/sources/{id}
func (h *Handler) UpdateSource(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)

	var req UpdateSourceRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	src, found, err := h.svc.UpdateSource(r.Context(), id, domain.SourcePatch{
		Name:          req.Name,
		Type:          req.Type,
		URL:           req.URL,
		APIKey:        req.APIKey,
		Credentials:   req.Credentials,
		Enabled:       req.Enabled,
		LastSync:      req.LastSync,
		SyncFrequency: req.SyncFrequency,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !found {
		h.writeNotFound(w, r, "source", id)
		return
	}
	httputil.WriteData(w, http.StatusOK, src)
}

// DeleteSource handles DELETE /api/v1/sources/{id}
func (h *Handler) DeleteSource(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	deleted, err := h.svc.DeleteSource(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !deleted {
		h.writeNotFound(w, r, "source", id)
		return
	}
	writeDeleted(w, id)
}
