package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/utafrali/reputation/pkg/httputil"
	"github.com/utafrali/reputation/pkg/validator"
)

// GenerateMetricsRequest is the JSON request body for a metrics run.
type GenerateMetricsRequest struct {
	Period    string    `json:"period" validate:"required,oneof=daily weekly monthly quarterly yearly"`
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required,gtefield=StartDate"`
}

// ListMetrics handles GET /api/v1/metrics
func (h *Handler) ListMetrics(w http.ResponseWriter, r *http.Request) {
	history, err := h.svc.GetAllMetrics(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writePage(w, r, history)
}

// GetMetrics handles GET /api/v1/metrics/{id}
func (h *Handler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	m, found, err := h.svc.GetMetrics(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !found {
		h.writeNotFound(w, r, "metrics", id)
		return
	}
	httputil.WriteData(w, http.StatusOK, m)
}

// GenerateMetrics handles POST /api/v1/metrics
func (h *Handler) GenerateMetrics(w http.ResponseWriter, r *http.Request) {
	var req GenerateMetricsRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	m, err := h.svc.GenerateMetrics(r.Context(), req.Period, req.StartDate.UTC(), req.EndDate.UTC())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "metrics requested",
		slog.String("metrics_id", m.ID),
		slog.String("period", m.Period),
	)
	httputil.WriteData(w, http.StatusCreated, m)
}
