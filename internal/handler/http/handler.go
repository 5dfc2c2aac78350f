// Package http exposes the reputation service over a JSON REST API.
package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/reputation/internal/service"
	apperrors "github.com/utafrali/reputation/pkg/errors"
	"github.com/utafrali/reputation/pkg/httputil"
	"github.com/utafrali/reputation/pkg/pagination"
)

// Handler serves every /api/v1 endpoint.
type Handler struct {
	svc    *service.ReputationService
	logger *slog.Logger
}

// NewHandler creates a new reputation HTTP handler.
func NewHandler(svc *service.ReputationService, logger *slog.Logger) *Handler {
	return &Handler{
		svc:    svc,
		logger: logger,
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	httputil.WriteError(w, r, err, h.logger)
}

func (h *Handler) writeNotFound(w http.ResponseWriter, r *http.Request, resource, id string) {
	h.writeError(w, r, apperrors.NotFound(resource, id))
}

func (h *Handler) writeBadRequest(w http.ResponseWriter, r *http.Request, err error) {
	h.writeError(w, r, apperrors.InvalidInput(err.Error()))
}

func writeDeleted(w http.ResponseWriter, id string) {
	httputil.WriteData(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}

// writePage pages a materialised listing with the request's page and
// per_page parameters.
func writePage[T any](w http.ResponseWriter, r *http.Request, all []T) {
	httputil.WriteData(w, http.StatusOK, pagination.Slice(all, pagination.FromRequest(r)))
}

func idParam(r *http.Request) string {
	return chi.URLParam(r, "id")
}
