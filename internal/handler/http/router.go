package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/reputation/internal/service"
	"github.com/utafrali/reputation/pkg/health"
	"github.com/utafrali/reputation/pkg/httputil"
	"github.com/utafrali/reputation/pkg/middleware"
)

// RouterConfig carries everything NewRouter mounts. A nil TokenValidator
// leaves mutating routes open; a nil RateLimiter disables rate limiting.
// With a TokenValidator set, SourceAdminRoles restricts source mutations
// to tokens carrying one of those roles.
type RouterConfig struct {
	ServiceName      string
	Service          *service.ReputationService
	Health           *health.Handler
	Logger           *slog.Logger
	CORS             middleware.CORSConfig
	TokenValidator   middleware.TokenValidator
	SourceAdminRoles []string
	RateLimiter      *middleware.RateLimiter
	PprofCIDRs       []string
	RequestTimeout   time.Duration
}

// NewRouter creates a chi router with all reputation routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))

	// Health check endpoints
	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())
	middleware.RegisterPprof(r, cfg.PprofCIDRs, cfg.Logger)

	h := NewHandler(cfg.Service, cfg.Logger)

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Middleware)
		}
		if cfg.TokenValidator != nil {
			r.Use(middleware.Auth(cfg.TokenValidator, middleware.SafeMethod))
		}
		r.Use(middleware.RequestLogger(cfg.Logger))
		if cfg.RequestTimeout > 0 {
			r.Use(chimw.Timeout(cfg.RequestTimeout))
		}
		r.Use(chimw.Compress(5, "application/json"))
		r.Use(contentTypeJSON)

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/", h.ListReviews)
			r.Post("/", h.CreateReview)
			r.Get("/search", h.SearchReviews)
			r.Get("/{id}", h.GetReview)
			r.Patch("/{id}", h.UpdateReview)
			r.Delete("/{id}", h.DeleteReview)
			r.Post("/{id}/analyze", h.AnalyzeReview)
			r.Get("/{id}/responses", h.ListResponses)
			r.Post("/{id}/responses", h.CreateResponse)
		})

		r.Route("/responses", func(r chi.Router) {
			r.Get("/{id}", h.GetResponse)
			r.Patch("/{id}", h.UpdateResponse)
			r.Delete("/{id}", h.DeleteResponse)
		})

		r.Route("/sources", func(r chi.Router) {
			r.Get("/", h.ListSources)
			r.Get("/{id}", h.GetSource)

			w := r
			if cfg.TokenValidator != nil && len(cfg.SourceAdminRoles) > 0 {
				w = r.With(middleware.RequireRole(cfg.SourceAdminRoles...))
			}
			w.Post("/", h.CreateSource)
			w.Patch("/{id}", h.UpdateSource)
			w.Delete("/{id}", h.DeleteSource)
		})

		r.Route("/competitors", func(r chi.Router) {
			r.Get("/", h.ListCompetitors)
			r.Post("/", h.CreateCompetitor)
			r.Get("/{id}", h.GetCompetitor)
			r.Patch("/{id}", h.UpdateCompetitor)
			r.Delete("/{id}", h.DeleteCompetitor)
		})

		r.Route("/templates", func(r chi.Router) {
			r.Get("/", h.ListTemplates)
			r.Post("/", h.CreateTemplate)
			r.Get("/{id}", h.GetTemplate)
			r.Patch("/{id}", h.UpdateTemplate)
			r.Delete("/{id}", h.DeleteTemplate)
			r.Post("/{id}/render", h.RenderTemplate)
		})

		r.Route("/metrics", func(r chi.Router) {
			r.Get("/", h.ListMetrics)
			r.Post("/", h.GenerateMetrics)
			r.Get("/{id}", h.GetMetrics)
		})
	})

	return r
}

// contentTypeJSON rejects bodies that are not declared as JSON.
func contentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength != 0 && (r.Method == http.MethodPost || r.Method == http.MethodPatch) {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.Response{
					Error: &httputil.ErrorResponse{Code: "UNSUPPORTED_MEDIA_TYPE", Message: "content type must be application/json"},
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
