package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.opentelemetry.io/otel/trace"

	"netmobcli/internal/config"
	apperrors "netmobcli/internal/errors"
	"netmobcli/internal/infrastructure"
	customMiddleware "netmobcli/internal/middleware"
	"netmobcli/internal/services"
)

// RouterDeps are the collaborators mounted by NewRouter. Metrics, Tracer and
// Prometheus may be nil.
type RouterDeps struct {
	Health         *services.HealthService
	Correspondence CorrespondenceService
	Metrics        *infrastructure.PipelineMetrics
	Tracer         trace.Tracer
	Prometheus     http.Handler
	Logger         *slog.Logger
}

// NewRouter builds the read-only HTTP surface. Middleware order is
// RequestID, RealIP, Telemetry, StructuredLogger, Recoverer, then the rate
// limiter when enabled.
func NewRouter(cfg config.ServerConfig, deps RouterDeps) *chi.Mux {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	// scrape endpoint stays outside the traced group
	if deps.Prometheus != nil {
		r.Handle("/metrics", deps.Prometheus)
	} else {
		r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			render.Render(w, r, apperrors.NewErrorResponse(apperrors.NotFoundError("metrics exporter")))
		})
	}

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.Telemetry(deps.Tracer, deps.Metrics))
		r.Use(customMiddleware.StructuredLogger(logger))
		r.Use(customMiddleware.Recoverer(logger))
		r.Use(customMiddleware.StripSlashes)
		if cfg.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, logger).Handler)
		}

		health := NewHealthHandler(deps.Health, logger)
		r.Get("/healthz", health.HealthCheck)
		r.Get("/readyz", health.ReadinessCheck)
		r.Get("/livez", health.LivenessCheck)

		r.Route("/api/v1", func(r chi.Router) {
			r.Use(render.SetContentType(render.ContentTypeJSON))
			r.Get("/version", health.Version)
			if deps.Correspondence != nil {
				r.Mount("/correspondence", NewCorrespondenceHandler(deps.Correspondence, logger).Routes())
			}
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.Render(w, r, apperrors.NewErrorResponse(apperrors.ErrResourceNotFound))
	})

	return r
}
