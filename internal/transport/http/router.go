package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"bnfcli/internal/config"
	apierrors "bnfcli/internal/errors"
	customMiddleware "bnfcli/internal/middleware"
)

// RouterDeps are the collaborators the router mounts.
type RouterDeps struct {
	Config         config.ServerConfig
	Logger         *slog.Logger
	ErrorHandler   *apierrors.ErrorHandler
	Analyze        *AnalyzeHandler
	Health         *HealthHandler
	Metrics        http.Handler
	OTelMiddleware *customMiddleware.OTelMiddleware
}

// NewRouter wires the middleware chain and routes.
func NewRouter(d RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	if d.OTelMiddleware != nil {
		r.Use(d.OTelMiddleware.Handler)
	}
	r.Use(customMiddleware.StructuredLogger(d.Logger))
	r.Use(customMiddleware.Recoverer(d.ErrorHandler))
	r.Use(customMiddleware.SecurityHeaders)
	if d.Config.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			d.Config.RateLimit.RPS,
			d.Config.RateLimit.Burst,
			d.Logger,
			d.ErrorHandler,
		).Handler)
	}

	r.NotFound(d.ErrorHandler.NotFound)
	r.MethodNotAllowed(d.ErrorHandler.MethodNotAllowed)

	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Get("/health", d.Health.HealthCheck)
		r.Get("/version", d.Health.Version)

		r.Route("/v1", func(r chi.Router) {
			r.Use(customMiddleware.Timeout(d.Config.RequestTimeout))
			r.Use(customMiddleware.MaxBodySize(d.Config.MaxUploadBytes))
			r.Use(customMiddleware.ContentTypeValidator(d.ErrorHandler, "text/csv", "text/plain", "multipart/form-data"))
			r.Mount("/analyze", d.Analyze.Routes())
		})
	})

	return r
}
