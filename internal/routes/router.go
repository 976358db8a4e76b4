package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"routegraph/dashboard/internal/api"
	"routegraph/dashboard/internal/logging"
	"routegraph/dashboard/internal/middleware"
)

// RegisterRoutes builds the dashboard router: UI pages, the /ui/api JSON
// surface and /metrics served from gatherer.
func RegisterRoutes(deps *api.Dependencies, gatherer prometheus.Gatherer) http.Handler {
	cfg := deps.Config

	// initialize Chi router
	r := chi.NewRouter()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.Logging)
	r.Use(middleware.MetricsMiddleware(deps.Metrics))
	r.Use(middleware.ThemeMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token", "X-Request-ID"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	session := middleware.SessionMiddleware(deps.Signer, deps.Registry, cfg.AppEnv == "production")

	RegisterUIRoutes(r, session)
	RegisterAPIRoutes(r, deps, session, limiter)

	logging.Info("Router initialized", "origins", cfg.AllowedOrigins)
	return r
}
