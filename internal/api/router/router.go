package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pratik-mahalle/smmpanel/internal/api/handlers"
	"github.com/pratik-mahalle/smmpanel/internal/api/middleware"
	"github.com/pratik-mahalle/smmpanel/internal/config"
	"github.com/pratik-mahalle/smmpanel/internal/pkg/logger"
	"github.com/pratik-mahalle/smmpanel/internal/pkg/metrics"
)

type Handlers struct {
	Health   *handlers.HealthHandler
	Sync     *handlers.SyncHandler
	SyncLog  *handlers.SyncLogHandler
	Provider *handlers.ProviderHandler
	Stream   *handlers.StreamHandler
}

func New(cfg *config.Config, log *logger.Logger, h *Handlers) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(chimiddleware.RealIP)
	r.Use(metrics.Middleware)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.DefaultCORS(cfg.Server.FrontendURL))
	r.Use(middleware.RateLimit(cfg.Server.RateLimit, cfg.Server.RateBurst))

	// Public routes
	r.Group(func(r chi.Router) {
		r.Get("/health", h.Health.Healthz)
		r.Get("/healthz", h.Health.Healthz)
		r.Get("/readyz", h.Health.Readyz)
		r.Handle("/metrics", metrics.Handler())
	})

	// Protected routes (require authentication)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(cfg.Auth.JWTSecret))

		// single-order syncs hit provider APIs; keep users from hammering them
		r.With(middleware.UserRateLimit(1, 5)).Post("/orders/{id}/sync", h.Sync.SyncOrder)

		r.Route("/stream", func(r chi.Router) {
			r.Get("/orders", h.Stream.Orders)
			r.Get("/notifications", h.Stream.Notifications)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Post("/orders/sync", h.Sync.Sync)
			r.Get("/sync/status", h.Sync.Status)
			r.Post("/sync/trigger", h.Sync.Trigger)
			r.Get("/sync/logs", h.SyncLog.List)
			r.Get("/providers", h.Provider.List)
		})
	})

	return r
}
