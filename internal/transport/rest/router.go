package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/attendance-engine/internal"
	"github.com/frahmantamala/attendance-engine/internal/attendance"
	"github.com/frahmantamala/attendance-engine/internal/performance"
	"github.com/frahmantamala/attendance-engine/internal/transport/middleware"
	"github.com/frahmantamala/attendance-engine/internal/transport/swagger"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

const OpenAPIPath = "./api/openapi.yml"

type Handlers struct {
	Health      *HealthHandler
	Attendance  *attendance.Handler
	Performance *performance.Handler
}

// RegisterAllRoutes mounts the API under /api/v1. Kiosk endpoints are
// public; dashboard endpoints need an admin token with the configured role.
func RegisterAllRoutes(router *chi.Mux, h Handlers, verifier middleware.TokenVerifier, security internal.SecurityConfig, allowedOrigins string, logger *slog.Logger) {
	router.Use(middleware.CORS(allowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, OpenAPIPath)
	})
	router.Handle("/swagger/*", swagger.Handler("/openapi.yml"))

	admin := func(r chi.Router) {
		r.Use(middleware.AdminAuth(verifier, logger))
		r.Use(middleware.RequireRole(logger, security.AdminRole))
	}

	router.Route("/api/v1", func(r chi.Router) {
		if h.Health != nil {
			r.Get("/health", h.Health.healthCheckHandler)
			r.Get("/ping", h.Health.pingHandler)
		}

		if h.Attendance != nil {
			r.Route("/attendance", func(ar chi.Router) {
				h.Attendance.KioskRoutes(ar)
				ar.Group(func(gr chi.Router) {
					admin(gr)
					h.Attendance.AdminRoutes(gr)
				})
			})
		}

		if h.Performance != nil {
			r.Route("/leaderboard", func(lr chi.Router) {
				admin(lr)
				h.Performance.Routes(lr)
			})
		}
	})
}
