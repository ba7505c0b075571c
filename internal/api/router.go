package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hackgods/clinic-booking/internal/appointment"
	"github.com/hackgods/clinic-booking/internal/auth"
	"github.com/hackgods/clinic-booking/internal/events"
)

type RouterConfig struct {
	Service   *appointment.Service
	Auth      *auth.Authenticator
	Bus       *events.Bus
	Checks    map[string]appointment.Pinger
	Metrics   http.Handler // optional, mounted at /metrics
	StaticDir string       // optional
	Env       string
	Version   string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply middleware
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(middleware.Recoverer)

	// Health endpoints
	health := NewHealthHandler(cfg.Checks, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	r.Get("/ws", websocketHandler(cfg.Bus))

	r.Route("/api", func(r chi.Router) {
		r.Get("/doctors", listDoctorsHandler(cfg.Service))
		r.Get("/doctors/{id}", getDoctorHandler(cfg.Service))
		r.Post("/appointments", createAppointmentHandler(cfg.Service))

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", loginHandler(cfg.Auth))

			// Tokens are only checked here so a stale one cannot block
			// booking or logging in again.
			r.Group(func(r chi.Router) {
				r.Use(AuthMiddleware(cfg.Auth))

				r.Get("/appointments", listAppointmentsHandler(cfg.Service))
				r.Get("/appointments/{id}", getAppointmentHandler(cfg.Service))
				r.Patch("/appointments/{id}/status", updateStatusHandler(cfg.Service))
				r.Delete("/appointments/{id}", deleteAppointmentHandler(cfg.Service))
				r.Get("/statistics", statisticsHandler(cfg.Service))
			})
		})
	})

	if cfg.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	return r
}
