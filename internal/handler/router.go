package handler

import (
	"net/http"

	"github.com/Shivanand-hulikatti/event-manager/internal/config"
	"github.com/Shivanand-hulikatti/event-manager/internal/metrics"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// NewRouter builds the HTTP routing tree.
func NewRouter(h *EventHandler, db Pinger, cfg config.ServerConfig, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(Logger(logger))
	r.Use(metrics.Middleware)
	r.Use(CORS(cfg.AllowedOrigins))

	r.Get("/health", HealthCheck(db))
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(RateLimit(cfg.PublicPerMinute))
		r.Post("/users", h.CreateUser)
		r.Post("/sessions", h.Login)
	})

	r.Group(func(r chi.Router) {
		r.Use(Authenticate(h.tokens))

		r.Get("/me", h.Me)
		r.Route("/events", func(r chi.Router) {
			r.Post("/", h.CreateEvent)
			r.Get("/", h.ListEvents)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetEvent)
				r.Get("/tickets", h.ListTickets)
				r.Post("/tickets", h.AddTicketType)
				r.Get("/attendees", h.ListAttendees)
				r.Post("/attendees", h.RegisterAttendee)
				r.Get("/dashboard", h.Dashboard)
			})
		})
	})

	return r
}
