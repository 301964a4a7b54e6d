package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/agendazap/agendazap/internal/http/handlers"
	httpmiddleware "github.com/agendazap/agendazap/internal/http/middleware"
	"github.com/agendazap/agendazap/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	WebhookHandler      *handlers.WebhookHandler
	AppointmentsHandler *handlers.AppointmentsHandler
	ClientsHandler      *handlers.ClientsHandler
	HealthHandler       *handlers.HealthHandler
	MetricsHandler      http.Handler

	// AllowedAgents gates /webhook by User-Agent fragment. Empty means the
	// Twilio/Dialogflow default.
	AllowedAgents []string

	// RateLimitPerMin caps requests per IP per minute. Zero disables the limit.
	RateLimitPerMin int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	if cfg.RateLimitPerMin > 0 {
		r.Use(httpmiddleware.RateLimit(float64(cfg.RateLimitPerMin)/60.0, cfg.RateLimitPerMin))
	}

	if cfg.HealthHandler != nil {
		r.Get("/health", cfg.HealthHandler.Check)
	}
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.WebhookHandler != nil {
		r.With(httpmiddleware.OriginFilter(cfg.AllowedAgents)).Post("/webhook", cfg.WebhookHandler.Handle)
	}

	r.Route("/api", func(api chi.Router) {
		if cfg.AppointmentsHandler != nil {
			api.Route("/agendamentos", func(ag chi.Router) {
				ag.Get("/horarios", cfg.AppointmentsHandler.Slots)
				ag.Get("/", cfg.AppointmentsHandler.ListActive)
				ag.Post("/", cfg.AppointmentsHandler.Create)
				ag.Post("/{id}/cancelar", cfg.AppointmentsHandler.Cancel)
				ag.Post("/{id}/reagendar", cfg.AppointmentsHandler.Reschedule)
			})
		}
		if cfg.ClientsHandler != nil {
			api.Route("/clientes", func(cl chi.Router) {
				cl.Post("/buscar-ou-criar", cfg.ClientsHandler.FindOrCreate)
				cl.Get("/", cfg.ClientsHandler.Lookup)
				cl.Put("/{id}/nome", cfg.ClientsHandler.Rename)
			})
		}
	})

	return r
}
