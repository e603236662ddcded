package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/booking-assistant/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/booking-assistant/internal/http/middleware"
	"github.com/wolfman30/booking-assistant/pkg/logging"
)

// Config holds router configuration. Nil handlers leave their routes unmounted.
type Config struct {
	Logger             *logging.Logger
	Health             *handlers.HealthHandler
	Booking            *handlers.BookingHandler
	Chat               *handlers.ChatHandler
	Suggestions        *handlers.SuggestionsHandler
	Interpret          *handlers.InterpretHandler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
	// RateLimiter throttles the /api routes that reach the upstream agent or an LLM.
	RateLimiter *httpmiddleware.RateLimiter
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}

	health := cfg.Health
	if health == nil {
		health = handlers.NewHealthHandler(nil)
	}
	r.Get("/health", health.Health)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		// Pure text interpretation never leaves the process, so it is not throttled.
		if cfg.Interpret != nil {
			api.Post("/interpret/slots", cfg.Interpret.Slots)
			api.Post("/interpret/outcome", cfg.Interpret.Outcome)
		}

		api.Group(func(limited chi.Router) {
			if cfg.RateLimiter != nil {
				limited.Use(httpmiddleware.RateLimit(cfg.RateLimiter))
			}
			if cfg.Booking != nil {
				limited.Post("/availability", cfg.Booking.Availability)
				limited.Post("/bookings", cfg.Booking.Book)
				limited.Get("/bookings/{sessionID}/attempts", cfg.Booking.Attempts)
			}
			if cfg.Chat != nil {
				limited.Post("/chat", cfg.Chat.Send)
				limited.Get("/chat/{sessionID}/history", cfg.Chat.History)
			}
			if cfg.Suggestions != nil {
				limited.Post("/suggestions", cfg.Suggestions.Suggest)
			}
		})
	})

	return r
}
