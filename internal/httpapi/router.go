package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	CORSOrigins    []string
	RequestTimeout time.Duration
	// Websocket handler mounted at /ws; omitted when nil
	WebSocket http.Handler
}

// NewRouter wires the API routes and middleware.
func NewRouter(h *Handler, opts RouterOptions) chi.Router {
	if opts.RequestTimeout == 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.HealthCheck)

	if opts.WebSocket != nil {
		r.Handle("/ws", opts.WebSocket)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(opts.RequestTimeout))

		// Calculators
		r.Post("/edge", h.Edge)
		r.Post("/stake", h.Stake)
		r.Post("/fair", h.Fair)
		r.Post("/estimate", h.Estimate)

		// Settings
		r.Get("/settings", h.GetSettings)
		r.Put("/settings", h.UpdateSettings)

		// Ledger
		r.Post("/bets", h.PlaceBet)
		r.Get("/bets", h.ListBets)
		r.Get("/bets/summary", h.Summary)
		r.Get("/bets/{betID}", h.GetBet)
		r.Post("/bets/{betID}/settle", h.SettleBet)
	})

	return r
}
