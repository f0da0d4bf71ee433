/*
server.go - HTTP router configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  Keeps routing concerns separate from handler logic.

ROUTER: chi
  Chosen for its idiomatic net/http compatibility, URL parameters, and
  composable middleware.

MIDDLEWARE STACK:
  1. RequestID - Tags each request for log correlation
  2. Logger    - Request logging
  3. Recoverer - Panic recovery with 500 response
  4. CORS      - Cross-origin access for the admin UI

SEE ALSO:
  - handlers.go: Handler implementations
  - dto.go: Request/response types
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Agent routes
		r.Route("/agents", func(r chi.Router) {
			r.Get("/", h.ListAgents)
			r.Post("/", h.CreateAgent)
			r.Get("/{id}", h.GetAgent)
			r.Get("/{id}/entries", h.GetAgentEntries)
			r.Get("/{id}/upline", h.GetAgentUpline)
			r.Get("/{id}/downline", h.GetAgentDownline)
		})

		// Tier chart routes
		r.Route("/tiers", func(r chi.Router) {
			r.Get("/", h.GetTiers)
			r.Put("/", h.ReplaceTiers)
		})

		// Order routes, per product line ("life" or "annuity")
		r.Route("/orders/{line}", func(r chi.Router) {
			r.Get("/", h.ListOrders)
			r.Post("/", h.CreateOrder)
			r.Get("/archive", h.ListArchivedOrders)
			r.Get("/{id}", h.GetOrder)
			r.Get("/{id}/entries", h.GetOrderEntries)
			r.Post("/{id}/status", h.SetOrderStatus)
			r.Post("/{id}/renew", h.RenewOrder)
			r.Post("/{id}/audit", h.AuditOrder)
			r.Delete("/{id}", h.DeleteOrder)
		})

		// Ledger entry routes
		r.Route("/entries", func(r chi.Router) {
			r.Patch("/{id}", h.AmendEntry)
		})

		// Product rate routes
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ListProducts)
			r.Post("/", h.UpsertProduct)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Post("/rebuild", h.TriggerRebuild)
		})

		// Demo scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/load", h.LoadScenario)
		})
	})

	return r
}
