/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the frontend

ROUTE GROUPS:
  /api/members/*        Roster, balances, streaks, badges
  /api/contributions/*  Payment records
  /api/summary          Fund-wide rollup
  /api/settings         Goal + rate rules (factory JSON)
  /api/export, /import  CSV snapshot of contributions
  /api/scenarios/*      Demo data loaders (dev only)

SECURITY NOTE:
  No authentication middleware. All endpoints are public; the login
  surface lives outside this service.
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/members", func(r chi.Router) {
			r.Get("/", h.ListMembers)
			r.Post("/", h.CreateMember)
			r.Get("/{id}", h.GetMember)
			r.Delete("/{id}", h.DeleteMember)
			r.Get("/{id}/balance", h.GetBalance)
			r.Get("/{id}/streak", h.GetStreak)
			r.Get("/{id}/badges", h.GetBadges)
			r.Get("/{id}/contributions", h.ListMemberContributions)
			r.Get("/{id}/snapshots", h.ListSnapshots)
		})

		r.Route("/contributions", func(r chi.Router) {
			r.Get("/", h.ListContributions)
			r.Post("/", h.CreateContribution)
			r.Put("/{id}", h.UpdateContribution)
			r.Delete("/{id}", h.DeleteContribution)
		})

		r.Get("/summary", h.GetSummary)

		r.Get("/settings", h.GetSettings)
		r.Put("/settings", h.UpdateSettings)

		r.Get("/export", h.ExportCSV)
		r.Post("/import", h.ImportCSV)

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/load", h.LoadScenario)
		})
	})

	return r
}
