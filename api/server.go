/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions. This
  is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. Metrics:    Prometheus request counter + duration histogram
  5. CORS:       Cross-origin requests for the frontend

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(metricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/store", h.GetStore)
		r.Post("/reset", h.Reset)

		r.Route("/cars", func(r chi.Router) {
			r.Post("/", h.CreateCar)
			r.Put("/{id}", h.UpdateCar)
			r.Delete("/{id}", h.DeleteCar)
		})

		r.Route("/wash-types", func(r chi.Router) {
			r.Post("/", h.CreateWashType)
			r.Put("/{id}", h.UpdateWashType)
			r.Delete("/{id}", h.DeleteWashType)
		})

		r.Route("/companies", func(r chi.Router) {
			r.Get("/unpaid", h.UnpaidByCompany)
			r.Post("/", h.CreateCompany)
			r.Put("/{id}", h.UpdateCompany)
			r.Delete("/{id}", h.DeleteCompany)
		})

		r.Route("/washes", func(r chi.Router) {
			r.Get("/history", h.WashHistory)
			r.Post("/", h.CreateWash)
			r.Put("/{id}", h.UpdateWash)
			r.Delete("/{id}", h.DeleteWash)
		})

		r.Route("/expenses", func(r chi.Router) {
			r.Get("/categories", h.ExpenseCategories)
			r.Post("/", h.CreateExpense)
			r.Put("/{id}", h.UpdateExpense)
			r.Delete("/{id}", h.DeleteExpense)
		})

		r.Get("/price", h.ResolvePrice)
		r.Put("/settings", h.PatchSettings)
		r.Get("/stats", h.GetStats)
		r.Get("/export", h.Export)
		r.Post("/import", h.Import)
	})

	// Operational endpoints
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", metricsHandler())

	return r
}
