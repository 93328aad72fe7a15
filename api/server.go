/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the chart frontend

ROUTE GROUPS:
  /api/views/*    Aggregate views (status, age, religion, district, gender)
  /api/preview    Raw rows preview
  /api/refresh    Cache invalidation
  /api/stages     View parameter vocabularies
  /api/statuses
  /api/health     Liveness

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
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/views", func(r chi.Router) {
			r.Get("/status", h.StatusView)
			r.Get("/age-groups", h.AgeGroupsView)
			r.Get("/religion", h.ReligionView)
			r.Get("/district", h.DistrictView)
			r.Get("/gender", h.GenderView)
		})

		r.Get("/preview", h.Preview)
		r.Post("/refresh", h.Refresh)

		r.Get("/stages", h.ListStages)
		r.Get("/statuses", h.ListStatuses)
		r.Get("/health", h.Health)
	})

	// Landing page for anyone hitting the API root in a browser.
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Loan Approval Analytics</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Loan Approval Analytics API</h1>
<h2>Views</h2>
<ul>
<li><a href="/api/views/status">/api/views/status</a> - Status counts (stage, statuses params)</li>
<li><a href="/api/views/age-groups">/api/views/age-groups</a> - Age histogram</li>
<li><a href="/api/views/religion">/api/views/religion</a> - Religion breakdown</li>
<li><a href="/api/views/district">/api/views/district</a> - District breakdown</li>
<li><a href="/api/views/gender">/api/views/gender</a> - Gender breakdown</li>
</ul>
<h2>Dataset</h2>
<ul>
<li><a href="/api/preview">/api/preview</a> - Raw rows preview</li>
<li>POST /api/refresh - Drop cached snapshot</li>
</ul>
</body>
</html>`))
	})

	return r
}
