package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// SetupRouter creates and configures a Chi router with all API routes
func (s *Server) SetupRouter() http.Handler {
	r := chi.NewRouter()

	// Built-in Chi middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	// Custom middleware
	r.Use(s.LoggingMiddleware)
	r.Use(EnableCORS)

	r.Get("/api/health", s.HealthHandler)

	// Query routes
	r.Get("/api/tld", s.TLDHandler)
	r.Get("/api/parse", s.ParseHandler)
	r.Get("/api/tlds", s.TLDsHandler)
	r.Get("/api/stats", s.StatsHandler)

	r.Post("/api/reload", s.ReloadHandler)

	return r
}
