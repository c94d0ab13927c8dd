package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Request submission and reply retrieval
		r.Route("/requests", func(r chi.Router) {
			r.Post("/", s.handleSubmitRequest)
			r.Delete("/{request_id}", s.handleCancelRequest)
		})
		r.Get("/replies/{request_id}", s.handleGetReply)

		// Local object registry and remote catalog store
		r.Get("/registry", s.handleListRegistry)
		r.Route("/endpoints", func(r chi.Router) {
			r.Get("/", s.handleListEndpoints)
			r.Get("/{endpoint}/catalog", s.handleGetCatalog)
		})

		// WebSocket reply stream
		r.Get("/ws", s.handleWS)
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"pending": s.client.PendingCount(),
	})
}
