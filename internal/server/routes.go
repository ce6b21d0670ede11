package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	r := s.router

	r.Get("/health", s.health)

	r.Route("/sync", func(r chi.Router) {
		r.Post("/session", s.syncSession)
		r.Post("/message", s.syncMessage)
		r.Get("/status", s.syncStatus)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
