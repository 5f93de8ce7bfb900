package handler

import (
	"context"
	"net/http"

	"github.com/shopassist/search-chat/internal/api/response"
)

// Pinger reports whether the search backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheck returns a simple health check response
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{
		"message": "Search Engine Chat API is running",
		"status":  "healthy",
	})
}

// ReadyCheck returns readiness status including search backend connectivity
func ReadyCheck(backend Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := backend.Ping(r.Context()); err != nil {
			response.Error(w, http.StatusServiceUnavailable, "search backend not ready")
			return
		}

		response.OK(w, map[string]string{
			"status": "ready",
		})
	}
}
