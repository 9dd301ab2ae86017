package server

import (
	"net/http"
	"time"
)

// HealthResponse represents the JSON response for health endpoints
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Service   string            `json:"service"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// LivenessHandler reports that the server is running
func (s *Server) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	s.logger.DebugContext(r.Context(), "liveness check requested")

	respondJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Service:   serviceName,
	})
}

// ReadinessHandler returns 200 when storage is usable and 503 otherwise
func (s *Server) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Service:   serviceName,
		Checks:    make(map[string]string),
	}

	status := http.StatusOK
	switch {
	case s.storageManager == nil:
		response.Checks["storage"] = StorageMemory
	case s.storageManager.IsAccessible():
		response.Checks["storage"] = "accessible"
	default:
		response.Status = "unhealthy"
		response.Checks["storage"] = "inaccessible"
		status = http.StatusServiceUnavailable
	}

	if s.index != nil {
		response.Checks["search"] = "enabled"
	} else {
		response.Checks["search"] = "disabled"
	}

	if status != http.StatusOK {
		s.logger.ErrorContext(ctx, "readiness check failed", "status", response.Status, "storage", response.Checks["storage"])
	} else {
		s.logger.DebugContext(ctx, "readiness check completed", "status", response.Status)
	}
	respondJSON(w, status, response)
}
