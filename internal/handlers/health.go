package handlers

import (
	"net/http"

	"github.com/secondbrain/tracker/internal/database"
)

// HealthChecker reports service health including database reachability
type HealthChecker struct {
	db *database.DB
}

// NewHealthChecker creates a new health checker
func NewHealthChecker(db *database.DB) *HealthChecker {
	return &HealthChecker{db: db}
}

// HealthCheck verifies the database responds and reports overall status
func (h *HealthChecker) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "database unreachable")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
