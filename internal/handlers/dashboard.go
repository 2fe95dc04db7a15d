package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/secondbrain/tracker/internal/database"
)

// DashboardHandler serves the read-side dashboard projections
type DashboardHandler struct {
	dashRepo database.DashboardRepositoryInterface
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashRepo database.DashboardRepositoryInterface) *DashboardHandler {
	return &DashboardHandler{dashRepo: dashRepo}
}

// RegisterRoutes registers dashboard routes on the given router.
// The router should already have the /api prefix.
func (h *DashboardHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/dashboard/stats", h.GetStats).Methods("GET")
	r.HandleFunc("/projects", h.ListProjects).Methods("GET")
}

// GetStats returns aggregate task and time statistics
func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashRepo.Stats(r.Context())
	if err != nil {
		respondRepoError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

// ListProjects returns the distinct project labels in use
func (h *DashboardHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.dashRepo.ListProjects(r.Context())
	if err != nil {
		respondRepoError(w, err)
		return
	}
	if projects == nil {
		projects = []string{}
	}

	respondJSON(w, http.StatusOK, projects)
}
