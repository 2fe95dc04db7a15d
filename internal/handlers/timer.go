package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/secondbrain/tracker/internal/database"
	"github.com/secondbrain/tracker/internal/models"
)

// TimerHandler handles timer-related requests
type TimerHandler struct {
	timerRepo database.TimerRepositoryInterface
}

// NewTimerHandler creates a new timer handler
func NewTimerHandler(timerRepo database.TimerRepositoryInterface) *TimerHandler {
	return &TimerHandler{timerRepo: timerRepo}
}

// RegisterRoutes registers timer routes on the given router.
// The router should already have the /api prefix.
func (h *TimerHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/tasks/{id}/start-timer", h.StartTimer).Methods("POST")
	r.HandleFunc("/tasks/{id}/stop-timer", h.StopTimer).Methods("POST")
	r.HandleFunc("/tasks/{id}/time-logs", h.ListTimeLogs).Methods("GET")
	r.HandleFunc("/timers/active", h.ListActiveTimers).Methods("GET")
}

// StopTimerResponse reports the outcome of a stop request. Stopping a task
// with no running timer is a valid result, not a fault: Active stays false
// and Entry is nil.
type StopTimerResponse struct {
	Active bool                 `json:"active"`
	Entry  *models.TimeLogEntry `json:"entry,omitempty"`
}

// StartTimer opens a time log entry for the task, implicitly stopping any
// other running timer
func (h *TimerHandler) StartTimer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid task ID")
		return
	}

	entry, err := h.timerRepo.Start(r.Context(), id)
	if err != nil {
		respondRepoError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, entry)
}

// StopTimer closes the task's open time log entry, if any
func (h *TimerHandler) StopTimer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid task ID")
		return
	}

	entry, err := h.timerRepo.Stop(r.Context(), id)
	if errors.Is(err, database.ErrNoActiveTimer) {
		respondJSON(w, http.StatusOK, StopTimerResponse{Active: false})
		return
	}
	if err != nil {
		respondRepoError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, StopTimerResponse{Active: true, Entry: entry})
}

// ListTimeLogs returns the task's time log entries, newest first
func (h *TimerHandler) ListTimeLogs(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid task ID")
		return
	}

	entries, err := h.timerRepo.ListEntries(r.Context(), id)
	if err != nil {
		respondRepoError(w, err)
		return
	}
	if entries == nil {
		entries = []models.TimeLogEntry{}
	}

	respondJSON(w, http.StatusOK, entries)
}

// ListActiveTimers returns every running timer with live elapsed seconds
func (h *TimerHandler) ListActiveTimers(w http.ResponseWriter, r *http.Request) {
	timers, err := h.timerRepo.ListActive(r.Context())
	if err != nil {
		respondRepoError(w, err)
		return
	}
	if timers == nil {
		timers = []models.ActiveTimer{}
	}

	respondJSON(w, http.StatusOK, timers)
}
