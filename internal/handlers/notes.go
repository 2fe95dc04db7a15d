package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/secondbrain/tracker/internal/database"
	"github.com/secondbrain/tracker/internal/models"
	"github.com/secondbrain/tracker/internal/validation"
)

// NoteHandler handles note-related requests
type NoteHandler struct {
	noteRepo database.NoteRepositoryInterface
}

// NewNoteHandler creates a new note handler
func NewNoteHandler(noteRepo database.NoteRepositoryInterface) *NoteHandler {
	return &NoteHandler{noteRepo: noteRepo}
}

// RegisterRoutes registers note routes on the given router.
// The router should already have the /api prefix.
func (h *NoteHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/notes", h.ListNotes).Methods("GET")
	r.HandleFunc("/notes", h.CreateNote).Methods("POST")
	r.HandleFunc("/notes/{id}", h.GetNote).Methods("GET")
	r.HandleFunc("/notes/{id}", h.UpdateNote).Methods("PUT")
	r.HandleFunc("/notes/{id}", h.DeleteNote).Methods("DELETE")
	r.HandleFunc("/notes/{id}/versions", h.ListVersions).Methods("GET")
	r.HandleFunc("/notes/{id}/versions/{version}/restore", h.RestoreVersion).Methods("POST")
	r.HandleFunc("/tags", h.ListTags).Methods("GET")
}

// NoteRequest represents a create or update note request. Tags and
// linked_note_ids are full replacements: the stored sets end up exactly as
// submitted.
type NoteRequest struct {
	Title         string   `json:"title" validate:"required,min=1,max=500"`
	Content       string   `json:"content"`
	Tags          []string `json:"tags"`
	LinkedNoteIDs []int64  `json:"linked_note_ids"`
	TaskID        *int64   `json:"task_id,omitempty"`
}

// UpdateNoteResponse carries the version number appended by an update
type UpdateNoteResponse struct {
	NoteID  int64 `json:"note_id"`
	Version int64 `json:"version"`
}

// ListNotes lists notes, optionally filtered by tag or owning task
func (h *NoteHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	filter := database.NoteFilter{}

	if tag := r.URL.Query().Get("tag"); tag != "" {
		filter.Tag = &tag
	}
	if t := r.URL.Query().Get("task_id"); t != "" {
		taskID, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid task_id")
			return
		}
		filter.TaskID = &taskID
	}

	notes, err := h.noteRepo.List(r.Context(), filter)
	if err != nil {
		respondRepoError(w, err)
		return
	}
	if notes == nil {
		notes = []*models.Note{}
	}

	respondJSON(w, http.StatusOK, notes)
}

// CreateNote creates a note with its tags, version 1 and links
func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req NoteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	req.Title = validation.SanitizeText(req.Title)
	if req.Title == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Title is required and cannot be empty after sanitization")
		return
	}

	note, err := h.noteRepo.Create(r.Context(), database.NoteInput{
		Title:         req.Title,
		Content:       req.Content,
		Tags:          req.Tags,
		LinkedNoteIDs: req.LinkedNoteIDs,
		TaskID:        req.TaskID,
	})
	if err != nil {
		respondRepoError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, note)
}

// GetNote retrieves a note with tags, attachments and outgoing links
func (h *NoteHandler) GetNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid note ID")
		return
	}

	note, err := h.noteRepo.GetByID(r.Context(), id)
	if err != nil {
		respondRepoError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, note)
}

// UpdateNote rewrites a note, replacing its tag and link sets and appending
// a new version
func (h *NoteHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid note ID")
		return
	}

	var req NoteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	req.Title = validation.SanitizeText(req.Title)
	if req.Title == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Title cannot be empty after sanitization")
		return
	}

	version, err := h.noteRepo.Update(r.Context(), id, database.NoteInput{
		Title:         req.Title,
		Content:       req.Content,
		Tags:          req.Tags,
		LinkedNoteIDs: req.LinkedNoteIDs,
		TaskID:        req.TaskID,
	})
	if err != nil {
		respondRepoError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, UpdateNoteResponse{NoteID: id, Version: version})
}

// DeleteNote removes a note and all of its children
func (h *NoteHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid note ID")
		return
	}

	if err := h.noteRepo.Delete(r.Context(), id); err != nil {
		respondRepoError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListVersions returns the note's edit history, newest first
func (h *NoteHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid note ID")
		return
	}

	versions, err := h.noteRepo.ListVersions(r.Context(), id)
	if err != nil {
		respondRepoError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, versions)
}

// RestoreVersion copies a historical version onto the live note and appends
// it as a new version
func (h *NoteHandler) RestoreVersion(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid note ID")
		return
	}
	version, err := pathID(r, "version")
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid version number")
		return
	}

	newVersion, err := h.noteRepo.Restore(r.Context(), id, version)
	if err != nil {
		respondRepoError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, UpdateNoteResponse{NoteID: id, Version: newVersion})
}

// ListTags returns the distinct tags across all notes
func (h *NoteHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.noteRepo.ListTags(r.Context())
	if err != nil {
		respondRepoError(w, err)
		return
	}
	if tags == nil {
		tags = []string{}
	}

	respondJSON(w, http.StatusOK, tags)
}
