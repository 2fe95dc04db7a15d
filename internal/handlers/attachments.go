package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/secondbrain/tracker/internal/database"
	"github.com/secondbrain/tracker/internal/validation"
)

// AttachmentHandler handles attachment metadata requests
type AttachmentHandler struct {
	attachmentRepo database.AttachmentRepositoryInterface
}

// NewAttachmentHandler creates a new attachment handler
func NewAttachmentHandler(attachmentRepo database.AttachmentRepositoryInterface) *AttachmentHandler {
	return &AttachmentHandler{attachmentRepo: attachmentRepo}
}

// RegisterRoutes registers attachment routes on the given router.
// The router should already have the /api prefix.
func (h *AttachmentHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/notes/{id}/attachments", h.CreateAttachment).Methods("POST")
	r.HandleFunc("/attachments/{id}", h.DeleteAttachment).Methods("DELETE")
}

// CreateAttachmentRequest records metadata for a file stored outside the
// database.
type CreateAttachmentRequest struct {
	Filename    string `json:"filename" validate:"required,min=1,max=500"`
	Size        int64  `json:"size" validate:"gte=0"`
	ContentType string `json:"content_type"`
}

// CreateAttachment records attachment metadata under a note
func (h *AttachmentHandler) CreateAttachment(w http.ResponseWriter, r *http.Request) {
	noteID, err := pathID(r, "id")
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid note ID")
		return
	}

	var req CreateAttachmentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	req.Filename = validation.SanitizeText(req.Filename)
	if req.Filename == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Filename is required and cannot be empty after sanitization")
		return
	}

	attachment, err := h.attachmentRepo.Create(r.Context(), noteID, req.Filename, req.Size, req.ContentType)
	if err != nil {
		respondRepoError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, attachment)
}

// DeleteAttachment removes one attachment's metadata
func (h *AttachmentHandler) DeleteAttachment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid attachment ID")
		return
	}

	if err := h.attachmentRepo.Delete(r.Context(), id); err != nil {
		respondRepoError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
