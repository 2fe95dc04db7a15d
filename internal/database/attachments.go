package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/secondbrain/tracker/internal/clock"
	"github.com/secondbrain/tracker/internal/models"
)

// AttachmentRepository manages attachment metadata rows. The file bytes
// themselves are stored outside the database; only name, size and type are
// tracked here so GetNote can list them and the note delete cascade can
// claim them.
type AttachmentRepository struct {
	db    *DB
	clock clock.Clock
}

// NewAttachmentRepository creates a new attachment repository.
func NewAttachmentRepository(db *DB, clk clock.Clock) *AttachmentRepository {
	return &AttachmentRepository{db: db, clock: clk}
}

// Create records attachment metadata for a note.
func (r *AttachmentRepository) Create(ctx context.Context, noteID int64, filename string, size int64, contentType string) (*models.NoteAttachment, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, fmt.Errorf("%w: filename is required", ErrInvalidInput)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM notes WHERE id = ?`, noteID).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("note %d: %w", noteID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check note: %w", err)
	}

	now := r.clock.Now()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO note_attachments (note_id, filename, size, content_type, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, noteID, filename, size, contentType, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create attachment: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get attachment id: %w", err)
	}

	return &models.NoteAttachment{
		ID:          id,
		NoteID:      noteID,
		Filename:    filename,
		Size:        size,
		ContentType: contentType,
		CreatedAt:   now,
	}, nil
}

// Delete removes one attachment's metadata.
func (r *AttachmentRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM note_attachments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("attachment %d: %w", id, ErrNotFound)
	}

	return nil
}
