package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/secondbrain/tracker/internal/clock"
	"github.com/secondbrain/tracker/internal/models"
)

// NoteRepository manages notes together with their tag set, append-only
// version history and outgoing link edges. Every content-affecting write
// appends exactly one version row inside the same transaction as the note
// update, so the history can never lag behind the live note.
type NoteRepository struct {
	db    *DB
	clock clock.Clock
}

// NewNoteRepository creates a new note repository.
func NewNoteRepository(db *DB, clk clock.Clock) *NoteRepository {
	return &NoteRepository{db: db, clock: clk}
}

// NoteInput carries the fields accepted when creating or updating a note.
// Tags and LinkedNoteIDs are replace-on-write sets: the stored state after
// the call is exactly what the caller submitted, empty meaning none.
type NoteInput struct {
	Title         string
	Content       string
	Tags          []string
	LinkedNoteIDs []int64
	TaskID        *int64
}

// NoteFilter narrows List results. Nil fields match everything.
type NoteFilter struct {
	Tag    *string
	TaskID *int64
}

// Create inserts a note along with its tags, version 1 and links, all in
// one transaction.
func (r *NoteRepository) Create(ctx context.Context, in NoteInput) (*models.Note, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	now := r.clock.Now()
	var noteID int64

	err := r.db.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO notes (title, content, task_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)
		`, in.Title, in.Content, nullInt(in.TaskID), now, now)
		if err != nil {
			return fmt.Errorf("failed to create note: %w", err)
		}

		noteID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get note id: %w", err)
		}

		if err := insertTags(ctx, tx, noteID, in.Tags); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO note_versions (note_id, title, content, version, created_at)
			VALUES (?, ?, ?, 1, ?)
		`, noteID, in.Title, in.Content, now); err != nil {
			return fmt.Errorf("failed to create version 1: %w", err)
		}

		return insertLinks(ctx, tx, noteID, in.LinkedNoteIDs)
	})
	if err != nil {
		return nil, err
	}

	return r.GetByID(ctx, noteID)
}

// Update rewrites the note's title, content and owner, replaces the tag and
// link sets wholesale, and appends a new version numbered one past the
// current maximum. The version is appended even when title and content are
// byte-identical to the previous one; the store does not diff. Returns the
// new version number.
func (r *NoteRepository) Update(ctx context.Context, noteID int64, in NoteInput) (int64, error) {
	if strings.TrimSpace(in.Title) == "" {
		return 0, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	now := r.clock.Now()
	var newVersion int64

	err := r.db.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE notes SET title = ?, content = ?, task_id = ?, updated_at = ?
			WHERE id = ?
		`, in.Title, in.Content, nullInt(in.TaskID), now, noteID)
		if err != nil {
			return fmt.Errorf("failed to update note: %w", err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("note %d: %w", noteID, ErrNotFound)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM note_tags WHERE note_id = ?`, noteID); err != nil {
			return fmt.Errorf("failed to clear tags: %w", err)
		}
		if err := insertTags(ctx, tx, noteID, in.Tags); err != nil {
			return err
		}

		newVersion, err = appendVersion(ctx, tx, noteID, in.Title, in.Content, now)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM note_links WHERE source_note_id = ?`, noteID); err != nil {
			return fmt.Errorf("failed to clear links: %w", err)
		}
		return insertLinks(ctx, tx, noteID, in.LinkedNoteIDs)
	})
	if err != nil {
		return 0, err
	}

	return newVersion, nil
}

// GetByID returns the note with its tags, attachment metadata and outgoing
// links. Incoming links are not surfaced by this read.
func (r *NoteRepository) GetByID(ctx context.Context, noteID int64) (*models.Note, error) {
	note := &models.Note{}
	var taskID sql.NullInt64

	err := r.db.QueryRowContext(ctx, `
		SELECT id, title, content, task_id, created_at, updated_at
		FROM notes WHERE id = ?
	`, noteID).Scan(&note.ID, &note.Title, &note.Content, &taskID, &note.CreatedAt, &note.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("note %d: %w", noteID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	if taskID.Valid {
		note.TaskID = &taskID.Int64
	}

	note.Tags, err = r.tagsFor(ctx, noteID)
	if err != nil {
		return nil, err
	}

	note.Attachments, err = r.attachmentsFor(ctx, noteID)
	if err != nil {
		return nil, err
	}

	note.LinkedNotes, err = r.linksFor(ctx, noteID)
	if err != nil {
		return nil, err
	}

	return note, nil
}

// List returns notes ordered by most recently updated, with their tags
// loaded, optionally filtered by tag or owning task.
func (r *NoteRepository) List(ctx context.Context, filter NoteFilter) ([]*models.Note, error) {
	query := `
		SELECT DISTINCT n.id, n.title, n.content, n.task_id, n.created_at, n.updated_at
		FROM notes n
	`
	var conds []string
	var args []any

	if filter.Tag != nil {
		query += " JOIN note_tags nt ON nt.note_id = n.id"
		conds = append(conds, "nt.tag = ?")
		args = append(args, *filter.Tag)
	}
	if filter.TaskID != nil {
		conds = append(conds, "n.task_id = ?")
		args = append(args, *filter.TaskID)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY n.updated_at DESC, n.id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	var notes []*models.Note
	for rows.Next() {
		note := &models.Note{}
		var taskID sql.NullInt64
		if err := rows.Scan(&note.ID, &note.Title, &note.Content, &taskID, &note.CreatedAt, &note.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		if taskID.Valid {
			note.TaskID = &taskID.Int64
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notes: %w", err)
	}

	for _, note := range notes {
		note.Tags, err = r.tagsFor(ctx, note.ID)
		if err != nil {
			return nil, err
		}
	}

	return notes, nil
}

// ListVersions returns the note's full history, newest version first.
// An existing note always has at least version 1.
func (r *NoteRepository) ListVersions(ctx context.Context, noteID int64) ([]models.NoteVersion, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, note_id, title, content, version, created_at
		FROM note_versions
		WHERE note_id = ?
		ORDER BY version DESC
	`, noteID)
	if err != nil {
		return nil, fmt.Errorf("failed to query versions: %w", err)
	}
	defer rows.Close()

	var versions []models.NoteVersion
	for rows.Next() {
		var v models.NoteVersion
		if err := rows.Scan(&v.ID, &v.NoteID, &v.Title, &v.Content, &v.Version, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan version: %w", err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating versions: %w", err)
	}

	if len(versions) == 0 {
		return nil, fmt.Errorf("note %d: %w", noteID, ErrNotFound)
	}

	return versions, nil
}

// Restore copies the given version's title and content onto the live note
// and appends that content as a brand-new version. History is append-only:
// restoring never rewinds or deletes anything. Returns the new version
// number.
func (r *NoteRepository) Restore(ctx context.Context, noteID, version int64) (int64, error) {
	now := r.clock.Now()
	var newVersion int64

	err := r.db.withTx(ctx, func(tx *sql.Tx) error {
		var title, content string
		err := tx.QueryRowContext(ctx, `
			SELECT title, content FROM note_versions
			WHERE note_id = ? AND version = ?
		`, noteID, version).Scan(&title, &content)
		if err == sql.ErrNoRows {
			return fmt.Errorf("note %d version %d: %w", noteID, version, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to get version: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE notes SET title = ?, content = ?, updated_at = ? WHERE id = ?
		`, title, content, now, noteID); err != nil {
			return fmt.Errorf("failed to restore note: %w", err)
		}

		newVersion, err = appendVersion(ctx, tx, noteID, title, content, now)
		return err
	})
	if err != nil {
		return 0, err
	}

	return newVersion, nil
}

// Delete removes the note and everything hanging off it: tags, versions,
// attachment metadata and links in both directions. Children go first so
// the cascade is complete even when foreign keys are not enforced.
func (r *NoteRepository) Delete(ctx context.Context, noteID int64) error {
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		for _, stmt := range []string{
			`DELETE FROM note_tags WHERE note_id = ?`,
			`DELETE FROM note_versions WHERE note_id = ?`,
			`DELETE FROM note_attachments WHERE note_id = ?`,
		} {
			if _, err := tx.ExecContext(ctx, stmt, noteID); err != nil {
				return fmt.Errorf("failed to delete note children: %w", err)
			}
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM note_links WHERE source_note_id = ? OR target_note_id = ?`,
			noteID, noteID); err != nil {
			return fmt.Errorf("failed to delete note links: %w", err)
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, noteID)
		if err != nil {
			return fmt.Errorf("failed to delete note: %w", err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("note %d: %w", noteID, ErrNotFound)
		}

		return nil
	})
}

// ListTags returns the distinct tags across all notes in lexicographic
// order.
func (r *NoteRepository) ListTags(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT tag FROM note_tags ORDER BY tag`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tags: %w", err)
	}

	return tags, nil
}

func (r *NoteRepository) tagsFor(ctx context.Context, noteID int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT tag FROM note_tags WHERE note_id = ? ORDER BY tag`, noteID)
	if err != nil {
		return nil, fmt.Errorf("failed to query note tags: %w", err)
	}
	defer rows.Close()

	tags := []string{}
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("failed to scan note tag: %w", err)
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

func (r *NoteRepository) attachmentsFor(ctx context.Context, noteID int64) ([]models.NoteAttachment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, note_id, filename, size, content_type, created_at
		FROM note_attachments
		WHERE note_id = ?
		ORDER BY created_at DESC, id DESC
	`, noteID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attachments: %w", err)
	}
	defer rows.Close()

	var attachments []models.NoteAttachment
	for rows.Next() {
		var a models.NoteAttachment
		if err := rows.Scan(&a.ID, &a.NoteID, &a.Filename, &a.Size, &a.ContentType, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		attachments = append(attachments, a)
	}
	return attachments, rows.Err()
}

func (r *NoteRepository) linksFor(ctx context.Context, noteID int64) ([]models.NoteLinkTarget, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT n.id, n.title
		FROM note_links nl
		JOIN notes n ON n.id = nl.target_note_id
		WHERE nl.source_note_id = ?
		ORDER BY n.id
	`, noteID)
	if err != nil {
		return nil, fmt.Errorf("failed to query links: %w", err)
	}
	defer rows.Close()

	var targets []models.NoteLinkTarget
	for rows.Next() {
		var t models.NoteLinkTarget
		if err := rows.Scan(&t.ID, &t.Title); err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		targets = append(targets, t)
	}
	return targets, rows.Err()
}

func insertTags(ctx context.Context, tx *sql.Tx, noteID int64, tags []string) error {
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO note_tags (note_id, tag) VALUES (?, ?)`, noteID, tag); err != nil {
			return fmt.Errorf("failed to insert tag %q: %w", tag, err)
		}
	}
	return nil
}

// insertLinks writes the outgoing edge set. Self-links are skipped and
// duplicate targets collapse to a single edge.
func insertLinks(ctx context.Context, tx *sql.Tx, noteID int64, targets []int64) error {
	seen := make(map[int64]struct{}, len(targets))
	for _, target := range targets {
		if target == noteID {
			continue
		}
		if _, ok := seen[target]; ok {
			continue
		}
		seen[target] = struct{}{}

		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO note_links (source_note_id, target_note_id) VALUES (?, ?)`,
			noteID, target); err != nil {
			return fmt.Errorf("failed to insert link %d->%d: %w", noteID, target, err)
		}
	}
	return nil
}

func appendVersion(ctx context.Context, tx *sql.Tx, noteID int64, title, content string, now time.Time) (int64, error) {
	var newVersion int64
	err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) + 1 FROM note_versions WHERE note_id = ?`,
		noteID).Scan(&newVersion)
	if err != nil {
		return 0, fmt.Errorf("failed to compute next version: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO note_versions (note_id, title, content, version, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, noteID, title, content, newVersion, now); err != nil {
		return 0, fmt.Errorf("failed to append version: %w", err)
	}

	return newVersion, nil
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
