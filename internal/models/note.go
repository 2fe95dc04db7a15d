package models

import "time"

// Note represents a piece of linked, versioned documentation. A note may
// optionally belong to a task; the live Title/Content always match the most
// recent NoteVersion (or the state explicitly restored from history).
type Note struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	TaskID    *int64    `json:"task_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Tags        []string         `json:"tags"`
	Attachments []NoteAttachment `json:"attachments,omitempty"`
	LinkedNotes []NoteLinkTarget `json:"linked_notes,omitempty"`
}

// NoteVersion is an immutable snapshot of a note's title and content.
// Versions are numbered from 1 and only ever appended.
type NoteVersion struct {
	ID        int64     `json:"id"`
	NoteID    int64     `json:"note_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
}

// NoteLinkTarget identifies a note reachable over an outgoing link.
type NoteLinkTarget struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// NoteAttachment holds metadata for a file attached to a note. The bytes
// themselves live outside the database.
type NoteAttachment struct {
	ID          int64     `json:"id"`
	NoteID      int64     `json:"note_id"`
	Filename    string    `json:"filename"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
}
