package database

import (
	"context"

	"github.com/secondbrain/tracker/internal/models"
)

// TaskRepositoryInterface defines the interface for task repository operations
// This interface enables better testability by allowing mock implementations
type TaskRepositoryInterface interface {
	Create(ctx context.Context, in CreateTaskInput) (*models.Task, error)
	GetByID(ctx context.Context, id int64) (*models.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]*models.Task, error)
	Update(ctx context.Context, id int64, in UpdateTaskInput) (*models.Task, error)
	Delete(ctx context.Context, id int64) error
}

// TimerRepositoryInterface defines the interface for the timer engine
type TimerRepositoryInterface interface {
	Start(ctx context.Context, taskID int64) (*models.TimeLogEntry, error)
	Stop(ctx context.Context, taskID int64) (*models.TimeLogEntry, error)
	ListActive(ctx context.Context) ([]models.ActiveTimer, error)
	ListEntries(ctx context.Context, taskID int64) ([]models.TimeLogEntry, error)
}

// NoteRepositoryInterface defines the interface for the note store
type NoteRepositoryInterface interface {
	Create(ctx context.Context, in NoteInput) (*models.Note, error)
	Update(ctx context.Context, noteID int64, in NoteInput) (int64, error)
	GetByID(ctx context.Context, noteID int64) (*models.Note, error)
	List(ctx context.Context, filter NoteFilter) ([]*models.Note, error)
	ListVersions(ctx context.Context, noteID int64) ([]models.NoteVersion, error)
	Restore(ctx context.Context, noteID, version int64) (int64, error)
	Delete(ctx context.Context, noteID int64) error
	ListTags(ctx context.Context) ([]string, error)
}

// AttachmentRepositoryInterface defines the interface for attachment metadata
type AttachmentRepositoryInterface interface {
	Create(ctx context.Context, noteID int64, filename string, size int64, contentType string) (*models.NoteAttachment, error)
	Delete(ctx context.Context, id int64) error
}

// DashboardRepositoryInterface defines the interface for dashboard projections
type DashboardRepositoryInterface interface {
	Stats(ctx context.Context) (*models.DashboardStats, error)
	ListProjects(ctx context.Context) ([]string, error)
}

// Ensure concrete types implement the interfaces
var (
	_ TaskRepositoryInterface       = (*TaskRepository)(nil)
	_ TimerRepositoryInterface      = (*TimerRepository)(nil)
	_ NoteRepositoryInterface       = (*NoteRepository)(nil)
	_ AttachmentRepositoryInterface = (*AttachmentRepository)(nil)
	_ DashboardRepositoryInterface  = (*DashboardRepository)(nil)
)
