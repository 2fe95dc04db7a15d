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

// TaskRepository handles task database operations.
type TaskRepository struct {
	db    *DB
	clock clock.Clock
}

// NewTaskRepository creates a new task repository.
func NewTaskRepository(db *DB, clk clock.Clock) *TaskRepository {
	return &TaskRepository{db: db, clock: clk}
}

// CreateTaskInput carries the fields accepted when creating a task.
// Zero values fall back to documented defaults: empty description and
// project, status "todo", priority "medium", no due date, created_at
// server-assigned. A non-nil CreatedAt is stored verbatim (backdating).
type CreateTaskInput struct {
	Title       string
	Description string
	Status      models.TaskStatus
	Priority    models.TaskPriority
	Project     string
	DueDate     *time.Time
	CreatedAt   *time.Time
}

// UpdateTaskInput carries the fields accepted when updating a task.
type UpdateTaskInput struct {
	Title       string
	Description string
	Status      models.TaskStatus
	Priority    models.TaskPriority
	Project     string
	DueDate     *time.Time
}

// TaskFilter narrows List results. Nil fields match everything.
type TaskFilter struct {
	Status   *models.TaskStatus
	Priority *models.TaskPriority
	Project  *string
}

// Create inserts a new task and returns it.
func (r *TaskRepository) Create(ctx context.Context, in CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if in.Status == "" {
		in.Status = models.TaskStatusTodo
	}
	if in.Priority == "" {
		in.Priority = models.TaskPriorityMedium
	}

	createdAt := r.clock.Now()
	if in.CreatedAt != nil {
		createdAt = *in.CreatedAt
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (title, description, status, priority, project, due_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, in.Title, in.Description, in.Status, in.Priority, in.Project, nullTime(in.DueDate), createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get task id: %w", err)
	}

	return r.GetByID(ctx, id)
}

const taskColumns = `id, title, description, status, priority, project, due_date, created_at, started_at, completed_at, time_spent`

// GetByID retrieves a task by ID.
func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)

	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return task, nil
}

// List returns tasks newest-first, optionally filtered by status, priority
// and project.
func (r *TaskRepository) List(ctx context.Context, filter TaskFilter) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`
	var conds []string
	var args []any

	if filter.Status != nil {
		conds = append(conds, "status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.Priority != nil {
		conds = append(conds, "priority = ?")
		args = append(args, string(*filter.Priority))
	}
	if filter.Project != nil {
		conds = append(conds, "project = ?")
		args = append(args, *filter.Project)
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	return tasks, nil
}

// Update rewrites a task's editable fields. The first transition to
// in-progress stamps started_at and the first transition to done stamps
// completed_at; once set those timestamps are never overwritten, no matter
// how often the status cycles afterwards.
func (r *TaskRepository) Update(ctx context.Context, id int64, in UpdateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if in.Priority == "" {
		in.Priority = models.TaskPriorityMedium
	}

	now := r.clock.Now()

	err := r.db.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE tasks
			SET title = ?, description = ?, status = ?, priority = ?, project = ?, due_date = ?
			WHERE id = ?
		`, in.Title, in.Description, in.Status, in.Priority, in.Project, nullTime(in.DueDate), id)
		if err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("task %d: %w", id, ErrNotFound)
		}

		switch in.Status {
		case models.TaskStatusInProgress:
			_, err = tx.ExecContext(ctx,
				`UPDATE tasks SET started_at = ? WHERE id = ? AND started_at IS NULL`, now, id)
		case models.TaskStatusDone:
			_, err = tx.ExecContext(ctx,
				`UPDATE tasks SET completed_at = ? WHERE id = ? AND completed_at IS NULL`, now, id)
		}
		if err != nil {
			return fmt.Errorf("failed to stamp status transition: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.GetByID(ctx, id)
}

// Delete removes a task together with its time log entries and detaches any
// notes that belonged to it. Children go first so the cascade is complete
// even when foreign keys are not enforced.
func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM time_logs WHERE task_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete time logs: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE notes SET task_id = NULL WHERE task_id = ?`, id); err != nil {
			return fmt.Errorf("failed to detach notes: %w", err)
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("task %d: %w", id, ErrNotFound)
		}

		return nil
	})
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (*models.Task, error) {
	task := &models.Task{}
	var dueDate, startedAt, completedAt sql.NullTime

	err := s.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.Priority,
		&task.Project,
		&dueDate,
		&task.CreatedAt,
		&startedAt,
		&completedAt,
		&task.TimeSpent,
	)
	if err != nil {
		return nil, err
	}

	if dueDate.Valid {
		task.DueDate = &dueDate.Time
	}
	if startedAt.Valid {
		task.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		task.CompletedAt = &completedAt.Time
	}

	return task, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
