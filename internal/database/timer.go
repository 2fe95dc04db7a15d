package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/secondbrain/tracker/internal/clock"
	"github.com/secondbrain/tracker/internal/models"
)

// TimerRepository is the time-tracking engine. It maintains the global
// invariant that at most one time log entry is open across the whole store:
// starting a timer closes every other running timer in the same transaction.
type TimerRepository struct {
	db    *DB
	clock clock.Clock
}

// NewTimerRepository creates a new timer repository.
func NewTimerRepository(db *DB, clk clock.Clock) *TimerRepository {
	return &TimerRepository{db: db, clock: clk}
}

// Start opens a time log entry for the task. Any entry that is open when the
// call begins, for this task or any other, is closed first: its duration is
// computed against the same clock reading used as the new entry's start, and
// the owning task's total is recomputed. The whole sequence is one
// transaction, so no observer ever sees two open entries.
func (r *TimerRepository) Start(ctx context.Context, taskID int64) (*models.TimeLogEntry, error) {
	now := r.clock.Now()
	entry := &models.TimeLogEntry{TaskID: taskID, StartTime: now}

	err := r.db.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM tasks WHERE id = ?`, taskID).Scan(&exists)
		if err == sql.ErrNoRows {
			return fmt.Errorf("task %d: %w", taskID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to check task: %w", err)
		}

		if err := closeOpenEntries(ctx, tx, now); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO time_logs (task_id, start_time) VALUES (?, ?)`, taskID, now)
		if err != nil {
			return fmt.Errorf("failed to open time log entry: %w", err)
		}

		entry.ID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get entry id: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// Stop closes the most recently opened entry for the task. When nothing is
// open it returns ErrNoActiveTimer; no rows are touched in that case.
func (r *TimerRepository) Stop(ctx context.Context, taskID int64) (*models.TimeLogEntry, error) {
	now := r.clock.Now()
	entry := &models.TimeLogEntry{TaskID: taskID}

	err := r.db.withTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			SELECT id, start_time FROM time_logs
			WHERE task_id = ? AND end_time IS NULL
			ORDER BY start_time DESC, id DESC
			LIMIT 1
		`, taskID).Scan(&entry.ID, &entry.StartTime)
		if err == sql.ErrNoRows {
			return fmt.Errorf("task %d: %w", taskID, ErrNoActiveTimer)
		}
		if err != nil {
			return fmt.Errorf("failed to find open entry: %w", err)
		}

		duration := elapsedSeconds(entry.StartTime, now)
		if _, err := tx.ExecContext(ctx,
			`UPDATE time_logs SET end_time = ?, duration = ? WHERE id = ?`,
			now, duration, entry.ID); err != nil {
			return fmt.Errorf("failed to close entry: %w", err)
		}

		entry.EndTime = &now
		entry.Duration = &duration

		return recomputeTimeSpent(ctx, tx, taskID)
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// ListActive returns one row per open entry with the live elapsed seconds
// computed against a single clock reading. Read-only.
func (r *TimerRepository) ListActive(ctx context.Context) ([]models.ActiveTimer, error) {
	now := r.clock.Now()

	rows, err := r.db.QueryContext(ctx, `
		SELECT tl.id, tl.task_id, t.title, t.time_spent, tl.start_time
		FROM time_logs tl
		JOIN tasks t ON t.id = tl.task_id
		WHERE tl.end_time IS NULL
		ORDER BY tl.start_time DESC, tl.id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query active timers: %w", err)
	}
	defer rows.Close()

	var timers []models.ActiveTimer
	for rows.Next() {
		var t models.ActiveTimer
		if err := rows.Scan(&t.EntryID, &t.TaskID, &t.TaskTitle, &t.TimeSpent, &t.StartTime); err != nil {
			return nil, fmt.Errorf("failed to scan active timer: %w", err)
		}
		t.Elapsed = elapsedSeconds(t.StartTime, now)
		timers = append(timers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating active timers: %w", err)
	}

	return timers, nil
}

// ListEntries returns all time log entries for a task, newest first.
func (r *TimerRepository) ListEntries(ctx context.Context, taskID int64) ([]models.TimeLogEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, task_id, start_time, end_time, duration
		FROM time_logs
		WHERE task_id = ?
		ORDER BY start_time DESC, id DESC
	`, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to query time logs: %w", err)
	}
	defer rows.Close()

	var entries []models.TimeLogEntry
	for rows.Next() {
		var e models.TimeLogEntry
		var endTime sql.NullTime
		var duration sql.NullInt64
		if err := rows.Scan(&e.ID, &e.TaskID, &e.StartTime, &endTime, &duration); err != nil {
			return nil, fmt.Errorf("failed to scan time log: %w", err)
		}
		if endTime.Valid {
			e.EndTime = &endTime.Time
		}
		if duration.Valid {
			e.Duration = &duration.Int64
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating time logs: %w", err)
	}

	return entries, nil
}

// closeOpenEntries closes every open entry at the given instant and
// recomputes the total for each affected task.
func closeOpenEntries(ctx context.Context, tx *sql.Tx, now time.Time) error {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, task_id, start_time FROM time_logs WHERE end_time IS NULL`)
	if err != nil {
		return fmt.Errorf("failed to query open entries: %w", err)
	}

	type openEntry struct {
		id     int64
		taskID int64
		start  time.Time
	}
	var open []openEntry
	for rows.Next() {
		var e openEntry
		if err := rows.Scan(&e.id, &e.taskID, &e.start); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan open entry: %w", err)
		}
		open = append(open, e)
	}
	if err := rows.Close(); err != nil {
		return fmt.Errorf("failed to close rows: %w", err)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating open entries: %w", err)
	}

	affected := make(map[int64]struct{}, len(open))
	for _, e := range open {
		if _, err := tx.ExecContext(ctx,
			`UPDATE time_logs SET end_time = ?, duration = ? WHERE id = ?`,
			now, elapsedSeconds(e.start, now), e.id); err != nil {
			return fmt.Errorf("failed to close entry %d: %w", e.id, err)
		}
		affected[e.taskID] = struct{}{}
	}

	for taskID := range affected {
		if err := recomputeTimeSpent(ctx, tx, taskID); err != nil {
			return err
		}
	}

	return nil
}

// recomputeTimeSpent rewrites the task's denormalized total as the full sum
// over its closed entries. Aggregating instead of incrementing keeps the
// total correct even after out-of-band edits to the log.
func recomputeTimeSpent(ctx context.Context, tx *sql.Tx, taskID int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE tasks
		SET time_spent = (
			SELECT COALESCE(SUM(duration), 0) FROM time_logs
			WHERE task_id = ? AND end_time IS NOT NULL
		)
		WHERE id = ?
	`, taskID, taskID)
	if err != nil {
		return fmt.Errorf("failed to recompute time spent for task %d: %w", taskID, err)
	}
	return nil
}

// elapsedSeconds floors the delta to whole seconds. A skewed clock can make
// end precede start; the result is clamped to zero rather than stored
// negative.
func elapsedSeconds(start, end time.Time) int64 {
	secs := int64(end.Sub(start) / time.Second)
	if secs < 0 {
		return 0
	}
	return secs
}
