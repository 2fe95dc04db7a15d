package database

import (
	"context"
	"fmt"

	"github.com/secondbrain/tracker/internal/clock"
	"github.com/secondbrain/tracker/internal/models"
)

// DashboardRepository serves the read-side projections behind the dashboard
// view. Pure aggregation queries; nothing here mutates state.
type DashboardRepository struct {
	db    *DB
	clock clock.Clock
}

// NewDashboardRepository creates a new dashboard repository.
func NewDashboardRepository(db *DB, clk clock.Clock) *DashboardRepository {
	return &DashboardRepository{db: db, clock: clk}
}

// Stats aggregates task counts by status, tracked time totals and the
// last-7-day creation/completion series grouped by priority.
func (r *DashboardRepository) Stats(ctx context.Context) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{StatusCounts: map[string]int64{}}
	today := r.clock.Now().Format("2006-01-02")
	weekAgo := r.clock.Now().AddDate(0, 0, -6).Format("2006-01-02")

	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM tasks GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to query status counts: %w", err)
	}
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		stats.StatusCounts[status] = count
	}
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("failed to close rows: %w", err)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status counts: %w", err)
	}

	if err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(time_spent), 0) FROM tasks`).Scan(&stats.TotalTime); err != nil {
		return nil, fmt.Errorf("failed to query total time: %w", err)
	}

	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE DATE(completed_at) = ?`, today).Scan(&stats.CompletedToday); err != nil {
		return nil, fmt.Errorf("failed to query completed today: %w", err)
	}

	if err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(AVG(time_spent), 0) FROM tasks WHERE time_spent > 0`).Scan(&stats.AverageTime); err != nil {
		return nil, fmt.Errorf("failed to query average time: %w", err)
	}

	stats.DailyCompletion, err = r.dailyCounts(ctx, `
		SELECT DATE(completed_at), priority, COUNT(*)
		FROM tasks
		WHERE completed_at IS NOT NULL AND DATE(completed_at) >= ?
		GROUP BY DATE(completed_at), priority
		ORDER BY DATE(completed_at)
	`, weekAgo)
	if err != nil {
		return nil, err
	}

	stats.DailyCreated, err = r.dailyCounts(ctx, `
		SELECT DATE(created_at), priority, COUNT(*)
		FROM tasks
		WHERE DATE(created_at) >= ?
		GROUP BY DATE(created_at), priority
		ORDER BY DATE(created_at)
	`, weekAgo)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// ListProjects returns the distinct non-empty project labels in use.
func (r *DashboardRepository) ListProjects(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT project FROM tasks WHERE project != '' ORDER BY project`)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var projects []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}

	return projects, nil
}

func (r *DashboardRepository) dailyCounts(ctx context.Context, query string, args ...any) ([]models.DailyCount, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily counts: %w", err)
	}
	defer rows.Close()

	var counts []models.DailyCount
	for rows.Next() {
		var c models.DailyCount
		if err := rows.Scan(&c.Date, &c.Priority, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan daily count: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily counts: %w", err)
	}

	return counts, nil
}
