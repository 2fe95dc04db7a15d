package database

import (
	"context"
	"testing"
	"time"
)

// fakeClock is a manually advanced clock so duration math is exact in tests.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// Rewind moves the clock backwards to simulate wall-clock skew.
func (c *fakeClock) Rewind(d time.Duration) {
	c.now = c.now.Add(-d)
}

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

func createTestTask(t *testing.T, repo *TaskRepository, title string) int64 {
	t.Helper()

	task, err := repo.Create(context.Background(), CreateTaskInput{Title: title})
	if err != nil {
		t.Fatalf("failed to create task %q: %v", title, err)
	}
	return task.ID
}

func countOpenEntries(t *testing.T, db *DB) int {
	t.Helper()

	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM time_logs WHERE end_time IS NULL`).Scan(&count)
	if err != nil {
		t.Fatalf("failed to count open entries: %v", err)
	}
	return count
}
