package database

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestTimerStart_SingleOpenEntrySystemWide(t *testing.T) {
	db := newTestDB(t)
	clk := newFakeClock()
	tasks := NewTaskRepository(db, clk)
	timers := NewTimerRepository(db, clk)
	ctx := context.Background()

	t1 := createTestTask(t, tasks, "first")
	t2 := createTestTask(t, tasks, "second")
	t3 := createTestTask(t, tasks, "third")

	for _, id := range []int64{t1, t2, t3, t1, t2} {
		if _, err := timers.Start(ctx, id); err != nil {
			t.Fatalf("Start(%d) failed: %v", id, err)
		}
		if got := countOpenEntries(t, db); got != 1 {
			t.Fatalf("after Start(%d): %d open entries, want 1", id, got)
		}
		clk.Advance(10 * time.Second)
	}
}

func TestTimerStart_ImplicitlyStopsOtherTask(t *testing.T) {
	db := newTestDB(t)
	clk := newFakeClock()
	tasks := NewTaskRepository(db, clk)
	timers := NewTimerRepository(db, clk)
	ctx := context.Background()

	t1 := createTestTask(t, tasks, "Write spec")
	t2 := createTestTask(t, tasks, "Review spec")

	if _, err := timers.Start(ctx, t1); err != nil {
		t.Fatalf("Start(t1) failed: %v", err)
	}

	clk.Advance(100 * time.Second)
	startOfT2 := clk.Now()

	entry, err := timers.Start(ctx, t2)
	if err != nil {
		t.Fatalf("Start(t2) failed: %v", err)
	}
	if !entry.StartTime.Equal(startOfT2) {
		t.Errorf("t2 entry starts at %v, want %v", entry.StartTime, startOfT2)
	}

	task1, err := tasks.GetByID(ctx, t1)
	if err != nil {
		t.Fatalf("GetByID(t1) failed: %v", err)
	}
	if task1.TimeSpent != 100 {
		t.Errorf("t1 accumulated %d seconds, want 100", task1.TimeSpent)
	}

	entries, err := timers.ListEntries(ctx, t1)
	if err != nil {
		t.Fatalf("ListEntries(t1) failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("t1 has %d entries, want 1", len(entries))
	}
	if entries[0].EndTime == nil || !entries[0].EndTime.Equal(startOfT2) {
		t.Errorf("t1 entry not closed at the moment t2 started: %+v", entries[0])
	}

	active, err := timers.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive failed: %v", err)
	}
	if len(active) != 1 || active[0].TaskID != t2 {
		t.Fatalf("active timers = %+v, want exactly one for t2", active)
	}
}

func TestTimerStart_RestartsRunningTask(t *testing.T) {
	db := newTestDB(t)
	clk := newFakeClock()
	tasks := NewTaskRepository(db, clk)
	timers := NewTimerRepository(db, clk)
	ctx := context.Background()

	id := createTestTask(t, tasks, "restartable")

	if _, err := timers.Start(ctx, id); err != nil {
		t.Fatalf("first Start failed: %v", err)
	}
	clk.Advance(30 * time.Second)
	if _, err := timers.Start(ctx, id); err != nil {
		t.Fatalf("second Start failed: %v", err)
	}

	if got := countOpenEntries(t, db); got != 1 {
		t.Fatalf("%d open entries after restart, want 1", got)
	}

	task, err := tasks.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if task.TimeSpent != 30 {
		t.Errorf("accumulated %d seconds after restart, want 30", task.TimeSpent)
	}
}

func TestTimerStart_UnknownTask(t *testing.T) {
	db := newTestDB(t)
	clk := newFakeClock()
	timers := NewTimerRepository(db, clk)

	_, err := timers.Start(context.Background(), 9999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Start on unknown task returned %v, want ErrNotFound", err)
	}
	if got := countOpenEntries(t, db); got != 0 {
		t.Errorf("%d open entries created for unknown task, want 0", got)
	}
}

func TestTimerStop_ClosesEntryAndAggregates(t *testing.T) {
	db := newTestDB(t)
	clk := newFakeClock()
	tasks := NewTaskRepository(db, clk)
	timers := NewTimerRepository(db, clk)
	ctx := context.Background()

	id := createTestTask(t, tasks, "tracked")

	if _, err := timers.Start(ctx, id); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	clk.Advance(50 * time.Second)

	entry, err := timers.Stop(ctx, id)
	if err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if entry.Duration == nil || *entry.Duration != 50 {
		t.Fatalf("closed entry duration = %v, want 50", entry.Duration)
	}

	if _, err := timers.Start(ctx, id); err != nil {
		t.Fatalf("second Start failed: %v", err)
	}
	clk.Advance(25 * time.Second)
	if _, err := timers.Stop(ctx, id); err != nil {
		t.Fatalf("second Stop failed: %v", err)
	}

	task, err := tasks.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if task.TimeSpent != 75 {
		t.Errorf("accumulated %d seconds, want 75", task.TimeSpent)
	}

	// The denormalized total must equal the sum over closed entries.
	var sum int64
	err = db.QueryRow(`SELECT COALESCE(SUM(duration), 0) FROM time_logs WHERE task_id = ? AND end_time IS NOT NULL`, id).Scan(&sum)
	if err != nil {
		t.Fatalf("failed to sum durations: %v", err)
	}
	if task.TimeSpent != sum {
		t.Errorf("time_spent %d diverges from closed-entry sum %d", task.TimeSpent, sum)
	}
}

func TestTimerStop_NoActiveTimer(t *testing.T) {
	db := newTestDB(t)
	clk := newFakeClock()
	tasks := NewTaskRepository(db, clk)
	timers := NewTimerRepository(db, clk)
	ctx := context.Background()

	id := createTestTask(t, tasks, "idle")

	_, err := timers.Stop(ctx, id)
	if !errors.Is(err, ErrNoActiveTimer) {
		t.Fatalf("Stop on idle task returned %v, want ErrNoActiveTimer", err)
	}

	var logCount int
	if err := db.QueryRow(`SELECT COUNT(*) FROM time_logs`).Scan(&logCount); err != nil {
		t.Fatalf("failed to count time logs: %v", err)
	}
	if logCount != 0 {
		t.Errorf("Stop on idle task mutated time_logs: %d rows", logCount)
	}

	task, err := tasks.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if task.TimeSpent != 0 {
		t.Errorf("Stop on idle task changed time_spent to %d", task.TimeSpent)
	}
}

func TestTimerStop_ClockSkewClampsToZero(t *testing.T) {
	db := newTestDB(t)
	clk := newFakeClock()
	tasks := NewTaskRepository(db, clk)
	timers := NewTimerRepository(db, clk)
	ctx := context.Background()

	id := createTestTask(t, tasks, "skewed")

	if _, err := timers.Start(ctx, id); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	clk.Rewind(10 * time.Second)

	entry, err := timers.Stop(ctx, id)
	if err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if entry.Duration == nil || *entry.Duration != 0 {
		t.Errorf("skewed duration = %v, want clamp to 0", entry.Duration)
	}

	task, err := tasks.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if task.TimeSpent != 0 {
		t.Errorf("time_spent = %d after skewed stop, want 0", task.TimeSpent)
	}
}

func TestTimerListActive_LiveElapsed(t *testing.T) {
	db := newTestDB(t)
	clk := newFakeClock()
	tasks := NewTaskRepository(db, clk)
	timers := NewTimerRepository(db, clk)
	ctx := context.Background()

	id := createTestTask(t, tasks, "running")

	if _, err := timers.Start(ctx, id); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	clk.Advance(42 * time.Second)

	active, err := timers.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive failed: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("%d active timers, want 1", len(active))
	}
	if active[0].Elapsed != 42 {
		t.Errorf("elapsed = %d, want 42", active[0].Elapsed)
	}
	if active[0].TaskTitle != "running" {
		t.Errorf("task title = %q, want %q", active[0].TaskTitle, "running")
	}
}

func TestTimer_AccumulatedAlwaysSumOfClosed(t *testing.T) {
	db := newTestDB(t)
	clk := newFakeClock()
	tasks := NewTaskRepository(db, clk)
	timers := NewTimerRepository(db, clk)
	ctx := context.Background()

	t1 := createTestTask(t, tasks, "a")
	t2 := createTestTask(t, tasks, "b")

	// Mixed sequence of explicit and implicit stops.
	steps := []struct {
		taskID  int64
		advance time.Duration
		stop    bool
	}{
		{t1, 10 * time.Second, false},
		{t2, 20 * time.Second, false}, // implicit stop of t1
		{t2, 5 * time.Second, true},
		{t1, 7 * time.Second, false},
		{t2, 3 * time.Second, false}, // implicit stop of t1
		{t2, 0, true},
	}

	for i, step := range steps {
		var err error
		if step.stop {
			_, err = timers.Stop(ctx, step.taskID)
		} else {
			_, err = timers.Start(ctx, step.taskID)
		}
		if err != nil {
			t.Fatalf("step %d failed: %v", i, err)
		}
		clk.Advance(step.advance)
	}

	for _, id := range []int64{t1, t2} {
		task, err := tasks.GetByID(ctx, id)
		if err != nil {
			t.Fatalf("GetByID(%d) failed: %v", id, err)
		}
		var sum int64
		err = db.QueryRow(`SELECT COALESCE(SUM(duration), 0) FROM time_logs WHERE task_id = ? AND end_time IS NOT NULL`, id).Scan(&sum)
		if err != nil {
			t.Fatalf("failed to sum durations for %d: %v", id, err)
		}
		if task.TimeSpent != sum {
			t.Errorf("task %d: time_spent %d != closed-entry sum %d", id, task.TimeSpent, sum)
		}
	}
}
