package models

import "time"

// TimeLogEntry represents one timed interval of work on a task.
//
// An entry with a nil EndTime is open: the task is being worked on right now.
// Duration is filled in whole seconds when the entry is closed and the entry
// is never mutated again afterwards.
type TimeLogEntry struct {
	ID        int64      `json:"id"`
	TaskID    int64      `json:"task_id"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Duration  *int64     `json:"duration,omitempty"`
}

// ActiveTimer is the read model for a currently running timer: the open
// entry plus the owning task's accumulated total and the live elapsed
// seconds computed against a single wall-clock read.
type ActiveTimer struct {
	TaskID    int64     `json:"task_id"`
	TaskTitle string    `json:"task_title"`
	EntryID   int64     `json:"entry_id"`
	StartTime time.Time `json:"start_time"`
	TimeSpent int64     `json:"time_spent"`
	Elapsed   int64     `json:"elapsed"`
}
