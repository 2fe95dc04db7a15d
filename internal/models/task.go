package models

import "time"

// TaskStatus represents the workflow state of a task. The set is open:
// unknown values coming from the database are preserved as-is.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusDone       TaskStatus = "done"
)

// TaskPriority represents how urgent a task is.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Task represents a tracked unit of work.
//
// StartedAt is set on the first transition to in-progress and CompletedAt on
// the first transition to done; neither is ever overwritten afterwards.
// TimeSpent is the denormalized sum, in whole seconds, of the task's closed
// time log entries.
type Task struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	Project     string       `json:"project"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	StartedAt   *time.Time   `json:"started_at,omitempty"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
	TimeSpent   int64        `json:"time_spent"`
}
