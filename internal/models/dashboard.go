package models

// DailyCount is one (day, priority) bucket in the dashboard charts.
type DailyCount struct {
	Date     string       `json:"date"`
	Priority TaskPriority `json:"priority"`
	Count    int64        `json:"count"`
}

// DashboardStats is the read-side projection backing the dashboard view.
type DashboardStats struct {
	StatusCounts    map[string]int64 `json:"status_counts"`
	TotalTime       int64            `json:"total_time"`
	CompletedToday  int64            `json:"completed_today"`
	AverageTime     float64          `json:"average_time"`
	DailyCompletion []DailyCount     `json:"daily_completion"`
	DailyCreated    []DailyCount     `json:"daily_created"`
}
