// Package reports provides daily and weekly report generation for due.
// Reports summarize what is overdue and what falls due in the period.
package reports

import (
	"time"
)

// TaskLine is one task as it appears in a report.
type TaskLine struct {
	Index    int       `json:"index"`
	Name     string    `json:"name"`
	Deadline time.Time `json:"deadline"`
	Urgency  int       `json:"urgency"`
	Overdue  bool      `json:"overdue"`
}

// UrgencyCount represents a count grouped by urgency.
type UrgencyCount struct {
	Urgency int `json:"urgency"`
	Count   int `json:"count"`
}

// DailyReport covers a single day in the reference timezone. Open tasks
// not due that day are counted as EarlierCount when due before it, which
// only happens for a future date, and as UpcomingCount when due after it.
type DailyReport struct {
	Date          time.Time      `json:"date"`
	Timezone      string         `json:"timezone"`
	Overdue       []TaskLine     `json:"overdue"`
	DueToday      []TaskLine     `json:"due_today"`
	EarlierCount  int            `json:"earlier_count"`
	UpcomingCount int            `json:"upcoming_count"`
	ByUrgency     []UrgencyCount `json:"by_urgency"`
	GeneratedAt   time.Time      `json:"generated_at"`
}

// WeeklyReport covers Sunday through Saturday. EarlierCount is the number
// of open tasks due between now and the start of a future week.
type WeeklyReport struct {
	StartDate    time.Time      `json:"start_date"`
	EndDate      time.Time      `json:"end_date"`
	Timezone     string         `json:"timezone"`
	Overdue      []TaskLine     `json:"overdue"`
	EarlierCount int            `json:"earlier_count"`
	ByDay        []DayTasks     `json:"by_day"`
	DueCount     int            `json:"due_count"`
	ByUrgency    []UrgencyCount `json:"by_urgency"`
	GeneratedAt  time.Time      `json:"generated_at"`
}

// DayTasks lists the tasks due on one day of a week.
type DayTasks struct {
	Date      string     `json:"date"`
	DayOfWeek string     `json:"day_of_week"`
	Tasks     []TaskLine `json:"tasks"`
}
