package reports

import (
	"time"

	"due/internal/storage"
)

// Generator creates reports from the task store.
type Generator struct {
	store *storage.Store
}

// NewGenerator creates a new report generator.
func NewGenerator(store *storage.Store) *Generator {
	return &Generator{store: store}
}

// GenerateDaily generates a report for the day containing date. Overdue
// tasks are those past their deadline at generation time, whatever day
// they were due.
func (g *Generator) GenerateDaily(date time.Time) *DailyReport {
	loc := g.store.Location()
	now := g.store.Now()
	start := startOfDay(date.In(loc))
	end := start.AddDate(0, 0, 1)

	report := &DailyReport{
		Date:        start,
		Timezone:    loc.String(),
		GeneratedAt: now,
	}

	tasks := g.store.ListTasks()
	for i, task := range tasks {
		line := lineFor(i, task, now)
		switch {
		case line.Overdue:
			report.Overdue = append(report.Overdue, line)
		case task.Deadline.Before(start):
			report.EarlierCount++
		case task.Deadline.Before(end):
			report.DueToday = append(report.DueToday, line)
		default:
			report.UpcomingCount++
		}
	}
	report.ByUrgency = countByUrgency(tasks)

	return report
}

// GenerateWeekly generates a report for the week containing date.
func (g *Generator) GenerateWeekly(date time.Time) *WeeklyReport {
	loc := g.store.Location()
	now := g.store.Now()
	start := startOfWeekSunday(date.In(loc))
	end := start.AddDate(0, 0, 7)

	report := &WeeklyReport{
		StartDate:   start,
		EndDate:     end.Add(-time.Nanosecond), // End of last day
		Timezone:    loc.String(),
		ByDay:       make([]DayTasks, 7),
		GeneratedAt: now,
	}
	for i := range report.ByDay {
		day := start.AddDate(0, 0, i)
		report.ByDay[i] = DayTasks{
			Date:      day.Format("2006-01-02"),
			DayOfWeek: day.Format("Mon"),
		}
	}

	tasks := g.store.ListTasks()
	var inWeek []storage.Task
	for i, task := range tasks {
		line := lineFor(i, task, now)
		if task.Deadline.Before(start) {
			if line.Overdue {
				report.Overdue = append(report.Overdue, line)
			} else {
				report.EarlierCount++
			}
			continue
		}
		if d := dayIndexInRange(task.Deadline.In(loc), start, 7); d >= 0 {
			report.ByDay[d].Tasks = append(report.ByDay[d].Tasks, line)
			report.DueCount++
			inWeek = append(inWeek, task)
		}
	}
	report.ByUrgency = countByUrgency(inWeek)

	return report
}

func lineFor(index int, task storage.Task, now time.Time) TaskLine {
	return TaskLine{
		Index:    index,
		Name:     task.Name,
		Deadline: task.Deadline,
		Urgency:  task.Urgency,
		Overdue:  task.Overdue(now),
	}
}

// countByUrgency counts tasks per urgency level, most urgent first. Levels
// with no tasks are left out.
func countByUrgency(tasks []storage.Task) []UrgencyCount {
	var counts [storage.MaxUrgency + 1]int
	for _, t := range tasks {
		if t.Urgency >= storage.MinUrgency && t.Urgency <= storage.MaxUrgency {
			counts[t.Urgency]++
		}
	}

	out := []UrgencyCount{}
	for u := storage.MaxUrgency; u >= storage.MinUrgency; u-- {
		if counts[u] > 0 {
			out = append(out, UrgencyCount{Urgency: u, Count: counts[u]})
		}
	}
	return out
}

// Helper functions

// startOfDay returns the start of the day (midnight).
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// startOfWeekSunday returns the start of the week (Sunday).
func startOfWeekSunday(t time.Time) time.Time {
	t = startOfDay(t)
	weekday := int(t.Weekday())
	return t.AddDate(0, 0, -weekday)
}

func inRange(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}

// dayIndexInRange uses calendar days, so a 23 or 25 hour DST day still
// counts as one.
func dayIndexInRange(t time.Time, start time.Time, days int) int {
	for i := 0; i < days; i++ {
		if inRange(t, start.AddDate(0, 0, i), start.AddDate(0, 0, i+1)) {
			return i
		}
	}
	return -1
}
