package reports

import (
	"fmt"
	"strings"
	"time"
)

const (
	lineLayout = "Mon 01-02 15:04"
	timeLayout = "15:04"
)

// FormatDailyMarkdown formats a daily report as Markdown.
func FormatDailyMarkdown(report *DailyReport) string {
	var b strings.Builder
	loc := report.Date.Location()

	fmt.Fprintf(&b, "# Daily Report: %s\n\n", report.Date.Format("Monday, January 2, 2006"))
	fmt.Fprintf(&b, "_Times in %s_\n\n", report.Timezone)

	b.WriteString("## Overdue\n\n")
	writeLines(&b, report.Overdue, loc, lineLayout, "Nothing overdue.")

	b.WriteString("## Due Today\n\n")
	writeLines(&b, report.DueToday, loc, timeLayout, "Nothing due today.")

	if report.EarlierCount > 0 {
		fmt.Fprintf(&b, "%d %s due before this day.\n\n", report.EarlierCount, pluralTasks(report.EarlierCount))
	}
	if report.UpcomingCount > 0 {
		fmt.Fprintf(&b, "%d more %s due later.\n\n", report.UpcomingCount, pluralTasks(report.UpcomingCount))
	}

	writeUrgency(&b, report.ByUrgency)
	writeFooter(&b, report.GeneratedAt)
	return b.String()
}

// FormatWeeklyMarkdown formats a weekly report as Markdown.
func FormatWeeklyMarkdown(report *WeeklyReport) string {
	var b strings.Builder
	loc := report.StartDate.Location()

	fmt.Fprintf(&b, "# Weekly Report: %s - %s\n\n",
		report.StartDate.Format("Jan 2"),
		report.EndDate.Format("Jan 2, 2006"))
	fmt.Fprintf(&b, "_Times in %s_\n\n", report.Timezone)

	if len(report.Overdue) > 0 {
		b.WriteString("## Overdue From Earlier\n\n")
		writeLines(&b, report.Overdue, loc, lineLayout, "")
	}

	if report.EarlierCount > 0 {
		fmt.Fprintf(&b, "%d %s due before this week.\n\n", report.EarlierCount, pluralTasks(report.EarlierCount))
	}

	fmt.Fprintf(&b, "## Due This Week (%d)\n\n", report.DueCount)
	b.WriteString("| Day | Date | Tasks |\n")
	b.WriteString("|-----|------|-------|\n")
	for _, day := range report.ByDay {
		fmt.Fprintf(&b, "| %s | %s | %d |\n", day.DayOfWeek, day.Date, len(day.Tasks))
	}
	b.WriteString("\n")

	for _, day := range report.ByDay {
		if len(day.Tasks) == 0 {
			continue
		}
		fmt.Fprintf(&b, "### %s %s\n\n", day.DayOfWeek, day.Date)
		writeLines(&b, day.Tasks, loc, timeLayout, "")
	}

	writeUrgency(&b, report.ByUrgency)
	writeFooter(&b, report.GeneratedAt)
	return b.String()
}

func writeLines(b *strings.Builder, lines []TaskLine, loc *time.Location, layout, empty string) {
	if len(lines) == 0 {
		if empty != "" {
			fmt.Fprintf(b, "_%s_\n\n", empty)
		}
		return
	}
	for _, l := range lines {
		fmt.Fprintf(b, "- [ ] **%s** %s (urgency %d)\n", l.Deadline.In(loc).Format(layout), escapeMarkdown(l.Name), l.Urgency)
	}
	b.WriteString("\n")
}

func writeUrgency(b *strings.Builder, counts []UrgencyCount) {
	if len(counts) == 0 {
		return
	}
	b.WriteString("## By Urgency\n\n")
	for _, c := range counts {
		fmt.Fprintf(b, "- %s %d: %d %s\n", strings.Repeat("!", c.Urgency), c.Urgency, c.Count, pluralTasks(c.Count))
	}
	b.WriteString("\n")
}

func writeFooter(b *strings.Builder, generated time.Time) {
	b.WriteString("---\n")
	fmt.Fprintf(b, "_Generated by due at %s_\n", generated.Format("2006-01-02 15:04 MST"))
}

func pluralTasks(n int) string {
	if n == 1 {
		return "task"
	}
	return "tasks"
}

// escapeMarkdown keeps task names from opening emphasis or links.
func escapeMarkdown(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		"*", `\*`,
		"_", `\_`,
		"[", `\[`,
		"]", `\]`,
		"`", "\\`",
	)
	return r.Replace(s)
}
