package ui

import (
	"fmt"
	"strings"
	"time"

	"due/internal/storage"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"
)

// DisplayLayout formats deadlines in the list: month-day, weekday and hour.
const DisplayLayout = "01-02 Monday 15:04"

const (
	overdueTitle  = "Overdue Tasks"
	upcomingTitle = "Upcoming Tasks"
	emptyMessage  = "No tasks available."
)

// ListView renders the overdue and upcoming sections of the task list.
type ListView struct {
	Styles    *Styles
	Location  *time.Location
	NameWidth int
	// Selected is the index of the highlighted task, -1 for none.
	Selected int
}

// Render draws both sections as of now. Empty sections are left out.
func (v ListView) Render(now time.Time, overdue, upcoming []storage.Entry) string {
	if len(overdue) == 0 && len(upcoming) == 0 {
		return v.Styles.EmptyStyle.Render(emptyMessage)
	}

	var b strings.Builder
	if len(overdue) > 0 {
		b.WriteString(v.Styles.SectionOverdueStyle.Render(overdueTitle))
		b.WriteString("\n")
		b.WriteString(v.table(now, overdue, true))
	}
	if len(upcoming) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(v.Styles.SectionStyle.Render(upcomingTitle))
		b.WriteString("\n")
		b.WriteString(v.table(now, upcoming, false))
	}
	return b.String()
}

func (v ListView) table(now time.Time, entries []storage.Entry, overdue bool) string {
	loc := v.location()
	s := v.Styles

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderHeader(true).
		BorderStyle(lipgloss.NewStyle().Foreground(s.ColorMuted)).
		Headers("Index", "Task Name", fmt.Sprintf("Deadline (%s)", now.In(loc).Format("MST")), "Urgency").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow || row < 0 || row >= len(entries) {
				return s.HeaderStyle
			}
			e := entries[row]
			style := s.UrgencyStyle(e.Task.Urgency)
			if overdue && col == 2 {
				style = s.OverdueStyle()
			}
			if e.Index == v.Selected {
				style = style.Inherit(s.SelectedStyle)
			}
			return style
		})

	for _, e := range entries {
		t.Row(
			fmt.Sprintf("[%d]", e.Index),
			v.truncate(e.Task.Name),
			e.Task.Deadline.In(loc).Format(DisplayLayout),
			fmt.Sprintf("%d", e.Task.Urgency),
		)
	}
	return t.Render()
}

func (v ListView) truncate(name string) string {
	if v.NameWidth <= 0 {
		return name
	}
	return runewidth.Truncate(name, v.NameWidth, "…")
}

func (v ListView) location() *time.Location {
	if v.Location == nil {
		return time.UTC
	}
	return v.Location
}
