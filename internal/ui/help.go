package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// HelpOverlay renders a help screen
type HelpOverlay struct {
	width  int
	height int
	styles *Styles
	keys   KeyMap
	input  InputKeyMap
}

// NewHelpOverlay creates a new help overlay listing the given bindings.
func NewHelpOverlay(styles *Styles, keys KeyMap, input InputKeyMap) *HelpOverlay {
	return &HelpOverlay{
		styles: styles,
		keys:   keys,
		input:  input,
	}
}

// SetSize sets the overlay dimensions
func (h *HelpOverlay) SetSize(width, height int) {
	h.width = width
	h.height = height
}

// View renders the help overlay
func (h *HelpOverlay) View() string {
	overlayWidth := 60
	if h.width > 0 {
		overlayWidth = min(60, max(20, h.width-4))
	}

	overlayStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(h.styles.ColorPrimary).
		Padding(1, 2).
		Width(overlayWidth)

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(h.styles.ColorPrimary).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(h.styles.ColorAccent).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(h.styles.ColorWarning).
		Width(14)

	descStyle := lipgloss.NewStyle().
		Foreground(h.styles.ColorText)

	mutedStyle := lipgloss.NewStyle().
		Foreground(h.styles.ColorTextMuted).
		Italic(true)

	line := func(b key.Binding, desc string) string {
		return keyStyle.Render(strings.Join(b.Keys(), " / ")) + descStyle.Render(desc) + "\n"
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("due - Keyboard Shortcuts"))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Tasks"))
	b.WriteString("\n")
	b.WriteString(line(h.keys.Tasks.Add, "Add task"))
	b.WriteString(line(h.keys.Tasks.Remove, "Remove by name or number"))
	b.WriteString(line(h.keys.Tasks.Update, "Update by name or number"))
	b.WriteString(line(h.keys.Global.Undo, "Undo last change"))
	b.WriteString(line(h.keys.Global.Refresh, "Reload from disk"))

	b.WriteString("\n")
	b.WriteString(sectionStyle.Render("Navigation"))
	b.WriteString("\n")
	b.WriteString(line(h.keys.Tasks.Up, "Move up"))
	b.WriteString(line(h.keys.Tasks.Down, "Move down"))
	b.WriteString(line(h.keys.Tasks.Top, "Go to top"))
	b.WriteString(line(h.keys.Tasks.Bottom, "Go to bottom"))

	b.WriteString("\n")
	b.WriteString(sectionStyle.Render("Prompts"))
	b.WriteString("\n")
	b.WriteString(line(h.input.Confirm, "Next prompt / submit"))
	b.WriteString(line(h.input.NextField, "Next field"))
	b.WriteString(line(h.input.PrevField, "Previous field"))
	b.WriteString(line(h.input.Cancel, "Cancel"))

	b.WriteString("\n")
	b.WriteString(sectionStyle.Render("Deadlines"))
	b.WriteString("\n")
	b.WriteString(descStyle.Render("Type day and hour, e.g. \"15 17\" for the 15th at 17:00. A time more than a day in the past means next month."))
	b.WriteString("\n")

	b.WriteString("\n")
	b.WriteString(line(h.keys.Global.Help, "Toggle help"))
	b.WriteString(line(h.keys.Global.Quit, "Quit"))

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("Press ? or Esc to close"))

	return RenderCentered(overlayStyle.Render(b.String()), h.width, h.height)
}

// RenderCentered centers content in the terminal
func RenderCentered(content string, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
