package ui

import (
	"due/internal/config"
	"due/internal/storage"

	"github.com/charmbracelet/lipgloss"
)

// Styles holds all application styles, initialized with theme configuration.
type Styles struct {
	// Colors
	ColorPrimary   lipgloss.Color
	ColorAccent    lipgloss.Color
	ColorMuted     lipgloss.Color
	ColorDanger    lipgloss.Color
	ColorWarning   lipgloss.Color
	ColorSuccess   lipgloss.Color
	ColorBgLight   lipgloss.Color
	ColorText      lipgloss.Color
	ColorTextMuted lipgloss.Color
	ColorOverdue   lipgloss.Color

	// Urgency colors, index 0 is urgency 1
	UrgencyColors [storage.MaxUrgency]lipgloss.Color

	// Component styles
	TitleStyle   lipgloss.Style
	DateStyle    lipgloss.Style
	SummaryStyle lipgloss.Style

	SectionStyle        lipgloss.Style
	SectionOverdueStyle lipgloss.Style
	HeaderStyle         lipgloss.Style
	CellStyle           lipgloss.Style
	SelectedStyle       lipgloss.Style
	EmptyStyle          lipgloss.Style

	HelpStyle    lipgloss.Style
	HelpKeyStyle lipgloss.Style

	StatusStyle lipgloss.Style
	ErrorStyle  lipgloss.Style

	FormStyle        lipgloss.Style
	FormTitleStyle   lipgloss.Style
	InputPromptStyle lipgloss.Style
	InputTextStyle   lipgloss.Style
	InputHintStyle   lipgloss.Style
}

// NewStyles creates a new Styles instance from the given config.
func NewStyles(cfg *config.Config) *Styles {
	return NewStylesFromTheme(&cfg.Theme)
}

// NewStylesFromTheme creates a new Styles instance from a ThemeConfig.
// If a theme color is empty, it uses the appropriate default.
func NewStylesFromTheme(theme *config.ThemeConfig) *Styles {
	s := &Styles{}

	s.ColorPrimary = colorOrDefault(theme.Primary, "#7C3AED")
	s.ColorAccent = colorOrDefault(theme.Accent, "#10B981")
	s.ColorMuted = colorOrDefault(theme.Muted, "#6B7280")
	s.ColorOverdue = colorOrDefault(theme.Overdue, "9")

	// Fixed semantic colors (not configurable from theme)
	s.ColorDanger = lipgloss.Color("#EF4444")
	s.ColorWarning = lipgloss.Color("#F59E0B")
	s.ColorSuccess = lipgloss.Color("#10B981")
	s.ColorBgLight = lipgloss.Color("#374151")
	s.ColorText = lipgloss.Color("#F9FAFB")
	s.ColorTextMuted = lipgloss.Color("#9CA3AF")

	defaults := config.Default().Theme.UrgencyColors()
	for i, c := range theme.UrgencyColors() {
		s.UrgencyColors[i] = colorOrDefault(c, defaults[i])
	}

	s.initComponentStyles()

	return s
}

// colorOrDefault returns the lipgloss.Color for value, or the default if empty.
func colorOrDefault(value, defaultValue string) lipgloss.Color {
	if value != "" {
		return lipgloss.Color(value)
	}
	return lipgloss.Color(defaultValue)
}

func (s *Styles) initComponentStyles() {
	// Title bar
	s.TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(s.ColorText).
		Background(s.ColorPrimary).
		Padding(0, 1)

	s.DateStyle = lipgloss.NewStyle().
		Foreground(s.ColorTextMuted)

	s.SummaryStyle = lipgloss.NewStyle().
		Foreground(s.ColorTextMuted)

	// Task table
	s.SectionStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(s.ColorPrimary).
		MarginTop(1)

	s.SectionOverdueStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(s.ColorOverdue).
		MarginTop(1)

	s.HeaderStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(s.ColorText).
		Padding(0, 1)

	s.CellStyle = lipgloss.NewStyle().
		Padding(0, 1)

	s.SelectedStyle = lipgloss.NewStyle().
		Background(s.ColorBgLight).
		Bold(true)

	s.EmptyStyle = lipgloss.NewStyle().
		Foreground(s.ColorTextMuted).
		Italic(true).
		MarginTop(1)

	// Help bar
	s.HelpStyle = lipgloss.NewStyle().
		Foreground(s.ColorTextMuted)

	s.HelpKeyStyle = lipgloss.NewStyle().
		Foreground(s.ColorAccent).
		Bold(true)

	// Status messages
	s.StatusStyle = lipgloss.NewStyle().
		Foreground(s.ColorSuccess).
		Italic(true)

	s.ErrorStyle = lipgloss.NewStyle().
		Foreground(s.ColorDanger).
		Bold(true)

	// Prompt forms
	s.FormStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.ColorPrimary).
		Padding(0, 1).
		MarginTop(1)

	s.FormTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(s.ColorPrimary)

	s.InputPromptStyle = lipgloss.NewStyle().
		Foreground(s.ColorPrimary).
		Bold(true)

	s.InputTextStyle = lipgloss.NewStyle().
		Foreground(s.ColorText)

	s.InputHintStyle = lipgloss.NewStyle().
		Foreground(s.ColorTextMuted).
		Italic(true)
}

// UrgencyStyle returns the cell style for a task of the given urgency.
// Out of range values are clamped.
func (s *Styles) UrgencyStyle(urgency int) lipgloss.Style {
	urgency = max(storage.MinUrgency, min(storage.MaxUrgency, urgency))
	return s.CellStyle.Foreground(s.UrgencyColors[urgency-1])
}

// OverdueStyle returns the cell style for an overdue task.
func (s *Styles) OverdueStyle() lipgloss.Style {
	return s.CellStyle.Foreground(s.ColorOverdue)
}

// RenderHelp renders help text with key bindings using the given styles.
func (s *Styles) RenderHelp(keys ...string) string {
	var result string
	for i := 0; i+1 < len(keys); i += 2 {
		if i > 0 {
			result += "  "
		}
		result += s.HelpKeyStyle.Render("["+keys[i]+"]") + " " + s.HelpStyle.Render(keys[i+1])
	}
	return result
}
