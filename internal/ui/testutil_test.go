package ui

import (
	"testing"
	"time"

	_ "time/tzdata"

	"due/internal/config"
	"due/internal/storage"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// testNow is a Wednesday, so day 15 of the same month is a Monday.
var testNow = time.Date(2024, time.April, 10, 12, 0, 0, 0, time.UTC)

// setupTest prepares the test environment for deterministic rendering.
func setupTest(t *testing.T) {
	t.Helper()
	// Use ASCII profile to disable all color codes in output
	lipgloss.SetColorProfile(termenv.Ascii)
}

// createTestStorage creates a Store in a temporary directory with a fixed
// clock and UTC deadlines.
func createTestStorage(t *testing.T, opts ...storage.Option) *storage.Store {
	t.Helper()
	store, err := storage.New(t.TempDir(), opts...)
	if err != nil {
		t.Fatalf("failed to create test storage: %v", err)
	}
	store.SetNowFunc(func() time.Time { return testNow })
	return store
}

// createTestStyles creates a default Styles instance for testing.
func createTestStyles() *Styles {
	return NewStylesFromTheme(&config.ThemeConfig{})
}

func mustAdd(t *testing.T, store *storage.Store, name, dayHour string, urgency int) storage.Task {
	t.Helper()
	task, err := store.AddTask(name, dayHour, urgency)
	if err != nil {
		t.Fatalf("AddTask(%q, %q, %d) error = %v", name, dayHour, urgency, err)
	}
	return task
}

// newTestApp builds an App over store and delivers the initial load.
func newTestApp(t *testing.T, store *storage.Store, cfg *AppConfig) *App {
	t.Helper()
	setupTest(t)
	app := NewApp(store, createTestStyles(), cfg)
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	runCmd(t, app, loadTasksCmd(store))
	return app
}

// runCmd executes cmd and feeds storage results back into the app until
// no follow-up storage command remains. Other messages, such as cursor
// blinks, are dropped.
func runCmd(t *testing.T, app *App, cmd tea.Cmd) {
	t.Helper()
	for i := 0; cmd != nil && i < 10; i++ {
		msg := cmd()
		switch msg.(type) {
		case tasksLoadedMsg, taskAddedMsg, taskRemovedMsg, taskUpdatedMsg, undoResultMsg:
		default:
			return
		}
		_, cmd = app.Update(msg)
	}
}

// keyMsg builds a key message for a named key or literal text.
func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// press sends a single key and returns the resulting command.
func press(app *App, k string) tea.Cmd {
	_, cmd := app.Update(keyMsg(k))
	return cmd
}

// typeText sends text one rune at a time, as a terminal would.
func typeText(app *App, text string) {
	for _, r := range text {
		app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}
