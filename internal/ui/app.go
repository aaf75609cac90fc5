// This file contains the main App model which owns the task list view,
// prompt forms and overlays, and routes messages using the Bubble Tea
// architecture.
package ui

import (
	"fmt"
	"strings"
	"time"

	"due/internal/config"
	"due/internal/logging"
	"due/internal/storage"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/mattn/go-runewidth"
)

// AppConfig holds user configuration for the app behavior.
type AppConfig struct {
	Keys             *config.KeysConfig
	ConfirmDeletions bool
	ShowHelpOnStart  bool
	NameWidth        int
	Logger           *log.Logger
}

// AppConfigFrom builds an AppConfig from the loaded configuration.
func AppConfigFrom(cfg *config.Config, logger *log.Logger) *AppConfig {
	return &AppConfig{
		Keys:             &cfg.Keys,
		ConfirmDeletions: cfg.UX.ConfirmDeletions,
		ShowHelpOnStart:  cfg.UX.ShowHelpOnStart,
		NameWidth:        cfg.UX.NameWidth,
		Logger:           logger,
	}
}

// App is the main application model.
type App struct {
	store       *storage.Store
	styles      *Styles
	config      *AppConfig
	logger      *log.Logger
	helpOverlay *HelpOverlay
	helpBar     help.Model
	form        *Form
	confirmDel  *confirmDeleteState
	showHelp    bool
	width       int
	height      int
	status      string
	statusErr   bool
	statusUntil time.Time
	quitting    bool

	now      time.Time
	overdue  []storage.Entry
	upcoming []storage.Entry
	cursor   int
	loaded   bool

	// Key bindings
	keys      KeyMap
	inputKeys InputKeyMap
	helpKeys  HelpKeyMap
}

type confirmDeleteState struct {
	title string
	body  string
	cmd   tea.Cmd
}

// NewApp creates a new application. Data loading is deferred to Init()
// to keep the constructor non-blocking.
func NewApp(store *storage.Store, styles *Styles, cfg *AppConfig) *App {
	if cfg == nil {
		cfg = &AppConfig{
			Keys:             &config.KeysConfig{},
			ConfirmDeletions: true,
			NameWidth:        60,
		}
	}
	if cfg.Keys == nil {
		cfg.Keys = &config.KeysConfig{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	helpBar := help.New()
	helpBar.Styles.ShortKey = styles.HelpKeyStyle
	helpBar.Styles.ShortDesc = styles.HelpStyle
	helpBar.Styles.ShortSeparator = styles.HelpStyle

	return &App{
		store:       store,
		styles:      styles,
		config:      cfg,
		logger:      logger,
		helpOverlay: NewHelpOverlay(styles, NewKeyMap(cfg.Keys), NewInputKeyMap(cfg.Keys)),
		helpBar:     helpBar,
		showHelp:    cfg.ShowHelpOnStart,
		cursor:      -1,
		keys:        NewKeyMap(cfg.Keys),
		inputKeys:   NewInputKeyMap(cfg.Keys),
		helpKeys:    DefaultHelpKeyMap(),
	}
}

// Init loads the list and starts the clock.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		loadTasksCmd(a.store),
	)
}

// Update handles all messages and routes them appropriately.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tasksLoadedMsg:
		a.setTasks(msg)
		return a, nil

	case taskAddedMsg:
		if msg.err != nil {
			a.fail("Add task", msg.err)
			return a, nil
		}
		a.SetStatus("Task added successfully.", false)
		return a, loadTasksCmd(a.store)

	case taskRemovedMsg:
		if msg.err != nil {
			a.fail("Remove task", msg.err)
			return a, nil
		}
		switch msg.removed {
		case 0:
			a.SetStatus(fmt.Sprintf("No task matches %s.", msg.id), false)
		case 1:
			a.SetStatus("Task removed successfully.", false)
		default:
			a.SetStatus(fmt.Sprintf("Removed %d tasks.", msg.removed), false)
		}
		return a, loadTasksCmd(a.store)

	case taskUpdatedMsg:
		if msg.err != nil {
			a.fail("Update task", msg.err)
			return a, nil
		}
		a.SetStatus("Task updated successfully.", false)
		return a, loadTasksCmd(a.store)

	case undoResultMsg:
		switch {
		case msg.err != nil && msg.undone:
			a.fail("Last action undone, but", msg.err)
		case msg.err != nil:
			a.fail("Undo", msg.err)
			return a, nil
		case msg.undone:
			a.SetStatus("Last action undone.", false)
		default:
			a.SetStatus("No actions to undo.", false)
			return a, nil
		}
		return a, loadTasksCmd(a.store)

	case tickMsg:
		t := time.Time(msg)
		if a.status != "" && !a.statusUntil.IsZero() && t.After(a.statusUntil) {
			a.status = ""
			a.statusErr = false
			a.statusUntil = time.Time{}
		}
		cmds := []tea.Cmd{tickCmd()}
		// Tasks slide into the overdue section as time passes.
		if a.loaded && t.Truncate(time.Minute).After(a.now.Truncate(time.Minute)) {
			cmds = append(cmds, loadTasksCmd(a.store))
		}
		return a, tea.Batch(cmds...)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.helpOverlay.SetSize(msg.Width, msg.Height)
		a.helpBar.Width = msg.Width
		if a.form != nil {
			a.form.SetWidth(msg.Width)
		}
		return a, nil

	case tea.MouseMsg:
		if a.form != nil || a.confirmDel != nil || a.showHelp {
			return a, nil
		}
		if msg.Action == tea.MouseActionPress {
			switch msg.Button {
			case tea.MouseButtonWheelUp:
				a.moveCursor(-1)
			case tea.MouseButtonWheelDown:
				a.moveCursor(1)
			}
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	if a.form != nil {
		_, cmd := a.form.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		a.quitting = true
		return a, tea.Quit
	}

	if a.confirmDel != nil {
		switch msg.String() {
		case "y", "Y", "enter":
			cmd := a.confirmDel.cmd
			a.confirmDel = nil
			return a, cmd
		case "n", "N", "esc":
			a.confirmDel = nil
			a.SetStatus("Canceled", false)
			return a, nil
		default:
			return a, nil
		}
	}

	// Help overlay takes priority
	if a.showHelp {
		if key.Matches(msg, a.helpKeys.Close) {
			a.showHelp = false
		}
		return a, nil
	}

	if a.form != nil {
		result, cmd := a.form.Update(msg)
		switch result {
		case formCanceled:
			a.form = nil
			a.SetStatus("Canceled", false)
			return a, nil
		case formSubmitted:
			return a, a.submitForm()
		}
		return a, cmd
	}

	switch {
	case key.Matches(msg, a.keys.Global.Quit):
		a.quitting = true
		return a, tea.Quit

	case key.Matches(msg, a.keys.Global.Help):
		a.showHelp = true
		return a, nil

	case key.Matches(msg, a.keys.Global.Refresh):
		return a, a.refreshCmd()

	case key.Matches(msg, a.keys.Global.Undo):
		return a, undoCmd(a.store)

	case key.Matches(msg, a.keys.Tasks.Add):
		return a, a.openForm(newAddForm(a.store, a.styles, a.inputKeys))

	case key.Matches(msg, a.keys.Tasks.Remove):
		if a.total() == 0 {
			a.SetStatus("No tasks available.", true)
			return a, nil
		}
		return a, a.openForm(newRemoveForm(a.store, a.styles, a.inputKeys, a.cursor))

	case key.Matches(msg, a.keys.Tasks.Update):
		if a.total() == 0 {
			a.SetStatus("No tasks available.", true)
			return a, nil
		}
		return a, a.openForm(newUpdateForm(a.store, a.styles, a.inputKeys, a.cursor))

	case key.Matches(msg, a.keys.Tasks.Up):
		a.moveCursor(-1)
	case key.Matches(msg, a.keys.Tasks.Down):
		a.moveCursor(1)
	case key.Matches(msg, a.keys.Tasks.Top):
		if a.total() > 0 {
			a.cursor = 0
		}
	case key.Matches(msg, a.keys.Tasks.Bottom):
		a.cursor = a.total() - 1
	}
	return a, nil
}

func (a *App) openForm(f *Form) tea.Cmd {
	if a.width > 0 {
		f.SetWidth(a.width)
	}
	a.form = f
	return f.fields[f.focus].input.Focus()
}

// submitForm turns the answers of a finished form into a storage command.
// The form has validated every answer already.
func (a *App) submitForm() tea.Cmd {
	f := a.form
	a.form = nil
	values := f.Values()

	switch f.kind {
	case formAdd:
		urgency, err := storage.ParseUrgency(values[2])
		if err != nil {
			a.fail("Add task", err)
			return nil
		}
		return addTaskCmd(a.store, values[0], values[1], urgency)

	case formRemove:
		id := storage.ParseIdentifier(values[0])
		cmd := removeTaskCmd(a.store, id)
		if !a.config.ConfirmDeletions {
			return cmd
		}
		a.confirmDel = &confirmDeleteState{
			title: "Remove task?",
			body:  a.describe(id),
			cmd:   cmd,
		}
		return nil

	case formUpdate:
		id := storage.ParseIdentifier(values[0])
		u := storage.Update{Name: values[1], DayHour: values[2]}
		if values[3] != "" {
			urgency, err := storage.ParseUrgency(values[3])
			if err != nil {
				a.fail("Update task", err)
				return nil
			}
			u.Urgency = urgency
		}
		if u.IsEmpty() {
			a.SetStatus("Nothing to update.", false)
			return nil
		}
		return updateTaskCmd(a.store, id, u)
	}
	return nil
}

// describe names what a removal of id will delete.
func (a *App) describe(id storage.Identifier) string {
	if id.IsIndex() {
		if task, ok := a.store.GetTask(id); ok {
			return fmt.Sprintf("[%d] %s", id.Index(), runewidth.Truncate(task.Name, 60, "…"))
		}
		return id.String()
	}
	n := 0
	for _, e := range a.entries() {
		if strings.EqualFold(e.Task.Name, id.Name()) {
			n++
		}
	}
	if n == 1 {
		return fmt.Sprintf("The task named %s", id)
	}
	return fmt.Sprintf("All %d tasks named %s", n, id)
}

func (a *App) refreshCmd() tea.Cmd {
	store := a.store
	return func() tea.Msg {
		store.Reload()
		return loadTasksCmd(store)()
	}
}

func (a *App) setTasks(msg tasksLoadedMsg) {
	a.now = msg.now
	a.overdue = msg.overdue
	a.upcoming = msg.upcoming
	a.loaded = true

	total := a.total()
	switch {
	case total == 0:
		a.cursor = -1
	case a.cursor < 0:
		a.cursor = 0
	case a.cursor >= total:
		a.cursor = total - 1
	}
}

func (a *App) moveCursor(delta int) {
	total := a.total()
	if total == 0 {
		a.cursor = -1
		return
	}
	a.cursor = max(0, min(total-1, a.cursor+delta))
}

func (a *App) total() int {
	return len(a.overdue) + len(a.upcoming)
}

func (a *App) entries() []storage.Entry {
	all := make([]storage.Entry, 0, a.total())
	all = append(all, a.overdue...)
	return append(all, a.upcoming...)
}

func (a *App) fail(action string, err error) {
	a.logger.Error(strings.ToLower(action)+" failed", "err", err)
	a.SetStatus(action+": "+err.Error(), true)
}

// View renders the entire app.
func (a *App) View() string {
	if a.quitting {
		return a.renderGoodbye()
	}

	if a.confirmDel != nil {
		return a.renderConfirmDelete()
	}

	if a.showHelp {
		return a.helpOverlay.View()
	}

	var b strings.Builder
	b.WriteString(a.renderTitleBar())
	b.WriteString("\n")
	b.WriteString(a.renderList())
	b.WriteString("\n")
	if a.form != nil {
		b.WriteString(a.form.View())
		b.WriteString("\n")
	}
	b.WriteString(a.renderHelpBar())

	return b.String()
}

func (a *App) renderList() string {
	if !a.loaded {
		return a.styles.EmptyStyle.Render("Loading…")
	}
	view := ListView{
		Styles:    a.styles,
		Location:  a.store.Location(),
		NameWidth: a.config.NameWidth,
		Selected:  a.cursor,
	}
	return view.Render(a.now, a.overdue, a.upcoming)
}

func (a *App) renderConfirmDelete() string {
	overlayWidth := 60
	if a.width > 0 {
		overlayWidth = min(60, max(20, a.width-4))
	}

	overlayStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(a.styles.ColorDanger).
		Padding(1, 2).
		Width(overlayWidth)

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(a.styles.ColorDanger).
		MarginBottom(1)

	bodyStyle := lipgloss.NewStyle().
		Foreground(a.styles.ColorText)

	hintStyle := lipgloss.NewStyle().
		Foreground(a.styles.ColorTextMuted)

	var b strings.Builder
	b.WriteString(titleStyle.Render(a.confirmDel.title))
	b.WriteString("\n\n")
	b.WriteString(bodyStyle.Render(a.confirmDel.body))
	b.WriteString("\n\n")
	b.WriteString(hintStyle.Render("[y/enter] remove    [n/esc] cancel"))

	return RenderCentered(overlayStyle.Render(b.String()), a.width, a.height)
}

// renderGoodbye shows an exit message with what is left to do.
func (a *App) renderGoodbye() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  See you later!\n")
	b.WriteString("\n")
	if total := a.total(); total > 0 {
		b.WriteString(fmt.Sprintf("  %d pending, %d overdue\n\n", total, len(a.overdue)))
	}
	return b.String()
}

// renderTitleBar creates the top title bar with counts and the time in
// the reference zone.
func (a *App) renderTitleBar() string {
	title := a.styles.TitleStyle.Render(" due ")

	var summary string
	if total := a.total(); total > 0 {
		summary = fmt.Sprintf("Tasks: %d", total)
		if len(a.overdue) > 0 {
			summary += fmt.Sprintf("  Overdue: %d", len(a.overdue))
		}
	}
	stats := a.styles.SummaryStyle.Render(summary)

	now := a.now
	if now.IsZero() {
		now = a.store.Now()
	}
	date := a.styles.DateStyle.Render(now.In(a.store.Location()).Format("Mon Jan 2 · 15:04 MST"))

	used := lipgloss.Width(title) + lipgloss.Width(stats) + lipgloss.Width(date)
	spacer := max(2, a.width-used-2)

	return title + "  " + stats + strings.Repeat(" ", spacer) + date
}

// renderHelpBar shows the status line when set, otherwise key hints.
func (a *App) renderHelpBar() string {
	if a.status != "" {
		if a.statusErr {
			return a.styles.ErrorStyle.Render(a.status)
		}
		return a.styles.StatusStyle.Render(a.status)
	}
	if a.form != nil {
		return ""
	}
	return a.helpBar.View(a.keys)
}

// SetStatus sets a status message to display to the user.
func (a *App) SetStatus(msg string, isErr bool) {
	a.status = msg
	a.statusErr = isErr
	ttl := 5 * time.Second
	if isErr {
		ttl = 8 * time.Second
	}
	a.statusUntil = time.Now().Add(ttl)
}

// Run starts the Bubble Tea program with the given store, styles, and config.
func Run(store *storage.Store, styles *Styles, cfg *AppConfig) error {
	app := NewApp(store, styles, cfg)
	p := tea.NewProgram(app,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := p.Run()
	return err
}
