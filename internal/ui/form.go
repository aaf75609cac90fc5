package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"due/internal/deadline"
	"due/internal/storage"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type formKind int

const (
	formAdd formKind = iota
	formRemove
	formUpdate
)

type formResult int

const (
	formActive formResult = iota
	formSubmitted
	formCanceled
)

// formField is one prompt. Optional fields accept blank input without
// running validate.
type formField struct {
	label    string
	hint     string
	input    textinput.Model
	optional bool
	validate func(string) error
}

// Form is a stack of prompts answered in order. Enter validates the
// focused prompt and moves on; an invalid answer keeps focus and shows
// the reason until the input changes.
type Form struct {
	kind   formKind
	title  string
	fields []formField
	focus  int
	err    string
	keys   InputKeyMap
	help   help.Model
	styles *Styles
}

func newForm(kind formKind, title string, styles *Styles, keys InputKeyMap, fields ...formField) *Form {
	f := &Form{
		kind:   kind,
		title:  title,
		fields: fields,
		keys:   keys,
		help:   help.New(),
		styles: styles,
	}
	f.help.Styles.ShortKey = styles.HelpKeyStyle
	f.help.Styles.ShortDesc = styles.HelpStyle
	f.focusField(0)
	return f
}

func newField(label, hint string, optional bool, validate func(string) error) formField {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = hint
	ti.CharLimit = 200
	ti.Width = 40
	return formField{
		label:    label,
		hint:     hint,
		input:    ti,
		optional: optional,
		validate: validate,
	}
}

// newAddForm prompts for a new task.
func newAddForm(store *storage.Store, styles *Styles, keys InputKeyMap) *Form {
	return newForm(formAdd, "Add task", styles, keys,
		newField("Task name", "What needs to be done?", false, validateTaskName),
		newField("Deadline (DD HH)", "e.g. 15 17", false, dayHourValidator(store)),
		newField("Urgency (1-5)", "1 is lowest", false, validateUrgency),
	)
}

// newRemoveForm prompts for the task to remove, prefilled with the
// selected index when there is one.
func newRemoveForm(store *storage.Store, styles *Styles, keys InputKeyMap, selected int) *Form {
	f := newForm(formRemove, "Remove task", styles, keys,
		newField("Task name or number", "name removes every match", false, identifierValidator(store)),
	)
	f.prefill(0, selected)
	return f
}

// newUpdateForm prompts for the task to edit and its new values. Blank
// values keep what the task has.
func newUpdateForm(store *storage.Store, styles *Styles, keys InputKeyMap, selected int) *Form {
	f := newForm(formUpdate, "Update task", styles, keys,
		newField("Task name or number", "", false, identifierValidator(store)),
		newField("New name", "blank keeps current", true, validateTaskName),
		newField("New deadline (DD HH)", "blank keeps current", true, dayHourValidator(store)),
		newField("New urgency (1-5)", "blank keeps current", true, validateUrgency),
	)
	f.prefill(0, selected)
	return f
}

func (f *Form) prefill(field, selected int) {
	if selected < 0 {
		return
	}
	f.fields[field].input.SetValue(strconv.Itoa(selected))
	f.fields[field].input.CursorEnd()
}

// Update handles a message while the form is open.
func (f *Form) Update(msg tea.Msg) (formResult, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
		return formActive, cmd
	}

	switch {
	case key.Matches(keyMsg, f.keys.Cancel):
		return formCanceled, nil

	case key.Matches(keyMsg, f.keys.Confirm):
		if err := f.check(f.focus); err != nil {
			f.err = err.Error()
			return formActive, nil
		}
		if f.focus < len(f.fields)-1 {
			return formActive, f.focusField(f.focus + 1)
		}
		// Answers can go stale while later prompts are filled in, e.g. the
		// list changed under an identifier. Check everything once more.
		for i := range f.fields {
			if err := f.check(i); err != nil {
				f.err = err.Error()
				return formActive, f.focusField(i)
			}
		}
		return formSubmitted, nil

	case key.Matches(keyMsg, f.keys.NextField):
		return formActive, f.focusField((f.focus + 1) % len(f.fields))

	case key.Matches(keyMsg, f.keys.PrevField):
		return formActive, f.focusField((f.focus - 1 + len(f.fields)) % len(f.fields))
	}

	before := f.fields[f.focus].input.Value()
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	if f.fields[f.focus].input.Value() != before {
		f.err = ""
	}
	return formActive, cmd
}

func (f *Form) check(i int) error {
	field := f.fields[i]
	value := strings.TrimSpace(field.input.Value())
	if value == "" && field.optional {
		return nil
	}
	if field.validate == nil {
		return nil
	}
	return field.validate(value)
}

func (f *Form) focusField(i int) tea.Cmd {
	for j := range f.fields {
		f.fields[j].input.Blur()
	}
	f.focus = i
	return f.fields[i].input.Focus()
}

// Values returns the trimmed answers in prompt order.
func (f *Form) Values() []string {
	values := make([]string, len(f.fields))
	for i, field := range f.fields {
		values[i] = strings.TrimSpace(field.input.Value())
	}
	return values
}

// SetWidth sizes the inputs to the terminal.
func (f *Form) SetWidth(width int) {
	for i := range f.fields {
		f.fields[i].input.Width = max(10, min(60, width-30))
	}
	f.help.Width = width
}

// View renders the form.
func (f *Form) View() string {
	var b strings.Builder
	b.WriteString(f.styles.FormTitleStyle.Render(f.title))
	b.WriteString("\n")

	labelWidth := 0
	for _, field := range f.fields {
		labelWidth = max(labelWidth, len(field.label))
	}
	for i, field := range f.fields {
		label := fmt.Sprintf("%-*s ", labelWidth+1, field.label+":")
		if i == f.focus {
			label = f.styles.InputPromptStyle.Render(label)
		} else {
			label = f.styles.HelpStyle.Render(label)
		}
		b.WriteString("\n" + label + field.input.View())
	}

	if f.err != "" {
		b.WriteString("\n\n" + f.styles.ErrorStyle.Render(f.err))
	}
	b.WriteString("\n\n" + f.help.View(f.keys))

	return f.styles.FormStyle.Render(b.String())
}

// =============================================================================
// Validators
// =============================================================================

var errBlank = errors.New("a value is required")

func validateTaskName(v string) error {
	if v == "" {
		return errors.New("task name cannot be empty")
	}
	return nil
}

func validateUrgency(v string) error {
	_, err := storage.ParseUrgency(v)
	return err
}

func dayHourValidator(store *storage.Store) func(string) error {
	return func(v string) error {
		if v == "" {
			return errBlank
		}
		_, err := store.ResolveDayHour(v)
		var verr *deadline.ValidationError
		switch {
		case err == nil:
			return nil
		case errors.As(err, &verr):
			return err
		default:
			return fmt.Errorf("invalid deadline: %w", err)
		}
	}
}

func identifierValidator(store *storage.Store) func(string) error {
	return func(v string) error {
		if v == "" {
			return errBlank
		}
		id := storage.ParseIdentifier(v)
		if !store.ValidateIdentifier(id) {
			return fmt.Errorf("no task matches %s", id)
		}
		return nil
	}
}
