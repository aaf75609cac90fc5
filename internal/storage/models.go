package storage

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Urgency bounds.
const (
	MinUrgency = 1
	MaxUrgency = 5
)

// Task is a single deadline-bound item.
type Task struct {
	ID       string    // stable identifier, assigned once
	Name     string    // free text, duplicates allowed
	Deadline time.Time // always UTC
	Urgency  int       // MinUrgency..MaxUrgency
}

// Overdue reports whether the deadline is strictly before now.
func (t Task) Overdue(now time.Time) bool {
	return t.Deadline.Before(now)
}

// Entry pairs a task with its position in the sorted list, which is the
// index users type to refer to it.
type Entry struct {
	Index int
	Task  Task
}

// Update describes an edit. Blank strings and a zero urgency leave the
// corresponding field unchanged.
type Update struct {
	Name    string
	DayHour string
	Urgency int
}

// IsEmpty reports whether the update changes nothing.
func (u Update) IsEmpty() bool {
	return strings.TrimSpace(u.Name) == "" && strings.TrimSpace(u.DayHour) == "" && u.Urgency == 0
}

// Identifier selects tasks either by position in the sorted list or by
// case-insensitive name.
type Identifier struct {
	index   int
	name    string
	byIndex bool
}

// ByIndex selects the task at position i of the sorted list.
func ByIndex(i int) Identifier {
	return Identifier{index: i, byIndex: true}
}

// ByName selects tasks whose name matches name, ignoring case.
func ByName(name string) Identifier {
	return Identifier{name: name}
}

// ParseIdentifier treats all-digit input as an index and anything else as a
// name.
func ParseIdentifier(raw string) Identifier {
	raw = strings.TrimSpace(raw)
	if raw != "" && isDigits(raw) {
		if n, err := strconv.Atoi(raw); err == nil {
			return ByIndex(n)
		}
	}
	return ByName(raw)
}

// IsIndex reports whether the identifier is positional.
func (id Identifier) IsIndex() bool {
	return id.byIndex
}

// Index returns the position for index identifiers.
func (id Identifier) Index() int {
	return id.index
}

// Name returns the name for name identifiers.
func (id Identifier) Name() string {
	return id.name
}

func (id Identifier) String() string {
	if id.byIndex {
		return "#" + strconv.Itoa(id.index)
	}
	return strconv.Quote(id.name)
}

func (id Identifier) matches(t Task) bool {
	return strings.EqualFold(t.Name, id.name)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Snapshot is the single undo slot. It is either empty or holds the task
// list that existed before the most recent change.
type Snapshot struct {
	tasks []Task
	full  bool
}

// FullSnapshot wraps tasks. An empty list yields an empty snapshot, since
// there is nothing to go back to.
func FullSnapshot(tasks []Task) Snapshot {
	if len(tasks) == 0 {
		return Snapshot{}
	}
	return Snapshot{tasks: tasks, full: true}
}

// Empty reports whether there is nothing to undo.
func (s Snapshot) Empty() bool {
	return !s.full
}

// Tasks returns a copy of the snapshot contents.
func (s Snapshot) Tasks() []Task {
	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// ValidationError reports input that cannot become a task.
type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IndexError reports a positional identifier outside the task list.
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	if e.Len == 0 {
		return fmt.Sprintf("no task at index %d (list is empty)", e.Index)
	}
	return fmt.Sprintf("no task at index %d (valid: 0-%d)", e.Index, e.Len-1)
}

// ParseUrgency parses user input as an urgency level.
func ParseUrgency(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || !isDigits(raw) {
		return 0, &ValidationError{Field: "urgency", Msg: fmt.Sprintf("%q is not a number", raw)}
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ValidationError{Field: "urgency", Msg: fmt.Sprintf("%q is not a number", raw)}
	}
	if err := validateUrgency(n); err != nil {
		return 0, err
	}
	return n, nil
}

func validateUrgency(n int) error {
	if n < MinUrgency || n > MaxUrgency {
		return &ValidationError{
			Field: "urgency",
			Msg:   fmt.Sprintf("must be between %d and %d, got %d", MinUrgency, MaxUrgency, n),
		}
	}
	return nil
}
