// Package importer provides import functionality for migrating tasks from
// other productivity tools like Todoist and Taskwarrior.
package importer

import (
	"fmt"
	"io"
	"time"

	"due/internal/storage"
)

// DefaultHour is the deadline hour given to items that only carry a date.
const DefaultHour = 9

// ImportResult contains statistics about an import operation.
type ImportResult struct {
	Imported int      // Number of successfully imported tasks
	Skipped  int      // Number of skipped items (completed, no due date, already imported)
	Errors   []string // Why items were skipped
}

// PreviewTask represents a task preview before import.
type PreviewTask struct {
	ID      string // source id when the format has a usable one
	Text    string
	Urgency int
	DueDate *time.Time
	Done    bool
}

// Importer defines the interface for import implementations.
type Importer interface {
	// Import reads tasks from the reader and adds them to the store as a
	// single change.
	Import(reader io.Reader, store *storage.Store) (*ImportResult, error)

	// Preview reads tasks from the reader without importing. Dates without
	// a time of day are placed at DefaultHour in loc.
	Preview(reader io.Reader, loc *time.Location) ([]PreviewTask, error)

	// Name returns the importer name (e.g., "todoist", "taskwarrior").
	Name() string
}

// GetImporter returns the appropriate importer for the given format.
func GetImporter(format string) Importer {
	switch format {
	case "todoist":
		return &TodoistImporter{}
	case "taskwarrior":
		return &TaskwarriorImporter{}
	default:
		return nil
	}
}

// SupportedFormats returns the list of supported import formats.
func SupportedFormats() []string {
	return []string{"todoist", "taskwarrior"}
}

// importPreviews keeps the open items that have a due date and are not in
// the store yet, and adds them in one batch.
func importPreviews(previews []PreviewTask, store *storage.Store) (*ImportResult, error) {
	result := &ImportResult{}

	seen := make(map[string]bool)
	for _, t := range store.ListTasks() {
		seen[t.ID] = true
	}

	var batch []storage.Task
	for _, p := range previews {
		switch {
		case p.Done:
			result.Skipped++
			continue
		case p.DueDate == nil:
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: no due date", p.Text))
			continue
		case p.ID != "" && seen[p.ID]:
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: already imported", p.Text))
			continue
		}
		if p.ID != "" {
			seen[p.ID] = true
		}
		batch = append(batch, storage.Task{
			ID:       p.ID,
			Name:     p.Text,
			Deadline: *p.DueDate,
			Urgency:  p.Urgency,
		})
	}

	n, err := store.ImportTasks(batch)
	if err != nil {
		return nil, err
	}
	result.Imported = n
	return result, nil
}

// atDefaultHour places a calendar date at DefaultHour in loc.
func atDefaultHour(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), DefaultHour, 0, 0, 0, loc)
}

func locationOrUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
