package importer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"due/internal/storage"
)

// TaskwarriorImporter handles importing from Taskwarrior JSON exports.
type TaskwarriorImporter struct{}

// taskwarriorTask represents a task in Taskwarrior's JSON format.
type taskwarriorTask struct {
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	Due         string `json:"due"`
	UUID        string `json:"uuid"`
}

// Name returns the importer name.
func (t *TaskwarriorImporter) Name() string {
	return "taskwarrior"
}

// Import reads tasks from Taskwarrior JSON and adds them to the store.
func (t *TaskwarriorImporter) Import(reader io.Reader, store *storage.Store) (*ImportResult, error) {
	tasks, err := t.Preview(reader, store.Location())
	if err != nil {
		return nil, err
	}
	return importPreviews(tasks, store)
}

// Preview returns a list of tasks that would be imported. It reads the
// JSON array 'task export' writes as well as one object per line.
func (t *TaskwarriorImporter) Preview(reader io.Reader, loc *time.Location) ([]PreviewTask, error) {
	loc = locationOrUTC(loc)

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("empty input")
	}

	var raw []taskwarriorTask
	if data[0] == '[' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse JSON array: %w", err)
		}
	} else {
		dec := json.NewDecoder(bytes.NewReader(data))
		for {
			var tw taskwarriorTask
			err := dec.Decode(&tw)
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("invalid JSON in task %d: %w", len(raw)+1, err)
			}
			raw = append(raw, tw)
		}
	}

	var tasks []PreviewTask
	for _, tw := range raw {
		if task, ok := previewFromTaskwarrior(tw, loc); ok {
			tasks = append(tasks, task)
		}
	}
	return tasks, nil
}

func previewFromTaskwarrior(tw taskwarriorTask, loc *time.Location) (PreviewTask, bool) {
	// Skip deleted tasks
	if tw.Status == "deleted" {
		return PreviewTask{}, false
	}

	task := PreviewTask{
		Text:    strings.TrimSpace(tw.Description),
		Urgency: mapTaskwarriorPriority(tw.Priority),
		Done:    tw.Status == "completed",
	}
	// Taskwarrior ids are UUIDs too; keeping them makes re-imports detectable.
	if id, err := uuid.Parse(tw.UUID); err == nil {
		task.ID = id.String()
	}
	if task.Text == "" {
		return PreviewTask{}, false
	}

	if tw.Due != "" {
		task.DueDate = parseTaskwarriorDate(tw.Due, loc)
	}

	return task, true
}

// mapTaskwarriorPriority converts Taskwarrior priority to an urgency.
// Taskwarrior: H = high, M = medium, L = low
func mapTaskwarriorPriority(priority string) int {
	switch strings.ToUpper(strings.TrimSpace(priority)) {
	case "H":
		return 5
	case "M":
		return 3
	case "L":
		return 2
	default:
		return storage.MinUrgency
	}
}

// parseTaskwarriorDate parses Taskwarrior's date format.
// Format: 20140928T211124Z (ISO 8601 basic format)
func parseTaskwarriorDate(dateStr string, loc *time.Location) *time.Time {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return nil
	}

	formats := []string{
		"20060102T150405Z",
		"2006-01-02T15:04:05Z",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return &t
		}
	}

	// No zone: wall time in loc.
	for _, format := range []string{"20060102T150405", "2006-01-02T15:04:05"} {
		if t, err := time.ParseInLocation(format, dateStr, loc); err == nil {
			return &t
		}
	}

	if t, err := time.Parse("2006-01-02", dateStr); err == nil {
		d := atDefaultHour(t, loc)
		return &d
	}

	return nil
}
