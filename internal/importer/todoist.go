package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"due/internal/storage"
)

// TodoistImporter handles importing from Todoist CSV exports.
type TodoistImporter struct{}

// Name returns the importer name.
func (t *TodoistImporter) Name() string {
	return "todoist"
}

// Import reads tasks from Todoist CSV and adds them to the store.
func (t *TodoistImporter) Import(reader io.Reader, store *storage.Store) (*ImportResult, error) {
	tasks, err := t.Preview(reader, store.Location())
	if err != nil {
		return nil, err
	}
	return importPreviews(tasks, store)
}

// Preview returns a list of tasks that would be imported.
func (t *TodoistImporter) Preview(reader io.Reader, loc *time.Location) ([]PreviewTask, error) {
	loc = locationOrUTC(loc)

	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = -1
	csvReader.LazyQuotes = true
	csvReader.TrimLeadingSpace = true
	csvReader.ReuseRecord = true

	header, err := csvReader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	colIndex := make(map[string]int)
	for i, col := range header {
		if i == 0 {
			col = strings.TrimPrefix(col, "\ufeff") // UTF-8 BOM (common in some exports)
		}
		colIndex[strings.ToUpper(strings.TrimSpace(col))] = i
	}

	for _, col := range []string{"TYPE", "CONTENT"} {
		if _, ok := colIndex[col]; !ok {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}

	field := func(record []string, col string) string {
		if idx, ok := colIndex[col]; ok && idx < len(record) {
			return strings.TrimSpace(record[idx])
		}
		return ""
	}

	var tasks []PreviewTask
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}

		// Skip non-task rows
		if !strings.EqualFold(field(record, "TYPE"), "task") {
			continue
		}

		task := PreviewTask{
			Text:    field(record, "CONTENT"),
			Urgency: mapTodoistPriority(field(record, "PRIORITY")),
		}
		if task.Text == "" {
			continue
		}

		// A DATE column holds the due date; TIMEZONE, when present, is the
		// zone it was written in.
		zone := loc
		if name := field(record, "TIMEZONE"); name != "" {
			if z, err := time.LoadLocation(name); err == nil {
				zone = z
			}
		}
		task.DueDate = parseTodoistDate(field(record, "DATE"), zone)

		tasks = append(tasks, task)
	}

	return tasks, nil
}

// mapTodoistPriority converts Todoist priority to an urgency.
// Todoist: 1 = urgent (highest), 2 = high, 3 = medium, 4 = normal (lowest)
func mapTodoistPriority(priority string) int {
	switch strings.TrimSpace(priority) {
	case "1":
		return 5
	case "2":
		return 4
	case "3":
		return 3
	default:
		return storage.MinUrgency
	}
}

// parseTodoistDate parses the date formats Todoist writes. Dates with a
// time keep it; bare dates get DefaultHour.
func parseTodoistDate(dateStr string, loc *time.Location) *time.Time {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return nil
	}

	withTime := []string{
		"2006-01-02T15:04:05Z07:00",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04",
	}
	for _, format := range withTime {
		if t, err := time.ParseInLocation(format, dateStr, loc); err == nil {
			return &t
		}
	}

	dateOnly := []string{
		"2006-01-02",
		"Jan 2 2006",
		"Jan 2, 2006",
		"2 Jan 2006",
		"January 2, 2006",
		"01/02/2006",
	}
	for _, format := range dateOnly {
		if t, err := time.Parse(format, dateStr); err == nil {
			d := atDefaultHour(t, loc)
			return &d
		}
	}

	return nil
}
