package storage

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// DeadlineLayout is the on-disk deadline format. Deadlines are written in
// UTC, so the zone abbreviation is always "UTC" for files this package
// produces; other abbreviations are interpreted in the reference location.
const DeadlineLayout = "2006-01-02 15:04:05 MST"

// ErrCorrupt marks task data that is not a valid task list.
var ErrCorrupt = errors.New("corrupt task data")

// emptyList is what an empty task file and a cleared undo slot contain.
var emptyList = []byte("[]")

//go:embed tasks.schema.json
var schemaJSON []byte

const schemaURL = "tasks.schema.json"

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func taskSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("add task schema: %w", err)
			return
		}
		schema, schemaErr = c.Compile(schemaURL)
	})
	return schema, schemaErr
}

type record struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Deadline string `json:"deadline"`
	Urgency  int    `json:"urgency"`
}

// EncodeTasks renders tasks in the persisted format: a JSON array indented
// with four spaces.
func EncodeTasks(tasks []Task) ([]byte, error) {
	records := make([]record, 0, len(tasks))
	for _, t := range tasks {
		records = append(records, record{
			ID:       t.ID,
			Name:     t.Name,
			Deadline: t.Deadline.UTC().Format(DeadlineLayout),
			Urgency:  t.Urgency,
		})
	}
	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("serialize tasks: %w", err)
	}
	return data, nil
}

// DecodeTasks parses persisted task data. Deadlines whose zone
// abbreviation is not UTC are read in loc, and an abbreviation loc does
// not use is rejected. Entries without an id, or repeating an earlier
// entry's id, get a fresh one. Any structural problem yields an error
// wrapping ErrCorrupt.
func DecodeTasks(data []byte, loc *time.Location) ([]Task, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrCorrupt)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	sch, err := taskSchema()
	if err != nil {
		return nil, err
	}
	if err := sch.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if loc == nil {
		loc = time.UTC
	}

	tasks := make([]Task, 0, len(records))
	seen := make(map[string]bool, len(records))
	for i, r := range records {
		deadline, err := time.ParseInLocation(DeadlineLayout, r.Deadline, loc)
		if err != nil {
			return nil, fmt.Errorf("%w: task %d deadline: %v", ErrCorrupt, i, err)
		}
		if !knownZone(deadline, loc) {
			name, _ := deadline.Zone()
			return nil, fmt.Errorf("%w: task %d deadline: unknown zone %q", ErrCorrupt, i, name)
		}
		id := r.ID
		if id == "" || seen[id] {
			id = uuid.NewString()
		}
		seen[id] = true
		tasks = append(tasks, Task{
			ID:       id,
			Name:     r.Name,
			Deadline: deadline.UTC(),
			Urgency:  r.Urgency,
		})
	}
	return tasks, nil
}

// knownZone reports whether the abbreviation t was parsed with names an
// offset. Parsing resolves abbreviations loc uses to loc itself and UTC to
// time.UTC; anything else becomes a zero-offset fixed zone, which is only
// right for GMT and its numeric forms.
func knownZone(t time.Time, loc *time.Location) bool {
	switch t.Location() {
	case loc, time.UTC:
		return true
	}
	name, _ := t.Zone()
	return strings.HasPrefix(name, "GMT")
}
