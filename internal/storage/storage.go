// Package storage owns the task list: it validates input, keeps the list
// sorted by deadline, persists it as JSON and maintains a single-slot undo
// snapshot next to it.
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"due/internal/deadline"
	"due/internal/fsutil"
	"due/internal/logging"
)

// Default file names inside the data directory.
const (
	TasksFile = "tasks.json"
	UndoFile  = "undo.json"
)

const (
	dataDirPerm  os.FileMode = 0700
	dataFilePerm os.FileMode = 0600

	maxNameLen = 200
)

// Store holds the in-memory task list and mirrors every change to disk.
// All methods are safe for concurrent use.
type Store struct {
	mu sync.Mutex

	dataDir  string
	taskFile string
	undoFile string

	resolver *deadline.Resolver
	logger   *log.Logger
	now      func() time.Time // injectable clock for deterministic tests

	tasks []Task
}

// Option configures a Store.
type Option func(*Store)

// WithResolver sets the deadline resolver and with it the reference
// timezone. The default resolves in UTC.
func WithResolver(r *deadline.Resolver) Option {
	return func(s *Store) {
		if r != nil {
			s.resolver = r
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithFiles overrides the task and undo file names. Blank names keep the
// defaults.
func WithFiles(tasks, undo string) Option {
	return func(s *Store) {
		if tasks != "" {
			s.taskFile = tasks
		}
		if undo != "" {
			s.undoFile = undo
		}
	}
}

// New opens the store rooted at dataDir, creating the directory if needed,
// and loads the current task list.
func New(dataDir string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(dataDir, dataDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &Store{
		dataDir:  dataDir,
		taskFile: TasksFile,
		undoFile: UndoFile,
		resolver: deadline.NewResolver(nil),
		logger:   logging.Discard(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.tasks = s.load()
	return s, nil
}

// SetNowFunc overrides the clock used for deadline resolution. Passing nil
// resets it to time.Now.
func (s *Store) SetNowFunc(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now == nil {
		s.now = time.Now
		return
	}
	s.now = now
}

// Now returns the current time according to the store clock, in the
// reference location.
func (s *Store) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock().In(s.resolver.Location())
}

// clock reads the injected clock. Callers hold s.mu, except during New.
func (s *Store) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

// Location returns the reference location deadlines are resolved and
// displayed in.
func (s *Store) Location() *time.Location {
	return s.resolver.Location()
}

// DataDir returns the directory holding the task and undo files.
func (s *Store) DataDir() string {
	return s.dataDir
}

// TasksPath returns the full path of the task file.
func (s *Store) TasksPath() string {
	return filepath.Join(s.dataDir, s.taskFile)
}

// UndoPath returns the full path of the undo file.
func (s *Store) UndoPath() string {
	return filepath.Join(s.dataDir, s.undoFile)
}

// Load reads the task file and returns its contents sorted by deadline. A
// missing file is an empty list. An unreadable or corrupt file is also an
// empty list; a corrupt one is first copied aside so it can be inspected.
// Load does not touch the in-memory list.
func (s *Store) Load() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// load is Load for callers that hold s.mu or, like New, own the store.
func (s *Store) load() []Task {
	path := s.TasksPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("cannot read task file, starting empty", "file", path, "err", err)
		}
		return []Task{}
	}

	tasks, err := DecodeTasks(data, s.Location())
	if err != nil {
		s.preserveCorrupt(path, err)
		return []Task{}
	}
	sortTasks(tasks)
	s.logger.Debug("tasks loaded", "file", path, "count", len(tasks))
	return tasks
}

// Reload replaces the in-memory list with the task file's current contents,
// picking up changes made by another process.
func (s *Store) Reload() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = s.load()
	return len(s.tasks)
}

func (s *Store) preserveCorrupt(path string, cause error) {
	corruptPath := fmt.Sprintf("%s.corrupt.%s", path, s.clock().Format("20060102-150405"))
	if err := fsutil.CopyFile(path, corruptPath, nil, dataFilePerm); err != nil {
		s.logger.Warn("task file is corrupt, starting empty", "file", path, "err", cause, "preserve_err", err)
		return
	}
	s.logger.Warn("task file is corrupt, starting empty", "file", path, "err", cause, "preserved", corruptPath)
}

// ListTasks returns a copy of the current list, sorted by deadline.
func (s *Store) ListTasks() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.tasks)
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Partition splits the list into tasks whose deadline is before now and
// the rest, keeping each task's index in the full list.
func (s *Store) Partition(now time.Time) (overdue, upcoming []Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.tasks {
		e := Entry{Index: i, Task: t}
		if t.Overdue(now) {
			overdue = append(overdue, e)
		} else {
			upcoming = append(upcoming, e)
		}
	}
	return overdue, upcoming
}

// ValidateDayHour reports whether text resolves to a deadline right now.
func (s *Store) ValidateDayHour(text string) bool {
	_, err := s.ResolveDayHour(text)
	return err == nil
}

// ResolveDayHour converts day/hour text to a deadline relative to now.
func (s *Store) ResolveDayHour(text string) (time.Time, error) {
	s.mu.Lock()
	now := s.clock()
	s.mu.Unlock()
	return s.resolver.Resolve(text, now)
}

// ValidateIdentifier reports whether id selects an existing task.
func (s *Store) ValidateIdentifier(id Identifier) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.find(id) >= 0
}

// GetTask returns the task id selects. A name selects the first match.
func (s *Store) GetTask(id Identifier) (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.find(id)
	if i < 0 {
		return Task{}, false
	}
	return s.tasks[i], true
}

// find returns the position id selects, or -1.
func (s *Store) find(id Identifier) int {
	if id.IsIndex() {
		if id.Index() >= 0 && id.Index() < len(s.tasks) {
			return id.Index()
		}
		return -1
	}
	for i, t := range s.tasks {
		if id.matches(t) {
			return i
		}
	}
	return -1
}

// AddTask resolves dayHour, appends a new task and persists the list.
func (s *Store) AddTask(name, dayHour string, urgency int) (Task, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return Task{}, err
	}
	if err := validateUrgency(urgency); err != nil {
		return Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	due, err := s.resolver.Resolve(dayHour, s.clock())
	if err != nil {
		return Task{}, &ValidationError{Field: "deadline", Err: err}
	}

	task := Task{
		ID:       uuid.NewString(),
		Name:     name,
		Deadline: due,
		Urgency:  urgency,
	}
	next := append(slices.Clone(s.tasks), task)
	if err := s.commit(next); err != nil {
		return Task{}, err
	}

	s.logger.Info("task added", "id", task.ID, "name", task.Name, "deadline", task.Deadline, "urgency", task.Urgency)
	return task, nil
}

// ImportTasks adds tasks whose deadlines are already absolute, as one
// change: a single undo reverts the whole batch. Names are trimmed, ids are
// assigned where missing or already taken and every task is validated
// before anything is written.
func (s *Store) ImportTasks(tasks []Task) (int, error) {
	batch := make([]Task, 0, len(tasks))
	for i, t := range tasks {
		t.Name = strings.TrimSpace(t.Name)
		if err := validateName(t.Name); err != nil {
			return 0, fmt.Errorf("task %d: %w", i, err)
		}
		if err := validateUrgency(t.Urgency); err != nil {
			return 0, fmt.Errorf("task %d (%q): %w", i, t.Name, err)
		}
		if t.Deadline.IsZero() {
			return 0, fmt.Errorf("task %d (%q): %w", i, t.Name, &ValidationError{Field: "deadline", Msg: "is required"})
		}
		t.Deadline = t.Deadline.UTC()
		batch = append(batch, t)
	}
	if len(batch) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool, len(s.tasks)+len(batch))
	for _, t := range s.tasks {
		seen[t.ID] = true
	}
	for i := range batch {
		if batch[i].ID == "" || seen[batch[i].ID] {
			batch[i].ID = uuid.NewString()
		}
		seen[batch[i].ID] = true
	}

	if err := s.commit(append(slices.Clone(s.tasks), batch...)); err != nil {
		return 0, err
	}

	s.logger.Info("tasks imported", "count", len(batch))
	return len(batch), nil
}

// RemoveTask deletes the task at an index, or every task whose name
// matches a name identifier, and persists the result. It returns how many
// tasks were removed; a name matching nothing removes zero and still
// persists.
func (s *Store) RemoveTask(id Identifier) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var next []Task
	if id.IsIndex() {
		if id.Index() < 0 || id.Index() >= len(s.tasks) {
			return 0, &IndexError{Index: id.Index(), Len: len(s.tasks)}
		}
		next = slices.Delete(slices.Clone(s.tasks), id.Index(), id.Index()+1)
	} else {
		next = slices.DeleteFunc(slices.Clone(s.tasks), id.matches)
	}
	removed := len(s.tasks) - len(next)
	if err := s.commit(next); err != nil {
		return 0, err
	}

	s.logger.Info("task removed", "identifier", id.String(), "count", removed)
	return removed, nil
}

// UpdateTask applies u to the task id selects. Blank fields keep their
// current value. An identifier that selects nothing is not an error; the
// list and both files are left untouched.
func (s *Store) UpdateTask(id Identifier, u Update) error {
	name := strings.TrimSpace(u.Name)
	if name != "" {
		if err := validateName(name); err != nil {
			return err
		}
	}
	if u.Urgency != 0 {
		if err := validateUrgency(u.Urgency); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.find(id)
	if i < 0 {
		s.logger.Debug("update matched no task", "identifier", id.String())
		return nil
	}

	task := s.tasks[i]
	if name != "" {
		task.Name = name
	}
	if strings.TrimSpace(u.DayHour) != "" {
		due, err := s.resolver.Resolve(u.DayHour, s.clock())
		if err != nil {
			return &ValidationError{Field: "deadline", Err: err}
		}
		task.Deadline = due
	}
	if u.Urgency != 0 {
		task.Urgency = u.Urgency
	}

	next := slices.Clone(s.tasks)
	next[i] = task
	if err := s.commit(next); err != nil {
		return err
	}

	s.logger.Info("task updated", "id", task.ID, "name", task.Name, "deadline", task.Deadline, "urgency", task.Urgency)
	return nil
}

// Snapshot reads the undo slot.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readSnapshot()
}

// CanUndo reports whether Undo would change anything.
func (s *Store) CanUndo() bool {
	return !s.Snapshot().Empty()
}

// Undo replaces the list with the undo snapshot and then clears the
// snapshot. It reports false when there is nothing to undo. Undo is single
// level: a second call right after a successful one finds the slot empty.
//
// If restoring succeeds but clearing the slot fails, Undo returns true
// together with the error.
func (s *Store) Undo() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.readSnapshot()
	if snap.Empty() {
		return false, nil
	}

	if err := s.commit(snap.Tasks()); err != nil {
		return false, err
	}
	if err := fsutil.WriteFileAtomic(s.UndoPath(), emptyList, dataFilePerm); err != nil {
		return true, fmt.Errorf("clear %s: %w", s.undoFile, err)
	}

	s.logger.Info("undo applied", "count", len(s.tasks))
	return true, nil
}

func (s *Store) readSnapshot() Snapshot {
	data, err := os.ReadFile(s.UndoPath())
	if err != nil {
		return Snapshot{}
	}
	tasks, err := DecodeTasks(data, s.Location())
	if err != nil {
		s.logger.Debug("undo snapshot unusable", "file", s.UndoPath(), "err", err)
		return Snapshot{}
	}
	return FullSnapshot(tasks)
}

// commit sorts next, writes it to disk and only then makes it the
// in-memory list. Callers hold s.mu.
func (s *Store) commit(next []Task) error {
	sortTasks(next)
	if err := s.save(next); err != nil {
		return err
	}
	s.tasks = next
	return nil
}

// save copies the current task file into the undo slot byte for byte and
// then replaces the task file with tasks.
func (s *Store) save(tasks []Task) error {
	data, err := EncodeTasks(tasks)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dataDir, dataDirPerm); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := fsutil.CopyFile(s.TasksPath(), s.UndoPath(), emptyList, dataFilePerm); err != nil {
		return fmt.Errorf("snapshot %s: %w", s.taskFile, err)
	}
	if err := fsutil.WriteFileAtomic(s.TasksPath(), data, dataFilePerm); err != nil {
		return fmt.Errorf("write %s: %w", s.taskFile, err)
	}
	return nil
}

func sortTasks(tasks []Task) {
	slices.SortStableFunc(tasks, func(a, b Task) int {
		return a.Deadline.Compare(b.Deadline)
	})
}

func validateName(name string) error {
	if name == "" {
		return &ValidationError{Field: "name", Msg: "is required"}
	}
	if !utf8.ValidString(name) {
		return &ValidationError{Field: "name", Msg: "is not valid UTF-8"}
	}
	if len(name) > maxNameLen {
		return &ValidationError{Field: "name", Msg: fmt.Sprintf("too long (max %d)", maxNameLen)}
	}
	return nil
}
