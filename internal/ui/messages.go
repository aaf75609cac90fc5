// This file defines message types for async I/O operations using the Bubble
// Tea command pattern. All storage operations return these messages to keep
// the event loop non-blocking.
package ui

import (
	"time"

	"due/internal/storage"
)

// tasksLoadedMsg carries the list split around now.
type tasksLoadedMsg struct {
	now      time.Time
	overdue  []storage.Entry
	upcoming []storage.Entry
}

// taskAddedMsg is sent when a new task is created.
type taskAddedMsg struct {
	task storage.Task
	err  error
}

// taskRemovedMsg is sent after a removal was persisted.
type taskRemovedMsg struct {
	id      storage.Identifier
	removed int
	err     error
}

// taskUpdatedMsg is sent after an update was persisted.
type taskUpdatedMsg struct {
	id  storage.Identifier
	err error
}

// undoResultMsg is sent when an undo operation completes.
type undoResultMsg struct {
	undone bool
	err    error
}

// tickMsg drives status expiry and the minute refresh.
type tickMsg time.Time
