// This file contains tea.Cmd factories that wrap storage operations. Each
// command returns a corresponding message type defined in messages.go.
package ui

import (
	"time"

	"due/internal/storage"

	tea "github.com/charmbracelet/bubbletea"
)

// loadTasksCmd returns a command that partitions the current list.
func loadTasksCmd(store *storage.Store) tea.Cmd {
	return func() tea.Msg {
		now := store.Now()
		overdue, upcoming := store.Partition(now)
		return tasksLoadedMsg{now: now, overdue: overdue, upcoming: upcoming}
	}
}

// addTaskCmd returns a command that creates a new task.
func addTaskCmd(store *storage.Store, name, dayHour string, urgency int) tea.Cmd {
	return func() tea.Msg {
		task, err := store.AddTask(name, dayHour, urgency)
		return taskAddedMsg{task: task, err: err}
	}
}

// removeTaskCmd returns a command that removes the tasks id selects.
func removeTaskCmd(store *storage.Store, id storage.Identifier) tea.Cmd {
	return func() tea.Msg {
		n, err := store.RemoveTask(id)
		return taskRemovedMsg{id: id, removed: n, err: err}
	}
}

// updateTaskCmd returns a command that edits the task id selects.
func updateTaskCmd(store *storage.Store, id storage.Identifier, u storage.Update) tea.Cmd {
	return func() tea.Msg {
		return taskUpdatedMsg{id: id, err: store.UpdateTask(id, u)}
	}
}

// undoCmd returns a command that restores the previous list.
func undoCmd(store *storage.Store) tea.Cmd {
	return func() tea.Msg {
		undone, err := store.Undo()
		return undoResultMsg{undone: undone, err: err}
	}
}

// tickCmd returns a command that fires once a second.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
