// Package ui provides the terminal user interface for due.
// This file defines key bindings using the Bubble Tea key package for
// type-safe key matching, help text generation, and customization.
package ui

import (
	"strings"

	"due/internal/config"

	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// Helpers
// =============================================================================

// parseKeys splits a comma-separated string into individual keys.
// If the input is empty, returns the default keys.
func parseKeys(customKeys string, defaultKeys ...string) []string {
	if customKeys == "" {
		return defaultKeys
	}
	keys := strings.Split(customKeys, ",")
	result := make([]string, 0, len(keys))
	for _, k := range keys {
		trimmed := strings.TrimSpace(k)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultKeys
	}
	return result
}

// helpLabel is the key shown in help text: the first configured key.
func helpLabel(keys []string) string {
	if len(keys) == 0 {
		return ""
	}
	return keys[0]
}

func binding(keys []string, desc string) key.Binding {
	return key.NewBinding(
		key.WithKeys(keys...),
		key.WithHelp(helpLabel(keys), desc),
	)
}

// =============================================================================
// Global Keys
// =============================================================================

// GlobalKeyMap defines keys available whenever no prompt is open.
type GlobalKeyMap struct {
	Quit    key.Binding
	Help    key.Binding
	Refresh key.Binding
	Undo    key.Binding
}

// DefaultGlobalKeyMap returns the default global key bindings.
func DefaultGlobalKeyMap() GlobalKeyMap {
	return NewGlobalKeyMap(&config.KeysConfig{})
}

// NewGlobalKeyMap creates global key bindings from config.
func NewGlobalKeyMap(cfg *config.KeysConfig) GlobalKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return GlobalKeyMap{
		Quit:    binding(parseKeys(cfg.Quit, "q", "ctrl+c"), "quit"),
		Help:    binding(parseKeys(cfg.Help, "?", "h"), "help"),
		Refresh: binding(parseKeys(cfg.Refresh, "l"), "refresh"),
		Undo:    binding(parseKeys(cfg.Undo, "z", "ctrl+z"), "undo"),
	}
}

// =============================================================================
// Navigation Keys
// =============================================================================

// NavigationKeyMap defines keys for moving the selection.
type NavigationKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding
}

// NewNavigationKeyMap creates navigation key bindings from config.
func NewNavigationKeyMap(cfg *config.KeysConfig) NavigationKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return NavigationKeyMap{
		Up: key.NewBinding(
			key.WithKeys(parseKeys(cfg.Up, "k", "up")...),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys(parseKeys(cfg.Down, "j", "down")...),
			key.WithHelp("j/↓", "down"),
		),
		Top:    binding(parseKeys(cfg.Top, "g", "home"), "top"),
		Bottom: binding(parseKeys(cfg.Bottom, "G", "end"), "bottom"),
	}
}

// =============================================================================
// Task Keys
// =============================================================================

// TaskKeyMap defines keys acting on the task list.
type TaskKeyMap struct {
	Add    key.Binding
	Remove key.Binding
	Update key.Binding
	NavigationKeyMap
}

// DefaultTaskKeyMap returns the default task key bindings.
func DefaultTaskKeyMap() TaskKeyMap {
	return NewTaskKeyMap(&config.KeysConfig{})
}

// NewTaskKeyMap creates task key bindings from config.
func NewTaskKeyMap(cfg *config.KeysConfig) TaskKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return TaskKeyMap{
		Add:              binding(parseKeys(cfg.Add, "a"), "add"),
		Remove:           binding(parseKeys(cfg.Remove, "r", "x"), "remove"),
		Update:           binding(parseKeys(cfg.Update, "u", "e"), "update"),
		NavigationKeyMap: NewNavigationKeyMap(cfg),
	}
}

// =============================================================================
// Input Keys
// =============================================================================

// InputKeyMap defines keys for prompt forms.
type InputKeyMap struct {
	Confirm   key.Binding
	Cancel    key.Binding
	NextField key.Binding
	PrevField key.Binding
}

// DefaultInputKeyMap returns the default input key bindings.
func DefaultInputKeyMap() InputKeyMap {
	return NewInputKeyMap(&config.KeysConfig{})
}

// NewInputKeyMap creates input key bindings from config.
func NewInputKeyMap(cfg *config.KeysConfig) InputKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return InputKeyMap{
		Confirm:   binding(parseKeys(cfg.Confirm, "enter"), "confirm"),
		Cancel:    binding(parseKeys(cfg.Cancel, "esc"), "cancel"),
		NextField: binding(parseKeys(cfg.NextField, "tab", "down"), "next field"),
		PrevField: binding(parseKeys(cfg.PrevField, "shift+tab", "up"), "prev field"),
	}
}

// ShortHelp implements help.KeyMap.
func (k InputKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.NextField, k.Cancel}
}

// FullHelp implements help.KeyMap.
func (k InputKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Confirm, k.Cancel}, {k.NextField, k.PrevField}}
}

// =============================================================================
// Combined map for the help bar
// =============================================================================

// KeyMap is everything bound in list mode.
type KeyMap struct {
	Global GlobalKeyMap
	Tasks  TaskKeyMap
}

// NewKeyMap creates the list-mode key map from config.
func NewKeyMap(cfg *config.KeysConfig) KeyMap {
	return KeyMap{
		Global: NewGlobalKeyMap(cfg),
		Tasks:  NewTaskKeyMap(cfg),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Tasks.Add, k.Tasks.Remove, k.Tasks.Update, k.Global.Undo,
		k.Tasks.Down, k.Global.Help, k.Global.Quit,
	}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tasks.Add, k.Tasks.Remove, k.Tasks.Update, k.Global.Undo},
		{k.Tasks.Up, k.Tasks.Down, k.Tasks.Top, k.Tasks.Bottom},
		{k.Global.Refresh, k.Global.Help, k.Global.Quit},
	}
}

// =============================================================================
// Help Overlay Keys
// =============================================================================

// HelpKeyMap defines keys for the help overlay.
type HelpKeyMap struct {
	Close key.Binding
}

// DefaultHelpKeyMap returns the default help overlay key bindings.
func DefaultHelpKeyMap() HelpKeyMap {
	return HelpKeyMap{
		Close: key.NewBinding(
			key.WithKeys("?", "h", "esc", "q", "enter", " "),
			key.WithHelp("any key", "close"),
		),
	}
}
