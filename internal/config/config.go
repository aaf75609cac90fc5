// Package config handles configuration loading and defaults for due.
// Configuration is loaded from XDG-compliant paths (typically
// ~/.config/due/config.yaml). A config.toml in the same directory is read
// when no YAML file exists.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"due/internal/deadline"
	"due/internal/fsutil"
)

// DataDirEnv overrides the configured data directory when set.
const DataDirEnv = "DUE_DATA_DIR"

// Config represents the application configuration.
type Config struct {
	// DataDir overrides the default data directory (~/.due)
	DataDir string `yaml:"data_dir,omitempty" toml:"data_dir,omitempty"`

	// Timezone is the IANA zone deadlines are entered and shown in
	Timezone string `yaml:"timezone,omitempty" toml:"timezone,omitempty"`

	// Files names the task and undo files inside the data directory
	Files FilesConfig `yaml:"files,omitempty" toml:"files,omitempty"`

	// Theme customizes the visual appearance
	Theme ThemeConfig `yaml:"theme,omitempty" toml:"theme,omitempty"`

	// Keys customizes keyboard shortcuts
	Keys KeysConfig `yaml:"keys,omitempty" toml:"keys,omitempty"`

	// UX customizes user experience settings
	UX UXConfig `yaml:"ux,omitempty" toml:"ux,omitempty"`

	// Log configures the log output
	Log LogConfig `yaml:"log,omitempty" toml:"log,omitempty"`

	// Notify configures desktop reminders sent by 'due notify'
	Notify NotifyConfig `yaml:"notify,omitempty" toml:"notify,omitempty"`
}

// FilesConfig names the persisted files.
type FilesConfig struct {
	Tasks string `yaml:"tasks,omitempty" toml:"tasks,omitempty"` // default: tasks.json
	Undo  string `yaml:"undo,omitempty" toml:"undo,omitempty"`   // default: undo.json
}

// ThemeConfig defines color and style settings. Colors are hex values or
// ANSI 256 color numbers.
type ThemeConfig struct {
	// Primary color for headers and focused elements
	Primary string `yaml:"primary,omitempty" toml:"primary,omitempty"`

	// Accent color for highlights
	Accent string `yaml:"accent,omitempty" toml:"accent,omitempty"`

	// Muted color for secondary text
	Muted string `yaml:"muted,omitempty" toml:"muted,omitempty"`

	// Overdue colors the section title of overdue tasks
	Overdue string `yaml:"overdue,omitempty" toml:"overdue,omitempty"`

	// Urgency1..Urgency5 color task rows by urgency
	Urgency1 string `yaml:"urgency_1,omitempty" toml:"urgency_1,omitempty"`
	Urgency2 string `yaml:"urgency_2,omitempty" toml:"urgency_2,omitempty"`
	Urgency3 string `yaml:"urgency_3,omitempty" toml:"urgency_3,omitempty"`
	Urgency4 string `yaml:"urgency_4,omitempty" toml:"urgency_4,omitempty"`
	Urgency5 string `yaml:"urgency_5,omitempty" toml:"urgency_5,omitempty"`
}

// UrgencyColors returns the row colors indexed by urgency-1.
func (t ThemeConfig) UrgencyColors() [5]string {
	return [5]string{t.Urgency1, t.Urgency2, t.Urgency3, t.Urgency4, t.Urgency5}
}

// KeysConfig defines customizable keyboard shortcuts.
// Each field accepts a comma-separated list of key bindings.
// Examples: "q,ctrl+c", "tab", "j,down"
type KeysConfig struct {
	// Global keys
	Quit    string `yaml:"quit,omitempty" toml:"quit,omitempty"`       // default: "q,ctrl+c"
	Help    string `yaml:"help,omitempty" toml:"help,omitempty"`       // default: "?,h"
	Refresh string `yaml:"refresh,omitempty" toml:"refresh,omitempty"` // default: "l"

	// Navigation keys
	Up     string `yaml:"up,omitempty" toml:"up,omitempty"`         // default: "k,up"
	Down   string `yaml:"down,omitempty" toml:"down,omitempty"`     // default: "j,down"
	Top    string `yaml:"top,omitempty" toml:"top,omitempty"`       // default: "g,home"
	Bottom string `yaml:"bottom,omitempty" toml:"bottom,omitempty"` // default: "G,end"

	// Task keys
	Add    string `yaml:"add,omitempty" toml:"add,omitempty"`       // default: "a"
	Remove string `yaml:"remove,omitempty" toml:"remove,omitempty"` // default: "r,x"
	Update string `yaml:"update,omitempty" toml:"update,omitempty"` // default: "u,e"
	Undo   string `yaml:"undo,omitempty" toml:"undo,omitempty"`     // default: "z,ctrl+z"

	// Form keys
	Confirm   string `yaml:"confirm,omitempty" toml:"confirm,omitempty"`       // default: "enter"
	Cancel    string `yaml:"cancel,omitempty" toml:"cancel,omitempty"`         // default: "esc"
	NextField string `yaml:"next_field,omitempty" toml:"next_field,omitempty"` // default: "tab,down"
	PrevField string `yaml:"prev_field,omitempty" toml:"prev_field,omitempty"` // default: "shift+tab,up"
}

// UXConfig defines user experience settings.
type UXConfig struct {
	// ConfirmDeletions asks before removing tasks in the TUI
	ConfirmDeletions bool `yaml:"confirm_deletions,omitempty" toml:"confirm_deletions,omitempty"` // default: true

	// ShowHelpOnStart opens the help overlay when the TUI starts
	ShowHelpOnStart bool `yaml:"show_help_on_start,omitempty" toml:"show_help_on_start,omitempty"` // default: false

	// NameWidth is the widest the task name column may get
	NameWidth int `yaml:"name_width,omitempty" toml:"name_width,omitempty"` // default: 60
}

// LogConfig defines logging settings.
type LogConfig struct {
	Level  string `yaml:"level,omitempty" toml:"level,omitempty"`   // debug, info, warn, error
	Format string `yaml:"format,omitempty" toml:"format,omitempty"` // text, json, logfmt
	// File is where the TUI logs; relative paths are inside the data dir
	File string `yaml:"file,omitempty" toml:"file,omitempty"`
}

// NotifyConfig defines reminder settings.
type NotifyConfig struct {
	// Within is how far ahead a deadline counts as due soon (Go duration)
	Within string `yaml:"within,omitempty" toml:"within,omitempty"` // default: 24h

	// Sound plays the platform notification sound
	Sound bool `yaml:"sound,omitempty" toml:"sound,omitempty"` // default: false
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		DataDir:  defaultDataDir(),
		Timezone: deadline.DefaultTimezone,
		Files: FilesConfig{
			Tasks: "tasks.json",
			Undo:  "undo.json",
		},
		Theme: ThemeConfig{
			Primary:  "#7C3AED", // Violet
			Accent:   "#10B981", // Emerald
			Muted:    "#6B7280", // Gray
			Overdue:  "9",       // Bright red
			Urgency1: "10",      // Green
			Urgency2: "192",     // Yellow-green
			Urgency3: "226",     // Yellow
			Urgency4: "214",     // Orange
			Urgency5: "9",       // Red
		},
		Keys: KeysConfig{
			// Defaults are empty strings, which means use built-in defaults
		},
		UX: UXConfig{
			ConfirmDeletions: true,
			ShowHelpOnStart:  false,
			NameWidth:        60,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			File:   "due.log",
		},
		Notify: NotifyConfig{
			Within: "24h",
		},
	}
}

// defaultDataDir returns the default data directory path.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".due"
	}
	return filepath.Join(home, ".due")
}

// Dir returns the configuration directory path (XDG compliant).
func Dir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "due")
	}

	// Fall back to ~/.config/due
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "due")
}

// Path returns the path of the YAML config file.
func Path() string {
	dir := Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

func tomlPath() string {
	dir := Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.toml")
}

// presence reports whether a key path was set explicitly in the file.
type presence func(path ...string) bool

// Load reads configuration from disk, merging with defaults.
// If no config file exists, returns default configuration.
func Load() (*Config, error) {
	cfg := Default()

	path := Path()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := cfg.applyYAML(data); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return cfg, nil
	case !errors.Is(err, fs.ErrNotExist):
		return nil, err
	}

	data, err = os.ReadFile(tomlPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// No config file, use defaults
			return cfg, nil
		}
		return nil, err
	}
	if err := cfg.applyTOML(data); err != nil {
		return nil, fmt.Errorf("parse %s: %w", tomlPath(), err)
	}
	return cfg, nil
}

func (c *Config) applyYAML(data []byte) error {
	var userCfg Config
	if err := yaml.Unmarshal(data, &userCfg); err != nil {
		return err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil || len(doc.Content) == 0 {
		// Fall back to conservative merge if presence cannot be inspected.
		c.mergeNonEmpty(&userCfg)
		return nil
	}

	c.mergeFrom(&userCfg, func(path ...string) bool { return yamlHasPath(&doc, path...) })
	return nil
}

func (c *Config) applyTOML(data []byte) error {
	var userCfg Config
	md, err := toml.Decode(string(data), &userCfg)
	if err != nil {
		return err
	}
	c.mergeFrom(&userCfg, md.IsDefined)
	return nil
}

// mergeNonEmpty applies non-empty values from other to c.
// It intentionally does not touch booleans (those require presence-aware merging).
func (c *Config) mergeNonEmpty(other *Config) {
	setString(&c.DataDir, other.DataDir)
	setString(&c.Timezone, other.Timezone)

	setString(&c.Files.Tasks, other.Files.Tasks)
	setString(&c.Files.Undo, other.Files.Undo)

	// Theme merging
	setString(&c.Theme.Primary, other.Theme.Primary)
	setString(&c.Theme.Accent, other.Theme.Accent)
	setString(&c.Theme.Muted, other.Theme.Muted)
	setString(&c.Theme.Overdue, other.Theme.Overdue)
	setString(&c.Theme.Urgency1, other.Theme.Urgency1)
	setString(&c.Theme.Urgency2, other.Theme.Urgency2)
	setString(&c.Theme.Urgency3, other.Theme.Urgency3)
	setString(&c.Theme.Urgency4, other.Theme.Urgency4)
	setString(&c.Theme.Urgency5, other.Theme.Urgency5)

	// Keys merging
	setString(&c.Keys.Quit, other.Keys.Quit)
	setString(&c.Keys.Help, other.Keys.Help)
	setString(&c.Keys.Refresh, other.Keys.Refresh)
	setString(&c.Keys.Up, other.Keys.Up)
	setString(&c.Keys.Down, other.Keys.Down)
	setString(&c.Keys.Top, other.Keys.Top)
	setString(&c.Keys.Bottom, other.Keys.Bottom)
	setString(&c.Keys.Add, other.Keys.Add)
	setString(&c.Keys.Remove, other.Keys.Remove)
	setString(&c.Keys.Update, other.Keys.Update)
	setString(&c.Keys.Undo, other.Keys.Undo)
	setString(&c.Keys.Confirm, other.Keys.Confirm)
	setString(&c.Keys.Cancel, other.Keys.Cancel)
	setString(&c.Keys.NextField, other.Keys.NextField)
	setString(&c.Keys.PrevField, other.Keys.PrevField)

	if other.UX.NameWidth > 0 {
		c.UX.NameWidth = other.UX.NameWidth
	}

	setString(&c.Log.Level, other.Log.Level)
	setString(&c.Log.Format, other.Log.Format)
	setString(&c.Log.File, other.Log.File)

	setString(&c.Notify.Within, other.Notify.Within)
}

func (c *Config) mergeFrom(other *Config, has presence) {
	// First apply all non-empty string-ish merges.
	c.mergeNonEmpty(other)

	// Now re-apply booleans only when present in the file.
	if has("ux", "confirm_deletions") {
		c.UX.ConfirmDeletions = other.UX.ConfirmDeletions
	}
	if has("ux", "show_help_on_start") {
		c.UX.ShowHelpOnStart = other.UX.ShowHelpOnStart
	}
	if has("notify", "sound") {
		c.Notify.Sound = other.Notify.Sound
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func yamlHasPath(doc *yaml.Node, path ...string) bool {
	if doc == nil || len(path) == 0 {
		return false
	}

	// Document -> root mapping.
	n := doc
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	for _, key := range path {
		if n == nil || n.Kind != yaml.MappingNode {
			return false
		}
		var next *yaml.Node
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			v := n.Content[i+1]
			if k.Kind == yaml.ScalarNode && k.Value == key {
				next = v
				break
			}
		}
		if next == nil {
			return false
		}
		n = next
	}
	return true
}

// Save writes the configuration to the YAML config file.
func (c *Config) Save() error {
	path := Path()
	if path == "" {
		return nil
	}

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return fsutil.WriteFileAtomic(path, data, 0600)
}

// GetDataDir returns the resolved data directory path. DUE_DATA_DIR wins
// over the configured value.
func (c *Config) GetDataDir() string {
	dir := c.DataDir
	if env := strings.TrimSpace(os.Getenv(DataDirEnv)); env != "" {
		dir = env
	}
	if dir == "" {
		return defaultDataDir()
	}
	return expandHome(dir)
}

// LogPath returns where the TUI writes its log.
func (c *Config) LogPath() string {
	file := c.Log.File
	if file == "" {
		file = "due.log"
	}
	file = expandHome(file)
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(c.GetDataDir(), file)
}

func expandHome(p string) string {
	if p == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return p
	}
	if strings.HasPrefix(p, "~/") || strings.HasPrefix(p, `~\`) {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	return p
}
