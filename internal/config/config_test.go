package config

import (
	"os"
	"path/filepath"
	"testing"
)

// useConfigHome points XDG_CONFIG_HOME at a temp dir and returns the due
// config directory inside it.
func useConfigHome(t *testing.T) string {
	t.Helper()
	tempDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tempDir)
	t.Setenv(DataDirEnv, "")

	dir := filepath.Join(tempDir, "due")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	return dir
}

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.DataDir == "" {
		t.Error("DataDir should not be empty")
	}
	if cfg.Timezone != "America/Los_Angeles" {
		t.Errorf("Timezone = %q, want America/Los_Angeles", cfg.Timezone)
	}
	if cfg.Files.Tasks != "tasks.json" || cfg.Files.Undo != "undo.json" {
		t.Errorf("Files = %+v, want tasks.json/undo.json", cfg.Files)
	}
	for i, c := range cfg.Theme.UrgencyColors() {
		if c == "" {
			t.Errorf("urgency %d color should have a default value", i+1)
		}
	}
	if !cfg.UX.ConfirmDeletions {
		t.Error("UX.ConfirmDeletions should default to true")
	}
	if cfg.Notify.Within != "24h" || cfg.Notify.Sound {
		t.Errorf("Notify = %+v, want within 24h without sound", cfg.Notify)
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	useConfigHome(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Should return defaults
	if cfg.Theme.Primary != "#7C3AED" {
		t.Errorf("Theme.Primary = %q, want #7C3AED", cfg.Theme.Primary)
	}
}

func TestLoad_WithConfigFile(t *testing.T) {
	dir := useConfigHome(t)
	writeConfig(t, dir, "config.yaml", `
data_dir: /custom/data
timezone: Europe/Berlin
files:
  tasks: mine.json
theme:
  primary: "#FF0000"
  urgency_5: "196"
log:
  level: debug
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.DataDir != "/custom/data" {
		t.Errorf("DataDir = %q, want /custom/data", cfg.DataDir)
	}
	if cfg.Timezone != "Europe/Berlin" {
		t.Errorf("Timezone = %q, want Europe/Berlin", cfg.Timezone)
	}
	if cfg.Files.Tasks != "mine.json" {
		t.Errorf("Files.Tasks = %q, want mine.json", cfg.Files.Tasks)
	}
	// Undo file should still be default
	if cfg.Files.Undo != "undo.json" {
		t.Errorf("Files.Undo = %q, want undo.json", cfg.Files.Undo)
	}
	if cfg.Theme.Primary != "#FF0000" {
		t.Errorf("Theme.Primary = %q, want #FF0000", cfg.Theme.Primary)
	}
	if cfg.Theme.Urgency5 != "196" {
		t.Errorf("Theme.Urgency5 = %q, want 196", cfg.Theme.Urgency5)
	}
	// Muted should still be default
	if cfg.Theme.Muted != "#6B7280" {
		t.Errorf("Theme.Muted = %q, want #6B7280", cfg.Theme.Muted)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "text" {
		t.Errorf("Log = %+v, want level debug and default format", cfg.Log)
	}
}

func TestLoad_TOMLFallback(t *testing.T) {
	dir := useConfigHome(t)
	writeConfig(t, dir, "config.toml", `
timezone = "Asia/Tokyo"

[theme]
accent = "#00FF00"

[ux]
confirm_deletions = false

[notify]
within = "2h"
sound = true
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Timezone != "Asia/Tokyo" {
		t.Errorf("Timezone = %q, want Asia/Tokyo", cfg.Timezone)
	}
	if cfg.Theme.Accent != "#00FF00" {
		t.Errorf("Theme.Accent = %q, want #00FF00", cfg.Theme.Accent)
	}
	if cfg.UX.ConfirmDeletions {
		t.Error("UX.ConfirmDeletions = true, want explicit false from TOML")
	}
	if cfg.UX.NameWidth != 60 {
		t.Errorf("UX.NameWidth = %d, want default 60", cfg.UX.NameWidth)
	}
	if cfg.Notify.Within != "2h" || !cfg.Notify.Sound {
		t.Errorf("Notify = %+v, want within 2h with sound", cfg.Notify)
	}
}

func TestLoad_YAMLWinsOverTOML(t *testing.T) {
	dir := useConfigHome(t)
	writeConfig(t, dir, "config.yaml", "timezone: UTC\n")
	writeConfig(t, dir, "config.toml", `timezone = "Asia/Tokyo"`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Timezone != "UTC" {
		t.Errorf("Timezone = %q, want UTC from config.yaml", cfg.Timezone)
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := useConfigHome(t)
	writeConfig(t, dir, "config.yaml", "theme: [unclosed\n")

	if _, err := Load(); err == nil {
		t.Error("Load() should fail on malformed YAML")
	}
}

func TestMerge(t *testing.T) {
	base := Default()
	override := &Config{
		DataDir: "/override/path",
		Theme: ThemeConfig{
			Primary: "#CUSTOM",
		},
		Keys: KeysConfig{
			Undo: "ctrl+u",
		},
	}

	base.mergeNonEmpty(override)

	if base.DataDir != "/override/path" {
		t.Errorf("DataDir = %q, want /override/path", base.DataDir)
	}
	if base.Theme.Primary != "#CUSTOM" {
		t.Errorf("Theme.Primary = %q, want #CUSTOM", base.Theme.Primary)
	}
	if base.Keys.Undo != "ctrl+u" {
		t.Errorf("Keys.Undo = %q, want ctrl+u", base.Keys.Undo)
	}

	// Accent should remain default
	if base.Theme.Accent != "#10B981" {
		t.Errorf("Theme.Accent = %q, want #10B981", base.Theme.Accent)
	}
}

func TestLoad_MissingBoolKeysDoesNotClobberDefaults(t *testing.T) {
	dir := useConfigHome(t)
	// Config file that only touches theme and one UX boolean.
	writeConfig(t, dir, "config.yaml", `
theme:
  primary: "#FF0000"
ux:
  show_help_on_start: true
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Explicit key should override default.
	if !cfg.UX.ShowHelpOnStart {
		t.Errorf("UX.ShowHelpOnStart = %v, want true", cfg.UX.ShowHelpOnStart)
	}

	// Omitted keys must not clobber defaults.
	if !cfg.UX.ConfirmDeletions {
		t.Errorf("UX.ConfirmDeletions = %v, want true", cfg.UX.ConfirmDeletions)
	}
}

func TestLoad_ExplicitFalseOverridesDefault(t *testing.T) {
	dir := useConfigHome(t)
	writeConfig(t, dir, "config.yaml", `
ux:
  confirm_deletions: false
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.UX.ConfirmDeletions {
		t.Errorf("UX.ConfirmDeletions = %v, want false", cfg.UX.ConfirmDeletions)
	}
}

func TestGetDataDir(t *testing.T) {
	t.Setenv(DataDirEnv, "")

	tests := []struct {
		name    string
		dataDir string
		want    string
	}{
		{
			name:    "empty uses default",
			dataDir: "",
			want:    "",
		},
		{
			name:    "absolute path",
			dataDir: "/custom/path",
			want:    "/custom/path",
		},
	}

	if home, err := os.UserHomeDir(); err == nil && home != "" {
		tests = append(tests,
			struct {
				name    string
				dataDir string
				want    string
			}{
				name:    "tilde expands home",
				dataDir: "~",
				want:    home,
			},
			struct {
				name    string
				dataDir string
				want    string
			}{
				name:    "tilde path expands home",
				dataDir: "~/mydata",
				want:    filepath.Join(home, "mydata"),
			},
		)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{DataDir: tt.dataDir}
			got := cfg.GetDataDir()

			if tt.dataDir == "" {
				// Should end with .due
				if filepath.Base(got) != ".due" {
					t.Errorf("GetDataDir() = %q, want to end with .due", got)
				}
			} else if got != tt.want {
				t.Errorf("GetDataDir() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetDataDir_EnvOverride(t *testing.T) {
	t.Setenv(DataDirEnv, "/from/env")

	cfg := &Config{DataDir: "/from/config"}
	if got := cfg.GetDataDir(); got != "/from/env" {
		t.Errorf("GetDataDir() = %q, want /from/env", got)
	}
}

func TestLogPath(t *testing.T) {
	t.Setenv(DataDirEnv, "")

	cfg := &Config{DataDir: "/data", Log: LogConfig{File: "due.log"}}
	if got := cfg.LogPath(); got != filepath.Join("/data", "due.log") {
		t.Errorf("LogPath() = %q, want inside data dir", got)
	}

	cfg.Log.File = "/var/log/due.log"
	if got := cfg.LogPath(); got != "/var/log/due.log" {
		t.Errorf("LogPath() = %q, want absolute path unchanged", got)
	}
}

func TestSave(t *testing.T) {
	dir := useConfigHome(t)

	cfg := Default()
	cfg.DataDir = "/saved/path"
	cfg.Theme.Primary = "#SAVED"

	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// Verify file was created
	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Fatalf("config file not created: %v", err)
	}

	// Load and verify
	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if loaded.DataDir != "/saved/path" {
		t.Errorf("loaded DataDir = %q, want /saved/path", loaded.DataDir)
	}
	if loaded.Theme.Primary != "#SAVED" {
		t.Errorf("loaded Theme.Primary = %q, want #SAVED", loaded.Theme.Primary)
	}
}
