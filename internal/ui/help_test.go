package ui

import (
	"strings"
	"testing"

	"due/internal/config"
)

func TestHelpOverlay_ContentStructure(t *testing.T) {
	setupTest(t)

	help := NewHelpOverlay(createTestStyles(), NewKeyMap(nil), DefaultInputKeyMap())
	help.SetSize(100, 50)

	output := help.View()

	for _, section := range []string{"Tasks", "Navigation", "Prompts", "Deadlines"} {
		if !strings.Contains(output, section) {
			t.Errorf("help overlay should contain section: %s", section)
		}
	}
	for _, desc := range []string{"Add task", "Undo last change", "Reload from disk", "Quit"} {
		if !strings.Contains(output, desc) {
			t.Errorf("help overlay should describe: %s", desc)
		}
	}
}

func TestHelpOverlay_ShowsConfiguredKeys(t *testing.T) {
	setupTest(t)

	keys := &config.KeysConfig{Undo: "ctrl+u", Add: "n"}
	help := NewHelpOverlay(createTestStyles(), NewKeyMap(keys), NewInputKeyMap(keys))
	help.SetSize(100, 50)

	output := help.View()
	if !strings.Contains(output, "ctrl+u") {
		t.Error("help overlay should list the custom undo key")
	}
}

func TestHelpOverlay_NarrowTerminal(t *testing.T) {
	setupTest(t)

	help := NewHelpOverlay(createTestStyles(), NewKeyMap(nil), DefaultInputKeyMap())
	help.SetSize(30, 60)

	for _, line := range strings.Split(help.View(), "\n") {
		if w := len([]rune(line)); w > 30 {
			t.Fatalf("line is %d cells wide in a 30 cell terminal: %q", w, line)
		}
	}
}

func TestRenderCentered(t *testing.T) {
	out := RenderCentered("x", 5, 3)
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("RenderCentered() has %d lines, want 3", len(lines))
	}
	if lines[1] != "  x  " {
		t.Errorf("middle line = %q, want centered x", lines[1])
	}
}
