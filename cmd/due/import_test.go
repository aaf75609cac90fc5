package main

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

const todoistCSV = `TYPE,CONTENT,PRIORITY,DATE
task,Pay rent,1,2024-04-15
task,Call mom,4,2024-04-12 18:30
task,Someday,4,
section,Header,,
`

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestImport_DryRun(t *testing.T) {
	dataDir := setupEnv(t)
	path := writeTempFile(t, "todoist.csv", todoistCSV)

	out := mustRun(t, "import", "--dry-run", "todoist", path)
	for _, want := range []string{
		"Preview: 3 tasks found",
		"Pay rent (urgency 5, 04-15 Monday 09:00)",
		"Call mom (urgency 1, 04-12 Friday 18:30)",
		"Someday (urgency 1, no due date, skipped)",
		"Run without --dry-run to import.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dry run output missing %q:\n%s", want, out)
		}
	}
	if names := taskNames(t, dataDir); len(names) != 0 {
		t.Errorf("dry run wrote tasks: %v", names)
	}
}

func TestImport_Todoist(t *testing.T) {
	dataDir := setupEnv(t)
	mustRun(t, "add", "Existing", "20 10", "2")
	path := writeTempFile(t, "todoist.csv", todoistCSV)

	out := mustRun(t, "import", "todoist", path)
	for _, want := range []string{
		"Imported: 2 tasks",
		"Skipped:  1 items",
		"- Someday: no due date",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("import output missing %q:\n%s", want, out)
		}
	}

	want := []string{"Call mom", "Pay rent", "Existing"}
	if got := taskNames(t, dataDir); !slices.Equal(got, want) {
		t.Errorf("tasks = %v, want %v", got, want)
	}

	// The whole import is one change.
	mustRun(t, "undo")
	if got := taskNames(t, dataDir); !slices.Equal(got, []string{"Existing"}) {
		t.Errorf("after undo tasks = %v, want [Existing]", got)
	}
}

func TestImport_TaskwarriorFromStdin(t *testing.T) {
	dataDir := setupEnv(t)
	input := `[{"description":"Write report","status":"pending","priority":"H","due":"20240420T170000Z"},
{"description":"Old chore","status":"completed","due":"20240401T170000Z"}]`

	r := runWithInput(t, input, "import", "taskwarrior", "-")
	if r.code != 0 {
		t.Fatalf("import exited %d: %s", r.code, r.stderr)
	}
	if !strings.Contains(r.stdout, "Imported: 1 tasks") {
		t.Errorf("output = %q", r.stdout)
	}

	out := mustRun(t, "list")
	if !strings.Contains(out, "Write report") || !strings.Contains(out, "04-20 Saturday 10:00") {
		t.Errorf("list after import:\n%s", out)
	}
	if got := taskNames(t, dataDir); !slices.Equal(got, []string{"Write report"}) {
		t.Errorf("tasks = %v, want [Write report]", got)
	}
}

func TestImport_Errors(t *testing.T) {
	setupEnv(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown format", []string{"import", "things", "x.csv"}, `unknown format "things"`},
		{"missing file", []string{"import", "todoist", filepath.Join(t.TempDir(), "nope.csv")}, "no such file"},
		{"bad csv", []string{"import", "todoist", writeTempFile(t, "bad.csv", "CONTENT\nfoo\n")}, "missing required column: TYPE"},
		{"missing args", []string{"import", "todoist"}, "accepts 2 arg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := run(t, tt.args...)
			if r.code == 0 {
				t.Fatalf("expected failure, got output %q", r.stdout)
			}
			if !strings.Contains(r.stderr, tt.want) {
				t.Errorf("stderr = %q, want it to contain %q", r.stderr, tt.want)
			}
		})
	}
}
