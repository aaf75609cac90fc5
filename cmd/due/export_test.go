package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func addReportTasks(t *testing.T) {
	t.Helper()
	mustRun(t, "add", "Late", "10 03", "4")
	mustRun(t, "add", "Standup", "10 09", "3")
	mustRun(t, "add", "Friday review", "12 18", "3")
}

func TestExport_DailyMarkdown(t *testing.T) {
	setupEnv(t)
	addReportTasks(t)

	out := mustRun(t, "export")
	for _, want := range []string{
		"# Daily Report: Wednesday, April 10, 2024",
		"_Times in America/Los_Angeles_",
		"- [ ] **Wed 04-10 03:00** Late (urgency 4)",
		"- [ ] **09:00** Standup (urgency 3)",
		"1 more task due later.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestExport_Date(t *testing.T) {
	setupEnv(t)
	addReportTasks(t)

	out := mustRun(t, "export", "2024-04-12")
	if !strings.Contains(out, "# Daily Report: Friday, April 12, 2024") {
		t.Errorf("wrong heading:\n%s", out)
	}
	if !strings.Contains(out, "- [ ] **18:00** Friday review (urgency 3)") {
		t.Errorf("Friday task not due that day:\n%s", out)
	}
}

func TestExport_WeeklyJSONToFile(t *testing.T) {
	setupEnv(t)
	addReportTasks(t)
	path := filepath.Join(t.TempDir(), "reports", "weekly.json")

	out := mustRun(t, "export", "--weekly", "--format", "json", "--output", path)
	if !strings.Contains(out, "Report written to "+path) {
		t.Errorf("output = %q", out)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("report file not written: %v", err)
	}
	var report struct {
		DueCount int `json:"due_count"`
		ByDay    []struct {
			Date  string            `json:"date"`
			Tasks []json.RawMessage `json:"tasks"`
		} `json:"by_day"`
	}
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("report is not JSON: %v", err)
	}
	if report.DueCount != 3 {
		t.Errorf("due_count = %d, want 3", report.DueCount)
	}
	if len(report.ByDay) != 7 || report.ByDay[0].Date != "2024-04-07" {
		t.Errorf("by_day = %+v, want a week starting 2024-04-07", report.ByDay)
	}
	if len(report.ByDay[3].Tasks) != 2 {
		t.Errorf("Wednesday has %d tasks, want 2", len(report.ByDay[3].Tasks))
	}
}

func TestExport_Errors(t *testing.T) {
	setupEnv(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad format", []string{"export", "--format", "pdf"}, `invalid format "pdf"`},
		{"bad date", []string{"export", "04/10/2024"}, `invalid date "04/10/2024"`},
		{"too many args", []string{"export", "2024-04-10", "2024-04-11"}, "accepts at most 1 arg"},
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
