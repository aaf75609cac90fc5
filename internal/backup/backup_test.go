// This file contains tests for the backup module.
package backup

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"due/internal/storage"
)

var testNow = time.Date(2024, time.April, 10, 12, 0, 0, 0, time.UTC)

// createTestData writes a task file with two tasks and an undo snapshot
// holding one, using the real store.
func createTestData(t *testing.T, dataDir string) *storage.Store {
	t.Helper()

	store, err := storage.New(dataDir)
	if err != nil {
		t.Fatalf("storage.New() error: %v", err)
	}
	store.SetNowFunc(func() time.Time { return testNow })
	for _, task := range []struct{ name, due string }{{"Task 1", "15 10"}, {"Task 2", "20 10"}} {
		if _, err := store.AddTask(task.name, task.due, 3); err != nil {
			t.Fatalf("AddTask() error: %v", err)
		}
	}
	return store
}

func readManifest(t *testing.T, path string) Manifest {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read manifest: %v", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("failed to unmarshal manifest: %v", err)
	}
	return m
}

func taskNames(t *testing.T, dataDir string) []string {
	t.Helper()

	store, err := storage.New(dataDir)
	if err != nil {
		t.Fatalf("storage.New() error: %v", err)
	}
	var names []string
	for _, task := range store.ListTasks() {
		names = append(names, task.Name)
	}
	return names
}

// TestManager_Create tests backup creation.
func TestManager_Create(t *testing.T) {
	tmpDir := t.TempDir()
	createTestData(t, tmpDir)

	manager := NewManager(tmpDir, "1.2.0-test")

	name, err := manager.Create()
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	// Verify backup name format (2006-01-02_150405_XXX where XXX is milliseconds)
	if len(name) != 21 {
		t.Errorf("Expected backup name length 21, got %d: %s", len(name), name)
	}

	backupPath := filepath.Join(tmpDir, BackupsDir, name)
	for _, filename := range []string{storage.TasksFile, storage.UndoFile} {
		got, err := os.ReadFile(filepath.Join(backupPath, filename))
		if err != nil {
			t.Errorf("File not backed up: %s", filename)
			continue
		}
		want, _ := os.ReadFile(filepath.Join(tmpDir, filename))
		if string(got) != string(want) {
			t.Errorf("%s backup differs from the original", filename)
		}
	}

	manifest := readManifest(t, filepath.Join(backupPath, ManifestFile))
	if manifest.Version != ManifestVersion {
		t.Errorf("Expected manifest version %s, got %s", ManifestVersion, manifest.Version)
	}
	if manifest.AppVersion != "1.2.0-test" {
		t.Errorf("Expected app version 1.2.0-test, got %s", manifest.AppVersion)
	}
	if manifest.Stats[storage.TasksFile] != 2 {
		t.Errorf("Expected 2 tasks, got %d", manifest.Stats[storage.TasksFile])
	}
	if manifest.Stats[storage.UndoFile] != 1 {
		t.Errorf("Expected 1 task in the undo snapshot, got %d", manifest.Stats[storage.UndoFile])
	}
}

// TestManager_CreateSameMillisecond tests that back to back backups get
// distinct names.
func TestManager_CreateSameMillisecond(t *testing.T) {
	tmpDir := t.TempDir()
	createTestData(t, tmpDir)
	manager := NewManager(tmpDir, "1.0.0")

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		name, err := manager.Create()
		if err != nil {
			t.Fatalf("Create() error: %v", err)
		}
		if seen[name] {
			t.Fatalf("duplicate backup name %s", name)
		}
		seen[name] = true
	}
}

// TestManager_List tests listing backups.
func TestManager_List(t *testing.T) {
	tmpDir := t.TempDir()
	createTestData(t, tmpDir)

	manager := NewManager(tmpDir, "1.0.0")

	backups, err := manager.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("Expected 0 backups, got %d", len(backups))
	}

	name1, _ := manager.Create()
	time.Sleep(10 * time.Millisecond)
	name2, _ := manager.Create()

	// Stray files and foreign directories are ignored.
	_ = os.WriteFile(filepath.Join(tmpDir, BackupsDir, "notes.txt"), []byte("x"), 0600)
	_ = os.Mkdir(filepath.Join(tmpDir, BackupsDir, "not-a-backup"), 0700)

	backups, err = manager.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(backups) != 2 {
		t.Fatalf("Expected 2 backups, got %d", len(backups))
	}
	if backups[0].Name != name2 {
		t.Errorf("Expected newest backup %s first, got %s", name2, backups[0].Name)
	}
	if backups[1].Name != name1 {
		t.Errorf("Expected older backup %s second, got %s", name1, backups[1].Name)
	}
}

// TestManager_Restore tests restoring from a backup.
func TestManager_Restore(t *testing.T) {
	tmpDir := t.TempDir()
	store := createTestData(t, tmpDir)

	manager := NewManager(tmpDir, "1.0.0")

	name, err := manager.Create()
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	if _, err := store.RemoveTask(storage.ByIndex(0)); err != nil {
		t.Fatalf("RemoveTask() error: %v", err)
	}
	if got := taskNames(t, tmpDir); len(got) != 1 {
		t.Fatalf("Expected 1 task after removal, got %v", got)
	}

	if err := manager.Restore(name); err != nil {
		t.Fatalf("Restore() error: %v", err)
	}

	if got := strings.Join(taskNames(t, tmpDir), ","); got != "Task 1,Task 2" {
		t.Errorf("Expected both tasks after restore, got %s", got)
	}
	// The undo slot comes back too.
	if n := store.Reload(); n != 2 {
		t.Errorf("Reload() = %d, want 2", n)
	}
	if snap := store.Snapshot(); snap.Empty() || len(snap.Tasks()) != 1 {
		t.Errorf("Snapshot() = %+v, want the one-task snapshot from the backup", snap)
	}
}

// TestManager_RestoreLatest tests restoring the most recent backup.
func TestManager_RestoreLatest(t *testing.T) {
	tmpDir := t.TempDir()
	store := createTestData(t, tmpDir)

	manager := NewManager(tmpDir, "1.0.0")

	if _, err := manager.Create(); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	if _, err := store.AddTask("Modified Task", "25 10", 1); err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)
	second, err := manager.Create()
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	if _, err := store.RemoveTask(storage.ByName("Task 1")); err != nil {
		t.Fatal(err)
	}

	name, err := manager.RestoreLatest()
	if err != nil {
		t.Fatalf("RestoreLatest() error: %v", err)
	}
	if name != second {
		t.Errorf("RestoreLatest() restored %s, want %s", name, second)
	}

	if got := strings.Join(taskNames(t, tmpDir), ","); got != "Task 1,Task 2,Modified Task" {
		t.Errorf("restored tasks = %s", got)
	}
}

// TestManager_RestoreRejectsInvalidBackup tests that a damaged backup
// leaves the current files alone.
func TestManager_RestoreRejectsInvalidBackup(t *testing.T) {
	tmpDir := t.TempDir()
	createTestData(t, tmpDir)

	manager := NewManager(tmpDir, "1.0.0")
	name, err := manager.Create()
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	damaged := filepath.Join(tmpDir, BackupsDir, name, storage.TasksFile)
	if err := os.WriteFile(damaged, []byte(`[{"name": "no deadline"}]`), 0600); err != nil {
		t.Fatal(err)
	}
	before, _ := os.ReadFile(filepath.Join(tmpDir, storage.TasksFile))

	if err := manager.Restore(name); err == nil {
		t.Fatal("Restore() should reject a backup that is not a task list")
	}

	after, _ := os.ReadFile(filepath.Join(tmpDir, storage.TasksFile))
	if string(before) != string(after) {
		t.Error("task file changed after a rejected restore")
	}
	backups, _ := manager.List()
	if len(backups) != 1 {
		t.Errorf("Expected no safety backup for a rejected restore, got %d backups", len(backups))
	}
}

// TestManager_RestoreNonexistent tests restoring a nonexistent backup.
func TestManager_RestoreNonexistent(t *testing.T) {
	tmpDir := t.TempDir()
	createTestData(t, tmpDir)

	manager := NewManager(tmpDir, "1.0.0")

	for _, name := range []string{"nonexistent-backup", "2024-01-01_000000_000", "../tasks.json", ""} {
		if err := manager.Restore(name); err == nil {
			t.Errorf("Restore(%q) should fail", name)
		}
	}
}

// TestManager_Delete tests deleting a backup.
func TestManager_Delete(t *testing.T) {
	tmpDir := t.TempDir()
	createTestData(t, tmpDir)

	manager := NewManager(tmpDir, "1.0.0")

	name, err := manager.Create()
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	if err := manager.Delete(name); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}

	backups, _ := manager.List()
	if len(backups) != 0 {
		t.Errorf("Expected 0 backups after delete, got %d", len(backups))
	}
}

// TestManager_Prune tests pruning old backups.
func TestManager_Prune(t *testing.T) {
	tmpDir := t.TempDir()
	createTestData(t, tmpDir)

	manager := NewManager(tmpDir, "1.0.0")

	for i := 0; i < 5; i++ {
		if _, err := manager.Create(); err != nil {
			t.Fatalf("Create() error: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	deleted, err := manager.Prune(2)
	if err != nil {
		t.Fatalf("Prune() error: %v", err)
	}
	if deleted != 3 {
		t.Errorf("Expected 3 deleted, got %d", deleted)
	}

	backups, _ := manager.List()
	if len(backups) != 2 {
		t.Errorf("Expected 2 backups after prune, got %d", len(backups))
	}

	if _, err := manager.Prune(-1); err == nil {
		t.Error("Prune(-1) should fail")
	}
}

// TestManager_CreateWithEmptyData tests creating a backup with no data files.
func TestManager_CreateWithEmptyData(t *testing.T) {
	tmpDir := t.TempDir()

	manager := NewManager(tmpDir, "1.0.0")

	name, err := manager.Create()
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	info, err := manager.GetBackup(name)
	if err != nil {
		t.Fatalf("GetBackup() error: %v", err)
	}
	if info.Name != name {
		t.Errorf("Expected backup name %s, got %s", name, info.Name)
	}
	if len(info.Stats) != 0 {
		t.Errorf("Expected no stats, got %v", info.Stats)
	}
}

// TestManager_CustomFiles tests backing up configured file names.
func TestManager_CustomFiles(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := storage.New(tmpDir, storage.WithFiles("mine.json", "mine.undo.json"))
	if err != nil {
		t.Fatal(err)
	}
	store.SetNowFunc(func() time.Time { return testNow })
	if _, err := store.AddTask("custom", "15 10", 2); err != nil {
		t.Fatal(err)
	}

	manager := NewManager(tmpDir, "1.0.0", WithFiles("mine.json", "mine.undo.json"))
	name, err := manager.Create()
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	info, err := manager.GetBackup(name)
	if err != nil {
		t.Fatalf("GetBackup() error: %v", err)
	}
	if info.Stats["mine.json"] != 1 {
		t.Errorf("Stats = %v, want one task in mine.json", info.Stats)
	}
}

// TestManager_GetBackup tests getting info about a specific backup.
func TestManager_GetBackup(t *testing.T) {
	tmpDir := t.TempDir()
	createTestData(t, tmpDir)

	manager := NewManager(tmpDir, "1.0.0")

	name, err := manager.Create()
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	info, err := manager.GetBackup(name)
	if err != nil {
		t.Fatalf("GetBackup() error: %v", err)
	}
	if info.Name != name {
		t.Errorf("Expected name %s, got %s", name, info.Name)
	}
	if info.Stats[storage.TasksFile] != 2 {
		t.Errorf("Expected 2 tasks, got %d", info.Stats[storage.TasksFile])
	}

	if _, err := manager.GetBackup("nonexistent"); err == nil {
		t.Error("Expected error for nonexistent backup")
	}
}

// TestManager_RestoreCreatesSafetyBackup tests that restore creates a safety backup.
func TestManager_RestoreCreatesSafetyBackup(t *testing.T) {
	tmpDir := t.TempDir()
	createTestData(t, tmpDir)

	manager := NewManager(tmpDir, "1.0.0")

	name, err := manager.Create()
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	if err := manager.Restore(name); err != nil {
		t.Fatalf("Restore() error: %v", err)
	}

	backups, _ := manager.List()
	if len(backups) < 2 {
		t.Errorf("Expected at least 2 backups (including safety backup), got %d", len(backups))
	}
}

func TestParseBackupName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"2025-12-15_143022_123", true},
		{"2025-12-15_143022", true},
		{"2025-12-15_143022-123", false},
		{"2025-13-15_143022_123", false},
		{"backup", false},
	}
	for _, tt := range tests {
		_, err := parseBackupName(tt.name)
		if (err == nil) != tt.ok {
			t.Errorf("parseBackupName(%q) error = %v, want ok=%v", tt.name, err, tt.ok)
		}
	}
}
