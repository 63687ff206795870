package backup

import (
	"os"
	"path/filepath"
	"testing"
)

func writeStore(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write store file: %v", err)
	}
	return path
}

func TestCreateAndList(t *testing.T) {
	dir := t.TempDir()
	store := writeStore(t, dir, "spark.json", `{"version":1}`)
	mgr := NewManager(store)

	path, err := mgr.Create()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Ext(path) != ".json" {
		t.Errorf("snapshot should carry the store extension, got %s", path)
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(backups) != 1 {
		t.Fatalf("expected 1 backup, got %d", len(backups))
	}
	if backups[0].Path != path {
		t.Errorf("expected %s, got %s", path, backups[0].Path)
	}
	if backups[0].Size == 0 {
		t.Error("expected non-empty snapshot")
	}
}

func TestCreateMissingStoreFails(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "spark.json"))
	if _, err := mgr.Create(); err == nil {
		t.Error("expected error for missing store file")
	}
}

func TestListEmptyDirectory(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "spark.json"))
	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("expected no backups, got %d", len(backups))
	}
}

func TestListIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	store := writeStore(t, dir, "spark.json", `{"version":1}`)
	mgr := NewManager(store)

	if _, err := mgr.Create(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	writeStore(t, mgr.BackupDir(), "notes.txt", "hi")
	writeStore(t, mgr.BackupDir(), "other-20260301-0900.json", "{}")

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(backups) != 1 {
		t.Errorf("expected 1 backup, got %d", len(backups))
	}
}

func TestRestoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := writeStore(t, dir, "spark.json", `{"version":1,"habits":[{"id":"h1"}]}`)
	mgr := NewManager(store)

	snapshot, err := mgr.Create()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Mutate the store, then restore the snapshot.
	writeStore(t, dir, "spark.json", `{"version":1,"habits":[]}`)
	if err := mgr.Restore(snapshot); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(store)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `{"version":1,"habits":[{"id":"h1"}]}` {
		t.Errorf("store not restored, got %s", data)
	}
}

func TestRestoreRejectsCorruptBackup(t *testing.T) {
	dir := t.TempDir()
	store := writeStore(t, dir, "spark.json", `{"version":1}`)
	mgr := NewManager(store)

	corrupt := writeStore(t, dir, "corrupt.json", "{not json")
	if err := mgr.Restore(corrupt); err == nil {
		t.Error("expected error restoring corrupt backup")
	}

	data, _ := os.ReadFile(store)
	if string(data) != `{"version":1}` {
		t.Errorf("store must be untouched after rejected restore, got %s", data)
	}
}

func TestRestoreMissingBackupFails(t *testing.T) {
	dir := t.TempDir()
	store := writeStore(t, dir, "spark.json", `{"version":1}`)
	mgr := NewManager(store)

	if err := mgr.Restore(filepath.Join(dir, "nope.json")); err == nil {
		t.Error("expected error for missing backup file")
	}
}
