package backup

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/brandonhon/catbar/internal/config"
)

const storeContent = "version: 1\ncategories:\n  - id: a\n    name: Work\n"

func createTestManager(t *testing.T, compression string) (*Manager, string) {
	t.Helper()
	tempDir := t.TempDir()

	source := filepath.Join(tempDir, "data", "categories.yaml")
	if err := os.MkdirAll(filepath.Dir(source), 0700); err != nil {
		t.Fatalf("Failed to create data directory: %v", err)
	}
	if err := os.WriteFile(source, []byte(storeContent), 0600); err != nil {
		t.Fatalf("Failed to write store file: %v", err)
	}

	settings := config.Backup{
		Directory:       filepath.Join(tempDir, "backups"),
		MaxBackups:      5,
		RetentionDays:   30,
		CompressionType: compression,
	}
	return NewManagerFor(source, settings.Directory, settings), source
}

func readBackup(t *testing.T, path string) string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open backup: %v", err)
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			t.Fatalf("Failed to open gzip reader: %v", err)
		}
		defer gz.Close()
		reader = gz
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("Failed to read backup: %v", err)
	}
	return string(data)
}

func TestNewManager(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Store.Path = "/tmp/catbar-test/categories.yaml"
	cfg.Backup.Directory = "/tmp/catbar-test/backups"

	manager := NewManager(cfg)
	if manager == nil {
		t.Fatal("NewManager returned nil")
	}
	if manager.source != cfg.Store.Path {
		t.Errorf("Expected source %s, got %s", cfg.Store.Path, manager.source)
	}
	if manager.Dir() != cfg.Backup.Directory {
		t.Errorf("Expected backup dir %s, got %s", cfg.Backup.Directory, manager.Dir())
	}
}

func TestCreateBackup(t *testing.T) {
	manager, _ := createTestManager(t, "none")

	backupPath, err := manager.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup() error = %v", err)
	}

	if !strings.HasPrefix(filepath.Base(backupPath), backupPrefix) {
		t.Errorf("Unexpected backup name: %s", filepath.Base(backupPath))
	}
	if strings.HasSuffix(backupPath, ".gz") {
		t.Error("Uncompressed backup should not have .gz suffix")
	}
	if got := readBackup(t, backupPath); got != storeContent {
		t.Errorf("Backup content mismatch: %q", got)
	}

	info, err := os.Stat(backupPath)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected backup mode 0600, got %v", info.Mode().Perm())
	}
}

func TestCreateBackupWithCompression(t *testing.T) {
	manager, _ := createTestManager(t, "gzip")

	backupPath, err := manager.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup() error = %v", err)
	}

	if !strings.HasSuffix(backupPath, ".gz") {
		t.Errorf("Compressed backup should end in .gz: %s", backupPath)
	}
	if got := readBackup(t, backupPath); got != storeContent {
		t.Errorf("Decompressed content mismatch: %q", got)
	}
}

func TestCreateBackupMissingStore(t *testing.T) {
	manager, source := createTestManager(t, "none")
	if err := os.Remove(source); err != nil {
		t.Fatal(err)
	}

	if _, err := manager.CreateBackup(); err == nil {
		t.Error("Expected error when the store file is missing")
	}
}

func TestRestoreBackup(t *testing.T) {
	for _, compression := range []string{"none", "gzip"} {
		t.Run(compression, func(t *testing.T) {
			manager, source := createTestManager(t, compression)

			backupPath, err := manager.CreateBackup()
			if err != nil {
				t.Fatalf("CreateBackup() error = %v", err)
			}

			if err := os.WriteFile(source, []byte("version: 1\ncategories: []\n"), 0600); err != nil {
				t.Fatal(err)
			}

			previous, err := manager.RestoreBackup(backupPath)
			if err != nil {
				t.Fatalf("RestoreBackup() error = %v", err)
			}
			if previous == "" {
				t.Error("Expected the current store to be backed up before restoring")
			}

			data, err := os.ReadFile(source)
			if err != nil {
				t.Fatal(err)
			}
			if string(data) != storeContent {
				t.Errorf("Restored content mismatch: %q", string(data))
			}
			if _, err := os.Stat(source + ".lock"); !os.IsNotExist(err) {
				t.Error("Lock file should be released after restore")
			}
		})
	}
}

func TestRestoreBackupWithoutStore(t *testing.T) {
	manager, source := createTestManager(t, "none")

	backupPath, err := manager.CreateBackup()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(source); err != nil {
		t.Fatal(err)
	}

	previous, err := manager.RestoreBackup(backupPath)
	if err != nil {
		t.Fatalf("RestoreBackup() error = %v", err)
	}
	if previous != "" {
		t.Errorf("Expected no snapshot when the store is missing, got %s", previous)
	}
	if _, err := os.Stat(source); err != nil {
		t.Errorf("Expected store to be recreated: %v", err)
	}
}

func TestRestoreMissingBackup(t *testing.T) {
	manager, _ := createTestManager(t, "none")

	if _, err := manager.RestoreBackup(filepath.Join(manager.Dir(), "nope")); err == nil {
		t.Error("Expected error for missing backup file")
	}
}

func TestListBackups(t *testing.T) {
	manager, _ := createTestManager(t, "none")

	backups, err := manager.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups() error = %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("Expected no backups before the directory exists, got %d", len(backups))
	}

	if err := os.MkdirAll(manager.Dir(), 0700); err != nil {
		t.Fatal(err)
	}
	older := time.Now().Add(-2 * time.Hour).Format(timestampLayout)
	newer := time.Now().Add(-1 * time.Hour).Format(timestampLayout)
	for _, ts := range []string{older, newer} {
		if err := os.WriteFile(manager.GetBackupPath(ts), []byte(ts), 0600); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(manager.Dir(), "unrelated.txt"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	backups, err = manager.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups() error = %v", err)
	}
	if len(backups) != 2 {
		t.Fatalf("Expected 2 backups, got %d", len(backups))
	}
	if !backups[0].Timestamp.After(backups[1].Timestamp) {
		t.Error("Backups should be sorted newest first")
	}
	if !strings.Contains(backups[0].FilePath, newer) {
		t.Errorf("Expected newest backup first, got %s", backups[0].FilePath)
	}
}

func TestGetBackupInfo(t *testing.T) {
	manager, _ := createTestManager(t, "gzip")

	backupPath, err := manager.CreateBackup()
	if err != nil {
		t.Fatal(err)
	}

	info, err := getBackupInfo(backupPath)
	if err != nil {
		t.Fatalf("getBackupInfo() error = %v", err)
	}
	if info.FilePath != backupPath {
		t.Errorf("Expected path %s, got %s", backupPath, info.FilePath)
	}
	if info.Size <= 0 {
		t.Error("Expected a positive size")
	}
	if time.Since(info.Timestamp) > time.Minute {
		t.Errorf("Timestamp not parsed from name: %v", info.Timestamp)
	}

	hash, err := calculateFileHash(backupPath)
	if err != nil {
		t.Fatal(err)
	}
	if info.Hash != hash || len(hash) != 64 {
		t.Errorf("Unexpected hash %q", info.Hash)
	}
}

func TestCalculateFileHashIgnoresCompression(t *testing.T) {
	plain, _ := createTestManager(t, "none")
	compressed, _ := createTestManager(t, "gzip")

	p, err := plain.CreateBackup()
	if err != nil {
		t.Fatal(err)
	}
	c, err := compressed.CreateBackup()
	if err != nil {
		t.Fatal(err)
	}

	ph, err := calculateFileHash(p)
	if err != nil {
		t.Fatal(err)
	}
	ch, err := calculateFileHash(c)
	if err != nil {
		t.Fatal(err)
	}
	if ph != ch {
		t.Error("Expected identical hashes for identical content")
	}
}

func TestCleanupOldBackups(t *testing.T) {
	manager, _ := createTestManager(t, "none")
	manager.settings.MaxBackups = 2

	if err := os.MkdirAll(manager.Dir(), 0700); err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= 4; i++ {
		ts := time.Now().Add(-time.Duration(i) * time.Hour).Format(timestampLayout)
		if err := os.WriteFile(manager.GetBackupPath(ts), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}
	expired := time.Now().AddDate(0, 0, -60).Format(timestampLayout)
	if err := os.WriteFile(manager.GetBackupPath(expired), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	removed, err := manager.CleanupOldBackups()
	if err != nil {
		t.Fatalf("CleanupOldBackups() error = %v", err)
	}
	if removed != 3 {
		t.Errorf("Expected 3 removed backups, got %d", removed)
	}

	backups, err := manager.ListBackups()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 2 {
		t.Errorf("Expected 2 remaining backups, got %d", len(backups))
	}
}

func TestGetBackupPath(t *testing.T) {
	manager, _ := createTestManager(t, "none")
	ts := "2026-01-02T03-04-05.000000"

	if got := manager.GetBackupPath(ts); got != filepath.Join(manager.Dir(), backupPrefix+ts) {
		t.Errorf("Unexpected path %s", got)
	}

	manager.settings.CompressionType = "gzip"
	if got := manager.GetBackupPath(ts); !strings.HasSuffix(got, ts+".gz") {
		t.Errorf("Expected .gz suffix, got %s", got)
	}
}

func TestDeleteBackup(t *testing.T) {
	manager, _ := createTestManager(t, "none")

	backupPath, err := manager.CreateBackup()
	if err != nil {
		t.Fatal(err)
	}

	if err := manager.DeleteBackup(backupPath); err != nil {
		t.Fatalf("DeleteBackup() error = %v", err)
	}
	if _, err := os.Stat(backupPath); !os.IsNotExist(err) {
		t.Error("Backup should be removed")
	}
	if err := manager.DeleteBackup(backupPath); err == nil {
		t.Error("Expected error deleting a missing backup")
	}
}

func TestDeleteBackupRefusesOtherFiles(t *testing.T) {
	manager, storePath := createTestManager(t, "none")

	if err := manager.DeleteBackup(storePath); err == nil {
		t.Error("Expected the category store to be refused")
	}
	if _, err := os.Stat(storePath); err != nil {
		t.Errorf("Store should be untouched: %v", err)
	}

	foreign := filepath.Join(manager.Dir(), "notes.txt")
	if err := os.MkdirAll(manager.Dir(), 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(foreign, []byte("keep"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := manager.DeleteBackup(foreign); err == nil {
		t.Error("Expected a file without the backup prefix to be refused")
	}
}
