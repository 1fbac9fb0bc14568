package backup

import (
	"compress/gzip"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/brandonhon/catbar/internal/category/file"
	"github.com/brandonhon/catbar/internal/config"
)

const (
	backupPrefix    = "categories.backup."
	timestampLayout = "2006-01-02T15-04-05.000000"
)

// Manager snapshots the category store file.
type Manager struct {
	source   string
	dir      string
	settings config.Backup
}

type BackupInfo struct {
	Timestamp time.Time `json:"timestamp"`
	FilePath  string    `json:"file_path"`
	Hash      string    `json:"hash"`
	Size      int64     `json:"size"`
}

// NewManager backs up the configured store into the configured directory.
func NewManager(cfg *config.Config) *Manager {
	return NewManagerFor(cfg.StorePath(), cfg.BackupDir(), cfg.Backup)
}

func NewManagerFor(source, dir string, settings config.Backup) *Manager {
	return &Manager{source: source, dir: dir, settings: settings}
}

func (m *Manager) Dir() string { return m.dir }

func (m *Manager) compressed() bool {
	return m.settings.CompressionType == "gzip"
}

// CreateBackup copies the store file and prunes old backups.
func (m *Manager) CreateBackup() (string, error) {
	if _, err := os.Stat(m.source); os.IsNotExist(err) {
		return "", fmt.Errorf("category store does not exist: %s", m.source)
	}

	if err := os.MkdirAll(m.dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	backupPath := m.GetBackupPath(time.Now().Format(timestampLayout))

	if err := copyFile(m.source, backupPath, m.compressed()); err != nil {
		os.Remove(backupPath)
		return "", fmt.Errorf("failed to create backup: %w", err)
	}

	if _, err := m.CleanupOldBackups(); err != nil {
		return backupPath, fmt.Errorf("backup created but cleanup failed: %w", err)
	}

	return backupPath, nil
}

func copyFile(src, dst string, compress bool) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer dstFile.Close()

	if !compress {
		_, err = io.Copy(dstFile, srcFile)
		return err
	}

	gzipWriter := gzip.NewWriter(dstFile)
	if _, err := io.Copy(gzipWriter, srcFile); err != nil {
		gzipWriter.Close()
		return err
	}
	return gzipWriter.Close()
}

// RestoreBackup snapshots the current store, then replaces it with the
// backup. It returns the path of the snapshot, empty when there was no
// store to snapshot.
func (m *Manager) RestoreBackup(backupPath string) (string, error) {
	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		return "", fmt.Errorf("backup file does not exist: %s", backupPath)
	}

	var previous string
	if _, err := os.Stat(m.source); err == nil {
		previous, err = m.CreateBackup()
		if err != nil {
			return "", fmt.Errorf("failed to create current backup before restore: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(m.source), 0700); err != nil {
		return previous, fmt.Errorf("failed to create store directory: %w", err)
	}

	err := file.AtomicWrite(m.source, func(w io.Writer) error {
		return restoreInto(w, backupPath, strings.HasSuffix(backupPath, ".gz"))
	})
	if err != nil {
		return previous, fmt.Errorf("failed to restore backup: %w", err)
	}

	return previous, nil
}

func restoreInto(w io.Writer, src string, decompress bool) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	var reader io.Reader = srcFile
	if decompress {
		gzipReader, err := gzip.NewReader(srcFile)
		if err != nil {
			return err
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	_, err = io.Copy(w, reader)
	return err
}

// ListBackups returns backups newest first.
func (m *Manager) ListBackups() ([]BackupInfo, error) {
	if _, err := os.Stat(m.dir); os.IsNotExist(err) {
		return []BackupInfo{}, nil
	}

	files, err := filepath.Glob(filepath.Join(m.dir, backupPrefix+"*"))
	if err != nil {
		return nil, fmt.Errorf("failed to list backup files: %w", err)
	}

	backups := make([]BackupInfo, 0, len(files))
	for _, f := range files {
		info, err := getBackupInfo(f)
		if err != nil {
			continue
		}
		backups = append(backups, info)
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})

	return backups, nil
}

func getBackupInfo(filePath string) (BackupInfo, error) {
	stat, err := os.Stat(filePath)
	if err != nil {
		return BackupInfo{}, err
	}

	hash, err := calculateFileHash(filePath)
	if err != nil {
		return BackupInfo{}, err
	}

	name := strings.TrimSuffix(filepath.Base(filePath), ".gz")
	timestamp, err := time.ParseInLocation(timestampLayout, strings.TrimPrefix(name, backupPrefix), time.Local)
	if err != nil {
		timestamp = stat.ModTime()
	}

	return BackupInfo{
		Timestamp: timestamp,
		FilePath:  filePath,
		Hash:      hash,
		Size:      stat.Size(),
	}, nil
}

// calculateFileHash hashes the uncompressed content.
func calculateFileHash(filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(filePath, ".gz") {
		gzipReader, err := gzip.NewReader(f)
		if err != nil {
			return "", err
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	hasher := sha256.New()
	if _, err := io.Copy(hasher, reader); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}

// CleanupOldBackups removes backups beyond MaxBackups or older than
// RetentionDays and returns how many were removed.
func (m *Manager) CleanupOldBackups() (int, error) {
	backups, err := m.ListBackups()
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().AddDate(0, 0, -m.settings.RetentionDays)
	removed := 0
	var lastErr error

	for i, b := range backups {
		if i < m.settings.MaxBackups && !b.Timestamp.Before(cutoff) {
			continue
		}
		if err := m.DeleteBackup(b.FilePath); err != nil {
			lastErr = fmt.Errorf("failed to remove old backup %s: %w", filepath.Base(b.FilePath), err)
			continue
		}
		removed++
	}

	return removed, lastErr
}

// GetBackupPath returns the path a backup taken at timestamp would have.
func (m *Manager) GetBackupPath(timestamp string) string {
	name := backupPrefix + timestamp
	if m.compressed() {
		name += ".gz"
	}
	return filepath.Join(m.dir, name)
}

// DeleteBackup removes one backup. Files outside the backup directory or
// without the backup prefix are refused.
func (m *Manager) DeleteBackup(filePath string) error {
	if filepath.Clean(filepath.Dir(filePath)) != filepath.Clean(m.dir) || !strings.HasPrefix(filepath.Base(filePath), backupPrefix) {
		return fmt.Errorf("not a backup file: %s", filePath)
	}
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return fmt.Errorf("backup file does not exist: %s", filePath)
	}

	return os.Remove(filePath)
}
