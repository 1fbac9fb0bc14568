package file

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// atomicFileWriter writes to a temp file next to the target and renames it
// into place on Commit, holding a lock file for the duration.
type atomicFileWriter struct {
	targetPath string
	tempPath   string
	lockFile   *os.File
	tempFile   *os.File
}

func newAtomicFileWriter(targetPath string) (*atomicFileWriter, error) {
	// Same directory as the target so the rename stays on one filesystem
	dir := filepath.Dir(targetPath)
	tempPath := filepath.Join(dir, "."+filepath.Base(targetPath)+".tmp")
	lockPath := targetPath + ".lock"

	lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0600)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("file is locked by another process: %s", targetPath)
		}
		return nil, fmt.Errorf("failed to create lock file: %w", err)
	}

	// PID for debugging stale locks
	if _, err := fmt.Fprintf(lockFile, "%d\n", os.Getpid()); err != nil {
		lockFile.Close()
		os.Remove(lockPath)
		return nil, fmt.Errorf("failed to write PID to lock file: %w", err)
	}

	if err := platformAcquireLock(int(lockFile.Fd())); err != nil {
		lockFile.Close()
		os.Remove(lockPath)
		return nil, fmt.Errorf("failed to acquire file lock: %w", err)
	}

	var fileMode os.FileMode = 0600
	if stat, err := os.Stat(targetPath); err == nil {
		fileMode = stat.Mode()
	}

	tempFile, err := os.OpenFile(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fileMode)
	if err != nil {
		platformReleaseLock(int(lockFile.Fd()))
		lockFile.Close()
		os.Remove(lockPath)
		return nil, fmt.Errorf("failed to create temporary file: %w", err)
	}

	return &atomicFileWriter{
		targetPath: targetPath,
		tempPath:   tempPath,
		lockFile:   lockFile,
		tempFile:   tempFile,
	}, nil
}

func (aw *atomicFileWriter) Write(data []byte) (int, error) {
	if aw.tempFile == nil {
		return 0, fmt.Errorf("writer has been closed")
	}
	return aw.tempFile.Write(data)
}

// Commit syncs the temp file and renames it over the target.
func (aw *atomicFileWriter) Commit() error {
	if aw.tempFile == nil {
		return fmt.Errorf("writer has been closed")
	}

	if err := aw.tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}

	if err := aw.tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	aw.tempFile = nil

	if err := os.Rename(aw.tempPath, aw.targetPath); err != nil {
		return fmt.Errorf("failed to commit file: %w", err)
	}

	return nil
}

// Close removes leftovers and releases the lock. Safe after Commit.
func (aw *atomicFileWriter) Close() error {
	var lastErr error

	if aw.tempFile != nil {
		if err := aw.tempFile.Close(); err != nil {
			lastErr = err
		}
		aw.tempFile = nil
	}

	if aw.tempPath != "" {
		if err := os.Remove(aw.tempPath); err != nil && !os.IsNotExist(err) {
			lastErr = err
		}
	}

	if aw.lockFile != nil {
		platformReleaseLock(int(aw.lockFile.Fd()))
		if err := aw.lockFile.Close(); err != nil {
			lastErr = err
		}

		lockPath := aw.targetPath + ".lock"
		if err := os.Remove(lockPath); err != nil && !os.IsNotExist(err) {
			lastErr = err
		}
		aw.lockFile = nil
	}

	return lastErr
}

// AtomicWrite replaces targetPath with whatever writeFunc produces, or
// leaves it untouched when writeFunc fails.
func AtomicWrite(targetPath string, writeFunc func(io.Writer) error) error {
	writer, err := newAtomicFileWriter(targetPath)
	if err != nil {
		return err
	}
	defer writer.Close()

	if err := writeFunc(writer); err != nil {
		return fmt.Errorf("write operation failed: %w", err)
	}

	if err := writer.Commit(); err != nil {
		return fmt.Errorf("failed to commit changes: %w", err)
	}

	return nil
}

// SafeRead reads a file under a shared lock, refusing while a write holds
// the lock file.
func SafeRead(filePath string) ([]byte, error) {
	lockPath := filePath + ".lock"

	if _, err := os.Stat(lockPath); err == nil {
		time.Sleep(100 * time.Millisecond)

		if _, err := os.Stat(lockPath); err == nil {
			return nil, fmt.Errorf("file is currently being written to: %s", filePath)
		}
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if err := platformAcquireSharedLock(int(file.Fd())); err != nil {
		return nil, fmt.Errorf("failed to acquire shared lock: %w", err)
	}
	defer platformReleaseLock(int(file.Fd()))

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return data, nil
}

// IsFileLocked checks if a write currently holds the lock file
func IsFileLocked(filePath string) bool {
	_, err := os.Stat(filePath + ".lock")
	return err == nil
}
