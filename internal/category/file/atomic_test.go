package file

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestAtomicWrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "data.yaml")
	if err := os.WriteFile(target, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	err := AtomicWrite(target, func(w io.Writer) error {
		_, err := w.Write([]byte("new"))
		return err
	})
	if err != nil {
		t.Fatalf("AtomicWrite() error = %v", err)
	}

	data, _ := os.ReadFile(target)
	if string(data) != "new" {
		t.Errorf("content = %q, want %q", data, "new")
	}

	if IsFileLocked(target) {
		t.Error("lock file left behind after commit")
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(target), ".data.yaml.tmp")); !os.IsNotExist(err) {
		t.Error("temporary file left behind after commit")
	}
}

func TestAtomicWriteFailureKeepsOriginal(t *testing.T) {
	target := filepath.Join(t.TempDir(), "data.yaml")
	if err := os.WriteFile(target, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	err := AtomicWrite(target, func(w io.Writer) error {
		w.Write([]byte("partial"))
		return errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected error from failing write func")
	}

	data, _ := os.ReadFile(target)
	if string(data) != "old" {
		t.Errorf("content = %q, want original", data)
	}
	if IsFileLocked(target) {
		t.Error("lock file left behind after failure")
	}
}

func TestAtomicWriteLocked(t *testing.T) {
	target := filepath.Join(t.TempDir(), "data.yaml")
	if err := os.WriteFile(target+".lock", []byte("1\n"), 0600); err != nil {
		t.Fatal(err)
	}

	err := AtomicWrite(target, func(w io.Writer) error { return nil })
	if err == nil {
		t.Error("expected error while another writer holds the lock")
	}
}

func TestSafeRead(t *testing.T) {
	target := filepath.Join(t.TempDir(), "data.yaml")
	if err := os.WriteFile(target, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}

	data, err := SafeRead(target)
	if err != nil {
		t.Fatalf("SafeRead() error = %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("SafeRead() = %q", data)
	}

	if _, err := SafeRead(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}
