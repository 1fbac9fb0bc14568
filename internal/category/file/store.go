// Package file stores categories in a YAML document on disk.
package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/brandonhon/catbar/internal/category"
	"gopkg.in/yaml.v3"
)

const documentVersion = 1

// ErrStoreBusy means another process holds the write lock on the file.
var ErrStoreBusy = errors.New("category file is locked by another process")

type document struct {
	Version    int                 `yaml:"version"`
	Categories []category.Category `yaml:"categories"`
}

// Store implements category.Store on a single YAML file. Every mutation
// rewrites the file atomically.
type Store struct {
	mu         sync.RWMutex
	path       string
	categories []category.Category
	closed     bool
}

// New opens the store at path, creating the parent directory when needed.
// A missing file is an empty store.
func New(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	store := &Store{path: path}
	if err := store.load(); err != nil {
		return nil, err
	}
	return store, nil
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) load() error {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return nil
	}

	data, err := SafeRead(s.path)
	if err != nil {
		if IsFileLocked(s.path) {
			return fmt.Errorf("%w: %s", ErrStoreBusy, s.path)
		}
		return fmt.Errorf("failed to read category file: %w", err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse category file: %w", err)
	}

	if doc.Version > documentVersion {
		return fmt.Errorf("unsupported category file version %d", doc.Version)
	}

	s.categories = doc.Categories
	return nil
}

func (s *Store) save(categories []category.Category) error {
	if IsFileLocked(s.path) {
		return fmt.Errorf("%w: %s", ErrStoreBusy, s.path)
	}

	doc := document{Version: documentVersion, Categories: make([]category.Category, len(categories))}
	for i, c := range categories {
		c.DraggedOver = false
		doc.Categories[i] = c
	}

	return AtomicWrite(s.path, func(w io.Writer) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	})
}

func (s *Store) List(ctx context.Context) ([]category.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, category.ErrStoreClosed
	}

	out := make([]category.Category, len(s.categories))
	copy(out, s.categories)
	return out, nil
}

func (s *Store) Get(ctx context.Context, id string) (category.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return category.Category{}, category.ErrStoreClosed
	}

	if idx := category.IndexOf(s.categories, id); idx >= 0 {
		return s.categories[idx], nil
	}
	return category.Category{}, category.ErrNotFound
}

func (s *Store) Add(ctx context.Context, c category.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return category.ErrStoreClosed
	}

	for _, existing := range s.categories {
		if existing.Name == c.Name {
			return category.ErrDuplicateName
		}
	}

	c.DraggedOver = false
	next := append(append([]category.Category(nil), s.categories...), c)
	if err := s.save(next); err != nil {
		return err
	}
	s.categories = next
	return nil
}

func (s *Store) Update(ctx context.Context, c category.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return category.ErrStoreClosed
	}

	idx := category.IndexOf(s.categories, c.ID)
	if idx < 0 {
		return category.ErrNotFound
	}

	for i, existing := range s.categories {
		if i != idx && existing.Name == c.Name {
			return category.ErrDuplicateName
		}
	}

	next := append([]category.Category(nil), s.categories...)
	next[idx].Name = c.Name
	if err := s.save(next); err != nil {
		return err
	}
	s.categories = next
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
