// Package sqlite stores categories in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/brandonhon/catbar/internal/category"
	_ "modernc.org/sqlite"
)

// Store implements category.Store using SQLite.
type Store struct {
	mu     sync.RWMutex
	db     *sql.DB
	closed bool
}

// New opens (or creates) the database at dbPath.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

// NewInMemory creates a store that lives only as long as the process.
func NewInMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	// Every pooled connection would otherwise get its own empty database
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

func (s *Store) initialize() error {
	schema := `
		CREATE TABLE IF NOT EXISTS categories (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			position INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_categories_position ON categories(position);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) List(ctx context.Context) ([]category.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, category.ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []category.Category{}
	for rows.Next() {
		var c category.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}

func (s *Store) Get(ctx context.Context, id string) (category.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return category.Category{}, category.ErrStoreClosed
	}

	var c category.Category
	err := s.db.QueryRowContext(ctx, `SELECT id, name FROM categories WHERE id = ?`, id).Scan(&c.ID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return category.Category{}, category.ErrNotFound
	}
	if err != nil {
		return category.Category{}, fmt.Errorf("failed to get category: %w", err)
	}

	return c, nil
}

func (s *Store) Add(ctx context.Context, c category.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return category.ErrStoreClosed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if taken, err := nameTaken(ctx, tx, c.Name, ""); err != nil {
		return err
	} else if taken {
		return category.ErrDuplicateName
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO categories (id, name, position)
		VALUES (?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM categories))
	`, c.ID, c.Name)
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}

	return tx.Commit()
}

func (s *Store) Update(ctx context.Context, c category.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return category.ErrStoreClosed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if taken, err := nameTaken(ctx, tx, c.Name, c.ID); err != nil {
		return err
	} else if taken {
		return category.ErrDuplicateName
	}

	result, err := tx.ExecContext(ctx, `UPDATE categories SET name = ? WHERE id = ?`, c.Name, c.ID)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	if affected == 0 {
		return category.ErrNotFound
	}

	return tx.Commit()
}

// nameTaken reports whether a category other than exceptID owns name.
func nameTaken(ctx context.Context, tx *sql.Tx, name, exceptID string) (bool, error) {
	var count int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM categories WHERE name = ? AND id != ?`, name, exceptID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check category name: %w", err)
	}
	return count > 0, nil
}

// Close closes the database. Calling it again is a no-op.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
