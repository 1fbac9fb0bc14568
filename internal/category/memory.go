package category

import (
	"context"
	"sync"
)

// MemoryStore keeps categories in process memory. Nothing survives Close.
type MemoryStore struct {
	mu         sync.RWMutex
	categories []Category
	closed     bool
}

// NewMemoryStore returns a store seeded with categories.
func NewMemoryStore(categories ...Category) *MemoryStore {
	seed := make([]Category, len(categories))
	copy(seed, categories)
	return &MemoryStore{categories: seed}
}

func (s *MemoryStore) List(ctx context.Context) ([]Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	out := make([]Category, len(s.categories))
	copy(out, s.categories)
	return out, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return Category{}, ErrStoreClosed
	}

	if idx := IndexOf(s.categories, id); idx >= 0 {
		return s.categories[idx], nil
	}
	return Category{}, ErrNotFound
}

func (s *MemoryStore) Add(ctx context.Context, c Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	for _, existing := range s.categories {
		if existing.Name == c.Name {
			return ErrDuplicateName
		}
	}

	s.categories = append(s.categories, c)
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, c Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	idx := IndexOf(s.categories, c.ID)
	if idx < 0 {
		return ErrNotFound
	}

	for i, existing := range s.categories {
		if i != idx && existing.Name == c.Name {
			return ErrDuplicateName
		}
	}

	s.categories[idx].Name = c.Name
	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
