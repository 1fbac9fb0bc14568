package category

import (
	"context"
	"fmt"
)

// Auditor receives a record of every persisted category mutation.
type Auditor interface {
	LogCategoryOperation(operation, categoryID, name string, success bool, errorMsg string)
}

// Service keeps the loaded category list and the editing state in memory
// and writes mutations through to a Store.
type Service struct {
	store      Store
	auditor    Auditor
	categories []Category
	editing    EditingState
}

// NewService loads the current categories from store.
func NewService(ctx context.Context, store Store, auditor Auditor) (*Service, error) {
	categories, err := store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	return &Service{
		store:      store,
		auditor:    auditor,
		categories: categories,
	}, nil
}

// Categories returns a copy of the ordered category list.
func (s *Service) Categories() []Category {
	out := make([]Category, len(s.categories))
	copy(out, s.categories)
	return out
}

// Editing returns the current rename target and typed text.
func (s *Service) Editing() EditingState {
	return s.editing
}

// SetCategoryEdit records which category is being renamed and what has
// been typed so far.
func (s *Service) SetCategoryEdit(id, tempName string) {
	s.editing = EditingState{ID: id, TempName: tempName}
}

// AddCategory persists c and appends it to the list.
func (s *Service) AddCategory(ctx context.Context, c Category) error {
	if err := s.store.Add(ctx, c); err != nil {
		s.audit("add", c, err)
		return fmt.Errorf("failed to add category %q: %w", c.Name, err)
	}

	s.categories = append(s.categories, c)
	s.audit("add", c, nil)
	return nil
}

// UpdateCategory persists the new name of c and replaces it in place.
func (s *Service) UpdateCategory(ctx context.Context, c Category) error {
	idx := IndexOf(s.categories, c.ID)
	if idx < 0 {
		s.audit("rename", c, ErrNotFound)
		return fmt.Errorf("failed to rename category %s: %w", c.ID, ErrNotFound)
	}

	if err := s.store.Update(ctx, c); err != nil {
		s.audit("rename", c, err)
		return fmt.Errorf("failed to rename category %s: %w", c.ID, err)
	}

	s.categories[idx] = c
	s.audit("rename", c, nil)
	return nil
}

// Reload replaces the in-memory list with the store contents.
func (s *Service) Reload(ctx context.Context) error {
	categories, err := s.store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to reload categories: %w", err)
	}
	s.categories = categories
	return nil
}

func (s *Service) audit(operation string, c Category, err error) {
	if s.auditor == nil {
		return
	}
	if err != nil {
		s.auditor.LogCategoryOperation(operation, c.ID, c.Name, false, err.Error())
		return
	}
	s.auditor.LogCategoryOperation(operation, c.ID, c.Name, true, "")
}
