package category

import "context"

// EmptyID is the "no selection" identifier.
const EmptyID = ""

// DragType tags drag payloads that carry a category.
const DragType = "CATEGORY"

// Category is a named entry in the sidebar. Identity is ID; Name is unique
// after trimming.
type Category struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	DraggedOver bool   `json:"dragged_over,omitempty" yaml:"dragged_over,omitempty"`
}

// EditingState is the rename target and the text typed so far.
// ID == EmptyID means no rename is in progress.
type EditingState struct {
	ID       string `json:"id" yaml:"id"`
	TempName string `json:"temp_name" yaml:"temp_name"`
}

// Active reports whether a rename is in progress.
func (e EditingState) Active() bool {
	return e.ID != EmptyID
}

// Store persists categories in display order.
type Store interface {
	List(ctx context.Context) ([]Category, error)
	Get(ctx context.Context, id string) (Category, error)
	// Add appends c. It fails with ErrDuplicateName when the name is taken.
	Add(ctx context.Context, c Category) error
	// Update replaces the name of the category with c.ID.
	Update(ctx context.Context, c Category) error
	Close() error
}
