package sidebar

import (
	"context"

	"github.com/brandonhon/catbar/internal/category"
	"github.com/google/uuid"
)

// Categories is the category state the sidebar reads and dispatches to.
// *category.Service implements it.
type Categories interface {
	Categories() []category.Category
	Editing() category.EditingState
	SetCategoryEdit(id, tempName string)
	UpdateCategory(ctx context.Context, c category.Category) error
	AddCategory(ctx context.Context, c category.Category) error
}

// Auditor records sidebar decisions that never reach the user.
// *audit.Logger implements it.
type Auditor interface {
	LogCategoryOperation(operation, categoryID, name string, success bool, errorMsg string)
	LogReorder(categoryID string, from, to int)
}

type nopAuditor struct{}

func (nopAuditor) LogCategoryOperation(string, string, string, bool, string) {}
func (nopAuditor) LogReorder(string, int, int)                             {}

// CommitTarget says what a form submission would commit.
type CommitTarget int

const (
	TargetNone CommitTarget = iota
	TargetCreate
	TargetRename
)

// EditController owns the create and rename forms.
type EditController struct {
	cats    Categories
	temp    *TempState
	auditor Auditor
	newID   func() string
}

func NewEditController(cats Categories, temp *TempState, auditor Auditor) *EditController {
	if auditor == nil {
		auditor = nopAuditor{}
	}
	return &EditController{
		cats:    cats,
		temp:    temp,
		auditor: auditor,
		newID:   uuid.NewString,
	}
}

// Target reports the single addressable commit target.
func (e *EditController) Target() CommitTarget {
	if e.temp.AddingTempCategory() {
		return TargetCreate
	}
	if e.cats.Editing().Active() {
		return TargetRename
	}
	return TargetNone
}

// BeginCreate shows the create form and drops any rename in progress.
func (e *EditController) BeginCreate() {
	e.cats.SetCategoryEdit(category.EmptyID, "")
	e.temp.SetAddingTempCategory(true)
}

// BeginRename starts an inline rename of id seeded with its current name.
func (e *EditController) BeginRename(id, name string) {
	e.temp.SetAddingTempCategory(false)
	e.cats.SetCategoryEdit(id, name)
}

// ChangeTempName records a keystroke. While creating, the id is always empty.
func (e *EditController) ChangeTempName(id, text string) {
	if e.temp.AddingTempCategory() {
		id = category.EmptyID
	}
	e.cats.SetCategoryEdit(id, text)
}

// Reset hides the create form and clears the editing state.
func (e *EditController) Reset() {
	e.temp.SetAddingTempCategory(false)
	e.cats.SetCategoryEdit(category.EmptyID, "")
}

// CommitRename renames the editing category. Empty or taken names are
// dropped without error; only store failures are returned.
func (e *EditController) CommitRename(ctx context.Context, ev *SubmitEvent) error {
	if ev != nil {
		ev.PreventDefault()
	}
	defer e.Reset()

	editing := e.cats.Editing()
	if !editing.Active() {
		return nil
	}

	name, err := category.CommitName(e.cats.Categories(), editing.TempName)
	if err != nil {
		e.auditor.LogCategoryOperation("discard", editing.ID, editing.TempName, false, err.Error())
		return nil
	}

	return e.cats.UpdateCategory(ctx, category.Category{ID: editing.ID, Name: name, DraggedOver: false})
}

// CommitCreate adds a category with a fresh id. Empty or taken names are
// dropped without error; only store failures are returned.
func (e *EditController) CommitCreate(ctx context.Context, ev *SubmitEvent) error {
	if ev != nil {
		ev.PreventDefault()
	}
	defer e.Reset()

	tempName := e.cats.Editing().TempName
	name, err := category.CommitName(e.cats.Categories(), tempName)
	if err != nil {
		e.auditor.LogCategoryOperation("discard", category.EmptyID, tempName, false, err.Error())
		return nil
	}

	return e.cats.AddCategory(ctx, category.Category{ID: e.newID(), Name: name, DraggedOver: false})
}
