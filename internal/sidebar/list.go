package sidebar

import (
	"context"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/brandonhon/catbar/internal/category"
)

// Affordance is what sits below the rows.
type Affordance int

const (
	AffordanceAddButton Affordance = iota
	AffordanceCreateForm
)

// MenuAction is an entry of the contextual menu.
type MenuAction int

const (
	MenuRename MenuAction = iota
	MenuCopyName
)

// RowProps is everything a row renderer needs.
type RowProps struct {
	Category    category.Category
	Index       int
	Y           float64
	MenuOpen    bool
	MenuAnchor  Point
	Editing     bool
	TempName    string
	DraggedOver bool
	Selected    bool
}

// Options configures a List. Zero values pick defaults.
type Options struct {
	Spring    SpringConfig
	RowHeight float64
	Auditor   Auditor
	Reorderer Reorderer
	Clipboard func(string) error
}

// List composes the controllers for one sidebar.
type List struct {
	Menu *MenuController
	Edit *EditController
	Drag *DragController
	Anim *Animator

	doc       *Document
	cats      Categories
	temp      *TempState
	clipboard func(string) error

	selected int
	mounted  bool
	removers []func()
}

func NewList(doc *Document, cats Categories, temp *TempState, opts Options) *List {
	if opts.Spring == (SpringConfig{}) {
		opts.Spring = DefaultSpringConfig
	}
	if opts.RowHeight <= 0 {
		opts.RowHeight = 80
	}
	if opts.Auditor == nil {
		opts.Auditor = nopAuditor{}
	}
	if opts.Reorderer == nil {
		opts.Reorderer = auditReorderer{auditor: opts.Auditor}
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}

	return &List{
		Menu:      NewMenuController(),
		Edit:      NewEditController(cats, temp, opts.Auditor),
		Drag:      NewDragController(opts.Reorderer),
		Anim:      NewAnimator(opts.Spring, opts.RowHeight),
		doc:       doc,
		cats:      cats,
		temp:      temp,
		clipboard: opts.Clipboard,
	}
}

// Mount registers the document listeners once and starts the springs.
func (l *List) Mount() {
	if l.mounted {
		return
	}
	l.mounted = true
	l.Anim.Start()
	l.Sync()

	l.removers = append(l.removers,
		l.doc.AddPointerDown(l.handleDocumentPointerDown),
		l.doc.AddPointerDown(l.handleBlur),
	)
}

// Unmount removes the listeners and stops every spring. Handlers are inert
// afterwards.
func (l *List) Unmount() {
	if !l.mounted {
		return
	}
	for _, remove := range l.removers {
		remove()
	}
	l.removers = nil
	l.Anim.Stop()
	l.Drag.Cancel()
	l.mounted = false
}

func (l *List) Mounted() bool { return l.mounted }

// Sync retargets springs after the category order may have changed.
func (l *List) Sync() {
	if !l.mounted {
		return
	}
	cats := l.cats.Categories()
	ids := make([]string, len(cats))
	for i, c := range cats {
		ids[i] = c.ID
	}
	l.Anim.Sync(ids)

	if l.selected >= len(cats) {
		l.selected = len(cats) - 1
	}
	if l.selected < 0 {
		l.selected = 0
	}
}

// Frame advances the springs one tick and reports whether more are needed.
func (l *List) Frame() bool {
	if !l.mounted {
		return false
	}
	return l.Anim.Tick()
}

func (l *List) Animating() bool {
	return l.mounted && l.Anim.Animating()
}

// The listener is a method value on the long-lived List, so it always sees
// current state through the receiver.
func (l *List) handleDocumentPointerDown(ev *PointerEvent) {
	if !l.mounted {
		return
	}
	l.Menu.OpenOrToggle(ev, category.EmptyID)
}

// handleBlur cancels an open form when the press lands outside it.
func (l *List) handleBlur(ev *PointerEvent) {
	if !l.mounted || ev == nil || isFormElement(ev.Target) {
		return
	}
	if l.Edit.Target() == TargetNone {
		return
	}
	l.Edit.Reset()
}

// Rows derives per-row props for the current render.
func (l *List) Rows() []RowProps {
	cats := l.cats.Categories()
	editing := l.cats.Editing()
	menu := l.Menu.State()
	adding := l.temp.AddingTempCategory()

	rows := make([]RowProps, len(cats))
	for i, c := range cats {
		over := l.Drag.Dragging() && l.Drag.OverIndex() == i
		c.DraggedOver = over

		row := RowProps{
			Category:    c,
			Index:       i,
			Y:           l.Anim.Offset(c.ID),
			MenuOpen:    menu.Open() && menu.OpenID == c.ID,
			Editing:     !adding && editing.ID == c.ID,
			DraggedOver: over,
			Selected:    i == l.selected,
		}
		if row.MenuOpen {
			row.MenuAnchor = menu.Anchor
		}
		if row.Editing {
			row.TempName = editing.TempName
		}
		rows[i] = row
	}
	return rows
}

// Affordance picks the create form or the add button.
func (l *List) Affordance() Affordance {
	if l.temp.AddingTempCategory() {
		return AffordanceCreateForm
	}
	return AffordanceAddButton
}

// OnClick is bound to a row's options trigger.
func (l *List) OnClick(ev *PointerEvent, categoryID string) {
	if !l.mounted {
		return
	}
	l.handleBlur(ev)
	l.Menu.OpenOrToggle(ev, categoryID)
}

// OnContextMenu is bound to a row's secondary button. Like OnClick it stops
// propagation, so it closes an open form itself.
func (l *List) OnContextMenu(ev *PointerEvent, categoryID string) {
	if !l.mounted {
		return
	}
	l.handleBlur(ev)
	l.Menu.RightClick(ev, categoryID)
	l.selectID(categoryID)
}

// OnSelect moves the selection without touching the menu. The event keeps
// propagating so an open menu is dismissed.
func (l *List) OnSelect(ev *PointerEvent, categoryID string) {
	if !l.mounted {
		return
	}
	l.selectID(categoryID)
}

// OnMenuAction runs an entry of the open menu and closes it.
func (l *List) OnMenuAction(ev *PointerEvent, action MenuAction) error {
	if !l.mounted {
		return nil
	}
	if ev != nil {
		ev.StopPropagation()
	}

	id := l.Menu.State().OpenID
	cats := l.cats.Categories()
	idx := category.IndexOf(cats, id)
	l.Menu.Dismiss()
	if idx < 0 {
		return nil
	}

	switch action {
	case MenuRename:
		l.Edit.BeginRename(id, cats[idx].Name)
	case MenuCopyName:
		if err := l.clipboard(cats[idx].Name); err != nil {
			return fmt.Errorf("failed to copy category name: %w", err)
		}
	}
	return nil
}

// OnAddClick is bound to the add button.
func (l *List) OnAddClick(ev *PointerEvent) {
	if !l.mounted {
		return
	}
	if ev != nil {
		ev.StopPropagation()
	}
	l.Menu.Dismiss()
	l.Edit.BeginCreate()
}

// OnDragStart picks up the row for categoryID.
func (l *List) OnDragStart(categoryID string) bool {
	if !l.mounted {
		return false
	}
	idx := category.IndexOf(l.cats.Categories(), categoryID)
	if idx < 0 {
		return false
	}
	return l.Drag.Begin(DragPayload{Type: category.DragType, CategoryID: categoryID, From: idx})
}

func (l *List) OnDragOver(index int) {
	if !l.mounted {
		return
	}
	l.Drag.Hover(index)
}

func (l *List) OnDrop(index int) bool {
	if !l.mounted {
		return false
	}
	return l.Drag.Drop(index)
}

// SubmitForm commits whichever form is open.
func (l *List) SubmitForm(ctx context.Context, ev *SubmitEvent) error {
	if !l.mounted {
		return nil
	}
	var err error
	switch l.Edit.Target() {
	case TargetCreate:
		err = l.Edit.CommitCreate(ctx, ev)
	case TargetRename:
		err = l.Edit.CommitRename(ctx, ev)
	default:
		l.Edit.Reset()
	}
	l.Sync()
	return err
}

// ChangeForm records the text typed into the open form.
func (l *List) ChangeForm(text string) {
	if !l.mounted {
		return
	}
	l.Edit.ChangeTempName(l.cats.Editing().ID, text)
}

func (l *List) ResetForm() {
	if !l.mounted {
		return
	}
	l.Edit.Reset()
}

// Selected returns the selected category, if any.
func (l *List) Selected() (category.Category, int, bool) {
	cats := l.cats.Categories()
	if l.selected < 0 || l.selected >= len(cats) {
		return category.Category{}, -1, false
	}
	return cats[l.selected], l.selected, true
}

// MoveSelection shifts the cursor by delta within bounds.
func (l *List) MoveSelection(delta int) {
	if !l.mounted {
		return
	}
	n := len(l.cats.Categories())
	if n == 0 {
		return
	}
	l.selected += delta
	if l.selected < 0 {
		l.selected = 0
	}
	if l.selected >= n {
		l.selected = n - 1
	}
}

// ToggleSelectedMenu opens or closes the menu of the selected row at anchor.
func (l *List) ToggleSelectedMenu(anchor Point) {
	if !l.mounted {
		return
	}
	c, _, ok := l.Selected()
	if !ok {
		return
	}
	if l.Menu.IsOpen(c.ID) {
		l.Menu.Dismiss()
		return
	}
	l.Menu.OpenAt(c.ID, anchor)
}

// RenameSelected starts an inline rename of the selected row.
func (l *List) RenameSelected() {
	if !l.mounted {
		return
	}
	c, _, ok := l.Selected()
	if !ok {
		return
	}
	l.Menu.Dismiss()
	l.Edit.BeginRename(c.ID, c.Name)
}

// ReorderSelected drags the selected row by delta and drops it.
func (l *List) ReorderSelected(delta int) bool {
	c, from, ok := l.Selected()
	if !ok || !l.OnDragStart(c.ID) {
		return false
	}
	to := from + delta
	n := len(l.cats.Categories())
	if to < 0 || to >= n {
		l.Drag.Cancel()
		return false
	}
	l.OnDragOver(to)
	return l.OnDrop(to)
}

func (l *List) selectID(id string) {
	if idx := category.IndexOf(l.cats.Categories(), id); idx >= 0 {
		l.selected = idx
	}
}
