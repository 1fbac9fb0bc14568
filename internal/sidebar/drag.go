package sidebar

import "github.com/brandonhon/catbar/internal/category"

// DragPayload is what a row carries while dragged.
type DragPayload struct {
	Type       string
	CategoryID string
	From       int
}

// Reorderer receives completed drops.
type Reorderer interface {
	OnReorder(categoryID string, from, to int)
}

type ReorderFunc func(categoryID string, from, to int)

func (f ReorderFunc) OnReorder(categoryID string, from, to int) { f(categoryID, from, to) }

// auditReorderer only records the drop; the order is not changed.
type auditReorderer struct {
	auditor Auditor
}

func (r auditReorderer) OnReorder(categoryID string, from, to int) {
	r.auditor.LogReorder(categoryID, from, to)
}

// DragController makes the list a drop target for category payloads.
type DragController struct {
	hook    Reorderer
	payload *DragPayload
	over    int
}

func NewDragController(hook Reorderer) *DragController {
	if hook == nil {
		hook = auditReorderer{auditor: nopAuditor{}}
	}
	return &DragController{hook: hook, over: -1}
}

// Accepts reports whether the list takes payloads of this kind.
func (d *DragController) Accepts(p DragPayload) bool {
	return p.Type == category.DragType
}

// Begin starts a drag. Foreign payloads are refused.
func (d *DragController) Begin(p DragPayload) bool {
	if !d.Accepts(p) {
		return false
	}
	d.payload = &p
	d.over = -1
	return true
}

// Hover marks index as the drop target.
func (d *DragController) Hover(index int) {
	if d.payload == nil {
		return
	}
	d.over = index
}

// Drop hands the move to the reorder hook and ends the drag.
func (d *DragController) Drop(to int) bool {
	if d.payload == nil {
		return false
	}
	p := *d.payload
	d.Cancel()
	d.hook.OnReorder(p.CategoryID, p.From, to)
	return true
}

func (d *DragController) Cancel() {
	d.payload = nil
	d.over = -1
}

func (d *DragController) Dragging() bool { return d.payload != nil }

// OverIndex is the hovered row, or -1.
func (d *DragController) OverIndex() int { return d.over }

func (d *DragController) Payload() (DragPayload, bool) {
	if d.payload == nil {
		return DragPayload{}, false
	}
	return *d.payload, true
}
