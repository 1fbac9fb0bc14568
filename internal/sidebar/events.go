package sidebar

import "strings"

// Element ids name the things a pointer can land on. Row-scoped ids carry
// the category id after the prefix.
const (
	ElementBackground = "sidebar"
	ElementRowPrefix  = "row:"
	ElementOptsPrefix = "opts:"
	ElementMenu       = "menu"
	ElementMenuRename = "menu:rename"
	ElementMenuCopy   = "menu:copy"
	ElementForm       = "form"
	ElementAdd        = "add"
)

// RowElement returns the element id of the row for categoryID.
func RowElement(categoryID string) string { return ElementRowPrefix + categoryID }

// OptionsElement returns the element id of the row's options trigger.
func OptionsElement(categoryID string) string { return ElementOptsPrefix + categoryID }

func isMenuElement(target string) bool {
	return target == ElementMenu || strings.HasPrefix(target, ElementMenu+":")
}

func isFormElement(target string) bool {
	return target == ElementForm || strings.HasPrefix(target, ElementForm+":")
}

// Point is a screen cell.
type Point struct {
	X, Y int
}

// PointerEvent is a mouse press delivered first to the element under the
// pointer and then to document listeners, unless stopped.
type PointerEvent struct {
	Target   string
	Point    Point
	HasPoint bool

	stopped          bool
	defaultPrevented bool
}

// NewPointerEvent returns an event carrying pointer coordinates.
func NewPointerEvent(target string, p Point) *PointerEvent {
	return &PointerEvent{Target: target, Point: p, HasPoint: true}
}

func (e *PointerEvent) StopPropagation() { e.stopped = true }

func (e *PointerEvent) PreventDefault() { e.defaultPrevented = true }

// Propagating reports whether document listeners should still see the event.
func (e *PointerEvent) Propagating() bool { return !e.stopped }

func (e *PointerEvent) DefaultPrevented() bool { return e.defaultPrevented }

// SubmitEvent is a form submission.
type SubmitEvent struct {
	defaultPrevented bool
}

func (e *SubmitEvent) PreventDefault() { e.defaultPrevented = true }

func (e *SubmitEvent) DefaultPrevented() bool { return e.defaultPrevented }

// Listener handles a document-level pointer-down.
type Listener func(ev *PointerEvent)

// Document fans pointer-down events out to registered listeners in
// registration order.
type Document struct {
	listeners map[int]Listener
	order     []int
	next      int
}

func NewDocument() *Document {
	return &Document{listeners: make(map[int]Listener)}
}

// AddPointerDown registers l and returns the function that removes it.
// The remover may be called more than once.
func (d *Document) AddPointerDown(l Listener) (remove func()) {
	id := d.next
	d.next++
	d.listeners[id] = l
	d.order = append(d.order, id)

	return func() {
		if _, ok := d.listeners[id]; !ok {
			return
		}
		delete(d.listeners, id)
		for i, v := range d.order {
			if v == id {
				d.order = append(d.order[:i], d.order[i+1:]...)
				break
			}
		}
	}
}

// DispatchPointerDown delivers ev to every listener unless propagation
// was stopped by the element handler.
func (d *Document) DispatchPointerDown(ev *PointerEvent) {
	if ev == nil || !ev.Propagating() {
		return
	}

	ids := append([]int(nil), d.order...)
	for _, id := range ids {
		if l, ok := d.listeners[id]; ok {
			l(ev)
		}
	}
}

// ListenerCount reports the number of registered listeners.
func (d *Document) ListenerCount() int {
	return len(d.listeners)
}
