package sidebar

import "github.com/brandonhon/catbar/internal/category"

// MenuState is the open contextual menu, if any, and where it is drawn.
type MenuState struct {
	OpenID string
	Anchor Point
}

// Open reports whether any menu is open.
func (s MenuState) Open() bool {
	return s.OpenID != category.EmptyID
}

// Bounds is a screen region.
type Bounds interface {
	Contains(p Point) bool
}

// Rect is an inclusive cell rectangle.
type Rect struct {
	X0, Y0, X1, Y1 int
}

func (r Rect) Contains(p Point) bool {
	return p.X >= r.X0 && p.X <= r.X1 && p.Y >= r.Y0 && p.Y <= r.Y1
}

// MenuController owns the single contextual menu.
type MenuController struct {
	state MenuState
	panel Bounds
}

func NewMenuController() *MenuController {
	return &MenuController{}
}

// anchorExcluded reports targets that never move the anchor.
func anchorExcluded(target string) bool {
	return isMenuElement(target) || isFormElement(target)
}

// SetPanel records where the open menu was last rendered. nil clears it.
func (m *MenuController) SetPanel(b Bounds) {
	m.panel = b
}

func (m *MenuController) State() MenuState {
	return m.state
}

// IsOpen reports whether the menu for categoryID is open.
func (m *MenuController) IsOpen(categoryID string) bool {
	return m.state.Open() && m.state.OpenID == categoryID
}

func (m *MenuController) insidePanel(ev *PointerEvent) bool {
	if !m.state.Open() {
		return false
	}
	if isMenuElement(ev.Target) {
		return true
	}
	return m.panel != nil && ev.HasPoint && m.panel.Contains(ev.Point)
}

// OpenOrToggle opens the menu for categoryID, or closes it when it is
// already the open one. Presses inside the open panel are ignored. The
// empty id always closes.
func (m *MenuController) OpenOrToggle(ev *PointerEvent, categoryID string) {
	if ev == nil || ev.Target == "" {
		return
	}

	anchor := m.state.Anchor
	if !anchorExcluded(ev.Target) && ev.HasPoint {
		anchor = ev.Point
	}

	ev.StopPropagation()

	if m.insidePanel(ev) {
		return
	}

	if !m.state.Open() || m.state.OpenID != categoryID {
		m.state = MenuState{OpenID: categoryID, Anchor: anchor}
	} else {
		m.state = MenuState{}
	}

	if !m.state.Open() {
		m.state = MenuState{}
		m.panel = nil
	}
}

// RightClick suppresses the terminal's own handling and toggles.
func (m *MenuController) RightClick(ev *PointerEvent, categoryID string) {
	if ev == nil {
		return
	}
	ev.PreventDefault()
	m.OpenOrToggle(ev, categoryID)
}

// OpenAt opens the menu for categoryID at anchor without toggling.
func (m *MenuController) OpenAt(categoryID string, anchor Point) {
	if categoryID == category.EmptyID {
		m.Dismiss()
		return
	}
	m.state = MenuState{OpenID: categoryID, Anchor: anchor}
}

// Dismiss closes any open menu.
func (m *MenuController) Dismiss() {
	m.state = MenuState{}
	m.panel = nil
}
