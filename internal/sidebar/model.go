package sidebar

import (
	"context"
	"strings"
	"time"

	"github.com/brandonhon/catbar/internal/category"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Config sizes the sidebar and wires its collaborators.
type Config struct {
	Width       int
	LinesPerRow int
	KeyBindings map[string]string
	List        Options
	Hits        HitTester
}

type frameMsg struct {
	generation int
}

// Model adapts a List to Bubble Tea. It is meant to be embedded by a
// parent model that forwards messages and scans the final view.
type Model struct {
	ctx  context.Context
	list *List
	doc  *Document
	cats Categories
	hits HitTester
	keys KeyMap

	input    textinput.Model
	formOpen bool

	width       int
	linesPerRow int
	origin      Point

	generation int
	ticking    bool
	err        error
}

func New(ctx context.Context, cats Categories, temp *TempState, cfg Config) *Model {
	if cfg.Width <= 0 {
		cfg.Width = 32
	}
	if cfg.LinesPerRow <= 0 {
		cfg.LinesPerRow = 2
	}
	if cfg.Hits == nil {
		cfg.Hits = NewZoneHitTester()
	}

	doc := NewDocument()
	input := textinput.New()
	input.Prompt = ""
	input.Placeholder = "New category"
	input.CharLimit = 100
	input.Width = cfg.Width - 4

	return &Model{
		ctx:         ctx,
		list:        NewList(doc, cats, temp, cfg.List),
		doc:         doc,
		cats:        cats,
		hits:        cfg.Hits,
		keys:        NewKeyMap(cfg.KeyBindings),
		input:       input,
		width:       cfg.Width,
		linesPerRow: cfg.LinesPerRow,
	}
}

// List exposes the orchestrator.
func (m *Model) List() *List { return m.list }

func (m *Model) Keys() KeyMap { return m.keys }

// Err is the last store failure, cleared by the next successful commit.
func (m *Model) Err() error { return m.err }

// SetOrigin tells the sidebar where its top-left cell is on screen.
func (m *Model) SetOrigin(p Point) { m.origin = p }

// Editing reports whether a form owns the keyboard.
func (m *Model) Editing() bool { return m.list.Edit.Target() != TargetNone }

// Scan finalizes zone positions for a rendered frame.
func (m *Model) Scan(s string) string { return m.hits.Scan(s) }

func (m *Model) Init() tea.Cmd {
	m.list.Mount()
	return nil
}

// Unmount tears the list down and invalidates scheduled frames.
func (m *Model) Unmount() {
	m.list.Unmount()
	m.generation++
	m.ticking = false
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case frameMsg:
		if msg.generation != m.generation {
			return m, nil
		}
		m.ticking = false
		if m.list.Frame() {
			m.ticking = true
			return m, m.frame()
		}
		return m, nil

	case tea.MouseMsg:
		m.handleMouse(msg)

	case tea.KeyMsg:
		if cmd := m.handleKey(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	m.list.Sync()
	m.syncForm()

	if m.list.Animating() && !m.ticking {
		m.ticking = true
		cmds = append(cmds, m.frame())
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) frame() tea.Cmd {
	gen := m.generation
	return tea.Tick(m.list.Anim.FrameInterval(), func(time.Time) tea.Msg {
		return frameMsg{generation: gen}
	})
}

// hitOrder lists the ids to test, innermost first.
func (m *Model) hitOrder() []string {
	ids := []string{ElementMenuRename, ElementMenuCopy, ElementMenu, ElementForm, ElementAdd}
	for _, c := range m.cats.Categories() {
		ids = append(ids, OptionsElement(c.ID), RowElement(c.ID))
	}
	return ids
}

func (m *Model) target(msg tea.MouseMsg) string {
	if id, ok := m.hits.Hit(msg, m.hitOrder()); ok {
		return id
	}
	return ElementBackground
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if !m.list.Mounted() {
		return
	}

	if m.list.Menu.State().Open() {
		if r, ok := m.hits.Bounds(ElementMenu); ok {
			m.list.Menu.SetPanel(r)
		}
	}

	target := m.target(msg)
	point := Point{X: msg.X, Y: msg.Y}

	switch msg.Action {
	case tea.MouseActionPress:
		ev := NewPointerEvent(target, point)
		switch msg.Button {
		case tea.MouseButtonLeft:
			m.pressLeft(ev)
		case tea.MouseButtonRight:
			if id, ok := rowTarget(target); ok {
				m.list.OnContextMenu(ev, id)
			}
		default:
			return
		}
		m.doc.DispatchPointerDown(ev)

	case tea.MouseActionMotion:
		if msg.Button != tea.MouseButtonLeft || !m.list.Drag.Dragging() {
			return
		}
		if id, ok := rowTarget(target); ok {
			m.list.OnDragOver(m.indexOf(id))
		}

	case tea.MouseActionRelease:
		if !m.list.Drag.Dragging() {
			return
		}
		p, _ := m.list.Drag.Payload()
		id, ok := rowTarget(target)
		if !ok || m.indexOf(id) == p.From {
			m.list.Drag.Cancel()
			return
		}
		m.list.OnDrop(m.indexOf(id))
	}
}

func (m *Model) pressLeft(ev *PointerEvent) {
	switch {
	case ev.Target == ElementMenuRename:
		m.setErr(m.list.OnMenuAction(ev, MenuRename))
	case ev.Target == ElementMenuCopy:
		m.setErr(m.list.OnMenuAction(ev, MenuCopyName))
	case ev.Target == ElementAdd:
		m.list.OnAddClick(ev)
	case strings.HasPrefix(ev.Target, ElementOptsPrefix):
		m.list.OnClick(ev, strings.TrimPrefix(ev.Target, ElementOptsPrefix))
	case strings.HasPrefix(ev.Target, ElementRowPrefix):
		id := strings.TrimPrefix(ev.Target, ElementRowPrefix)
		m.list.OnSelect(ev, id)
		m.list.OnDragStart(id)
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if !m.list.Mounted() {
		return nil
	}

	if m.Editing() {
		switch {
		case key.Matches(msg, m.keys.Submit):
			m.setErr(m.list.SubmitForm(m.ctx, &SubmitEvent{}))
			return nil
		case key.Matches(msg, m.keys.Cancel):
			m.list.ResetForm()
			return nil
		}

		var cmd tea.Cmd
		before := m.input.Value()
		m.input, cmd = m.input.Update(msg)
		if m.input.Value() != before {
			m.list.ChangeForm(m.input.Value())
		}
		return cmd
	}

	if m.list.Menu.State().Open() {
		switch {
		case key.Matches(msg, m.keys.Rename):
			m.setErr(m.list.OnMenuAction(nil, MenuRename))
			return nil
		case key.Matches(msg, m.keys.Copy):
			m.setErr(m.list.OnMenuAction(nil, MenuCopyName))
			return nil
		case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Menu):
			m.list.Menu.Dismiss()
			return nil
		}
	}

	switch {
	case key.Matches(msg, m.keys.MoveUp):
		m.list.ReorderSelected(-1)
	case key.Matches(msg, m.keys.MoveDown):
		m.list.ReorderSelected(1)
	case key.Matches(msg, m.keys.Up):
		m.list.MoveSelection(-1)
	case key.Matches(msg, m.keys.Down):
		m.list.MoveSelection(1)
	case key.Matches(msg, m.keys.Menu):
		m.list.ToggleSelectedMenu(m.selectedAnchor())
	case key.Matches(msg, m.keys.Create):
		m.list.OnAddClick(nil)
	case key.Matches(msg, m.keys.Rename):
		m.list.RenameSelected()
	case key.Matches(msg, m.keys.Cancel):
		m.list.Menu.Dismiss()
	}
	return nil
}

// syncForm focuses the input when a form opens and clears it when it closes.
func (m *Model) syncForm() {
	open := m.Editing()
	switch {
	case open && !m.formOpen:
		m.input.SetValue(m.cats.Editing().TempName)
		m.input.CursorEnd()
		m.input.Focus()
		m.formOpen = true
	case !open && m.formOpen:
		m.input.Blur()
		m.input.SetValue("")
		m.formOpen = false
	}
}

func (m *Model) setErr(err error) {
	m.err = err
}

func (m *Model) selectedAnchor() Point {
	_, idx, _ := m.list.Selected()
	return Point{X: m.origin.X + 2, Y: m.origin.Y + idx*m.linesPerRow + 1}
}

func (m *Model) indexOf(id string) int {
	return category.IndexOf(m.cats.Categories(), id)
}

func rowTarget(target string) (string, bool) {
	switch {
	case strings.HasPrefix(target, ElementRowPrefix):
		return strings.TrimPrefix(target, ElementRowPrefix), true
	case strings.HasPrefix(target, ElementOptsPrefix):
		return strings.TrimPrefix(target, ElementOptsPrefix), true
	}
	return "", false
}
