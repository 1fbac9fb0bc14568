package sidebar

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const optionsGlyph = "⋯"

var (
	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	selectedRowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57")).
				Bold(true)

	draggedOverStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Underline(true)

	optionsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	menuStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("205")).
			Padding(0, 1)

	menuItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	addButtonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("76"))

	formStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229"))

	sidebarErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("196")).
				Bold(true)
)

func (m *Model) View() string {
	if !m.list.Mounted() {
		return ""
	}

	rows := m.list.Rows()
	height := len(rows) * m.linesPerRow
	lines := make([]string, height)
	for i := range lines {
		lines[i] = strings.Repeat(" ", m.width)
	}

	for _, row := range rows {
		top := m.rowLine(row.Y)
		block := strings.Split(m.renderRow(row), "\n")
		for j, l := range block {
			at := top + j
			if at < 0 {
				continue
			}
			for at >= len(lines) {
				lines = append(lines, strings.Repeat(" ", m.width))
			}
			lines[at] = l
		}
	}

	if menu := m.list.Menu.State(); menu.Open() {
		lines = m.overlayMenu(lines, menu)
	}

	var b strings.Builder
	b.WriteString(strings.Join(lines, "\n"))
	if len(lines) > 0 {
		b.WriteString("\n")
	}

	switch m.list.Affordance() {
	case AffordanceCreateForm:
		b.WriteString(m.hits.Mark(ElementForm, formStyle.Render("› "+m.input.View())))
	default:
		b.WriteString(m.hits.Mark(ElementAdd, addButtonStyle.Render("+ Add category")))
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(sidebarErrorStyle.Render(truncate(m.err.Error(), m.width)))
	}

	return b.String()
}

// rowLine maps an animated offset to a terminal line.
func (m *Model) rowLine(y float64) int {
	h := m.list.Anim.RowHeight()
	if h <= 0 {
		return 0
	}
	return int(math.Round(y / h * float64(m.linesPerRow)))
}

func (m *Model) renderRow(row RowProps) string {
	if row.Editing {
		line := padRight(formStyle.Render("› "+m.input.View()), m.width)
		return m.hits.Mark(ElementForm, m.fill(line))
	}

	style := rowStyle
	switch {
	case row.DraggedOver:
		style = draggedOverStyle
	case row.Selected:
		style = selectedRowStyle
	}

	nameWidth := m.width - runewidth.StringWidth(optionsGlyph) - 3
	name := style.Render(padRight(" "+truncate(row.Category.Name, nameWidth), nameWidth+1))
	opts := m.hits.Mark(OptionsElement(row.Category.ID), optionsStyle.Render(" "+optionsGlyph+" "))

	return m.hits.Mark(RowElement(row.Category.ID), m.fill(name+opts))
}

// fill pads a first line out to linesPerRow lines.
func (m *Model) fill(first string) string {
	if m.linesPerRow <= 1 {
		return first
	}
	blank := strings.Repeat(" ", m.width)
	return first + strings.Repeat("\n"+blank, m.linesPerRow-1)
}

func (m *Model) renderMenu() string {
	items := []string{
		m.hits.Mark(ElementMenuRename, menuItemStyle.Render("Rename")),
		m.hits.Mark(ElementMenuCopy, menuItemStyle.Render("Copy name")),
	}
	return m.hits.Mark(ElementMenu, menuStyle.Render(strings.Join(items, "\n")))
}

// overlayMenu replaces whole lines starting at the anchor row.
func (m *Model) overlayMenu(lines []string, menu MenuState) []string {
	panel := strings.Split(m.renderMenu(), "\n")
	panelWidth := lipgloss.Width(m.renderMenuPlain())

	top := menu.Anchor.Y - m.origin.Y
	if top < 0 {
		top = 0
	}
	col := menu.Anchor.X - m.origin.X
	if col+panelWidth > m.width {
		col = m.width - panelWidth
	}
	if col < 0 {
		col = 0
	}

	for i, l := range panel {
		at := top + i
		for at >= len(lines) {
			lines = append(lines, strings.Repeat(" ", m.width))
		}
		lines[at] = strings.Repeat(" ", col) + l
	}
	return lines
}

func (m *Model) renderMenuPlain() string {
	return menuStyle.Render("Rename\nCopy name")
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
