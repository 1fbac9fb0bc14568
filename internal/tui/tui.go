package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/brandonhon/catbar/internal/category"
	"github.com/brandonhon/catbar/internal/config"
	"github.com/brandonhon/catbar/internal/sidebar"
)

type model struct {
	ctx      context.Context
	service  *category.Service
	config   *config.Config
	auditor  sidebar.Auditor
	sidebar  *sidebar.Model
	help     help.Model
	showHelp bool
	helpView string
	message  string
	width    int
	height   int
	quitting bool
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			PaddingLeft(2)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			PaddingLeft(2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			PaddingLeft(2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("76")).
			Bold(true)
)

// headerLines is how many lines sit above the sidebar.
const headerLines = 3

// Run opens the sidebar full screen until the user quits.
func Run(ctx context.Context, service *category.Service, cfg *config.Config, auditor sidebar.Auditor) error {
	m := newModel(ctx, service, cfg, auditor, sidebar.Options{})

	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if cfg.UI.Mouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}

	p := tea.NewProgram(m, opts...)
	_, err := p.Run()
	m.sidebar.Unmount()
	return err
}

func newModel(ctx context.Context, service *category.Service, cfg *config.Config, auditor sidebar.Auditor, opts sidebar.Options) *model {
	m := &model{
		ctx:     ctx,
		service: service,
		config:  cfg,
		auditor: auditor,
		help:    help.New(),
	}

	if opts.Auditor == nil && auditor != nil {
		opts.Auditor = auditor
	}
	if opts.Reorderer == nil {
		opts.Reorderer = sidebar.ReorderFunc(m.onReorder)
	}
	if opts.RowHeight <= 0 {
		opts.RowHeight = cfg.Animation.RowHeight
	}
	if opts.Spring == (sidebar.SpringConfig{}) {
		opts.Spring = sidebar.SpringConfig{
			Stiffness: cfg.Animation.Stiffness,
			Damping:   cfg.Animation.Damping,
			FPS:       cfg.Animation.FPS,
		}
	}

	m.sidebar = sidebar.New(ctx, service, &sidebar.TempState{}, sidebar.Config{
		Width:       cfg.UI.Width,
		LinesPerRow: cfg.UI.LinesPerRow,
		KeyBindings: cfg.UI.KeyBindings,
		List:        opts,
	})
	m.sidebar.SetOrigin(sidebar.Point{X: 0, Y: headerLines})

	return m
}

// onReorder reports a drop. The stored order stays as it is.
func (m *model) onReorder(categoryID string, from, to int) {
	if m.auditor != nil {
		m.auditor.LogReorder(categoryID, from, to)
	}
	name := categoryID
	for _, c := range m.service.Categories() {
		if c.ID == categoryID {
			name = c.Name
			break
		}
	}
	m.message = fmt.Sprintf("Dropped %s at position %d", name, to+1)
}

func (m *model) Init() tea.Cmd {
	return m.sidebar.Init()
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.helpView = ""
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}

		if m.showHelp {
			switch msg.String() {
			case "q", "esc", "?":
				m.showHelp = false
			}
			return m, nil
		}

		if !m.sidebar.Editing() {
			switch msg.String() {
			case "q":
				return m.quit()
			case "?":
				m.showHelp = true
				return m, nil
			}
		}
	}

	before := len(m.service.Categories())
	_, cmd := m.sidebar.Update(msg)
	if after := len(m.service.Categories()); after > before {
		m.message = "Category added"
	}
	return m, cmd
}

func (m *model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.sidebar.Unmount()
	return m, tea.Quit
}

func (m *model) View() string {
	if m.quitting {
		return ""
	}
	if m.showHelp {
		return m.viewHelp()
	}
	return m.sidebar.Scan(m.viewMain())
}

func (m *model) viewMain() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Categories"))
	b.WriteString("\n")
	b.WriteString(headerStyle.Render(fmt.Sprintf("%d categories", len(m.service.Categories()))))
	b.WriteString("\n\n")

	b.WriteString(m.sidebar.View())
	b.WriteString("\n\n")

	if err := m.sidebar.Err(); err != nil {
		b.WriteString(errorStyle.Render("Error: " + err.Error()))
		b.WriteString("\n")
	} else if m.message != "" {
		b.WriteString(successStyle.Render(m.message))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render(m.help.View(m.sidebar.Keys()) + " • ? help • q quit"))

	return b.String()
}

func (m *model) viewHelp() string {
	if m.helpView == "" {
		m.helpView = renderMarkdown(helpMarkdown(m.sidebar.Keys()), m.config.UI.ColorScheme, m.width)
	}
	return m.helpView + "\n" + helpStyle.Render("Press ? or esc to return")
}

func helpMarkdown(keys sidebar.KeyMap) string {
	var b strings.Builder

	b.WriteString("# Categories\n\n")
	b.WriteString("## Keyboard\n\n")
	b.WriteString("| Key | Action |\n|---|---|\n")
	for _, group := range keys.FullHelp() {
		for _, k := range group {
			h := k.Help()
			fmt.Fprintf(&b, "| `%s` | %s |\n", h.Key, h.Desc)
		}
	}

	b.WriteString("\n## Mouse\n\n")
	b.WriteString("- Click a row to select it, click `⋯` to open its menu.\n")
	b.WriteString("- Right click a row to open the menu at the pointer.\n")
	b.WriteString("- Click anywhere else to close the menu.\n")
	b.WriteString("- Drag a row onto another row to report a move.\n")

	b.WriteString("\n## Names\n\n")
	b.WriteString("Names are trimmed. Empty names and names already in the list are discarded.\n")

	return b.String()
}

// renderMarkdown falls back to the raw text when glamour cannot render.
func renderMarkdown(content, scheme string, width int) string {
	options := []glamour.TermRendererOption{}
	switch scheme {
	case "light", "dark":
		options = append(options, glamour.WithStandardStyle(scheme))
	case "none":
		options = append(options, glamour.WithStandardStyle("notty"))
	default:
		options = append(options, glamour.WithAutoStyle())
	}
	if width > 0 {
		options = append(options, glamour.WithWordWrap(width))
	}

	renderer, err := glamour.NewTermRenderer(options...)
	if err != nil {
		return content
	}
	out, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return out
}
