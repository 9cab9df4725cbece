package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	qtpeek "github.com/qtpeek/qtpeek"
	"github.com/qtpeek/qtpeek/config"
	"github.com/qtpeek/qtpeek/decode"
	"github.com/qtpeek/qtpeek/snapshot"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	summaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// item is one displayable row: a labeled value plus its rendered summary.
type item struct {
	label      string
	val        qtpeek.Value
	summary    string
	expandable bool
}

// level is one step of the drill-down: the items under a parent value.
type level struct {
	title    string
	items    []item
	selected int
	notice   string
}

type browserModel struct {
	filename string
	cfg      *config.Config
	engine   *decode.Engine
	snap     *snapshot.Snapshot
	stack    []*level
	filter   textinput.Model
	filterOn bool
	err      error
}

func newBrowserModel(filename string, cfg *config.Config) *browserModel {
	ti := textinput.New()
	ti.Placeholder = "root name"
	ti.Prompt = "/"
	ti.Width = 30
	return &browserModel{filename: filename, cfg: cfg, filter: ti}
}

type loadedMsg struct {
	err    error
	snap   *snapshot.Snapshot
	engine *decode.Engine
	roots  *level
}

func (m *browserModel) Init() tea.Cmd {
	return m.loadSnapshot
}

func (m *browserModel) loadSnapshot() tea.Msg {
	snap, err := snapshot.Open(m.filename)
	if err != nil {
		return loadedMsg{err: err}
	}
	engine, err := decode.NewEngine(snap, snap, snap.Arch(), m.cfg.EngineOptions())
	if err != nil {
		return loadedMsg{err: err}
	}

	lv := &level{title: m.filename}
	for _, r := range snap.Roots() {
		lv.items = append(lv.items, makeItem(engine, r.Name, r.Value))
	}
	return loadedMsg{snap: snap, engine: engine, roots: lv}
}

// makeItem renders one value into a row. Values outside the decoder catalog
// still get a row, showing their type and address instead of a summary.
func makeItem(engine *decode.Engine, label string, v qtpeek.Value) item {
	res, ok := engine.Inspect(v)
	if !ok {
		return item{
			label:   label,
			val:     v,
			summary: fmt.Sprintf("%s @ 0x%x", v.TypeName, v.Addr),
		}
	}
	return item{label: label, val: v, summary: res.Summary, expandable: res.HasChildren}
}

func (m *browserModel) top() *level {
	if len(m.stack) == 0 {
		return nil
	}
	return m.stack[len(m.stack)-1]
}

func (m *browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.filterOn {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if lv := m.top(); lv != nil && lv.selected > 0 {
				lv.selected--
			}

		case "down", "j":
			if lv := m.top(); lv != nil && lv.selected < len(lv.items)-1 {
				lv.selected++
			}

		case "enter", "right", "l":
			m.expandSelected()

		case "esc", "left", "h", "backspace":
			if len(m.stack) > 1 {
				m.stack = m.stack[:len(m.stack)-1]
			}

		case "/":
			if len(m.stack) == 1 {
				m.filterOn = true
				m.filter.SetValue("")
				m.filter.Focus()
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.snap = msg.snap
		m.engine = msg.engine
		m.stack = []*level{msg.roots}
	}

	return m, nil
}

func (m *browserModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.filterOn = false
		m.jumpToRoot(m.filter.Value())
		return m, nil
	case "esc":
		m.filterOn = false
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	return m, cmd
}

// jumpToRoot moves the root-level cursor to the first root whose name has the
// given prefix.
func (m *browserModel) jumpToRoot(prefix string) {
	if prefix == "" || len(m.stack) == 0 {
		return
	}
	lv := m.stack[0]
	for i, it := range lv.items {
		if strings.HasPrefix(it.label, prefix) {
			lv.selected = i
			return
		}
	}
	lv.notice = fmt.Sprintf("no root starting with %q", prefix)
}

// expandSelected pushes a new level holding the selected item's children.
func (m *browserModel) expandSelected() {
	lv := m.top()
	if lv == nil || lv.selected >= len(lv.items) {
		return
	}
	sel := lv.items[lv.selected]
	if !sel.expandable {
		lv.notice = sel.label + " has no children"
		return
	}

	next := &level{title: sel.label + " = " + sel.summary}
	it := m.engine.Children(sel.val)
	for {
		child, ok := it.Next()
		if !ok {
			break
		}
		next.items = append(next.items, makeItem(m.engine, child.Label, child.Value))
	}
	if err := it.Err(); err != nil {
		next.notice = fmt.Sprintf("enumeration stopped: %v", err)
	}
	lv.notice = ""
	m.stack = append(m.stack, next)
}

func (m *browserModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	lv := m.top()
	if lv == nil {
		return "Loading snapshot..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("qtpeek"))
	b.WriteString(" ")
	b.WriteString(lv.title)
	b.WriteString("\n\n")

	if len(lv.items) == 0 {
		b.WriteString(helpStyle.Render("(no entries)"))
		b.WriteString("\n")
	}
	for i, it := range lv.items {
		line := formatItem(it)
		if i == lv.selected {
			b.WriteString(selectedStyle.Render("> " + it.label + " = " + it.summary))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	if lv.notice != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(lv.notice))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.filterOn {
		b.WriteString(m.filter.View())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter jump • esc cancel"))
	} else {
		help := "↑/↓ select • enter expand • esc back • q quit"
		if len(m.stack) == 1 {
			help = "↑/↓ select • enter expand • / find root • q quit"
		}
		b.WriteString(helpStyle.Render(help))
	}
	return b.String()
}

func formatItem(it item) string {
	marker := " "
	if it.expandable {
		marker = "+"
	}
	line := labelStyle.Render(it.label) + " = " + summaryStyle.Render(it.summary)
	if it.val.TypeName != "" {
		line += "  " + typeStyle.Render(it.val.TypeName)
	}
	return marker + " " + line
}

func runInteractive(filename string, cfg *config.Config) error {
	p := tea.NewProgram(newBrowserModel(filename, cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
