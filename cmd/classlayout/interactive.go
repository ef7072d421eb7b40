package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/wasm-classlayout/typemgr"
)

var (
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateBrowse modelState = iota
	stateDetail
)

type interactiveModel struct {
	res      *result
	filename string
	filter   textinput.Model
	visible  []*typemgr.StructType
	selected int
	state    modelState
}

func newInteractiveModel(filename string, res *result) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "filter classes"
	ti.Prompt = "/ "
	ti.Width = 40
	ti.Focus()

	m := &interactiveModel{
		res:      res,
		filename: filename,
		filter:   ti,
		state:    stateBrowse,
	}
	m.applyFilter()
	return m
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) applyFilter() {
	q := strings.ToLower(m.filter.Value())
	m.visible = m.visible[:0]
	for _, st := range m.res.reg.Structs() {
		if q == "" || strings.Contains(strings.ToLower(st.Name()), q) {
			m.visible = append(m.visible, st)
		}
	}
	if m.selected >= len(m.visible) {
		m.selected = max(len(m.visible)-1, 0)
	}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "up":
			if m.state == stateBrowse && m.selected > 0 {
				m.selected--
			}
			return m, nil

		case "down":
			if m.state == stateBrowse && m.selected < len(m.visible)-1 {
				m.selected++
			}
			return m, nil

		case "enter":
			if m.state == stateBrowse && len(m.visible) > 0 {
				m.state = stateDetail
				m.filter.Blur()
			}
			return m, nil

		case "esc":
			switch m.state {
			case stateDetail:
				m.state = stateBrowse
				m.filter.Focus()
			case stateBrowse:
				m.filter.SetValue("")
				m.applyFilter()
			}
			return m, nil

		case "q":
			if m.state == stateDetail {
				return m, tea.Quit
			}
		}
	}

	if m.state != stateBrowse {
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m *interactiveModel) View() string {
	var b strings.Builder
	p := palette{styled: true}

	b.WriteString(titleStyle.Render("Class layout"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	switch m.state {
	case stateBrowse:
		b.WriteString(m.filter.View())
		b.WriteString("\n\n")
		for i, st := range m.visible {
			line := fmt.Sprintf("%s  %d fields, %d methods", st.Name(), len(st.Fields()), len(st.Methods()))
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		if len(m.visible) == 0 {
			b.WriteString(helpStyle.Render("no matching classes"))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("type to filter • ↑/↓ select • enter details • esc clear • ctrl+c quit"))

	case stateDetail:
		b.WriteString(describeStruct(p, m.visible[m.selected], m.res.fm))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("esc back • q quit"))
	}

	return b.String()
}

func runInteractive(filename string, res *result) error {
	p := tea.NewProgram(newInteractiveModel(filename, res), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
