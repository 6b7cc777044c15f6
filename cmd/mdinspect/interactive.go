package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/clrmeta/cts"
	"github.com/wippyai/clrmeta/token"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const pageSize = 20

type interactiveModel struct {
	err      error
	image    *cts.Image
	filename string
	tables   []token.TableKind
	detail   []string
	jump     textinput.Model
	current  token.Token
	selected int
	row      int
	state    modelState
	jumping  bool
}

type modelState int

const (
	stateTables modelState = iota
	stateRows
	stateDetail
)

func newInteractiveModel(filename string, img *cts.Image) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "0x06000001"
	ti.Prompt = "token: "
	ti.Width = 20

	tables, _ := selectTables(img.Tables(), nil)
	return &interactiveModel{
		filename: filename,
		image:    img,
		tables:   tables,
		jump:     ti,
		state:    stateTables,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) rowCount() int {
	if len(m.tables) == 0 {
		return 0
	}
	return m.image.Tables().Table(m.tables[m.selected]).Len()
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.jumping {
		switch key.String() {
		case "enter":
			m.jumping = false
			m.jump.Blur()
			m.jumpTo(m.jump.Value())
			m.jump.SetValue("")
			return m, nil
		case "esc":
			m.jumping = false
			m.jump.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.jump, cmd = m.jump.Update(msg)
		return m, cmd
	}

	switch key.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case ":", "g":
		m.jumping = true
		m.err = nil
		return m, m.jump.Focus()

	case "up", "k":
		switch m.state {
		case stateTables:
			if m.selected > 0 {
				m.selected--
			}
		case stateRows:
			if m.row > 0 {
				m.row--
			}
		}

	case "down", "j":
		switch m.state {
		case stateTables:
			if m.selected < len(m.tables)-1 {
				m.selected++
			}
		case stateRows:
			if m.row < m.rowCount()-1 {
				m.row++
			}
		}

	case "pgdown":
		if m.state == stateRows {
			m.row = min(m.row+pageSize, max(m.rowCount()-1, 0))
		}

	case "pgup":
		if m.state == stateRows {
			m.row = max(m.row-pageSize, 0)
		}

	case "enter":
		switch m.state {
		case stateTables:
			if len(m.tables) > 0 {
				m.state = stateRows
				m.row = 0
			}
		case stateRows:
			if m.rowCount() > 0 {
				m.show(token.New(m.tables[m.selected], uint32(m.row+1)))
			}
		}

	case "esc":
		switch m.state {
		case stateRows:
			m.state = stateTables
		case stateDetail:
			m.state = stateRows
			m.err = nil
		}
	}
	return m, nil
}

func (m *interactiveModel) jumpTo(text string) {
	v, err := strconv.ParseUint(strings.TrimSpace(text), 0, 32)
	if err != nil {
		m.err = fmt.Errorf("bad token %q", text)
		return
	}
	tok := token.FromUint32(uint32(v))
	for i, k := range m.tables {
		if k == tok.Kind {
			m.selected = i
			m.row = int(tok.Rid) - 1
		}
	}
	m.show(tok)
}

// show opens the detail view of tok: its columns, the entity it
// materializes to and, for methods, the disassembly.
func (m *interactiveModel) show(tok token.Token) {
	m.current = tok
	m.state = stateDetail
	m.detail = nil
	m.err = nil

	row, err := m.image.Tables().ResolveRow(tok)
	if err != nil {
		m.err = err
		return
	}
	cols := m.image.Tables().Table(tok.Kind).Schema().Columns
	for i, col := range cols {
		line := fmt.Sprintf("%-16s %10d", col.Name, row.Column(i))
		if text := describeColumn(m.image, col, row.Column(i)); text != "" {
			line += "  " + nameStyle.Render(text)
		}
		m.detail = append(m.detail, line)
	}

	member, err := m.image.MemberByToken(tok)
	if err != nil {
		m.detail = append(m.detail, "", helpStyle.Render("no entity: "+err.Error()))
		return
	}
	m.detail = append(m.detail, "", fmt.Sprintf("%T", member))
	if s, ok := member.(fmt.Stringer); ok {
		m.detail = append(m.detail, nameStyle.Render(s.String()))
	}
	if method, ok := member.(*cts.MethodDefinition); ok {
		var b strings.Builder
		p := &printer{w: &b, format: "text", styled: true}
		p.method(method)
		m.detail = append(m.detail, "", b.String())
	}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("mdinspect"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	switch m.state {
	case stateTables:
		b.WriteString("Select a table:\n\n")
		for i, k := range m.tables {
			line := fmt.Sprintf("%-24s %6d rows", k, m.image.Tables().Table(k).Len())
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter open • : jump to token • q quit"))

	case stateRows:
		k := m.tables[m.selected]
		t := m.image.Tables().Table(k)
		b.WriteString(fmt.Sprintf("%s (%d rows)\n\n", tableStyle.Render(k.String()), t.Len()))
		start := max(m.row-pageSize/2, 0)
		end := min(start+pageSize, t.Len())
		for i := start; i < end; i++ {
			row, _ := t.Row(i)
			line := row.Token.String() + "  " + m.rowSummary(row.Token, row.Columns)
			if i == m.row {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ move • pgup/pgdn page • enter details • esc back • q quit"))

	case stateDetail:
		b.WriteString(tokenStyle.Render(m.current.String()))
		b.WriteString("\n\n")
		for _, line := range m.detail {
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("esc back • : jump to token • q quit"))
	}

	if m.err != nil {
		b.WriteString("\n\n")
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}
	if m.jumping {
		b.WriteString("\n\n")
		b.WriteString(m.jump.View())
	}
	return b.String()
}

// rowSummary prints the described columns of a row on one line.
func (m *interactiveModel) rowSummary(tok token.Token, values []uint32) string {
	cols := m.image.Tables().Table(tok.Kind).Schema().Columns
	var parts []string
	for i, col := range cols {
		if i >= len(values) {
			break
		}
		if text := describeColumn(m.image, col, values[i]); text != "" {
			parts = append(parts, col.Name+"="+text)
		} else {
			parts = append(parts, col.Name+"="+strconv.FormatUint(uint64(values[i]), 10))
		}
	}
	return strings.Join(parts, " ")
}

func runInteractive(filename string, in *input) error {
	p := tea.NewProgram(newInteractiveModel(filename, in.image), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
