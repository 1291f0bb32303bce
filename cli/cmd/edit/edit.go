// Package edit implements the interactive document editor: a Bubble Tea
// browser over a document's keys with fuzzy filtering and in-place scalar
// editing. The package knows nothing about documents; the command layer
// supplies entries and callbacks through a [Session].
package edit

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"
)

// Entry is one key of the document being edited.
type Entry struct {
	Key   string // full key path, block segments joined with "."
	Value string // display rendering of the current value
	Kind  string // value kind name ("integer", "list", "block", ...)
}

// Session supplies the editor's view of the document.
type Session struct {
	// Entries returns the current key listing. Called again after every
	// successful Apply so the view reflects the edit.
	Entries func() []Entry

	// Apply replaces the value of key with the raw user input. Returning
	// an error surfaces it in the status line and leaves the document
	// untouched.
	Apply func(key, raw string) error

	// Render returns the document text written out when the user quits.
	Render func() string
}

// Run starts the editor and, once the user quits, writes the final
// document text to out.
func Run(ctx context.Context, s Session, out io.Writer) error {
	m := newModel(s)

	p := tea.NewProgram(m, tea.WithContext(ctx))

	final, err := p.Run()
	if err != nil {
		return err
	}

	if fm, ok := final.(model); ok && fm.aborted {
		return nil
	}

	_, err = io.WriteString(out, s.Render())

	return err
}

// editMode is the editor's input focus.
type editMode int

const (
	modeBrowse editMode = iota
	modeFilter
	modeEdit
)

// Styles.
var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	keyStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	kindStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	valueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("6"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

const visibleRows = 15

// model is the Bubble Tea model for the editor.
type model struct {
	session Session

	entries  []Entry // all entries, source order
	visible  []int   // indices into entries after filtering
	cursor   int     // index into visible
	top      int     // first visible row (scrolling)
	filter   textinput.Model
	input    textinput.Model
	mode     editMode
	status   string
	failed   bool // status is an error
	aborted  bool // quit without writing output
	quitting bool
}

func newModel(s Session) model {
	filter := textinput.New()
	filter.Prompt = "/"
	filter.CharLimit = 128

	input := textinput.New()
	input.Prompt = "= "
	input.CharLimit = 1024

	m := model{
		session: s,
		entries: s.Entries(),
		filter:  filter,
		input:   input,
	}

	m.refilter()

	return m
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch m.mode {
	case modeFilter:
		return m.updateFilter(key)
	case modeEdit:
		return m.updateEdit(key)
	default:
		return m.updateBrowse(key)
	}
}

func (m model) updateBrowse(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "ctrl+c":
		m.aborted = true
		m.quitting = true

		return m, tea.Quit

	case "q", "esc":
		m.quitting = true

		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.visible)-1 {
			m.cursor++
		}

	case "/":
		m.mode = modeFilter
		m.filter.Focus()

		return m, textinput.Blink

	case "enter":
		entry, ok := m.selected()
		if !ok {
			break
		}

		switch entry.Kind {
		case "block":
			m.fail("blocks cannot be reassigned; edit their keys instead")
		case "null":
			m.fail("key holds no value")
		default:
			m.mode = modeEdit
			m.input.SetValue(entry.Value)
			m.input.CursorEnd()
			m.input.Focus()

			return m, textinput.Blink
		}
	}

	m.scroll()

	return m, nil
}

func (m model) updateFilter(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "ctrl+c":
		m.aborted = true
		m.quitting = true

		return m, tea.Quit

	case "esc":
		m.mode = modeBrowse
		m.filter.Blur()
		m.filter.SetValue("")
		m.refilter()

		return m, nil

	case "enter":
		m.mode = modeBrowse
		m.filter.Blur()

		return m, nil
	}

	var cmd tea.Cmd

	m.filter, cmd = m.filter.Update(key)
	m.refilter()
	m.scroll()

	return m, cmd
}

func (m model) updateEdit(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "ctrl+c":
		m.aborted = true
		m.quitting = true

		return m, tea.Quit

	case "esc":
		m.mode = modeBrowse
		m.input.Blur()

		return m, nil

	case "enter":
		entry, ok := m.selected()
		if !ok {
			m.mode = modeBrowse

			return m, nil
		}

		if err := m.session.Apply(entry.Key, m.input.Value()); err != nil {
			m.fail(err.Error())
		} else {
			m.entries = m.session.Entries()
			m.refilter()
			m.status = entry.Key + " updated"
			m.failed = false
		}

		m.mode = modeBrowse
		m.input.Blur()

		return m, nil
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(key)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("confit edit"))
	b.WriteString(hintStyle.Render(
		fmt.Sprintf("  %d/%d keys", len(m.visible), len(m.entries)),
	))
	b.WriteString("\n\n")

	end := min(m.top+visibleRows, len(m.visible))

	for row := m.top; row < end; row++ {
		entry := m.entries[m.visible[row]]

		line := fmt.Sprintf("%-32s %-8s %s",
			keyStyle.Render(entry.Key),
			kindStyle.Render(entry.Kind),
			valueStyle.Render(clip(entry.Value, 40)),
		)

		if row == m.cursor {
			line = selectedStyle.Render("> ") + line
		} else {
			line = "  " + line
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	if len(m.visible) == 0 {
		b.WriteString(hintStyle.Render("  no matching keys"))
		b.WriteString("\n")
	}

	b.WriteString("\n")

	switch m.mode {
	case modeFilter:
		b.WriteString(m.filter.View())

	case modeEdit:
		if entry, ok := m.selected(); ok {
			b.WriteString(keyStyle.Render(entry.Key + " "))
		}

		b.WriteString(m.input.View())

	default:
		if m.status != "" {
			style := statusStyle
			if m.failed {
				style = errorStyle
			}

			b.WriteString(style.Render(m.status))
		} else {
			b.WriteString(hintStyle.Render(
				"enter: edit  /: filter  q: quit and print  ctrl+c: abort",
			))
		}
	}

	b.WriteString("\n")

	return b.String()
}

// selected returns the entry under the cursor.
func (m *model) selected() (Entry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return Entry{}, false
	}

	return m.entries[m.visible[m.cursor]], true
}

// fail records an error status.
func (m *model) fail(msg string) {
	m.status = msg
	m.failed = true
}

// refilter recomputes the visible rows from the filter text, keeping the
// cursor on a valid row.
func (m *model) refilter() {
	pattern := strings.TrimSpace(m.filter.Value())

	m.visible = m.visible[:0]

	if pattern == "" {
		for i := range m.entries {
			m.visible = append(m.visible, i)
		}
	} else {
		keys := make([]string, len(m.entries))
		for i, e := range m.entries {
			keys[i] = e.Key
		}

		for _, match := range fuzzy.Find(pattern, keys) {
			m.visible = append(m.visible, match.Index)
		}
	}

	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}

	if m.cursor < 0 {
		m.cursor = 0
	}

	m.scroll()
}

// scroll keeps the cursor inside the visible window.
func (m *model) scroll() {
	if m.cursor < m.top {
		m.top = m.cursor
	}

	if m.cursor >= m.top+visibleRows {
		m.top = m.cursor - visibleRows + 1
	}

	if m.top < 0 {
		m.top = 0
	}
}

// clip truncates s to at most n runes, marking the cut with an ellipsis.
func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}

	return string(runes[:n-1]) + "…"
}
