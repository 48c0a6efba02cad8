package main

import (
	"bytes"
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/hostcall/guest"
)

type palette struct {
	header   lipgloss.Style
	export   lipgloss.Style
	valType  lipgloss.Style
	cursor   lipgloss.Style
	output   lipgloss.Style
	printed  lipgloss.Style
	failure  lipgloss.Style
	subtitle lipgloss.Style
}

var colors = palette{
	header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA")).Background(lipgloss.Color("#7D56F4")).Padding(0, 1),
	export:   lipgloss.NewStyle().Foreground(lipgloss.Color("#98FB98")),
	valType:  lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB")),
	cursor:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA")).Background(lipgloss.Color("#7D56F4")),
	output:   lipgloss.NewStyle().Foreground(lipgloss.Color("#90EE90")),
	printed:  lipgloss.NewStyle().Foreground(lipgloss.Color("#F0E68C")),
	failure:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
	subtitle: lipgloss.NewStyle().Faint(true),
}

type keyMap struct {
	up    key.Binding
	down  key.Binding
	call  key.Binding
	next  key.Binding
	back  key.Binding
	quit  key.Binding
	abort key.Binding
}

var keys = keyMap{
	up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	call:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "call")),
	next:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
	back:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	quit:  key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	abort: key.NewBinding(key.WithKeys("ctrl+c")),
}

type screen int

const (
	screenPick screen = iota
	screenArgs
	screenResult
)

type funcInfo struct {
	name    string
	params  []api.ValueType
	results []api.ValueType
}

type loadedMsg struct {
	err     error
	session *session
	funcs   []funcInfo
}

type callResultMsg struct {
	err     error
	result  string
	printed string
}

type interactiveModel struct {
	loadErr  error
	session  *session
	debug    *bytes.Buffer
	cfg      sessionConfig
	filename string
	funcs    []funcInfo
	args     []textinput.Model
	outcome  callResultMsg
	help     help.Model
	cursor   int
	focus    int
	screen   screen
}

func newInteractiveModel(cfg sessionConfig, filename string) *interactiveModel {
	return &interactiveModel{
		cfg:      cfg,
		filename: filename,
		debug:    &bytes.Buffer{},
		help:     help.New(),
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.load
}

// load links the guest and lists its exported functions by name.
func (m *interactiveModel) load() tea.Msg {
	s, err := openSession(context.Background(), m.cfg, m.filename, m.debug)
	if err != nil {
		return loadedMsg{err: err}
	}

	var funcs []funcInfo
	for _, e := range s.inst.Exports() {
		if e.Kind != guest.ExternFunc {
			continue
		}
		if params, results, ok := s.funcTypes(e.Name); ok {
			funcs = append(funcs, funcInfo{name: e.Name, params: params, results: results})
		}
	}
	sort.Slice(funcs, func(i, j int) bool { return funcs[i].name < funcs[j].name })
	return loadedMsg{session: s, funcs: funcs}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.err != nil {
			m.loadErr = msg.err
			return m, tea.Quit
		}
		m.session = msg.session
		m.funcs = msg.funcs
		return m, nil

	case callResultMsg:
		m.outcome = msg
		m.screen = screenResult
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.abort) || (m.screen != screenArgs && key.Matches(msg, keys.quit)) {
			m.close()
			return m, tea.Quit
		}
		switch m.screen {
		case screenPick:
			return m.updatePick(msg)
		case screenArgs:
			return m.updateArgs(msg)
		case screenResult:
			if key.Matches(msg, keys.call, keys.back) {
				m.screen = screenPick
				m.outcome = callResultMsg{}
			}
		}
	}
	return m, nil
}

func (m *interactiveModel) updatePick(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.down):
		if m.cursor < len(m.funcs)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.call):
		if len(m.funcs) == 0 {
			return m, nil
		}
		m.args = argInputs(m.funcs[m.cursor].params)
		m.focus = 0
		if len(m.args) == 0 {
			return m, m.callSelected
		}
		m.screen = screenArgs
	}
	return m, nil
}

func (m *interactiveModel) updateArgs(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.call):
		return m, m.callSelected
	case key.Matches(msg, keys.back):
		m.screen = screenPick
		m.args = nil
		return m, nil
	case key.Matches(msg, keys.next):
		m.args[m.focus].Blur()
		m.focus = (m.focus + 1) % len(m.args)
		return m, m.args[m.focus].Focus()
	}
	var cmd tea.Cmd
	m.args[m.focus], cmd = m.args[m.focus].Update(msg)
	return m, cmd
}

func argInputs(params []api.ValueType) []textinput.Model {
	inputs := make([]textinput.Model, len(params))
	for i, p := range params {
		in := textinput.New()
		in.Prompt = "arg" + strconv.Itoa(i) + ": "
		in.Placeholder = api.ValueTypeName(p)
		in.Width = 40
		if i == 0 {
			in.Focus()
		}
		inputs[i] = in
	}
	return inputs
}

// callSelected invokes the selected export with the entered arguments and
// captures what the guest printed during the call.
func (m *interactiveModel) callSelected() tea.Msg {
	f := m.funcs[m.cursor]
	values := make([]string, len(m.args))
	for i := range m.args {
		values[i] = m.args[i].Value()
	}
	words, err := parseArgs(f.params, values)
	if err != nil {
		return callResultMsg{err: err}
	}

	m.debug.Reset()
	ret, err := m.session.inst.Call(context.Background(), f.name, words...)
	msg := callResultMsg{err: err, printed: m.debug.String()}
	if err == nil {
		msg.result = formatResults(f.results, ret)
	}
	return msg
}

func (m *interactiveModel) close() {
	if m.session != nil {
		m.session.Close(context.Background())
		m.session = nil
	}
}

func (m *interactiveModel) View() string {
	if m.loadErr != nil {
		return colors.failure.Render("Error: "+m.loadErr.Error()) + "\n"
	}
	if m.session == nil {
		return "Linking " + m.filename + "...\n"
	}

	var b strings.Builder
	b.WriteString(colors.header.Render("hostcall") + " " + colors.subtitle.Render(m.filename) + "\n\n")

	switch m.screen {
	case screenPick:
		if len(m.funcs) == 0 {
			b.WriteString("No exported functions.\n\n")
			b.WriteString(m.help.ShortHelpView([]key.Binding{keys.quit}))
			break
		}
		for i, f := range m.funcs {
			line := "  " + signatureLine(f)
			if i == m.cursor {
				line = colors.cursor.Render("> " + signatureLine(f))
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("\n" + m.help.ShortHelpView([]key.Binding{keys.up, keys.down, keys.call, keys.quit}))

	case screenArgs:
		f := m.funcs[m.cursor]
		b.WriteString("Arguments for " + colors.export.Render(f.name) + "\n\n")
		for i := range m.args {
			b.WriteString(m.args[i].View() + " " + colors.valType.Render(api.ValueTypeName(f.params[i])) + "\n")
		}
		b.WriteString("\n" + m.help.ShortHelpView([]key.Binding{keys.next, keys.call, keys.back}))

	case screenResult:
		b.WriteString(colors.export.Render(m.funcs[m.cursor].name) + "\n\n")
		if m.outcome.printed != "" {
			b.WriteString(colors.printed.Render(strings.TrimRight(m.outcome.printed, "\n")) + "\n\n")
		}
		if m.outcome.err != nil {
			b.WriteString(colors.failure.Render("Error: " + m.outcome.err.Error()))
		} else {
			b.WriteString(colors.output.Render(m.outcome.result))
		}
		b.WriteString("\n\n" + m.help.ShortHelpView([]key.Binding{keys.back, keys.quit}))
	}
	return b.String()
}

func signatureLine(f funcInfo) string {
	render := func(types []api.ValueType) string {
		names := make([]string, len(types))
		for i, t := range types {
			names[i] = colors.valType.Render(api.ValueTypeName(t))
		}
		return strings.Join(names, ", ")
	}
	line := colors.export.Render(f.name) + "(" + render(f.params) + ")"
	if len(f.results) > 0 {
		line += " -> " + render(f.results)
	}
	return line
}

// interactiveErr reports why an interactive session ended unsuccessfully.
func interactiveErr(final tea.Model, err error) error {
	if err != nil {
		return err
	}
	if m, ok := final.(*interactiveModel); ok && m.loadErr != nil {
		return m.loadErr
	}
	return nil
}

func runInteractive(cfg sessionConfig, filename string) error {
	final, err := tea.NewProgram(newInteractiveModel(cfg, filename), tea.WithAltScreen()).Run()
	return interactiveErr(final, err)
}
