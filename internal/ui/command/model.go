package command

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tareas/internal/theme"
)

// Names of the palette commands.
const (
	CmdGroup    = "group"
	CmdAddGroup = "addgroup"
	CmdSearch   = "search"
	CmdSort     = "sort"
	CmdPriority = "priority"
	CmdTheme    = "theme"
	CmdExport   = "export"
	CmdReload   = "reload"
	CmdLogout   = "logout"
	CmdQuit     = "quit"
)

// argRequired lists commands that need an argument.
var argRequired = map[string]bool{
	CmdGroup:    true,
	CmdAddGroup: true,
	CmdSort:     true,
	CmdPriority: true,
	CmdExport:   true,
}

var aliases = map[string]string{
	"g": CmdGroup,
	"s": CmdSearch,
	"q": CmdQuit,
	"r": CmdReload,
}

// CommandMsg is emitted when the user executes a valid command.
type CommandMsg struct {
	Name string
	Arg  string
}

// ErrorMsg is emitted when the typed text is not a valid command.
type ErrorMsg struct{ Err error }

// Parse splits "name rest of line" into a command. The argument keeps
// inner spaces so group names and search text can contain them.
func Parse(line string) (CommandMsg, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return CommandMsg{}, fmt.Errorf("empty command")
	}

	name, arg, _ := strings.Cut(line, " ")
	name = strings.ToLower(name)
	if full, ok := aliases[name]; ok {
		name = full
	}
	arg = strings.TrimSpace(arg)

	switch name {
	case CmdGroup, CmdAddGroup, CmdSearch, CmdSort, CmdPriority,
		CmdTheme, CmdExport, CmdReload, CmdLogout, CmdQuit:
	default:
		return CommandMsg{}, fmt.Errorf("unknown command %q", name)
	}
	if argRequired[name] && arg == "" {
		return CommandMsg{}, fmt.Errorf("%s needs an argument", name)
	}
	return CommandMsg{Name: name, Arg: arg}, nil
}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "group Work · search milk · sort title · export tareas.pdf"
	ti.Prompt = ": "
	ti.Focus()
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			line := m.input.Value()
			m.input.Reset()
			if strings.TrimSpace(line) == "" {
				return m, nil
			}
			parsed, err := Parse(line)
			if err != nil {
				return m, func() tea.Msg { return ErrorMsg{Err: err} }
			}
			return m, func() tea.Msg { return parsed }
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	title := titleStyle.Render("Command Palette")
	input := m.input.View()

	content := lipgloss.JoinVertical(lipgloss.Left, title, input)

	return theme.DetailPanelStyle.
		Width(max(m.width-4, 0)).
		Render(content)
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}
