package groups

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tareas/internal/keys"
	"github.com/nhle/tareas/internal/model"
	"github.com/nhle/tareas/internal/tasks"
	"github.com/nhle/tareas/internal/theme"
)

// CloseMsg signals the parent to close the groups view.
type CloseMsg struct{}

// SelectedMsg signals that the user switched to a group.
type SelectedMsg struct{ Name string }

type groupMode int

const (
	modeList groupMode = iota
	modeForm
)

type formBindings struct {
	name string
}

// Model lists the default group and every known group. Selecting and
// adding groups are local to the view-model; nothing is sent to the
// server until a task is saved into a new group.
type Model struct {
	mode        groupMode
	vm          *tasks.ViewModel
	keys        *keys.KeyMap
	names       []string
	selectedIdx int
	form        *huh.Form
	fb          *formBindings
	statusMsg   string
	width       int
	height      int
}

// New creates a new groups model.
func New(vm *tasks.ViewModel, k *keys.KeyMap, width, height int) Model {
	m := Model{
		mode:  modeList,
		vm:    vm,
		keys:  k,
		fb:    &formBindings{},
		width: width, height: height,
	}
	m.Reload()
	return m
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Reload re-reads the groups and puts the cursor on the selected one.
func (m *Model) Reload() {
	m.mode = modeList
	m.statusMsg = ""
	m.names = append([]string{model.DefaultGroup}, m.vm.Groups()...)
	m.selectedIdx = 0
	for i, n := range m.names {
		if n == m.vm.SelectedGroup() {
			m.selectedIdx = i
		}
	}
}

// Adding reports whether the new-group input has focus.
func (m Model) Adding() bool { return m.mode == modeForm }

// Update handles messages for the groups screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && m.mode == modeList {
		return m.handleListKey(msg)
	}
	if m.mode == modeForm {
		return m.updateForm(msg)
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.Down):
		m.selectedIdx = (m.selectedIdx + 1) % len(m.names)
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.selectedIdx--
		if m.selectedIdx < 0 {
			m.selectedIdx = len(m.names) - 1
		}
		return m, nil

	case key.Matches(msg, m.keys.Select):
		name := m.names[m.selectedIdx]
		m.vm.SelectGroup(name)
		return m, func() tea.Msg { return SelectedMsg{Name: name} }

	case key.Matches(msg, m.keys.New):
		m.fb.name = ""
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()
	}
	return m, nil
}

func (m Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("New group").
				Placeholder("Group name").
				Value(&m.fb.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
		),
	).WithWidth(m.formWidth())
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		m.mode = modeList
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	switch m.form.State {
	case huh.StateCompleted:
		name := strings.TrimSpace(m.fb.name)
		added := m.vm.AddGroup(name)
		m.Reload()
		if added {
			m.statusMsg = fmt.Sprintf("Group %q added", name)
			m.selectedIdx = len(m.names) - 1
		} else {
			m.statusMsg = fmt.Sprintf("Group %q already exists", name)
		}
		return m, nil
	case huh.StateAborted:
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

// View renders the groups screen.
func (m Model) View() string {
	if m.mode == modeForm && m.form != nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(m.form.View())
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).MarginBottom(1)
	b.WriteString(titleStyle.Render("Groups"))
	b.WriteString("\n\n")

	for i, name := range m.names {
		count := len(m.vm.InGroup(name))
		if name == model.DefaultGroup {
			count = len(m.vm.Visible())
		}
		label := fmt.Sprintf("%s (%d)", name, count)
		if name == m.vm.SelectedGroup() {
			label += " ●"
		}

		if i == m.selectedIdx {
			b.WriteString(theme.SelectedItemStyle.Render(label))
		} else {
			b.WriteString(theme.ListItemStyle.Render(label))
		}
		b.WriteString("\n")
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorYellow).Italic(true).Render(m.statusMsg))
	}

	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorGray).Render(
		"enter show | n new group | esc back",
	))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}
