package taskform

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tareas/internal/model"
	"github.com/nhle/tareas/internal/tasks"
	"github.com/nhle/tareas/internal/theme"
)

// TaskCreateMsg is dispatched when the create form is submitted.
type TaskCreateMsg struct {
	Fields tasks.NewFields
}

// TaskEditMsg is dispatched when the edit form is submitted. Buffer holds
// the edited values for the task being edited.
type TaskEditMsg struct {
	Buffer tasks.EditBuffer
}

// FormCancelMsg is dispatched when the user cancels the form.
type FormCancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title       string
	description string
	priority    model.Priority
	group       string
}

// Model is the Bubble Tea model for the task create/edit form.
type Model struct {
	form     *huh.Form
	fb       *formBindings
	editMode bool
	editID   int
	groups   []string
	errMsg   string
	width    int
	height   int
}

// New creates a new task form model.
func New(width, height int) Model {
	return Model{
		fb: &formBindings{
			priority: model.PriorityMedium,
			group:    model.DefaultGroup,
		},
		width:  width,
		height: height,
	}
}

// SetGroups sets the groups offered by the group selector, not counting
// the default group.
func (m *Model) SetGroups(groups []string) {
	m.groups = groups
}

// SetError shows a message above the form, e.g. a rejected submit.
func (m *Model) SetError(msg string) { m.errMsg = msg }

// Editing reports whether the form edits an existing task.
func (m Model) Editing() bool { return m.editMode }

// StartCreate initializes the form for a new task. The group defaults to
// the one selected in the list.
func (m *Model) StartCreate(selectedGroup string) tea.Cmd {
	m.editMode = false
	m.editID = 0
	m.errMsg = ""
	m.fb.title = ""
	m.fb.description = ""
	m.fb.priority = model.PriorityMedium
	m.fb.group = model.DisplayGroup(selectedGroup)
	m.form = m.buildForm()
	return m.form.Init()
}

// StartEdit initializes the form from an open edit buffer.
func (m *Model) StartEdit(buf tasks.EditBuffer) tea.Cmd {
	m.editMode = true
	m.editID = buf.ID
	m.errMsg = ""
	m.fb.title = buf.Title
	m.fb.description = buf.Description
	m.fb.priority = buf.Priority
	m.fb.group = buf.Group
	m.form = m.buildForm()
	return m.form.Init()
}

// Resume reopens the create form with the user's input and an error, e.g.
// after a validation failure.
func (m *Model) Resume(fields tasks.NewFields, errMsg string) tea.Cmd {
	m.editMode = false
	m.editID = 0
	m.errMsg = errMsg
	m.fb.title = fields.Title
	m.fb.description = fields.Description
	m.fb.priority = fields.Priority
	m.fb.group = model.DisplayGroup(fields.Group)
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the task form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return FormCancelMsg{} }
	}

	return m, cmd
}

// View renders the task form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New Task"
	if m.editMode {
		titleText = fmt.Sprintf("Edit Task #%d", m.editID)
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(titleText) + "\n"
	if m.errMsg != "" {
		content += theme.ErrorStyle.Render(m.errMsg) + "\n\n"
	}
	content += m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Placeholder("What needs to be done?").
				Value(&m.fb.title).
				Validate(validateRequired("Title")),
			huh.NewText().
				Title("Description").
				Placeholder("Optional details (markdown)...").
				Value(&m.fb.description),
			huh.NewSelect[model.Priority]().
				Title("Priority").
				Options(priorityOptions()...).
				Value(&m.fb.priority),
			m.groupField(),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func priorityOptions() []huh.Option[model.Priority] {
	opts := make([]huh.Option[model.Priority], len(model.Priorities))
	for i, p := range model.Priorities {
		opts[i] = huh.NewOption(p.Label(), p)
	}
	return opts
}

func (m *Model) groupField() huh.Field {
	opts := []huh.Option[string]{
		huh.NewOption(model.DefaultGroup, model.DefaultGroup),
	}
	known := map[string]bool{model.DefaultGroup: true}
	for _, g := range m.groups {
		opts = append(opts, huh.NewOption(g, g))
		known[g] = true
	}
	// Keep the current value selectable even if the group list changed.
	if !known[m.fb.group] {
		opts = append(opts, huh.NewOption(m.fb.group, m.fb.group))
	}
	return huh.NewSelect[string]().
		Title("Group").
		Options(opts...).
		Value(&m.fb.group)
}

func (m Model) handleSubmit() tea.Cmd {
	if m.editMode {
		buf := tasks.EditBuffer{
			ID:          m.editID,
			Title:       m.fb.title,
			Priority:    m.fb.priority,
			Description: m.fb.description,
			Group:       m.fb.group,
		}
		return func() tea.Msg { return TaskEditMsg{Buffer: buf} }
	}

	fields := tasks.NewFields{
		Title:       m.fb.title,
		Priority:    m.fb.priority,
		Description: m.fb.description,
		Group:       m.fb.group,
	}
	return func() tea.Msg { return TaskCreateMsg{Fields: fields} }
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

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}
