package detail

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tareas/internal/keys"
	"github.com/nhle/tareas/internal/model"
	"github.com/nhle/tareas/internal/session"
	"github.com/nhle/tareas/internal/tasks"
	"github.com/nhle/tareas/internal/theme"
)

// BackMsg signals the parent to navigate back to the list view.
type BackMsg struct{}

// Actions a detail view can request.
const (
	ActionEdit     = "edit"
	ActionFinalize = "finalize"
	ActionFavorite = "favorite"
)

// ActionMsg signals the parent to execute an action on the current task.
type ActionMsg struct {
	Action string
	TaskID int
}

// Model is the task detail view component.
type Model struct {
	task     *model.Task
	viewport viewport.Model
	keys     *keys.KeyMap
	mode     session.Mode
	now      time.Time
	width    int
	height   int
}

// New creates a new detail view model.
func New(keys *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		keys:     keys,
		mode:     session.ModeLight,
		now:      time.Now(),
		width:    width,
		height:   height,
	}
}

// Init returns the initial command for the detail view.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg { return BackMsg{} }

		case key.Matches(msg, m.keys.Edit):
			return m, m.action(ActionEdit)

		case key.Matches(msg, m.keys.Finalize):
			if m.task != nil && m.task.IsFinished() {
				return m, nil
			}
			return m, m.action(ActionFinalize)

		case key.Matches(msg, m.keys.Favorite):
			return m, m.action(ActionFavorite)
		}
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) action(name string) tea.Cmd {
	if m.task == nil {
		return nil
	}
	id := m.task.ID
	return func() tea.Msg { return ActionMsg{Action: name, TaskID: id} }
}

// View renders the detail view.
func (m Model) View() string {
	if m.task == nil {
		emptyStyle := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray)
		return emptyStyle.Render("No task selected")
	}

	return m.viewport.View()
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	if m.task == nil {
		return ""
	}

	task := m.task
	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	title := task.Title
	if task.Favorite {
		title = theme.FavoriteStyle.Render("★ ") + titleStyle.Render(title)
	} else {
		title = titleStyle.Render(title)
	}
	sections = append(sections, title)

	statusBadge := theme.StatusStyle(task.Status).Render(string(task.Status))
	priBadge := theme.PriorityStyle(task.Priority).Render(task.Priority.Label())
	groupBadge := theme.GroupStyle.Render(task.GroupLabel())

	badgeLine := lipgloss.JoinHorizontal(
		lipgloss.Top, statusBadge, "  ", priBadge, "  ", groupBadge,
	)
	sections = append(sections, badgeLine, "")

	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)

	sections = append(sections, fmt.Sprintf(
		"%s       %s",
		metaStyle.Render("ID:"),
		valStyle.Render(fmt.Sprint(task.ID)),
	))
	if task.CreationDate != "" {
		sections = append(sections, fmt.Sprintf(
			"%s  %s (%s)",
			metaStyle.Render("Created:"),
			valStyle.Render(task.CreationDate),
			tasks.RelativeTime(task.CreatedAt(), m.now),
		))
	}

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", max(min(m.width-4, 80), 0)))
	sections = append(sections, "", separator, "")

	descHeaderStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite)
	sections = append(sections, descHeaderStyle.Render("Description"))

	body := renderMarkdown(task.Description, theme.GlamourStyle(m.mode), m.width-4)
	if body == "" {
		body = lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render("No description")
	}
	sections = append(sections, body)

	sections = append(sections, "", metaStyle.Render("e edit | x finish | * favorite | esc back"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetTask updates the task being displayed and re-renders the content.
func (m *Model) SetTask(task model.Task) {
	m.task = &task
	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoTop()
}

// TaskID returns the id of the shown task, or 0.
func (m Model) TaskID() int {
	if m.task == nil {
		return 0
	}
	return m.task.ID
}

// SetMode switches the markdown style to match the UI theme.
func (m *Model) SetMode(mode session.Mode) {
	m.mode = mode
	m.viewport.SetContent(m.renderContent())
}

// SetNow advances the reference time for the relative creation date.
func (m *Model) SetNow(now time.Time) {
	m.now = now
	m.viewport.SetContent(m.renderContent())
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	m.viewport.SetContent(m.renderContent())
}
