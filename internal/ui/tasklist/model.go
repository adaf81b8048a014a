package tasklist

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tareas/internal/keys"
	"github.com/nhle/tareas/internal/model"
	"github.com/nhle/tareas/internal/tasks"
	"github.com/nhle/tareas/internal/theme"
)

// SelectedTaskMsg is sent when a user opens a task's details.
type SelectedTaskMsg struct{ TaskID int }

// NewTaskMsg asks the app to open the create form.
type NewTaskMsg struct{}

// EditTaskMsg asks the app to open the edit form for a task.
type EditTaskMsg struct{ TaskID int }

// FinalizeTaskMsg asks the app to confirm and finish a task.
type FinalizeTaskMsg struct{ TaskID int }

// FavoriteTaskMsg asks the app to flip a task's favorite flag.
type FavoriteTaskMsg struct{ TaskID int }

// Model is the main task list view component. Filter keys act on the
// view-model directly; actions that need the network are sent to the app
// as messages.
type Model struct {
	list        list.Model
	vm          *tasks.ViewModel
	keys        *keys.KeyMap
	searchMode  bool
	searchInput textinput.Model
	now         time.Time
	width       int
	height      int
}

// New creates a new task list model.
func New(vm *tasks.ViewModel, k *keys.KeyMap, width, height int) Model {
	now := time.Now()
	l := list.New([]list.Item{}, ItemDelegate{now: now}, width, height-2)
	l.Title = "Tasks"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "search titles..."
	si.Prompt = "/ "
	si.Width = width - 4

	m := Model{
		list:        l,
		vm:          vm,
		keys:        k,
		searchInput: si,
		now:         now,
		width:       width,
		height:      height,
	}
	m.Refresh()
	return m
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Refresh rebuilds the rows from the view-model's current projection,
// keeping the cursor on the same task when it is still shown.
func (m *Model) Refresh() {
	prevID := -1
	if it, ok := m.list.SelectedItem().(TaskItem); ok {
		prevID = it.Task.ID
	}

	visible := m.vm.ForSelectedView()
	items := make([]list.Item, len(visible))
	sel := 0
	for i, t := range visible {
		items[i] = TaskItem{Task: t}
		if t.ID == prevID {
			sel = i
		}
	}
	m.list.SetItems(items)
	m.list.Select(sel)

	group := m.vm.SelectedGroup()
	if group == model.DefaultGroup {
		m.list.Title = "Tasks"
	} else {
		m.list.Title = "Tasks · " + group
	}
}

// SetNow advances the reference time for the relative creation column.
func (m *Model) SetNow(now time.Time) {
	m.now = now
	m.list.SetDelegate(ItemDelegate{now: now})
}

// Searching reports whether the search input has focus.
func (m Model) Searching() bool { return m.searchMode }

// SelectedTask returns the task under the cursor.
func (m Model) SelectedTask() (model.Task, bool) {
	it, ok := m.list.SelectedItem().(TaskItem)
	if !ok {
		return model.Task{}, false
	}
	return it.Task, true
}

// Update handles messages for the task list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleSearchKeys filters as the user types; enter keeps the text, esc
// clears it.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.searchInput.Blur()
		return m, nil

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.searchInput.Blur()
		m.vm.SetText("")
		m.Refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.vm.SetText(m.searchInput.Value())
	m.Refresh()
	return m, cmd
}

// handleNormalKeys processes key input in normal (non-search) mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.SetValue(m.vm.Filters().Text)
		cmd := m.searchInput.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Priority):
		m.vm.CyclePriority()
		m.Refresh()
		return m, nil

	case key.Matches(msg, m.keys.FavoritesOnly):
		m.vm.ToggleFavoritesOnly()
		m.Refresh()
		return m, nil

	case key.Matches(msg, m.keys.CycleSort):
		m.vm.CycleSort()
		m.Refresh()
		return m, nil

	case key.Matches(msg, m.keys.Direction):
		m.vm.ToggleDirection()
		m.Refresh()
		return m, nil

	case key.Matches(msg, m.keys.New):
		return m, emit(NewTaskMsg{})
	}

	if t, ok := m.SelectedTask(); ok {
		switch {
		case key.Matches(msg, m.keys.Select):
			return m, emit(SelectedTaskMsg{TaskID: t.ID})
		case key.Matches(msg, m.keys.Edit):
			return m, emit(EditTaskMsg{TaskID: t.ID})
		case key.Matches(msg, m.keys.Finalize):
			if t.IsFinished() {
				return m, nil
			}
			return m, emit(FinalizeTaskMsg{TaskID: t.ID})
		case key.Matches(msg, m.keys.Favorite):
			return m, emit(FavoriteTaskMsg{TaskID: t.ID})
		}
	}

	// Delegate to the list for navigation keys (up/down/pgup/pgdn)
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// View renders the task list view.
func (m Model) View() string {
	body := m.list.View()
	if len(m.list.Items()) == 0 {
		body = m.renderEmptyState()
	}

	if m.searchMode || m.vm.Filters().Text != "" {
		searchBar := lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View())
		return lipgloss.JoinVertical(lipgloss.Left, searchBar, body)
	}
	return body
}

// renderEmptyState shows guidance text when no tasks are shown.
func (m Model) renderEmptyState() string {
	f := m.vm.Filters()
	hasFilters := f.Text != "" ||
		f.FavoritesOnly ||
		(f.Priority != model.PriorityAll && f.Priority != "") ||
		m.vm.SelectedGroup() != model.DefaultGroup

	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height - 2).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if hasFilters && m.vm.Len() > 0 {
		return style.Render("No matching tasks.\nTry adjusting your filters.")
	}
	return style.Render("No tasks yet.\n\nPress n to create one.")
}

// Summary describes the active filters for the header bar.
func Summary(f tasks.Filters, group string) string {
	parts := []string{"sort: " + f.Sort.Label()}
	if f.Sort == tasks.SortTitle {
		if f.Ascending {
			parts[0] += " ↑"
		} else {
			parts[0] += " ↓"
		}
	}
	if f.Priority != model.PriorityAll && f.Priority != "" {
		parts = append(parts, "priority: "+f.Priority.Label())
	}
	if f.FavoritesOnly {
		parts = append(parts, "★ only")
	}
	if f.Text != "" {
		parts = append(parts, "search: "+f.Text)
	}
	if group != model.DefaultGroup && group != "" {
		parts = append(parts, "group: "+group)
	}
	return strings.Join(parts, " · ")
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.searchInput.Width = width - 4
}
