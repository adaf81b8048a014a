// Package app wires the screens of the terminal UI together and routes
// messages between them and the task view-model.
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"

	"github.com/nhle/tareas/internal/api"
	authflow "github.com/nhle/tareas/internal/auth"
	"github.com/nhle/tareas/internal/keys"
	"github.com/nhle/tareas/internal/session"
	"github.com/nhle/tareas/internal/tasks"
	"github.com/nhle/tareas/internal/theme"
	"github.com/nhle/tareas/internal/ui"
	authview "github.com/nhle/tareas/internal/ui/auth"
	"github.com/nhle/tareas/internal/ui/command"
	"github.com/nhle/tareas/internal/ui/detail"
	"github.com/nhle/tareas/internal/ui/groups"
	helpview "github.com/nhle/tareas/internal/ui/help"
	"github.com/nhle/tareas/internal/ui/taskform"
	"github.com/nhle/tareas/internal/ui/tasklist"
)

// Gateway is everything the UI sends to the task server.
type Gateway interface {
	tasks.Gateway
	authflow.Gateway
}

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewAuth ViewState = iota
	ViewList
	ViewDetail
	ViewForm
	ViewGroups
	ViewHelp
	ViewCommand
	ViewConfirm
)

// Model is the root Bubble Tea model that manages view routing,
// layout, and the session of the logged-in user.
type Model struct {
	ctx  context.Context
	now  func() time.Time
	tick time.Duration

	sess *session.Store
	auth *authflow.Service
	vm   *tasks.ViewModel
	mode session.Mode

	userID   int
	userName string

	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap

	authView    authview.Model
	taskList    tasklist.Model
	detail      detail.Model
	form        taskform.Model
	groupsView  groups.Model
	helpView    helpview.Model
	commandView command.Model

	confirm       *huh.Form
	confirmID     int
	confirmAnswer *bool

	status    string
	statusErr bool
	ready     bool
}

// Option customizes a Model.
type Option func(*Model)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.now = now }
}

// WithTickInterval sets how often relative timestamps are refreshed.
func WithTickInterval(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.tick = d
		}
	}
}

// WithLanguage sets the collation used for title sorting.
func WithLanguage(tag language.Tag) Option {
	return func(m *Model) { m.vm.SetLanguage(tag) }
}

// New creates the root model. The theme stored in the session is applied
// immediately so the first frame already uses it.
func New(ctx context.Context, gw Gateway, sess *session.Store, opts ...Option) Model {
	k := keys.DefaultKeyMap()
	vm := tasks.New(gw, sess)

	m := Model{
		ctx:         ctx,
		now:         time.Now,
		tick:        time.Minute,
		sess:        sess,
		auth:        authflow.New(gw, sess),
		vm:          vm,
		mode:        sess.Theme(ctx),
		keys:        k,
		authView:    authview.New(80, 24),
		taskList:    tasklist.New(vm, k, 80, 24),
		detail:      detail.New(k, 80, 24),
		form:        taskform.New(80, 24),
		groupsView:  groups.New(vm, k, 80, 24),
		helpView:    helpview.New(k, 80, 24),
		commandView: command.New(80, 24),
	}
	for _, opt := range opts {
		opt(&m)
	}

	theme.Apply(m.mode)
	m.detail.SetMode(m.mode)

	if id, ok := sess.ActiveUserID(ctx); ok {
		m.userID = id
		m.userName = sess.UserName(ctx)
		m.currentView = ViewList
	} else {
		m.currentView = ViewAuth
	}
	return m
}

// Init shows the login screen, or loads the remembered user's tasks.
func (m Model) Init() tea.Cmd {
	if m.currentView == ViewAuth {
		return tea.Batch(m.authView.Init(), tick(m.tick))
	}
	return tea.Batch(m.taskList.Init(), m.loadTasks(m.userID), tick(m.tick))
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.authView.SetSize(w, h)
		m.taskList.SetSize(w, h)
		m.detail.SetSize(w, h)
		m.form.SetSize(w, h)
		m.groupsView.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case tickMsg:
		now := time.Time(msg)
		m.taskList.SetNow(now)
		m.detail.SetNow(now)
		return m, tick(m.tick)

	// Auth

	case authview.LoginSubmitMsg:
		return m, m.login(msg.Email, msg.Password)

	case authview.RegisterSubmitMsg:
		return m, m.register(msg.Registration)

	case authview.QuitMsg:
		return m, tea.Quit

	case loggedInMsg:
		if msg.err != nil {
			cmd := m.authView.Fail(api.UserMessage(msg.err))
			return m, cmd
		}
		if err := m.auth.Remember(m.ctx, msg.user); err != nil {
			cmd := m.authView.Fail(api.UserMessage(err))
			return m, cmd
		}
		log.Printf("app: user %d logged in", msg.user.ID)
		m.userID = msg.user.ID
		m.userName = msg.user.Name
		m.currentView = ViewList
		m.clearStatus()
		return m, m.loadTasks(m.userID)

	case registeredMsg:
		if msg.err != nil {
			cmd := m.authView.Fail(api.UserMessage(msg.err))
			return m, cmd
		}
		cmd := m.authView.ShowLogin("Account created. Log in to continue.")
		return m, cmd

	// Loading

	case tasksLoadedMsg:
		if msg.res.UserID != m.userID || m.userID == 0 {
			// Answer for a user who has since logged out.
			return m, nil
		}
		m.vm.Apply(m.ctx, msg.res)
		m.refreshViews()
		if msg.res.Err != nil {
			log.Printf("app: loading tasks: %v", msg.res.Err)
			m.setError(msg.res.Err)
		}
		if m.currentView == ViewForm && m.form.Editing() {
			// The reload discarded the edit buffer.
			m.currentView = ViewList
		}
		return m, nil

	// List

	case tasklist.SelectedTaskMsg:
		return m.openDetail(msg.TaskID)

	case tasklist.NewTaskMsg:
		m.form.SetGroups(m.vm.Groups())
		m.previousView = m.currentView
		m.currentView = ViewForm
		cmd := m.form.StartCreate(m.vm.SelectedGroup())
		return m, cmd

	case tasklist.EditTaskMsg:
		return m.startEdit(msg.TaskID)

	case tasklist.FinalizeTaskMsg:
		return m.askFinalize(msg.TaskID)

	case tasklist.FavoriteTaskMsg:
		m.toggleFavorite(msg.TaskID)
		return m, nil

	// Detail

	case detail.BackMsg:
		m.currentView = ViewList
		return m, nil

	case detail.ActionMsg:
		switch msg.Action {
		case detail.ActionEdit:
			return m.startEdit(msg.TaskID)
		case detail.ActionFinalize:
			return m.askFinalize(msg.TaskID)
		case detail.ActionFavorite:
			m.toggleFavorite(msg.TaskID)
		}
		return m, nil

	// Form

	case taskform.TaskCreateMsg:
		task, err := m.vm.ValidateNew(msg.Fields, m.now())
		if err != nil {
			cmd := m.form.Resume(msg.Fields, api.UserMessage(err))
			return m, cmd
		}
		m.currentView = ViewList
		m.setInfo("Saving...")
		return m, m.createTask(task)

	case taskform.TaskEditMsg:
		edit := m.vm.Edit()
		if !edit.Editing(msg.Buffer.ID) {
			m.currentView = m.previousView
			m.setInfo("The list was reloaded; edit discarded.")
			return m, nil
		}
		edit.Update(func(b *tasks.EditBuffer) { *b = msg.Buffer })
		patch, _ := edit.Patch(msg.Buffer.ID)
		m.currentView = m.previousView
		m.setInfo("Saving...")
		return m, m.saveTask(patch)

	case taskform.FormCancelMsg:
		m.vm.Edit().Cancel()
		m.currentView = m.previousView
		return m, nil

	case taskCreatedMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.setInfo("Task created.")
		return m, m.loadTasks(m.userID)

	case taskSavedMsg:
		if msg.err != nil {
			// The buffer survives; reopen the form with the user's input.
			m.setError(msg.err)
			if buf, ok := m.vm.Edit().Buffer(); ok && buf.ID == msg.id {
				m.form.SetGroups(m.vm.Groups())
				m.previousView = m.currentView
				m.currentView = ViewForm
				cmd := m.form.StartEdit(buf)
				m.form.SetError(api.UserMessage(msg.err))
				return m, cmd
			}
			return m, nil
		}
		m.vm.Edit().Committed()
		m.setInfo("Task saved.")
		return m, m.loadTasks(m.userID)

	case taskFinishedMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.setInfo("Task finished.")
		return m, m.loadTasks(m.userID)

	// Groups

	case groups.CloseMsg:
		m.currentView = ViewList
		return m, nil

	case groups.SelectedMsg:
		m.taskList.Refresh()
		m.currentView = ViewList
		return m, nil

	// Command palette

	case command.CommandMsg:
		m.currentView = m.previousView
		return m, m.executeCommand(msg)

	case command.ErrorMsg:
		m.currentView = m.previousView
		m.setErrorText(msg.Err.Error())
		return m, nil

	case exportedMsg:
		if msg.err != nil {
			log.Printf("app: export: %v", msg.err)
			m.setErrorText(msg.err.Error())
			return m, nil
		}
		m.setInfo(fmt.Sprintf("Exported %d tasks to %s.", msg.n, msg.path))
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.captureKeys() {
			break
		}
		if next, cmd, ok := m.handleGlobalKey(msg); ok {
			return next, cmd
		}
		if m.currentView == ViewList {
			m.clearStatus()
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// captureKeys reports whether the active view owns all keystrokes.
func (m Model) captureKeys() bool {
	switch m.currentView {
	case ViewAuth, ViewForm, ViewConfirm:
		return true
	case ViewList:
		return m.taskList.Searching()
	case ViewGroups:
		return m.groupsView.Adding()
	}
	return false
}

// handleGlobalKey processes keys that work outside the active view.
func (m Model) handleGlobalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Help):
		if m.currentView == ViewCommand {
			return m, nil, false
		}
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return m, nil, true
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil, true

	case key.Matches(msg, m.keys.Command):
		if m.currentView == ViewCommand {
			m.currentView = m.previousView
			return m, nil, true
		}
		if m.currentView == ViewGroups {
			return m, nil, false
		}
		m.previousView = m.currentView
		m.currentView = ViewCommand
		cmd := m.commandView.Focus()
		return m, cmd, true

	case key.Matches(msg, m.keys.Back):
		if m.currentView == ViewHelp || m.currentView == ViewCommand {
			m.currentView = m.previousView
			return m, nil, true
		}
	}

	if m.currentView != ViewList {
		return m, nil, false
	}

	switch {
	case msg.String() == "q":
		return m, tea.Quit, true

	case key.Matches(msg, m.keys.Groups):
		m.groupsView.Reload()
		m.previousView = m.currentView
		m.currentView = ViewGroups
		return m, nil, true

	case key.Matches(msg, m.keys.Theme):
		m.setTheme(m.mode.Toggle())
		return m, nil, true

	case key.Matches(msg, m.keys.Refresh):
		m.setInfo("Reloading...")
		return m, m.loadTasks(m.userID), true

	case key.Matches(msg, m.keys.Logout):
		return m.logout()
	}
	return m, nil, false
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewAuth:
		m.authView, cmd = m.authView.Update(msg)
	case ViewList:
		m.taskList, cmd = m.taskList.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewForm:
		m.form, cmd = m.form.Update(msg)
	case ViewGroups:
		m.groupsView, cmd = m.groupsView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	case ViewConfirm:
		return m.updateConfirm(msg)
	}

	return m, cmd
}

// openDetail shows task id in the detail view.
func (m Model) openDetail(id int) (tea.Model, tea.Cmd) {
	task, ok := m.vm.Task(id)
	if !ok {
		m.setErrorText(tasks.ErrUnknownTask.Error())
		return m, nil
	}
	m.detail.SetTask(task)
	m.currentView = ViewDetail
	return m, nil
}

// startEdit opens the form on a fresh buffer for task id.
func (m Model) startEdit(id int) (tea.Model, tea.Cmd) {
	task, ok := m.vm.Task(id)
	if !ok {
		m.setErrorText(tasks.ErrUnknownTask.Error())
		return m, nil
	}
	edit := m.vm.Edit()
	edit.Begin(task)
	buf, _ := edit.Buffer()

	m.form.SetGroups(m.vm.Groups())
	m.previousView = m.currentView
	m.currentView = ViewForm
	cmd := m.form.StartEdit(buf)
	return m, cmd
}

// askFinalize asks for confirmation before finishing task id.
func (m Model) askFinalize(id int) (tea.Model, tea.Cmd) {
	task, ok := m.vm.Task(id)
	if !ok {
		m.setErrorText(tasks.ErrUnknownTask.Error())
		return m, nil
	}
	if task.IsFinished() {
		return m, nil
	}

	answer := false
	m.confirmAnswer = &answer
	m.confirmID = id
	m.confirm = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Finish %q?", task.Title)).
				Description("Finished tasks cannot be reopened.").
				Affirmative("Finish").
				Negative("Cancel").
				Value(m.confirmAnswer),
		),
	).WithWidth(m.layout.ContentWidth()).WithShowHelp(false)

	m.previousView = m.currentView
	m.currentView = ViewConfirm
	return m, m.confirm.Init()
}

func (m Model) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.confirm == nil {
		m.currentView = m.previousView
		return m, nil
	}
	if k, ok := msg.(tea.KeyMsg); ok && key.Matches(k, m.keys.Back) {
		m.confirm = nil
		m.currentView = m.previousView
		return m, nil
	}

	mdl, cmd := m.confirm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirm = f
	}

	switch m.confirm.State {
	case huh.StateCompleted:
		id, yes := m.confirmID, *m.confirmAnswer
		m.confirm = nil
		m.currentView = m.previousView
		if !yes {
			return m, nil
		}
		m.setInfo("Saving...")
		return m, m.finishTask(id)
	case huh.StateAborted:
		m.confirm = nil
		m.currentView = m.previousView
		return m, nil
	}
	return m, cmd
}

// toggleFavorite flips the star on task id and updates the open views.
func (m *Model) toggleFavorite(id int) {
	fav, err := m.vm.ToggleFavorite(m.ctx, id)
	if err != nil {
		log.Printf("app: favorite %d: %v", id, err)
		m.setErrorText(err.Error())
	}
	m.refreshViews()
	if err == nil {
		if fav {
			m.setInfo("Added to favorites.")
		} else {
			m.setInfo("Removed from favorites.")
		}
	}
}

// refreshViews pushes view-model changes into the list, the groups screen
// and the open detail.
func (m *Model) refreshViews() {
	m.taskList.Refresh()
	m.groupsView.Reload()
	if m.currentView != ViewDetail {
		return
	}
	if task, ok := m.vm.Task(m.detail.TaskID()); ok {
		m.detail.SetTask(task)
	} else {
		m.currentView = ViewList
	}
}

func (m *Model) setTheme(mode session.Mode) {
	m.mode = mode
	theme.Apply(mode)
	m.detail.SetMode(mode)
	if err := m.sess.SetTheme(m.ctx, mode); err != nil {
		log.Printf("app: saving theme: %v", err)
		m.setErrorText(err.Error())
		return
	}
	m.setInfo(fmt.Sprintf("Theme: %s.", mode))
}

// logout forgets the session and returns to the login screen.
func (m Model) logout() (tea.Model, tea.Cmd, bool) {
	if err := m.auth.Logout(m.ctx); err != nil {
		log.Printf("app: logout: %v", err)
		m.setErrorText(err.Error())
		return m, nil, true
	}
	log.Printf("app: user %d logged out", m.userID)
	m.userID = 0
	m.userName = ""
	m.vm.Clear()
	m.taskList.Refresh()
	m.clearStatus()
	m.currentView = ViewAuth
	cmd := m.authView.ShowLogin("Logged out.")
	return m, cmd, true
}

func (m *Model) setInfo(msg string) {
	m.status = msg
	m.statusErr = false
}

// setError shows a failed request in the status bar.
func (m *Model) setError(err error) {
	m.setErrorText(api.UserMessage(err))
}

func (m *Model) setErrorText(msg string) {
	m.status = msg
	m.statusErr = true
}

func (m *Model) clearStatus() {
	m.status = ""
	m.statusErr = false
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.currentView == ViewAuth {
		return lipgloss.Place(m.layout.Width, m.layout.Height,
			lipgloss.Center, lipgloss.Center, m.authView.View())
	}

	header := m.layout.RenderHeader("tareas", m.headerRight())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints(), m.status, m.statusErr)

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewList:
		return m.taskList.View()
	case ViewDetail:
		return m.detail.View()
	case ViewForm:
		return m.form.View()
	case ViewGroups:
		return m.groupsView.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	case ViewConfirm:
		if m.confirm == nil {
			return ""
		}
		return theme.DetailPanelStyle.Render(m.confirm.View())
	default:
		return ""
	}
}

func (m Model) headerRight() string {
	who := m.userName
	if who == "" {
		who = fmt.Sprintf("user %d", m.userID)
	}
	return fmt.Sprintf("%s · %d tasks", who, m.vm.Len())
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | esc back"
	case ViewDetail:
		return "esc back | e edit | x finish | * favorite | j/k scroll"
	case ViewForm:
		return "enter submit | esc cancel"
	case ViewGroups:
		return "enter select | n new group | esc back"
	case ViewConfirm:
		return "y finish | n cancel"
	default:
		return tasklist.Summary(m.vm.Filters(), m.vm.SelectedGroup()) +
			" | " + m.helpView.ShortView()
	}
}

// CurrentView reports the active screen.
func (m Model) CurrentView() ViewState { return m.currentView }

// UserID returns the logged-in user, 0 when logged out.
func (m Model) UserID() int { return m.userID }

// Status returns the status-bar message and whether it is an error.
func (m Model) Status() (string, bool) { return m.status, m.statusErr }

// Tasks exposes the view-model, for tests.
func (m Model) Tasks() *tasks.ViewModel { return m.vm }

// Mode returns the active theme.
func (m Model) Mode() session.Mode { return m.mode }
