package app

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/tareas/internal/export"
	"github.com/nhle/tareas/internal/model"
	"github.com/nhle/tareas/internal/tasks"
)

// tasksLoadedMsg carries the outcome of a list request.
type tasksLoadedMsg struct{ res tasks.LoadResult }

// loggedInMsg is sent after a login attempt.
type loggedInMsg struct {
	user model.User
	err  error
}

// registeredMsg is sent after a registration attempt.
type registeredMsg struct{ err error }

// taskCreatedMsg is sent after a new task was submitted.
type taskCreatedMsg struct{ err error }

// taskSavedMsg is sent after an edit was submitted.
type taskSavedMsg struct {
	id  int
	err error
}

// taskFinishedMsg is sent after a finish request.
type taskFinishedMsg struct {
	id  int
	err error
}

// exportedMsg reports where an export was written.
type exportedMsg struct {
	path string
	n    int
	err  error
}

// tickMsg refreshes relative timestamps.
type tickMsg time.Time

func tick(every time.Duration) tea.Cmd {
	return tea.Tick(every, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// loadTasks fetches the task list of userID off the event loop.
func (m Model) loadTasks(userID int) tea.Cmd {
	vm, ctx := m.vm, m.ctx
	return func() tea.Msg {
		return tasksLoadedMsg{res: vm.Fetch(ctx, userID)}
	}
}

func (m Model) login(email, password string) tea.Cmd {
	svc, ctx := m.auth, m.ctx
	return func() tea.Msg {
		user, err := svc.Authenticate(ctx, email, password)
		return loggedInMsg{user: user, err: err}
	}
}

func (m Model) register(reg model.Registration) tea.Cmd {
	svc, ctx := m.auth, m.ctx
	return func() tea.Msg {
		return registeredMsg{err: svc.Register(ctx, reg)}
	}
}

func (m Model) createTask(task model.NewTask) tea.Cmd {
	vm, ctx := m.vm, m.ctx
	return func() tea.Msg {
		return taskCreatedMsg{err: vm.SubmitNew(ctx, task)}
	}
}

func (m Model) saveTask(patch model.TaskPatch) tea.Cmd {
	edit, ctx := m.vm.Edit(), m.ctx
	return func() tea.Msg {
		return taskSavedMsg{id: patch.ID, err: edit.Submit(ctx, patch)}
	}
}

func (m Model) finishTask(id int) tea.Cmd {
	vm, ctx := m.vm, m.ctx
	return func() tea.Msg {
		return taskFinishedMsg{id: id, err: vm.SubmitFinish(ctx, id)}
	}
}

// exportTasks writes a snapshot of the visible tasks to path.
func exportTasks(path string, format export.Format, list []model.Task, now time.Time) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Create(path)
		if err != nil {
			return exportedMsg{err: fmt.Errorf("creating %s: %w", path, err)}
		}
		if err := export.Write(f, format, list, now); err != nil {
			_ = f.Close()
			return exportedMsg{err: err}
		}
		if err := f.Close(); err != nil {
			return exportedMsg{err: fmt.Errorf("closing %s: %w", path, err)}
		}
		return exportedMsg{path: path, n: len(list)}
	}
}

// defaultExportPath names an export file after the date and format.
func defaultExportPath(format export.Format, now time.Time) string {
	return fmt.Sprintf("tareas-%s.%s", now.Format(model.DateLayout), format)
}
