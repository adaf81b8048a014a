package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/matryer/is"

	"github.com/nhle/tareas/internal/model"
	"github.com/nhle/tareas/internal/session"
	"github.com/nhle/tareas/internal/tasks"
	"github.com/nhle/tareas/internal/testutil"
	"github.com/nhle/tareas/internal/ui/command"
	"github.com/nhle/tareas/internal/ui/taskform"
	"github.com/nhle/tareas/internal/ui/tasklist"
)

const uid = 7

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local)

func newApp(t *testing.T, loggedIn bool) (Model, *testutil.FakeGateway, *session.Store) {
	t.Helper()
	ctx := context.Background()
	gw := testutil.NewFakeGateway()
	gw.AddUser(uid, "ana@example.com", "Ana", "secreto")
	gw.AddTask(uid, model.Task{ID: 1, Title: "Comprar pan", Priority: model.PriorityLow, CreationDate: "2024-04-01", Group: "Casa"})
	gw.AddTask(uid, model.Task{ID: 2, Title: "Informe", Priority: model.PriorityHigh, CreationDate: "2024-04-02"})

	sess := session.New(testutil.NewTestStore(t))
	if loggedIn {
		if err := sess.SetActiveUserID(ctx, uid); err != nil {
			t.Fatal(err)
		}
	}
	m := New(ctx, gw, sess, WithClock(func() time.Time { return fixedNow }))
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	return m, gw, sess
}

// update feeds msg to m and returns the new root model, dropping the cmd.
func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

// updateRun feeds msg and returns the model with the cmd's message, which
// must be one of the app's own request results.
func updateRun(t *testing.T, m Model, msg tea.Msg) (Model, tea.Msg) {
	t.Helper()
	next, cmd := m.Update(msg)
	if cmd == nil {
		t.Fatalf("no command after %T", msg)
	}
	return next.(Model), cmd()
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func loaded(t *testing.T, m Model) Model {
	t.Helper()
	return update(t, m, m.loadTasks(m.userID)())
}

func TestNew_RoutesBySession(t *testing.T) {
	is := is.New(t)

	m, _, _ := newApp(t, false)
	is.Equal(m.CurrentView(), ViewAuth)

	m, _, _ = newApp(t, true)
	is.Equal(m.CurrentView(), ViewList)
	is.Equal(m.UserID(), uid)
}

func TestLogin(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	m, gw, sess := newApp(t, false)

	msg := m.login("ana@example.com", "wrong")()
	m = update(t, m, msg)
	is.Equal(m.CurrentView(), ViewAuth)
	_, ok := sess.ActiveUserID(ctx)
	is.True(!ok)

	m, next := updateRun(t, m, m.login("ana@example.com", "secreto")())
	is.Equal(m.CurrentView(), ViewList)
	is.Equal(m.UserID(), uid)
	id, ok := sess.ActiveUserID(ctx)
	is.True(ok)
	is.Equal(id, uid)

	m = update(t, m, next)
	is.Equal(m.Tasks().Len(), 2)
	is.Equal(gw.LoginCalls, 2)
}

func TestLogout_DropsLateResponses(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	m, _, sess := newApp(t, true)
	m = loaded(t, m)
	is.Equal(m.Tasks().Len(), 2)

	pending := m.loadTasks(uid)()

	m = update(t, m, keyMsg("L"))
	is.Equal(m.CurrentView(), ViewAuth)
	is.Equal(m.UserID(), 0)
	is.Equal(m.Tasks().Len(), 0)
	_, ok := sess.ActiveUserID(ctx)
	is.True(!ok)

	m = update(t, m, pending)
	is.Equal(m.Tasks().Len(), 0) // stale answer ignored
}

func TestLoadFailure_ShowsMessage(t *testing.T) {
	is := is.New(t)
	m, gw, _ := newApp(t, true)
	gw.ListStatus = 1
	gw.ListMessage = "Usuario no encontrado"

	m = loaded(t, m)
	is.Equal(m.Tasks().Len(), 0)
	msg, isErr := m.Status()
	is.True(isErr)
	is.Equal(msg, "Usuario no encontrado")
}

func TestCreate(t *testing.T) {
	is := is.New(t)
	m, gw, _ := newApp(t, true)
	m = loaded(t, m)

	m = update(t, m, tasklist.NewTaskMsg{})
	is.Equal(m.CurrentView(), ViewForm)

	m = update(t, m, taskform.TaskCreateMsg{Fields: tasks.NewFields{Title: "  ", Priority: model.PriorityHigh}})
	is.Equal(m.CurrentView(), ViewForm)
	is.Equal(gw.CreateCalls, 0)

	m, res := updateRun(t, m, taskform.TaskCreateMsg{Fields: tasks.NewFields{
		Title:    "Llamar",
		Priority: model.PriorityMedium,
		Group:    model.DefaultGroup,
	}})
	is.Equal(m.CurrentView(), ViewList)
	is.Equal(gw.LastCreate.CreationDate, "2024-05-01")
	is.Equal(gw.LastCreate.Group, "")
	is.Equal(gw.LastCreate.UserID, uid)

	m, reload := updateRun(t, m, res)
	msg, isErr := m.Status()
	is.True(!isErr)
	is.Equal(msg, "Task created.")

	m = update(t, m, reload)
	is.Equal(m.Tasks().Len(), 3)
}

func TestCreate_ServerReject(t *testing.T) {
	is := is.New(t)
	m, gw, _ := newApp(t, true)
	m = loaded(t, m)
	gw.CreateStatus = 1
	gw.StatusMsg = "Titulo duplicado"

	m, res := updateRun(t, m, taskform.TaskCreateMsg{Fields: tasks.NewFields{Title: "X", Priority: model.PriorityLow}})
	m = update(t, m, res)

	msg, isErr := m.Status()
	is.True(isErr)
	is.Equal(msg, "Titulo duplicado")
	is.Equal(m.Tasks().Len(), 2) // nothing inserted locally
}

func TestEdit(t *testing.T) {
	is := is.New(t)
	m, gw, _ := newApp(t, true)
	m = loaded(t, m)

	m = update(t, m, tasklist.EditTaskMsg{TaskID: 1})
	is.Equal(m.CurrentView(), ViewForm)
	is.True(m.Tasks().Edit().Editing(1))

	buf, _ := m.Tasks().Edit().Buffer()
	buf.Title = "Comprar pan integral"
	m, res := updateRun(t, m, taskform.TaskEditMsg{Buffer: buf})
	is.Equal(*gw.LastPatch.Title, "Comprar pan integral")
	is.Equal(*gw.LastPatch.Group, "Casa")
	is.True(gw.LastPatch.Status == nil)

	m, reload := updateRun(t, m, res)
	is.True(!m.Tasks().Edit().Editing(1))
	m = update(t, m, reload)
	task, _ := m.Tasks().Task(1)
	is.Equal(task.Title, "Comprar pan integral")
}

func TestEdit_FailureKeepsBuffer(t *testing.T) {
	is := is.New(t)
	m, gw, _ := newApp(t, true)
	m = loaded(t, m)
	gw.UpdateStatus = 1
	gw.StatusMsg = "No se pudo actualizar"

	m = update(t, m, tasklist.EditTaskMsg{TaskID: 2})
	buf, _ := m.Tasks().Edit().Buffer()
	buf.Title = "Informe final"
	m, res := updateRun(t, m, taskform.TaskEditMsg{Buffer: buf})
	m = update(t, m, res)

	is.Equal(m.CurrentView(), ViewForm)
	kept, ok := m.Tasks().Edit().Buffer()
	is.True(ok)
	is.Equal(kept.Title, "Informe final")
}

func TestFinalize(t *testing.T) {
	is := is.New(t)
	m, gw, _ := newApp(t, true)
	m = loaded(t, m)

	m = update(t, m, tasklist.FinalizeTaskMsg{TaskID: 2})
	is.Equal(m.CurrentView(), ViewConfirm)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	is.Equal(m.CurrentView(), ViewList)
	is.Equal(gw.UpdateCalls, 0) // cancelled

	m, reload := updateRun(t, m, m.finishTask(2)())
	m = update(t, m, reload)
	task, _ := m.Tasks().Task(2)
	is.True(task.IsFinished())

	m = update(t, m, tasklist.FinalizeTaskMsg{TaskID: 2})
	is.Equal(m.CurrentView(), ViewList) // already finished
}

func TestFavorite(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	m, gw, sess := newApp(t, true)
	m = loaded(t, m)
	calls := gw.Calls()

	m = update(t, m, tasklist.FavoriteTaskMsg{TaskID: 1})
	task, _ := m.Tasks().Task(1)
	is.True(task.Favorite)
	_, saved := sess.FavoriteIDs(ctx)[1]
	is.True(saved)
	is.Equal(gw.Calls(), calls) // no request sent

	m = loaded(t, m)
	task, _ = m.Tasks().Task(1)
	is.True(task.Favorite) // survives a reload
}

func TestThemeToggle(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	m, _, sess := newApp(t, true)
	is.Equal(m.Mode(), session.ModeLight)

	m = update(t, m, keyMsg("t"))
	is.Equal(m.Mode(), session.ModeDark)
	is.Equal(sess.Theme(ctx), session.ModeDark)

	m = update(t, m, command.CommandMsg{Name: command.CmdTheme, Arg: "light"})
	is.Equal(sess.Theme(ctx), session.ModeLight)
}

func TestPalette(t *testing.T) {
	is := is.New(t)
	m, _, _ := newApp(t, true)
	m = loaded(t, m)

	m = update(t, m, command.CommandMsg{Name: command.CmdGroup, Arg: "Casa"})
	is.Equal(m.Tasks().SelectedGroup(), "Casa")

	m = update(t, m, command.CommandMsg{Name: command.CmdGroup, Arg: "Nada"})
	is.Equal(m.Tasks().SelectedGroup(), model.DefaultGroup)
	_, isErr := m.Status()
	is.True(isErr)

	m = update(t, m, command.CommandMsg{Name: command.CmdAddGroup, Arg: "Trabajo"})
	is.Equal(m.Tasks().Groups(), []string{"Casa", "Trabajo"})

	m = update(t, m, command.CommandMsg{Name: command.CmdSort, Arg: "titulo desc"})
	f := m.Tasks().Filters()
	is.Equal(f.Sort, tasks.SortTitle)
	is.True(!f.Ascending)

	m = update(t, m, command.CommandMsg{Name: command.CmdPriority, Arg: "alta"})
	is.Equal(len(m.Tasks().Visible()), 1)
}

func TestPalette_Export(t *testing.T) {
	is := is.New(t)
	m, _, _ := newApp(t, true)
	m = loaded(t, m)

	path := filepath.Join(t.TempDir(), "out.json")
	m, res := updateRun(t, m, command.CommandMsg{Name: command.CmdExport, Arg: "json " + path})
	m = update(t, m, res)

	msg, isErr := m.Status()
	is.True(!isErr)
	is.Equal(msg, "Exported 2 tasks to "+path+".")
	_, err := os.Stat(path)
	is.NoErr(err)

	m = update(t, m, command.CommandMsg{Name: command.CmdExport, Arg: "xml"})
	_, isErr = m.Status()
	is.True(isErr)
}

func TestOverlappingLoads_LastToSettleWins(t *testing.T) {
	is := is.New(t)
	m, gw, _ := newApp(t, true)

	first := m.loadTasks(uid)()
	gw.AddTask(uid, model.Task{ID: 3, Title: "Pagar luz", Priority: model.PriorityMedium, CreationDate: "2024-04-03"})
	second := m.loadTasks(uid)()

	m = update(t, m, second)
	is.Equal(m.Tasks().Len(), 3)
	m = update(t, m, first)
	is.Equal(m.Tasks().Len(), 2)
	_, ok := m.Tasks().Task(3)
	is.True(!ok)
}

func TestFavorite_ToggledWhileReloading(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	m, _, sess := newApp(t, true)
	m = loaded(t, m)

	inFlight := m.loadTasks(uid)()
	m = update(t, m, tasklist.FavoriteTaskMsg{TaskID: 2})
	m = update(t, m, inFlight)

	task, _ := m.Tasks().Task(2)
	is.True(task.Favorite)
	_, saved := sess.FavoriteIDs(ctx)[2]
	is.True(saved)
}
