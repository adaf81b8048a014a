package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/nhle/tareas/internal/model"
	"github.com/nhle/tareas/internal/session"
	"github.com/nhle/tareas/internal/testutil"
)

const uid = 7

type harness struct {
	gw   *testutil.FakeGateway
	sess *session.Store
	app  *App
}

func newHarness(t *testing.T, loggedIn bool) *harness {
	t.Helper()
	gw := testutil.NewFakeGateway()
	gw.AddUser(uid, "ana@example.com", "Ana", "secreto")
	gw.AddTask(uid, model.Task{ID: 1, Title: "Comprar pan", Priority: model.PriorityLow, CreationDate: "2024-04-01", Group: "Casa"})
	gw.AddTask(uid, model.Task{ID: 2, Title: "Informe", Priority: model.PriorityHigh, CreationDate: "2024-04-02"})

	kv := testutil.NewTestStore(t)
	h := &harness{
		gw:   gw,
		sess: session.New(kv),
		app: &App{
			ConfigPath: filepath.Join(t.TempDir(), "config.yaml"),
			gateway:    gw,
			kv:         kv,
			now:        func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.Local) },
		},
	}
	if loggedIn {
		if err := h.sess.SetActiveUserID(context.Background(), uid); err != nil {
			t.Fatal(err)
		}
	}
	return h
}

func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	// Each invocation gets a fresh session handle like a new process would.
	h.app.sess = nil
	cmd := newRootCmd(h.app)

	var outBuf, errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return outBuf.String(), err
}

func TestLoginLogout(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	h := newHarness(t, false)

	_, err := h.run(t, "login", "--email", "ana@example.com", "--password", "nope")
	is.True(err != nil)
	is.Equal(err.Error(), "Credenciales incorrectas")

	out, err := h.run(t, "login", "--email", "ana@example.com", "--password", "secreto")
	is.NoErr(err)
	is.Equal(out, "Logged in as Ana (id 7).\n")
	id, ok := h.sess.ActiveUserID(ctx)
	is.True(ok)
	is.Equal(id, uid)

	_, err = h.run(t, "logout")
	is.NoErr(err)
	_, ok = h.sess.ActiveUserID(ctx)
	is.True(!ok)
}

func TestLogin_PromptsForPassword(t *testing.T) {
	is := is.New(t)
	h := newHarness(t, false)

	orig := promptSecret
	t.Cleanup(func() { promptSecret = orig })
	promptSecret = func(_ string, v *string) error {
		*v = "secreto"
		return nil
	}

	_, err := h.run(t, "login", "--email", "ana@example.com")
	is.NoErr(err)
}

func TestRegister_Validation(t *testing.T) {
	is := is.New(t)
	h := newHarness(t, false)

	_, err := h.run(t, "register", "--email", "x@y.z", "--birth-date", "2000-01-01", "--password", "p")
	is.True(err != nil)
	is.Equal(err.Error(), "All fields except gender are required.")

	out, err := h.run(t, "register", "--name", "Luis", "--email", "x@y.z", "--birth-date", "2000-01-01", "--password", "p")
	is.NoErr(err)
	is.True(strings.Contains(out, "Account created"))
}

func TestList(t *testing.T) {
	is := is.New(t)

	_, err := newHarness(t, false).run(t, "list")
	is.True(errors.Is(err, errNotLoggedIn))

	h := newHarness(t, true)
	out, err := h.run(t, "list")
	is.NoErr(err)
	is.True(strings.Contains(out, "Comprar pan"))
	is.True(strings.Contains(out, "Informe"))

	out, err = h.run(t, "list", "--priority", "alta")
	is.NoErr(err)
	is.True(!strings.Contains(out, "Comprar pan"))
	is.True(strings.Contains(out, "Informe"))

	out, err = h.run(t, "list", "--group", "Casa")
	is.NoErr(err)
	is.True(strings.Contains(out, "Comprar pan"))
	is.True(!strings.Contains(out, "Informe"))

	_, err = h.run(t, "list", "--group", "Nada")
	is.True(err != nil)

	out, err = h.run(t, "list", "--search", "zzz")
	is.NoErr(err)
	is.Equal(out, "No tasks.\n")
}

func TestAdd(t *testing.T) {
	is := is.New(t)
	h := newHarness(t, true)

	_, err := h.run(t, "add", "Llamar", "--priority", "alta", "--group", "Trabajo", "--description", " *hoy* ")
	is.NoErr(err)
	is.Equal(h.gw.LastCreate.Title, "Llamar")
	is.Equal(h.gw.LastCreate.Priority, model.PriorityHigh)
	is.Equal(h.gw.LastCreate.Group, "Trabajo")
	is.Equal(h.gw.LastCreate.Description, "*hoy*")
	is.Equal(h.gw.LastCreate.CreationDate, "2024-05-01")
	is.Equal(h.gw.LastCreate.Status, model.StatusActive)
	is.Equal(h.gw.LastCreate.UserID, uid)

	_, err = h.run(t, "add", "   ")
	is.True(err != nil)
	is.Equal(h.gw.CreateCalls, 1)
}

func TestEdit(t *testing.T) {
	is := is.New(t)
	h := newHarness(t, true)

	_, err := h.run(t, "edit", "1", "--title", "Comprar pan integral")
	is.NoErr(err)
	is.Equal(*h.gw.LastPatch.Title, "Comprar pan integral")
	is.Equal(*h.gw.LastPatch.Group, "Casa")
	is.Equal(*h.gw.LastPatch.Priority, model.PriorityLow)

	_, err = h.run(t, "edit", "1", "--group", model.DefaultGroup)
	is.NoErr(err)
	is.Equal(*h.gw.LastPatch.Group, "")

	_, err = h.run(t, "edit", "99", "--title", "x")
	is.True(err != nil)
}

func TestDone(t *testing.T) {
	is := is.New(t)
	h := newHarness(t, true)

	orig := confirmFinish
	t.Cleanup(func() { confirmFinish = orig })
	confirmFinish = func(string) (bool, error) { return false, nil }

	_, err := h.run(t, "done", "2")
	is.NoErr(err)
	is.Equal(h.gw.UpdateCalls, 0) // declined

	out, err := h.run(t, "done", "2", "--yes")
	is.NoErr(err)
	is.Equal(out, "Finished task 2.\n")
	is.Equal(*h.gw.LastPatch.Status, model.StatusFinished)

	out, err = h.run(t, "done", "2", "--yes")
	is.NoErr(err)
	is.Equal(out, "Task 2 is already finished.\n")
	is.Equal(h.gw.UpdateCalls, 1)
}

func TestFav(t *testing.T) {
	is := is.New(t)
	h := newHarness(t, true)

	out, err := h.run(t, "fav", "1")
	is.NoErr(err)
	is.Equal(out, "Starred task 1.\n")

	out, err = h.run(t, "list", "--favorites")
	is.NoErr(err)
	is.True(strings.Contains(out, "Comprar pan"))
	is.True(!strings.Contains(out, "Informe"))

	out, err = h.run(t, "fav", "1")
	is.NoErr(err)
	is.Equal(out, "Unstarred task 1.\n")
}

func TestTheme(t *testing.T) {
	is := is.New(t)
	h := newHarness(t, false)

	out, err := h.run(t, "theme")
	is.NoErr(err)
	is.Equal(out, "light\n")

	_, err = h.run(t, "theme", "dark")
	is.NoErr(err)
	out, err = h.run(t, "theme")
	is.NoErr(err)
	is.Equal(out, "dark\n")

	_, err = h.run(t, "theme", "sepia")
	is.True(err != nil)
}

func TestExport(t *testing.T) {
	is := is.New(t)
	h := newHarness(t, true)

	out, err := h.run(t, "export", "--format", "json", "--sort", "titulo")
	is.NoErr(err)

	var rows []map[string]any
	is.NoErr(json.Unmarshal([]byte(out), &rows))
	is.Equal(len(rows), 2)
	is.Equal(rows[0]["titulo"], "Comprar pan")

	_, err = h.run(t, "export", "--format", "pdf")
	is.True(err != nil) // needs -o

	path := filepath.Join(t.TempDir(), "t.pdf")
	_, err = h.run(t, "export", "--format", "pdf", "-o", path)
	is.NoErr(err)
}

func TestConfigInit(t *testing.T) {
	is := is.New(t)
	h := newHarness(t, false)
	t.Setenv("TAREAS_API_BASE_URL", "http://tareas.test:3333")

	out, err := h.run(t, "config", "init")
	is.NoErr(err)
	is.Equal(out, "Wrote "+h.app.ConfigPath+".\n")

	cfg, err := model.LoadConfig(h.app.ConfigPath)
	is.NoErr(err)
	is.Equal(cfg.API.BaseURL, "http://tareas.test:3333")
	is.Equal(cfg.Display.Language, "es")

	_, err = h.run(t, "config", "init")
	is.True(err != nil) // refuses to overwrite

	h.app.cfg = nil
	_, err = h.run(t, "config", "init", "--force")
	is.NoErr(err)

	out, err = h.run(t, "config")
	is.NoErr(err)
	is.True(strings.Contains(out, "display.language:  es"))
}

func TestList_UsesConfiguredCollation(t *testing.T) {
	is := is.New(t)
	h := newHarness(t, true)
	h.gw.AddTask(uid, model.Task{ID: 3, Title: "Ñandú", Priority: model.PriorityLow, CreationDate: "2024-04-03"})
	h.gw.AddTask(uid, model.Task{ID: 4, Title: "Nube", Priority: model.PriorityLow, CreationDate: "2024-04-04"})
	is.NoErr(os.WriteFile(h.app.ConfigPath, []byte("display:\n  language: es\n"), 0o600))

	out, err := h.run(t, "list", "--sort", "titulo")
	is.NoErr(err)
	// Spanish collation puts Ñ after N.
	is.True(strings.Index(out, "Informe") < strings.Index(out, "Nube"))
	is.True(strings.Index(out, "Nube") < strings.Index(out, "Ñandú"))
}
