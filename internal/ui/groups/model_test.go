package groups

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/matryer/is"

	"github.com/nhle/tareas/internal/keys"
	"github.com/nhle/tareas/internal/model"
	"github.com/nhle/tareas/internal/session"
	"github.com/nhle/tareas/internal/tasks"
	"github.com/nhle/tareas/internal/testutil"
)

func newGroups(t *testing.T) (Model, *tasks.ViewModel) {
	t.Helper()
	gw := testutil.NewFakeGateway()
	gw.AddTask(1, model.Task{ID: 1, Title: "Regar", Priority: model.PriorityLow, Group: "Casa"})
	gw.AddTask(1, model.Task{ID: 2, Title: "Informe", Priority: model.PriorityHigh, Group: "Trabajo"})
	gw.AddTask(1, model.Task{ID: 3, Title: "Leer", Priority: model.PriorityLow})

	vm := tasks.New(gw, session.New(testutil.NewTestStore(t)))
	if err := vm.Load(context.Background(), 1); err != nil {
		t.Fatal(err)
	}
	return New(vm, keys.DefaultKeyMap(), 80, 20), vm
}

func TestReload_ListsDefaultFirst(t *testing.T) {
	is := is.New(t)
	m, _ := newGroups(t)
	is.Equal(m.names, []string{model.DefaultGroup, "Casa", "Trabajo"})
	is.Equal(m.selectedIdx, 0)

	view := m.View()
	is.True(strings.Contains(view, "General (3)"))
	is.True(strings.Contains(view, "Casa (1)"))
}

func TestSelect(t *testing.T) {
	is := is.New(t)
	m, vm := newGroups(t)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	is.Equal(cmd(), SelectedMsg{Name: "Trabajo"})
	is.Equal(vm.SelectedGroup(), "Trabajo")

	m.Reload()
	is.Equal(m.selectedIdx, 2) // cursor follows the selection

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp}) // wraps
	is.Equal(m.selectedIdx, 2)
}

func TestNewGroupOpensForm(t *testing.T) {
	is := is.New(t)
	m, _ := newGroups(t)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	is.True(m.Adding())
	is.True(m.form != nil)
}

func TestClose(t *testing.T) {
	is := is.New(t)
	m, _ := newGroups(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	is.Equal(cmd(), CloseMsg{})
}
