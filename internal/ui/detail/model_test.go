package detail

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/matryer/is"

	"github.com/nhle/tareas/internal/keys"
	"github.com/nhle/tareas/internal/model"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newDetail(task model.Task) Model {
	m := New(keys.DefaultKeyMap(), 80, 30)
	m.SetNow(time.Date(2024, 4, 1, 10, 30, 0, 0, time.Local))
	m.SetTask(task)
	return m
}

func TestView_EmptyWithoutTask(t *testing.T) {
	is := is.New(t)
	m := New(keys.DefaultKeyMap(), 40, 10)
	is.Equal(m.TaskID(), 0)
	is.True(strings.Contains(m.View(), "No task selected"))

	_, cmd := m.Update(runes("e"))
	is.Equal(cmd, nil)
}

func TestView_ShowsTask(t *testing.T) {
	is := is.New(t)
	m := newDetail(model.Task{
		ID: 4, Title: "Pagar luz", Priority: model.PriorityHigh,
		CreationDate: "2024-04-01", Status: model.StatusActive, Group: "Casa",
		Description: "Antes del viernes",
	})

	out := m.View()
	is.Equal(m.TaskID(), 4)
	is.True(strings.Contains(out, "Pagar luz"))
	is.True(strings.Contains(out, "Casa"))
	is.True(strings.Contains(out, "2024-04-01"))
	is.True(strings.Contains(out, "viernes"))
	is.True(!strings.Contains(out, "No description"))
}

func TestView_NoDescription(t *testing.T) {
	is := is.New(t)
	m := newDetail(model.Task{ID: 1, Title: "Informe", CreationDate: "2024-04-01"})
	is.True(strings.Contains(m.View(), "No description"))
	is.True(strings.Contains(m.View(), model.DefaultGroup))
}

func TestUpdate_Actions(t *testing.T) {
	is := is.New(t)
	m := newDetail(model.Task{ID: 9, Title: "Informe", Status: model.StatusActive})

	for key, want := range map[string]string{
		"e": ActionEdit,
		"x": ActionFinalize,
		"*": ActionFavorite,
	} {
		_, cmd := m.Update(runes(key))
		is.True(cmd != nil)
		is.Equal(cmd(), ActionMsg{Action: want, TaskID: 9})
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	is.True(cmd != nil)
	is.Equal(cmd(), BackMsg{})
}

func TestUpdate_FinishedTaskIgnoresFinalize(t *testing.T) {
	is := is.New(t)
	m := newDetail(model.Task{ID: 9, Title: "Informe", Status: model.StatusFinished})

	_, cmd := m.Update(runes("x"))
	is.Equal(cmd, nil)
}

func TestRenderMarkdown(t *testing.T) {
	is := is.New(t)
	is.Equal(renderMarkdown("   ", "light", 40), "")
	out := renderMarkdown("una *lista* corta", "dark", 40)
	is.True(strings.Contains(out, "corta"))
}
