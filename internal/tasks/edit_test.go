package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/matryer/is"

	"github.com/nhle/tareas/internal/api"
	"github.com/nhle/tareas/internal/model"
)

func TestEdit_CancelWithoutBufferIsNoop(t *testing.T) {
	is := is.New(t)
	f := newFixture(t)
	e := f.vm.Edit()

	e.Cancel()
	e.Cancel()
	_, ok := e.Buffer()
	is.True(!ok)
	is.Equal(f.gw.Calls(), 0)
}

func TestEdit_BeginReplacesPrevious(t *testing.T) {
	is := is.New(t)
	f := newFixture(t)
	seed(f)
	is.NoErr(f.vm.Load(context.Background(), uid))
	e := f.vm.Edit()

	five, _ := f.vm.Task(5)
	nine, _ := f.vm.Task(9)
	e.Begin(five)
	e.Begin(nine)

	buf, ok := e.Buffer()
	is.True(ok)
	is.Equal(buf.ID, 9)
	is.True(e.Editing(9))
	is.True(!e.Editing(5))
	_, ok = e.Patch(5)
	is.True(!ok)
}

func TestEdit_BeginShowsDefaultGroup(t *testing.T) {
	is := is.New(t)
	f := newFixture(t)
	e := f.vm.Edit()

	e.Begin(model.Task{ID: 1, Title: "t", Priority: model.PriorityLow})
	buf, _ := e.Buffer()
	is.Equal(buf.Group, model.DefaultGroup)

	patch, ok := e.Patch(1)
	is.True(ok)
	is.Equal(*patch.Group, "") // default label goes back as empty
	is.True(patch.Status == nil)
}

func TestEdit_CommitTrimsAndReloads(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	f := newFixture(t)
	seed(f)
	is.NoErr(f.vm.Load(ctx, uid))
	e := f.vm.Edit()

	task, _ := f.vm.Task(3)
	e.Begin(task)
	e.Update(func(b *EditBuffer) {
		b.ID = 999 // ignored
		b.Title = "  Buy oat milk  "
		b.Priority = model.PriorityHigh
		b.Group = "Errands "
	})

	is.NoErr(e.Commit(ctx, task))

	is.Equal(f.gw.LastPatch.ID, 3)
	is.Equal(*f.gw.LastPatch.Title, "Buy oat milk")
	is.Equal(*f.gw.LastPatch.Group, "Errands")
	_, ok := e.Buffer()
	is.True(!ok)

	got, _ := f.vm.Task(3)
	is.Equal(got.Title, "Buy oat milk")
	is.Equal(got.Priority, model.PriorityHigh)
	is.Equal(f.vm.Groups(), []string{"Errands", "Home", "Work"}) // first-seen order
}

func TestEdit_CommitFailureKeepsBuffer(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	f := newFixture(t)
	seed(f)
	is.NoErr(f.vm.Load(ctx, uid))
	e := f.vm.Edit()
	task, _ := f.vm.Task(7)
	e.Begin(task)
	e.Update(func(b *EditBuffer) { b.Title = "Call the bank" })

	f.gw.UpdateErr = &api.TransportError{Method: "PUT", Path: "/tarea/7", StatusCode: 500, Err: errors.New("boom")}
	err := e.Commit(ctx, task)
	is.True(api.IsTransport(err))
	is.Equal(api.UserMessage(err), api.GenericFailureMessage)

	buf, ok := e.Buffer()
	is.True(ok)
	is.Equal(buf.Title, "Call the bank")
}

func TestEdit_CommitWithoutBuffer(t *testing.T) {
	is := is.New(t)
	f := newFixture(t)

	is.NoErr(f.vm.Edit().Commit(context.Background(), model.Task{ID: 4}))
	is.Equal(f.gw.Calls(), 0)
}

func TestEdit_ReloadDiscardsBuffer(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	f := newFixture(t)
	seed(f)
	is.NoErr(f.vm.Load(ctx, uid))

	task, _ := f.vm.Task(5)
	f.vm.Edit().Begin(task)
	is.NoErr(f.vm.Load(ctx, uid))

	_, ok := f.vm.Edit().Buffer()
	is.True(!ok)
}
