package tasks

import (
	"context"
	"log"
	"strings"

	"github.com/nhle/tareas/internal/api"
	"github.com/nhle/tareas/internal/model"
)

// EditBuffer is the working copy of a task being edited.
type EditBuffer struct {
	ID          int
	Title       string
	Priority    model.Priority
	Description string
	// Group is the displayed label (DefaultGroup for no group).
	Group string
}

// EditSession tracks at most one task under edit.
type EditSession struct {
	vm  *ViewModel
	buf *EditBuffer
}

// Begin opens a buffer for task, replacing any edit already in progress.
func (e *EditSession) Begin(task model.Task) {
	e.buf = &EditBuffer{
		ID:          task.ID,
		Title:       task.Title,
		Priority:    task.Priority,
		Description: task.Description,
		Group:       model.DisplayGroup(task.Group),
	}
}

// Buffer returns a copy of the open buffer.
func (e *EditSession) Buffer() (EditBuffer, bool) {
	if e.buf == nil {
		return EditBuffer{}, false
	}
	return *e.buf, true
}

// Editing reports whether task id is the one under edit.
func (e *EditSession) Editing(id int) bool {
	return e.buf != nil && e.buf.ID == id
}

// Update changes the open buffer in place. It does nothing when no edit
// is open.
func (e *EditSession) Update(fn func(*EditBuffer)) {
	if e.buf == nil {
		return
	}
	id := e.buf.ID
	fn(e.buf)
	e.buf.ID = id
}

// Patch builds the update request for task id from the buffer.
func (e *EditSession) Patch(id int) (model.TaskPatch, bool) {
	if e.buf == nil || e.buf.ID != id {
		return model.TaskPatch{}, false
	}

	title := strings.TrimSpace(e.buf.Title)
	prio := e.buf.Priority
	desc := strings.TrimSpace(e.buf.Description)
	group := model.StoredGroup(strings.TrimSpace(e.buf.Group))

	return model.TaskPatch{
		ID:          id,
		Title:       &title,
		Priority:    &prio,
		Description: &desc,
		Group:       &group,
	}, true
}

// Submit sends patch. It may run off the event loop; on success call
// Committed and reload.
func (e *EditSession) Submit(ctx context.Context, patch model.TaskPatch) error {
	resp, err := e.vm.gw.UpdateTask(ctx, patch)
	if err != nil {
		return err
	}
	return api.Check(resp.Status, resp.Message)
}

// Commit saves the buffer for task. Without a buffer for task it does
// nothing. On failure the buffer is kept so the user can retry.
func (e *EditSession) Commit(ctx context.Context, task model.Task) error {
	patch, ok := e.Patch(task.ID)
	if !ok {
		return nil
	}
	if err := e.Submit(ctx, patch); err != nil {
		return err
	}
	e.Committed()
	if err := e.vm.Load(ctx, e.vm.userID); err != nil {
		log.Printf("tasks: reload after edit: %v", err)
	}
	return nil
}

// Committed closes the edit after a successful Submit.
func (e *EditSession) Committed() { e.buf = nil }

// Cancel discards the buffer. It is safe to call with no edit open.
func (e *EditSession) Cancel() { e.buf = nil }
