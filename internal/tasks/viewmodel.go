// Package tasks holds the in-memory view of one user's task list: the
// loaded collection, the active filters and group selection, and the
// single edit in progress.
//
// A ViewModel is not safe for concurrent use. Methods documented as safe to
// call off the event loop (Fetch, SubmitNew, SubmitFinish, EditSession.Submit)
// only talk to the gateway and never touch view-model state; their results
// are folded back in with Apply or Committed.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/nhle/tareas/internal/api"
	"github.com/nhle/tareas/internal/model"
)

// Gateway is the part of the API client the view-model needs.
type Gateway interface {
	ListTasks(ctx context.Context, userID int) (*model.TaskResponse, error)
	CreateTask(ctx context.Context, task model.NewTask) (*model.TaskResponse, error)
	UpdateTask(ctx context.Context, patch model.TaskPatch) (*model.TaskResponse, error)
}

// FavoriteStore persists the set of starred task ids.
type FavoriteStore interface {
	FavoriteIDs(ctx context.Context) map[int]struct{}
	SetFavoriteIDs(ctx context.Context, ids map[int]struct{}) error
}

// ErrUnknownTask is returned when an operation names a task id that is not
// in the loaded collection.
var ErrUnknownTask = errors.New("task not in the current list")

// errNoData is a status-0 envelope that carried no task list.
var errNoData = errors.New("response has no data")

// LoadResult is the outcome of Fetch, applied with Apply.
type LoadResult struct {
	UserID int
	Tasks  []model.Task
	Err    error
}

// ViewModel owns the task collection of the active user.
type ViewModel struct {
	gw   Gateway
	favs FavoriteStore
	lang language.Tag

	userID        int
	tasks         []model.Task
	groups        []string
	selectedGroup string
	filters       Filters

	edit *EditSession
}

// New creates an empty view-model.
func New(gw Gateway, favs FavoriteStore) *ViewModel {
	vm := &ViewModel{
		gw:            gw,
		favs:          favs,
		lang:          language.Spanish,
		selectedGroup: model.DefaultGroup,
		filters:       DefaultFilters(),
	}
	vm.edit = &EditSession{vm: vm}
	return vm
}

// SetLanguage changes the collation used for title sorting.
func (vm *ViewModel) SetLanguage(tag language.Tag) { vm.lang = tag }

// Edit returns the edit session bound to this view-model.
func (vm *ViewModel) Edit() *EditSession { return vm.edit }

// UserID returns the user whose tasks are loaded (0 before any load).
func (vm *ViewModel) UserID() int { return vm.userID }

// Len returns the size of the loaded collection.
func (vm *ViewModel) Len() int { return len(vm.tasks) }

// Task looks a task up by id.
func (vm *ViewModel) Task(id int) (model.Task, bool) {
	for _, t := range vm.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

// Fetch requests the task list of userID. It touches neither the
// view-model nor the favorite store, so it may run off the event loop.
func (vm *ViewModel) Fetch(ctx context.Context, userID int) LoadResult {
	res := LoadResult{UserID: userID}

	resp, err := vm.gw.ListTasks(ctx, userID)
	if err != nil {
		res.Err = err
		return res
	}
	if err := api.Check(resp.Status, resp.Message); err != nil {
		res.Err = err
		return res
	}
	if resp.Data == nil {
		res.Err = errNoData
		return res
	}

	res.Tasks = make([]model.Task, len(resp.Data))
	copy(res.Tasks, resp.Data)
	return res
}

// Apply replaces the collection with the outcome of a Fetch and tags
// favorites from the store as it stands now, so a toggle made while the
// request was in flight is kept. A failed fetch leaves an empty list and
// no groups. Either way any edit in progress is discarded.
func (vm *ViewModel) Apply(ctx context.Context, res LoadResult) {
	vm.userID = res.UserID
	vm.edit.Cancel()

	if res.Err != nil {
		vm.tasks = nil
		vm.groups = nil
		vm.selectedGroup = model.DefaultGroup
		return
	}

	favs := vm.favs.FavoriteIDs(ctx)
	vm.tasks = make([]model.Task, len(res.Tasks))
	for i, t := range res.Tasks {
		_, t.Favorite = favs[t.ID]
		vm.tasks[i] = t
	}
	vm.refreshGroups()
	sort.SliceStable(vm.tasks, func(i, j int) bool {
		return vm.tasks[i].CreatedAt().Before(vm.tasks[j].CreatedAt())
	})
}

// Load fetches and applies in one step. The returned error is informative
// only: the view-model has already been reset when it is non-nil.
func (vm *ViewModel) Load(ctx context.Context, userID int) error {
	res := vm.Fetch(ctx, userID)
	vm.Apply(ctx, res)
	if res.Err != nil {
		return fmt.Errorf("loading tasks for user %d: %w", userID, res.Err)
	}
	return nil
}

// refreshGroups recomputes the group set in first-seen order and clamps
// the selection.
func (vm *ViewModel) refreshGroups() {
	seen := make(map[string]bool)
	vm.groups = vm.groups[:0]
	for _, t := range vm.tasks {
		g := t.Group
		if strings.TrimSpace(g) == "" || g == model.DefaultGroup || seen[g] {
			continue
		}
		seen[g] = true
		vm.groups = append(vm.groups, g)
	}
	if vm.selectedGroup != model.DefaultGroup && !seen[vm.selectedGroup] {
		vm.selectedGroup = model.DefaultGroup
	}
}

// Groups returns the non-default groups, including any added with
// AddGroup since the last load.
func (vm *ViewModel) Groups() []string {
	out := make([]string, len(vm.groups))
	copy(out, vm.groups)
	return out
}

// AddGroup offers a new group name before any task uses it. Blank and
// already known names are ignored. The group lasts until the next load
// unless a task is saved into it.
func (vm *ViewModel) AddGroup(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || name == model.DefaultGroup {
		return false
	}
	for _, g := range vm.groups {
		if g == name {
			return false
		}
	}
	vm.groups = append(vm.groups, name)
	return true
}

// SelectGroup switches the grouped view. Unknown names fall back to the
// default group.
func (vm *ViewModel) SelectGroup(name string) {
	for _, g := range vm.groups {
		if g == name {
			vm.selectedGroup = name
			return
		}
	}
	vm.selectedGroup = model.DefaultGroup
}

// SelectedGroup returns the group currently shown.
func (vm *ViewModel) SelectedGroup() string { return vm.selectedGroup }

// Visible returns the filtered and sorted projection of the collection.
// The result is a fresh slice; the collection is not modified.
func (vm *ViewModel) Visible() []model.Task {
	f := vm.filters
	needle := strings.ToLower(f.Text)

	out := make([]model.Task, 0, len(vm.tasks))
	for _, t := range vm.tasks {
		if !strings.Contains(strings.ToLower(t.Title), needle) {
			continue
		}
		if f.Priority != model.PriorityAll && f.Priority != "" && t.Priority != f.Priority {
			continue
		}
		if f.FavoritesOnly && !t.Favorite {
			continue
		}
		out = append(out, t)
	}

	switch f.Sort {
	case SortTitle:
		col := collate.New(vm.lang)
		sort.SliceStable(out, func(i, j int) bool {
			c := col.CompareString(out[i].Title, out[j].Title)
			if f.Ascending {
				return c < 0
			}
			return c > 0
		})
	case SortPriority:
		// Rank order regardless of direction.
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Priority.Rank() < out[j].Priority.Rank()
		})
	}
	return out
}

// InGroup is Visible restricted to tasks stored with exactly group.
func (vm *ViewModel) InGroup(group string) []model.Task {
	all := vm.Visible()
	out := all[:0]
	for _, t := range all {
		if t.Group == group {
			out = append(out, t)
		}
	}
	return out
}

// ForSelectedView returns what the list screen shows for the selected
// group. The default group shows every visible task.
func (vm *ViewModel) ForSelectedView() []model.Task {
	if vm.selectedGroup == model.DefaultGroup {
		return vm.Visible()
	}
	return vm.InGroup(vm.selectedGroup)
}

// NewFields is what the user typed into the new-task form.
type NewFields struct {
	Title       string
	Priority    model.Priority
	Description string
	// Group is the displayed label; DefaultGroup means no group.
	Group string
}

// ValidateNew checks fields and builds the create payload, stamped with
// today's date and the active status.
func (vm *ViewModel) ValidateNew(fields NewFields, today time.Time) (model.NewTask, error) {
	title := strings.TrimSpace(fields.Title)
	prio := model.Priority(strings.TrimSpace(string(fields.Priority)))

	if title == "" || prio == "" {
		return model.NewTask{}, &api.ValidationError{
			Field:   "titulo",
			Message: "Title and priority are required.",
		}
	}
	if prio.Rank() > model.PriorityLow.Rank() {
		return model.NewTask{}, &api.ValidationError{
			Field:   "prioridad",
			Message: fmt.Sprintf("Unknown priority %q.", prio),
		}
	}

	return model.NewTask{
		Title:        title,
		Priority:     prio,
		Description:  strings.TrimSpace(fields.Description),
		Group:        model.StoredGroup(strings.TrimSpace(fields.Group)),
		UserID:       vm.userID,
		CreationDate: today.Format(model.DateLayout),
		Status:       model.StatusActive,
	}, nil
}

// SubmitNew sends a validated task. It may run off the event loop.
func (vm *ViewModel) SubmitNew(ctx context.Context, task model.NewTask) error {
	resp, err := vm.gw.CreateTask(ctx, task)
	if err != nil {
		return err
	}
	return api.Check(resp.Status, resp.Message)
}

// Create validates, submits and reloads. Nothing is inserted locally
// before the server accepts the task.
func (vm *ViewModel) Create(ctx context.Context, fields NewFields) error {
	task, err := vm.ValidateNew(fields, time.Now())
	if err != nil {
		return err
	}
	if err := vm.SubmitNew(ctx, task); err != nil {
		return err
	}
	vm.reload(ctx)
	return nil
}

// SubmitFinish marks task id as finished on the server. It may run off
// the event loop. Asking the user first is the caller's job.
func (vm *ViewModel) SubmitFinish(ctx context.Context, id int) error {
	resp, err := vm.gw.UpdateTask(ctx, model.FinishPatch(id))
	if err != nil {
		return err
	}
	return api.Check(resp.Status, resp.Message)
}

// Finalize marks task as finished and reloads.
func (vm *ViewModel) Finalize(ctx context.Context, task model.Task) error {
	if err := vm.SubmitFinish(ctx, task.ID); err != nil {
		return err
	}
	vm.reload(ctx)
	return nil
}

// ToggleFavorite flips the favorite flag of task id in memory and saves the
// updated favorite set. No request is sent to the server. It returns the
// new flag; an error means the flag changed but could not be saved.
func (vm *ViewModel) ToggleFavorite(ctx context.Context, id int) (bool, error) {
	idx := -1
	for i := range vm.tasks {
		if vm.tasks[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, ErrUnknownTask
	}

	fav := !vm.tasks[idx].Favorite
	vm.tasks[idx].Favorite = fav

	ids := vm.favs.FavoriteIDs(ctx)
	if fav {
		ids[id] = struct{}{}
	} else {
		delete(ids, id)
	}
	if err := vm.favs.SetFavoriteIDs(ctx, ids); err != nil {
		return fav, fmt.Errorf("saving favorites: %w", err)
	}
	return fav, nil
}

// Clear forgets everything about the current user (logout).
func (vm *ViewModel) Clear() {
	vm.userID = 0
	vm.tasks = nil
	vm.groups = nil
	vm.selectedGroup = model.DefaultGroup
	vm.edit.Cancel()
}

func (vm *ViewModel) reload(ctx context.Context) {
	if err := vm.Load(ctx, vm.userID); err != nil {
		log.Printf("tasks: reload after change: %v", err)
	}
}
