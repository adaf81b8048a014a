package tasks

import "github.com/nhle/tareas/internal/model"

// SortMode selects how Visible orders tasks.
type SortMode string

const (
	// SortCreated keeps the creation order established at load.
	SortCreated  SortMode = "fecha"
	SortTitle    SortMode = "titulo"
	SortPriority SortMode = "prioridad"
)

var sortModes = []SortMode{SortCreated, SortTitle, SortPriority}

// Label returns the display name of the sort mode.
func (s SortMode) Label() string {
	switch s {
	case SortTitle:
		return "Title"
	case SortPriority:
		return "Priority"
	default:
		return "Created"
	}
}

// ParseSortMode accepts the stored name or the English label.
func ParseSortMode(s string) (SortMode, bool) {
	switch s {
	case "", "fecha", "date", "created":
		return SortCreated, true
	case "titulo", "title":
		return SortTitle, true
	case "prioridad", "priority":
		return SortPriority, true
	}
	return "", false
}

// Filters are the list controls.
type Filters struct {
	Text          string
	Priority      model.Priority
	FavoritesOnly bool
	Sort          SortMode
	Ascending     bool
}

// DefaultFilters shows everything in creation order.
func DefaultFilters() Filters {
	return Filters{
		Priority:  model.PriorityAll,
		Sort:      SortCreated,
		Ascending: true,
	}
}

// Filters returns the current filters.
func (vm *ViewModel) Filters() Filters { return vm.filters }

// SetFilters replaces all filters at once.
func (vm *ViewModel) SetFilters(f Filters) {
	if f.Priority == "" {
		f.Priority = model.PriorityAll
	}
	if f.Sort == "" {
		f.Sort = SortCreated
	}
	vm.filters = f
}

// SetText sets the title search text.
func (vm *ViewModel) SetText(text string) { vm.filters.Text = text }

// CycleSort advances created -> title -> priority -> created.
func (vm *ViewModel) CycleSort() SortMode {
	for i, m := range sortModes {
		if m == vm.filters.Sort {
			vm.filters.Sort = sortModes[(i+1)%len(sortModes)]
			return vm.filters.Sort
		}
	}
	vm.filters.Sort = SortCreated
	return vm.filters.Sort
}

// ToggleDirection flips ascending/descending. Only the title sort uses it.
func (vm *ViewModel) ToggleDirection() bool {
	vm.filters.Ascending = !vm.filters.Ascending
	return vm.filters.Ascending
}

// CyclePriority advances all -> high -> medium -> low -> all.
func (vm *ViewModel) CyclePriority() model.Priority {
	order := append([]model.Priority{model.PriorityAll}, model.Priorities...)
	for i, p := range order {
		if p == vm.filters.Priority {
			vm.filters.Priority = order[(i+1)%len(order)]
			return vm.filters.Priority
		}
	}
	vm.filters.Priority = model.PriorityAll
	return vm.filters.Priority
}

// ToggleFavoritesOnly flips the favorites-only filter.
func (vm *ViewModel) ToggleFavoritesOnly() bool {
	vm.filters.FavoritesOnly = !vm.filters.FavoritesOnly
	return vm.filters.FavoritesOnly
}
