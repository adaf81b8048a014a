package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nhle/tareas/internal/model"
	"github.com/nhle/tareas/internal/tasks"
)

// listOpts are the filter flags shared by list and export.
type listOpts struct {
	search    string
	priority  string
	favorites bool
	sort      string
	desc      bool
	group     string
}

func addListFlags(cmd *cobra.Command, o *listOpts) {
	f := cmd.Flags()
	f.StringVar(&o.search, "search", "", "Only titles containing this text")
	f.StringVar(&o.priority, "priority", "", "alta, media, baja or todas")
	f.BoolVar(&o.favorites, "favorites", false, "Only favorite tasks")
	f.StringVar(&o.sort, "sort", "fecha", "fecha, titulo or prioridad")
	f.BoolVar(&o.desc, "desc", false, "Descending title order")
	f.StringVar(&o.group, "group", "", "Only tasks of this group")
}

// apply sets the view-model filters and group from the flags.
func (o listOpts) apply(vm *tasks.ViewModel) error {
	prio, ok := model.ParsePriority(o.priority)
	if !ok {
		return fmt.Errorf("unknown priority %q", o.priority)
	}
	sortMode, ok := tasks.ParseSortMode(o.sort)
	if !ok {
		return fmt.Errorf("unknown sort %q", o.sort)
	}
	vm.SetFilters(tasks.Filters{
		Text:          o.search,
		Priority:      prio,
		FavoritesOnly: o.favorites,
		Sort:          sortMode,
		Ascending:     !o.desc,
	})

	if o.group != "" {
		vm.SelectGroup(o.group)
		if vm.SelectedGroup() != o.group && o.group != model.DefaultGroup {
			return fmt.Errorf("no group named %q", o.group)
		}
	}
	return nil
}

func newListCmd(a *App) *cobra.Command {
	var opts listOpts

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the tasks of the logged-in user",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			vm, err := a.viewModel(cmd.Context())
			if err != nil {
				return err
			}
			if err := opts.apply(vm); err != nil {
				return err
			}
			return writeTaskTable(cmd.OutOrStdout(), vm.ForSelectedView(), a.now())
		},
	}
	addListFlags(cmd, &opts)
	return cmd
}

func newAddCmd(a *App) *cobra.Command {
	var fields tasks.NewFields
	var priority string

	cmd := &cobra.Command{
		Use:   "add TITLE",
		Short: "Create a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vm, err := a.viewModel(cmd.Context())
			if err != nil {
				return err
			}
			prio, ok := model.ParsePriority(priority)
			if !ok || prio == model.PriorityAll {
				return fmt.Errorf("unknown priority %q", priority)
			}
			fields.Title = args[0]
			fields.Priority = prio

			task, err := vm.ValidateNew(fields, a.now())
			if err != nil {
				return requestError(err)
			}
			if err := vm.SubmitNew(cmd.Context(), task); err != nil {
				return requestError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %q.\n", task.Title)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&priority, "priority", "media", "alta, media or baja")
	f.StringVar(&fields.Description, "description", "", "Task description (markdown)")
	f.StringVar(&fields.Group, "group", model.DefaultGroup, "Group name")
	return cmd
}

func newEditCmd(a *App) *cobra.Command {
	var title, priority, description, group string

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change the title, priority, description or group of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vm, task, err := a.lookupTask(cmd, args[0])
			if err != nil {
				return err
			}

			var prio model.Priority
			if cmd.Flags().Changed("priority") {
				p, ok := model.ParsePriority(priority)
				if !ok || p == model.PriorityAll {
					return fmt.Errorf("unknown priority %q", priority)
				}
				prio = p
			}

			edit := vm.Edit()
			edit.Begin(task)
			edit.Update(func(b *tasks.EditBuffer) {
				if cmd.Flags().Changed("title") {
					b.Title = title
				}
				if prio != "" {
					b.Priority = prio
				}
				if cmd.Flags().Changed("description") {
					b.Description = description
				}
				if cmd.Flags().Changed("group") {
					b.Group = group
				}
			})
			if err := edit.Commit(cmd.Context(), task); err != nil {
				return requestError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved task %d.\n", task.ID)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&title, "title", "", "New title")
	f.StringVar(&priority, "priority", "", "alta, media or baja")
	f.StringVar(&description, "description", "", "New description")
	f.StringVar(&group, "group", "", "New group (General for none)")
	return cmd
}

// confirmFinish asks before finishing a task.
var confirmFinish = func(title string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(fmt.Sprintf("Finish %q?", title)).
		Affirmative("Finish").
		Negative("Cancel").
		Value(&ok).
		Run()
	return ok, err
}

func newDoneCmd(a *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "done ID",
		Short: "Mark a task as finished",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vm, task, err := a.lookupTask(cmd, args[0])
			if err != nil {
				return err
			}
			if task.IsFinished() {
				fmt.Fprintf(cmd.OutOrStdout(), "Task %d is already finished.\n", task.ID)
				return nil
			}
			if !yes {
				ok, err := confirmFinish(task.Title)
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
			}
			if err := vm.Finalize(cmd.Context(), task); err != nil {
				return requestError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Finished task %d.\n", task.ID)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newFavCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "fav ID",
		Short: "Star or unstar a task on this machine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vm, task, err := a.lookupTask(cmd, args[0])
			if err != nil {
				return err
			}
			fav, err := vm.ToggleFavorite(cmd.Context(), task.ID)
			if err != nil {
				return err
			}
			if fav {
				fmt.Fprintf(cmd.OutOrStdout(), "Starred task %d.\n", task.ID)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Unstarred task %d.\n", task.ID)
			}
			return nil
		},
	}
}

// lookupTask loads the task list and finds the task named by arg.
func (a *App) lookupTask(cmd *cobra.Command, arg string) (*tasks.ViewModel, model.Task, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return nil, model.Task{}, fmt.Errorf("invalid task id %q", arg)
	}
	vm, err := a.viewModel(cmd.Context())
	if err != nil {
		return nil, model.Task{}, err
	}
	task, ok := vm.Task(id)
	if !ok {
		return nil, model.Task{}, fmt.Errorf("task %d: %w", id, tasks.ErrUnknownTask)
	}
	return vm, task, nil
}
