package app

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/tareas/internal/export"
	"github.com/nhle/tareas/internal/model"
	"github.com/nhle/tareas/internal/session"
	"github.com/nhle/tareas/internal/tasks"
	"github.com/nhle/tareas/internal/ui/command"
)

// executeCommand runs a parsed palette command against the view-model.
func (m *Model) executeCommand(c command.CommandMsg) tea.Cmd {
	switch c.Name {
	case command.CmdGroup:
		m.vm.SelectGroup(c.Arg)
		m.taskList.Refresh()
		if got := m.vm.SelectedGroup(); got != c.Arg && c.Arg != model.DefaultGroup {
			m.setErrorText(fmt.Sprintf("no group named %q", c.Arg))
			return nil
		}
		m.setInfo("Group: " + m.vm.SelectedGroup())

	case command.CmdAddGroup:
		if !m.vm.AddGroup(c.Arg) {
			m.setErrorText(fmt.Sprintf("group %q already exists", strings.TrimSpace(c.Arg)))
			return nil
		}
		m.groupsView.Reload()
		m.setInfo("Added group " + strings.TrimSpace(c.Arg) + ".")

	case command.CmdSearch:
		m.vm.SetText(c.Arg)
		m.taskList.Refresh()
		m.clearStatus()

	case command.CmdSort:
		return m.applySort(c.Arg)

	case command.CmdPriority:
		p, ok := model.ParsePriority(c.Arg)
		if !ok {
			m.setErrorText(fmt.Sprintf("unknown priority %q", c.Arg))
			return nil
		}
		f := m.vm.Filters()
		f.Priority = p
		m.vm.SetFilters(f)
		m.taskList.Refresh()
		m.clearStatus()

	case command.CmdTheme:
		mode := m.mode.Toggle()
		if c.Arg != "" {
			parsed, err := session.ParseMode(c.Arg)
			if err != nil {
				m.setErrorText(err.Error())
				return nil
			}
			mode = parsed
		}
		m.setTheme(mode)

	case command.CmdExport:
		return m.startExport(c.Arg)

	case command.CmdReload:
		m.setInfo("Reloading...")
		return m.loadTasks(m.userID)

	case command.CmdLogout:
		next, cmd, _ := m.logout()
		*m = next.(Model)
		return cmd

	case command.CmdQuit:
		return tea.Quit
	}
	return nil
}

// applySort handles "sort titulo [asc|desc]".
func (m *Model) applySort(arg string) tea.Cmd {
	fields := strings.Fields(arg)
	if len(fields) == 0 {
		m.setErrorText(fmt.Sprintf("sort needs a mode"))
		return nil
	}
	mode, ok := tasks.ParseSortMode(strings.ToLower(fields[0]))
	if !ok {
		m.setErrorText(fmt.Sprintf("unknown sort %q", fields[0]))
		return nil
	}

	f := m.vm.Filters()
	f.Sort = mode
	if len(fields) > 1 {
		switch strings.ToLower(fields[1]) {
		case "asc":
			f.Ascending = true
		case "desc":
			f.Ascending = false
		default:
			m.setErrorText(fmt.Sprintf("unknown direction %q (want asc or desc)", fields[1]))
			return nil
		}
	}
	m.vm.SetFilters(f)
	m.taskList.Refresh()
	m.clearStatus()
	return nil
}

// startExport handles "export FORMAT [PATH]". The visible tasks of the
// selected group are written.
func (m *Model) startExport(arg string) tea.Cmd {
	fields := strings.Fields(arg)
	if len(fields) == 0 {
		m.setErrorText(fmt.Sprintf("export needs a format"))
		return nil
	}
	format, err := export.ParseFormat(fields[0])
	if err != nil {
		m.setErrorText(err.Error())
		return nil
	}
	now := m.now()
	path := defaultExportPath(format, now)
	if len(fields) > 1 {
		path = strings.Join(fields[1:], " ")
	}
	m.setInfo("Exporting...")
	return exportTasks(path, format, m.vm.ForSelectedView(), now)
}
