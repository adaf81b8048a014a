package tasklist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tareas/internal/model"
	"github.com/nhle/tareas/internal/tasks"
	"github.com/nhle/tareas/internal/theme"
)

// TaskItem wraps a model.Task so it can be used in a bubbles/list.
type TaskItem struct {
	Task model.Task
}

// FilterValue returns the string used for filtering.
func (i TaskItem) FilterValue() string { return i.Task.Title }

// Title returns the task title for the list.
func (i TaskItem) Title() string { return i.Task.Title }

// Description returns a short summary line for the list.
func (i TaskItem) Description() string {
	parts := []string{
		i.Task.Priority.Label(),
		string(i.Task.Status),
		i.Task.GroupLabel(),
	}
	return strings.Join(parts, " | ")
}

// ItemDelegate implements list.ItemDelegate for rendering task rows.
type ItemDelegate struct {
	// now is the reference time for the relative creation column. It is
	// advanced by the once-a-minute tick.
	now time.Time
}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single task row.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ti, ok := item.(TaskItem)
	if !ok {
		return
	}
	fmt.Fprint(w, d.renderRow(ti.Task, index == m.Index()))
}

func (d ItemDelegate) renderRow(t model.Task, isSelected bool) string {
	star := "☆"
	if t.Favorite {
		star = theme.FavoriteStyle.Render("★")
	}

	priBadge := theme.PriorityStyle(t.Priority).
		Width(6).
		Render(priorityLabel(t.Priority))

	group := ""
	if t.Group != "" {
		group = " " + theme.GroupStyle.Render("["+t.Group+"]")
	}

	statusBadge := theme.StatusStyle(t.Status).Render(string(t.Status))

	timeStr := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Render(tasks.RelativeTime(t.CreatedAt(), d.now))

	line := fmt.Sprintf("%s %s %s%s %s %s",
		star, priBadge, t.Title, group, statusBadge, timeStr)

	if t.IsFinished() {
		line = theme.DimmedStyle.Render(line)
	}

	if isSelected {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}

// priorityLabel returns a short label for the priority column.
func priorityLabel(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return "HIGH"
	case model.PriorityMedium:
		return "MED"
	case model.PriorityLow:
		return "LOW"
	default:
		return "?"
	}
}
