package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/nhle/tareas/internal/model"
	"github.com/nhle/tareas/internal/tasks"
	"github.com/nhle/tareas/internal/theme"
)

var taskHeaders = []string{"ID", "", "PRIORITY", "TITLE", "GROUP", "STATUS", "CREATED"}

// writeTaskTable prints list as a bordered table.
func writeTaskTable(w io.Writer, list []model.Task, now time.Time) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "No tasks.")
		return err
	}

	rows := make([][]string, len(list))
	for i, t := range list {
		star := " "
		if t.Favorite {
			star = "★"
		}
		rows[i] = []string{
			strconv.Itoa(t.ID),
			star,
			t.Priority.Label(),
			t.Title,
			t.GroupLabel(),
			string(t.Status),
			tasks.RelativeTime(t.CreatedAt(), now),
		}
	}

	cell := lipgloss.NewStyle().Padding(0, 1)
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.ColorBorder)).
		Headers(taskHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return cell.Bold(true)
			}
			t := list[row]
			switch col {
			case 1:
				return cell.Inherit(theme.FavoriteStyle)
			case 2:
				return cell.Inherit(theme.PriorityStyle(t.Priority))
			case 5:
				return cell.Inherit(theme.StatusStyle(t.Status))
			}
			if t.IsFinished() {
				return cell.Inherit(theme.DimmedStyle)
			}
			return cell
		})

	_, err := fmt.Fprintln(w, tbl.Render())
	return err
}
