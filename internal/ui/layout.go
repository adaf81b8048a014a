package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tareas/internal/theme"
)

// Layout manages the terminal frame dimensions.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
// HeaderHeight and StatusBarHeight default to 1.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentWidth returns the full available width.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height available for the main content area,
// accounting for the header and status bar.
func (l Layout) ContentHeight() int {
	h := l.Height - l.HeaderHeight - l.StatusBarHeight
	if h < 0 {
		return 0
	}
	return h
}

// RenderHeader renders the top bar: title on the left, the active filters
// or user on the right.
func (l Layout) RenderHeader(title, right string) string {
	titleRendered := theme.HeaderStyle.Render(title)
	rightRendered := theme.HeaderStyle.
		Align(lipgloss.Right).
		Render(right)

	return joinFilled(l.Width, theme.HeaderStyle, titleRendered, rightRendered)
}

// RenderStatusBar renders the bottom bar. A non-empty message replaces
// the key hints; isErr paints it as an error.
func (l Layout) RenderStatusBar(hints, message string, isErr bool) string {
	text := hints
	style := theme.StatusBarStyle
	if message != "" {
		text = message
		if isErr {
			style = style.Foreground(theme.ColorRed).Bold(true)
		}
	}
	return joinFilled(l.Width, theme.StatusBarStyle, style.Render(text), "")
}

// RenderWithFrame composes a full terminal view by vertically joining
// the header, content area, and status bar.
func (l Layout) RenderWithFrame(
	header string,
	content string,
	statusBar string,
) string {
	content = lipgloss.NewStyle().
		Height(l.ContentHeight()).
		MaxHeight(l.ContentHeight()).
		Render(content)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		content,
		statusBar,
	)
}

// joinFilled pads between left and right with the bar background so the
// bar spans width.
func joinFilled(width int, bar lipgloss.Style, left, right string) string {
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	filler := bar.Render(
		lipgloss.NewStyle().
			Width(gap).
			Background(bar.GetBackground()).
			Render(""),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, filler, right)
}
