package tui

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/hylla/kanboard/internal/domain"
)

// columnPalette colors the status dot of each column by position.
var columnPalette = []string{"45", "141", "42", "214", "203", "111"}

// columnView renders one column of the active board.
type columnView struct {
	column       domain.Column
	index        int
	focused      bool
	selectedTask int
	width        int
	height       int
}

// columnDotColor returns the status dot color for a column position.
func columnDotColor(idx int) color.Color {
	return lipgloss.Color(columnPalette[idx%len(columnPalette)])
}

// render renders the column header and its task cards.
func (c columnView) render(accent, muted, dim color.Color) string {
	border := dim
	if c.focused {
		border = accent
	}
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		MarginRight(1).
		Width(c.width)
	dot := lipgloss.NewStyle().Foreground(columnDotColor(c.index)).Render("●")
	header := lipgloss.NewStyle().Bold(true).Foreground(muted).
		Render(fmt.Sprintf("%s (%d)", strings.ToUpper(c.column.Name), len(c.column.Tasks)))

	innerWidth := max(1, c.width-4)
	lines := []string{dot + " " + header, ""}
	if len(c.column.Tasks) == 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(dim).Render("(empty)"))
	}
	for taskIdx, task := range c.column.Tasks {
		lines = append(lines, renderTaskCard(task, c.focused && taskIdx == c.selectedTask, innerWidth, accent, muted, dim))
	}
	content := strings.Join(lines, "\n")
	if c.height > 0 {
		content = fitLines(content, max(1, c.height-2))
	}
	return style.Render(content)
}

// renderTaskCard renders one task title with its subtask progress.
func renderTaskCard(task domain.Task, selected bool, width int, accent, muted, dim color.Color) string {
	border := dim
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	if selected {
		border = accent
		titleStyle = titleStyle.Foreground(lipgloss.Color("212"))
	}
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(width)
	body := titleStyle.Render(truncate(task.Title, max(1, width-4))) + "\n" +
		lipgloss.NewStyle().Foreground(muted).Render(subtaskSummary(task))
	return card.Render(body)
}

// renderNewColumnTile renders the "+ New Column" affordance.
func renderNewColumnTile(focused bool, width, height int, accent, muted, dim color.Color) string {
	border := dim
	label := lipgloss.NewStyle().Bold(true).Foreground(muted)
	if focused {
		border = accent
		label = label.Foreground(accent)
	}
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Width(width)
	inner := max(3, height-2)
	return style.Render(lipgloss.Place(max(1, width-2), inner, lipgloss.Center, lipgloss.Center, label.Render("+ New Column")))
}
