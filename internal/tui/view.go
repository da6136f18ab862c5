package tui

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/hylla/kanboard/internal/domain"
)

const (
	sidebarWidth   = 28
	emptyBoardText = "This board is empty. Create a new column to get started."
	createBoardCTA = "+ Create New Board"
)

// View renders the board, the open modal, and the toast.
func (m Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

// render renders the full screen as a string.
func (m Model) render() string {
	if !m.ready {
		return "loading..."
	}
	accent := lipgloss.Color("62")
	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")

	header := m.renderHeader(muted, dim)
	footer := m.renderFooter(muted, dim)

	var body string
	board, ok := m.activeBoard()
	switch {
	case !ok:
		body = m.renderEmptyCollection(accent, muted)
	default:
		body = m.renderBoard(board, accent, muted, dim)
	}
	if m.showSidebar {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(accent, muted, dim), body)
	}

	bodyHeight := lipgloss.Height(body)
	if m.height > 0 {
		bodyHeight = max(1, m.height-lipgloss.Height(header)-lipgloss.Height(footer))
		body = fitLines(body, bodyHeight)
	}
	content := header + "\n" + body + "\n" + footer

	if overlay := m.renderModal(accent, muted, dim, m.width-8); overlay != "" {
		height := lipgloss.Height(content)
		if m.height > 0 {
			height = m.height
		}
		content = overlayOnContent(content, overlay, max(1, m.width), max(1, height))
	}
	return content
}

// renderHeader renders the title line.
func (m Model) renderHeader(muted, dim color.Color) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	statusStyle := lipgloss.NewStyle().Foreground(dim)
	header := titleStyle.Render("kanboard")
	if board, ok := m.activeBoard(); ok {
		header += "  " + board.Name
		header += statusStyle.Render(fmt.Sprintf("  %d tasks", board.TaskCount()))
		if len(board.Columns) > 0 {
			header += lipgloss.NewStyle().Foreground(muted).Render("  n: + Add New Task")
		}
	}
	if kind := modalKindOf(m.modal); kind != 0 {
		header += statusStyle.Render("  [" + kind.String() + "]")
	}
	return header
}

// renderFooter renders the toast or status line and the help bubble.
func (m Model) renderFooter(muted, dim color.Color) string {
	line := lipgloss.NewStyle().Foreground(dim).Render(m.status)
	if m.toast != nil {
		line = renderToast(*m.toast)
	}
	helpBubble := m.help
	helpBubble.SetWidth(max(0, m.width-2))
	helpLine := lipgloss.NewStyle().
		Foreground(muted).
		BorderTop(true).
		BorderForeground(dim).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(m.keys))
	return line + "\n" + helpLine
}

// renderToast renders the success notification.
func renderToast(t toast) string {
	check := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")).Render("✓ " + t.title)
	return check + "  " + t.message
}

// renderSidebar renders the board list.
func (m Model) renderSidebar(accent, muted, dim color.Color) string {
	names := m.state.BoardNames()
	lines := []string{
		lipgloss.NewStyle().Foreground(muted).Render(fmt.Sprintf("ALL BOARDS (%d)", len(names))),
		"",
	}
	for _, name := range names {
		label := "  " + truncate(name, sidebarWidth-6)
		if name == m.state.Active {
			label = lipgloss.NewStyle().Bold(true).Foreground(accent).Render("▌ " + truncate(name, sidebarWidth-6))
		}
		lines = append(lines, label)
	}
	lines = append(lines, "", lipgloss.NewStyle().Foreground(accent).Render(createBoardCTA))
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, true, false, false).
		BorderForeground(dim).
		Width(sidebarWidth).
		MarginRight(1).
		Render(strings.Join(lines, "\n"))
}

// renderEmptyCollection renders the call to action shown when no boards exist.
func (m Model) renderEmptyCollection(accent, muted color.Color) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		"",
		lipgloss.NewStyle().Foreground(muted).Render(emptyBoardText),
		"",
		lipgloss.NewStyle().Bold(true).Foreground(accent).Render(createBoardCTA),
		lipgloss.NewStyle().Foreground(muted).Render("press N or enter"),
	)
}

// renderBoard renders the column grid with the optional "+ New Column" tile.
func (m Model) renderBoard(board domain.Board, accent, muted, dim color.Color) string {
	if len(board.Columns) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left,
			"",
			lipgloss.NewStyle().Foreground(muted).Render(emptyBoardText),
			"",
			lipgloss.NewStyle().Bold(true).Foreground(accent).Render("+ New Column"),
			lipgloss.NewStyle().Foreground(muted).Render("press c or enter"),
		)
	}
	boardWidth := m.width
	if m.showSidebar {
		boardWidth -= sidebarWidth + 2
	}
	slots := len(board.Columns)
	if board.CanAddColumn() {
		slots++
	}
	colWidth := columnWidthFor(boardWidth, slots)
	colHeight := m.columnHeight()

	views := make([]string, 0, slots)
	for idx, col := range board.Columns {
		views = append(views, columnView{
			column:       col,
			index:        idx,
			focused:      idx == m.selectedColumn,
			selectedTask: m.selectedTask,
			width:        colWidth,
			height:       colHeight,
		}.render(accent, muted, dim))
	}
	if board.CanAddColumn() {
		views = append(views, renderNewColumnTile(m.onNewColumnAffordance(), colWidth, colHeight, accent, muted, dim))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, views...)
}

// columnWidthFor returns the width of one column slot.
func columnWidthFor(boardWidth, slots int) int {
	if slots == 0 {
		return 24
	}
	w := 28
	if boardWidth > 0 {
		// border (2) + padding (2) + margin (1)
		const colOverhead = 5
		if candidate := (boardWidth - slots*colOverhead) / slots; candidate > 0 {
			w = candidate
		}
	}
	return clamp(w, 18, 42)
}

// columnHeight returns the height available to columns.
func (m Model) columnHeight() int {
	if m.height <= 0 {
		return 0
	}
	return max(6, m.height-6)
}

// renderModal renders the open modal box.
func (m Model) renderModal(accent, muted, dim color.Color, maxWidth int) string {
	if m.modal == nil {
		return ""
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1)
	if maxWidth > 0 {
		box = box.Width(clamp(maxWidth, 24, 76))
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	labelStyle := lipgloss.NewStyle().Foreground(muted)
	hintStyle := lipgloss.NewStyle().Foreground(dim)
	buttonStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	errStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))

	var lines []string
	var errText string
	switch md := m.modal.(type) {
	case boardForm:
		title, submit := md.titles()
		lines = append(lines, titleStyle.Render(title), "", labelStyle.Render("Board Name"), md.name.View(), "", labelStyle.Render("Board Columns"))
		for i, row := range md.columns {
			lines = append(lines, focusMarker(md.focus == i+1)+row.input.View())
		}
		if md.canAddColumn() {
			lines = append(lines, hintStyle.Render("ctrl+n + Add New Column"))
		}
		lines = append(lines, "", buttonStyle.Render(submit))
		lines = append(lines, hintStyle.Render("tab next • ctrl+x remove column • enter save • esc cancel"))
		errText = md.err
	case taskForm:
		title, submit := md.titles()
		lines = append(lines,
			titleStyle.Render(title), "",
			labelStyle.Render("Title"), md.title.View(), "",
			labelStyle.Render("Description"), md.description.View(), "",
			labelStyle.Render("Subtasks"),
		)
		for i, in := range md.subtasks {
			lines = append(lines, focusMarker(md.focus == i+2)+in.View())
		}
		lines = append(lines, hintStyle.Render("ctrl+n + Add New Subtask"), "", labelStyle.Render("Status"))
		status := md.status()
		if status == "" {
			status = "-"
		}
		lines = append(lines, focusMarker(md.focus == md.statusField())+"‹ "+status+" ›", "", buttonStyle.Render(submit))
		lines = append(lines, hintStyle.Render("tab next • ctrl+x remove subtask • ←/→ status • enter save • esc cancel"))
		errText = md.err
	case viewTaskModal:
		task := m.taskDraft
		lines = append(lines, titleStyle.Render(task.Title))
		if desc := m.markdown.render(task.Description, clamp(maxWidth, 24, 76)-4); desc != "" {
			lines = append(lines, "", desc)
		} else {
			lines = append(lines, "", hintStyle.Render("No description."))
		}
		lines = append(lines, "", labelStyle.Render("Subtasks ("+subtaskSummary(task)+")"))
		for i, sub := range task.Subtasks {
			mark := "[ ]"
			text := sub.Title
			if sub.IsCompleted {
				mark = "[x]"
				text = lipgloss.NewStyle().Strikethrough(true).Foreground(muted).Render(text)
			}
			lines = append(lines, focusMarker(i == md.cursor)+mark+" "+text)
		}
		lines = append(lines, "", labelStyle.Render("Current Status"), "‹ "+task.Status+" ›")
		lines = append(lines, "", hintStyle.Render("space toggle • s status • e edit • d delete • y copy • esc close"))
		errText = md.err
	case deleteTaskModal:
		lines = append(lines,
			errStyle.Render("Delete this task?"), "",
			"Are you sure you want to delete the task.",
			labelStyle.Render(m.taskDraft.Title), "",
			hintStyle.Render("y delete • n cancel"),
		)
		errText = md.err
	case deleteBoardModal:
		lines = append(lines,
			errStyle.Render("Delete this board?"), "",
			"Are you sure you want to delete the board "+md.name+".",
			"All columns and tasks in it will be removed.", "",
			hintStyle.Render("y delete • n cancel"),
		)
		errText = md.err
	default:
		return ""
	}
	if errText != "" {
		lines = append(lines, "", errStyle.Render(errText))
	}
	return box.Render(strings.Join(lines, "\n"))
}

// focusMarker returns the gutter marking the focused row.
func focusMarker(focused bool) string {
	if focused {
		return "› "
	}
	return "  "
}

// newModalInput constructs a modal text input.
func newModalInput(prompt, placeholder, value string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.CharLimit = limit
	if value != "" {
		in.SetValue(value)
	}
	return in
}

// clamp clamps the requested operation.
func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// fitLines pads or truncates content to exactly maxLines lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		lines = append(lines, make([]string, maxLines-len(lines))...)
	}
	return strings.Join(lines, "\n")
}

// overlayOnContent centers overlay above base on a fixed-size canvas.
func overlayOnContent(base, overlay string, width, height int) string {
	if width <= 0 || height <= 0 {
		if strings.TrimSpace(overlay) == "" {
			return base
		}
		return overlay + "\n\n" + base
	}
	base = fitLines(base, height)
	canvas := lipgloss.NewCanvas(width, height)
	baseLayer := lipgloss.NewLayer(base).X(0).Y(0).Z(0)
	centered := lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, overlay)
	overlayLayer := lipgloss.NewLayer(centered).X(0).Y(0).Z(10)
	canvas.Compose(baseLayer)
	canvas.Compose(overlayLayer)
	return canvas.Render()
}

// truncate shortens s to max runes with an ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	if max <= 1 {
		return string(rs[:max])
	}
	return string(rs[:max-1]) + "…"
}
