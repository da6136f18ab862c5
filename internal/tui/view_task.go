package tui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/glamour"
	"github.com/hylla/kanboard/internal/app"
	"github.com/hylla/kanboard/internal/domain"
)

// viewTaskModal shows the task draft and edits its subtasks and status in place.
type viewTaskModal struct {
	cursor int
	dirty  bool
	err    string
}

func (viewTaskModal) kind() modalKind { return modalViewTask }

// handleViewTaskKey handles keys for the view-task modal.
func (m Model) handleViewTaskKey(v viewTaskModal, msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		if !v.dirty {
			m.closeModal()
			return m, nil
		}
		m.modal = v
		return m, m.dispatch(app.EditTask{
			Task:      m.taskDraft,
			BoardName: m.state.Active,
			Indexes:   m.taskLocator,
		}, "The task edited")
	case "j", "down":
		v.cursor = clamp(v.cursor+1, 0, max(0, len(m.taskDraft.Subtasks)-1))
	case "k", "up":
		v.cursor = clamp(v.cursor-1, 0, max(0, len(m.taskDraft.Subtasks)-1))
	case "space", " ", "enter", "x":
		m.taskDraft = m.taskDraft.Clone()
		if m.taskDraft.ToggleSubtask(v.cursor) {
			v.dirty = true
		}
	case "s", "l", "right":
		v.dirty = m.cycleDraftStatus(1) || v.dirty
	case "S", "h", "left":
		v.dirty = m.cycleDraftStatus(-1) || v.dirty
	case "e":
		return m.openTaskForm(taskFormEdit)
	case "d":
		return m.requestDeleteTask()
	case "y":
		m.modal = v
		return m, m.copyTask()
	}
	m.modal = v
	return m, nil
}

// cycleDraftStatus moves the task draft to the next or previous column status.
func (m *Model) cycleDraftStatus(step int) bool {
	board, ok := m.activeBoard()
	if !ok {
		return false
	}
	statuses := board.Statuses()
	if len(statuses) < 2 {
		return false
	}
	idx := 0
	for i, status := range statuses {
		if status == m.taskDraft.Status {
			idx = i
			break
		}
	}
	m.taskDraft.Status = statuses[(idx+step+len(statuses))%len(statuses)]
	return true
}

// subtaskSummary renders the "x of y" progress line.
func subtaskSummary(task domain.Task) string {
	return fmt.Sprintf("%d of %d subtasks", task.CompletedCount(), len(task.Subtasks))
}

// taskClipboardText renders a task as markdown for the clipboard.
func taskClipboardText(task domain.Task) string {
	var b strings.Builder
	b.WriteString("# " + task.Title + "\n")
	if desc := strings.TrimSpace(task.Description); desc != "" {
		b.WriteString("\n" + desc + "\n")
	}
	if len(task.Subtasks) > 0 {
		b.WriteString("\n")
		for _, sub := range task.Subtasks {
			mark := " "
			if sub.IsCompleted {
				mark = "x"
			}
			b.WriteString("- [" + mark + "] " + sub.Title + "\n")
		}
	}
	if task.Status != "" {
		b.WriteString("\nStatus: " + task.Status + "\n")
	}
	return b.String()
}

// markdownRenderer renders task descriptions and caches the last result per width.
type markdownRenderer struct {
	width    int
	renderer *glamour.TermRenderer
	source   string
	output   string
}

// render converts markdown into styled terminal text wrapped at width.
func (r *markdownRenderer) render(markdown string, width int) string {
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return ""
	}
	wrapWidth := max(width, 24)
	if r.renderer == nil || r.width != wrapWidth {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(wrapWidth),
		)
		if err != nil {
			return markdown
		}
		r.renderer = renderer
		r.width = wrapWidth
		r.source = ""
	}
	if r.source == markdown && r.output != "" {
		return r.output
	}
	rendered, err := r.renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	r.source = markdown
	r.output = strings.Trim(rendered, "\n")
	return r.output
}
