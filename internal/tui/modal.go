package tui

import (
	tea "charm.land/bubbletea/v2"
	"github.com/hylla/kanboard/internal/app"
)

// modalKind tags the open modal.
type modalKind int

// modalKind values.
const (
	modalAddBoard modalKind = iota + 1
	modalEditBoard
	modalEditTask
	modalAddTask
	modalViewTask
	modalDeleteTask
	modalDeleteBoard
)

// String returns the modal tag.
func (k modalKind) String() string {
	switch k {
	case modalAddBoard:
		return "addBoard"
	case modalEditBoard:
		return "edit"
	case modalEditTask:
		return "editTask"
	case modalAddTask:
		return "addTask"
	case modalViewTask:
		return "task"
	case modalDeleteTask:
		return "deleteTask"
	case modalDeleteBoard:
		return "deleteBoard"
	default:
		return ""
	}
}

// modal is one open overlay together with its payload.
type modal interface {
	kind() modalKind
}

// modalKindOf returns the tag of an open modal, or zero when none is open.
func modalKindOf(md modal) modalKind {
	if md == nil {
		return 0
	}
	return md.kind()
}

// deleteTaskModal confirms deletion of the task draft.
type deleteTaskModal struct {
	err string
}

func (deleteTaskModal) kind() modalKind { return modalDeleteTask }

// deleteBoardModal confirms deletion of one board.
type deleteBoardModal struct {
	name string
	err  string
}

func (deleteBoardModal) kind() modalKind { return modalDeleteBoard }

// withModalError attaches a dispatch error to the open modal.
func withModalError(md modal, text string) modal {
	switch v := md.(type) {
	case boardForm:
		v.err = text
		return v
	case taskForm:
		v.err = text
		return v
	case viewTaskModal:
		v.err = text
		return v
	case deleteTaskModal:
		v.err = text
		return v
	case deleteBoardModal:
		v.err = text
		return v
	default:
		return md
	}
}

// handleModalKey routes a key press to the open modal.
func (m Model) handleModalKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch md := m.modal.(type) {
	case boardForm:
		return m.handleBoardFormKey(md, msg)
	case taskForm:
		return m.handleTaskFormKey(md, msg)
	case viewTaskModal:
		return m.handleViewTaskKey(md, msg)
	case deleteTaskModal:
		switch msg.String() {
		case "y", "enter":
			return m, m.deleteTaskDraft()
		case "n", "esc":
			m.closeModal()
		}
		return m, nil
	case deleteBoardModal:
		switch msg.String() {
		case "y", "enter":
			return m, m.dispatch(app.DeleteBoard{Name: md.name}, "The board deleted")
		case "n", "esc":
			m.closeModal()
		}
		return m, nil
	default:
		m.closeModal()
		return m, nil
	}
}

// forwardToModal passes non-key messages such as cursor blinks to form inputs.
func (m Model) forwardToModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch md := m.modal.(type) {
	case boardForm:
		next, cmd := md.update(msg)
		m.modal = next
		return m, cmd
	case taskForm:
		next, cmd := md.update(msg)
		m.modal = next
		return m, cmd
	default:
		return m, nil
	}
}
