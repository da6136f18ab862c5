package tui

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/hylla/kanboard/internal/app"
	"github.com/hylla/kanboard/internal/domain"
)

// taskFormMode selects between adding and editing a task.
type taskFormMode int

// taskFormMode values.
const (
	taskFormEdit taskFormMode = iota
	taskFormAdd
)

// taskForm edits a task draft's title, description, subtasks and status.
type taskForm struct {
	mode        taskFormMode
	base        domain.Task
	title       textinput.Model
	description textinput.Model
	subtasks    []textinput.Model
	completed   []bool
	statuses    []string
	statusIdx   int
	focus       int
	err         string
}

func (f taskForm) kind() modalKind {
	if f.mode == taskFormAdd {
		return modalAddTask
	}
	return modalEditTask
}

// newTaskForm builds a form over a copy of the draft.
func newTaskForm(mode taskFormMode, draft domain.Task, statuses []string) (taskForm, tea.Cmd) {
	f := taskForm{
		mode:        mode,
		base:        draft.Clone(),
		title:       newModalInput("", "e.g. Take coffee break", draft.Title, 120),
		description: newModalInput("", "e.g. It's always good to take a break.", draft.Description, 500),
		statuses:    append([]string(nil), statuses...),
	}
	for _, sub := range draft.Subtasks {
		f.subtasks = append(f.subtasks, newModalInput("", "e.g. Make coffee", sub.Title, 120))
		f.completed = append(f.completed, sub.IsCompleted)
	}
	for i, status := range f.statuses {
		if status == draft.Status {
			f.statusIdx = i
			break
		}
	}
	cmd := f.focusField(0)
	return f, cmd
}

// titles returns the heading and submit label.
func (f taskForm) titles() (string, string) {
	if f.mode == taskFormAdd {
		return "Add New Task", "Create Task"
	}
	return "Edit Task", "Save Changes"
}

// statusField returns the index of the status selector.
func (f taskForm) statusField() int {
	return 2 + len(f.subtasks)
}

// status returns the selected status, or empty when the board has no columns.
func (f taskForm) status() string {
	if f.statusIdx < 0 || f.statusIdx >= len(f.statuses) {
		return ""
	}
	return f.statuses[f.statusIdx]
}

// focusField focuses one field and blurs the rest.
func (f *taskForm) focusField(idx int) tea.Cmd {
	idx = clamp(idx, 0, f.statusField())
	f.focus = idx
	f.title.Blur()
	f.description.Blur()
	for i := range f.subtasks {
		f.subtasks[i].Blur()
	}
	switch {
	case idx == 0:
		return f.title.Focus()
	case idx == 1:
		return f.description.Focus()
	case idx < f.statusField():
		return f.subtasks[idx-2].Focus()
	default:
		return nil
	}
}

// addSubtask appends a blank subtask row and focuses it.
func (f *taskForm) addSubtask() tea.Cmd {
	f.subtasks = append(f.subtasks, newModalInput("", "e.g. Drink coffee & smile", "", 120))
	f.completed = append(f.completed, false)
	return f.focusField(1 + len(f.subtasks))
}

// removeFocusedSubtask drops the focused subtask row.
func (f *taskForm) removeFocusedSubtask() tea.Cmd {
	idx := f.focus - 2
	if idx < 0 || idx >= len(f.subtasks) {
		return nil
	}
	f.subtasks = append(f.subtasks[:idx:idx], f.subtasks[idx+1:]...)
	f.completed = append(f.completed[:idx:idx], f.completed[idx+1:]...)
	return f.focusField(f.focus)
}

// cycleStatus moves the status selector by step, wrapping around.
func (f *taskForm) cycleStatus(step int) {
	if len(f.statuses) == 0 {
		return
	}
	f.statusIdx = (f.statusIdx + step + len(f.statuses)) % len(f.statuses)
}

// task assembles the edited task.
func (f taskForm) task() domain.Task {
	out := domain.Task{
		ID:          f.base.ID,
		Title:       strings.TrimSpace(f.title.Value()),
		Description: strings.TrimSpace(f.description.Value()),
		Status:      f.status(),
	}
	for i, in := range f.subtasks {
		out.Subtasks = append(out.Subtasks, domain.Subtask{
			Title:       strings.TrimSpace(in.Value()),
			IsCompleted: f.completed[i],
		})
	}
	return out
}

// update forwards a message to the focused input.
func (f taskForm) update(msg tea.Msg) (taskForm, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case f.focus == 0:
		f.title, cmd = f.title.Update(msg)
	case f.focus == 1:
		f.description, cmd = f.description.Update(msg)
	case f.focus < f.statusField():
		idx := f.focus - 2
		f.subtasks[idx], cmd = f.subtasks[idx].Update(msg)
	}
	return f, cmd
}

// handleTaskFormKey handles keys for the add and edit task forms.
func (m Model) handleTaskFormKey(f taskForm, msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	fields := f.statusField() + 1
	switch msg.String() {
	case "esc":
		m.closeModal()
		return m, nil
	case "enter":
		task := f.task()
		m.taskDraft = task
		m.modal = f
		if f.mode == taskFormAdd {
			return m, m.dispatch(app.AddTask{Task: task, BoardName: m.state.Active}, "The task added")
		}
		return m, m.dispatch(app.EditTask{
			Task:      task,
			BoardName: m.state.Active,
			Indexes:   m.taskLocator,
		}, "The task edited")
	case "tab", "down":
		cmd := f.focusField((f.focus + 1) % fields)
		m.modal = f
		return m, cmd
	case "shift+tab", "up":
		cmd := f.focusField((f.focus - 1 + fields) % fields)
		m.modal = f
		return m, cmd
	case "ctrl+n":
		cmd := f.addSubtask()
		m.modal = f
		return m, cmd
	case "ctrl+x":
		cmd := f.removeFocusedSubtask()
		m.modal = f
		return m, cmd
	}
	if f.focus == f.statusField() {
		switch msg.String() {
		case "left", "h":
			f.cycleStatus(-1)
		case "right", "l", "space", " ":
			f.cycleStatus(1)
		}
		m.modal = f
		return m, nil
	}
	next, cmd := f.update(msg)
	m.modal = next
	return m, cmd
}
