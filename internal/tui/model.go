package tui

import (
	"context"
	"errors"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"github.com/hylla/kanboard/internal/app"
	"github.com/hylla/kanboard/internal/domain"
)

// Store is the state container the board reads from and dispatches into.
type Store interface {
	State() app.State
	Dispatch(context.Context, app.Action) (app.State, error)
}

// StateChangedMsg carries a state published by the store outside of this model.
type StateChangedMsg struct {
	State app.State
}

// loadedMsg carries the initial state.
type loadedMsg struct {
	state app.State
}

// actionMsg reports the outcome of one dispatched action.
type actionMsg struct {
	kind  app.ActionKind
	state app.State
	toast string
	err   error
}

// toastExpiredMsg clears the toast with the matching sequence number.
type toastExpiredMsg struct {
	seq int
}

// clipboardMsg reports the outcome of a clipboard copy.
type clipboardMsg struct {
	err error
}

// toast is a one-shot success notification.
type toast struct {
	seq     int
	title   string
	message string
}

// Model is the board orchestrator.
type Model struct {
	store Store
	ctx   context.Context

	state app.State
	ready bool

	width  int
	height int

	keys keyMap
	help help.Model

	// at most one modal is open; nil means none.
	modal modal

	newBoardDraft  domain.Board
	editBoardDraft domain.Board
	taskDraft      domain.Task
	taskLocator    app.TaskIndexes

	selectedColumn int
	selectedTask   int

	showSidebar    bool
	defaultColumns []string
	confirmDelete  bool

	toast         *toast
	toastSeq      int
	toastDuration time.Duration

	status   string
	copyText ClipboardWriter
	markdown *markdownRenderer
	err      error
}

// NewModel constructs a new value for this package.
func NewModel(store Store, opts ...Option) Model {
	m := Model{
		store:          store,
		ctx:            context.Background(),
		keys:           newKeyMap(),
		help:           help.New(),
		showSidebar:    true,
		defaultColumns: []string{"Todo", "Doing", "Done"},
		confirmDelete:  true,
		toastDuration:  defaultToastDuration,
		copyText:       systemClipboard,
		status:         "ready",
		markdown:       &markdownRenderer{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	m.newBoardDraft = domain.DefaultBoardDraft(m.defaultColumns)
	m.taskDraft = domain.DefaultTaskDraft()
	return m
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	return m.loadState
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loadedMsg:
		m.ready = true
		m.applyState(msg.state)
		return m, nil

	case StateChangedMsg:
		m.applyState(msg.State)
		return m, nil

	case actionMsg:
		return m.handleActionResult(msg)

	case toastExpiredMsg:
		if m.toast != nil && m.toast.seq == msg.seq {
			m.toast = nil
		}
		return m, nil

	case clipboardMsg:
		if msg.err != nil {
			m.status = "copy failed: " + msg.err.Error()
			return m, nil
		}
		m.status = "copied task to clipboard"
		return m, nil

	case tea.KeyPressMsg:
		if m.modal != nil {
			return m.handleModalKey(msg)
		}
		return m.handleBoardKey(msg)

	default:
		if m.modal != nil {
			return m.forwardToModal(msg)
		}
		return m, nil
	}
}

// loadState loads the store's current state.
func (m Model) loadState() tea.Msg {
	return loadedMsg{state: m.store.State()}
}

// dispatch runs one action against the store and reports the outcome.
func (m Model) dispatch(action app.Action, toastMessage string) tea.Cmd {
	store := m.store
	ctx := m.ctx
	return func() tea.Msg {
		state, err := store.Dispatch(ctx, action)
		return actionMsg{kind: action.Kind(), state: state, toast: toastMessage, err: err}
	}
}

// handleActionResult applies a dispatch outcome.
func (m Model) handleActionResult(msg actionMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.err = msg.err
		if m.modal != nil {
			m.modal = withModalError(m.modal, errorText(msg.err))
		} else {
			m.status = "error: " + errorText(msg.err)
		}
		return m, nil
	}
	m.err = nil
	m.modal = nil
	switch msg.kind {
	case app.ActionAddBoard:
		m.newBoardDraft = domain.DefaultBoardDraft(m.defaultColumns)
	case app.ActionEditTask, app.ActionDeleteTask, app.ActionAddTask:
		m.taskDraft = domain.DefaultTaskDraft()
		m.taskLocator = app.TaskIndexes{}
	}
	m.applyState(msg.state)
	if msg.toast == "" {
		return m, nil
	}
	return m, m.showToast(msg.toast)
}

// applyState stores a new state and resyncs drafts and selection.
func (m *Model) applyState(state app.State) {
	m.state = state
	m.syncEditDraft()
	m.clampSelection()
}

// syncEditDraft copies the active board into the edit draft while no modal is open.
func (m *Model) syncEditDraft() {
	if m.modal != nil {
		return
	}
	board, ok := app.ActiveBoard(m.state)
	if !ok {
		m.editBoardDraft = domain.Board{}
		return
	}
	m.editBoardDraft = board.Clone()
}

// showToast replaces the current toast and schedules its expiry.
func (m *Model) showToast(message string) tea.Cmd {
	m.toastSeq++
	seq := m.toastSeq
	m.toast = &toast{seq: seq, title: "Successfully", message: message}
	return tea.Tick(m.toastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	})
}

// closeModal closes the open modal and resyncs the edit draft.
func (m *Model) closeModal() {
	m.modal = nil
	m.syncEditDraft()
}

// activeBoard returns the active board.
func (m Model) activeBoard() (domain.Board, bool) {
	return app.ActiveBoard(m.state)
}

// clampSelection keeps column and task focus inside the active board.
func (m *Model) clampSelection() {
	board, ok := m.activeBoard()
	if !ok {
		m.selectedColumn, m.selectedTask = 0, 0
		return
	}
	maxCol := len(board.Columns) - 1
	if board.CanAddColumn() {
		maxCol = len(board.Columns)
	}
	m.selectedColumn = clamp(m.selectedColumn, 0, max(0, maxCol))
	if m.selectedColumn >= len(board.Columns) {
		m.selectedTask = 0
		return
	}
	tasks := len(board.Columns[m.selectedColumn].Tasks)
	m.selectedTask = clamp(m.selectedTask, 0, max(0, tasks-1))
}

// selectedTaskRef returns the focused task and its locator.
func (m Model) selectedTaskRef() (domain.Task, app.TaskIndexes, bool) {
	board, ok := m.activeBoard()
	if !ok || m.selectedColumn < 0 || m.selectedColumn >= len(board.Columns) {
		return domain.Task{}, app.TaskIndexes{}, false
	}
	col := board.Columns[m.selectedColumn]
	if m.selectedTask < 0 || m.selectedTask >= len(col.Tasks) {
		return domain.Task{}, app.TaskIndexes{}, false
	}
	idx := app.TaskIndexes{ColIndex: m.selectedColumn, TaskIndex: m.selectedTask}
	return col.Tasks[m.selectedTask], idx, true
}

// onNewColumnAffordance reports whether focus sits on the "+ New Column" tile.
func (m Model) onNewColumnAffordance() bool {
	board, ok := m.activeBoard()
	return ok && board.CanAddColumn() && m.selectedColumn == len(board.Columns)
}

// handleBoardKey handles keys while no modal is open.
func (m Model) handleBoardKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.newBoard):
		return m.openAddBoard()
	case key.Matches(msg, m.keys.toggleSidebar):
		m.showSidebar = !m.showSidebar
		return m, nil
	}

	board, ok := m.activeBoard()
	if !ok {
		if msg.String() == "enter" {
			return m.openAddBoard()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.moveLeft):
		m.selectedColumn--
		m.selectedTask = 0
		m.clampSelection()
	case key.Matches(msg, m.keys.moveRight):
		m.selectedColumn++
		m.selectedTask = 0
		m.clampSelection()
	case key.Matches(msg, m.keys.moveUp):
		m.selectedTask--
		m.clampSelection()
	case key.Matches(msg, m.keys.moveDown):
		m.selectedTask++
		m.clampSelection()
	case key.Matches(msg, m.keys.nextBoard):
		return m.cycleBoard(1)
	case key.Matches(msg, m.keys.prevBoard):
		return m.cycleBoard(-1)
	case key.Matches(msg, m.keys.openTask):
		if m.onNewColumnAffordance() {
			return m.openEditBoard(true)
		}
		return m.openViewTask()
	case key.Matches(msg, m.keys.editTask):
		task, idx, ok := m.selectedTaskRef()
		if !ok {
			return m, nil
		}
		m.taskDraft = task.Clone()
		m.taskLocator = idx
		return m.openTaskForm(taskFormEdit)
	case key.Matches(msg, m.keys.addTask):
		if len(board.Columns) == 0 {
			m.status = "add a column before adding tasks"
			return m, nil
		}
		m.taskDraft = domain.DefaultTaskDraft()
		if m.selectedColumn < len(board.Columns) {
			m.taskDraft.Status = board.Columns[m.selectedColumn].Status
		}
		return m.openTaskForm(taskFormAdd)
	case key.Matches(msg, m.keys.deleteTask):
		task, idx, ok := m.selectedTaskRef()
		if !ok {
			return m, nil
		}
		m.taskDraft = task.Clone()
		m.taskLocator = idx
		return m.requestDeleteTask()
	case key.Matches(msg, m.keys.editBoard):
		return m.openEditBoard(false)
	case key.Matches(msg, m.keys.newColumn):
		if !board.CanAddColumn() {
			m.status = "column limit reached"
			return m, nil
		}
		return m.openEditBoard(true)
	case key.Matches(msg, m.keys.deleteBoard):
		if !m.confirmDelete {
			return m, m.dispatch(app.DeleteBoard{Name: board.Name}, "The board deleted")
		}
		m.modal = deleteBoardModal{name: board.Name}
	}
	return m, nil
}

// cycleBoard activates the next or previous board in the collection.
func (m Model) cycleBoard(step int) (tea.Model, tea.Cmd) {
	names := m.state.BoardNames()
	if len(names) < 2 {
		return m, nil
	}
	idx := m.state.BoardIndex(m.state.Active)
	next := (idx + step + len(names)) % len(names)
	m.selectedColumn, m.selectedTask = 0, 0
	return m, m.dispatch(app.SetActiveBoard{Name: names[next]}, "")
}

// openAddBoard opens the add-board form from the retained draft.
func (m Model) openAddBoard() (tea.Model, tea.Cmd) {
	form, cmd := newBoardForm(boardFormAdd, m.newBoardDraft)
	m.modal = form
	return m, cmd
}

// openEditBoard opens the edit-board form, optionally with a new blank column row.
func (m Model) openEditBoard(withNewColumn bool) (tea.Model, tea.Cmd) {
	if _, ok := m.activeBoard(); !ok {
		return m, nil
	}
	form, cmd := newBoardForm(boardFormEdit, m.editBoardDraft)
	if withNewColumn {
		cmd = form.addColumn()
	}
	m.modal = form
	return m, cmd
}

// openViewTask opens the focused task in the view modal.
func (m Model) openViewTask() (tea.Model, tea.Cmd) {
	task, idx, ok := m.selectedTaskRef()
	if !ok {
		return m, nil
	}
	m.taskDraft = task.Clone()
	m.taskLocator = idx
	m.modal = viewTaskModal{}
	return m, nil
}

// openTaskForm opens the task form over the current task draft.
func (m Model) openTaskForm(mode taskFormMode) (tea.Model, tea.Cmd) {
	board, _ := m.activeBoard()
	form, cmd := newTaskForm(mode, m.taskDraft, board.Statuses())
	m.modal = form
	return m, cmd
}

// requestDeleteTask confirms or directly deletes the task draft.
func (m Model) requestDeleteTask() (tea.Model, tea.Cmd) {
	if !m.confirmDelete {
		return m, m.deleteTaskDraft()
	}
	m.modal = deleteTaskModal{}
	return m, nil
}

// deleteTaskDraft dispatches deletion of the task draft.
func (m Model) deleteTaskDraft() tea.Cmd {
	return m.dispatch(app.DeleteTask{Task: m.taskDraft, BoardName: m.state.Active}, "The task deleted")
}

// copyTask copies the task draft as markdown to the clipboard.
func (m Model) copyTask() tea.Cmd {
	write := m.copyText
	text := taskClipboardText(m.taskDraft)
	return func() tea.Msg {
		return clipboardMsg{err: write(text)}
	}
}

// errorText strips wrapping down to a short user-facing message.
func errorText(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, app.ErrDuplicateBoard):
		return "a board with that name already exists"
	case errors.Is(err, domain.ErrInvalidName):
		return "name can't be empty"
	case errors.Is(err, domain.ErrInvalidTitle):
		return "title can't be empty"
	case errors.Is(err, domain.ErrDuplicateColumn):
		return "column names must be unique"
	case errors.Is(err, domain.ErrTooManyColumns):
		return "a board can have at most 6 columns"
	default:
		return err.Error()
	}
}
