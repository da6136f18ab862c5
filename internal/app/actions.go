package app

import "github.com/hylla/kanboard/internal/domain"

// ActionKind names one store action.
type ActionKind string

// ActionAddBoard and related constants enumerate every store action.
const (
	ActionAddBoard         ActionKind = "addBoard"
	ActionEditBoardAndSave ActionKind = "editBoardAndSave"
	ActionEditTask         ActionKind = "editTask"
	ActionDeleteTask       ActionKind = "deleteTask"
	ActionSetActiveBoard   ActionKind = "setActiveBoard"
	ActionAddTask          ActionKind = "addTask"
	ActionDeleteBoard      ActionKind = "deleteBoard"
)

// Action is one of the closed set of store mutations.
type Action interface {
	Kind() ActionKind
	isAction()
}

// TaskIndexes locates a task by column and position within the column.
type TaskIndexes struct {
	TaskIndex int
	ColIndex  int
}

// AddBoard appends a new board to the collection.
type AddBoard struct {
	Board domain.Board
}

// EditBoardAndSave replaces an existing board with an edited draft.
// Original names the board being replaced; empty means the active board.
type EditBoardAndSave struct {
	Board    domain.Board
	Original string
}

// EditTask replaces the task at Indexes, moving it when its status changed.
type EditTask struct {
	Task      domain.Task
	BoardName string
	Indexes   TaskIndexes
}

// DeleteTask removes one matching task from the named board.
type DeleteTask struct {
	Task      domain.Task
	BoardName string
}

// SetActiveBoard selects the board shown by the board view.
type SetActiveBoard struct {
	Name string
}

// AddTask appends a task to the column matching its status.
type AddTask struct {
	Task      domain.Task
	BoardName string
}

// DeleteBoard removes a board from the collection.
type DeleteBoard struct {
	Name string
}

func (AddBoard) Kind() ActionKind         { return ActionAddBoard }
func (EditBoardAndSave) Kind() ActionKind { return ActionEditBoardAndSave }
func (EditTask) Kind() ActionKind         { return ActionEditTask }
func (DeleteTask) Kind() ActionKind       { return ActionDeleteTask }
func (SetActiveBoard) Kind() ActionKind   { return ActionSetActiveBoard }
func (AddTask) Kind() ActionKind          { return ActionAddTask }
func (DeleteBoard) Kind() ActionKind      { return ActionDeleteBoard }

func (AddBoard) isAction()         {}
func (EditBoardAndSave) isAction() {}
func (EditTask) isAction()         {}
func (DeleteTask) isAction()       {}
func (SetActiveBoard) isAction()   {}
func (AddTask) isAction()          {}
func (DeleteBoard) isAction()      {}

// actionBoardName returns the board an action targets, if it names one.
func actionBoardName(action Action) string {
	switch a := action.(type) {
	case AddBoard:
		return a.Board.Name
	case EditBoardAndSave:
		return a.Board.Name
	case EditTask:
		return a.BoardName
	case DeleteTask:
		return a.BoardName
	case SetActiveBoard:
		return a.Name
	case AddTask:
		return a.BoardName
	case DeleteBoard:
		return a.Name
	default:
		return ""
	}
}

// actionSummary renders a short human-readable description of an action.
func actionSummary(action Action) string {
	switch a := action.(type) {
	case AddBoard:
		return "added board " + a.Board.Name
	case EditBoardAndSave:
		if a.Original != "" && a.Original != a.Board.Name {
			return "renamed board " + a.Original + " to " + a.Board.Name
		}
		return "edited board " + a.Board.Name
	case EditTask:
		return "edited task " + a.Task.Title
	case DeleteTask:
		return "deleted task " + a.Task.Title
	case SetActiveBoard:
		return "selected board " + a.Name
	case AddTask:
		return "added task " + a.Task.Title
	case DeleteBoard:
		return "deleted board " + a.Name
	default:
		return ""
	}
}
