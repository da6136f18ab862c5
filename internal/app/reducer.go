package app

import (
	"fmt"
	"strings"

	"github.com/hylla/kanboard/internal/domain"
)

// Reduce applies one action to a state and returns the resulting state.
// The input is never mutated; on error the input is returned unchanged.
func Reduce(s State, action Action) (State, error) {
	next := s.Clone()
	var err error
	switch a := action.(type) {
	case AddBoard:
		err = reduceAddBoard(&next, a)
	case EditBoardAndSave:
		err = reduceEditBoard(&next, a)
	case EditTask:
		err = reduceEditTask(&next, a)
	case DeleteTask:
		err = reduceDeleteTask(&next, a)
	case SetActiveBoard:
		err = reduceSetActiveBoard(&next, a)
	case AddTask:
		err = reduceAddTask(&next, a)
	case DeleteBoard:
		err = reduceDeleteBoard(&next, a)
	case nil:
		err = fmt.Errorf("nil action: %w", ErrInvalidAction)
	default:
		err = fmt.Errorf("unsupported action %T: %w", action, ErrInvalidAction)
	}
	if err == nil {
		err = domain.CheckUniqueIDs(next.Boards)
	}
	if err != nil {
		return s, err
	}
	return next, nil
}

func reduceAddBoard(s *State, a AddBoard) error {
	board, err := normalizeBoard(a.Board)
	if err != nil {
		return err
	}
	if s.BoardIndex(board.Name) >= 0 {
		return fmt.Errorf("board %q: %w", board.Name, ErrDuplicateBoard)
	}
	s.Boards = append(s.Boards, board)
	if s.Active == "" {
		s.Active = board.Name
	}
	return nil
}

func reduceEditBoard(s *State, a EditBoardAndSave) error {
	original := strings.TrimSpace(a.Original)
	if original == "" {
		original = s.Active
	}
	if original == "" {
		return ErrNoActiveBoard
	}
	idx := s.BoardIndex(original)
	if idx < 0 {
		return fmt.Errorf("board %q: %w", original, ErrNotFound)
	}
	board, err := normalizeBoard(a.Board)
	if err != nil {
		return err
	}
	if other := s.BoardIndex(board.Name); other >= 0 && other != idx {
		return fmt.Errorf("board %q: %w", board.Name, ErrDuplicateBoard)
	}
	s.Boards[idx] = board
	if s.Active == original {
		s.Active = board.Name
	}
	return nil
}

func reduceEditTask(s *State, a EditTask) error {
	board, err := boardForTask(s, a.BoardName)
	if err != nil {
		return err
	}
	colIdx, taskIdx := a.Indexes.ColIndex, a.Indexes.TaskIndex
	if colIdx < 0 || colIdx >= len(board.Columns) {
		return fmt.Errorf("column %d: %w", colIdx, ErrNotFound)
	}
	source := &board.Columns[colIdx]
	if taskIdx < 0 || taskIdx >= len(source.Tasks) {
		return fmt.Errorf("task %d in column %q: %w", taskIdx, source.Name, ErrNotFound)
	}
	current := source.Tasks[taskIdx]

	task := a.Task.Clone()
	task.Normalize()
	switch {
	case task.ID == "":
		task.ID = current.ID
	case task.ID != current.ID:
		return fmt.Errorf("task %q at column %d index %d: %w", task.ID, colIdx, taskIdx, ErrStaleLocator)
	}
	if task.Title == "" {
		return domain.ErrInvalidTitle
	}
	if task.Status == "" || task.Status == source.Status {
		task.Status = source.Status
		source.Tasks[taskIdx] = task
		return nil
	}

	destIdx := board.ColumnByStatus(task.Status)
	if destIdx < 0 {
		return fmt.Errorf("status %q: %w", task.Status, ErrUnknownStatus)
	}
	source.Tasks = append(source.Tasks[:taskIdx:taskIdx], source.Tasks[taskIdx+1:]...)
	board.Columns[destIdx].Tasks = append(board.Columns[destIdx].Tasks, task)
	return nil
}

func reduceDeleteTask(s *State, a DeleteTask) error {
	board, err := boardForTask(s, a.BoardName)
	if err != nil {
		return err
	}
	colIdx, taskIdx := findTask(*board, a.Task)
	if colIdx < 0 {
		return fmt.Errorf("task %q: %w", a.Task.Title, ErrNotFound)
	}
	tasks := board.Columns[colIdx].Tasks
	board.Columns[colIdx].Tasks = append(tasks[:taskIdx:taskIdx], tasks[taskIdx+1:]...)
	return nil
}

func reduceSetActiveBoard(s *State, a SetActiveBoard) error {
	name := strings.TrimSpace(a.Name)
	if s.BoardIndex(name) < 0 {
		return fmt.Errorf("board %q: %w", name, ErrNotFound)
	}
	s.Active = name
	return nil
}

func reduceAddTask(s *State, a AddTask) error {
	board, err := boardForTask(s, a.BoardName)
	if err != nil {
		return err
	}
	if len(board.Columns) == 0 {
		return fmt.Errorf("board %q has no columns: %w", board.Name, ErrUnknownStatus)
	}
	status := strings.TrimSpace(a.Task.Status)
	if status == "" {
		status = board.Columns[0].Status
	}
	destIdx := board.ColumnByStatus(status)
	if destIdx < 0 {
		return fmt.Errorf("status %q: %w", status, ErrUnknownStatus)
	}
	task, err := domain.NewTask(domain.TaskInput{
		ID:          a.Task.ID,
		Title:       a.Task.Title,
		Description: a.Task.Description,
		Status:      status,
		Subtasks:    a.Task.Subtasks,
	})
	if err != nil {
		return err
	}
	board.Columns[destIdx].Tasks = append(board.Columns[destIdx].Tasks, task)
	return nil
}

func reduceDeleteBoard(s *State, a DeleteBoard) error {
	name := strings.TrimSpace(a.Name)
	idx := s.BoardIndex(name)
	if idx < 0 {
		return fmt.Errorf("board %q: %w", name, ErrNotFound)
	}
	s.Boards = append(s.Boards[:idx:idx], s.Boards[idx+1:]...)
	s.normalizeActive()
	return nil
}

// boardForTask resolves the board a task action targets. An empty name means the active board.
func boardForTask(s *State, name string) (*domain.Board, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = s.Active
	}
	if name == "" {
		return nil, ErrNoActiveBoard
	}
	idx := s.BoardIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("board %q: %w", name, ErrNotFound)
	}
	return &s.Boards[idx], nil
}

// findTask locates the task to delete: by id first, then by title in the
// column matching its status, then by title anywhere on the board.
func findTask(board domain.Board, task domain.Task) (int, int) {
	if id := strings.TrimSpace(task.ID); id != "" {
		for colIdx, column := range board.Columns {
			if taskIdx := column.TaskIndex(id); taskIdx >= 0 {
				return colIdx, taskIdx
			}
		}
		return -1, -1
	}
	title := strings.TrimSpace(task.Title)
	if title == "" {
		return -1, -1
	}
	if colIdx := board.ColumnByStatus(task.Status); colIdx >= 0 {
		for taskIdx, candidate := range board.Columns[colIdx].Tasks {
			if candidate.Title == title {
				return colIdx, taskIdx
			}
		}
	}
	for colIdx, column := range board.Columns {
		for taskIdx, candidate := range column.Tasks {
			if candidate.Title == title {
				return colIdx, taskIdx
			}
		}
	}
	return -1, -1
}

// normalizeBoard trims a board draft, defaults column statuses and retags tasks.
func normalizeBoard(in domain.Board) (domain.Board, error) {
	board := in.Clone()
	board.Name = strings.TrimSpace(board.Name)
	columns := make([]domain.Column, 0, len(board.Columns))
	for _, column := range board.Columns {
		column.Name = strings.TrimSpace(column.Name)
		column.Status = strings.TrimSpace(column.Status)
		if column.Name == "" && len(column.Tasks) == 0 {
			continue
		}
		if column.Status == "" {
			column.Status = column.Name
		}
		for idx := range column.Tasks {
			column.Tasks[idx].Normalize()
		}
		columns = append(columns, column)
	}
	board.Columns = columns
	board.RetagTasks()
	if err := board.Validate(); err != nil {
		return domain.Board{}, err
	}
	return board, nil
}
