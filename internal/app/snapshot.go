package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hylla/kanboard/internal/domain"
)

// SnapshotVersion defines a package constant value.
const SnapshotVersion = "kanboard.snapshot.v1"

// Snapshot is the portable JSON form of the whole board collection.
type Snapshot struct {
	Version    string          `json:"version"`
	ExportedAt time.Time       `json:"exported_at"`
	Active     string          `json:"active,omitempty"`
	Boards     []SnapshotBoard `json:"boards"`
}

// SnapshotBoard represents snapshot board data used by this package.
type SnapshotBoard struct {
	Name    string           `json:"name"`
	Columns []SnapshotColumn `json:"columns"`
}

// SnapshotColumn represents snapshot column data used by this package.
type SnapshotColumn struct {
	ID     string         `json:"id,omitempty"`
	Name   string         `json:"name"`
	Status string         `json:"status,omitempty"`
	Tasks  []SnapshotTask `json:"tasks"`
}

// SnapshotTask represents snapshot task data used by this package.
type SnapshotTask struct {
	ID          string            `json:"id,omitempty"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      string            `json:"status"`
	Subtasks    []SnapshotSubtask `json:"subtasks"`
}

// SnapshotSubtask represents snapshot subtask data used by this package.
type SnapshotSubtask struct {
	Title       string `json:"title"`
	IsCompleted bool   `json:"isCompleted"`
}

// ExportSnapshot captures the current state as a snapshot.
func (s *Store) ExportSnapshot(_ context.Context) (Snapshot, error) {
	state := s.State()
	snap := Snapshot{
		Version:    SnapshotVersion,
		ExportedAt: s.clock().UTC(),
		Active:     state.Active,
		Boards:     make([]SnapshotBoard, 0, len(state.Boards)),
	}
	for _, board := range state.Boards {
		snap.Boards = append(snap.Boards, SnapshotBoardFromDomain(board))
	}
	return snap, nil
}

// ImportSnapshot merges snapshot boards into the state. Boards are matched by
// name; matches are replaced and the rest are appended. Imported column and
// task ids already used by another board are replaced with fresh ids.
func (s *Store) ImportSnapshot(ctx context.Context, snap Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	next, err := s.commitLocked(ctx, func(current State) (State, error) {
		return s.mergeSnapshot(current, snap)
	})
	subs := s.subscriberList()
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.logger.Debug("imported snapshot", "boards", len(snap.Boards))
	s.notify(subs, next)
	return nil
}

// mergeSnapshot returns current with the snapshot boards merged in.
func (s *Store) mergeSnapshot(current State, snap Snapshot) (State, error) {
	next := current.Clone()
	for _, sb := range snap.Boards {
		idx := next.BoardIndex(strings.TrimSpace(sb.Name))
		board := s.boardWithIDs(s.rekeyForeignIDs(sb.ToDomain(), next, idx))
		board, err := normalizeBoard(board)
		if err != nil {
			return State{}, fmt.Errorf("import board %q: %w", sb.Name, err)
		}
		if idx >= 0 {
			next.Boards[idx] = board
			continue
		}
		next.Boards = append(next.Boards, board)
	}
	if active := strings.TrimSpace(snap.Active); active != "" && next.BoardIndex(active) >= 0 {
		next.Active = active
	}
	next.normalizeActive()
	if err := domain.CheckUniqueIDs(next.Boards); err != nil {
		return State{}, err
	}
	return next, nil
}

// rekeyForeignIDs replaces ids in board that are repeated within it or owned by
// a board of state other than the one at replaceIdx.
func (s *Store) rekeyForeignIDs(board domain.Board, state State, replaceIdx int) domain.Board {
	columns := map[string]struct{}{}
	tasks := map[string]struct{}{}
	for idx, other := range state.Boards {
		if idx == replaceIdx {
			continue
		}
		for _, column := range other.Columns {
			columns[column.ID] = struct{}{}
			for _, task := range column.Tasks {
				tasks[task.ID] = struct{}{}
			}
		}
	}
	for colIdx := range board.Columns {
		column := &board.Columns[colIdx]
		if _, taken := columns[column.ID]; taken || strings.TrimSpace(column.ID) == "" {
			column.ID = s.idGen()
		}
		columns[column.ID] = struct{}{}
		for taskIdx := range column.Tasks {
			task := &column.Tasks[taskIdx]
			if _, taken := tasks[task.ID]; taken || strings.TrimSpace(task.ID) == "" {
				task.ID = s.idGen()
			}
			tasks[task.ID] = struct{}{}
		}
	}
	return board
}

// Validate checks version and per-board shape.
func (s *Snapshot) Validate() error {
	if s.Version != "" && s.Version != SnapshotVersion {
		return fmt.Errorf("unsupported snapshot version %q: %w", s.Version, ErrInvalidSnapshot)
	}
	names := map[string]struct{}{}
	for i, board := range s.Boards {
		name := strings.TrimSpace(board.Name)
		if name == "" {
			return fmt.Errorf("boards[%d].name is required: %w", i, ErrInvalidSnapshot)
		}
		if _, exists := names[name]; exists {
			return fmt.Errorf("duplicate board name %q: %w", name, ErrInvalidSnapshot)
		}
		names[name] = struct{}{}
		if len(board.Columns) > domain.MaxColumns {
			return fmt.Errorf("boards[%d] has %d columns: %w", i, len(board.Columns), ErrInvalidSnapshot)
		}
		for j, column := range board.Columns {
			if strings.TrimSpace(column.Name) == "" {
				return fmt.Errorf("boards[%d].columns[%d].name is required: %w", i, j, ErrInvalidSnapshot)
			}
			for k, task := range column.Tasks {
				if strings.TrimSpace(task.Title) == "" {
					return fmt.Errorf("boards[%d].columns[%d].tasks[%d].title is required: %w", i, j, k, ErrInvalidSnapshot)
				}
			}
		}
	}
	return nil
}

// SnapshotBoardFromDomain converts a board into its snapshot form.
func SnapshotBoardFromDomain(b domain.Board) SnapshotBoard {
	out := SnapshotBoard{
		Name:    b.Name,
		Columns: make([]SnapshotColumn, 0, len(b.Columns)),
	}
	for _, column := range b.Columns {
		sc := SnapshotColumn{
			ID:     column.ID,
			Name:   column.Name,
			Status: column.Status,
			Tasks:  make([]SnapshotTask, 0, len(column.Tasks)),
		}
		for _, task := range column.Tasks {
			sc.Tasks = append(sc.Tasks, SnapshotTaskFromDomain(task))
		}
		out.Columns = append(out.Columns, sc)
	}
	return out
}

// SnapshotTaskFromDomain converts a task into its snapshot form.
func SnapshotTaskFromDomain(t domain.Task) SnapshotTask {
	out := SnapshotTask{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Subtasks:    make([]SnapshotSubtask, 0, len(t.Subtasks)),
	}
	for _, sub := range t.Subtasks {
		out.Subtasks = append(out.Subtasks, SnapshotSubtask(sub))
	}
	return out
}

// ToDomain converts a snapshot board into a domain board draft.
func (b SnapshotBoard) ToDomain() domain.Board {
	out := domain.Board{
		Name:    b.Name,
		Columns: make([]domain.Column, 0, len(b.Columns)),
	}
	for _, column := range b.Columns {
		dc := domain.Column{
			ID:     column.ID,
			Name:   column.Name,
			Status: column.Status,
			Tasks:  make([]domain.Task, 0, len(column.Tasks)),
		}
		for _, task := range column.Tasks {
			dc.Tasks = append(dc.Tasks, task.ToDomain())
		}
		out.Columns = append(out.Columns, dc)
	}
	return out
}

// ToDomain converts a snapshot task into a domain task.
func (t SnapshotTask) ToDomain() domain.Task {
	out := domain.Task{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Subtasks:    make([]domain.Subtask, 0, len(t.Subtasks)),
	}
	for _, sub := range t.Subtasks {
		out.Subtasks = append(out.Subtasks, domain.Subtask(sub))
	}
	return out
}
