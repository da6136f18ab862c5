package common

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hylla/kanboard/internal/app"
	"github.com/hylla/kanboard/internal/domain"
)

// maxHistoryLimit caps one history page.
const maxHistoryLimit = 500

// StoreAdapter maps transport contracts onto an app.Store.
type StoreAdapter struct {
	store *app.Store
}

// NewStoreAdapter builds one adapter over a store.
func NewStoreAdapter(store *app.Store) *StoreAdapter {
	return &StoreAdapter{store: store}
}

// ListBoards lists every board with its column names and task count.
func (a *StoreAdapter) ListBoards(ctx context.Context) ([]BoardSummary, error) {
	if err := a.ready(ctx); err != nil {
		return nil, err
	}
	state := a.store.State()
	out := make([]BoardSummary, 0, len(state.Boards))
	for _, board := range state.Boards {
		columns := make([]string, 0, len(board.Columns))
		for _, col := range board.Columns {
			columns = append(columns, col.Name)
		}
		out = append(out, BoardSummary{
			Name:    board.Name,
			Active:  board.Name == state.Active,
			Columns: columns,
			Tasks:   board.TaskCount(),
		})
	}
	return out, nil
}

// GetBoard returns one board by name. An empty name selects the active board.
func (a *StoreAdapter) GetBoard(ctx context.Context, name string) (app.SnapshotBoard, error) {
	if err := a.ready(ctx); err != nil {
		return app.SnapshotBoard{}, err
	}
	state := a.store.State()
	name = strings.TrimSpace(name)
	if name == "" {
		board, ok := app.ActiveBoard(state)
		if !ok {
			return app.SnapshotBoard{}, fmt.Errorf("active board: %w", ErrNoBoards)
		}
		return app.SnapshotBoardFromDomain(board), nil
	}
	board, ok := state.Board(name)
	if !ok {
		return app.SnapshotBoard{}, fmt.Errorf("board %q: %w", name, ErrNotFound)
	}
	return app.SnapshotBoardFromDomain(board), nil
}

// Apply decodes one action envelope and dispatches it.
func (a *StoreAdapter) Apply(ctx context.Context, req ActionRequest) (ActionResult, error) {
	if err := a.ready(ctx); err != nil {
		return ActionResult{}, err
	}
	action, err := ActionFromRequest(req)
	if err != nil {
		return ActionResult{}, err
	}
	state, err := a.store.Dispatch(ctx, action)
	if err != nil {
		return ActionResult{}, mapAppError("apply "+req.Type, err)
	}
	out := ActionResult{Type: string(action.Kind()), Active: state.Active}
	if board, ok := app.ActiveBoard(state); ok {
		snap := app.SnapshotBoardFromDomain(board)
		out.Board = &snap
	}
	return out, nil
}

// History lists the most recent action log entries.
func (a *StoreAdapter) History(ctx context.Context, limit int) ([]HistoryItem, error) {
	if err := a.ready(ctx); err != nil {
		return nil, err
	}
	if limit < 0 || limit > maxHistoryLimit {
		return nil, fmt.Errorf("limit must be between 0 and %d: %w", maxHistoryLimit, ErrInvalidRequest)
	}
	entries, err := a.store.History(ctx, limit)
	if err != nil {
		return nil, mapAppError("history", err)
	}
	out := make([]HistoryItem, 0, len(entries))
	for _, entry := range entries {
		out = append(out, HistoryItem{
			ID:         entry.ID,
			Kind:       string(entry.Kind),
			BoardName:  entry.BoardName,
			Summary:    entry.Summary,
			OccurredAt: entry.OccurredAt,
		})
	}
	return out, nil
}

// ready checks the adapter wiring and the request context.
func (a *StoreAdapter) ready(ctx context.Context) error {
	if a == nil || a.store == nil {
		return fmt.Errorf("store adapter is not configured: %w", ErrInvalidRequest)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("request canceled: %w", err)
	}
	return nil
}

// ActionFromRequest converts one JSON action envelope into a store action.
func ActionFromRequest(req ActionRequest) (app.Action, error) {
	switch strings.TrimSpace(req.Type) {
	case ActionTypeAddBoard:
		if req.Board == nil {
			return nil, fmt.Errorf("addBoard requires board: %w", ErrInvalidRequest)
		}
		return app.AddBoard{Board: req.Board.ToDomain()}, nil
	case ActionTypeEditBoardAndSave:
		if req.Board == nil {
			return nil, fmt.Errorf("editBoardAndSave requires board: %w", ErrInvalidRequest)
		}
		return app.EditBoardAndSave{Board: req.Board.ToDomain(), Original: req.Original}, nil
	case ActionTypeEditTask:
		if req.Task == nil || req.Indexes == nil {
			return nil, fmt.Errorf("editTask requires task and indexes: %w", ErrInvalidRequest)
		}
		return app.EditTask{
			Task:      req.Task.ToDomain(),
			BoardName: req.BoardName,
			Indexes:   app.TaskIndexes{TaskIndex: req.Indexes.TaskIndex, ColIndex: req.Indexes.ColIndex},
		}, nil
	case ActionTypeDeleteTask:
		if req.Task == nil {
			return nil, fmt.Errorf("deleteTask requires task: %w", ErrInvalidRequest)
		}
		return app.DeleteTask{Task: req.Task.ToDomain(), BoardName: req.BoardName}, nil
	case ActionTypeSetActiveBoard:
		if strings.TrimSpace(req.Name) == "" {
			return nil, fmt.Errorf("setActiveBoard requires name: %w", ErrInvalidRequest)
		}
		return app.SetActiveBoard{Name: req.Name}, nil
	case ActionTypeAddTask:
		if req.Task == nil {
			return nil, fmt.Errorf("addTask requires task: %w", ErrInvalidRequest)
		}
		return app.AddTask{Task: req.Task.ToDomain(), BoardName: req.BoardName}, nil
	case ActionTypeDeleteBoard:
		if strings.TrimSpace(req.Name) == "" {
			return nil, fmt.Errorf("deleteBoard requires name: %w", ErrInvalidRequest)
		}
		return app.DeleteBoard{Name: req.Name}, nil
	case "":
		return nil, fmt.Errorf("type is required: %w", ErrInvalidRequest)
	default:
		return nil, fmt.Errorf("unsupported action type %q (want one of %s): %w", req.Type, strings.Join(SupportedActionTypes(), ", "), ErrInvalidRequest)
	}
}

// mapAppError maps app and domain sentinels onto transport sentinels.
func mapAppError(op string, err error) error {
	switch {
	case errors.Is(err, app.ErrNotFound):
		return fmt.Errorf("%s: %w", op, errors.Join(ErrNotFound, err))
	case errors.Is(err, app.ErrNoActiveBoard):
		return fmt.Errorf("%s: %w", op, errors.Join(ErrNoBoards, err))
	case errors.Is(err, app.ErrDuplicateBoard), errors.Is(err, app.ErrStaleLocator):
		return fmt.Errorf("%s: %w", op, errors.Join(ErrConflict, err))
	case errors.Is(err, app.ErrUnknownStatus),
		errors.Is(err, app.ErrInvalidAction),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidName),
		errors.Is(err, domain.ErrInvalidTitle),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrTooManyColumns),
		errors.Is(err, domain.ErrDuplicateColumn),
		errors.Is(err, domain.ErrDuplicateID):
		return fmt.Errorf("%s: %w", op, errors.Join(ErrInvalidRequest, err))
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
