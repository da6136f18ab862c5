package common

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hylla/kanboard/internal/app"
	"github.com/hylla/kanboard/internal/domain"
)

// newTestAdapter returns an adapter over an in-memory store with one board.
func newTestAdapter(t *testing.T) (*StoreAdapter, *app.Store) {
	t.Helper()
	n := 0
	store := app.NewStore(nil, app.StoreConfig{IDGen: func() string {
		n++
		return "gen-" + string(rune('a'+n-1))
	}})
	board := domain.Board{
		Name: "Platform Launch",
		Columns: []domain.Column{
			{ID: "c1", Name: "Todo", Status: "Todo", Tasks: []domain.Task{{ID: "t1", Title: "Build UI", Status: "Todo"}}},
			{ID: "c2", Name: "Done", Status: "Done"},
		},
	}
	if _, err := store.Dispatch(context.Background(), app.AddBoard{Board: board}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return NewStoreAdapter(store), store
}

// TestStoreAdapterListAndGet verifies behavior for the covered scenario.
func TestStoreAdapterListAndGet(t *testing.T) {
	adapter, _ := newTestAdapter(t)
	ctx := context.Background()

	boards, err := adapter.ListBoards(ctx)
	if err != nil {
		t.Fatalf("ListBoards() error = %v", err)
	}
	if len(boards) != 1 || !boards[0].Active || boards[0].Tasks != 1 || len(boards[0].Columns) != 2 {
		t.Fatalf("unexpected boards %#v", boards)
	}

	active, err := adapter.GetBoard(ctx, "")
	if err != nil || active.Name != "Platform Launch" {
		t.Fatalf("GetBoard(active) = %#v, %v", active, err)
	}
	if _, err := adapter.GetBoard(ctx, "Missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// TestStoreAdapterApply verifies behavior for the covered scenario.
func TestStoreAdapterApply(t *testing.T) {
	adapter, store := newTestAdapter(t)
	ctx := context.Background()

	res, err := adapter.Apply(ctx, ActionRequest{
		Type: ActionTypeAddTask,
		Task: &app.SnapshotTask{Title: "Write docs", Status: "Done"},
	})
	if err != nil {
		t.Fatalf("Apply(addTask) error = %v", err)
	}
	if res.Type != ActionTypeAddTask || res.Board == nil || len(res.Board.Columns[1].Tasks) != 1 {
		t.Fatalf("unexpected result %#v", res)
	}

	_, err = adapter.Apply(ctx, ActionRequest{
		Type:    ActionTypeEditTask,
		Task:    &app.SnapshotTask{ID: "t1", Title: "Build UI v2", Status: "Todo"},
		Indexes: &TaskIndexes{ColIndex: 0, TaskIndex: 0},
	})
	if err != nil {
		t.Fatalf("Apply(editTask) error = %v", err)
	}
	board, _ := store.State().Board("Platform Launch")
	if board.Columns[0].Tasks[0].Title != "Build UI v2" {
		t.Fatalf("expected edited title, got %#v", board.Columns[0].Tasks[0])
	}
}

// TestStoreAdapterApplyErrors verifies behavior for the covered scenario.
func TestStoreAdapterApplyErrors(t *testing.T) {
	adapter, _ := newTestAdapter(t)
	ctx := context.Background()
	cases := []struct {
		name string
		req  ActionRequest
		want error
	}{
		{"missing type", ActionRequest{}, ErrInvalidRequest},
		{"unknown type", ActionRequest{Type: "archive"}, ErrInvalidRequest},
		{"missing board", ActionRequest{Type: ActionTypeAddBoard}, ErrInvalidRequest},
		{"duplicate board", ActionRequest{Type: ActionTypeAddBoard, Board: &app.SnapshotBoard{Name: "Platform Launch"}}, ErrConflict},
		{"unknown board", ActionRequest{Type: ActionTypeSetActiveBoard, Name: "Nope"}, ErrNotFound},
		{"unknown status", ActionRequest{Type: ActionTypeAddTask, Task: &app.SnapshotTask{Title: "x", Status: "Later"}}, ErrInvalidRequest},
		{"duplicate column id", ActionRequest{Type: ActionTypeAddBoard, Board: &app.SnapshotBoard{
			Name:    "Copy",
			Columns: []app.SnapshotColumn{{ID: "c1", Name: "Todo"}},
		}}, ErrInvalidRequest},
		{"duplicate task id", ActionRequest{Type: ActionTypeAddTask, Task: &app.SnapshotTask{ID: "t1", Title: "again"}}, ErrInvalidRequest},
		{"stale locator", ActionRequest{
			Type:    ActionTypeEditTask,
			Task:    &app.SnapshotTask{ID: "other", Title: "x"},
			Indexes: &TaskIndexes{},
		}, ErrConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := adapter.Apply(ctx, tc.req); !errors.Is(err, tc.want) {
				t.Fatalf("Apply() error = %v, want %v", err, tc.want)
			}
		})
	}
}

// TestStoreAdapterHistoryLimit verifies behavior for the covered scenario.
func TestStoreAdapterHistoryLimit(t *testing.T) {
	adapter, _ := newTestAdapter(t)
	if _, err := adapter.History(context.Background(), maxHistoryLimit+1); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	items, err := adapter.History(context.Background(), 10)
	if err != nil || len(items) != 0 {
		t.Fatalf("expected empty history without repository, got %#v, %v", items, err)
	}
}

// TestStoreAdapterCanceledContext verifies behavior for the covered scenario.
func TestStoreAdapterCanceledContext(t *testing.T) {
	adapter, _ := newTestAdapter(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := adapter.ListBoards(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

// TestActionFromRequestListsSupportedTypes verifies behavior for the covered scenario.
func TestActionFromRequestListsSupportedTypes(t *testing.T) {
	_, err := ActionFromRequest(ActionRequest{Type: "archive"})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	for _, typ := range SupportedActionTypes() {
		if !strings.Contains(err.Error(), typ) {
			t.Fatalf("expected %q in error %q", typ, err)
		}
	}
}
