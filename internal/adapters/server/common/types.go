// Package common provides transport-agnostic server contracts used by HTTP and MCP adapters.
package common

import (
	"context"
	"errors"
	"time"

	"github.com/hylla/kanboard/internal/app"
)

// ErrInvalidRequest reports malformed transport input.
var ErrInvalidRequest = errors.New("invalid request")

// ErrNotFound reports missing transport-visible resources.
var ErrNotFound = errors.New("not found")

// ErrConflict reports requests that collide with existing state.
var ErrConflict = errors.New("conflict")

// ErrNoBoards reports that the collection is empty.
var ErrNoBoards = errors.New("no boards")

// Action type names accepted by Apply.
const (
	ActionTypeAddBoard         = "addBoard"
	ActionTypeEditBoardAndSave = "editBoardAndSave"
	ActionTypeEditTask         = "editTask"
	ActionTypeDeleteTask       = "deleteTask"
	ActionTypeSetActiveBoard   = "setActiveBoard"
	ActionTypeAddTask          = "addTask"
	ActionTypeDeleteBoard      = "deleteBoard"
)

// supportedActionTypes stores all accepted action types in canonical order.
var supportedActionTypes = []string{
	ActionTypeAddBoard,
	ActionTypeEditBoardAndSave,
	ActionTypeEditTask,
	ActionTypeDeleteTask,
	ActionTypeSetActiveBoard,
	ActionTypeAddTask,
	ActionTypeDeleteBoard,
}

// SupportedActionTypes returns all accepted action type values.
func SupportedActionTypes() []string {
	return append([]string(nil), supportedActionTypes...)
}

// BoardSummary is one entry of the board list.
type BoardSummary struct {
	Name    string   `json:"name"`
	Active  bool     `json:"active"`
	Columns []string `json:"columns"`
	Tasks   int      `json:"tasks"`
}

// TaskIndexes locates a task by column and position.
type TaskIndexes struct {
	TaskIndex int `json:"taskIndex"`
	ColIndex  int `json:"colIndex"`
}

// ActionRequest is the JSON envelope of one store action.
type ActionRequest struct {
	Type      string             `json:"type"`
	Board     *app.SnapshotBoard `json:"board,omitempty"`
	Original  string             `json:"original,omitempty"`
	BoardName string             `json:"boardName,omitempty"`
	Name      string             `json:"name,omitempty"`
	Task      *app.SnapshotTask  `json:"task,omitempty"`
	Indexes   *TaskIndexes       `json:"indexes,omitempty"`
}

// ActionResult reports the state after one applied action.
type ActionResult struct {
	Type   string             `json:"type"`
	Active string             `json:"active,omitempty"`
	Board  *app.SnapshotBoard `json:"board,omitempty"`
}

// HistoryItem is one action log entry.
type HistoryItem struct {
	ID         int64     `json:"id"`
	Kind       string    `json:"kind"`
	BoardName  string    `json:"board_name,omitempty"`
	Summary    string    `json:"summary"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BoardService exposes the store to transports.
type BoardService interface {
	ListBoards(context.Context) ([]BoardSummary, error)
	GetBoard(context.Context, string) (app.SnapshotBoard, error)
	Apply(context.Context, ActionRequest) (ActionResult, error)
	History(context.Context, int) ([]HistoryItem, error)
}
