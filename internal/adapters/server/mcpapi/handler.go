// Package mcpapi provides a stateless MCP streamable-HTTP adapter.
package mcpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hylla/kanboard/internal/adapters/server/common"
	"github.com/hylla/kanboard/internal/app"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Config captures MCP transport configuration.
type Config struct {
	ServerName    string
	ServerVersion string
	EndpointPath  string
}

// Handler wraps one stateless MCP streamable HTTP handler.
type Handler struct {
	httpHandler http.Handler
}

// NewHandler builds one stateless MCP adapter exposing board and task tools.
func NewHandler(cfg Config, boards common.BoardService) (*Handler, error) {
	if boards == nil {
		return nil, fmt.Errorf("board service is required")
	}
	cfg = normalizeConfig(cfg)

	mcpSrv := mcpserver.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		mcpserver.WithToolCapabilities(false),
	)
	registerBoardTools(mcpSrv, boards)
	registerTaskTools(mcpSrv, boards)
	registerHistoryTool(mcpSrv, boards)

	streamable := mcpserver.NewStreamableHTTPServer(
		mcpSrv,
		mcpserver.WithEndpointPath(cfg.EndpointPath),
		mcpserver.WithStateLess(true),
	)
	return &Handler{httpHandler: streamable}, nil
}

// ServeHTTP handles one MCP streamable HTTP request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.httpHandler == nil {
		http.Error(w, "mcp handler unavailable", http.StatusServiceUnavailable)
		return
	}
	h.httpHandler.ServeHTTP(w, r)
}

// normalizeConfig applies deterministic defaults to MCP adapter config.
func normalizeConfig(cfg Config) Config {
	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	if cfg.ServerName == "" {
		cfg.ServerName = "kanboard"
	}
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	cfg.EndpointPath = strings.TrimSpace(cfg.EndpointPath)
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = "/mcp"
	}
	if !strings.HasPrefix(cfg.EndpointPath, "/") {
		cfg.EndpointPath = "/" + cfg.EndpointPath
	}
	cfg.EndpointPath = "/" + strings.Trim(cfg.EndpointPath, "/")
	return cfg
}

// registerBoardTools registers the board-level tools.
func registerBoardTools(srv *mcpserver.MCPServer, boards common.BoardService) {
	srv.AddTool(
		mcp.NewTool(
			"kanboard.list_boards",
			mcp.WithDescription("List every board with its columns, task count, and active flag."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			rows, err := boards.ListBoards(ctx)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{"boards": rows})
			if err != nil {
				return nil, fmt.Errorf("encode list_boards result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"kanboard.get_active_board",
			mcp.WithDescription("Return the active board, or the named board, with all columns and tasks."),
			mcp.WithString("name", mcp.Description("Optional board name; defaults to the active board")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			board, err := boards.GetBoard(ctx, req.GetString("name", ""))
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(board)
			if err != nil {
				return nil, fmt.Errorf("encode get_active_board result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"kanboard.add_board",
			mcp.WithDescription("Create one board. The first board becomes active."),
			mcp.WithString("name", mcp.Required(), mcp.Description("Unique board name")),
			mcp.WithArray("columns", mcp.Description("Column names, at most 6"), mcp.WithStringItems()),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			var args struct {
				Name    string   `json:"name"`
				Columns []string `json:"columns"`
			}
			if err := req.BindArguments(&args); err != nil {
				return invalidRequestToolResult(err), nil
			}
			if strings.TrimSpace(args.Name) == "" {
				return mcp.NewToolResultError(`invalid_request: required argument "name" not found`), nil
			}
			board := app.SnapshotBoard{Name: args.Name}
			for _, name := range args.Columns {
				board.Columns = append(board.Columns, app.SnapshotColumn{Name: name})
			}
			return applyAction(ctx, boards, common.ActionRequest{Type: common.ActionTypeAddBoard, Board: &board})
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"kanboard.set_active_board",
			mcp.WithDescription("Select the active board by name."),
			mcp.WithString("name", mcp.Required(), mcp.Description("Board name")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			name, err := req.RequireString("name")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return applyAction(ctx, boards, common.ActionRequest{Type: common.ActionTypeSetActiveBoard, Name: name})
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"kanboard.delete_board",
			mcp.WithDescription("Delete one board and all of its tasks."),
			mcp.WithString("name", mcp.Required(), mcp.Description("Board name")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			name, err := req.RequireString("name")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return applyAction(ctx, boards, common.ActionRequest{Type: common.ActionTypeDeleteBoard, Name: name})
		},
	)
}

// taskArgs captures the task fields shared by task tools.
type taskArgs struct {
	BoardName         string   `json:"board_name"`
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Status            string   `json:"status"`
	Subtasks          []string `json:"subtasks"`
	CompletedSubtasks []string `json:"completed_subtasks"`
	ColIndex          *int     `json:"col_index"`
	TaskIndex         *int     `json:"task_index"`
}

// task converts tool arguments into a snapshot task.
func (a taskArgs) task() *app.SnapshotTask {
	done := map[string]bool{}
	for _, title := range a.CompletedSubtasks {
		done[strings.TrimSpace(title)] = true
	}
	out := &app.SnapshotTask{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		Status:      a.Status,
	}
	for _, title := range a.Subtasks {
		out.Subtasks = append(out.Subtasks, app.SnapshotSubtask{
			Title:       title,
			IsCompleted: done[strings.TrimSpace(title)],
		})
	}
	return out
}

// registerTaskTools registers task add, edit and delete tools.
func registerTaskTools(srv *mcpserver.MCPServer, boards common.BoardService) {
	srv.AddTool(
		mcp.NewTool(
			"kanboard.add_task",
			mcp.WithDescription("Add one task to the column whose status matches."),
			mcp.WithString("title", mcp.Required(), mcp.Description("Task title")),
			mcp.WithString("board_name", mcp.Description("Board name; defaults to the active board")),
			mcp.WithString("description", mcp.Description("Task description (markdown)")),
			mcp.WithString("status", mcp.Description("Column status; defaults to the first column")),
			mcp.WithArray("subtasks", mcp.Description("Subtask titles"), mcp.WithStringItems()),
			mcp.WithArray("completed_subtasks", mcp.Description("Subtask titles already completed"), mcp.WithStringItems()),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			var args taskArgs
			if err := req.BindArguments(&args); err != nil {
				return invalidRequestToolResult(err), nil
			}
			if strings.TrimSpace(args.Title) == "" {
				return mcp.NewToolResultError(`invalid_request: required argument "title" not found`), nil
			}
			return applyAction(ctx, boards, common.ActionRequest{
				Type:      common.ActionTypeAddTask,
				BoardName: args.BoardName,
				Task:      args.task(),
			})
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"kanboard.edit_task",
			mcp.WithDescription("Replace the task at a column/task index. A different status moves the task to that column."),
			mcp.WithNumber("col_index", mcp.Required(), mcp.Description("Zero-based column index")),
			mcp.WithNumber("task_index", mcp.Required(), mcp.Description("Zero-based task index within the column")),
			mcp.WithString("title", mcp.Required(), mcp.Description("Task title")),
			mcp.WithString("id", mcp.Description("Task id; rejects the edit when it does not match the located task")),
			mcp.WithString("board_name", mcp.Description("Board name; defaults to the active board")),
			mcp.WithString("description", mcp.Description("Task description (markdown)")),
			mcp.WithString("status", mcp.Description("Target column status")),
			mcp.WithArray("subtasks", mcp.Description("Subtask titles"), mcp.WithStringItems()),
			mcp.WithArray("completed_subtasks", mcp.Description("Subtask titles that are completed"), mcp.WithStringItems()),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			var args taskArgs
			if err := req.BindArguments(&args); err != nil {
				return invalidRequestToolResult(err), nil
			}
			if args.ColIndex == nil || args.TaskIndex == nil {
				return mcp.NewToolResultError(`invalid_request: required arguments "col_index" and "task_index" not found`), nil
			}
			return applyAction(ctx, boards, common.ActionRequest{
				Type:      common.ActionTypeEditTask,
				BoardName: args.BoardName,
				Task:      args.task(),
				Indexes:   &common.TaskIndexes{ColIndex: *args.ColIndex, TaskIndex: *args.TaskIndex},
			})
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"kanboard.delete_task",
			mcp.WithDescription("Delete one task, matched by id, else by title within its status column, else by title."),
			mcp.WithString("board_name", mcp.Description("Board name; defaults to the active board")),
			mcp.WithString("id", mcp.Description("Task id")),
			mcp.WithString("title", mcp.Description("Task title")),
			mcp.WithString("status", mcp.Description("Task status used to narrow title matching")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			var args taskArgs
			if err := req.BindArguments(&args); err != nil {
				return invalidRequestToolResult(err), nil
			}
			if strings.TrimSpace(args.ID) == "" && strings.TrimSpace(args.Title) == "" {
				return mcp.NewToolResultError(`invalid_request: one of "id" or "title" is required`), nil
			}
			return applyAction(ctx, boards, common.ActionRequest{
				Type:      common.ActionTypeDeleteTask,
				BoardName: args.BoardName,
				Task:      args.task(),
			})
		},
	)
}

// registerHistoryTool registers the action log tool.
func registerHistoryTool(srv *mcpserver.MCPServer, boards common.BoardService) {
	srv.AddTool(
		mcp.NewTool(
			"kanboard.list_history",
			mcp.WithDescription("List recent committed actions, newest first."),
			mcp.WithNumber("limit", mcp.Description("Maximum rows to return")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			rows, err := boards.History(ctx, req.GetInt("limit", 25))
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{"items": rows})
			if err != nil {
				return nil, fmt.Errorf("encode list_history result: %w", err)
			}
			return result, nil
		},
	)
}

// applyAction dispatches one action and encodes the result.
func applyAction(ctx context.Context, boards common.BoardService, req common.ActionRequest) (*mcp.CallToolResult, error) {
	out, err := boards.Apply(ctx, req)
	if err != nil {
		return toolResultFromError(err), nil
	}
	result, err := mcp.NewToolResultJSON(out)
	if err != nil {
		return nil, fmt.Errorf("encode %s result: %w", req.Type, err)
	}
	return result, nil
}

// invalidRequestToolResult maps argument binding failures into invalid_request tool errors.
func invalidRequestToolResult(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError("invalid_request: " + err.Error())
}

// toolResultFromError maps service errors into MCP-visible tool errors.
func toolResultFromError(err error) *mcp.CallToolResult {
	switch {
	case err == nil:
		return mcp.NewToolResultError("unknown error")
	case errors.Is(err, common.ErrNoBoards):
		return mcp.NewToolResultError("no_boards: " + err.Error())
	case errors.Is(err, common.ErrInvalidRequest):
		return mcp.NewToolResultError("invalid_request: " + err.Error())
	case errors.Is(err, common.ErrNotFound):
		return mcp.NewToolResultError("not_found: " + err.Error())
	case errors.Is(err, common.ErrConflict):
		return mcp.NewToolResultError("conflict: " + err.Error())
	default:
		return mcp.NewToolResultError("internal_error: " + err.Error())
	}
}
