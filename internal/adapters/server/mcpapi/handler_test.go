package mcpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/hylla/kanboard/internal/adapters/server/common"
	"github.com/hylla/kanboard/internal/app"
	"github.com/mark3labs/mcp-go/mcp"
)

// stubBoardService provides deterministic board responses for MCP tool tests.
type stubBoardService struct {
	boards     []common.BoardSummary
	board      app.SnapshotBoard
	result     common.ActionResult
	history    []common.HistoryItem
	err        error
	lastName   string
	lastAction common.ActionRequest
	lastLimit  int
}

// ListBoards returns the configured boards.
func (s *stubBoardService) ListBoards(context.Context) ([]common.BoardSummary, error) {
	if s.err != nil {
		return nil, s.err
	}
	return append([]common.BoardSummary(nil), s.boards...), nil
}

// GetBoard records the name and returns the configured board.
func (s *stubBoardService) GetBoard(_ context.Context, name string) (app.SnapshotBoard, error) {
	s.lastName = name
	if s.err != nil {
		return app.SnapshotBoard{}, s.err
	}
	return s.board, nil
}

// Apply records the action and returns the configured result.
func (s *stubBoardService) Apply(_ context.Context, req common.ActionRequest) (common.ActionResult, error) {
	s.lastAction = req
	if s.err != nil {
		return common.ActionResult{}, s.err
	}
	return s.result, nil
}

// History records the limit and returns the configured items.
func (s *stubBoardService) History(_ context.Context, limit int) ([]common.HistoryItem, error) {
	s.lastLimit = limit
	if s.err != nil {
		return nil, s.err
	}
	return s.history, nil
}

// jsonRPCResponse models minimal JSON-RPC response fields used in MCP adapter tests.
type jsonRPCResponse struct {
	ID     float64        `json:"id"`
	Result map[string]any `json:"result"`
}

// callToolRequest constructs one deterministic tools/call JSON-RPC request payload.
func callToolRequest(id int, toolName string, arguments map[string]any) map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  "tools/call",
		"params": map[string]any{
			"name":      toolName,
			"arguments": arguments,
		},
	}
}

// toolResultText decodes the first text entry from one tool-call result payload.
func toolResultText(t *testing.T, result map[string]any) string {
	t.Helper()

	contentRaw, ok := result["content"].([]any)
	if !ok || len(contentRaw) == 0 {
		t.Fatalf("content missing in tool result: %#v", result)
	}
	first, ok := contentRaw[0].(map[string]any)
	if !ok {
		t.Fatalf("first content entry has unexpected type: %#v", contentRaw[0])
	}
	text, ok := first["text"].(string)
	if !ok {
		t.Fatalf("content text missing in tool result: %#v", first)
	}
	return text
}

// toolResultStructured decodes structuredContent as one map for stable assertions.
func toolResultStructured(t *testing.T, result map[string]any) map[string]any {
	t.Helper()
	structured, ok := result["structuredContent"].(map[string]any)
	if !ok {
		t.Fatalf("structuredContent missing in tool result: %#v", result)
	}
	return structured
}

// postJSONRPC sends one JSON-RPC payload and decodes the response body.
func postJSONRPC(t *testing.T, client *http.Client, url string, payload any) (*http.Response, jsonRPCResponse) {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	var decoded jsonRPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if err := resp.Body.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return resp, decoded
}

// initializeRequest builds a deterministic MCP initialize request payload.
func initializeRequest() map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "initialize",
		"params": map[string]any{
			"protocolVersion": mcp.LATEST_PROTOCOL_VERSION,
			"clientInfo": map[string]any{
				"name":    "kanboard-test",
				"version": "1.0.0",
			},
		},
	}
}

// callToolResultText decodes the first textual content block from a CallToolResult.
func callToolResultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatalf("result = nil, want non-nil")
	}
	if len(result.Content) == 0 {
		t.Fatalf("result content is empty")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content[0] has unexpected type %T", result.Content[0])
	}
	return text.Text
}

// newTestServer starts one MCP handler over the given service.
func newTestServer(t *testing.T, boards common.BoardService) *httptest.Server {
	t.Helper()
	handler, err := NewHandler(Config{}, boards)
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	_, _ = postJSONRPC(t, server.Client(), server.URL, initializeRequest())
	return server
}

// TestHandlerUsesStatelessTransport verifies MCP transport does not issue session ids.
func TestHandlerUsesStatelessTransport(t *testing.T) {
	handler, err := NewHandler(Config{}, &stubBoardService{})
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	server := httptest.NewServer(handler)
	defer server.Close()

	resp, decoded := postJSONRPC(t, server.Client(), server.URL, initializeRequest())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if decoded.ID != 1 {
		t.Fatalf("id = %v, want 1", decoded.ID)
	}
	if got := resp.Header.Get("Mcp-Session-Id"); got != "" {
		t.Fatalf("Mcp-Session-Id header = %q, want empty (stateless transport)", got)
	}
}

// TestHandlerRegistersBoardTools verifies MCP tool discovery lists every board and task tool.
func TestHandlerRegistersBoardTools(t *testing.T) {
	server := newTestServer(t, &stubBoardService{})
	_, toolsResp := postJSONRPC(t, server.Client(), server.URL, map[string]any{
		"jsonrpc": "2.0",
		"id":      2,
		"method":  "tools/list",
	})

	toolsRaw, ok := toolsResp.Result["tools"].([]any)
	if !ok {
		t.Fatalf("tools list payload missing tools: %#v", toolsResp.Result)
	}
	toolNames := make([]string, 0, len(toolsRaw))
	for _, toolRaw := range toolsRaw {
		toolMap, ok := toolRaw.(map[string]any)
		if !ok {
			continue
		}
		name, _ := toolMap["name"].(string)
		toolNames = append(toolNames, name)
	}
	for _, want := range []string{
		"kanboard.list_boards",
		"kanboard.get_active_board",
		"kanboard.add_board",
		"kanboard.set_active_board",
		"kanboard.delete_board",
		"kanboard.add_task",
		"kanboard.edit_task",
		"kanboard.delete_task",
		"kanboard.list_history",
	} {
		if !slices.Contains(toolNames, want) {
			t.Fatalf("tool list missing %s: %#v", want, toolNames)
		}
	}
}

// TestHandlerListBoardsToolCall verifies tool-call wiring returns structured board rows.
func TestHandlerListBoardsToolCall(t *testing.T) {
	svc := &stubBoardService{boards: []common.BoardSummary{
		{Name: "Platform Launch", Active: true, Columns: []string{"Todo", "Done"}, Tasks: 2},
	}}
	server := newTestServer(t, svc)

	_, callResp := postJSONRPC(t, server.Client(), server.URL, callToolRequest(3, "kanboard.list_boards", map[string]any{}))
	structured := toolResultStructured(t, callResp.Result)
	rows, ok := structured["boards"].([]any)
	if !ok || len(rows) != 1 {
		t.Fatalf("boards = %#v, want one row", structured["boards"])
	}
	row, _ := rows[0].(map[string]any)
	if row["name"] != "Platform Launch" || row["active"] != true {
		t.Fatalf("unexpected row %#v", row)
	}
}

// TestHandlerGetActiveBoardPassesName verifies the optional name argument.
func TestHandlerGetActiveBoardPassesName(t *testing.T) {
	svc := &stubBoardService{board: app.SnapshotBoard{Name: "Marketing"}}
	server := newTestServer(t, svc)

	_, callResp := postJSONRPC(t, server.Client(), server.URL, callToolRequest(3, "kanboard.get_active_board", map[string]any{
		"name": "Marketing",
	}))
	if got, _ := toolResultStructured(t, callResp.Result)["name"].(string); got != "Marketing" {
		t.Fatalf("name = %q, want Marketing", got)
	}
	if svc.lastName != "Marketing" {
		t.Fatalf("lastName = %q, want Marketing", svc.lastName)
	}
}

// TestHandlerTaskToolsBuildActions verifies task tools translate arguments into action requests.
func TestHandlerTaskToolsBuildActions(t *testing.T) {
	svc := &stubBoardService{result: common.ActionResult{Active: "Platform Launch"}}
	server := newTestServer(t, svc)

	_, _ = postJSONRPC(t, server.Client(), server.URL, callToolRequest(3, "kanboard.add_task", map[string]any{
		"title":              "Build UI",
		"status":             "Todo",
		"subtasks":           []string{"Wireframes", "Styles"},
		"completed_subtasks": []string{"Styles"},
	}))
	got := svc.lastAction
	if got.Type != common.ActionTypeAddTask || got.Task == nil {
		t.Fatalf("unexpected add_task action %#v", got)
	}
	if got.Task.Title != "Build UI" || len(got.Task.Subtasks) != 2 {
		t.Fatalf("unexpected task %#v", got.Task)
	}
	if got.Task.Subtasks[0].IsCompleted || !got.Task.Subtasks[1].IsCompleted {
		t.Fatalf("unexpected subtask completion %#v", got.Task.Subtasks)
	}

	_, _ = postJSONRPC(t, server.Client(), server.URL, callToolRequest(4, "kanboard.edit_task", map[string]any{
		"col_index":  1,
		"task_index": 0,
		"title":      "Ship UI",
		"status":     "Done",
	}))
	got = svc.lastAction
	if got.Type != common.ActionTypeEditTask || got.Indexes == nil {
		t.Fatalf("unexpected edit_task action %#v", got)
	}
	if got.Indexes.ColIndex != 1 || got.Indexes.TaskIndex != 0 {
		t.Fatalf("indexes = %#v, want col 1 task 0", got.Indexes)
	}

	_, _ = postJSONRPC(t, server.Client(), server.URL, callToolRequest(5, "kanboard.delete_task", map[string]any{
		"board_name": "Platform Launch",
		"id":         "t1",
	}))
	got = svc.lastAction
	if got.Type != common.ActionTypeDeleteTask || got.BoardName != "Platform Launch" || got.Task.ID != "t1" {
		t.Fatalf("unexpected delete_task action %#v", got)
	}
}

// TestHandlerToolCallArgumentErrors verifies missing arguments fail as invalid_request.
func TestHandlerToolCallArgumentErrors(t *testing.T) {
	cases := []struct {
		name string
		tool string
		args map[string]any
	}{
		{name: "add_board without name", tool: "kanboard.add_board", args: map[string]any{}},
		{name: "add_task without title", tool: "kanboard.add_task", args: map[string]any{"status": "Todo"}},
		{name: "edit_task without indexes", tool: "kanboard.edit_task", args: map[string]any{"title": "x"}},
		{name: "delete_task without id or title", tool: "kanboard.delete_task", args: map[string]any{}},
	}

	svc := &stubBoardService{}
	server := newTestServer(t, svc)
	for i, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			_, callResp := postJSONRPC(t, server.Client(), server.URL, callToolRequest(10+i, tt.tool, tt.args))
			if isErr, _ := callResp.Result["isError"].(bool); !isErr {
				t.Fatalf("isError = false, want true: %#v", callResp.Result)
			}
			if got := toolResultText(t, callResp.Result); !strings.HasPrefix(got, "invalid_request:") {
				t.Fatalf("text = %q, want invalid_request prefix", got)
			}
		})
	}
}

// TestHandlerWithStoreAdapter verifies a full board and task round trip through the store.
func TestHandlerWithStoreAdapter(t *testing.T) {
	n := 0
	store := app.NewStore(nil, app.StoreConfig{IDGen: func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}})
	server := newTestServer(t, common.NewStoreAdapter(store))

	_, resp := postJSONRPC(t, server.Client(), server.URL, callToolRequest(3, "kanboard.get_active_board", map[string]any{}))
	if got := toolResultText(t, resp.Result); !strings.HasPrefix(got, "no_boards:") {
		t.Fatalf("empty collection text = %q, want no_boards prefix", got)
	}

	_, resp = postJSONRPC(t, server.Client(), server.URL, callToolRequest(4, "kanboard.add_board", map[string]any{
		"name":    "Roadmap",
		"columns": []string{"Todo", "Done"},
	}))
	if got, _ := toolResultStructured(t, resp.Result)["active"].(string); got != "Roadmap" {
		t.Fatalf("active = %q, want Roadmap", got)
	}

	_, resp = postJSONRPC(t, server.Client(), server.URL, callToolRequest(5, "kanboard.add_board", map[string]any{
		"name": "Roadmap",
	}))
	if got := toolResultText(t, resp.Result); !strings.HasPrefix(got, "conflict:") {
		t.Fatalf("duplicate text = %q, want conflict prefix", got)
	}

	_, _ = postJSONRPC(t, server.Client(), server.URL, callToolRequest(6, "kanboard.add_task", map[string]any{
		"title":  "Build UI",
		"status": "Done",
	}))
	board, ok := app.ActiveBoard(store.State())
	if !ok || len(board.Columns) != 2 || len(board.Columns[1].Tasks) != 1 {
		t.Fatalf("expected one task in Done, got %#v", board)
	}
	if board.Columns[1].Tasks[0].Title != "Build UI" || board.Columns[1].Tasks[0].ID == "" {
		t.Fatalf("unexpected task %#v", board.Columns[1].Tasks[0])
	}

	_, resp = postJSONRPC(t, server.Client(), server.URL, callToolRequest(7, "kanboard.add_task", map[string]any{
		"title":  "Nowhere",
		"status": "Blocked",
	}))
	if got := toolResultText(t, resp.Result); !strings.HasPrefix(got, "invalid_request:") {
		t.Fatalf("unknown status text = %q, want invalid_request prefix", got)
	}
}

// TestNewHandlerRequiresBoardService verifies dependency enforcement.
func TestNewHandlerRequiresBoardService(t *testing.T) {
	handler, err := NewHandler(Config{}, nil)
	if err == nil {
		t.Fatalf("NewHandler() error = nil, want non-nil")
	}
	if handler != nil {
		t.Fatalf("handler = %#v, want nil", handler)
	}
}

// TestNormalizeConfig verifies MCP config defaults and endpoint normalization.
func TestNormalizeConfig(t *testing.T) {
	cases := []struct {
		name string
		in   Config
		want Config
	}{
		{
			name: "defaults",
			in:   Config{},
			want: Config{ServerName: "kanboard", ServerVersion: "dev", EndpointPath: "/mcp"},
		},
		{
			name: "trims and prefixes endpoint",
			in:   Config{ServerName: " boards ", ServerVersion: " 1.2.3 ", EndpointPath: "tools/mcp/"},
			want: Config{ServerName: "boards", ServerVersion: "1.2.3", EndpointPath: "/tools/mcp"},
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeConfig(tt.in); got != tt.want {
				t.Fatalf("normalizeConfig() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

// TestHandlerServeHTTPUnavailable verifies nil handler paths fail closed with 503.
func TestHandlerServeHTTPUnavailable(t *testing.T) {
	cases := []struct {
		name    string
		handler *Handler
	}{
		{name: "nil receiver", handler: nil},
		{name: "missing inner http handler", handler: &Handler{}},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/mcp", bytes.NewBufferString(`{}`))
			rec := httptest.NewRecorder()

			tt.handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusServiceUnavailable {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
			}
			if !strings.Contains(rec.Body.String(), "mcp handler unavailable") {
				t.Fatalf("body = %q, want mcp handler unavailable", rec.Body.String())
			}
		})
	}
}

// TestToolResultFromErrorMapping verifies deterministic error-to-tool-result mapping.
func TestToolResultFromErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantPrefix string
	}{
		{name: "nil error", err: nil, wantPrefix: "unknown error"},
		{name: "no boards", err: errors.Join(common.ErrNoBoards, errors.New("empty")), wantPrefix: "no_boards:"},
		{name: "invalid request", err: errors.Join(common.ErrInvalidRequest, errors.New("bad")), wantPrefix: "invalid_request:"},
		{name: "not found", err: errors.Join(common.ErrNotFound, errors.New("missing")), wantPrefix: "not_found:"},
		{name: "conflict", err: errors.Join(common.ErrConflict, errors.New("dup")), wantPrefix: "conflict:"},
		{name: "internal", err: errors.New("boom"), wantPrefix: "internal_error:"},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			result := toolResultFromError(tt.err)
			if !result.IsError {
				t.Fatalf("IsError = false, want true")
			}
			if got := callToolResultText(t, result); !strings.HasPrefix(got, tt.wantPrefix) {
				t.Fatalf("text = %q, want prefix %q", got, tt.wantPrefix)
			}
		})
	}
}

// TestHandlerHistoryToolDefaultsLimit verifies the history tool default limit.
func TestHandlerHistoryToolDefaultsLimit(t *testing.T) {
	svc := &stubBoardService{history: []common.HistoryItem{{ID: 1, Kind: "addBoard", Summary: "added board Roadmap"}}}
	server := newTestServer(t, svc)

	_, resp := postJSONRPC(t, server.Client(), server.URL, callToolRequest(3, "kanboard.list_history", map[string]any{}))
	items, ok := toolResultStructured(t, resp.Result)["items"].([]any)
	if !ok || len(items) != 1 {
		t.Fatalf("items = %#v, want one row", items)
	}
	if svc.lastLimit != 25 {
		t.Fatalf("limit = %d, want 25", svc.lastLimit)
	}
}
