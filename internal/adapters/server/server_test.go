package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/hylla/kanboard/internal/adapters/server/common"
	"github.com/hylla/kanboard/internal/app"
)

// stubBoards satisfies common.BoardService with a configurable list error.
type stubBoards struct {
	listErr error
}

func (s stubBoards) ListBoards(context.Context) ([]common.BoardSummary, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return []common.BoardSummary{{Name: "Roadmap", Active: true}}, nil
}

func (s stubBoards) GetBoard(context.Context, string) (app.SnapshotBoard, error) {
	return app.SnapshotBoard{Name: "Roadmap"}, nil
}

func (s stubBoards) Apply(context.Context, common.ActionRequest) (common.ActionResult, error) {
	return common.ActionResult{}, nil
}

func (s stubBoards) History(context.Context, int) ([]common.HistoryItem, error) {
	return nil, nil
}

// recordingLogger captures request log messages.
type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) Info(msg string, keyvals ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprint(append([]any{msg}, keyvals...)...))
}

// get issues one GET request against the handler and returns status and body.
func get(t *testing.T, h http.Handler, path string) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	return rec.Code, string(body)
}

// TestNewHandlerServesHealthAndAPI verifies route composition.
func TestNewHandlerServesHealthAndAPI(t *testing.T) {
	h, cfg, err := NewHandler(Config{}, Dependencies{Boards: stubBoards{}})
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	if cfg.HTTPBind != defaultBindAddress || cfg.APIEndpoint != "/api/v1" || cfg.MCPEndpoint != "/mcp" {
		t.Fatalf("unexpected normalized config %#v", cfg)
	}

	if code, body := get(t, h, "/healthz"); code != http.StatusOK || !strings.Contains(body, `"ok"`) {
		t.Fatalf("healthz = %d %q", code, body)
	}
	if code, _ := get(t, h, "/readyz"); code != http.StatusOK {
		t.Fatalf("readyz = %d, want 200", code)
	}
	if code, body := get(t, h, "/api/v1/boards"); code != http.StatusOK || !strings.Contains(body, "Roadmap") {
		t.Fatalf("boards = %d %q", code, body)
	}
}

// TestReadyzReportsUnavailableService verifies readiness fails when the service errors.
func TestReadyzReportsUnavailableService(t *testing.T) {
	h, _, err := NewHandler(Config{}, Dependencies{Boards: stubBoards{listErr: errors.New("db closed")}})
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	if code, _ := get(t, h, "/readyz"); code != http.StatusServiceUnavailable {
		t.Fatalf("readyz = %d, want 503", code)
	}
	if code, _ := get(t, h, "/healthz"); code != http.StatusOK {
		t.Fatalf("healthz = %d, want 200", code)
	}
}

// TestNewHandlerRequiresBoards verifies dependency enforcement.
func TestNewHandlerRequiresBoards(t *testing.T) {
	if _, _, err := NewHandler(Config{}, Dependencies{}); err == nil {
		t.Fatal("NewHandler() error = nil, want missing dependency error")
	}
}

// TestNormalizeConfig verifies defaults and endpoint collision checks.
func TestNormalizeConfig(t *testing.T) {
	cases := []struct {
		name    string
		in      Config
		want    Config
		wantErr bool
	}{
		{
			name: "defaults",
			in:   Config{},
			want: Config{HTTPBind: defaultBindAddress, APIEndpoint: "/api/v1", MCPEndpoint: "/mcp", ServerName: "kanboard", ServerVersion: "dev"},
		},
		{
			name: "custom endpoints are trimmed",
			in:   Config{HTTPBind: " :9000 ", APIEndpoint: "api/", MCPEndpoint: "/tools/mcp/"},
			want: Config{HTTPBind: ":9000", APIEndpoint: "/api", MCPEndpoint: "/tools/mcp", ServerName: "kanboard", ServerVersion: "dev"},
		},
		{
			name:    "colliding endpoints",
			in:      Config{APIEndpoint: "/shared", MCPEndpoint: "shared/"},
			wantErr: true,
		},
		{
			name:    "reserved endpoint",
			in:      Config{APIEndpoint: "/healthz"},
			wantErr: true,
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeConfig(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("normalizeConfig() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("normalizeConfig() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("normalizeConfig() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

// TestNewHandlerLogsRequests verifies the request logger receives one line per request.
func TestNewHandlerLogsRequests(t *testing.T) {
	logger := &recordingLogger{}
	h, _, err := NewHandler(Config{}, Dependencies{Boards: stubBoards{}, Logger: logger})
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	_, _ = get(t, h, "/api/v1/nope")

	logger.mu.Lock()
	defer logger.mu.Unlock()
	if len(logger.lines) != 1 || !strings.Contains(logger.lines[0], "/api/v1/nope") || !strings.Contains(logger.lines[0], "404") {
		t.Fatalf("unexpected log lines %#v", logger.lines)
	}
}

// TestRunStopsOnContextCancel verifies graceful shutdown.
func TestRunStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Config{HTTPBind: "127.0.0.1:0"}, Dependencies{Boards: stubBoards{}})
	}()
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}
