package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	charmLog "github.com/charmbracelet/log"
	"github.com/google/uuid"
	serveradapter "github.com/hylla/kanboard/internal/adapters/server"
	servercommon "github.com/hylla/kanboard/internal/adapters/server/common"
	"github.com/hylla/kanboard/internal/adapters/storage/sqlite"
	"github.com/hylla/kanboard/internal/app"
	"github.com/hylla/kanboard/internal/config"
	"github.com/hylla/kanboard/internal/platform"
	"github.com/hylla/kanboard/internal/tui"
	"github.com/spf13/cobra"
)

// version stores the build version.
var version = "dev"

// program is the subset of tea.Program used by the TUI command.
type program interface {
	Run() (tea.Model, error)
	Send(tea.Msg)
}

// programFactory builds the TUI program.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// serveCommandRunner starts the HTTP+MCP serve flow.
var serveCommandRunner = func(ctx context.Context, cfg serveradapter.Config, deps serveradapter.Dependencies) error {
	return serveradapter.Run(ctx, cfg, deps)
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// rootOptions holds the global flags.
type rootOptions struct {
	configPath string
	dbPath     string
	appName    string
	devMode    bool
}

// run builds the command tree and executes it with args.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return fang.Execute(ctx, root, fang.WithVersion(version))
}

// newRootCommand builds the kanboard command tree.
func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{appName: platform.DefaultAppName}
	defaultDevMode := version == "dev"
	if envDev, ok := parseBoolEnv("KANBOARD_DEV_MODE"); ok {
		defaultDevMode = envDev
	}
	if envApp := strings.TrimSpace(os.Getenv("KANBOARD_APP_NAME")); envApp != "" {
		opts.appName = envApp
	}

	root := &cobra.Command{
		Use:           "kanboard",
		Short:         "Keyboard-driven kanban boards in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), opts, stderr)
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to config TOML")
	flags.StringVar(&opts.dbPath, "db", "", "path to sqlite database")
	flags.StringVar(&opts.appName, "app", opts.appName, "application name for config/data path resolution")
	flags.BoolVar(&opts.devMode, "dev", defaultDevMode, "use dev mode paths (<app>-dev)")

	root.AddCommand(
		newPathsCommand(opts, stdout),
		newServeCommand(opts, stderr),
		newExportCommand(opts, stdout, stderr),
		newImportCommand(opts, stderr),
		newHistoryCommand(opts, stdout, stderr),
	)
	return root
}

// newPathsCommand prints the resolved config and data paths.
func newPathsCommand(opts *rootOptions, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config and data paths",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			paths, err := resolvePaths(opts)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(stdout, "app: %s\n", opts.appName)
			_, _ = fmt.Fprintf(stdout, "dev_mode: %t\n", opts.devMode)
			_, _ = fmt.Fprintf(stdout, "config: %s\n", paths.ConfigPath)
			_, _ = fmt.Fprintf(stdout, "data_dir: %s\n", paths.DataDir)
			_, _ = fmt.Fprintf(stdout, "db: %s\n", paths.DBPath)
			return nil
		},
	}
}

// newServeCommand starts the HTTP API and MCP endpoints.
func newServeCommand(opts *rootOptions, stderr io.Writer) *cobra.Command {
	var (
		httpBind    string
		apiEndpoint string
		mcpEndpoint string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the board HTTP API and MCP endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(cmd.Context(), opts, stderr, "serve")
			if err != nil {
				return err
			}
			defer rt.Close()

			cfg := serveradapter.Config{
				HTTPBind:      rt.cfg.Server.HTTPBind,
				APIEndpoint:   rt.cfg.Server.APIEndpoint,
				MCPEndpoint:   rt.cfg.Server.MCPEndpoint,
				ServerName:    opts.appName,
				ServerVersion: version,
			}
			if cmd.Flags().Changed("http") {
				cfg.HTTPBind = httpBind
			}
			if cmd.Flags().Changed("api-endpoint") {
				cfg.APIEndpoint = apiEndpoint
			}
			if cmd.Flags().Changed("mcp-endpoint") {
				cfg.MCPEndpoint = mcpEndpoint
			}
			return rt.flow("serve", func() error {
				return serveCommandRunner(cmd.Context(), cfg, serveradapter.Dependencies{
					Boards: servercommon.NewStoreAdapter(rt.store),
					Logger: rt.logger,
				})
			})
		},
	}
	cmd.Flags().StringVar(&httpBind, "http", "127.0.0.1:5437", "HTTP listen address")
	cmd.Flags().StringVar(&apiEndpoint, "api-endpoint", "/api/v1", "HTTP API base endpoint")
	cmd.Flags().StringVar(&mcpEndpoint, "mcp-endpoint", "/mcp", "MCP streamable HTTP endpoint")
	return cmd
}

// newExportCommand writes the board collection as a JSON snapshot.
func newExportCommand(opts *rootOptions, stdout, stderr io.Writer) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all boards as a JSON snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(cmd.Context(), opts, stderr, "export")
			if err != nil {
				return err
			}
			defer rt.Close()
			return rt.flow("export", func() error {
				return runExport(cmd.Context(), rt.store, outPath, stdout)
			})
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "-", "output file path ('-' for stdout)")
	return cmd
}

// newImportCommand merges boards from a JSON snapshot.
func newImportCommand(opts *rootOptions, stderr io.Writer) *cobra.Command {
	var inPath string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Merge boards from a JSON snapshot, replacing same-named boards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(inPath) == "" {
				return errors.New("--in is required")
			}
			rt, err := openRuntime(cmd.Context(), opts, stderr, "import")
			if err != nil {
				return err
			}
			defer rt.Close()
			return rt.flow("import", func() error {
				return runImport(cmd.Context(), rt.store, inPath)
			})
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "input snapshot JSON file")
	return cmd
}

// newHistoryCommand prints recent committed actions.
func newHistoryCommand(opts *rootOptions, stdout, stderr io.Writer) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent board actions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be > 0, got %d", limit)
			}
			rt, err := openRuntime(cmd.Context(), opts, stderr, "history")
			if err != nil {
				return err
			}
			defer rt.Close()
			return rt.flow("history", func() error {
				entries, err := rt.store.History(cmd.Context(), limit)
				if err != nil {
					return fmt.Errorf("list history: %w", err)
				}
				_, _ = fmt.Fprintln(stdout, renderHistory(entries))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum entries to print")
	return cmd
}

// renderHistory renders history entries as a bordered table.
func renderHistory(entries []app.HistoryEntry) string {
	if len(entries) == 0 {
		return "no actions recorded yet"
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("62"))).
		Headers("When", "Action", "Board", "Summary").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230"))
			}
			return lipgloss.NewStyle()
		})
	for _, entry := range entries {
		t.Row(entry.OccurredAt.UTC().Format(time.RFC3339), string(entry.Kind), entry.BoardName, entry.Summary)
	}
	return t.Render()
}

// runTUI opens the store and runs the board program until it exits.
func runTUI(ctx context.Context, opts *rootOptions, stderr io.Writer) error {
	rt, err := openRuntime(ctx, opts, stderr, "tui")
	if err != nil {
		return err
	}
	defer rt.Close()

	if created, err := config.WriteDefault(rt.configPath, rt.defaultCfg); err != nil {
		rt.logger.Warn("default config write failed", "config_path", rt.configPath, "err", err)
	} else if created {
		rt.logger.Info("default config written", "config_path", rt.configPath)
	}

	m := tui.NewModel(rt.store, tuiOptions(rt.cfg)...)
	rt.logger.Info("starting tui program loop")
	p := programFactory(m)
	unsubscribe := rt.store.Subscribe(func(state app.State) {
		p.Send(tui.StateChangedMsg{State: state})
	})
	defer unsubscribe()

	return rt.flow("tui", func() error {
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("run tui program: %w", err)
		}
		return nil
	})
}

// tuiOptions maps persisted config values into model options.
func tuiOptions(cfg config.Config) []tui.Option {
	return []tui.Option{
		tui.WithDefaultColumns(cfg.Board.DefaultColumns),
		tui.WithSidebar(cfg.UI.ShowSidebar),
		tui.WithToastDuration(time.Duration(cfg.UI.ToastSeconds) * time.Second),
		tui.WithConfirmDelete(cfg.UI.ConfirmDelete),
	}
}

// cliRuntime bundles the resources one command needs.
type cliRuntime struct {
	cfg        config.Config
	defaultCfg config.Config
	configPath string
	logger     *runtimeLogger
	repo       *sqlite.Repository
	store      *app.Store
	stderr     io.Writer
}

// resolvedPaths holds platform paths after env overrides plus the database
// path the platform would use without them.
type resolvedPaths struct {
	platform.Paths
	defaultDBPath string
	envDB         bool
}

// resolvePaths resolves platform paths with env overrides applied.
func resolvePaths(opts *rootOptions) (resolvedPaths, error) {
	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: opts.appName,
		DevMode: opts.devMode,
	})
	if err != nil {
		return resolvedPaths{}, err
	}
	out := resolvedPaths{defaultDBPath: paths.DBPath}
	out.Paths, out.envDB = paths.WithEnvOverrides(os.Getenv)
	return out, nil
}

// openRuntime loads config, configures logging, and opens the sqlite-backed store.
func openRuntime(ctx context.Context, opts *rootOptions, stderr io.Writer, command string) (*cliRuntime, error) {
	paths, err := resolvePaths(opts)
	if err != nil {
		return nil, err
	}

	configPath := strings.TrimSpace(opts.configPath)
	if configPath == "" {
		configPath = paths.ConfigPath
	}
	dbPath := strings.TrimSpace(opts.dbPath)
	dbOverridden := dbPath != "" || paths.envDB
	if dbPath == "" {
		dbPath = paths.DBPath
	}

	cfg, err := config.Load(configPath, config.Default(dbPath))
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", configPath, err)
	}
	if dbOverridden {
		cfg.Database.Path = dbPath
	}

	logger, err := newRuntimeLogger(stderr, opts.appName, opts.devMode, cfg.Logging, time.Now)
	if err != nil {
		return nil, fmt.Errorf("configure runtime logger: %w", err)
	}
	if command == "tui" {
		// Runtime logs stay in the dev-file sink while the board is on screen.
		logger.SetConsoleEnabled(false)
	}
	rt := &cliRuntime{
		cfg:        cfg,
		defaultCfg: config.Default(paths.defaultDBPath),
		configPath: configPath,
		logger:     logger,
		stderr:     stderr,
	}

	logger.Info("startup configuration resolved", "app", opts.appName, "dev_mode", opts.devMode, "command", command)
	logger.Debug("runtime paths resolved", "config_path", configPath, "data_dir", paths.DataDir, "db_path", dbPath)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		rt.Close()
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	logger.Info("opening sqlite repository", "db_path", cfg.Database.Path)
	repo, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Error("sqlite open failed", "db_path", cfg.Database.Path, "err", err)
		rt.Close()
		return nil, fmt.Errorf("open sqlite repository: %w", err)
	}
	rt.repo = repo

	rt.store = app.NewStore(repo, app.StoreConfig{
		IDGen:  uuid.NewString,
		Clock:  time.Now,
		Logger: logger,
	})
	state, err := rt.store.Load(ctx)
	if err != nil {
		logger.Error("store load failed", "err", err)
		rt.Close()
		return nil, err
	}
	logger.Info("store loaded", "boards", len(state.Boards), "active", state.Active)
	return rt, nil
}

// flow wraps one command body with start/complete/failed log lines.
func (r *cliRuntime) flow(command string, fn func() error) error {
	r.logger.Info("command flow start", "command", command)
	if err := fn(); err != nil {
		r.logger.Error("command flow failed", "command", command, "err", err)
		return fmt.Errorf("run %s command: %w", command, err)
	}
	r.logger.Info("command flow complete", "command", command)
	return nil
}

// Close releases the repository and the log file.
func (r *cliRuntime) Close() {
	if r == nil {
		return
	}
	if r.repo != nil {
		if err := r.repo.Close(); err != nil {
			r.logger.Warn("sqlite close failed", "db_path", r.cfg.Database.Path, "err", err)
		}
	}
	if err := r.logger.Close(); err != nil && r.logger.shouldLogToSink(r.logger.consoleSink) {
		_, _ = fmt.Fprintf(r.stderr, "warning: close runtime log sink: %v\n", err)
	}
}

// runExport writes the current snapshot to outPath, or stdout for "-".
func runExport(ctx context.Context, store *app.Store, outPath string, stdout io.Writer) error {
	snap, err := store.ExportSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("export snapshot: %w", err)
	}
	encoded, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot json: %w", err)
	}
	encoded = append(encoded, '\n')

	if outPath == "-" || outPath == "" {
		if _, err := stdout.Write(encoded); err != nil {
			return fmt.Errorf("write snapshot to stdout: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create export output dir: %w", err)
	}
	if err := os.WriteFile(outPath, encoded, 0o644); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}
	return nil
}

// runImport reads one snapshot file and merges it into the store.
func runImport(ctx context.Context, store *app.Store, inPath string) error {
	content, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("read import file: %w", err)
	}
	var snap app.Snapshot
	if err := json.Unmarshal(content, &snap); err != nil {
		return fmt.Errorf("decode snapshot json: %w", err)
	}
	if err := store.ImportSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("import snapshot: %w", err)
	}
	return nil
}

// parseBoolEnv parses one boolean env var, reporting whether it was set.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

// runtimeLogger fans log events to a styled console sink and an optional dev-file sink.
type runtimeLogger struct {
	sinks          []*charmLog.Logger
	consoleSink    *charmLog.Logger
	consoleEnabled bool
	closeFile      func() error
	devLog         string
}

// newRuntimeLogger configures runtime log sinks from CLI/config state.
func newRuntimeLogger(stderr io.Writer, appName string, devMode bool, cfg config.LoggingConfig, now func() time.Time) (*runtimeLogger, error) {
	level, err := charmLog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse logging level %q: %w", cfg.Level, err)
	}
	if now == nil {
		now = time.Now
	}
	if stderr == nil {
		stderr = io.Discard
	}

	consoleLogger := charmLog.NewWithOptions(stderr, charmLog.Options{
		Level:           level,
		Prefix:          appName,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       charmLog.TextFormatter,
	})
	logger := &runtimeLogger{
		sinks:          []*charmLog.Logger{consoleLogger},
		consoleSink:    consoleLogger,
		consoleEnabled: true,
	}
	if !devMode || !cfg.DevFile.Enabled {
		return logger, nil
	}

	devLogPath, err := devLogFilePath(cfg.DevFile.Dir, appName, now().UTC())
	if err != nil {
		return nil, fmt.Errorf("resolve dev log file path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(devLogPath), 0o755); err != nil {
		return nil, fmt.Errorf("create dev log dir: %w", err)
	}
	logFile, err := os.OpenFile(devLogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open dev log file: %w", err)
	}

	// File output stays logfmt so it can be grepped.
	fileLogger := charmLog.NewWithOptions(logFile, charmLog.Options{
		Level:           level,
		Prefix:          appName,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       charmLog.LogfmtFormatter,
	})
	logger.sinks = append(logger.sinks, fileLogger)
	logger.closeFile = logFile.Close
	logger.devLog = devLogPath
	return logger, nil
}

// DevLogPath returns the active dev log file path.
func (l *runtimeLogger) DevLogPath() string {
	if l == nil {
		return ""
	}
	return l.devLog
}

// Close closes the optional dev-file sink.
func (l *runtimeLogger) Close() error {
	if l == nil || l.closeFile == nil {
		return nil
	}
	return l.closeFile()
}

// SetConsoleEnabled toggles whether the console sink receives runtime events.
func (l *runtimeLogger) SetConsoleEnabled(enabled bool) {
	if l == nil {
		return
	}
	l.consoleEnabled = enabled
}

// shouldLogToSink reports whether one sink should receive runtime output.
func (l *runtimeLogger) shouldLogToSink(sink *charmLog.Logger) bool {
	if l == nil || sink == nil {
		return false
	}
	return sink != l.consoleSink || l.consoleEnabled
}

// log fans one event out to every enabled sink.
func (l *runtimeLogger) log(level charmLog.Level, msg string, keyvals ...any) {
	if l == nil {
		return
	}
	for _, sink := range l.sinks {
		if !l.shouldLogToSink(sink) {
			continue
		}
		sink.Log(level, msg, keyvals...)
	}
}

// Debug logs a debug event to all configured sinks.
func (l *runtimeLogger) Debug(msg string, keyvals ...any) { l.log(charmLog.DebugLevel, msg, keyvals...) }

// Info logs an informational event to all configured sinks.
func (l *runtimeLogger) Info(msg string, keyvals ...any) { l.log(charmLog.InfoLevel, msg, keyvals...) }

// Warn logs a warning event to all configured sinks.
func (l *runtimeLogger) Warn(msg string, keyvals ...any) { l.log(charmLog.WarnLevel, msg, keyvals...) }

// Error logs an error event to all configured sinks.
func (l *runtimeLogger) Error(msg string, keyvals ...any) { l.log(charmLog.ErrorLevel, msg, keyvals...) }

// devLogFilePath resolves a workspace-local dev log file path for the current run day.
func devLogFilePath(configDir, appName string, now time.Time) (string, error) {
	baseDir := strings.TrimSpace(configDir)
	if baseDir == "" {
		baseDir = ".kanboard/log"
	}
	if !filepath.IsAbs(baseDir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve working dir: %w", err)
		}
		baseDir = filepath.Join(workspaceRootFrom(cwd), baseDir)
	}
	fileName := fmt.Sprintf("%s-%s.log", sanitizeLogFileStem(appName), now.Format("20060102"))
	return filepath.Join(filepath.Clean(baseDir), fileName), nil
}

// workspaceRootFrom resolves the nearest ancestor holding go.mod or .git.
func workspaceRootFrom(start string) string {
	start = filepath.Clean(strings.TrimSpace(start))
	if start == "" {
		return "."
	}
	dir := start
	for {
		if hasWorkspaceMarker(dir) {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start
		}
		dir = parent
	}
}

// hasWorkspaceMarker reports whether a directory looks like a project workspace root.
func hasWorkspaceMarker(dir string) bool {
	for _, marker := range []string{"go.mod", ".git"} {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	return false
}

// sanitizeLogFileStem normalizes app names into safe file-name segments.
func sanitizeLogFileStem(appName string) string {
	replacer := strings.NewReplacer("/", "-", "\\", "-", ":", "-", " ", "-")
	stem := strings.Trim(replacer.Replace(strings.TrimSpace(appName)), "-")
	if stem == "" {
		return platform.DefaultAppName
	}
	return stem
}
