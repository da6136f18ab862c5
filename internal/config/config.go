package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	charmLog "github.com/charmbracelet/log"
	toml "github.com/pelletier/go-toml/v2"
)

// maxBoardColumns mirrors the per-board column cap.
const maxBoardColumns = 6

// Config is the on-disk TOML configuration.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Logging  LoggingConfig  `toml:"logging"`
	Board    BoardConfig    `toml:"board"`
	UI       UIConfig       `toml:"ui"`
	Server   ServerConfig   `toml:"server"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type BoardConfig struct {
	DefaultColumns []string `toml:"default_columns"`
}

type UIConfig struct {
	ShowSidebar   bool `toml:"show_sidebar"`
	ToastSeconds  int  `toml:"toast_seconds"`
	ConfirmDelete bool `toml:"confirm_delete"`
}

type ServerConfig struct {
	HTTPBind    string `toml:"http_bind"`
	APIEndpoint string `toml:"api_endpoint"`
	MCPEndpoint string `toml:"mcp_endpoint"`
}

// Default returns the configuration used when no file overrides it.
func Default(dbPath string) Config {
	return Config{
		Database: DatabaseConfig{
			Path: dbPath,
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
				Dir:     ".kanboard/log",
			},
		},
		Board: BoardConfig{
			DefaultColumns: []string{"Todo", "Doing", "Done"},
		},
		UI: UIConfig{
			ShowSidebar:   true,
			ToastSeconds:  3,
			ConfirmDelete: true,
		},
		Server: ServerConfig{
			HTTPBind:    "127.0.0.1:5437",
			APIEndpoint: "/api/v1",
			MCPEndpoint: "/mcp",
		},
	}
}

// Load reads path over defaults. A missing or empty file yields defaults.
func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(bytes.TrimSpace(content)) == 0 {
		return cfg, nil
	}

	decoder := toml.NewDecoder(bytes.NewReader(content))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database path is required")
	}
	if _, err := charmLog.ParseLevel(strings.TrimSpace(c.Logging.Level)); err != nil {
		return fmt.Errorf("invalid logging.level %q: %w", c.Logging.Level, err)
	}

	if len(c.Board.DefaultColumns) > maxBoardColumns {
		return fmt.Errorf("board.default_columns has %d entries, max %d", len(c.Board.DefaultColumns), maxBoardColumns)
	}
	seen := map[string]struct{}{}
	for idx, name := range c.Board.DefaultColumns {
		name = strings.TrimSpace(name)
		if name == "" {
			return fmt.Errorf("board.default_columns[%d] is empty", idx)
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("board.default_columns[%d] is duplicated: %s", idx, name)
		}
		seen[name] = struct{}{}
	}

	if c.UI.ToastSeconds < 0 {
		return fmt.Errorf("ui.toast_seconds must be >= 0")
	}

	if strings.TrimSpace(c.Server.HTTPBind) == "" {
		return errors.New("server.http_bind is required")
	}
	for key, endpoint := range map[string]string{
		"server.api_endpoint": c.Server.APIEndpoint,
		"server.mcp_endpoint": c.Server.MCPEndpoint,
	} {
		if !strings.HasPrefix(strings.TrimSpace(endpoint), "/") {
			return fmt.Errorf("%s must start with '/': %q", key, endpoint)
		}
	}
	if strings.TrimRight(c.Server.APIEndpoint, "/") == strings.TrimRight(c.Server.MCPEndpoint, "/") {
		return errors.New("server.api_endpoint and server.mcp_endpoint must differ")
	}
	return nil
}

// normalize trims string settings in place.
func (c *Config) normalize() {
	c.Database.Path = strings.TrimSpace(c.Database.Path)
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.DevFile.Dir = strings.TrimSpace(c.Logging.DevFile.Dir)
	columns := make([]string, 0, len(c.Board.DefaultColumns))
	for _, name := range c.Board.DefaultColumns {
		columns = append(columns, strings.TrimSpace(name))
	}
	c.Board.DefaultColumns = columns
	c.Server.HTTPBind = strings.TrimSpace(c.Server.HTTPBind)
	c.Server.APIEndpoint = strings.TrimSpace(c.Server.APIEndpoint)
	c.Server.MCPEndpoint = strings.TrimSpace(c.Server.MCPEndpoint)
}

// EnsureConfigDir creates the directory holding path.
func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// WriteDefault writes cfg to path unless a file already exists there.
func WriteDefault(path string, cfg Config) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("stat config: %w", err)
	}
	if err := EnsureConfigDir(path); err != nil {
		return false, fmt.Errorf("create config dir: %w", err)
	}
	encoded, err := toml.Marshal(cfg)
	if err != nil {
		return false, fmt.Errorf("encode toml: %w", err)
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return false, fmt.Errorf("write config: %w", err)
	}
	return true, nil
}
