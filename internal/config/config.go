// Package config handles the XDG configuration directory, file paths and the
// optional config.yaml file.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// AppName is the application directory name.
	AppName = "tasktrack"

	// ConfigFile is the optional settings filename.
	ConfigFile = "config.yaml"

	// DataDir is the default file-backend directory, relative to Dir.
	DataDir = "data"

	// OAuthClientFile is the OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored OAuth token filename.
	TokenFile = "token.json"
)

// Storage backend names.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendMySQL  = "mysql"
)

// Environment overrides.
const (
	EnvStorageBackend = "TASKTRACK_STORAGE_BACKEND"
	EnvMySQLDSN       = "TASKTRACK_MYSQL_DSN"
)

// StorageConfig selects and configures the key-value backend.
type StorageConfig struct {
	Backend    string `yaml:"backend"`
	Path       string `yaml:"path"`
	DSN        string `yaml:"dsn"`
	QuotaBytes int64  `yaml:"quota_bytes"`
}

// SyncConfig configures the Google Tasks mirror.
type SyncConfig struct {
	// List is the target Google Tasks list name. Empty means the default list.
	List string `yaml:"list"`
}

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	Storage StorageConfig
	Sync    SyncConfig

	// Logger receives diagnostics. Never nil after New.
	Logger *slog.Logger
}

type fileConfig struct {
	Storage StorageConfig `yaml:"storage"`
	Sync    SyncConfig    `yaml:"sync"`
}

// New creates a Config with the default or specified config directory,
// applying config.yaml (if present) and environment overrides.
// If configDir is empty, uses XDG_CONFIG_HOME/tasktrack or $HOME/.config/tasktrack.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{
		Dir:     dir,
		Storage: StorageConfig{Backend: BackendFile},
		Logger:  DiscardLogger(),
	}
	if err := cfg.load(); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	cfg.Storage.Backend = strings.ToLower(strings.TrimSpace(cfg.Storage.Backend))
	if err := cfg.Storage.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

func (c *Config) load() error {
	data, err := os.ReadFile(c.ConfigFilePath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", ConfigFile, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("invalid %s: %w", ConfigFile, err)
	}
	if fc.Storage.Backend != "" {
		c.Storage.Backend = fc.Storage.Backend
	}
	c.Storage.Path = fc.Storage.Path
	c.Storage.DSN = fc.Storage.DSN
	c.Storage.QuotaBytes = fc.Storage.QuotaBytes
	c.Sync = fc.Sync
	return nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvStorageBackend)); v != "" {
		c.Storage.Backend = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvMySQLDSN)); v != "" {
		c.Storage.DSN = v
	}
}

// Validate checks the backend selection.
func (s StorageConfig) Validate() error {
	switch s.Backend {
	case BackendFile, BackendMemory:
	case BackendMySQL:
		if s.DSN == "" {
			return fmt.Errorf("storage backend %q requires a dsn", BackendMySQL)
		}
	default:
		return fmt.Errorf("unknown storage backend: %s", s.Backend)
	}
	if s.QuotaBytes < 0 {
		return fmt.Errorf("invalid quota_bytes: %d", s.QuotaBytes)
	}
	return nil
}

// ConfigFilePath returns the path to config.yaml.
func (c *Config) ConfigFilePath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// DataPath returns the file-backend directory.
func (c *Config) DataPath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	return filepath.Join(c.Dir, DataDir)
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}

// NewLogger returns a text logger on w: debug level when debug is set,
// warnings only otherwise.
func NewLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Log returns c.Logger, or a discarding logger when unset.
func (c *Config) Log() *slog.Logger {
	if c == nil || c.Logger == nil {
		return DiscardLogger()
	}
	return c.Logger
}
