package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/1broseidon/screenwall/internal/matrix"
)

// ErrInvalid is wrapped by every ValidationError.
var ErrInvalid = errors.New("invalid config")

// ValidationError points at the offending config key.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() []error { return []error{ErrInvalid, e.Err} }

// Storage backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Storage selects and configures the persistence backend.
type Storage struct {
	Backend string `yaml:"backend" toml:"backend"`
	// Path is the directory for the file backend or the database file for sqlite.
	Path            string `yaml:"path,omitempty" toml:"path,omitempty"`
	RedisAddr       string `yaml:"redis_addr,omitempty" toml:"redis_addr,omitempty"`
	RedisPassword   string `yaml:"redis_password,omitempty" toml:"redis_password,omitempty"`
	RedisDB         int    `yaml:"redis_db,omitempty" toml:"redis_db,omitempty"`
	RedisPrefix     string `yaml:"redis_prefix,omitempty" toml:"redis_prefix,omitempty"`
	MongoURI        string `yaml:"mongo_uri,omitempty" toml:"mongo_uri,omitempty"`
	MongoDatabase   string `yaml:"mongo_database,omitempty" toml:"mongo_database,omitempty"`
	MongoCollection string `yaml:"mongo_collection,omitempty" toml:"mongo_collection,omitempty"`
}

// HTTP configures the read-only API the opened windows poll.
type HTTP struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Addr    string `yaml:"addr" toml:"addr"`
}

// Launcher is the command used to open one window per screen.
//
// Args support the placeholders {url}, {name}, {left}, {top}, {width},
// {height} and {profile}.
type Launcher struct {
	Command       string        `yaml:"command" toml:"command"`
	Args          []string      `yaml:"args" toml:"args"`
	LaunchTimeout time.Duration `yaml:"launch_timeout" toml:"launch_timeout"`
}

// Logging configures the daemon logger.
type Logging struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" toml:"level"`
}

// Config is the screenwall configuration.
type Config struct {
	// IncludePrimary is reserved; the matrix currently always contains every screen.
	IncludePrimary bool   `yaml:"include_primary" toml:"include_primary"`
	StorageKey     string `yaml:"storage_key" toml:"storage_key"`
	// CloseSticky closes every window as soon as one of them is closed.
	CloseSticky     bool          `yaml:"close_sticky" toml:"close_sticky"`
	PollInterval    time.Duration `yaml:"poll_interval" toml:"poll_interval"`
	MonitorInterval time.Duration `yaml:"monitor_interval" toml:"monitor_interval"`
	// URL is opened in every window; {matrix_id} is replaced per screen.
	URL             string `yaml:"url" toml:"url"`
	DefaultTemplate string `yaml:"default_template" toml:"default_template"`
	// ScreenCheckInterval enables periodic screen change detection when > 0.
	ScreenCheckInterval time.Duration `yaml:"screen_check_interval" toml:"screen_check_interval"`
	// RebuildOnChange rebuilds the matrix when a screen change is detected.
	RebuildOnChange bool     `yaml:"rebuild_on_change" toml:"rebuild_on_change"`
	Storage         Storage  `yaml:"storage" toml:"storage"`
	HTTP            HTTP     `yaml:"http" toml:"http"`
	Launcher        Launcher `yaml:"launcher" toml:"launcher"`
	Logging         Logging  `yaml:"logging" toml:"logging"`
}

const (
	DefaultStorageKey      = "matrix"
	DefaultPollInterval    = 5 * time.Second
	DefaultMonitorInterval = 200 * time.Millisecond
	DefaultHTTPAddr        = "127.0.0.1:7878"
	DefaultLaunchTimeout   = 5 * time.Second
)

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		IncludePrimary:  false,
		StorageKey:      DefaultStorageKey,
		CloseSticky:     false,
		PollInterval:    DefaultPollInterval,
		MonitorInterval: DefaultMonitorInterval,
		URL:             "http://" + DefaultHTTPAddr + "/api/matrices/{matrix_id}/cells",
		DefaultTemplate: "1x1",
		Storage: Storage{
			Backend:         BackendFile,
			RedisAddr:       "localhost:6379",
			RedisPrefix:     "screenwall:",
			MongoDatabase:   "screenwall",
			MongoCollection: "snapshots",
		},
		HTTP: HTTP{
			Enabled: true,
			Addr:    DefaultHTTPAddr,
		},
		Launcher: Launcher{
			Command: "chromium",
			Args: []string{
				"--new-window",
				"--app={url}",
				"--window-position={left},{top}",
				"--window-size={width},{height}",
				"--user-data-dir={profile}",
			},
			LaunchTimeout: DefaultLaunchTimeout,
		},
		Logging: Logging{Level: "info"},
	}
}

// WindowURL expands the configured URL for one matrix.
func (c *Config) WindowURL(matrixID string) string {
	return strings.ReplaceAll(c.URL, "{matrix_id}", matrixID)
}

// Template parses DefaultTemplate.
func (c *Config) Template() (matrix.Template, error) {
	return matrix.ParseTemplate(c.DefaultTemplate)
}

// Validate checks the config for values the daemon cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.StorageKey) == "" {
		return &ValidationError{Path: "storage_key", Err: fmt.Errorf("storage_key is required")}
	}
	if c.PollInterval <= 0 {
		return &ValidationError{Path: "poll_interval", Err: fmt.Errorf("poll_interval must be > 0")}
	}
	if c.MonitorInterval <= 0 {
		return &ValidationError{Path: "monitor_interval", Err: fmt.Errorf("monitor_interval must be > 0")}
	}
	if c.ScreenCheckInterval < 0 {
		return &ValidationError{Path: "screen_check_interval", Err: fmt.Errorf("screen_check_interval must be >= 0")}
	}
	if _, err := c.Template(); err != nil {
		return &ValidationError{Path: "default_template", Err: err}
	}
	switch c.Storage.Backend {
	case BackendMemory, BackendFile, BackendSQLite:
	case BackendRedis:
		if c.Storage.RedisAddr == "" {
			return &ValidationError{Path: "storage.redis_addr", Err: fmt.Errorf("redis_addr is required for the redis backend")}
		}
	case BackendMongo:
		if c.Storage.MongoURI == "" {
			return &ValidationError{Path: "storage.mongo_uri", Err: fmt.Errorf("mongo_uri is required for the mongo backend")}
		}
		if c.Storage.MongoDatabase == "" || c.Storage.MongoCollection == "" {
			return &ValidationError{Path: "storage", Err: fmt.Errorf("mongo_database and mongo_collection are required for the mongo backend")}
		}
	default:
		return &ValidationError{Path: "storage.backend", Err: fmt.Errorf("storage.backend must be one of: memory, file, sqlite, redis, mongo")}
	}
	if c.HTTP.Enabled && strings.TrimSpace(c.HTTP.Addr) == "" {
		return &ValidationError{Path: "http.addr", Err: fmt.Errorf("http.addr is required when http is enabled")}
	}
	if strings.TrimSpace(c.Launcher.Command) == "" {
		return &ValidationError{Path: "launcher.command", Err: fmt.Errorf("launcher.command is required")}
	}
	if c.Launcher.LaunchTimeout <= 0 {
		return &ValidationError{Path: "launcher.launch_timeout", Err: fmt.Errorf("launch_timeout must be > 0")}
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "logging.level", Err: fmt.Errorf("logging.level must be one of: debug, info, warn, error")}
	}
	return nil
}
