package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.StorageKey != "matrix" {
		t.Fatalf("expected storage_key %q, got %q", "matrix", cfg.StorageKey)
	}
	if cfg.CloseSticky || cfg.IncludePrimary {
		t.Fatalf("expected close_sticky and include_primary to default to false")
	}
	if cfg.PollInterval != 5*time.Second || cfg.MonitorInterval != 200*time.Millisecond {
		t.Fatalf("unexpected default intervals: %s %s", cfg.PollInterval, cfg.MonitorInterval)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.File != "" {
		t.Fatalf("expected no file, got %q", res.File)
	}
	if res.Config.StorageKey != DefaultStorageKey {
		t.Fatalf("expected default storage key, got %q", res.Config.StorageKey)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("# empty\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Storage.Backend != BackendFile {
		t.Fatalf("expected default backend, got %q", res.Config.Storage.Backend)
	}
}

func TestLoadFromPath_YAMLOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `close_sticky: true
storage_key: wall
poll_interval: 2s
default_template: 2x3
storage:
  backend: sqlite
  path: /tmp/wall.sqlite
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if !cfg.CloseSticky {
		t.Errorf("expected close_sticky true")
	}
	if cfg.StorageKey != "wall" {
		t.Errorf("storage_key = %q", cfg.StorageKey)
	}
	if cfg.PollInterval != 2*time.Second {
		t.Errorf("poll_interval = %s", cfg.PollInterval)
	}
	if cfg.MonitorInterval != DefaultMonitorInterval {
		t.Errorf("monitor_interval should keep default, got %s", cfg.MonitorInterval)
	}
	if cfg.Storage.Backend != BackendSQLite || cfg.Storage.Path != "/tmp/wall.sqlite" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	tpl, err := cfg.Template()
	if err != nil || tpl.Rows() != 2 || tpl.Cols() != 3 {
		t.Errorf("template = %v, err=%v", tpl, err)
	}
}

func TestLoadFromPath_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `storage_key = "tomlwall"
close_sticky = true

[storage]
backend = "memory"
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Format != FormatTOML {
		t.Fatalf("expected toml format, got %q", res.Format)
	}
	if res.Config.StorageKey != "tomlwall" || !res.Config.CloseSticky {
		t.Fatalf("unexpected config: %+v", res.Config)
	}
	if res.Config.Storage.Backend != BackendMemory {
		t.Fatalf("backend = %q", res.Config.Storage.Backend)
	}
}

func TestLoadFromPath_InvalidBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("storage:\n  backend: floppy\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Path != "storage.backend" {
		t.Fatalf("expected storage.backend validation error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"empty storage key", func(c *Config) { c.StorageKey = " " }, "storage_key"},
		{"zero poll interval", func(c *Config) { c.PollInterval = 0 }, "poll_interval"},
		{"bad template", func(c *Config) { c.DefaultTemplate = "wide" }, "default_template"},
		{"redis without addr", func(c *Config) { c.Storage.Backend = BackendRedis; c.Storage.RedisAddr = "" }, "storage.redis_addr"},
		{"mongo without uri", func(c *Config) { c.Storage.Backend = BackendMongo }, "storage.mongo_uri"},
		{"http without addr", func(c *Config) { c.HTTP.Addr = "" }, "http.addr"},
		{"no launcher", func(c *Config) { c.Launcher.Command = "" }, "launcher.command"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Path != tt.path {
				t.Fatalf("path = %q, want %q", verr.Path, tt.path)
			}
		})
	}
}

func TestSaveTo_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := DefaultConfig()
	cfg.CloseSticky = true
	cfg.PollInterval = 750 * time.Millisecond
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !res.Config.CloseSticky || res.Config.PollInterval != 750*time.Millisecond {
		t.Fatalf("round trip lost values: %+v", res.Config)
	}
}

func TestWindowURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.URL = "http://host/wall?m={matrix_id}"
	if got := cfg.WindowURL("l=0,t=0,w=1,h=1"); got != "http://host/wall?m=l=0,t=0,w=1,h=1" {
		t.Fatalf("WindowURL = %q", got)
	}
}
