package goPortal

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantValid bool
	}{
		{name: "https base url", mutate: func(c *Config) { c.API.BaseURL = "https://ssp.example.com/portal" }, wantValid: true},
		{name: "relative base url", mutate: func(c *Config) { c.API.BaseURL = "/portal" }, wantValid: false},
		{name: "ftp base url", mutate: func(c *Config) { c.API.BaseURL = "ftp://ssp.example.com" }, wantValid: false},
		{name: "login path without slash", mutate: func(c *Config) { c.API.LoginPath = "login" }, wantValid: false},
		{name: "zero timeout", mutate: func(c *Config) { c.API.Timeout = 0 }, wantValid: false},
		{name: "negative inspect limit", mutate: func(c *Config) { c.API.MaxInspectBytes = -1 }, wantValid: false},
		{name: "route login path without slash", mutate: func(c *Config) { c.Routes.LoginPath = "login" }, wantValid: false},
		{name: "blank expiry message", mutate: func(c *Config) { c.Routes.SessionExpiredMessage = "  " }, wantValid: false},
		{name: "restore-only", mutate: func(c *Config) { c.Session.Persist = "restore-only" }, wantValid: true},
		{name: "unknown persist policy", mutate: func(c *Config) { c.Session.Persist = "lazy" }, wantValid: false},
		{name: "empty key", mutate: func(c *Config) { c.Session.Key = "" }, wantValid: false},
		{name: "key with slash", mutate: func(c *Config) { c.Session.Key = "ssp/session" }, wantValid: false},
		{name: "key with backslash", mutate: func(c *Config) { c.Session.Key = `ssp\session` }, wantValid: false},
		{name: "key with nul", mutate: func(c *Config) { c.Session.Key = "ssp\x00" }, wantValid: false},
		{name: "custom key", mutate: func(c *Config) { c.Session.Key = "ssp-session.v2" }, wantValid: true},
		{name: "file without dir", mutate: func(c *Config) { c.Storage.Backend = StorageFile }, wantValid: false},
		{name: "file with dir", mutate: func(c *Config) { c.Storage.Backend = StorageFile; c.Storage.Dir = "/tmp/ssp" }, wantValid: true},
		{name: "redis without addr", mutate: func(c *Config) { c.Storage.Backend = StorageRedis; c.Storage.Redis.Addr = "" }, wantValid: false},
		{name: "redis negative ttl", mutate: func(c *Config) { c.Storage.Backend = StorageRedis; c.Storage.Redis.TTL = -time.Second }, wantValid: false},
		{name: "unknown backend", mutate: func(c *Config) { c.Storage.Backend = "sqlite" }, wantValid: false},
		{name: "file log without path", mutate: func(c *Config) { c.Logging.Output = "file" }, wantValid: false},
		{name: "json logs", mutate: func(c *Config) { c.Logging.Format = "json" }, wantValid: true},
		{name: "xml logs", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantValid: false},
		{name: "audit without buffer", mutate: func(c *Config) { c.Audit.Enabled = true; c.Audit.BufferSize = 0 }, wantValid: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantValid && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tc.wantValid {
				if err == nil {
					t.Fatalf("expected invalid config")
				}
				if !errors.Is(err, ErrInvalidConfig) {
					t.Fatalf("expected ErrInvalidConfig, got %v", err)
				}
			}
		})
	}
}

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sspctl.yaml")
	yaml := `
api:
  base_url: https://ssp.example.com
  timeout: 5s
routes:
  notify_on_expiry: true
session:
  persist: restore-only
storage:
  backend: redis
  redis:
    addr: redis:6379
    ttl: 1h
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.API.BaseURL != "https://ssp.example.com" || cfg.API.Timeout != 5*time.Second {
		t.Fatalf("unexpected api config %+v", cfg.API)
	}
	if cfg.API.LoginPath != "/login" {
		t.Fatalf("expected default login path kept, got %q", cfg.API.LoginPath)
	}
	if !cfg.Routes.NotifyOnExpiry || cfg.Session.Persist != "restore-only" {
		t.Fatalf("unexpected routes/session %+v %+v", cfg.Routes, cfg.Session)
	}
	if cfg.Storage.Redis.Addr != "redis:6379" || cfg.Storage.Redis.TTL != time.Hour || cfg.Storage.Redis.Prefix != "ssp" {
		t.Fatalf("unexpected redis config %+v", cfg.Storage.Redis)
	}
	if cfg.StorageOrigin() != "https://ssp.example.com" {
		t.Fatalf("unexpected origin %q", cfg.StorageOrigin())
	}
}

func TestLoadConfigRejectsUnknownKeysAndInvalidValues(t *testing.T) {
	dir := t.TempDir()

	unknown := filepath.Join(dir, "unknown.yaml")
	_ = os.WriteFile(unknown, []byte("api:\n  base_uri: http://x\n"), 0o600)
	if _, err := LoadConfig(unknown); err == nil {
		t.Fatalf("expected unknown key error")
	}

	bad := filepath.Join(dir, "bad.yaml")
	_ = os.WriteFile(bad, []byte("storage:\n  backend: sqlite\n"), 0o600)
	if _, err := LoadConfig(bad); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}

	empty := filepath.Join(dir, "empty.yaml")
	_ = os.WriteFile(empty, nil, 0o600)
	cfg, err := LoadConfig(empty)
	if err != nil || cfg.API.BaseURL != DefaultConfig().API.BaseURL {
		t.Fatalf("expected defaults from empty file, got %+v (%v)", cfg.API, err)
	}

	if _, err := LoadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected missing file error")
	}
}

func TestLint(t *testing.T) {
	cfg := DefaultConfig()
	codes := cfg.Lint().Codes()
	if !slices.Contains(codes, "memory_storage") {
		t.Fatalf("expected memory_storage warning, got %v", codes)
	}
	if slices.Contains(codes, "plaintext_base_url") {
		t.Fatalf("localhost must not warn about plain http, got %v", codes)
	}

	cfg.API.BaseURL = "http://ssp.example.com"
	cfg.Storage.Backend = StorageRedis
	cfg.Session.Persist = "restore-only"
	cfg.Audit.Enabled = true
	cfg.Audit.DropIfFull = false
	cfg.Metrics.Enabled = false
	codes = cfg.Lint().Codes()
	for _, want := range []string{"plaintext_base_url", "restore_only_persistence", "redis_ttl_unset", "audit_blocking", "latency_without_metrics"} {
		if !slices.Contains(codes, want) {
			t.Fatalf("expected %s in %v", want, codes)
		}
	}
}
