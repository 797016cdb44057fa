package goPortal

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/MrEthical07/goPortal/interceptor"
	"github.com/MrEthical07/goPortal/internal/logs"
	"github.com/MrEthical07/goPortal/navigation"
	"github.com/MrEthical07/goPortal/session"
	"github.com/MrEthical07/goPortal/storage"
	"gopkg.in/yaml.v3"
)

// Config is the full portal configuration. Start from [DefaultConfig] or
// [LoadConfig]; the zero value does not validate.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Routes  RoutesConfig  `yaml:"routes"`
	Session SessionConfig `yaml:"session"`
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
	Audit   AuditConfig   `yaml:"audit"`
	Metrics MetricsConfig `yaml:"metrics"`
}

/*
====================================
API CONFIG
====================================
*/

// APIConfig locates the backend.
type APIConfig struct {
	// BaseURL is the backend root, e.g. "https://ssp.example.com". A path
	// component is stripped before interceptors see request paths.
	BaseURL string `yaml:"base_url"`
	// LoginPath is the backend login call, exempt from forced logout.
	LoginPath string `yaml:"login_path"`
	// ConfigPath serves the feature toggles.
	ConfigPath      string        `yaml:"config_path"`
	Timeout         time.Duration `yaml:"timeout"`
	MaxInspectBytes int64         `yaml:"max_inspect_bytes"`
}

/*
====================================
ROUTES CONFIG
====================================
*/

// RoutesConfig configures the navigation guard.
type RoutesConfig struct {
	// LoginPath is the in-app login route.
	LoginPath string `yaml:"login_path"`
	// NotifyOnExpiry shows SessionExpiredMessage when the guard redirects an
	// expired session. Off by default.
	NotifyOnExpiry bool `yaml:"notify_on_expiry"`
	// SessionExpiredMessage is shown on forced logout.
	SessionExpiredMessage string `yaml:"session_expired_message"`
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig configures the persisted session record.
type SessionConfig struct {
	Key string `yaml:"key"`
	// Persist is "write-through" (default) or "restore-only".
	Persist        string        `yaml:"persist"`
	PersistTimeout time.Duration `yaml:"persist_timeout"`
}

/*
====================================
STORAGE CONFIG
====================================
*/

// Storage backends.
const (
	StorageMemory = "memory"
	StorageFile   = "file"
	StorageRedis  = "redis"
)

// StorageConfig selects the durable key-value backend.
type StorageConfig struct {
	Backend string `yaml:"backend"`
	// Origin scopes the record. Empty derives it from API.BaseURL.
	Origin string      `yaml:"origin"`
	Dir    string      `yaml:"dir"`
	Redis  RedisConfig `yaml:"redis"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Username string        `yaml:"username"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
}

/*
====================================
LOGGING / AUDIT / METRICS
====================================
*/

// LoggingConfig configures the portal logger.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	Output     string `yaml:"output"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
	Compress   bool   `yaml:"compress"`
}

// Options converts c for logs.New.
func (c LoggingConfig) Options() logs.Options {
	return logs.Options{
		Level:      c.Level,
		Format:     c.Format,
		Output:     c.Output,
		File:       c.File,
		MaxSize:    c.MaxSize,
		MaxBackups: c.MaxBackups,
		MaxAge:     c.MaxAge,
		Compress:   c.Compress,
	}
}

// AuditConfig configures the audit dispatcher.
type AuditConfig struct {
	Enabled    bool `yaml:"enabled"`
	BufferSize int  `yaml:"buffer_size"`
	DropIfFull bool `yaml:"drop_if_full"`
}

// MetricsConfig configures in-process counters.
type MetricsConfig struct {
	Enabled                 bool `yaml:"enabled"`
	EnableLatencyHistograms bool `yaml:"enable_latency_histograms"`
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns a configuration for a backend on localhost:8080
// with in-memory storage.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL:         "http://localhost:8080",
			LoginPath:       interceptor.DefaultLoginPath,
			ConfigPath:      "/config",
			Timeout:         30 * time.Second,
			MaxInspectBytes: interceptor.DefaultMaxInspectBytes,
		},
		Routes: RoutesConfig{
			LoginPath:             navigation.DefaultLoginPath,
			NotifyOnExpiry:        false,
			SessionExpiredMessage: interceptor.DefaultSessionExpiredMessage,
		},
		Session: SessionConfig{
			Key:            storage.DefaultKey,
			Persist:        session.PersistWriteThrough.String(),
			PersistTimeout: 2 * time.Second,
		},
		Storage: StorageConfig{
			Backend: StorageMemory,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "ssp",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: true,
		},
	}
}

// LoadConfig reads a YAML file over [DefaultConfig] and validates the
// result. An empty path returns the defaults. Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// StorageOrigin returns the origin the persisted record is scoped to.
func (c *Config) StorageOrigin() string {
	if c.Storage.Origin != "" {
		return c.Storage.Origin
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Host == "" {
		return c.API.BaseURL
	}
	return u.Scheme + "://" + u.Host
}

/*
====================================
VALIDATION
====================================
*/

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// Validate reports the first configuration error, wrapped in [ErrInvalidConfig].
func (c *Config) Validate() error {
	// API
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Host == "" {
		return invalid("API BaseURL %q must be an absolute URL", c.API.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return invalid("API BaseURL scheme must be http or https")
	}
	if !strings.HasPrefix(c.API.LoginPath, "/") {
		return invalid("API LoginPath must start with /")
	}
	if !strings.HasPrefix(c.API.ConfigPath, "/") {
		return invalid("API ConfigPath must start with /")
	}
	if c.API.Timeout <= 0 {
		return invalid("API Timeout must be > 0")
	}
	if c.API.MaxInspectBytes < 0 {
		return invalid("API MaxInspectBytes must be >= 0")
	}

	// Routes
	if !strings.HasPrefix(c.Routes.LoginPath, "/") {
		return invalid("Routes LoginPath must start with /")
	}
	if strings.TrimSpace(c.Routes.SessionExpiredMessage) == "" {
		return invalid("Routes SessionExpiredMessage must not be empty")
	}

	// Session
	if strings.TrimSpace(c.Session.Key) == "" {
		return invalid("Session Key must not be empty")
	}
	if !storage.ValidKey(c.Session.Key) {
		return invalid("Session Key must not contain '/', '\\' or NUL")
	}
	if _, err := session.ParsePersistPolicy(c.Session.Persist); err != nil {
		return invalid("Session Persist: %v", err)
	}
	if c.Session.PersistTimeout <= 0 {
		return invalid("Session PersistTimeout must be > 0")
	}

	// Storage
	switch c.Storage.Backend {
	case StorageMemory:
	case StorageFile:
		if strings.TrimSpace(c.Storage.Dir) == "" {
			return invalid("Storage Dir is required for the file backend")
		}
	case StorageRedis:
		if strings.TrimSpace(c.Storage.Redis.Addr) == "" {
			return invalid("Storage Redis Addr is required for the redis backend")
		}
		if c.Storage.Redis.DB < 0 {
			return invalid("Storage Redis DB must be >= 0")
		}
		if c.Storage.Redis.TTL < 0 {
			return invalid("Storage Redis TTL must be >= 0")
		}
	default:
		return invalid("unsupported Storage Backend %q", c.Storage.Backend)
	}

	// Logging
	switch strings.ToLower(c.Logging.Output) {
	case "", "stdout", "stderr":
	case "file", "both":
		if strings.TrimSpace(c.Logging.File) == "" {
			return invalid("Logging File is required when output includes file")
		}
	default:
		return invalid("unsupported Logging Output %q", c.Logging.Output)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return invalid("unsupported Logging Format %q", c.Logging.Format)
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return invalid("Audit BufferSize must be > 0 when enabled")
	}

	return nil
}

/*
====================================
LINT
====================================
*/

// LintWarning is a configuration that validates but is probably unintended.
type LintWarning struct {
	Code    string
	Message string
}

// LintWarnings is the result of [Config.Lint].
type LintWarnings []LintWarning

// Codes returns the warning codes in order.
func (ws LintWarnings) Codes() []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.Code
	}
	return out
}

// Lint reports valid but risky settings. It never fails.
func (c *Config) Lint() LintWarnings {
	var ws LintWarnings
	add := func(code, msg string) {
		ws = append(ws, LintWarning{Code: code, Message: msg})
	}

	if u, err := url.Parse(c.API.BaseURL); err == nil && u.Scheme == "http" && !isLoopback(u.Hostname()) {
		add("plaintext_base_url", "bearer tokens are sent over plain http to a non-local host")
	}

	policy, _ := session.ParsePersistPolicy(c.Session.Persist)
	switch {
	case c.Storage.Backend == StorageMemory:
		add("memory_storage", "sessions do not survive a restart with the memory backend")
	case policy == session.PersistRestoreOnly:
		add("restore_only_persistence", "logins and logouts are not written back to durable storage")
	}

	if c.Storage.Backend == StorageRedis && c.Storage.Redis.TTL == 0 {
		add("redis_ttl_unset", "persisted sessions never expire in redis")
	}
	if c.Audit.Enabled && !c.Audit.DropIfFull {
		add("audit_blocking", "a slow audit sink blocks portal calls")
	}
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		add("latency_without_metrics", "latency histograms have no effect while metrics are disabled")
	}
	if c.Routes.LoginPath != c.API.LoginPath {
		add("login_paths_differ", "in-app and backend login paths differ")
	}
	return ws
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
