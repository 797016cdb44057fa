package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	goPortal "github.com/MrEthical07/goPortal"
	"github.com/MrEthical07/goPortal/internal/logs"
)

// loadConfig reads --config and applies flag and SSP_* overrides.
func loadConfig(cmd *cli.Command) (goPortal.Config, error) {
	path := strings.TrimSpace(cmd.String("config"))
	cfg, err := goPortal.LoadConfig(path)
	if err != nil {
		return goPortal.Config{}, err
	}

	if v := strings.TrimSpace(cmd.String("base-url")); v != "" {
		cfg.API.BaseURL = v
	}
	if path == "" || cmd.IsSet("storage") {
		cfg.Storage.Backend = strings.ToLower(strings.TrimSpace(cmd.String("storage")))
	}
	if cfg.Storage.Backend == goPortal.StorageFile && (cfg.Storage.Dir == "" || cmd.IsSet("state-dir")) {
		cfg.Storage.Dir = cmd.String("state-dir")
	}
	if v := strings.TrimSpace(cmd.String("redis-addr")); v != "" {
		cfg.Storage.Redis.Addr = v
	}
	if v := strings.TrimSpace(cmd.String("log-level")); v != "" {
		cfg.Logging.Level = v
	}
	if cmd.String("audit-log") != "" {
		cfg.Audit.Enabled = true
	}

	if err := cfg.Validate(); err != nil {
		return goPortal.Config{}, err
	}
	return cfg, nil
}

// openPortal builds a portal from the command line. The returned close
// func must be called when the command finishes.
func openPortal(cmd *cli.Command) (*goPortal.Portal, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	log, err := logs.New(cfg.Logging.Options())
	if err != nil {
		return nil, nil, err
	}
	for _, w := range cfg.Lint() {
		log.Debug("config warning %s: %s", w.Code, w.Message)
	}

	b := goPortal.New().WithConfig(cfg).WithLogger(log)

	var auditFile *os.File
	if path := cmd.String("audit-log"); path != "" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				_ = logs.Close(log)
				return nil, nil, fmt.Errorf("create audit log dir: %w", err)
			}
		}
		auditFile, err = os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			_ = logs.Close(log)
			return nil, nil, fmt.Errorf("open audit log: %w", err)
		}
		b.WithAuditSink(goPortal.NewJSONWriterSink(auditFile))
	}

	p, err := b.Build()
	if err != nil {
		if auditFile != nil {
			_ = auditFile.Close()
		}
		_ = logs.Close(log)
		return nil, nil, err
	}

	closeFn := func() {
		if err := p.Close(); err != nil {
			log.Warn("close portal: %v", err)
		}
		if auditFile != nil {
			_ = auditFile.Close()
		}
		_ = logs.Close(log)
	}
	return p, closeFn, nil
}
