package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	goPortal "github.com/MrEthical07/goPortal"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "sspctl",
		Usage: "Log in to the cloud self-service portal and call its API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML config file",
				Sources: cli.EnvVars("SSP_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "base-url",
				Usage:   "Backend base URL",
				Sources: cli.EnvVars("SSP_BASE_URL"),
			},
			&cli.StringFlag{
				Name:    "storage",
				Usage:   "Session storage backend: file, redis or memory",
				Value:   goPortal.StorageFile,
				Sources: cli.EnvVars("SSP_STORAGE"),
			},
			&cli.StringFlag{
				Name:    "state-dir",
				Usage:   "Directory for the file storage backend",
				Value:   defaultStateDir(),
				Sources: cli.EnvVars("SSP_STATE_DIR"),
			},
			&cli.StringFlag{
				Name:    "redis-addr",
				Usage:   "Redis address for the redis storage backend",
				Sources: cli.EnvVars("SSP_REDIS_ADDR"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "debug, info, warn or error",
				Sources: cli.EnvVars("SSP_LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "audit-log",
				Usage:   "Append audit events as JSON lines to this file",
				Sources: cli.EnvVars("SSP_AUDIT_LOG"),
			},
		},
		Commands: []*cli.Command{
			loginHwd.cmd(),
			logoutHwd.cmd(),
			statusHwd.cmd(),
			openHwd.cmd(),
			callHwd.cmd(),
			submitHwd.cmd(),
			routesHwd.cmd(),
			metricsHwd.cmd(),
		},
	}
}

func defaultStateDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".sspctl"
	}
	return filepath.Join(dir, "sspctl")
}
