package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/MrEthical07/goPortal/navigation"
)

var (
	loginHwd  = &LoginRunner{}
	logoutHwd = &LogoutRunner{}
	statusHwd = &StatusRunner{}
)

type LoginRunner struct{}

func (r *LoginRunner) cmd() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Log in and store the session",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "username",
				Aliases: []string{"u"},
				Usage:   "Directory user name",
				Sources: cli.EnvVars("SSP_USERNAME"),
			},
			&cli.StringFlag{
				Name:    "password",
				Aliases: []string{"p"},
				Usage:   "Password; read from stdin when omitted",
				Sources: cli.EnvVars("SSP_PASSWORD"),
			},
		},
		Action: r.run,
	}
}

func (r *LoginRunner) run(ctx context.Context, cmd *cli.Command) error {
	username := strings.TrimSpace(cmd.String("username"))
	if username == "" {
		return errors.New("--username is required")
	}
	password := cmd.String("password")
	if password == "" {
		var err error
		if password, err = readPassword(cmd); err != nil {
			return err
		}
	}

	p, closeFn, err := openPortal(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	w := out(cmd)
	user, err := p.Login(ctx, username, password)
	if err != nil {
		printNotification(w, p.Notification())
		return fmt.Errorf("login: %w", err)
	}

	fmt.Fprintf(w, "Logged in as %s, token expires %s\n", user.Username, formatExpiry(user.Expiry))
	return nil
}

func readPassword(cmd *cli.Command) (string, error) {
	fmt.Fprint(out(cmd), "Password: ")
	reader := cmd.Root().Reader
	if reader == nil {
		reader = os.Stdin
	}
	line, err := bufio.NewReader(reader).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

type LogoutRunner struct{}

func (r *LogoutRunner) cmd() *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "Discard the stored session",
		Action: r.run,
	}
}

func (r *LogoutRunner) run(ctx context.Context, cmd *cli.Command) error {
	p, closeFn, err := openPortal(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	if p.Session() == nil {
		fmt.Fprintln(out(cmd), "Not logged in")
		return nil
	}
	p.Logout(ctx)
	fmt.Fprintln(out(cmd), "Logged out")
	return nil
}

type StatusRunner struct{}

func (r *StatusRunner) cmd() *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "Show the stored session",
		Action: r.run,
	}
}

func (r *StatusRunner) run(_ context.Context, cmd *cli.Command) error {
	p, closeFn, err := openPortal(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	w := out(cmd)
	cfg := p.Config()
	fmt.Fprintf(w, "Backend:  %s\n", cfg.API.BaseURL)
	fmt.Fprintf(w, "Storage:  %s\n", cfg.Storage.Backend)

	switch state := p.State(); state {
	case navigation.StateUnauthenticated:
		fmt.Fprintln(w, "Session:  not logged in")
	case navigation.StateExpired:
		user := p.Session()
		dangerColor.Fprintf(w, "Session:  %s, expired\n", user.Username)
	default:
		user := p.Session()
		successColor.Fprintf(w, "Session:  %s, token expires %s\n", user.Username, formatExpiry(user.Expiry))
	}
	return nil
}
