package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/urfave/cli/v3"

	goPortal "github.com/MrEthical07/goPortal"
	"github.com/MrEthical07/goPortal/interceptor"
)

var (
	callHwd   = &CallRunner{}
	submitHwd = &SubmitRunner{}
)

func dataFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "data",
		Aliases: []string{"d"},
		Usage:   "JSON request body",
	}
}

func requestBody(cmd *cli.Command) []byte {
	if !cmd.IsSet("data") {
		return nil
	}
	return []byte(cmd.String("data"))
}

func printResponse(cmd *cli.Command, p *goPortal.Portal, resp *interceptor.Response) error {
	w := out(cmd)
	printNotification(w, p.Notification())
	if !cmd.Bool("quiet") {
		printBody(w, resp.Body)
	}
	if resp.Status >= http.StatusBadRequest {
		return fmt.Errorf("backend returned %d %s", resp.Status, http.StatusText(resp.Status))
	}
	return nil
}

type CallRunner struct{}

func (r *CallRunner) cmd() *cli.Command {
	return &cli.Command{
		Name:      "call",
		Usage:     "Send an authorized request to the backend",
		ArgsUsage: "<method> <path>",
		Flags: []cli.Flag{
			dataFlag(),
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "Do not print the response body"},
		},
		Action: r.run,
	}
}

func (r *CallRunner) run(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 2 {
		return errors.New("usage: sspctl call <method> <path>")
	}
	method := strings.ToUpper(cmd.Args().Get(0))
	path := cmd.Args().Get(1)
	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("path %q must start with /", path)
	}

	p, closeFn, err := openPortal(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	resp, err := p.Do(ctx, method, path, requestBody(cmd))
	if err != nil {
		return err
	}
	return printResponse(cmd, p, resp)
}

type SubmitRunner struct{}

func (r *SubmitRunner) cmd() *cli.Command {
	return &cli.Command{
		Name:      "submit",
		Usage:     "Open a portal view and submit it",
		ArgsUsage: "<route>",
		Flags: []cli.Flag{
			dataFlag(),
			&cli.StringSliceFlag{
				Name:  "param",
				Usage: "Path parameter for the view's action, as name=value",
			},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "Do not print the response body"},
		},
		Action: r.run,
	}
}

func parseParams(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	params := make(map[string]string, len(raw))
	for _, kv := range raw {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --param %q, want name=value", kv)
		}
		params[name] = value
	}
	return params, nil
}

func (r *SubmitRunner) run(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return errors.New("usage: sspctl submit <route>")
	}
	params, err := parseParams(cmd.StringSlice("param"))
	if err != nil {
		return err
	}

	p, closeFn, err := openPortal(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	resp, err := p.Submit(ctx, cmd.Args().First(), params, requestBody(cmd))
	if err != nil {
		if errors.Is(err, goPortal.ErrRedirected) {
			printNotification(out(cmd), p.Notification())
			return fmt.Errorf("%w; run sspctl login first", err)
		}
		return err
	}
	return printResponse(cmd, p, resp)
}
