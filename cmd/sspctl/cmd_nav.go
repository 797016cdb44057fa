package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/MrEthical07/goPortal/navigation"
)

var (
	openHwd   = &OpenRunner{}
	routesHwd = &RoutesRunner{}
)

type OpenRunner struct{}

func (r *OpenRunner) cmd() *cli.Command {
	return &cli.Command{
		Name:      "open",
		Usage:     "Navigate to a portal view and show where the guard sends you",
		ArgsUsage: "<path>",
		Action:    r.run,
	}
}

func (r *OpenRunner) run(_ context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return errors.New("usage: sspctl open <path>")
	}

	p, closeFn, err := openPortal(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	from := p.Current()
	target := cmd.Args().First()
	decision, navErr := p.Navigate(target)

	route, _ := p.Routes().Lookup(decision.Path)
	w := out(cmd)
	printTransition(w, navigation.Transition{From: from, Target: target, Decision: decision, Route: route})
	printNotification(w, p.Notification())
	return navErr
}

type RoutesRunner struct{}

func (r *RoutesRunner) cmd() *cli.Command {
	return &cli.Command{
		Name:  "routes",
		Usage: "List the portal views and the backend calls they issue",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "toggles",
				Usage: "Hide views the backend reports as disabled (GET /config)",
			},
		},
		Action: r.run,
	}
}

func (r *RoutesRunner) run(ctx context.Context, cmd *cli.Command) error {
	p, closeFn, err := openPortal(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	if cmd.Bool("toggles") {
		if _, err := p.FeatureToggles(ctx); err != nil {
			return err
		}
	}

	tw := tabwriter.NewWriter(out(cmd), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tVIEW\tSUBSYSTEM\tACTION")
	for _, route := range p.Routes().Routes() {
		action := "-"
		if route.Action != nil {
			action = route.Action.Method + " " + route.Action.APIPath
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", route.Path, route.Component, route.Subsystem, action)
	}
	return tw.Flush()
}
