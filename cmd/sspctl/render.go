package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/MrEthical07/goPortal/navigation"
	"github.com/MrEthical07/goPortal/session"
)

var (
	successColor  = color.New(color.FgGreen, color.Bold)
	dangerColor   = color.New(color.FgRed, color.Bold)
	redirectColor = color.New(color.FgYellow)
	faintColor    = color.New(color.Faint)
)

func out(cmd *cli.Command) io.Writer {
	if root := cmd.Root(); root != nil && root.Writer != nil {
		return root.Writer
	}
	return os.Stdout
}

func printNotification(w io.Writer, n session.Notification) {
	switch n.Severity {
	case session.SeveritySuccess:
		successColor.Fprintf(w, "✔ %s\n", n.Message)
	case session.SeverityDanger:
		dangerColor.Fprintf(w, "✘ %s\n", n.Message)
	}
}

func printTransition(w io.Writer, tr navigation.Transition) {
	d := tr.Decision
	if d.Allowed() {
		fmt.Fprintf(w, "%s -> %s", tr.From, d.Path)
	} else {
		redirectColor.Fprintf(w, "%s -> %s redirected to %s (%s)", tr.From, tr.Target, d.Path, d.Reason)
	}
	if tr.Route.Component != "" {
		faintColor.Fprintf(w, " [%s]", tr.Route.Component)
	}
	fmt.Fprintln(w)
}

func printBody(w io.Writer, body []byte) {
	if len(bytes.TrimSpace(body)) == 0 {
		return
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		_, _ = w.Write(body)
		if body[len(body)-1] != '\n' {
			fmt.Fprintln(w)
		}
		return
	}
	pretty.WriteByte('\n')
	_, _ = pretty.WriteTo(w)
}

func formatExpiry(exp int64) string {
	if exp == 0 {
		return "no expiry"
	}
	t := time.Unix(exp, 0)
	return fmt.Sprintf("%s (in %s)", t.Format(time.RFC3339), time.Until(t).Round(time.Second))
}
