package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/urfave/cli/v3"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	goPortal "github.com/MrEthical07/goPortal"
	"github.com/MrEthical07/goPortal/metrics/export/otel"
	"github.com/MrEthical07/goPortal/metrics/export/prometheus"
)

var metricsHwd = &MetricsRunner{}

type MetricsRunner struct{}

func (r *MetricsRunner) cmd() *cli.Command {
	return &cli.Command{
		Name:  "metrics",
		Usage: "Run the guard over every view and print the resulting metrics",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "format",
				Usage: "prometheus or otel",
				Value: "prometheus",
			},
		},
		Action: r.run,
	}
}

func (r *MetricsRunner) run(ctx context.Context, cmd *cli.Command) error {
	p, closeFn, err := openPortal(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	for _, route := range p.Routes().Routes() {
		_, _ = p.Navigate(route.Path)
	}

	w := out(cmd)
	switch cmd.String("format") {
	case "prometheus":
		fmt.Fprint(w, prometheus.NewPrometheusExporter(p).Render())
		return nil
	case "otel":
		return printOTel(ctx, cmd, p)
	default:
		return fmt.Errorf("unsupported format %q", cmd.String("format"))
	}
}

func printOTel(ctx context.Context, cmd *cli.Command, p *goPortal.Portal) error {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(ctx) }()

	exp, err := otel.NewOTelExporter(provider.Meter("sspctl"), p)
	if err != nil {
		return err
	}
	defer func() { _ = exp.Close() }()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		return fmt.Errorf("collect: %w", err)
	}

	values := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					values[m.Name] += dp.Value
				}
			case metricdata.Gauge[int64]:
				for _, dp := range data.DataPoints {
					values[m.Name] += dp.Value
				}
			}
		}
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	w := out(cmd)
	for _, name := range names {
		fmt.Fprintf(w, "%s %d\n", name, values[name])
	}
	return nil
}
