// Package otel binds portal metrics to OpenTelemetry observable instruments.
//
// [NewOTelExporter] registers an Int64ObservableCounter per portal counter
// and an Int64ObservableGauge per latency bucket. One callback reads
// [goPortal.Portal.MetricsSnapshot] on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the MeterProvider. Callers supply the Meter.
//   - Mutate portal state.
package otel
