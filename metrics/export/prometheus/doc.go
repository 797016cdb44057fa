// Package prometheus renders portal metrics in the Prometheus text
// exposition format.
//
// [NewPrometheusExporter] reads [goPortal.Portal.MetricsSnapshot] on every
// render. Counters are named goportal_*_total; the single histogram is
// goportal_request_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry. Callers mount the Handler.
//   - Mutate portal state.
package prometheus
