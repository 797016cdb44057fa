package internaldefs

import (
	goPortal "github.com/MrEthical07/goPortal"
)

// CounterDef names one exported counter.
type CounterDef struct {
	ID   goPortal.MetricID
	Name string
	Help string
}

// HistogramDef names one exported histogram.
type HistogramDef struct {
	ID   goPortal.MetricID
	Name string
	Help string
}

// AuditDroppedName is the counter for audit events lost to backpressure.
const (
	AuditDroppedName = "goportal_audit_dropped_total"
	AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."
)

// CounterDefs lists every exported counter in exposition order.
var CounterDefs = []CounterDef{
	{ID: goPortal.MetricNavigationAllowed, Name: "goportal_navigation_allowed_total", Help: "Route transitions allowed by the guard."},
	{ID: goPortal.MetricNavigationRedirected, Name: "goportal_navigation_redirected_total", Help: "Route transitions redirected to the login route."},
	{ID: goPortal.MetricNavigationExpired, Name: "goportal_navigation_expired_total", Help: "Redirects caused by an expired session."},
	{ID: goPortal.MetricRequestAuthorized, Name: "goportal_request_authorized_total", Help: "Backend calls sent with a bearer token."},
	{ID: goPortal.MetricRequestAnonymous, Name: "goportal_request_anonymous_total", Help: "Backend calls sent without a token."},
	{ID: goPortal.MetricRequestFailed, Name: "goportal_request_failed_total", Help: "Backend calls that produced no response."},
	{ID: goPortal.MetricNotificationSuccess, Name: "goportal_notification_success_total", Help: "Success notifications raised by responses."},
	{ID: goPortal.MetricNotificationDanger, Name: "goportal_notification_danger_total", Help: "Danger notifications raised by responses."},
	{ID: goPortal.MetricForcedLogout, Name: "goportal_forced_logout_total", Help: "Sessions cleared by an unauthorized response."},
	{ID: goPortal.MetricPersistFailure, Name: "goportal_persist_failure_total", Help: "Failed writes of the persisted session record."},
	{ID: goPortal.MetricLoginSuccess, Name: "goportal_login_success_total", Help: "Successful logins."},
	{ID: goPortal.MetricLoginFailure, Name: "goportal_login_failure_total", Help: "Rejected or malformed logins."},
	{ID: goPortal.MetricLogout, Name: "goportal_logout_total", Help: "Explicit logouts."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: goPortal.MetricRequestLatency, Name: "goportal_request_latency_seconds", Help: "Backend round-trip latency."},
}

// HistogramBounds are the upper bounds of the eight latency buckets.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix spells HistogramBounds for instrument names.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates raw to eight buckets.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
