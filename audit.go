package goPortal

import (
	"context"
	"io"

	"github.com/MrEthical07/goPortal/internal/audit"
	"github.com/MrEthical07/goPortal/internal/logs"
)

// AuditEvent is one audit record.
type AuditEvent = audit.Event

// AuditSink receives audit events from the dispatcher goroutine.
type AuditSink = audit.Sink

// NoOpSink drops every event.
type NoOpSink = audit.NoOpSink

// ChannelSink delivers events on a buffered channel.
type ChannelSink = audit.ChannelSink

// JSONWriterSink writes one JSON object per line.
type JSONWriterSink = audit.JSONWriterSink

// Audit event types.
const (
	AuditLoginSuccess       = audit.EventLoginSuccess
	AuditLoginFailure       = audit.EventLoginFailure
	AuditLogout             = audit.EventLogout
	AuditForcedLogout       = audit.EventForcedLogout
	AuditNavigationRedirect = audit.EventNavigationRedirect
)

// NewChannelSink creates a channel sink with the given buffer.
func NewChannelSink(buffer int) *ChannelSink {
	return audit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a sink writing JSON lines to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return audit.NewJSONWriterSink(w)
}

func (p *Portal) emitAudit(ctx context.Context, event AuditEvent) {
	if p.audit == nil {
		return
	}
	if event.LogID == "" {
		event.LogID = logs.LogID(ctx)
	}
	p.audit.Emit(ctx, event)
}
