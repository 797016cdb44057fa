// Package audit dispatches portal audit events (logins, logouts, forced
// logouts, guard redirects) to a sink without blocking the caller.
//
// # Components
//
//   - [Sink] for event consumers (channel, JSON lines, no-op).
//   - [Dispatcher], a buffered async relay that either drops or blocks when full.
//   - [Event], the audit record.
//
// # Architecture boundaries
//
// This package owns buffering and sink delivery. The portal decides which
// events to emit.
//
// # What this package must NOT do
//
//   - Filter events based on their content.
//   - Import goPortal or any sibling internal package.
package audit
