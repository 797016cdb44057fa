// Package goPortal is a headless client for the cloud self-service portal.
// It holds the logged-in session, guards every route transition and
// authorizes every backend call.
//
// A [Portal] is assembled with [Builder]. Its methods are safe to call from
// multiple goroutines after [Builder.Build] returns.
//
// # Architecture boundaries
//
// goPortal is the public surface. It wires the session store
// (package session), the navigation guard and route table (package
// navigation), the interceptor chain (package interceptor) and the
// persisted record backend (package storage), and owns metrics and audit
// dispatch for them.
//
// # What this package must NOT do
//
//   - Validate credentials. Tokens are decoded only to read their expiry.
//   - Surface guard or interceptor outcomes as errors. Redirects and forced
//     logouts are reported through [navigation.Decision] and the session's
//     notification.
//   - Perform network I/O outside Portal methods that take a context.
package goPortal
