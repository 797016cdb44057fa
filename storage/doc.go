// Package storage provides the durable, origin-scoped key-value stores that
// hold the persisted session record between process runs.
//
// # Backends
//
//   - [MemoryStore]: process-local map, used by tests and ephemeral runs.
//   - [FileStore]: one file per key under a per-origin directory.
//   - [RedisStore]: go-redis backed, keys namespaced by prefix and origin.
//
// # What this package must NOT do
//
//   - Interpret stored values (the session package owns the record format).
//   - Import goPortal or session (no upward imports).
package storage
