// Package session holds the client-side session state: who is logged in and
// which transient notification is showing.
//
// # State
//
// A [Store] owns exactly two slots, the current [User] (nil when logged out)
// and the current [Notification] (zero value when cleared). Both are
// replaced wholesale by [Store.SetUser] and [Store.SetNotification]; there
// is no merging, validation or versioning, and the last write wins.
//
// # Persistence
//
// The user slot is seeded once from a persisted record (a JSON value stored
// under a fixed key in a [storage.KeyValueStore]) via [Store.Restore].
// Whether later writes are mirrored back is the store's [PersistPolicy].
//
// # What this package must NOT do
//
//   - Parse or verify credentials; callers decode the expiry before SetUser.
//   - Decide navigation or request policy (navigation and interceptor own that).
//   - Return errors from the state transitions themselves.
package session
