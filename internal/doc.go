// Package internal holds helpers that are private to goPortal.
//
// # Sub-packages
//
//   - audit: async event dispatch (Dispatcher + Sink implementations)
//   - logs: logrus-backed logger, rotating file output and log IDs
//
// # What this package must NOT do
//
//   - Export types that appear in the public goPortal API except through
//     aliases in the root package.
//   - Be imported by any package outside the goPortal module.
package internal
