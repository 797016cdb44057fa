// Package navigation implements the portal's route table and the guard that
// runs before every route transition.
//
// # Guard
//
// [Guard.Evaluate] clears the current notification, then allows the login
// path unconditionally, redirects unauthenticated or expired sessions to the
// login path, and allows everything else. It returns a tagged [Decision];
// [Router] applies it. Expiry is judged from the locally held timestamp and
// the guard's clock only, never over the network.
//
// # What this package must NOT do
//
//   - Perform network I/O or decode credentials.
//   - Render views; a [Route] only names its component.
package navigation
