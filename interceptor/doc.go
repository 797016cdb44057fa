// Package interceptor wraps every outbound backend call in an ordered
// chain: request interceptors run before dispatch, response interceptors
// run after receipt and before the caller sees the response.
//
// # Shape
//
// Interceptors are pure transforms over [Request] and [Response] values.
// Response interceptors declare side effects ([Effect]) instead of mutating
// the session directly; the [Chain] applies them to its session sink in the
// order they were emitted. [Transport] adapts a Chain to http.RoundTripper.
//
// # Policy
//
//   - [BearerAuth] attaches "Authorization: Bearer <token>" when a session exists.
//   - [NotifyFromMessage] turns a response "message" into a success (200) or
//     danger notification.
//   - [LogoutOnUnauthorized] forces a logout plus a fixed danger message on 401
//     for any request other than the login call.
//
// # What this package must NOT do
//
//   - Return errors to callers for backend failures; only transport errors pass through.
//   - Retry, refresh credentials, or cancel in-flight requests.
package interceptor
