// Package jwt reads the claims a portal credential carries so the session
// expiry can be stored next to the token. It never verifies signatures:
// the backend is the only party that validates credentials.
package jwt
