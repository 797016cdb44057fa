package goPortal

import "errors"

var (
	// ErrBuilderUsed is returned when Build is called twice on one Builder.
	ErrBuilderUsed = errors.New("builder already used")
	// ErrInvalidConfig wraps every Config.Validate failure.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrStorageUnavailable is returned when the persisted record cannot be read.
	ErrStorageUnavailable = errors.New("session storage unavailable")
	// ErrLoginRejected is returned when the backend refuses the credentials.
	ErrLoginRejected = errors.New("login rejected")
	// ErrLoginResponse is returned when the login reply carries no usable token.
	ErrLoginResponse = errors.New("malformed login response")
	// ErrRedirected is returned by Submit when the guard sends the user elsewhere.
	ErrRedirected = errors.New("navigation redirected")
	// ErrNoAction is returned by Submit for views that issue no backend call.
	ErrNoAction = errors.New("route has no action")
	// ErrFeatureToggles is returned when GET /config cannot be decoded.
	ErrFeatureToggles = errors.New("feature toggles unavailable")
	// ErrPortalClosed is returned by calls made after Close.
	ErrPortalClosed = errors.New("portal closed")
)
