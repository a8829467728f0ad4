package linesight

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is an exported constant or variable used by the session client.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNoSession is an exported constant or variable used by the session client.
	ErrNoSession = errors.New("no stored session")
	// ErrSessionExpired is an exported constant or variable used by the session client.
	ErrSessionExpired = errors.New("session expired or invalid")
	// ErrInvalidCredentials is an exported constant or variable used by the session client.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrPermissionDenied is an exported constant or variable used by the session client.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrClientNotReady is an exported constant or variable used by the session client.
	ErrClientNotReady = errors.New("client not initialized")
	// ErrPollerActive is an exported constant or variable used by the session client.
	ErrPollerActive = errors.New("auto-refresh poller already running")
	// ErrUnexpectedResponse is an exported constant or variable used by the session client.
	ErrUnexpectedResponse = errors.New("unexpected server response")
)

// APIError carries the HTTP status and a bounded excerpt of the response body
// for any non-401 request failure. The session is never cleared for these;
// the caller decides whether to retry.
type APIError struct {
	Status int
	Body   string
}

// Error describes the error operation and its observable behavior.
func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Body)
}

// Transient reports whether the failure is safe to retry without
// re-authenticating (server-side 5xx).
func (e *APIError) Transient() bool {
	return e.Status >= 500
}
