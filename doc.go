// Package linesight is the client session SDK for the linesight
// production-monitoring dashboard API. It owns the full client-side session
// lifecycle: credential storage, bearer-token request decoration, uniform
// 401 handling, inactivity timeout, session validation, and permission-gated
// auto-refresh polling.
//
// The package is designed for event-driven UI hosts: Client methods are safe
// to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// linesight is the public surface. It exposes [Client], [Builder], [Config],
// and value types (UserRecord, LoginResult, SessionInfo, etc.). Credential
// persistence lives in the credstore subpackage; timer scheduling and event
// dispatch live under internal/ and are never exported.
//
// # What this package must NOT do
//
//   - Own routing or rendering: navigation is signalled through [Navigator]
//     and nothing else.
//   - Retry failed requests: transient failures propagate to the caller with
//     the session intact.
//   - Clear the session on anything other than logout, inactivity expiry, or
//     an authenticated 401.
//
// # Forced-logout contract
//
// A 401 on an authenticated call, an inactivity expiry, and an explicit
// Logout all converge on one internal path: clear the credential store, stop
// the inactivity monitor, navigate to login. The path is latched so that
// concurrent failures produce exactly one navigation; the latch resets on
// the next successful login.
package linesight
