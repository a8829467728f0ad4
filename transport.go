package linesight

import (
	"net/http"

	"github.com/google/uuid"
)

const (
	headerAuthorization = "Authorization"
	headerRequestID     = "X-Request-ID"
	headerStationID     = "X-Station-ID"
	headerUserAgent     = "User-Agent"

	bearerPrefix = "Bearer "
)

// authTransport is the authenticated request pipeline: an http.RoundTripper
// decorator that attaches the current bearer token and request metadata on
// the way out and applies the uniform session reactions on the way back.
// Every outbound call of the client passes through it, so 401 handling is
// identical for typed fetches and caller-built requests alike.
type authTransport struct {
	next   http.RoundTripper
	client *Client
}

// RoundTrip describes the roundtrip operation and its observable behavior.
//
// Token attachment happens before the request is sent; response inspection
// happens after the response is received, in whatever order responses
// arrive. A 401 on an authenticated call converges on the client's single
// forced-logout path, but only after re-reading the store: a response that
// outlived its session must not tear down a newer one. A 401 on an
// unauthenticated call (no stored token, e.g. a rejected login attempt) is
// left to the caller.
func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set(headerRequestID, uuid.NewString())
	if r.Header.Get(headerUserAgent) == "" && t.client.config.API.UserAgent != "" {
		r.Header.Set(headerUserAgent, t.client.config.API.UserAgent)
	}
	if stationID := stationIDFromContext(req.Context()); stationID != "" {
		r.Header.Set(headerStationID, stationID)
	}

	token, authed := t.client.store.Token()
	if authed {
		r.Header.Set(headerAuthorization, bearerPrefix+token)
	}

	resp, err := t.next.RoundTrip(r)
	if err != nil {
		return nil, err
	}

	if authed {
		switch {
		case resp.StatusCode == http.StatusUnauthorized:
			t.client.metrics.Inc(MetricRequestUnauthorized)
			if forcedLogoutDisabled(req.Context()) {
				break
			}
			// The session may have changed while this request was in
			// flight: a logout or a fresh login invalidates the verdict.
			// Act only when the store still holds the token the request
			// went out with; a stale 401 for a gone session is ignored.
			if current, ok := t.client.store.Token(); ok && current == token {
				t.client.sessionEnd(LogoutReasonUnauthorized)
			}
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			// API activity counts as user activity for the idle timeout.
			t.client.monitor.Rearm()
		}
	}

	return resp, nil
}
