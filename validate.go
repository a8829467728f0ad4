package linesight

import (
	"context"
	"errors"
	"net/http"
)

// Validate asks the server whether the stored token still represents a live
// session and hydrates the last-known user record.
//
// With no stored token it returns [ErrNoSession] immediately, without a
// network call. A 401 converges on the shared forced-logout path and maps
// to [ErrSessionExpired]. Any other failure (network, 5xx) is returned with
// the stored session untouched: a transient failure must not log the user
// out, and the caller decides whether to retry.
func (c *Client) Validate(ctx context.Context) (*UserRecord, error) {
	if c == nil || c.store == nil {
		return nil, ErrClientNotReady
	}

	token, ok := c.store.Token()
	if !ok {
		return nil, ErrNoSession
	}

	start := c.clk.Now()
	var user UserRecord
	err := c.doJSON(ctx, http.MethodGet, pathWhoAmI, nil, nil, &user)
	c.metrics.Observe(MetricValidateLatency, c.clk.Now().Sub(start))
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			// The pipeline already cleared the session and navigated.
			c.metrics.Inc(MetricValidateFailure)
			return nil, ErrSessionExpired
		}
		c.metrics.Inc(MetricValidateFailure)
		c.emit(eventValidateFailure, false, "", "", err)
		return nil, err
	}

	// A logout may have raced the round-trip. Re-check the store before
	// writing so a stale success cannot resurrect a cleared session.
	if current, ok := c.store.Token(); ok && current == token {
		if err := c.store.SetSession(token, &user); err != nil {
			return nil, err
		}
		// A session restored from durable storage becomes live here, so
		// make sure the idle deadline is armed.
		c.monitor.Start()
	}

	c.metrics.Inc(MetricValidateSuccess)
	return &user, nil
}

// EnsureSession is the protected-route gate: it validates the stored
// session and signals navigation to login when none exists. Transient
// failures return the error without navigating, so a flaky network does
// not bounce a logged-in user to the login view.
func (c *Client) EnsureSession(ctx context.Context) (*UserRecord, error) {
	user, err := c.Validate(ctx)
	if err == nil {
		return user, nil
	}

	if errors.Is(err, ErrNoSession) {
		c.nav.NavigateToLogin(LogoutReasonUnauthorized)
	}
	// ErrSessionExpired already navigated through the shared path.
	return nil, err
}

// CheckPermission queries the server for a single capability flag and
// caches the latest known answer. The check fails closed: any error means
// "not granted" to the caller.
func (c *Client) CheckPermission(ctx context.Context, key PermissionKey) (bool, error) {
	if c == nil {
		return false, ErrClientNotReady
	}

	var reply struct {
		Granted bool `json:"granted"`
	}
	if err := c.doJSON(ctx, http.MethodGet, pathPermissionPrefix+string(key), nil, nil, &reply); err != nil {
		return false, err
	}

	c.permMu.Lock()
	if c.permCache == nil {
		c.permCache = make(map[PermissionKey]bool)
	}
	c.permCache[key] = reply.Granted
	c.permMu.Unlock()

	return reply.Granted, nil
}

// LastKnownPermission returns the cached answer for key from the most
// recent [Client.CheckPermission], and whether one exists. It never calls
// the server; staleness is the caller's concern.
func (c *Client) LastKnownPermission(key PermissionKey) (granted, known bool) {
	if c == nil {
		return false, false
	}

	c.permMu.Lock()
	defer c.permMu.Unlock()
	granted, known = c.permCache[key]
	return granted, known
}
