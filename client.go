package linesight

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/linesight-io/linesight/credstore"
	"github.com/linesight-io/linesight/internal/clock"
	"github.com/linesight-io/linesight/internal/events"
)

const (
	pathLogin            = "/api/auth/login"
	pathLogout           = "/api/auth/logout"
	pathWhoAmI           = "/api/auth/me"
	pathPermissionPrefix = "/api/auth/permissions/"
	pathDashboardSummary = "/api/dashboard/summary"
)

const (
	eventLoginSuccess    = "login_success"
	eventLoginFailure    = "login_failure"
	eventLogout          = "logout"
	eventForcedLogout    = "forced_logout"
	eventSessionTimeout  = "session_timeout"
	eventValidateFailure = "validate_failure"
	eventPollError       = "poll_error"
)

// maxResponseBody bounds how much of any response the client will read.
const maxResponseBody = 1 << 20

// Client defines a public type used by linesight APIs.
//
// Client instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Client struct {
	config     Config
	httpClient *http.Client
	base       *url.URL
	store      credstore.Store
	nav        Navigator
	monitor    *inactivityMonitor
	events     *events.Dispatcher
	metrics    *Metrics
	clk        clock.Clock

	// loggingOut latches the forced-logout path so concurrent 401s and a
	// racing inactivity expiry produce exactly one navigation. Reset by
	// the next successful login.
	loggingOut atomic.Bool

	permMu    sync.Mutex
	permCache map[PermissionKey]bool
}

// Close describes the close operation and its observable behavior.
func (c *Client) Close() {
	if c == nil {
		return
	}
	if c.monitor != nil {
		c.monitor.Stop()
	}
	if c.events != nil {
		c.events.Close()
	}
}

// EventsDropped describes the eventsdropped operation and its observable behavior.
func (c *Client) EventsDropped() uint64 {
	if c == nil {
		return 0
	}
	return c.events.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
func (c *Client) MetricsSnapshot() MetricsSnapshot {
	if c == nil || c.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return c.metrics.Snapshot()
}

// Login authenticates against the dashboard API. On success the token and
// user record are stored atomically, the forced-logout latch is reset, and
// the inactivity monitor is armed for a full window.
//
// A 401/403 reply maps to [ErrInvalidCredentials]; other failures propagate
// and nothing is stored.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if c == nil || c.store == nil {
		return nil, ErrClientNotReady
	}
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var reply struct {
		Token string      `json:"token"`
		User  *UserRecord `json:"user"`
	}

	// The login call must never trip the 401 interceptor: a rejected
	// credential attempt is not a session expiry.
	err := c.doJSON(withoutForcedLogout(ctx), http.MethodPost, pathLogin, nil, map[string]string{
		"username": username,
		"password": password,
	}, &reply)
	if err != nil {
		var apiErr *APIError
		if errors.Is(err, ErrUnauthorized) {
			err = ErrInvalidCredentials
		} else if errors.As(err, &apiErr) && apiErr.Status == http.StatusForbidden {
			err = ErrInvalidCredentials
		}
		c.metrics.Inc(MetricLoginFailure)
		c.emit(eventLoginFailure, false, "", "", err)
		return nil, err
	}
	if reply.Token == "" {
		c.metrics.Inc(MetricLoginFailure)
		c.emit(eventLoginFailure, false, "", "", ErrUnexpectedResponse)
		return nil, fmt.Errorf("login reply carried no token: %w", ErrUnexpectedResponse)
	}

	if err := c.store.SetSession(reply.Token, reply.User); err != nil {
		c.metrics.Inc(MetricLoginFailure)
		c.emit(eventLoginFailure, false, "", "", err)
		return nil, err
	}
	c.loggingOut.Store(false)
	c.monitor.Start()

	c.metrics.Inc(MetricLoginSuccess)
	c.emit(eventLoginSuccess, true, userIDOf(reply.User), "", nil)
	c.nav.NavigateHome()

	return &LoginResult{Token: reply.Token, User: reply.User}, nil
}

// Logout ends the current session: best-effort server-side revoke, then
// local cleanup and navigation to login. Local cleanup proceeds even when
// the revoke call fails. Idempotent when already logged out.
func (c *Client) Logout(ctx context.Context) error {
	if c == nil || c.store == nil {
		return ErrClientNotReady
	}

	if _, ok := c.store.Token(); ok {
		c.revokeServerSession(ctx)
	}
	c.sessionEnd(LogoutReasonUser)
	return nil
}

// RecordActivity reports a user-interaction signal (pointer press, key
// press, scroll, ...) from the host UI. Rearms the inactivity deadline.
func (c *Client) RecordActivity() {
	if c == nil || c.monitor == nil {
		return
	}
	c.monitor.Rearm()
}

// SessionInfo returns a snapshot of the local session state for status
// displays. It performs no network calls.
func (c *Client) SessionInfo() SessionInfo {
	info := SessionInfo{}
	if c == nil || c.store == nil {
		return info
	}

	token, ok := c.store.Token()
	if !ok {
		return info
	}
	info.LoggedIn = true
	info.User, _ = c.store.User()

	armed, last, deadline := c.monitor.Snapshot()
	if armed {
		info.LastActivity = last
		info.IdleDeadline = deadline
		if remaining := deadline.Sub(c.clk.Now()); remaining > 0 {
			info.TimeUntilIdle = remaining
		}
	}

	info.TokenExpiry, info.TokenExpiryOK = TokenExpiry(token)
	return info
}

// ProductionSnapshot fetches the line-level KPI summary for date
// (YYYY-MM-DD; empty means "today" server-side).
func (c *Client) ProductionSnapshot(ctx context.Context, date string) (*ProductionSnapshot, error) {
	query := url.Values{}
	if date != "" {
		query.Set("date", date)
	}

	var snap ProductionSnapshot
	if err := c.doJSON(ctx, http.MethodGet, pathDashboardSummary, query, nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// GetJSON performs an authenticated GET against path (relative to the
// configured base URL) and decodes the JSON response into out. All session
// reactions (rearm on success, forced logout on 401) apply.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, nil, out)
}

// PostJSON performs an authenticated POST with a JSON body and decodes the
// response into out when out is non-nil.
func (c *Client) PostJSON(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, nil, body, out)
}

// Do sends a caller-built request through the authenticated pipeline. The
// caller owns the response body.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c == nil || c.httpClient == nil {
		return nil, ErrClientNotReady
	}
	return c.httpClient.Do(req)
}

// sessionEnd is the single forced-logout path shared by the 401 handler,
// the inactivity expiry, and explicit Logout. The latch guarantees one
// navigation per session end regardless of how many triggers race.
func (c *Client) sessionEnd(reason LogoutReason) {
	if !c.loggingOut.CompareAndSwap(false, true) {
		return
	}

	user, _ := c.store.User()
	c.monitor.Stop()
	if err := c.store.Clear(); err != nil {
		log.Print("linesight: credential store clear failed")
	}

	switch reason {
	case LogoutReasonUser:
		c.metrics.Inc(MetricLogout)
		c.emit(eventLogout, true, userIDOf(user), string(reason), nil)
	case LogoutReasonInactivity:
		c.metrics.Inc(MetricSessionTimeout)
		c.emit(eventSessionTimeout, false, userIDOf(user), string(reason), nil)
	default:
		c.metrics.Inc(MetricForcedLogout)
		c.emit(eventForcedLogout, false, userIDOf(user), string(reason), nil)
	}

	c.nav.NavigateToLogin(reason)
}

// onInactivityExpire is the monitor's expiry callback.
func (c *Client) onInactivityExpire() {
	ctx, cancel := context.WithTimeout(context.Background(), c.config.Session.RevokeTimeout)
	defer cancel()
	c.revokeServerSession(ctx)

	c.sessionEnd(LogoutReasonInactivity)
}

// revokeServerSession asks the server to invalidate the current token.
// Best-effort: failures are logged and never block local cleanup. The call
// bypasses the 401 interceptor since the session is ending anyway.
func (c *Client) revokeServerSession(ctx context.Context) {
	err := c.doJSON(withoutForcedLogout(ctx), http.MethodPost, pathLogout, nil, nil, nil)
	if err != nil {
		log.Print("linesight: server-side session revoke failed")
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if c == nil || c.httpClient == nil {
		return ErrClientNotReady
	}

	u := c.base.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBody))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{Status: resp.StatusCode, Body: string(bytes.TrimSpace(excerpt))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(out); err != nil {
		return fmt.Errorf("decode %s reply: %w", path, ErrUnexpectedResponse)
	}
	return nil
}

func (c *Client) emit(eventType string, success bool, userID, reason string, cause error) {
	if c.events == nil {
		return
	}

	event := events.Event{
		Timestamp: c.clk.Now(),
		EventType: eventType,
		UserID:    userID,
		Reason:    reason,
		Success:   success,
	}
	if cause != nil {
		event.Error = cause.Error()
	}
	c.events.Emit(context.Background(), event)
}

func userIDOf(u *UserRecord) string {
	if u == nil {
		return ""
	}
	return u.ID
}
