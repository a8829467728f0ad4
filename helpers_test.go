package linesight

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/linesight-io/linesight/internal/clock"
)

// recordingNavigator counts navigation signals so tests can assert the
// single-navigation guarantee of the forced-logout path.
type recordingNavigator struct {
	mu      sync.Mutex
	toLogin int
	reasons []LogoutReason
	home    int
}

func (n *recordingNavigator) NavigateToLogin(reason LogoutReason) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.toLogin++
	n.reasons = append(n.reasons, reason)
}

func (n *recordingNavigator) NavigateHome() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.home++
}

func (n *recordingNavigator) loginCalls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.toLogin
}

func (n *recordingNavigator) homeCalls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.home
}

func (n *recordingNavigator) lastReason() LogoutReason {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.reasons) == 0 {
		return ""
	}
	return n.reasons[len(n.reasons)-1]
}

// countingTransport wraps a RoundTripper and counts outbound requests.
type countingTransport struct {
	next  http.RoundTripper
	mu    sync.Mutex
	calls int
}

func (t *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.mu.Lock()
	t.calls++
	t.mu.Unlock()
	return t.next.RoundTrip(req)
}

func (t *countingTransport) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}

func sessionTestConfig(baseURL string) Config {
	cfg := defaultConfig()
	cfg.API.BaseURL = baseURL
	cfg.Session.InactivityWindow = 10 * time.Minute
	cfg.AutoRefresh.Interval = 2 * time.Minute
	cfg.Metrics.Enabled = true
	return cfg
}

// newSessionTestClient builds a client against handler with a fake clock and
// a recording navigator. The caller drives time through the returned fake.
func newSessionTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server, *clock.Fake, *recordingNavigator, *countingTransport) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	fake := clock.NewFake(time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC))
	nav := &recordingNavigator{}
	counter := &countingTransport{next: srv.Client().Transport}

	client, err := New().
		WithConfig(sessionTestConfig(srv.URL)).
		WithHTTPClient(&http.Client{Transport: counter}).
		WithNavigator(nav).
		withClock(fake).
		Build()
	if err != nil {
		t.Fatalf("build client: %v", err)
	}
	t.Cleanup(client.Close)

	return client, srv, fake, nav, counter
}

// seedSession plants a live session directly in the client's store, as if a
// login had already happened.
func seedSession(t *testing.T, c *Client, token string) {
	t.Helper()
	user := &UserRecord{ID: "u1", Name: "Alem T.", Role: "supervisor"}
	if err := c.store.SetSession(token, user); err != nil {
		t.Fatalf("seed session: %v", err)
	}
	c.monitor.Start()
}
