package linesight

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/linesight-io/linesight/credstore"
	"github.com/linesight-io/linesight/internal/clock"
	"github.com/linesight-io/linesight/internal/events"
)

// Builder defines a public type used by linesight APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config     Config
	httpClient *http.Client
	store      credstore.Store
	nav        Navigator
	sink       EventSink
	activity   <-chan struct{}
	clk        clock.Clock

	built bool
}

// New describes the new operation and its observable behavior.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithBaseURL describes the withbaseurl operation and its observable behavior.
func (b *Builder) WithBaseURL(baseURL string) *Builder {
	b.config.API.BaseURL = baseURL
	return b
}

// WithHTTPClient supplies the underlying HTTP client. Build wraps its
// transport with the authenticated request pipeline; the provided client is
// not modified.
func (b *Builder) WithHTTPClient(hc *http.Client) *Builder {
	b.httpClient = hc
	return b
}

// WithCredentialStore describes the withcredentialstore operation and its observable behavior.
func (b *Builder) WithCredentialStore(store credstore.Store) *Builder {
	b.store = store
	return b
}

// WithNavigator describes the withnavigator operation and its observable behavior.
func (b *Builder) WithNavigator(nav Navigator) *Builder {
	b.nav = nav
	return b
}

// WithEventSink describes the witheventsink operation and its observable behavior.
func (b *Builder) WithEventSink(sink EventSink) *Builder {
	b.sink = sink
	b.config.Events.Enabled = true
	return b
}

// WithActivitySource wires a channel of user-interaction signals (the host
// UI forwards pointer/key/scroll events into it). Every signal rearms the
// inactivity deadline.
func (b *Builder) WithActivitySource(activity <-chan struct{}) *Builder {
	b.activity = activity
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// withClock overrides timer scheduling; tests drive a fake clock through it.
func (b *Builder) withClock(clk clock.Clock) *Builder {
	b.clk = clk
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation or configuration checks fail.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	base, err := url.Parse(cfg.API.BaseURL)
	if err != nil {
		return nil, errors.New("API BaseURL must be a valid URL")
	}

	c := &Client{
		config:  cfg,
		base:    base,
		store:   b.store,
		nav:     b.nav,
		clk:     b.clk,
		metrics: NewMetrics(cfg.Metrics),
	}

	if c.store == nil {
		c.store = credstore.NewMemory()
	}
	if c.nav == nil {
		c.nav = NoopNavigator{}
	}
	if c.clk == nil {
		c.clk = clock.New()
	}

	c.monitor = newInactivityMonitor(c.clk, cfg.Session.InactivityWindow, c.onInactivityExpire, func() {
		c.metrics.Inc(MetricRearm)
	})
	c.monitor.activity = b.activity

	c.events = events.NewDispatcher(events.Config{
		Enabled:    cfg.Events.Enabled,
		BufferSize: cfg.Events.BufferSize,
		DropIfFull: cfg.Events.DropIfFull,
	}, b.sink)

	hc := http.Client{Timeout: cfg.API.RequestTimeout}
	inner := http.RoundTripper(http.DefaultTransport)
	if b.httpClient != nil {
		hc = *b.httpClient
		if hc.Transport != nil {
			inner = hc.Transport
		}
	}
	hc.Transport = &authTransport{next: inner, client: c}
	c.httpClient = &hc

	b.built = true

	return c, nil
}
