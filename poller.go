package linesight

import (
	"context"
	"sync"
	"time"

	"github.com/linesight-io/linesight/internal/clock"
)

// AutoRefresh re-runs a data-fetch callback on a fixed cadence, gated by
// the server-reported auto-refresh permission. Each tick is independent: a
// failing fetch is reported and the next tick still fires on schedule.
//
// AutoRefresh instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AutoRefresh struct {
	client   *Client
	fetch    func(context.Context) error
	onError  func(error)
	interval time.Duration
	clk      clock.Clock

	mu      sync.Mutex
	timer   clock.Timer
	running bool
	baseCtx context.Context
}

// NewAutoRefresh creates a poller around fetch, using the client's
// configured interval. The poller does nothing until [AutoRefresh.Start].
func (c *Client) NewAutoRefresh(fetch func(context.Context) error) *AutoRefresh {
	return &AutoRefresh{
		client:   c,
		fetch:    fetch,
		interval: c.config.AutoRefresh.Interval,
		clk:      c.clk,
	}
}

// OnError sets the per-tick error callback. Must be called before Start.
func (p *AutoRefresh) OnError(fn func(error)) {
	p.onError = fn
}

// Start checks the auto-refresh permission and, when granted, schedules the
// fetch callback every interval until [AutoRefresh.Stop] or ctx is
// cancelled. Fail-closed: a denied permission returns
// [ErrPermissionDenied], a failed check returns its error, and in both
// cases no timer is scheduled and the callback never runs.
func (p *AutoRefresh) Start(ctx context.Context) error {
	granted, err := p.client.CheckPermission(ctx, PermissionAutoRefresh)
	if err != nil {
		return err
	}
	if !granted {
		return ErrPermissionDenied
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return ErrPollerActive
	}
	p.running = true
	p.baseCtx = ctx
	p.timer = p.clk.AfterFunc(p.interval, p.tick)
	return nil
}

// Stop cancels the pending timer deterministically. After Stop returns, the
// fetch callback will not run again even as time continues to advance.
func (p *AutoRefresh) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.running = false
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

func (p *AutoRefresh) tick() {
	p.mu.Lock()
	if !p.running || p.baseCtx.Err() != nil {
		p.running = false
		p.timer = nil
		p.mu.Unlock()
		return
	}
	ctx := p.baseCtx
	p.mu.Unlock()

	p.client.metrics.Inc(MetricPollTick)
	if err := p.fetch(ctx); err != nil {
		p.client.metrics.Inc(MetricPollError)
		p.client.emit(eventPollError, false, "", "", err)
		if p.onError != nil {
			p.onError(err)
		}
	}

	p.mu.Lock()
	if p.running {
		p.timer = p.clk.AfterFunc(p.interval, p.tick)
	}
	p.mu.Unlock()
}
