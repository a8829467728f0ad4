package linesight

import (
	"sync"
	"time"

	"github.com/linesight-io/linesight/internal/clock"
)

// inactivityMonitor enforces the idle-session timeout independent of server
// state. States: armed (timer pending) -> expired (timer fired, onExpire
// invoked once) or disarmed (Stop). Rearm cancels exactly the previous
// pending timer before scheduling a new one, so rapid repeated rearms
// collapse to a single pending expiry.
type inactivityMonitor struct {
	clk      clock.Clock
	window   time.Duration
	onExpire func()
	onRearm  func()
	activity <-chan struct{}

	mu           sync.Mutex
	timer        clock.Timer
	armed        bool
	lastActivity time.Time
	deadline     time.Time
	done         chan struct{}
}

func newInactivityMonitor(clk clock.Clock, window time.Duration, onExpire, onRearm func()) *inactivityMonitor {
	return &inactivityMonitor{
		clk:      clk,
		window:   window,
		onExpire: onExpire,
		onRearm:  onRearm,
	}
}

// Start arms the expiry timer and, when an activity source is wired, begins
// consuming its signals. Starting an armed monitor just rearms it.
func (m *inactivityMonitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.armed {
		m.rearmLocked()
		return
	}

	m.armed = true
	m.rearmLocked()

	if m.activity != nil {
		m.done = make(chan struct{})
		go m.watch(m.activity, m.done)
	}
}

// Rearm cancels the pending expiry and schedules a fresh full window.
// No-op when the monitor is not armed.
func (m *inactivityMonitor) Rearm() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.armed {
		return
	}
	m.rearmLocked()
	if m.onRearm != nil {
		m.onRearm()
	}
}

// Stop detaches the activity listener and cancels any pending timer. Safe
// to call repeatedly and from the expiry path itself.
func (m *inactivityMonitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
}

// Snapshot reports the armed state, last observed activity, and current
// expiry deadline.
func (m *inactivityMonitor) Snapshot() (armed bool, lastActivity, deadline time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.armed, m.lastActivity, m.deadline
}

func (m *inactivityMonitor) rearmLocked() {
	if m.timer != nil {
		m.timer.Stop()
	}
	m.lastActivity = m.clk.Now()
	m.deadline = m.lastActivity.Add(m.window)
	m.timer = m.clk.AfterFunc(m.window, m.fire)
}

func (m *inactivityMonitor) stopLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	if m.done != nil {
		close(m.done)
		m.done = nil
	}
	m.armed = false
	m.deadline = time.Time{}
}

func (m *inactivityMonitor) fire() {
	m.mu.Lock()
	if !m.armed {
		m.mu.Unlock()
		return
	}
	m.stopLocked()
	m.mu.Unlock()

	if m.onExpire != nil {
		m.onExpire()
	}
}

func (m *inactivityMonitor) watch(activity <-chan struct{}, done chan struct{}) {
	for {
		select {
		case _, ok := <-activity:
			if !ok {
				return
			}
			m.Rearm()
		case <-done:
			return
		}
	}
}
