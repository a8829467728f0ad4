package linesight

import (
	"errors"
	"net/url"
	"time"
)

// Config defines a public type used by linesight APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	API         APIConfig
	Session     SessionConfig
	AutoRefresh AutoRefreshConfig
	Events      EventsConfig
	Metrics     MetricsConfig
}

/*
====================================
API CONFIG
====================================
*/

// APIConfig defines a public type used by linesight APIs.
//
// APIConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type APIConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
	UserAgent      string
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig defines a public type used by linesight APIs.
//
// SessionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionConfig struct {
	// InactivityWindow is the idle duration after which the session is
	// forcibly ended. Rearmed by any user activity or successful
	// authenticated response.
	InactivityWindow time.Duration
	// RevokeTimeout bounds the best-effort server-side revoke call made
	// during inactivity expiry. Local cleanup proceeds regardless.
	RevokeTimeout time.Duration
}

/*
====================================
AUTO-REFRESH CONFIG
====================================
*/

// AutoRefreshConfig defines a public type used by linesight APIs.
//
// AutoRefreshConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AutoRefreshConfig struct {
	Interval time.Duration
}

/*
====================================
EVENTS CONFIG
====================================
*/

// EventsConfig defines a public type used by linesight APIs.
//
// EventsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type EventsConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by linesight APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the configuration the builder starts from: 10
// minute inactivity window, 2 minute auto-refresh interval, 15 second
// request timeout, events and metrics disabled. BaseURL must still be set.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		API: APIConfig{
			RequestTimeout: 15 * time.Second,
			UserAgent:      "linesight-go/1",
		},
		Session: SessionConfig{
			InactivityWindow: 10 * time.Minute,
			RevokeTimeout:    3 * time.Second,
		},
		AutoRefresh: AutoRefreshConfig{
			Interval: 2 * time.Minute,
		},
		Events: EventsConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	return cfg
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	// API
	if c.API.BaseURL == "" {
		return errors.New("API BaseURL must be set")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return errors.New("API BaseURL must be a valid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("API BaseURL scheme must be http or https")
	}
	if u.Host == "" {
		return errors.New("API BaseURL must include a host")
	}
	if c.API.RequestTimeout <= 0 {
		return errors.New("API RequestTimeout must be > 0")
	}

	// Session
	if c.Session.InactivityWindow <= 0 {
		return errors.New("Session InactivityWindow must be > 0")
	}
	if c.Session.RevokeTimeout <= 0 {
		return errors.New("Session RevokeTimeout must be > 0")
	}

	// AutoRefresh
	if c.AutoRefresh.Interval <= 0 {
		return errors.New("AutoRefresh Interval must be > 0")
	}

	// Events
	if c.Events.Enabled && c.Events.BufferSize <= 0 {
		return errors.New("Events BufferSize must be > 0 when Events are enabled")
	}

	return nil
}
