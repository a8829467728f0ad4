// Package clock abstracts timer creation so the session core's deadline
// behavior (inactivity expiry, poll cadence) is testable against simulated
// time. Production code uses the real clock; tests drive [Fake].
package clock

import "time"

// Timer is a cancellable scheduled callback. Stop reports whether the call
// prevented the callback from firing.
type Timer interface {
	Stop() bool
}

// Clock supplies the current time and schedules callbacks. Implementations
// must be safe for concurrent use.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

type realClock struct{}

// New returns the wall clock.
func New() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
