package clock

import (
	"testing"
	"time"
)

func TestFakeAdvanceFiresInDeadlineOrder(t *testing.T) {
	f := NewFake(time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC))

	var order []string
	f.AfterFunc(3*time.Minute, func() { order = append(order, "c") })
	f.AfterFunc(time.Minute, func() { order = append(order, "a") })
	f.AfterFunc(2*time.Minute, func() { order = append(order, "b") })

	f.Advance(5 * time.Minute)

	if len(order) != 3 || order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Fatalf("fire order = %v", order)
	}
	if got := f.PendingTimers(); got != 0 {
		t.Fatalf("pending timers = %d", got)
	}
}

func TestFakeStopPreventsFire(t *testing.T) {
	f := NewFake(time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC))

	timer := f.AfterFunc(time.Minute, func() {
		t.Error("stopped timer fired")
	})
	if !timer.Stop() {
		t.Fatal("first stop reported false")
	}
	if timer.Stop() {
		t.Fatal("second stop reported true")
	}

	f.Advance(time.Hour)
}

func TestFakeCallbackMaySchedule(t *testing.T) {
	f := NewFake(time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC))

	fired := 0
	var rearm func()
	rearm = func() {
		fired++
		if fired < 3 {
			f.AfterFunc(time.Minute, rearm)
		}
	}
	f.AfterFunc(time.Minute, rearm)

	// Timers scheduled by callbacks fire within the same advance when due.
	f.Advance(10 * time.Minute)
	if fired != 3 {
		t.Fatalf("chained timer fired %d times, want 3", fired)
	}
}

func TestFakeNowTracksAdvance(t *testing.T) {
	start := time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC)
	f := NewFake(start)

	var at time.Time
	f.AfterFunc(90*time.Second, func() { at = f.Now() })

	f.Advance(2 * time.Minute)

	if want := start.Add(90 * time.Second); !at.Equal(want) {
		t.Fatalf("callback observed %v, want %v", at, want)
	}
	if want := start.Add(2 * time.Minute); !f.Now().Equal(want) {
		t.Fatalf("Now = %v, want %v", f.Now(), want)
	}
}
