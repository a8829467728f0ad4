package linesight

import (
	"sync"
	"testing"
	"time"
)

func TestMetricsDisabledIsNoOp(t *testing.T) {
	m := NewMetrics(MetricsConfig{})

	m.Inc(MetricLoginSuccess)
	m.Observe(MetricValidateLatency, 20*time.Millisecond)

	if got := m.Value(MetricLoginSuccess); got != 0 {
		t.Fatalf("disabled metrics counted %d", got)
	}
	snap := m.Snapshot()
	if len(snap.Counters) != 0 || len(snap.Histograms) != 0 {
		t.Fatalf("disabled snapshot not empty: %+v", snap)
	}
}

func TestMetricsConcurrentIncrements(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	const goroutines = 8
	const perGoroutine = 1000

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				m.Inc(MetricRearm)
			}
		}()
	}
	wg.Wait()

	if got := m.Value(MetricRearm); got != goroutines*perGoroutine {
		t.Fatalf("rearm counter = %d, want %d", got, goroutines*perGoroutine)
	}
}

func TestMetricsLatencyBuckets(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})

	m.Observe(MetricValidateLatency, 3*time.Millisecond)
	m.Observe(MetricValidateLatency, 40*time.Millisecond)
	m.Observe(MetricValidateLatency, 2*time.Second)

	buckets := m.Snapshot().Histograms[MetricValidateLatency]
	if len(buckets) != histBucketCount {
		t.Fatalf("bucket count = %d", len(buckets))
	}
	if buckets[0] != 1 || buckets[3] != 1 || buckets[7] != 1 {
		t.Fatalf("unexpected bucket distribution: %v", buckets)
	}

	// Only the validate latency series is histogrammed.
	m.Observe(MetricLoginSuccess, time.Millisecond)
	total := uint64(0)
	for _, b := range m.Snapshot().Histograms[MetricValidateLatency] {
		total += b
	}
	if total != 3 {
		t.Fatalf("histogram total = %d after observing a non-latency id", total)
	}
}

func TestMetricsOutOfRangeID(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Inc(metricIDCount + 10)
	if got := m.Value(metricIDCount + 10); got != 0 {
		t.Fatalf("out-of-range id counted %d", got)
	}
}
