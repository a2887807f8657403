package metrics

import (
	"testing"
	"time"

	"github.com/protoprobe/protoprobe/internal/probe"
)

func TestCollectorCounts(t *testing.T) {
	c := NewCollector()
	c.Start()

	c.Record(probe.Outcome{Status: 200, Latency: 10 * time.Millisecond})
	c.Record(probe.Outcome{Status: 302, Latency: 20 * time.Millisecond})
	c.Record(probe.Outcome{Status: 404, Latency: 5 * time.Millisecond})
	c.Record(probe.Outcome{Error: "connection refused"})

	stats := c.Snapshot()
	if stats.Total != 4 {
		t.Errorf("Total = %d, want 4", stats.Total)
	}
	if stats.Successes != 2 {
		t.Errorf("Successes = %d, want 2", stats.Successes)
	}
	if stats.Failures != 2 {
		t.Errorf("Failures = %d, want 2", stats.Failures)
	}
	if stats.RequestsPerSec <= 0 {
		t.Error("RequestsPerSec must be positive after recording")
	}
}

func TestCollectorStatusBuckets(t *testing.T) {
	c := NewCollector()
	c.Record(probe.Outcome{Status: 200, Latency: time.Millisecond})
	c.Record(probe.Outcome{Status: 201, Latency: time.Millisecond})
	c.Record(probe.Outcome{Status: 429, Latency: time.Millisecond})
	c.Record(probe.Outcome{Error: "timeout"})

	stats := c.Snapshot()
	if stats.StatusBuckets["2xx"] != 2 {
		t.Errorf("2xx bucket = %d, want 2", stats.StatusBuckets["2xx"])
	}
	if stats.StatusBuckets["4xx"] != 1 {
		t.Errorf("4xx bucket = %d, want 1", stats.StatusBuckets["4xx"])
	}
	if stats.StatusBuckets["no-response"] != 1 {
		t.Errorf("no-response bucket = %d, want 1", stats.StatusBuckets["no-response"])
	}
}

func TestCollectorLatencyRange(t *testing.T) {
	c := NewCollector()
	c.Record(probe.Outcome{Status: 200, Latency: 10 * time.Millisecond})
	c.Record(probe.Outcome{Status: 200, Latency: 40 * time.Millisecond})

	stats := c.Snapshot()
	if stats.MinLatencyMs != 10.0 {
		t.Errorf("MinLatencyMs = %g, want 10", stats.MinLatencyMs)
	}
	if stats.MaxLatencyMs != 40.0 {
		t.Errorf("MaxLatencyMs = %g, want 40", stats.MaxLatencyMs)
	}
	if stats.MeanLatencyMs != 25.0 {
		t.Errorf("MeanLatencyMs = %g, want 25", stats.MeanLatencyMs)
	}
	if stats.P50LatencyMs <= 0 || stats.P99LatencyMs < stats.P50LatencyMs {
		t.Errorf("histogram percentiles inconsistent: p50=%g p99=%g", stats.P50LatencyMs, stats.P99LatencyMs)
	}
}

func TestCollectorEmptySnapshot(t *testing.T) {
	c := NewCollector()
	stats := c.Snapshot()
	if stats.Total != 0 || stats.RequestsPerSec != 0 {
		t.Errorf("empty snapshot = %+v, want zeroes", stats)
	}
	if stats.StatusBuckets != nil {
		t.Errorf("empty snapshot buckets = %v, want nil", stats.StatusBuckets)
	}
}

func TestStatusBucket(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{0, "no-response"},
		{-1, "no-response"},
		{200, "2xx"},
		{301, "3xx"},
		{404, "4xx"},
		{503, "5xx"},
	}
	for _, tt := range tests {
		if got := statusBucket(tt.status); got != tt.want {
			t.Errorf("statusBucket(%d) = %q, want %q", tt.status, got, tt.want)
		}
	}
}
