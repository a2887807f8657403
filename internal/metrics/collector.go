package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/protoprobe/protoprobe/internal/probe"
)

// Collector records per-outcome metrics in a thread-safe manner. It backs
// live progress reporting during a benchmark; the authoritative end-of-run
// statistics are reduced exactly from the collected outcomes instead.
type Collector struct {
	mu            sync.Mutex
	hist          *hdrhistogram.Histogram
	successes     int64
	failures      int64
	minLatency    time.Duration
	maxLatency    time.Duration
	sumLatency    time.Duration
	statusBuckets map[string]int64
	start         time.Time
}

// LiveStats is a point-in-time snapshot for progress display.
type LiveStats struct {
	Total          int64   `json:"total"`
	Successes      int64   `json:"successes"`
	Failures       int64   `json:"failures"`
	RequestsPerSec float64 `json:"requests_per_sec"`

	MinLatencyMs  float64 `json:"min_latency_ms"`
	MaxLatencyMs  float64 `json:"max_latency_ms"`
	MeanLatencyMs float64 `json:"mean_latency_ms"`
	P50LatencyMs  float64 `json:"p50_latency_ms"`
	P90LatencyMs  float64 `json:"p90_latency_ms"`
	P99LatencyMs  float64 `json:"p99_latency_ms"`

	StatusBuckets map[string]int64 `json:"status_buckets,omitempty"`
}

func NewCollector() *Collector {
	// Track latencies from 1µs up to 60s with 3 significant figures.
	h := hdrhistogram.New(1, 60_000_000, 3)
	return &Collector{
		hist:          h,
		statusBuckets: make(map[string]int64),
		start:         time.Now(),
	}
}

// Start resets the collector's clock to now. Call it right before the first
// dispatch so live RPS reflects the run rather than collector construction.
func (c *Collector) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.start = time.Now()
}

// Record folds one outcome into the running aggregates.
func (c *Collector) Record(out probe.Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if out.Latency > 0 {
		us := out.Latency.Microseconds()
		if us < c.hist.LowestTrackableValue() {
			us = c.hist.LowestTrackableValue()
		}
		if us > c.hist.HighestTrackableValue() {
			us = c.hist.HighestTrackableValue()
		}
		_ = c.hist.RecordValue(us)
	}
	c.sumLatency += out.Latency

	if c.minLatency == 0 || out.Latency < c.minLatency {
		c.minLatency = out.Latency
	}
	if out.Latency > c.maxLatency {
		c.maxLatency = out.Latency
	}

	if out.Succeeded() {
		c.successes++
	} else {
		c.failures++
	}
	c.statusBuckets[statusBucket(out.Status)]++
}

// Snapshot computes the current live statistics.
func (c *Collector) Snapshot() LiveStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.successes + c.failures
	stats := LiveStats{
		Total:        total,
		Successes:    c.successes,
		Failures:     c.failures,
		MinLatencyMs: durationMs(c.minLatency),
		MaxLatencyMs: durationMs(c.maxLatency),
	}

	if total > 0 {
		stats.MeanLatencyMs = durationMs(c.sumLatency / time.Duration(total))
	}

	if c.hist.TotalCount() > 0 {
		stats.P50LatencyMs = float64(c.hist.ValueAtQuantile(50)) / 1000
		stats.P90LatencyMs = float64(c.hist.ValueAtQuantile(90)) / 1000
		stats.P99LatencyMs = float64(c.hist.ValueAtQuantile(99)) / 1000
	}

	elapsed := time.Since(c.start)
	if elapsed > 0 && total > 0 {
		stats.RequestsPerSec = float64(total) / elapsed.Seconds()
	}

	if len(c.statusBuckets) > 0 {
		stats.StatusBuckets = make(map[string]int64, len(c.statusBuckets))
		for k, v := range c.statusBuckets {
			stats.StatusBuckets[k] = v
		}
	}

	return stats
}

// statusBucket groups codes by class ("2xx", "4xx", ...); 0 means no
// response was received.
func statusBucket(status int) string {
	if status <= 0 {
		return "no-response"
	}
	return strconv.Itoa(status/100) + "xx"
}
