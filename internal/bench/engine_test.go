package bench

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/protoprobe/protoprobe/internal/metrics"
	"github.com/protoprobe/protoprobe/internal/probe"
)

// scriptedProber answers the first successBudget probes with 200 and the
// rest with 429, mimicking a rate-limited target.
type scriptedProber struct {
	successBudget int64
	calls         int64
	latency       time.Duration
}

func (s *scriptedProber) Do(_ context.Context, proto probe.Protocol, path, method string, _ probe.Options) probe.Outcome {
	n := atomic.AddInt64(&s.calls, 1)
	status := 200
	if n > s.successBudget {
		status = 429
	}
	return probe.Outcome{
		Protocol:  proto,
		Method:    method,
		Target:    path,
		Status:    status,
		Latency:   s.latency,
		LatencyMs: float64(s.latency) / float64(time.Millisecond),
	}
}

func TestRunPartitionsOutcomes(t *testing.T) {
	prober := &scriptedProber{successBudget: 100, latency: time.Millisecond}
	engine := New(prober, nil)

	summary, err := engine.Run(context.Background(), probe.ProtocolHTTP11, 120, 20, "/")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.TotalRequests != 120 {
		t.Errorf("TotalRequests = %d, want 120", summary.TotalRequests)
	}
	if summary.SuccessfulRequests != 100 {
		t.Errorf("SuccessfulRequests = %d, want 100", summary.SuccessfulRequests)
	}
	if summary.FailedRequests != 20 {
		t.Errorf("FailedRequests = %d, want 20", summary.FailedRequests)
	}
	if summary.SuccessfulRequests+summary.FailedRequests != summary.TotalRequests {
		t.Error("successes and failures must partition the total")
	}
	if summary.Protocol != probe.ProtocolHTTP11 {
		t.Errorf("Protocol = %v, want ProtocolHTTP11", summary.Protocol)
	}
	if summary.RequestsPerSecond <= 0 {
		t.Error("RequestsPerSecond must be positive when successes exist")
	}
}

func TestRunWithCollector(t *testing.T) {
	prober := &scriptedProber{successBudget: 10, latency: time.Millisecond}
	collector := metrics.NewCollector()
	engine := New(prober, collector)

	if _, err := engine.Run(context.Background(), probe.ProtocolHTTP2, 10, 4, "/"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	live := collector.Snapshot()
	if live.Total != 10 {
		t.Errorf("collector total = %d, want 10", live.Total)
	}
	if live.Successes != 10 {
		t.Errorf("collector successes = %d, want 10", live.Successes)
	}
}

func TestRunConcurrencyCappedAtTotal(t *testing.T) {
	prober := &scriptedProber{successBudget: 5, latency: time.Millisecond}
	engine := New(prober, nil)

	summary, err := engine.Run(context.Background(), probe.ProtocolHTTP11, 5, 50, "/")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.TotalRequests != 5 {
		t.Errorf("TotalRequests = %d, want 5", summary.TotalRequests)
	}
	if summary.FailedRequests != 0 {
		t.Errorf("FailedRequests = %d, want 0", summary.FailedRequests)
	}
}

func TestRunInvalidArguments(t *testing.T) {
	engine := New(&scriptedProber{successBudget: 1}, nil)

	if _, err := engine.Run(context.Background(), probe.ProtocolHTTP11, 0, 1, "/"); !errors.Is(err, ErrInvalidTotal) {
		t.Errorf("Run(total=0) error = %v, want ErrInvalidTotal", err)
	}
	if _, err := engine.Run(context.Background(), probe.ProtocolHTTP11, 10, 0, "/"); !errors.Is(err, ErrInvalidConcurrency) {
		t.Errorf("Run(concurrency=0) error = %v, want ErrInvalidConcurrency", err)
	}
}

func TestRunAllFailuresZeroRPS(t *testing.T) {
	prober := &scriptedProber{successBudget: 0, latency: time.Millisecond}
	engine := New(prober, nil)

	summary, err := engine.Run(context.Background(), probe.ProtocolHTTP11, 8, 2, "/")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.SuccessfulRequests != 0 {
		t.Errorf("SuccessfulRequests = %d, want 0", summary.SuccessfulRequests)
	}
	if summary.RequestsPerSecond != 0 {
		t.Errorf("RequestsPerSecond = %g, want 0 with no successes", summary.RequestsPerSecond)
	}
	if summary.Latency.Mean != 0 {
		t.Errorf("latency mean = %v, want 0 with no successes", summary.Latency.Mean)
	}
}

func TestNewSummaryPermutationInvariant(t *testing.T) {
	outcomes := []probe.Outcome{
		{Status: 200, Latency: 10 * time.Millisecond},
		{Status: 200, Latency: 30 * time.Millisecond},
		{Status: 500, Latency: 5 * time.Millisecond},
		{Status: 200, Latency: 20 * time.Millisecond},
	}
	reversed := make([]probe.Outcome, len(outcomes))
	for i, out := range outcomes {
		reversed[len(outcomes)-1-i] = out
	}

	a := newSummary(probe.ProtocolHTTP11, 4, outcomes, time.Second)
	b := newSummary(probe.ProtocolHTTP11, 4, reversed, time.Second)

	if a != b {
		t.Errorf("summary differs across permutations:\n  %+v\n  %+v", a, b)
	}
}

func TestSummaryPercentileOrdering(t *testing.T) {
	outcomes := make([]probe.Outcome, 0, 100)
	for i := 1; i <= 100; i++ {
		outcomes = append(outcomes, probe.Outcome{
			Status:  200,
			Latency: time.Duration(i) * time.Millisecond,
		})
	}
	summary := newSummary(probe.ProtocolHTTP2, 100, outcomes, time.Second)

	lat := summary.Latency
	if lat.P50 > lat.P90 || lat.P90 > lat.P95 || lat.P95 > lat.P99 {
		t.Errorf("percentiles not monotonic: p50=%v p90=%v p95=%v p99=%v", lat.P50, lat.P90, lat.P95, lat.P99)
	}
	if lat.P50 < lat.Min || lat.P99 > lat.Max {
		t.Errorf("percentiles outside [min, max]: min=%v p50=%v p99=%v max=%v", lat.Min, lat.P50, lat.P99, lat.Max)
	}
	if lat.Min != time.Millisecond || lat.Max != 100*time.Millisecond {
		t.Errorf("min/max = %v/%v, want 1ms/100ms", lat.Min, lat.Max)
	}
}
