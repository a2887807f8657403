package bench

import (
	"time"

	"github.com/protoprobe/protoprobe/internal/metrics"
	"github.com/protoprobe/protoprobe/internal/probe"
)

// Summary aggregates one benchmark run. Successful and failed counts always
// partition the total; latency statistics cover successes only and are zero
// when nothing succeeded.
type Summary struct {
	Protocol           probe.Protocol `json:"protocol"`
	TotalRequests      int            `json:"total_requests"`
	SuccessfulRequests int            `json:"successful_requests"`
	FailedRequests     int            `json:"failed_requests"`

	TotalTime   time.Duration `json:"-"`
	TotalTimeMs float64       `json:"total_time_ms"`

	// RequestsPerSecond counts successes over the run's wall-clock span.
	RequestsPerSecond float64 `json:"requests_per_second"`

	Latency metrics.LatencyStats `json:"latency"`
}

// newSummary reduces the unordered multiset of collected outcomes. The
// result is invariant under any permutation of completion order.
func newSummary(proto probe.Protocol, total int, outcomes []probe.Outcome, totalTime time.Duration) Summary {
	summary := Summary{
		Protocol:      proto,
		TotalRequests: total,
		TotalTime:     totalTime,
		TotalTimeMs:   float64(totalTime) / float64(time.Millisecond),
	}

	latencies := make([]time.Duration, 0, len(outcomes))
	for _, out := range outcomes {
		if out.Succeeded() {
			summary.SuccessfulRequests++
			latencies = append(latencies, out.Latency)
		} else {
			summary.FailedRequests++
		}
	}

	if totalTime > 0 && summary.SuccessfulRequests > 0 {
		summary.RequestsPerSecond = float64(summary.SuccessfulRequests) / totalTime.Seconds()
	}
	summary.Latency = metrics.NewLatencyStats(latencies)

	return summary
}
