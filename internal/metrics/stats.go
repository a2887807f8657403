package metrics

import (
	"math"
	"sort"
	"time"

	"github.com/protoprobe/protoprobe/internal/probe"
)

// LatencyStats aggregates latencies of successful outcomes. All fields are
// zero when the sample is empty.
type LatencyStats struct {
	Mean time.Duration `json:"-"`
	Min  time.Duration `json:"-"`
	Max  time.Duration `json:"-"`
	P50  time.Duration `json:"-"`
	P90  time.Duration `json:"-"`
	P95  time.Duration `json:"-"`
	P99  time.Duration `json:"-"`

	// JSON-friendly millisecond fields.
	MeanMs float64 `json:"mean_ms"`
	MinMs  float64 `json:"min_ms"`
	MaxMs  float64 `json:"max_ms"`
	P50Ms  float64 `json:"p50_ms"`
	P90Ms  float64 `json:"p90_ms"`
	P95Ms  float64 `json:"p95_ms"`
	P99Ms  float64 `json:"p99_ms"`
}

// NewLatencyStats reduces a latency sample. The caller decides which
// outcomes contribute; the benchmark engine passes successes only.
func NewLatencyStats(latencies []time.Duration) LatencyStats {
	if len(latencies) == 0 {
		return LatencyStats{}
	}

	sorted := append([]time.Duration(nil), latencies...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var sum time.Duration
	for _, l := range sorted {
		sum += l
	}

	stats := LatencyStats{
		Mean: sum / time.Duration(len(sorted)),
		Min:  sorted[0],
		Max:  sorted[len(sorted)-1],
		P50:  Quantile(sorted, 0.50),
		P90:  Quantile(sorted, 0.90),
		P95:  Quantile(sorted, 0.95),
		P99:  Quantile(sorted, 0.99),
	}
	stats.MeanMs = durationMs(stats.Mean)
	stats.MinMs = durationMs(stats.Min)
	stats.MaxMs = durationMs(stats.Max)
	stats.P50Ms = durationMs(stats.P50)
	stats.P90Ms = durationMs(stats.P90)
	stats.P95Ms = durationMs(stats.P95)
	stats.P99Ms = durationMs(stats.P99)
	return stats
}

// Quantile evaluates the q-th quantile (0..1) of an ascending sample with
// linear interpolation between closest ranks. One function serves every
// percentile so the set is monotonic by construction and always lies within
// [min, max].
func Quantile(sorted []time.Duration, q float64) time.Duration {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[n-1]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + time.Duration(frac*float64(sorted[hi]-sorted[lo]))
}

// ProtocolStats is the per-protocol reduction used by the end-of-run report.
// Latency figures cover successful outcomes only.
type ProtocolStats struct {
	Total     int `json:"total"`
	Successes int `json:"successes"`
	Failures  int `json:"failures"`

	MeanLatency time.Duration `json:"-"`
	MinLatency  time.Duration `json:"-"`
	MaxLatency  time.Duration `json:"-"`

	MeanLatencyMs float64 `json:"mean_latency_ms"`
	MinLatencyMs  float64 `json:"min_latency_ms"`
	MaxLatencyMs  float64 `json:"max_latency_ms"`
}

// Summarize buckets outcomes by their recorded protocol tag and reduces
// each bucket. Fallback responses form their own bucket, distinct from
// HTTP/2. An empty input yields an empty map.
func Summarize(outcomes []probe.Outcome) map[probe.Protocol]ProtocolStats {
	summary := make(map[probe.Protocol]ProtocolStats, 4)
	successes := make(map[probe.Protocol][]time.Duration, 4)

	for _, out := range outcomes {
		stats := summary[out.Protocol]
		stats.Total++
		if out.Succeeded() {
			stats.Successes++
			successes[out.Protocol] = append(successes[out.Protocol], out.Latency)
		} else {
			stats.Failures++
		}
		summary[out.Protocol] = stats
	}

	for proto, latencies := range successes {
		stats := summary[proto]
		lat := NewLatencyStats(latencies)
		stats.MeanLatency = lat.Mean
		stats.MinLatency = lat.Min
		stats.MaxLatency = lat.Max
		stats.MeanLatencyMs = lat.MeanMs
		stats.MinLatencyMs = lat.MinMs
		stats.MaxLatencyMs = lat.MaxMs
		summary[proto] = stats
	}

	return summary
}

func durationMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
