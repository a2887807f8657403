// Package output renders harness results as human-readable text or JSON and
// handles result-log export.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/protoprobe/protoprobe/internal/bench"
	"github.com/protoprobe/protoprobe/internal/checks"
	"github.com/protoprobe/protoprobe/internal/metrics"
	"github.com/protoprobe/protoprobe/internal/probe"
	"github.com/protoprobe/protoprobe/internal/threshold"
)

// PrintProtocolOutcomes outputs one line per protocol probe outcome.
func PrintProtocolOutcomes(w io.Writer, outcomes []probe.Outcome) {
	fmt.Fprintln(w, "\n--- Protocol Probes ---")
	for _, out := range outcomes {
		printOutcomeLine(w, "  ", out)
	}
}

// PrintSummary outputs the per-protocol aggregate view of the full result
// log. Protocols print in enum order so reports are stable.
func PrintSummary(w io.Writer, stats map[probe.Protocol]metrics.ProtocolStats) {
	if len(stats) == 0 {
		return
	}
	fmt.Fprintln(w, "\n--- Summary by Protocol ---")

	protocols := make([]probe.Protocol, 0, len(stats))
	for proto := range stats {
		protocols = append(protocols, proto)
	}
	sort.Slice(protocols, func(i, j int) bool { return protocols[i] < protocols[j] })

	for _, proto := range protocols {
		s := stats[proto]
		fmt.Fprintf(w, "  %s: total=%d, successes=%d, failures=%d", proto, s.Total, s.Successes, s.Failures)
		if s.Successes > 0 {
			fmt.Fprintf(w, ", latency mean=%.2fms min=%.2fms max=%.2fms",
				s.MeanLatencyMs, s.MinLatencyMs, s.MaxLatencyMs)
		}
		fmt.Fprintln(w)
	}
}

// PrintBenchmark outputs a human-readable benchmark summary.
func PrintBenchmark(w io.Writer, summary bench.Summary) {
	fmt.Fprintf(w, "\n--- Benchmark: %s ---\n", summary.Protocol)
	fmt.Fprintf(w, "Total Requests:    %d\n", summary.TotalRequests)
	fmt.Fprintf(w, "Successful:        %d\n", summary.SuccessfulRequests)
	fmt.Fprintf(w, "Failed:            %d\n", summary.FailedRequests)
	fmt.Fprintf(w, "Duration:          %s\n", summary.TotalTime)
	fmt.Fprintf(w, "Requests/sec:      %.2f\n", summary.RequestsPerSecond)

	if summary.SuccessfulRequests > 0 {
		lat := summary.Latency
		fmt.Fprintln(w, "\nLatency (successes):")
		fmt.Fprintf(w, "  Min:             %s\n", lat.Min)
		fmt.Fprintf(w, "  Max:             %s\n", lat.Max)
		fmt.Fprintf(w, "  Mean:            %s\n", lat.Mean)
		fmt.Fprintf(w, "  P50:             %s\n", lat.P50)
		fmt.Fprintf(w, "  P90:             %s\n", lat.P90)
		fmt.Fprintf(w, "  P95:             %s\n", lat.P95)
		fmt.Fprintf(w, "  P99:             %s\n", lat.P99)
	}
}

// PrintPathSweep outputs the per-path conformance sweep.
func PrintPathSweep(w io.Writer, results []checks.PathResult) {
	fmt.Fprintln(w, "\n--- Path Sweep ---")
	for _, result := range results {
		fmt.Fprintf(w, "  %s:\n", result.Path)
		for _, out := range result.Outcomes {
			printOutcomeLine(w, "    ", out)
		}
	}
}

// PrintMethodMatrix outputs one line per method probed against the root.
func PrintMethodMatrix(w io.Writer, outcomes []probe.Outcome) {
	fmt.Fprintln(w, "\n--- Method Matrix ---")
	for _, out := range outcomes {
		if out.Failed() {
			fmt.Fprintf(w, "  %-7s error: %s\n", out.Method, out.Error)
			continue
		}
		fmt.Fprintf(w, "  %-7s %d (%.2fms)\n", out.Method, out.Status, out.LatencyMs)
	}
}

// PrintCompression outputs the compression negotiation result.
func PrintCompression(w io.Writer, result checks.CompressionResult) {
	fmt.Fprintln(w, "\n--- Compression ---")
	switch {
	case result.Outcome.Failed():
		fmt.Fprintf(w, "  error: %s\n", result.Outcome.Error)
	case result.Supported:
		fmt.Fprintf(w, "  supported (Content-Encoding: %s)\n", result.Encoding)
	default:
		fmt.Fprintln(w, "  not negotiated (identity response)")
	}
}

// PrintSecurityHeaders outputs the security header audit.
func PrintSecurityHeaders(w io.Writer, result checks.SecurityHeadersResult) {
	fmt.Fprintln(w, "\n--- Security Headers ---")
	if result.Checks == nil {
		if result.Outcome.Failed() {
			fmt.Fprintf(w, "  not audited: %s\n", result.Outcome.Error)
		} else {
			fmt.Fprintf(w, "  not audited: status %d outside success window\n", result.Outcome.Status)
		}
		return
	}
	for _, check := range result.Checks {
		if check.Present {
			fmt.Fprintf(w, "  ✓ %s: %s\n", check.Name, check.Value)
		} else {
			fmt.Fprintf(w, "  ✗ %s: missing\n", check.Name)
		}
	}
}

// PrintRateLimit outputs the rate-limit probe attempts and verdict.
func PrintRateLimit(w io.Writer, outcomes []probe.Outcome) {
	fmt.Fprintln(w, "\n--- Rate Limiting ---")
	limited := false
	for i, out := range outcomes {
		if out.Failed() {
			fmt.Fprintf(w, "  attempt %d: error: %s\n", i+1, out.Error)
			continue
		}
		fmt.Fprintf(w, "  attempt %d: %d\n", i+1, out.Status)
		if out.Status == 429 {
			limited = true
		}
	}
	if limited {
		fmt.Fprintf(w, "  rate limiting detected after %d attempts\n", len(outcomes))
	} else {
		fmt.Fprintf(w, "  no rate limiting observed in %d attempts\n", len(outcomes))
	}
}

// PrintThresholds outputs the threshold evaluation, one line per assertion.
func PrintThresholds(w io.Writer, results []threshold.Result) {
	if len(results) == 0 {
		return
	}
	fmt.Fprintln(w, "\n--- Thresholds ---")
	for _, result := range results {
		fmt.Fprintf(w, "  %s\n", result.Message)
	}
}

// PrintJSONReport encodes any report payload as indented JSON.
func PrintJSONReport(w io.Writer, payload interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func printOutcomeLine(w io.Writer, indent string, out probe.Outcome) {
	if out.Failed() {
		fmt.Fprintf(w, "%s%s %s error: %s\n", indent, out.Protocol, out.Method, out.Error)
		return
	}
	fmt.Fprintf(w, "%s%s %s %d (%.2fms, %d bytes)\n",
		indent, out.Protocol, out.Method, out.Status, out.LatencyMs, out.ContentLength)
}
