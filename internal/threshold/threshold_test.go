package threshold

import (
	"strings"
	"testing"
	"time"

	"github.com/protoprobe/protoprobe/internal/bench"
	"github.com/protoprobe/protoprobe/internal/metrics"
	"github.com/protoprobe/protoprobe/internal/probe"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      Threshold
		wantError bool
	}{
		{
			name:  "valid p95 latency threshold",
			input: "latency:p95 < 500",
			want: Threshold{
				Metric:    "latency",
				Aggregate: "p95",
				Operator:  "<",
				Value:     500,
				Raw:       "latency:p95 < 500",
			},
		},
		{
			name:  "valid failure rate threshold",
			input: "failed:rate < 0.01",
			want: Threshold{
				Metric:    "failed",
				Aggregate: "rate",
				Operator:  "<",
				Value:     0.01,
				Raw:       "failed:rate < 0.01",
			},
		},
		{
			name:  "valid p99 latency with <=",
			input: "latency:p99 <= 1000",
			want: Threshold{
				Metric:    "latency",
				Aggregate: "p99",
				Operator:  "<=",
				Value:     1000,
				Raw:       "latency:p99 <= 1000",
			},
		},
		{
			name:  "valid requests rate threshold with >",
			input: "requests:rate > 100",
			want: Threshold{
				Metric:    "requests",
				Aggregate: "rate",
				Operator:  ">",
				Value:     100,
				Raw:       "requests:rate > 100",
			},
		},
		{
			name:  "valid avg latency",
			input: "latency:avg < 200",
			want: Threshold{
				Metric:    "latency",
				Aggregate: "avg",
				Operator:  "<",
				Value:     200,
				Raw:       "latency:avg < 200",
			},
		},
		{
			name:      "empty string",
			input:     "",
			wantError: true,
		},
		{
			name:      "missing aggregate",
			input:     "latency < 500",
			wantError: true,
		},
		{
			name:      "unsupported metric",
			input:     "throughput:rate > 10",
			wantError: true,
		},
		{
			name:      "unsupported aggregate",
			input:     "latency:p42 < 500",
			wantError: true,
		},
		{
			name:      "unsupported operator",
			input:     "latency:p95 != 500",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantError {
				if err == nil {
					t.Fatalf("Parse(%q) = %+v, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseMultiple(t *testing.T) {
	thresholds, err := ParseMultiple([]string{
		"latency:p95 < 500",
		"failed:rate < 0.01",
	})
	if err != nil {
		t.Fatalf("ParseMultiple() error = %v", err)
	}
	if len(thresholds) != 2 {
		t.Errorf("got %d thresholds, want 2", len(thresholds))
	}
}

func TestParseMultipleCollectsErrors(t *testing.T) {
	_, err := ParseMultiple([]string{
		"latency:p95 < 500",
		"bogus",
		"also:bad garbage",
	})
	if err == nil {
		t.Fatal("ParseMultiple() with invalid entries should return error")
	}
	if !strings.Contains(err.Error(), "threshold[1]") {
		t.Errorf("error should name the failing index, got %q", err.Error())
	}
}

func TestParseMultipleEmpty(t *testing.T) {
	thresholds, err := ParseMultiple(nil)
	if err != nil || thresholds != nil {
		t.Errorf("ParseMultiple(nil) = %v, %v; want nil, nil", thresholds, err)
	}
}

func testSummary() bench.Summary {
	latencies := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		300 * time.Millisecond,
		400 * time.Millisecond,
	}
	return bench.Summary{
		Protocol:           probe.ProtocolHTTP11,
		TotalRequests:      100,
		SuccessfulRequests: 96,
		FailedRequests:     4,
		RequestsPerSecond:  48,
		Latency:            metrics.NewLatencyStats(latencies),
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantPass bool
	}{
		{"p95 under limit", "latency:p95 < 500", true},
		{"p95 over limit", "latency:p95 < 100", false},
		{"avg under limit", "latency:avg < 300", true},
		{"min exact with <=", "latency:min <= 100", true},
		{"max over limit", "latency:max < 400", false},
		{"failure rate under limit", "failed:rate < 0.05", true},
		{"failure rate over limit", "failed:rate < 0.01", false},
		{"failure count equality", "failed:count == 4", true},
		{"request count", "requests:count >= 100", true},
		{"request rate under limit", "requests:rate > 100", false},
	}

	summary := testSummary()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.input, err)
			}
			results := NewEvaluator([]Threshold{th}).Evaluate(summary)
			if len(results) != 1 {
				t.Fatalf("got %d results, want 1", len(results))
			}
			if results[0].Pass != tt.wantPass {
				t.Errorf("Evaluate(%q) pass = %v, want %v (actual %g)",
					tt.input, results[0].Pass, tt.wantPass, results[0].Actual)
			}
			if results[0].Message == "" {
				t.Error("result message must not be empty")
			}
		})
	}
}

func TestEvaluateNoThresholds(t *testing.T) {
	if results := NewEvaluator(nil).Evaluate(testSummary()); results != nil {
		t.Errorf("Evaluate() with no thresholds = %v, want nil", results)
	}
}

func TestEvaluateZeroTotalFailureRate(t *testing.T) {
	th, err := Parse("failed:rate < 0.01")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	results := NewEvaluator([]Threshold{th}).Evaluate(bench.Summary{})
	if len(results) != 1 || !results[0].Pass {
		t.Errorf("failure rate over zero total must evaluate to 0 and pass, got %+v", results)
	}
}
