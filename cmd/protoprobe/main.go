package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/protoprobe/protoprobe/internal/bench"
	"github.com/protoprobe/protoprobe/internal/checks"
	"github.com/protoprobe/protoprobe/internal/config"
	"github.com/protoprobe/protoprobe/internal/metrics"
	"github.com/protoprobe/protoprobe/internal/output"
	"github.com/protoprobe/protoprobe/internal/probe"
	"github.com/protoprobe/protoprobe/internal/threshold"
	"github.com/protoprobe/protoprobe/internal/tracing"
)

const (
	progressInterval = time.Second
	shutdownTimeout  = 5 * time.Second
)

// benchProtocols lists the directly requestable variants worth load testing.
var benchProtocols = []probe.Protocol{probe.ProtocolHTTP11, probe.ProtocolHTTP2}

// report is the JSON-mode payload covering every stage that ran.
type report struct {
	Probes      []probe.Outcome                           `json:"probes"`
	PathSweep   []checks.PathResult                       `json:"path_sweep"`
	Methods     []probe.Outcome                           `json:"methods"`
	Compression checks.CompressionResult                  `json:"compression"`
	RateLimit   []probe.Outcome                           `json:"rate_limit,omitempty"`
	Security    *checks.SecurityHeadersResult             `json:"security_headers,omitempty"`
	Benchmarks  []bench.Summary                           `json:"benchmarks,omitempty"`
	Summary     map[probe.Protocol]metrics.ProtocolStats `json:"summary"`
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	provider, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "[protoprobe] tracing shutdown: %v\n", err)
		}
	}()

	clients, err := probe.NewClients(cfg.Timeout)
	if err != nil {
		return err
	}
	defer clients.CloseIdle()

	log := metrics.NewResultLog()
	prober := probe.New(cfg.BaseURL, cfg.HTTPSURL, clients, provider.Tracer(), log)
	if provider.ShouldPropagate() {
		prober.EnablePropagation()
	}

	opts := probe.Options{Headers: cfg.Headers}
	rep := report{}

	// Stage 1: one probe per protocol variant against the configured path.
	rep.Probes = prober.RunAll(ctx, cfg.Path, cfg.Method, opts)
	if !cfg.JSONOutput {
		output.PrintProtocolOutcomes(os.Stdout, rep.Probes)
	}

	// Stage 2: conformance sweeps.
	rep.PathSweep = checks.RunPathSweep(ctx, prober, cfg.Method, opts)
	rep.Methods = checks.RunMethodMatrix(ctx, prober)
	rep.Compression = checks.CheckCompression(ctx, prober)
	if !cfg.JSONOutput {
		output.PrintPathSweep(os.Stdout, rep.PathSweep)
		output.PrintMethodMatrix(os.Stdout, rep.Methods)
		output.PrintCompression(os.Stdout, rep.Compression)
	}

	// Stage 3: security checks, opt-in.
	if cfg.Security {
		rep.RateLimit = prober.ProbeRateLimit(ctx, cfg.RateLimitAttempts, cfg.RateLimitDelay)
		security := checks.CheckSecurityHeaders(ctx, prober)
		rep.Security = &security
		if !cfg.JSONOutput {
			output.PrintRateLimit(os.Stdout, rep.RateLimit)
			output.PrintSecurityHeaders(os.Stdout, security)
		}
	}

	// Stage 4: benchmarks, opt-in.
	var failedThresholds int
	if cfg.Benchmark {
		thresholds, err := threshold.ParseMultiple(cfg.Thresholds)
		if err != nil {
			return err
		}
		evaluator := threshold.NewEvaluator(thresholds)

		for _, proto := range benchProtocols {
			summary, err := runBenchmark(ctx, cfg, prober, proto)
			if err != nil {
				return err
			}
			rep.Benchmarks = append(rep.Benchmarks, summary)

			results := evaluator.Evaluate(summary)
			if !cfg.JSONOutput {
				output.PrintBenchmark(os.Stdout, summary)
				output.PrintThresholds(os.Stdout, results)
			}
			for _, result := range results {
				if !result.Pass {
					failedThresholds++
				}
			}
		}
	}

	rep.Summary = metrics.Summarize(log.Snapshot())
	if cfg.JSONOutput {
		if err := output.PrintJSONReport(os.Stdout, rep); err != nil {
			return err
		}
	} else {
		output.PrintSummary(os.Stdout, rep.Summary)
	}

	if cfg.ExportPath != "" {
		if err := output.Export(cfg.ExportPath, cfg.BaseURL, cfg.HTTPSURL, log.Snapshot()); err != nil {
			return err
		}
		if !cfg.JSONOutput {
			fmt.Fprintf(os.Stdout, "\nResults exported to %s\n", cfg.ExportPath)
		}
	}

	if failedThresholds > 0 {
		return fmt.Errorf("%d threshold(s) failed", failedThresholds)
	}
	return nil
}

func runBenchmark(ctx context.Context, cfg *config.Config, prober *probe.Prober, proto probe.Protocol) (bench.Summary, error) {
	collector := metrics.NewCollector()
	engine := bench.New(prober, collector)

	var progress *output.ProgressReporter
	if !cfg.JSONOutput {
		fmt.Fprintf(os.Stdout, "\nBenchmarking %s (%d requests, %d concurrent)...\n",
			proto, cfg.Requests, cfg.Concurrency)
		progress = output.NewProgressReporter(collector, progressInterval, os.Stdout)
		progress.Start()
	}

	summary, err := engine.Run(ctx, proto, cfg.Requests, cfg.Concurrency, cfg.Path)
	if progress != nil {
		progress.Stop()
		fmt.Fprintln(os.Stdout)
	}
	return summary, err
}
