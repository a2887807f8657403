// Package bench drives concurrent request load against one protocol
// variant and reduces the outcomes into a benchmark summary.
package bench

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/protoprobe/protoprobe/internal/metrics"
	"github.com/protoprobe/protoprobe/internal/probe"
)

// Prober issues one request-and-measure operation. Satisfied by
// *probe.Prober; tests substitute fakes.
type Prober interface {
	Do(ctx context.Context, proto probe.Protocol, path, method string, opts probe.Options) probe.Outcome
}

var (
	ErrInvalidTotal       = errors.New("total requests must be > 0")
	ErrInvalidConcurrency = errors.New("concurrency must be > 0")
)

// Engine dispatches a fixed number of probes through a bounded worker pool
// and collects their outcomes in completion order.
type Engine struct {
	prober    Prober
	collector *metrics.Collector
}

// New creates an Engine. collector may be nil when no live progress
// reporting is wanted.
func New(prober Prober, collector *metrics.Collector) *Engine {
	return &Engine{prober: prober, collector: collector}
}

// Run issues total GET probes against path over the given protocol with at
// most concurrency in flight, then reduces the outcomes. Every dispatched
// probe contributes exactly one outcome: transport failures surface as
// failed outcomes, never as missing entries. The run's total time spans
// first dispatch to last collection.
func (e *Engine) Run(ctx context.Context, proto probe.Protocol, total, concurrency int, path string) (Summary, error) {
	if total <= 0 {
		return Summary{}, ErrInvalidTotal
	}
	if concurrency <= 0 {
		return Summary{}, ErrInvalidConcurrency
	}
	if concurrency > total {
		concurrency = total
	}
	if ctx == nil {
		ctx = context.Background()
	}

	jobs := make(chan struct{})
	outcomes := make(chan probe.Outcome)

	if e.collector != nil {
		e.collector.Start()
	}
	start := time.Now()

	// Feeder: every slot is enqueued unconditionally so the run always
	// produces the requested number of outcomes. On cancellation the
	// probes themselves fail fast and drain the queue.
	go func() {
		defer close(jobs)
		for i := 0; i < total; i++ {
			jobs <- struct{}{}
		}
	}()

	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func() {
			defer wg.Done()
			for range jobs {
				out := e.prober.Do(ctx, proto, path, http.MethodGet, probe.Options{})
				if e.collector != nil {
					e.collector.Record(out)
				}
				outcomes <- out
			}
		}()
	}

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	collected := make([]probe.Outcome, 0, total)
	for out := range outcomes {
		collected = append(collected, out)
	}
	totalTime := time.Since(start)

	return newSummary(proto, total, collected, totalTime), nil
}
