package probe

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// ProbeRateLimit characterizes the target's admission control by issuing
// spaced sequential HTTP/1.1 requests until a 429 is observed or maxAttempts
// is reached. It is deliberately not the benchmark engine: threshold
// detection needs ordered, paced attempts, not burst concurrency.
//
// The returned slice contains every attempt made, including the triggering
// 429 when one occurs.
func (p *Prober) ProbeRateLimit(ctx context.Context, maxAttempts int, delay time.Duration) []Outcome {
	if ctx == nil {
		ctx = context.Background()
	}
	if maxAttempts <= 0 {
		return nil
	}

	limiter := newPacer(delay)
	outcomes := make([]Outcome, 0, maxAttempts)
	for attempt := 0; attempt < maxAttempts; attempt++ {
		// The limiter starts with one token, so the first attempt fires
		// immediately and each later one waits out the delay.
		if err := limiter.Wait(ctx); err != nil {
			break
		}
		out := p.Do(ctx, ProtocolHTTP11, "/", http.MethodGet, Options{})
		outcomes = append(outcomes, out)
		if out.Status == http.StatusTooManyRequests {
			break
		}
	}
	return outcomes
}

// newPacer spaces attempts one delay apart. A non-positive delay degrades
// to an unlimited limiter so the loop still observes ctx cancellation.
func newPacer(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}
