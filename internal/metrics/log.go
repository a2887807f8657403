// Package metrics accumulates request outcomes and reduces them into
// latency and throughput statistics.
package metrics

import (
	"sync"

	"github.com/protoprobe/protoprobe/internal/probe"
)

// ResultLog is the process-wide, append-only record of every outcome the
// harness produced. Appends are serialized; benchmark workers write
// concurrently. Reads happen through Snapshot after workers have joined.
type ResultLog struct {
	mu       sync.Mutex
	outcomes []probe.Outcome
}

func NewResultLog() *ResultLog {
	return &ResultLog{}
}

// Append adds one outcome to the log. Outcomes are immutable once appended.
func (l *ResultLog) Append(out probe.Outcome) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.outcomes = append(l.outcomes, out)
}

// Snapshot returns a copy of the log in append order.
func (l *ResultLog) Snapshot() []probe.Outcome {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]probe.Outcome(nil), l.outcomes...)
}

// Len returns the number of outcomes recorded so far.
func (l *ResultLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.outcomes)
}
