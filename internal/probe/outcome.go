package probe

import "time"

// Success window for classifying outcomes. Redirects count as success for
// benchmark purposes, and the security-header check deliberately reuses the
// same window so there is a single place to change the convention.
const (
	successLowerBound = 200
	successUpperBound = 400
)

// maxBodyPreviewBytes caps the textual body preview carried on an Outcome.
const maxBodyPreviewBytes = 200

// Outcome is the immutable record of one completed (or failed) request
// attempt. Exactly one of Status != 0 or Error != "" holds: a transport
// failure never carries a real status, and a received response never
// carries an error string.
type Outcome struct {
	Protocol      Protocol          `json:"protocol"`
	Method        string            `json:"method"`
	Target        string            `json:"target"`
	Status        int               `json:"status"`
	Latency       time.Duration     `json:"-"`
	LatencyMs     float64           `json:"latency_ms"`
	ContentLength int64             `json:"content_length"`
	Headers       map[string]string `json:"headers,omitempty"`
	Error         string            `json:"error,omitempty"`
	BodyPreview   string            `json:"body_preview,omitempty"`
}

// Succeeded reports whether the outcome falls inside the success window.
// Status 0 (no response) and statuses >= 400 are failures.
func (o Outcome) Succeeded() bool {
	return o.Status >= successLowerBound && o.Status < successUpperBound
}

// Failed reports the complementary classification: transport failures and
// application-level statuses outside the success window.
func (o Outcome) Failed() bool {
	return !o.Succeeded()
}

// failureOutcome builds the record for a request that produced no response.
func failureOutcome(proto Protocol, method, target string, latency time.Duration, err error) Outcome {
	msg := "request failed"
	if err != nil {
		msg = err.Error()
	}
	return Outcome{
		Protocol:  proto,
		Method:    method,
		Target:    target,
		Status:    0,
		Latency:   latency,
		LatencyMs: durationMs(latency),
		Headers:   map[string]string{},
		Error:     msg,
	}
}

func durationMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
