package probe

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/protoprobe/protoprobe/internal/tracing"
)

// maxBodyReadBytes bounds how much of a response body is read for length
// accounting and previewing.
const maxBodyReadBytes = 1024 * 1024

// Recorder receives a copy of every Outcome the prober produces. Appends
// may happen concurrently from benchmark workers.
type Recorder interface {
	Append(Outcome)
}

// Options carries free-form per-request settings.
type Options struct {
	Headers map[string]string
	Body    string
}

// Prober issues single request-and-measure operations against one of the
// target's endpoints. HTTP/1.1 uses the plaintext endpoint, HTTP/2 the TLS
// endpoint with ALPN, and HTTP/3 is a permanent stub.
type Prober struct {
	baseURL   string
	httpsURL  string
	clients   *Clients
	tracer    trace.Tracer
	recorder  Recorder
	propagate bool
}

// New creates a Prober. recorder may be nil; tracer may be nil in which
// case spans are no-ops.
func New(baseURL, httpsURL string, clients *Clients, tracer trace.Tracer, recorder Recorder) *Prober {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("protoprobe")
	}
	return &Prober{
		baseURL:  strings.TrimRight(baseURL, "/"),
		httpsURL: strings.TrimRight(httpsURL, "/"),
		clients:  clients,
		tracer:   tracer,
		recorder: recorder,
	}
}

// EnablePropagation turns on W3C trace context injection into outgoing
// request headers.
func (p *Prober) EnablePropagation() {
	p.propagate = true
}

// Do performs a single request over the given protocol variant and maps the
// result to an Outcome. Transport-level failures are captured in the
// Outcome, never returned as errors.
func (p *Prober) Do(ctx context.Context, proto Protocol, path, method string, opts Options) Outcome {
	if ctx == nil {
		ctx = context.Background()
	}
	method = normalizeMethod(method)

	var out Outcome
	switch proto {
	case ProtocolHTTP11:
		out = p.request(ctx, ProtocolHTTP11, p.baseURL+path, method, opts, p.clients.Plain)
	case ProtocolHTTP2:
		out = p.request(ctx, ProtocolHTTP2, p.httpsURL+path, method, opts, p.clients.Secure)
	case ProtocolHTTP3:
		// Deliberate stub: no network activity, zero latency.
		out = failureOutcome(ProtocolHTTP3, method, p.httpsURL+path, 0, errHTTP3Unsupported)
	case ProtocolHTTP2Fallback, ProtocolUnknown:
		out = failureOutcome(proto, method, p.baseURL+path, 0, errNotRequestable)
	default:
		out = failureOutcome(ProtocolUnknown, method, p.baseURL+path, 0, errNotRequestable)
	}

	if p.recorder != nil {
		p.recorder.Append(out)
	}
	return out
}

// RunAll probes the same path/method over every supported protocol variant,
// sequentially and in fixed order. Ordering is a functional requirement:
// the output feeds human-readable conformance reports.
func (p *Prober) RunAll(ctx context.Context, path, method string, opts Options) []Outcome {
	outcomes := make([]Outcome, 0, len(allProtocols))
	for _, proto := range allProtocols {
		outcomes = append(outcomes, p.Do(ctx, proto, path, method, opts))
	}
	return outcomes
}

func (p *Prober) request(ctx context.Context, requested Protocol, target, method string, opts Options, client *http.Client) Outcome {
	ctx, span := tracing.StartRequestSpan(ctx, p.tracer, requested.String(), target)
	start := time.Now()

	var body io.Reader
	if opts.Body != "" {
		body = strings.NewReader(opts.Body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		out := failureOutcome(requested, method, target, time.Since(start), err)
		tracing.EndSpan(span, err)
		return out
	}
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}
	if p.propagate {
		tracing.InjectHTTPHeaders(ctx, req.Header)
	}

	resp, err := client.Do(req)
	latency := time.Since(start)
	if err != nil {
		out := failureOutcome(requested, method, target, latency, err)
		tracing.EndSpan(span, err)
		return out
	}
	defer resp.Body.Close()

	payload, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyReadBytes))
	if readErr != nil {
		payload = nil
	}

	served := servedProtocol(requested, resp)
	out := Outcome{
		Protocol:      served,
		Method:        method,
		Target:        target,
		Status:        resp.StatusCode,
		Latency:       latency,
		LatencyMs:     durationMs(latency),
		ContentLength: int64(len(payload)),
		Headers:       snapshotHeaders(resp.Header),
		BodyPreview:   bodyPreview(payload),
	}
	tracing.EndSpan(span, nil,
		attribute.Int("http.response.status_code", resp.StatusCode),
		attribute.String("network.protocol.name", served.String()),
	)
	return out
}

// servedProtocol resolves the protocol tag from what the transport actually
// negotiated. A request for HTTP/2 answered over HTTP/1.x is tagged as
// fallback.
func servedProtocol(requested Protocol, resp *http.Response) Protocol {
	switch requested {
	case ProtocolHTTP11:
		return ProtocolHTTP11
	case ProtocolHTTP2:
		if resp.ProtoMajor == 2 {
			return ProtocolHTTP2
		}
		return ProtocolHTTP2Fallback
	case ProtocolHTTP2Fallback, ProtocolHTTP3, ProtocolUnknown:
		return requested
	default:
		return ProtocolUnknown
	}
}

// snapshotHeaders copies response headers into a flat map, keeping the
// first value per name. Names carry net/http's canonical casing.
func snapshotHeaders(h http.Header) map[string]string {
	snapshot := make(map[string]string, len(h))
	for name, values := range h {
		if len(values) > 0 {
			snapshot[name] = values[0]
		}
	}
	return snapshot
}

// bodyPreview returns up to maxBodyPreviewBytes of the payload when it is
// valid UTF-8 text; binary payloads yield no preview.
func bodyPreview(payload []byte) string {
	if len(payload) == 0 {
		return ""
	}
	preview := payload
	if len(preview) > maxBodyPreviewBytes {
		preview = preview[:maxBodyPreviewBytes]
		// The cut may have split a multi-byte rune; trim at most one rune.
		for i := 0; i < utf8.UTFMax-1 && len(preview) > 0 && !utf8.Valid(preview); i++ {
			preview = preview[:len(preview)-1]
		}
	}
	if !utf8.Valid(preview) {
		return ""
	}
	return string(preview)
}

func normalizeMethod(method string) string {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		return http.MethodGet
	}
	return method
}
