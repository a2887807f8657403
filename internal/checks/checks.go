// Package checks implements the conformance sweeps that run alongside the
// per-protocol probes: path coverage, method handling, response compression,
// and security response headers.
package checks

import (
	"context"
	"net/http"

	"github.com/protoprobe/protoprobe/internal/probe"
)

// Prober is the subset of probe.Prober the checks drive. Declared here so
// tests can substitute a fake.
type Prober interface {
	Do(ctx context.Context, proto probe.Protocol, path, method string, opts probe.Options) probe.Outcome
	RunAll(ctx context.Context, path, method string, opts probe.Options) []probe.Outcome
}

// SweepPaths is the fixed coverage set for the path sweep: root, a static
// document, an API route, a static asset, and a path expected to 404.
var SweepPaths = []string{
	"/",
	"/index.html",
	"/api/test",
	"/static/test.css",
	"/nonexistent",
}

// MatrixMethods is the fixed method set for the method matrix.
var MatrixMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodDelete,
	http.MethodPatch,
	http.MethodHead,
	http.MethodOptions,
}

// PathResult groups the per-protocol outcomes observed for one path.
type PathResult struct {
	Path     string          `json:"path"`
	Outcomes []probe.Outcome `json:"outcomes"`
}

// RunPathSweep probes every path in SweepPaths over all protocol variants,
// in order. Failures (including the 404 path) are data, not errors.
func RunPathSweep(ctx context.Context, p Prober, method string, opts probe.Options) []PathResult {
	results := make([]PathResult, 0, len(SweepPaths))
	for _, path := range SweepPaths {
		results = append(results, PathResult{
			Path:     path,
			Outcomes: p.RunAll(ctx, path, method, opts),
		})
	}
	return results
}

// RunMethodMatrix issues one HTTP/1.1 request per method in MatrixMethods
// against the root path and returns the outcomes in method order.
func RunMethodMatrix(ctx context.Context, p Prober) []probe.Outcome {
	outcomes := make([]probe.Outcome, 0, len(MatrixMethods))
	for _, method := range MatrixMethods {
		outcomes = append(outcomes, p.Do(ctx, probe.ProtocolHTTP11, "/", method, probe.Options{}))
	}
	return outcomes
}

// CompressionResult reports whether the server honored a compressed-response
// negotiation.
type CompressionResult struct {
	Outcome   probe.Outcome `json:"outcome"`
	Supported bool          `json:"supported"`
	Encoding  string        `json:"encoding,omitempty"`
}

// CheckCompression requests the root path over HTTP/1.1 while advertising
// the common content codings. Setting Accept-Encoding explicitly disables
// the transport's transparent gzip handling, so the Content-Encoding header
// survives into the outcome.
func CheckCompression(ctx context.Context, p Prober) CompressionResult {
	out := p.Do(ctx, probe.ProtocolHTTP11, "/", http.MethodGet, probe.Options{
		Headers: map[string]string{"Accept-Encoding": "gzip, deflate, br"},
	})

	result := CompressionResult{Outcome: out}
	if !out.Succeeded() {
		return result
	}
	if encoding, ok := out.Headers["Content-Encoding"]; ok && encoding != "" {
		result.Supported = true
		result.Encoding = encoding
	}
	return result
}

// securityHeaders lists the response headers audited by the security check,
// in report order. Names use net/http canonical casing to match how outcome
// header snapshots are keyed.
var securityHeaders = []string{
	"X-Frame-Options",
	"X-Content-Type-Options",
	"X-Xss-Protection",
	"Strict-Transport-Security",
}

// HeaderCheck records presence and value for one audited header.
type HeaderCheck struct {
	Name    string `json:"name"`
	Present bool   `json:"present"`
	Value   string `json:"value,omitempty"`
}

// SecurityHeadersResult carries the audited headers plus the outcome that
// produced them. Checks is nil when the request did not yield a successful
// response to audit.
type SecurityHeadersResult struct {
	Outcome probe.Outcome `json:"outcome"`
	Checks  []HeaderCheck `json:"checks,omitempty"`
}

// CheckSecurityHeaders fetches the root path over the TLS endpoint and
// audits the hardening headers. Only responses inside the success window are
// audited; a failed or out-of-window response returns no checks.
func CheckSecurityHeaders(ctx context.Context, p Prober) SecurityHeadersResult {
	out := p.Do(ctx, probe.ProtocolHTTP2, "/", http.MethodGet, probe.Options{})

	result := SecurityHeadersResult{Outcome: out}
	if !out.Succeeded() {
		return result
	}

	result.Checks = make([]HeaderCheck, 0, len(securityHeaders))
	for _, name := range securityHeaders {
		value, ok := out.Headers[name]
		result.Checks = append(result.Checks, HeaderCheck{
			Name:    name,
			Present: ok && value != "",
			Value:   value,
		})
	}
	return result
}
