package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

// Config captures the harness driver surface: the two base endpoints, what
// to probe, and which optional stages (benchmark, security checks, export)
// to run.
type Config struct {
	BaseURL  string `mapstructure:"base_url"`  // plaintext HTTP/1.1 endpoint
	HTTPSURL string `mapstructure:"https_url"` // TLS endpoint with ALPN

	Path    string            `mapstructure:"path"`
	Method  string            `mapstructure:"method"`
	Headers map[string]string `mapstructure:"headers"`
	Timeout time.Duration     `mapstructure:"timeout"`

	Benchmark   bool `mapstructure:"benchmark"`
	Requests    int  `mapstructure:"requests"`
	Concurrency int  `mapstructure:"concurrency"`

	Security          bool          `mapstructure:"security"`
	RateLimitAttempts int           `mapstructure:"rate_limit_attempts"`
	RateLimitDelay    time.Duration `mapstructure:"rate_limit_delay"`

	JSONOutput bool     `mapstructure:"json_output"`
	ExportPath string   `mapstructure:"export"`
	Thresholds []string `mapstructure:"thresholds"`

	Tracing TracingConfig `mapstructure:"tracing"`

	ConfigFile string `mapstructure:"-"`
}

// TracingConfig controls the OTel provider.
type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"` // "grpc" or "http"
	ServiceName string  `mapstructure:"service_name"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	Insecure    bool    `mapstructure:"insecure"`
	Propagate   *bool   `mapstructure:"propagate"`
}

// Enabled reports whether an OTLP endpoint is configured, directly or via
// the standard environment variable.
func (t TracingConfig) Enabled() bool {
	return strings.TrimSpace(t.Endpoint) != "" || os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != ""
}

// ShouldPropagate reports whether W3C trace headers should be injected into
// probe requests. Defaults to following Enabled unless overridden.
func (t TracingConfig) ShouldPropagate() bool {
	if t.Propagate != nil {
		return *t.Propagate
	}
	return t.Enabled()
}

// ValidationError aggregates every issue found so the user sees them all at
// once.
type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

var knownMethods = map[string]struct{}{
	"GET": {}, "POST": {}, "PUT": {}, "DELETE": {}, "PATCH": {}, "HEAD": {}, "OPTIONS": {},
}

func (c Config) Validate() error {
	var issues []string

	if issue := validateEndpoint(c.BaseURL, "base_url", "http"); issue != "" {
		issues = append(issues, issue)
	}
	if issue := validateEndpoint(c.HTTPSURL, "https_url", "https"); issue != "" {
		issues = append(issues, issue)
	}

	if !strings.HasPrefix(c.Path, "/") {
		issues = append(issues, "path must start with '/'")
	}
	if _, ok := knownMethods[strings.ToUpper(strings.TrimSpace(c.Method))]; !ok {
		issues = append(issues, fmt.Sprintf("method %q is not a standard HTTP method", c.Method))
	}

	if c.Requests < 1 {
		issues = append(issues, "requests must be >= 1")
	}
	if c.Concurrency < 1 {
		issues = append(issues, "concurrency must be >= 1")
	}
	if c.Timeout < 0 {
		issues = append(issues, "timeout must be >= 0")
	}
	if c.RateLimitAttempts < 1 {
		issues = append(issues, "rate-limit-attempts must be >= 1")
	}
	if c.RateLimitDelay < 0 {
		issues = append(issues, "rate-limit-delay must be >= 0")
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		issues = append(issues, "tracing sample_rate must be between 0.0 and 1.0")
	}

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}

func validateEndpoint(raw, name, wantScheme string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return name + " is required"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Sprintf("%s is not a valid URL: %v", name, err)
	}
	if u.Scheme != wantScheme {
		return fmt.Sprintf("%s must use %s scheme, got %q", name, wantScheme, u.Scheme)
	}
	if u.Host == "" {
		return name + " must include a host"
	}
	return ""
}
