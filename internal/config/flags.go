package config

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "protoprobe",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	// Target endpoints
	flags.String("http-url", "http://localhost:8080", "Base plaintext HTTP endpoint")
	flags.String("https-url", "https://localhost:8443", "Base TLS endpoint with protocol negotiation")

	// Request shape
	flags.String("path", "/", "Request path for probes and benchmarks")
	flags.StringP("method", "m", "GET", "HTTP method to use for probes")
	flags.StringSlice("header", nil, "Additional request header in key=value form")
	flags.Duration("timeout", 30*time.Second, "Per-request timeout")

	// Benchmark stage
	flags.BoolP("benchmark", "b", false, "Run performance benchmarks")
	flags.IntP("requests", "n", 100, "Number of requests per benchmark")
	flags.IntP("concurrency", "c", 10, "Number of concurrent request slots")

	// Security stage
	flags.Bool("security", false, "Run security and rate-limit checks")
	flags.Int("rate-limit-attempts", 10, "Max attempts when probing for rate limiting")
	flags.Duration("rate-limit-delay", 100*time.Millisecond, "Delay between rate-limit probe attempts")

	// Output
	flags.Bool("json-output", false, "Emit JSON formatted output")
	flags.String("export", "", "Write the full result log as JSON to this file")
	flags.StringSlice("threshold", nil, "Benchmark thresholds (repeatable, e.g. 'latency:p95 < 500')")
	flags.String("config", "", "Path to configuration file (JSON or YAML)")

	// Tracing
	flags.String("otlp-endpoint", "", "OTLP endpoint for trace export (empty disables tracing)")
	flags.String("otlp-protocol", "grpc", "OTLP transport: 'grpc' or 'http'")
	flags.Bool("otlp-insecure", false, "Skip TLS for the OTLP exporter")
	flags.Float64("trace-sample-rate", 1.0, "Trace sampling rate between 0.0 and 1.0")
	flags.String("service-name", "", "Service name reported on trace spans")
}

// displayHelp prints the help message for a command.
func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage: %s\n\nFlags:\n", cmd.UseLine())
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// applyFlagOverrides applies command-line flag values to the config,
// overriding values from the config file.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	if fs.Changed("http-url") {
		val, err := fs.GetString("http-url")
		if err != nil {
			return err
		}
		cfg.BaseURL = strings.TrimSpace(val)
	}
	if fs.Changed("https-url") {
		val, err := fs.GetString("https-url")
		if err != nil {
			return err
		}
		cfg.HTTPSURL = strings.TrimSpace(val)
	}
	if fs.Changed("path") {
		val, err := fs.GetString("path")
		if err != nil {
			return err
		}
		cfg.Path = strings.TrimSpace(val)
	}
	if fs.Changed("method") {
		val, err := fs.GetString("method")
		if err != nil {
			return err
		}
		cfg.Method = val
	}
	if fs.Changed("timeout") {
		val, err := fs.GetDuration("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = val
	}
	if fs.Changed("benchmark") {
		val, err := fs.GetBool("benchmark")
		if err != nil {
			return err
		}
		cfg.Benchmark = val
	}
	if fs.Changed("requests") {
		val, err := fs.GetInt("requests")
		if err != nil {
			return err
		}
		cfg.Requests = val
	}
	if fs.Changed("concurrency") {
		val, err := fs.GetInt("concurrency")
		if err != nil {
			return err
		}
		cfg.Concurrency = val
	}
	if fs.Changed("security") {
		val, err := fs.GetBool("security")
		if err != nil {
			return err
		}
		cfg.Security = val
	}
	if fs.Changed("rate-limit-attempts") {
		val, err := fs.GetInt("rate-limit-attempts")
		if err != nil {
			return err
		}
		cfg.RateLimitAttempts = val
	}
	if fs.Changed("rate-limit-delay") {
		val, err := fs.GetDuration("rate-limit-delay")
		if err != nil {
			return err
		}
		cfg.RateLimitDelay = val
	}
	if fs.Changed("json-output") {
		val, err := fs.GetBool("json-output")
		if err != nil {
			return err
		}
		cfg.JSONOutput = val
	}
	if fs.Changed("export") {
		val, err := fs.GetString("export")
		if err != nil {
			return err
		}
		cfg.ExportPath = strings.TrimSpace(val)
	}
	if fs.Changed("threshold") {
		val, err := fs.GetStringSlice("threshold")
		if err != nil {
			return err
		}
		cfg.Thresholds = val
	}

	vals, err := fs.GetStringSlice("header")
	if err != nil {
		return err
	}
	if len(vals) > 0 {
		if cfg.Headers == nil {
			cfg.Headers = map[string]string{}
		}
		for _, entry := range vals {
			parts := strings.SplitN(entry, "=", 2)
			if len(parts) != 2 {
				return fmt.Errorf("header must be in key=value format: %s", entry)
			}
			key := http.CanonicalHeaderKey(strings.TrimSpace(parts[0]))
			if key == "" {
				return fmt.Errorf("header key cannot be empty")
			}
			cfg.Headers[key] = strings.TrimSpace(parts[1])
		}
	}

	if fs.Changed("otlp-endpoint") {
		val, err := fs.GetString("otlp-endpoint")
		if err != nil {
			return err
		}
		cfg.Tracing.Endpoint = strings.TrimSpace(val)
	}
	if fs.Changed("otlp-protocol") {
		val, err := fs.GetString("otlp-protocol")
		if err != nil {
			return err
		}
		cfg.Tracing.Protocol = strings.ToLower(strings.TrimSpace(val))
	}
	if fs.Changed("otlp-insecure") {
		val, err := fs.GetBool("otlp-insecure")
		if err != nil {
			return err
		}
		cfg.Tracing.Insecure = val
	}
	if fs.Changed("trace-sample-rate") {
		val, err := fs.GetFloat64("trace-sample-rate")
		if err != nil {
			return err
		}
		cfg.Tracing.SampleRate = val
	}
	if fs.Changed("service-name") {
		val, err := fs.GetString("service-name")
		if err != nil {
			return err
		}
		cfg.Tracing.ServiceName = strings.TrimSpace(val)
	}

	return nil
}
