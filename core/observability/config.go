package observability

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hyperterse/graphgate/core/shared/envsubst"
)

// Config selects which OpenTelemetry signals are exported and where
type Config struct {
	Enabled           bool
	TracesEnabled     bool
	MetricsEnabled    bool
	ServiceName       string
	ServiceVersion    string
	Environment       string
	OTLPEndpoint      string
	TraceSamplingRate float64
}

// DefaultConfig has export disabled and an OTLP collector on localhost
func DefaultConfig() Config {
	return Config{
		Enabled:           false,
		TracesEnabled:     true,
		MetricsEnabled:    true,
		ServiceName:       "graphgate",
		ServiceVersion:    "dev",
		Environment:       "development",
		OTLPEndpoint:      "localhost:4317",
		TraceSamplingRate: 1.0,
	}
}

// ResolveConfig applies GRAPHGATE_OTEL_* overrides to the defaults.
// String values may reference {{ env.NAME }}.
func ResolveConfig() (Config, error) {
	cfg := DefaultConfig()

	overrideBool("GRAPHGATE_OTEL_ENABLED", &cfg.Enabled)
	overrideBool("GRAPHGATE_OTEL_TRACES_ENABLED", &cfg.TracesEnabled)
	overrideBool("GRAPHGATE_OTEL_METRICS_ENABLED", &cfg.MetricsEnabled)
	overrideString("GRAPHGATE_OTEL_SERVICE_NAME", &cfg.ServiceName)
	overrideString("GRAPHGATE_OTEL_SERVICE_VERSION", &cfg.ServiceVersion)
	overrideString("GRAPHGATE_OTEL_ENVIRONMENT", &cfg.Environment)
	overrideString("GRAPHGATE_OTEL_ENDPOINT", &cfg.OTLPEndpoint)
	overrideFloat("GRAPHGATE_OTEL_TRACE_SAMPLING_RATIO", &cfg.TraceSamplingRate)

	cfg.TraceSamplingRate = min(max(cfg.TraceSamplingRate, 0), 1)

	for name, target := range map[string]*string{
		"service name":    &cfg.ServiceName,
		"service version": &cfg.ServiceVersion,
		"environment":     &cfg.Environment,
		"otlp endpoint":   &cfg.OTLPEndpoint,
	} {
		resolved, err := envsubst.Substitute(strings.TrimSpace(*target))
		if err != nil {
			return Config{}, fmt.Errorf("resolve observability %s: %w", name, err)
		}
		*target = resolved
	}

	return cfg, nil
}

func overrideString(name string, target *string) {
	if value := os.Getenv(name); value != "" {
		*target = value
	}
}

func overrideBool(name string, target *bool) {
	value := os.Getenv(name)
	if value == "" {
		return
	}
	if parsed, err := strconv.ParseBool(value); err == nil {
		*target = parsed
	}
}

func overrideFloat(name string, target *float64) {
	value := os.Getenv(name)
	if value == "" {
		return
	}
	if parsed, err := strconv.ParseFloat(value, 64); err == nil {
		*target = parsed
	}
}
