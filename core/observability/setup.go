package observability

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"

	"github.com/hyperterse/graphgate/core/logger"
)

// Providers owns the installed trace and meter providers
type Providers struct {
	config        Config
	traceProvider *sdktrace.TracerProvider
	meterProvider *sdkmetric.MeterProvider
}

var (
	providersMu sync.RWMutex
	active      *Providers
)

type otelErrorHandler struct {
	log *logger.Logger
}

func (h otelErrorHandler) Handle(err error) {
	if err != nil {
		h.log.Warnf("OpenTelemetry warning: %v", err)
	}
}

// Setup resolves the config from the environment and installs global
// providers. With export disabled the providers still exist so spans and
// instruments are valid no-ops.
func Setup(ctx context.Context, serviceVersion string) (*Providers, error) {
	cfg, err := ResolveConfig()
	if err != nil {
		return nil, err
	}
	if serviceVersion != "" && cfg.ServiceVersion == "dev" {
		cfg.ServiceVersion = serviceVersion
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
	))
	if err != nil {
		return nil, fmt.Errorf("create otel resource: %w", err)
	}

	traceProvider, err := buildTraceProvider(ctx, cfg, res)
	if err != nil {
		return nil, err
	}
	meterProvider, err := buildMeterProvider(ctx, cfg, res)
	if err != nil {
		_ = traceProvider.Shutdown(ctx)
		return nil, err
	}

	otel.SetTracerProvider(traceProvider)
	otel.SetMeterProvider(meterProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))
	otel.SetErrorHandler(otelErrorHandler{log: logger.New("observability")})

	p := &Providers{
		config:        cfg,
		traceProvider: traceProvider,
		meterProvider: meterProvider,
	}

	providersMu.Lock()
	active = p
	providersMu.Unlock()

	if cfg.Enabled {
		logger.New("observability").Infof("Exporting telemetry to %s", cfg.OTLPEndpoint)
	}
	return p, nil
}

// ActiveConfig returns the config of the installed providers
func ActiveConfig() Config {
	providersMu.RLock()
	defer providersMu.RUnlock()
	if active == nil {
		return Config{}
	}
	return active.config
}

// Shutdown flushes and stops both providers
func (p *Providers) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	var errs []error
	if p.traceProvider != nil {
		errs = append(errs, p.traceProvider.Shutdown(ctx))
	}
	if p.meterProvider != nil {
		errs = append(errs, p.meterProvider.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
