package observability

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

const instrumentationName = "github.com/hyperterse/graphgate"

type instruments struct {
	gatewayRequestsTotal    metric.Int64Counter
	gatewayRequestDuration  metric.Float64Histogram
	resolverExecutionsTotal metric.Int64Counter
	resolverDuration        metric.Float64Histogram
}

var (
	instrumentsOnce sync.Once
	inst            instruments
)

func buildMeterProvider(ctx context.Context, cfg Config, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	if !cfg.Enabled || !cfg.MetricsEnabled {
		return sdkmetric.NewMeterProvider(), nil
	}

	exporter, err := otlpmetricgrpc.New(
		ctx,
		otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("create otlp metric exporter: %w", err)
	}

	return sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
	), nil
}

// Instruments are created lazily from the global meter provider, which
// delegates to whatever provider Setup installs later.
func initInstruments() {
	instrumentsOnce.Do(func() {
		meter := otel.Meter(instrumentationName)
		inst.gatewayRequestsTotal, _ = meter.Int64Counter("graphgate.gateway.requests_total",
			metric.WithDescription("GraphQL requests handled by the gateway"))
		inst.gatewayRequestDuration, _ = meter.Float64Histogram("graphgate.gateway.request_duration_ms",
			metric.WithUnit("ms"))
		inst.resolverExecutionsTotal, _ = meter.Int64Counter("graphgate.resolver.executions_total",
			metric.WithDescription("Statement-backed field resolutions"))
		inst.resolverDuration, _ = meter.Float64Histogram("graphgate.resolver.duration_ms",
			metric.WithUnit("ms"))
	})
}

// RecordGatewayRequest records one gateway invocation
func RecordGatewayRequest(ctx context.Context, method string, durationMS float64) {
	initInstruments()
	attrs := metric.WithAttributes(attribute.String(AttrHTTPMethod, method))
	inst.gatewayRequestsTotal.Add(ctx, 1, attrs)
	inst.gatewayRequestDuration.Record(ctx, durationMS, attrs)
}

// RecordFieldResolution records one statement execution for a field
func RecordFieldResolution(ctx context.Context, field, adapter string, success bool, durationMS float64) {
	initInstruments()
	attrs := metric.WithAttributes(
		attribute.String(AttrFieldName, field),
		attribute.String(AttrAdapterName, adapter),
		attribute.Bool(AttrSuccess, success),
	)
	inst.resolverExecutionsTotal.Add(ctx, 1, attrs)
	inst.resolverDuration.Record(ctx, durationMS, attrs)
}
