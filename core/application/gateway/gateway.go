// Package gateway adapts an inbound GraphQL payload onto an Engine and hands
// the engine's response envelope back to the transport unchanged.
package gateway

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hyperterse/graphgate/core/domain"
	"github.com/hyperterse/graphgate/core/domain/interfaces"
	"github.com/hyperterse/graphgate/core/observability"
)

// Logger is the subset of the tagged logger the gateway writes to
type Logger interface {
	Infof(format string, args ...any)
	Tracef(format string, args ...any)
}

// Gateway forwards each request to the engine exactly once
type Gateway struct {
	engine  interfaces.Engine
	log     Logger
	timeout time.Duration
}

// Option configures a Gateway
type Option func(*Gateway)

// WithTimeout bounds every engine call. Zero removes the bound.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		g.timeout = d
	}
}

// New creates a gateway with the default execution timeout
func New(engine interfaces.Engine, log Logger, opts ...Option) *Gateway {
	g := &Gateway{
		engine:  engine,
		log:     log,
		timeout: domain.DefaultExecutionTimeout,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Handle executes the query in body. request is passed through to the engine
// as the execution context; method is only logged.
func (g *Gateway) Handle(ctx context.Context, body map[string]any, method string, request any) map[string]any {
	g.log.Infof("GraphQL gateway received %s request", method)
	query := extractQuery(body)
	g.log.Tracef("%s", query)

	start := time.Now()

	ctx, span := observability.Tracer().Start(ctx, "graphql.gateway",
		trace.WithAttributes(attribute.String(observability.AttrHTTPMethod, method)))
	defer span.End()

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	result := g.engine.Execute(ctx, domain.ExecutionInput{
		Query:   query,
		Context: request,
	})
	envelope := result.ToSpecification()

	elapsed := time.Since(start)
	g.log.Infof("Request completed in %dms", elapsed.Milliseconds())
	observability.RecordGatewayRequest(ctx, method, float64(elapsed.Microseconds())/1000)

	return envelope
}

// extractQuery renders body["query"] as text. An absent or null query
// becomes "null" and the engine reports the resulting syntax error.
func extractQuery(body map[string]any) string {
	q, ok := body["query"]
	if !ok || q == nil {
		return "null"
	}
	if s, ok := q.(string); ok {
		return s
	}
	return fmt.Sprint(q)
}
