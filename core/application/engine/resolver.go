package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/graphql-go/graphql"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hyperterse/graphgate/core/domain"
	"github.com/hyperterse/graphgate/core/domain/interfaces"
	"github.com/hyperterse/graphgate/core/infrastructure/logging"
	"github.com/hyperterse/graphgate/core/observability"
	sharedcontext "github.com/hyperterse/graphgate/core/shared/context"
	apperrors "github.com/hyperterse/graphgate/core/shared/errors"
)

// statementResolver resolves a field by running its statement on an adapter
type statementResolver struct {
	path       string
	field      *domain.Field
	ref        *domain.TypeRef
	adapter    *domain.Adapter
	format     valueFormatter
	connectors interfaces.ConnectorManager
	cache      *resultCache
	log        logging.Logger
}

func (r *statementResolver) resolve(p graphql.ResolveParams) (any, error) {
	ctx := p.Context
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := observability.Tracer().Start(ctx, "graphql.resolve "+r.path,
		trace.WithAttributes(
			attribute.String(observability.AttrFieldPath, r.path),
			attribute.String(observability.AttrAdapterName, r.adapter.Name),
			attribute.String(observability.AttrConnectorType, r.adapter.Connector.String()),
		))
	defer span.End()

	log := r.log
	if id := sharedcontext.GetRequestID(ctx); id != "" {
		log = log.WithField("request_id", id)
	}

	start := time.Now()
	rows, cached, err := r.rows(ctx, p)
	durationMS := float64(time.Since(start).Microseconds()) / 1000
	observability.RecordFieldResolution(ctx, r.path, r.adapter.Name, err == nil, durationMS)

	span.SetAttributes(attribute.Bool(observability.AttrCacheHit, cached))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Debugf("%s failed after %.2fms: %v", r.path, durationMS, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int(observability.AttrRowCount, len(rows)))
	log.Debugf("%s resolved %d row(s) in %.2fms (cached=%t)", r.path, len(rows), durationMS, cached)

	return shapeRows(rows, r.ref, r.field.Name), nil
}

func (r *statementResolver) rows(ctx context.Context, p graphql.ResolveParams) ([]map[string]any, bool, error) {
	values := placeholderValues{args: p.Args}
	if parent, ok := p.Source.(map[string]any); ok {
		values.parent = parent
	}
	if req, ok := sharedcontext.GetHTTPRequest(ctx); ok {
		values.headers = req.Header
	}

	statement, err := renderStatement(r.field.Statement, values, r.format)
	if err != nil {
		return nil, false, apperrors.WrapError(apperrors.ErrCodeResolverFailed, fmt.Sprintf("%s: failed to render statement", r.path), err)
	}
	r.log.Tracef("%s statement: %s", r.path, statement)

	var key string
	if r.cache != nil && r.field.CacheTTL > 0 {
		key = cacheKey(r.path, statement)
		if rows, ok := r.cache.Get(key); ok {
			return rows, true, nil
		}
	}

	conn, ok := r.connectors.Get(r.adapter.Name)
	if !ok {
		return nil, false, apperrors.NewAppError(apperrors.ErrCodeAdapterNotFound, fmt.Sprintf("adapter '%s' is not connected", r.adapter.Name), nil)
	}

	rows, err := conn.Execute(ctx, statement, p.Args)
	if err != nil {
		return nil, false, apperrors.WrapError(apperrors.ErrCodeResolverFailed, fmt.Sprintf("%s: statement failed", r.path), err)
	}

	if key != "" {
		r.cache.Set(key, rows, r.field.CacheTTL)
	}
	return rows, false, nil
}
