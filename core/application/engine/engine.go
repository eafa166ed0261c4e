// Package engine executes GraphQL requests against a schema generated from
// the configuration model. Fields backed by a statement are resolved through
// the adapter's connector; all other fields read from their parent row.
package engine

import (
	"context"
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/hyperterse/graphgate/core/domain"
	"github.com/hyperterse/graphgate/core/domain/interfaces"
	"github.com/hyperterse/graphgate/core/infrastructure/logging"
	sharedcontext "github.com/hyperterse/graphgate/core/shared/context"
)

// Engine implements interfaces.Engine on top of graphql-go
type Engine struct {
	schema graphql.Schema
	cache  *resultCache
	log    logging.Logger
}

// New builds the schema for model. Resolvers look connectors up in
// connectors at execution time, so the manager may be populated later.
func New(model *domain.Model, connectors interfaces.ConnectorManager) (*Engine, error) {
	if model == nil {
		return nil, fmt.Errorf("engine: model is nil")
	}

	e := &Engine{log: logging.New("engine")}
	if usesCache(model) {
		cache, err := newResultCache()
		if err != nil {
			return nil, fmt.Errorf("engine: %w", err)
		}
		e.cache = cache
	}

	b := &schemaBuilder{
		model:      model,
		connectors: connectors,
		cache:      e.cache,
		log:        e.log,
		objects:    make(map[string]*graphql.Object, len(model.Types)),
	}
	schema, err := b.build()
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("engine: %w", err)
	}
	e.schema = schema

	e.log.Debugf("Schema built: %d type(s), %d root field(s)", len(model.Types), len(model.Queries))
	return e, nil
}

func usesCache(model *domain.Model) bool {
	for _, q := range model.Queries {
		if q.CacheTTL > 0 {
			return true
		}
	}
	for _, t := range model.Types {
		for _, f := range t.Fields {
			if f.CacheTTL > 0 {
				return true
			}
		}
	}
	return false
}

// Execute parses, validates and executes input.Query. Every failure is
// reported in the result's errors.
func (e *Engine) Execute(ctx context.Context, input domain.ExecutionInput) domain.ExecutionResult {
	ctx = sharedcontext.WithExecutionContext(ctx, input.Context)
	res := graphql.Do(graphql.Params{
		Schema:        e.schema,
		RequestString: input.Query,
		Context:       ctx,
	})
	return &Result{
		Data:       res.Data,
		Errors:     res.Errors,
		Extensions: res.Extensions,
	}
}

// Schema returns the generated schema
func (e *Engine) Schema() graphql.Schema {
	return e.schema
}

// Close releases the result cache
func (e *Engine) Close() {
	if e.cache != nil {
		e.cache.Close()
	}
}
