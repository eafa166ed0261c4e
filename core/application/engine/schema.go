package engine

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/hyperterse/graphgate/core/domain"
	"github.com/hyperterse/graphgate/core/domain/interfaces"
	"github.com/hyperterse/graphgate/core/infrastructure/logging"
)

var scalars = map[string]*graphql.Scalar{
	"String":  graphql.String,
	"Int":     graphql.Int,
	"Float":   graphql.Float,
	"Boolean": graphql.Boolean,
	"ID":      graphql.ID,
}

type schemaBuilder struct {
	model      *domain.Model
	connectors interfaces.ConnectorManager
	cache      *resultCache
	log        logging.Logger
	objects    map[string]*graphql.Object
}

func (b *schemaBuilder) build() (graphql.Schema, error) {
	// Objects are declared up front with lazy field thunks so types may
	// reference each other in cycles.
	for _, t := range b.model.Types {
		b.objects[t.Name] = graphql.NewObject(graphql.ObjectConfig{
			Name:        t.Name,
			Description: t.Description,
			Fields:      graphql.FieldsThunk(b.fieldsThunk(t)),
		})
	}

	// Resolve every reference eagerly so errors surface here rather than
	// inside a thunk.
	for _, t := range b.model.Types {
		for _, f := range t.Fields {
			if _, err := b.fieldConfig(t.Name, f); err != nil {
				return graphql.Schema{}, err
			}
		}
	}

	rootFields := graphql.Fields{}
	for _, q := range b.model.Queries {
		cfg, err := b.fieldConfig("Query", q)
		if err != nil {
			return graphql.Schema{}, err
		}
		rootFields[q.Name] = cfg
	}

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{Name: "Query", Fields: rootFields}),
	})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("build schema: %w", err)
	}
	return schema, nil
}

func (b *schemaBuilder) fieldsThunk(t *domain.ObjectType) func() graphql.Fields {
	return func() graphql.Fields {
		fields := graphql.Fields{}
		for _, f := range t.Fields {
			// Errors were ruled out by the eager pass in build.
			cfg, _ := b.fieldConfig(t.Name, f)
			fields[f.Name] = cfg
		}
		return fields
	}
}

func (b *schemaBuilder) fieldConfig(parent string, f *domain.Field) (*graphql.Field, error) {
	path := parent + "." + f.Name

	ref, err := domain.ParseTypeRef(f.Type)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	outType, err := b.outputType(ref)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	args := graphql.FieldConfigArgument{}
	for _, a := range f.Args {
		argRef, err := domain.ParseTypeRef(a.Type)
		if err != nil {
			return nil, fmt.Errorf("%s(%s): %w", path, a.Name, err)
		}
		argType, err := b.inputType(argRef)
		if err != nil {
			return nil, fmt.Errorf("%s(%s): %w", path, a.Name, err)
		}
		args[a.Name] = &graphql.ArgumentConfig{
			Type:         argType,
			DefaultValue: a.Default,
			Description:  a.Description,
		}
	}

	cfg := &graphql.Field{
		Name:        f.Name,
		Type:        outType,
		Args:        args,
		Description: f.Description,
		Resolve:     columnResolver(f.SourceKey()),
	}

	if f.Resolved() {
		adapter, ok := b.model.Adapter(f.Use)
		if !ok {
			return nil, fmt.Errorf("%s: adapter '%s' is not defined", path, f.Use)
		}
		r := &statementResolver{
			path:       path,
			field:      f,
			ref:        ref,
			adapter:    adapter,
			format:     formatterFor(adapter.Connector),
			connectors: b.connectors,
			cache:      b.cache,
			log:        b.log,
		}
		cfg.Resolve = r.resolve
	}
	return cfg, nil
}

func (b *schemaBuilder) outputType(ref *domain.TypeRef) (graphql.Output, error) {
	var t graphql.Output
	if ref.IsList() {
		elem, err := b.outputType(ref.Elem)
		if err != nil {
			return nil, err
		}
		t = graphql.NewList(elem)
	} else if s, ok := scalars[ref.Name]; ok {
		t = s
	} else if o, ok := b.objects[ref.Name]; ok {
		t = o
	} else {
		return nil, fmt.Errorf("unknown type '%s'", ref.Name)
	}
	if ref.NonNull {
		t = graphql.NewNonNull(t)
	}
	return t, nil
}

func (b *schemaBuilder) inputType(ref *domain.TypeRef) (graphql.Input, error) {
	var t graphql.Input
	if ref.IsList() {
		elem, err := b.inputType(ref.Elem)
		if err != nil {
			return nil, err
		}
		t = graphql.NewList(elem)
	} else if s, ok := scalars[ref.Name]; ok {
		t = s
	} else {
		return nil, fmt.Errorf("argument type '%s' must be a scalar", ref.Name)
	}
	if ref.NonNull {
		t = graphql.NewNonNull(t)
	}
	return t, nil
}

// columnResolver reads key from a map parent
func columnResolver(key string) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		if row, ok := p.Source.(map[string]any); ok {
			return normalizeValue(row[key]), nil
		}
		return nil, nil
	}
}
