package parser

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hyperterse/graphgate/core/domain"
)

// ordered decodes a YAML mapping while keeping declaration order, so the
// generated schema lists types and fields the way the file does.
type ordered[T any] struct {
	keys   []string
	values map[string]T
}

func (o *ordered[T]) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", node.Line)
	}
	o.values = make(map[string]T, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		if _, dup := o.values[key]; dup {
			return fmt.Errorf("line %d: duplicate key '%s'", node.Content[i].Line, key)
		}
		var v T
		if err := node.Content[i+1].Decode(&v); err != nil {
			return fmt.Errorf("'%s': %w", key, err)
		}
		o.keys = append(o.keys, key)
		o.values[key] = v
	}
	return nil
}

func (o *ordered[T]) each(fn func(key string, v T)) {
	for _, k := range o.keys {
		fn(k, o.values[k])
	}
}

type rawModel struct {
	Name     string               `yaml:"name"`
	Server   rawServer            `yaml:"server"`
	Adapters ordered[*rawAdapter] `yaml:"adapters"`
	Types    ordered[*rawType]    `yaml:"types"`
	Queries  ordered[*rawField]   `yaml:"queries"`
}

type rawServer struct {
	Port             string        `yaml:"port" validate:"omitempty,numeric"`
	GRPCPort         string        `yaml:"grpc_port" validate:"omitempty,numeric"`
	LogLevel         int           `yaml:"log_level" validate:"omitempty,min=1,max=5"`
	ExecutionTimeout string        `yaml:"execution_timeout"`
	RateLimit        *rawRateLimit `yaml:"rate_limit"`
}

type rawRateLimit struct {
	RedisURL string `yaml:"redis_url" validate:"required"`
	Requests int    `yaml:"requests" validate:"required,min=1"`
	Window   string `yaml:"window" validate:"required"`
}

type rawAdapter struct {
	Connector        string         `yaml:"connector" validate:"required,oneof=postgres mysql mongodb redis"`
	ConnectionString string         `yaml:"connection_string" validate:"required"`
	Options          map[string]any `yaml:"options"`
}

type rawType struct {
	Description string             `yaml:"description"`
	Fields      ordered[*rawField] `yaml:"fields"`
}

type rawField struct {
	Type        string           `yaml:"type" validate:"required"`
	Description string           `yaml:"description"`
	Args        ordered[*rawArg] `yaml:"args"`
	Use         string           `yaml:"use" validate:"required_with=Statement"`
	Statement   string           `yaml:"statement" validate:"required_with=Use"`
	Column      string           `yaml:"column"`
	Cache       *rawCache        `yaml:"cache"`
}

type rawArg struct {
	Type        string `yaml:"type" validate:"required"`
	Description string `yaml:"description"`
	Default     any    `yaml:"default"`
}

type rawCache struct {
	TTL string `yaml:"ttl" validate:"required"`
}

// ParseYAML decodes a configuration document and validates it
func ParseYAML(data []byte) (*domain.Model, error) {
	var raw rawModel
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	model, errs := buildModel(&raw)
	errs = append(errs, validateModel(model)...)
	if len(errs) > 0 {
		return nil, &ValidationErrors{Errors: errs}
	}
	return model, nil
}

func buildModel(raw *rawModel) (*domain.Model, []string) {
	var errs []string
	errs = append(errs, structErrors("server", &raw.Server)...)

	model := &domain.Model{
		Name: raw.Name,
		Server: domain.ServerConfig{
			Port:             raw.Server.Port,
			GRPCPort:         raw.Server.GRPCPort,
			LogLevel:         raw.Server.LogLevel,
			ExecutionTimeout: domain.DefaultExecutionTimeout,
		},
	}
	if raw.Name == "" {
		errs = append(errs, "name is required")
	}

	if raw.Server.ExecutionTimeout != "" {
		d, err := parseDuration(raw.Server.ExecutionTimeout)
		if err != nil {
			errs = append(errs, fmt.Sprintf("server.execution_timeout: %v", err))
		}
		model.Server.ExecutionTimeout = d
	}

	if rl := raw.Server.RateLimit; rl != nil {
		errs = append(errs, structErrors("server.rate_limit", rl)...)
		window, err := parseDuration(rl.Window)
		if err != nil && rl.Window != "" {
			errs = append(errs, fmt.Sprintf("server.rate_limit.window: %v", err))
		}
		model.Server.RateLimit = &domain.RateLimitConfig{
			RedisURL: rl.RedisURL,
			Requests: rl.Requests,
			Window:   window,
		}
	}

	raw.Adapters.each(func(name string, a *rawAdapter) {
		if a == nil {
			errs = append(errs, fmt.Sprintf("adapters.%s: definition is empty", name))
			return
		}
		errs = append(errs, structErrors("adapters."+name, a)...)
		adapter := &domain.Adapter{
			Name:             name,
			Connector:        domain.ConnectorType(a.Connector),
			ConnectionString: a.ConnectionString,
		}
		if len(a.Options) > 0 {
			adapter.Options = make(map[string]string, len(a.Options))
			for k, v := range a.Options {
				adapter.Options[k] = fmt.Sprint(v)
			}
		}
		model.Adapters = append(model.Adapters, adapter)
	})

	raw.Types.each(func(name string, t *rawType) {
		if t == nil {
			errs = append(errs, fmt.Sprintf("types.%s: definition is empty", name))
			return
		}
		objectType := &domain.ObjectType{Name: name, Description: t.Description}
		t.Fields.each(func(fieldName string, f *rawField) {
			field, fieldErrs := buildField("types."+name+".fields."+fieldName, fieldName, f)
			errs = append(errs, fieldErrs...)
			if field != nil {
				objectType.Fields = append(objectType.Fields, field)
			}
		})
		model.Types = append(model.Types, objectType)
	})

	raw.Queries.each(func(name string, f *rawField) {
		field, fieldErrs := buildField("queries."+name, name, f)
		errs = append(errs, fieldErrs...)
		if field != nil {
			model.Queries = append(model.Queries, field)
		}
	})

	return model, errs
}

func buildField(path, name string, f *rawField) (*domain.Field, []string) {
	if f == nil {
		return nil, []string{path + ": definition is empty"}
	}
	errs := structErrors(path, f)

	field := &domain.Field{
		Name:        name,
		Description: f.Description,
		Type:        f.Type,
		Use:         f.Use,
		Statement:   f.Statement,
		Column:      f.Column,
	}
	f.Args.each(func(argName string, a *rawArg) {
		if a == nil {
			errs = append(errs, fmt.Sprintf("%s.args.%s: definition is empty", path, argName))
			return
		}
		errs = append(errs, structErrors(path+".args."+argName, a)...)
		field.Args = append(field.Args, &domain.Argument{
			Name:        argName,
			Type:        a.Type,
			Description: a.Description,
			Default:     a.Default,
		})
	})

	if f.Cache != nil {
		errs = append(errs, structErrors(path+".cache", f.Cache)...)
		if f.Cache.TTL != "" {
			ttl, err := parseDuration(f.Cache.TTL)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s.cache.ttl: %v", path, err))
			}
			field.CacheTTL = ttl
		}
	}
	return field, errs
}

// parseDuration accepts Go duration strings; a bare "0" means disabled.
func parseDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration '%s' must not be negative", s)
	}
	return d, nil
}
