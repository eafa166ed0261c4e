package domain

import "time"

// ConnectorType identifies the backing store behind an adapter
type ConnectorType string

const (
	ConnectorPostgres ConnectorType = "postgres"
	ConnectorMySQL    ConnectorType = "mysql"
	ConnectorMongoDB  ConnectorType = "mongodb"
	ConnectorRedis    ConnectorType = "redis"
)

// ValidConnectors lists every connector type the runtime can open
var ValidConnectors = []ConnectorType{
	ConnectorPostgres,
	ConnectorMySQL,
	ConnectorMongoDB,
	ConnectorRedis,
}

// IsValid reports whether the connector type is supported
func (c ConnectorType) IsValid() bool {
	for _, valid := range ValidConnectors {
		if c == valid {
			return true
		}
	}
	return false
}

func (c ConnectorType) String() string {
	return string(c)
}

// DefaultExecutionTimeout bounds a single engine invocation when the
// configuration does not say otherwise.
const DefaultExecutionTimeout = 60 * time.Second

// Model is the parsed gateway configuration: server settings, the adapters
// that back field resolution, and the GraphQL schema surface.
type Model struct {
	Name     string
	Server   ServerConfig
	Adapters []*Adapter
	Types    []*ObjectType
	Queries  []*Field
}

// ServerConfig holds the server block of the configuration
type ServerConfig struct {
	Port     string
	GRPCPort string
	LogLevel int
	// ExecutionTimeout of zero disables the deadline on engine calls.
	ExecutionTimeout time.Duration
	RateLimit        *RateLimitConfig
}

// RateLimitConfig configures the Redis-backed request limiter
type RateLimitConfig struct {
	RedisURL string
	Requests int
	Window   time.Duration
}

// ObjectType is a GraphQL object type declared in the configuration
type ObjectType struct {
	Name        string
	Description string
	Fields      []*Field
}

// Field is a GraphQL field. Root query fields and object type fields share
// this shape. A field with a statement is resolved against its adapter;
// otherwise its value is read from the parent object.
type Field struct {
	Name        string
	Description string
	Type        string
	Args        []*Argument
	Use         string
	Statement   string
	Column      string
	CacheTTL    time.Duration
}

// Resolved reports whether the field is backed by a statement
func (f *Field) Resolved() bool {
	return f.Statement != ""
}

// SourceKey returns the key used to read the field from a parent row
func (f *Field) SourceKey() string {
	if f.Column != "" {
		return f.Column
	}
	return f.Name
}

// Argument is a field argument
type Argument struct {
	Name        string
	Type        string
	Description string
	Default     any
}

// Adapter returns the adapter with the given name
func (m *Model) Adapter(name string) (*Adapter, bool) {
	for _, a := range m.Adapters {
		if a.Name == name {
			return a, true
		}
	}
	return nil, false
}

// Type returns the object type with the given name
func (m *Model) Type(name string) (*ObjectType, bool) {
	for _, t := range m.Types {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}
