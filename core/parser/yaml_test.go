package parser

import (
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperterse/graphgate/core/domain"
)

const filmsConfig = `name: films
server:
  port: "8081"
  log_level: 4
  execution_timeout: 15s
adapters:
  films_db:
    connector: postgres
    connection_string: "postgres://{{ env.DB_USER }}@localhost/films"
    options:
      sslmode: disable
      connect_timeout: 5
types:
  Movie:
    description: A feature film
    fields:
      id:
        type: ID!
      title:
        type: String!
        column: movie_title
      actors:
        type: "[Actor!]!"
        use: films_db
        statement: SELECT * FROM actors WHERE movie_id = {{ parent.id }}
  Actor:
    fields:
      name:
        type: String
      movies:
        type: "[Movie]"
        use: films_db
        statement: SELECT m.* FROM movies m JOIN roles r ON r.movie_id = m.id WHERE r.actor = {{ parent.name }}
queries:
  movie:
    type: Movie
    description: Look up a movie by id
    args:
      id:
        type: ID!
    use: films_db
    statement: SELECT * FROM movies WHERE id = {{ args.id }} AND tenant = {{ headers.X-Tenant }}
    cache:
      ttl: 30s
  movies:
    type: "[Movie!]!"
    args:
      limit:
        type: Int
        default: 10
    use: films_db
    statement: SELECT * FROM movies LIMIT {{ args.limit }}
`

func TestParseYAML(t *testing.T) {
	model, err := ParseYAML([]byte(filmsConfig))
	require.NoError(t, err)

	assert.Equal(t, "films", model.Name)
	assert.Equal(t, "8081", model.Server.Port)
	assert.Equal(t, 4, model.Server.LogLevel)
	assert.Equal(t, 15*time.Second, model.Server.ExecutionTimeout)
	assert.Nil(t, model.Server.RateLimit)

	require.Len(t, model.Adapters, 1)
	adapter := model.Adapters[0]
	assert.Equal(t, "films_db", adapter.Name)
	assert.Equal(t, domain.ConnectorPostgres, adapter.Connector)
	assert.Equal(t, map[string]string{"sslmode": "disable", "connect_timeout": "5"}, adapter.Options)

	require.Len(t, model.Types, 2)
	assert.Equal(t, "Movie", model.Types[0].Name, "declaration order is kept")
	assert.Equal(t, "Actor", model.Types[1].Name)

	movie := model.Types[0]
	require.Len(t, movie.Fields, 3)
	assert.Equal(t, []string{"id", "title", "actors"}, []string{movie.Fields[0].Name, movie.Fields[1].Name, movie.Fields[2].Name})
	assert.Equal(t, "movie_title", movie.Fields[1].SourceKey())
	assert.True(t, movie.Fields[2].Resolved())

	require.Len(t, model.Queries, 2)
	q := model.Queries[0]
	assert.Equal(t, "movie", q.Name)
	assert.Equal(t, 30*time.Second, q.CacheTTL)
	require.Len(t, q.Args, 1)
	assert.Equal(t, "ID!", q.Args[0].Type)
	assert.Equal(t, 10, model.Queries[1].Args[0].Default)
}

func TestParseYAML_ExecutionTimeout(t *testing.T) {
	base := `name: t
adapters:
  db:
    connector: redis
    connection_string: redis://localhost:6379
queries:
  ping:
    type: String
    use: db
    statement: PING
`
	model, err := ParseYAML([]byte(base))
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultExecutionTimeout, model.Server.ExecutionTimeout)

	model, err = ParseYAML([]byte(base + "server:\n  execution_timeout: \"0\"\n"))
	require.NoError(t, err)
	assert.Zero(t, model.Server.ExecutionTimeout)

	_, err = ParseYAML([]byte(base + "server:\n  execution_timeout: soon\n"))
	assert.Error(t, err)
}

func TestParseYAML_RateLimit(t *testing.T) {
	model, err := ParseYAML([]byte(`name: t
server:
  rate_limit:
    redis_url: redis://localhost:6379/1
    requests: 50
    window: 1m
adapters:
  db:
    connector: redis
    connection_string: redis://localhost:6379
queries:
  ping:
    type: String
    use: db
    statement: PING
`))
	require.NoError(t, err)
	require.NotNil(t, model.Server.RateLimit)
	assert.Equal(t, 50, model.Server.RateLimit.Requests)
	assert.Equal(t, time.Minute, model.Server.RateLimit.Window)
}

func TestParseYAML_ValidationErrors(t *testing.T) {
	tests := []struct {
		name     string
		config   string
		contains string
	}{
		{
			name:     "missing name",
			config:   "queries:\n  a:\n    type: String\n    use: db\n    statement: x\n",
			contains: "name is required",
		},
		{
			name:     "unknown connector",
			config:   "name: t\nadapters:\n  db:\n    connector: oracle\n    connection_string: x\nqueries:\n  a:\n    type: String\n    use: db\n    statement: x\n",
			contains: "adapters.db.connector: 'oracle' must be one of: postgres, mysql, mongodb, redis",
		},
		{
			name:     "undefined adapter",
			config:   "name: t\nqueries:\n  a:\n    type: String\n    use: nope\n    statement: x\n",
			contains: "use 'nope' is invalid",
		},
		{
			name:     "undefined type",
			config:   "name: t\nadapters:\n  db:\n    connector: redis\n    connection_string: x\nqueries:\n  a:\n    type: \"[Ghost]\"\n    use: db\n    statement: x\n",
			contains: "references undefined type 'Ghost'",
		},
		{
			name:     "undeclared argument",
			config:   "name: t\nadapters:\n  db:\n    connector: redis\n    connection_string: x\nqueries:\n  a:\n    type: String\n    use: db\n    statement: GET {{ args.key }}\n",
			contains: "args does not contain 'key'",
		},
		{
			name:     "parent in root query",
			config:   "name: t\nadapters:\n  db:\n    connector: redis\n    connection_string: x\nqueries:\n  a:\n    type: String\n    use: db\n    statement: GET {{ parent.id }}\n",
			contains: "root queries have no parent",
		},
		{
			name:     "statement without use",
			config:   "name: t\nqueries:\n  a:\n    type: String\n    statement: GET x\n",
			contains: "queries.a.use: is required when statement is set",
		},
		{
			name:     "root query without statement",
			config:   "name: t\nqueries:\n  a:\n    type: String\n",
			contains: "statement is required for root queries",
		},
		{
			name:     "no queries",
			config:   "name: t\n",
			contains: "queries is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseYAML([]byte(tt.config))
			require.Error(t, err)
			errs, ok := AsValidationErrors(err)
			require.True(t, ok, "expected validation errors, got %v", err)
			assert.True(t, slices.ContainsFunc(errs, func(e string) bool {
				return strings.Contains(e, tt.contains)
			}), "no error containing %q in %v", tt.contains, errs)
		})
	}
}

func TestParseYAML_DuplicateKeys(t *testing.T) {
	_, err := ParseYAML([]byte("name: t\nqueries:\n  a:\n    type: String\n  a:\n    type: Int\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate key 'a'")
}

func TestParseYAML_Malformed(t *testing.T) {
	_, err := ParseYAML([]byte("name: [unclosed"))
	require.Error(t, err)
	_, ok := AsValidationErrors(err)
	assert.False(t, ok)
}
