package connectors

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/hyperterse/graphgate/core/domain/interfaces"
	"github.com/hyperterse/graphgate/core/infrastructure/logging"
)

// RedisConnector runs whitespace-separated commands such as "GET movie:42"
type RedisConnector struct {
	client *redis.Client
	log    logging.Logger
}

// NewRedisConnector parses a redis:// URL, applies options and pings the server
func NewRedisConnector(ctx context.Context, connectionString string, opts map[string]string) (interfaces.Connector, error) {
	log := logging.New("connector:redis")
	log.Debugf("Opening Redis connection")

	connectionString, err := withURLOptions(connectionString, opts)
	if err != nil {
		return nil, err
	}
	options, err := redis.ParseURL(connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis connection string: %w", err)
	}

	client := redis.NewClient(options)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	log.Debugf("Redis connection ready (db=%d)", options.DB)
	return &RedisConnector{client: client, log: log}, nil
}

// splitCommand tokenizes statement, honoring single and double quotes so
// values with spaces survive. Inside quotes a backslash takes the next
// character literally.
func splitCommand(statement string) ([]any, error) {
	var (
		args    []any
		current strings.Builder
		quote   rune
		escaped bool
		inToken bool
	)
	for _, r := range statement {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case quote != 0 && r == '\\':
			escaped = true
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			current.WriteRune(r)
		case r == '"' || r == '\'':
			quote = r
			inToken = true
		case r == ' ' || r == '\t' || r == '\r' || r == '\n':
			if inToken {
				args = append(args, current.String())
				current.Reset()
				inToken = false
			}
		default:
			current.WriteRune(r)
			inToken = true
		}
	}
	if quote != 0 || escaped {
		return nil, fmt.Errorf("unterminated quote in redis command")
	}
	if inToken {
		args = append(args, current.String())
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("empty redis command")
	}
	args[0] = strings.ToUpper(args[0].(string))
	return args, nil
}

// Execute runs the command. The reply is shaped as rows: hashes become one
// row of fields, arrays one row per element under "value", scalars a single
// row under "value". A nil reply yields no rows.
func (r *RedisConnector) Execute(ctx context.Context, statement string, _ map[string]any) ([]map[string]any, error) {
	args, err := splitCommand(statement)
	if err != nil {
		return nil, err
	}

	val, err := r.client.Do(ctx, args...).Result()
	if err == redis.Nil {
		return []map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis command failed: %w", err)
	}
	return redisRows(val), nil
}

func redisRows(val any) []map[string]any {
	switch v := val.(type) {
	case map[any]any:
		row := make(map[string]any, len(v))
		for k, item := range v {
			row[fmt.Sprint(k)] = item
		}
		return []map[string]any{row}
	case map[string]string:
		row := make(map[string]any, len(v))
		for k, item := range v {
			row[k] = item
		}
		return []map[string]any{row}
	case []any:
		rows := make([]map[string]any, 0, len(v))
		for _, item := range v {
			rows = append(rows, map[string]any{"value": item})
		}
		return rows
	default:
		return []map[string]any{{"value": v}}
	}
}

// Close closes the client
func (r *RedisConnector) Close() error {
	if r.client == nil {
		return nil
	}
	r.log.Debugf("Closing Redis connection")
	if err := r.client.Close(); err != nil {
		r.log.Errorf("Error closing Redis connection: %v", err)
		return err
	}
	return nil
}
