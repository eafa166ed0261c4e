package connectors

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hyperterse/graphgate/core/domain/interfaces"
	"github.com/hyperterse/graphgate/core/infrastructure/logging"
)

// PostgresConnector runs statements against a pgx connection pool
type PostgresConnector struct {
	pool *pgxpool.Pool
	log  logging.Logger
}

// NewPostgresConnector opens a pool and pings it before returning
func NewPostgresConnector(ctx context.Context, connectionString string, options map[string]string) (interfaces.Connector, error) {
	dsn, err := postgresDSN(connectionString, options)
	if err != nil {
		return nil, err
	}

	log := logging.New("connector:postgres")
	log.Debugf("Opening PostgreSQL connection pool")

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres connection string: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres database: %w", err)
	}

	log.Debugf("PostgreSQL connection pool ready (max %d conns)", config.MaxConns)
	return &PostgresConnector{pool: pool, log: log}, nil
}

func postgresDSN(connectionString string, options map[string]string) (string, error) {
	if hasAnyPrefix(connectionString, "postgres://", "postgresql://") {
		return withURLOptions(connectionString, options)
	}
	dsn := strings.TrimRight(connectionString, " ")
	if len(options) > 0 && dsn != "" {
		dsn += " "
	}
	return withKeywordOptions(dsn, options, "", "", " "), nil
}

// Execute runs statement and returns one map per row keyed by column name
func (p *PostgresConnector) Execute(ctx context.Context, statement string, _ map[string]any) ([]map[string]any, error) {
	rows, err := p.pool.Query(ctx, statement)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, fd := range fields {
		columns[i] = fd.Name
	}

	results := make([]map[string]any, 0)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to read row values: %w", err)
		}
		row := make(map[string]any, len(columns))
		for i, col := range columns {
			if i < len(values) {
				row[col] = values[i]
			}
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return results, nil
}

// Close releases the pool
func (p *PostgresConnector) Close() error {
	if p.pool == nil {
		return nil
	}
	p.log.Debugf("Closing PostgreSQL connection pool")
	p.pool.Close()
	return nil
}
