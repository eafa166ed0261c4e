package connectors

import (
	"context"
	"fmt"

	"github.com/hyperterse/graphgate/core/domain"
	"github.com/hyperterse/graphgate/core/domain/interfaces"
	apperrors "github.com/hyperterse/graphgate/core/shared/errors"
	"github.com/hyperterse/graphgate/core/shared/envsubst"
)

// NewConnector opens the connector matching the adapter's connector type.
// {{ env.NAME }} placeholders in the connection string are resolved here so
// secrets never live in the parsed model.
func NewConnector(ctx context.Context, adapter *domain.Adapter) (interfaces.Connector, error) {
	if err := adapter.Validate(); err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrCodeInvalidSchema, err.Error(), nil)
	}

	connectionString, err := envsubst.Substitute(adapter.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("connection string: %w", err)
	}

	var conn interfaces.Connector
	switch adapter.Connector {
	case domain.ConnectorPostgres:
		conn, err = NewPostgresConnector(ctx, connectionString, adapter.Options)
	case domain.ConnectorMySQL:
		conn, err = NewMySQLConnector(ctx, connectionString, adapter.Options)
	case domain.ConnectorMongoDB:
		conn, err = NewMongoDBConnector(ctx, connectionString, adapter.Options)
	case domain.ConnectorRedis:
		conn, err = NewRedisConnector(ctx, connectionString, adapter.Options)
	default:
		return nil, fmt.Errorf("unsupported connector type '%s'", adapter.Connector)
	}
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrCodeConnectionFailed, "failed to open "+adapter.Connector.String()+" connector", err)
	}
	return conn, nil
}
