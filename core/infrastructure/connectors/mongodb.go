package connectors

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/hyperterse/graphgate/core/domain/interfaces"
	"github.com/hyperterse/graphgate/core/infrastructure/logging"
)

const mongoCloseTimeout = 5 * time.Second

// commandMetadata are reply fields that carry no result data
var commandMetadata = map[string]bool{
	"ok":            true,
	"operationTime": true,
	"$clusterTime":  true,
	"$db":           true,
}

// MongoDBConnector runs database commands written as extended JSON, e.g.
// {"database": "films", "find": "movies", "filter": {"year": 1999}}.
// The "database" key may be omitted when the connection string names one.
type MongoDBConnector struct {
	client    *mongo.Client
	defaultDB string
	log       logging.Logger
}

// NewMongoDBConnector connects and pings the primary before returning
func NewMongoDBConnector(ctx context.Context, connectionString string, opts map[string]string) (interfaces.Connector, error) {
	if hasAnyPrefix(connectionString, "mongodb://", "mongodb+srv://") {
		var err error
		if connectionString, err = withURLOptions(connectionString, opts); err != nil {
			return nil, err
		}
	}

	log := logging.New("connector:mongodb")
	log.Debugf("Opening MongoDB connection")

	client, err := mongo.Connect(options.Client().ApplyURI(connectionString))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	log.Debugf("MongoDB connection ready")
	return &MongoDBConnector{
		client:    client,
		defaultDB: databaseFromURI(connectionString),
		log:       log,
	}, nil
}

func databaseFromURI(uri string) string {
	parsed, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(parsed.Path, "/")
}

// parseCommand decodes an extended JSON statement into an ordered command
// document, splitting out the target database.
func parseCommand(statement, defaultDB string) (string, bson.D, error) {
	var doc bson.D
	if err := bson.UnmarshalExtJSON([]byte(statement), false, &doc); err != nil {
		return "", nil, fmt.Errorf("mongodb statement must be a JSON object: %w", err)
	}

	dbName := defaultDB
	command := make(bson.D, 0, len(doc))
	for _, elem := range doc {
		if elem.Key == "database" {
			name, ok := elem.Value.(string)
			if !ok {
				return "", nil, fmt.Errorf("mongodb 'database' must be a string")
			}
			dbName = name
			continue
		}
		command = append(command, elem)
	}

	if dbName == "" {
		return "", nil, fmt.Errorf("mongodb command must include 'database' field")
	}
	if len(command) == 0 {
		return "", nil, fmt.Errorf("mongodb command is empty")
	}
	return dbName, command, nil
}

func returnsCursor(command bson.D) bool {
	switch command[0].Key {
	case "find", "aggregate", "listCollections", "listIndexes":
		return true
	}
	return false
}

// Execute runs the command. Cursor commands return one map per document,
// other commands return their reply with metadata fields removed.
func (m *MongoDBConnector) Execute(ctx context.Context, statement string, _ map[string]any) ([]map[string]any, error) {
	dbName, command, err := parseCommand(statement, m.defaultDB)
	if err != nil {
		return nil, err
	}
	db := m.client.Database(dbName)

	if returnsCursor(command) {
		cursor, err := db.RunCommandCursor(ctx, command)
		if err != nil {
			return nil, fmt.Errorf("mongodb command failed: %w", err)
		}
		defer cursor.Close(ctx)

		results := make([]map[string]any, 0)
		for cursor.Next(ctx) {
			var doc bson.D
			if err := cursor.Decode(&doc); err != nil {
				return nil, fmt.Errorf("mongodb decode failed: %w", err)
			}
			results = append(results, documentToMap(doc))
		}
		if err := cursor.Err(); err != nil {
			return nil, fmt.Errorf("mongodb cursor error: %w", err)
		}
		return results, nil
	}

	var reply bson.D
	if err := db.RunCommand(ctx, command).Decode(&reply); err != nil {
		return nil, fmt.Errorf("mongodb command failed: %w", err)
	}

	result := make(map[string]any, len(reply))
	for _, elem := range reply {
		if !commandMetadata[elem.Key] {
			result[elem.Key] = bsonToNative(elem.Value)
		}
	}
	return []map[string]any{result}, nil
}

func documentToMap(doc bson.D) map[string]any {
	if doc == nil {
		return nil
	}
	out := make(map[string]any, len(doc))
	for _, elem := range doc {
		out[elem.Key] = bsonToNative(elem.Value)
	}
	return out
}

// bsonToNative converts driver types into values that serialize cleanly as
// GraphQL scalars and JSON.
func bsonToNative(v any) any {
	switch val := v.(type) {
	case bson.D:
		return documentToMap(val)
	case bson.M:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = bsonToNative(item)
		}
		return out
	case bson.A:
		arr := make([]any, len(val))
		for i, item := range val {
			arr[i] = bsonToNative(item)
		}
		return arr
	case bson.ObjectID:
		return val.Hex()
	case bson.DateTime:
		return val.Time().UTC()
	case bson.Decimal128:
		return val.String()
	default:
		return v
	}
}

// Close disconnects the client
func (m *MongoDBConnector) Close() error {
	if m.client == nil {
		return nil
	}
	m.log.Debugf("Closing MongoDB connection")
	ctx, cancel := context.WithTimeout(context.Background(), mongoCloseTimeout)
	defer cancel()
	if err := m.client.Disconnect(ctx); err != nil {
		m.log.Errorf("Error closing MongoDB connection: %v", err)
		return err
	}
	return nil
}
