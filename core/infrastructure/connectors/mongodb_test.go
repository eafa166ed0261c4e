package connectors

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestParseCommand(t *testing.T) {
	db, cmd, err := parseCommand(`{"database":"films","find":"movies","filter":{"year":1999},"limit":2}`, "")
	require.NoError(t, err)
	assert.Equal(t, "films", db)
	require.Len(t, cmd, 3)
	assert.Equal(t, "find", cmd[0].Key, "command name must stay first")
	assert.Equal(t, "movies", cmd[0].Value)
	assert.True(t, returnsCursor(cmd))
}

func TestParseCommand_DefaultDatabase(t *testing.T) {
	db, cmd, err := parseCommand(`{"count":"movies"}`, "films")
	require.NoError(t, err)
	assert.Equal(t, "films", db)
	assert.False(t, returnsCursor(cmd))
}

func TestParseCommand_Errors(t *testing.T) {
	tests := []struct {
		name      string
		statement string
		errSubstr string
	}{
		{name: "not json", statement: "db.movies.find()", errSubstr: "must be a JSON object"},
		{name: "no database", statement: `{"find":"movies"}`, errSubstr: "'database'"},
		{name: "database not string", statement: `{"database":1,"find":"movies"}`, errSubstr: "must be a string"},
		{name: "only database", statement: `{"database":"films"}`, errSubstr: "empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := parseCommand(tt.statement, "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestBSONToNative(t *testing.T) {
	oid := bson.NewObjectID()
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	got := documentToMap(bson.D{
		{Key: "_id", Value: oid},
		{Key: "released", Value: bson.NewDateTimeFromTime(at)},
		{Key: "cast", Value: bson.A{bson.D{{Key: "name", Value: "Keanu"}}}},
		{Key: "meta", Value: bson.M{"rating": 8.7}},
	})

	assert.Equal(t, oid.Hex(), got["_id"])
	assert.Equal(t, at, got["released"])
	assert.Equal(t, []any{map[string]any{"name": "Keanu"}}, got["cast"])
	assert.Equal(t, map[string]any{"rating": 8.7}, got["meta"])
	assert.Nil(t, documentToMap(nil))
}

func TestDatabaseFromURI(t *testing.T) {
	assert.Equal(t, "films", databaseFromURI("mongodb://localhost:27017/films?retryWrites=true"))
	assert.Equal(t, "", databaseFromURI("mongodb://localhost:27017"))
}

func TestMongoDBConnector_Integration(t *testing.T) {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set, skipping MongoDB connector integration test")
	}

	ctx := context.Background()
	conn, err := NewMongoDBConnector(ctx, uri, nil)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Execute(ctx, `{"database":"test","find":"_graphgate_ping","filter":{},"limit":1}`, nil)
	require.NoError(t, err)

	_, err = conn.Execute(ctx, "not json", nil)
	assert.Error(t, err)
}
