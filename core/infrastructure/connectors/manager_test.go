package connectors

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperterse/graphgate/core/domain"
	"github.com/hyperterse/graphgate/core/domain/interfaces"
)

type fakeConnector struct {
	name     string
	closed   atomic.Bool
	closeErr error
}

func (f *fakeConnector) Execute(context.Context, string, map[string]any) ([]map[string]any, error) {
	return []map[string]any{{"adapter": f.name}}, nil
}

func (f *fakeConnector) Close() error {
	f.closed.Store(true)
	return f.closeErr
}

type fakeFactory struct {
	mu      sync.Mutex
	opened  map[string]*fakeConnector
	failFor string
}

func (f *fakeFactory) open(_ context.Context, adapter *domain.Adapter) (interfaces.Connector, error) {
	if adapter.Name == f.failFor {
		return nil, errors.New("connection refused")
	}
	conn := &fakeConnector{name: adapter.Name}
	f.mu.Lock()
	f.opened[adapter.Name] = conn
	f.mu.Unlock()
	return conn, nil
}

func adapters(names ...string) []*domain.Adapter {
	out := make([]*domain.Adapter, 0, len(names))
	for _, name := range names {
		out = append(out, &domain.Adapter{
			Name:             name,
			Connector:        domain.ConnectorPostgres,
			ConnectionString: "postgres://localhost/" + name,
		})
	}
	return out
}

func TestConnectorManager_InitializeAll(t *testing.T) {
	factory := &fakeFactory{opened: map[string]*fakeConnector{}}
	m := NewConnectorManagerWithFactory(factory.open)

	require.NoError(t, m.InitializeAll(context.Background(), adapters("films", "people", "cache")))
	assert.Equal(t, 3, m.Count())

	conn, ok := m.Get("people")
	require.True(t, ok)
	rows, err := conn.Execute(context.Background(), "SELECT 1", nil)
	require.NoError(t, err)
	assert.Equal(t, "people", rows[0]["adapter"])

	_, ok = m.Get("missing")
	assert.False(t, ok)

	all := m.GetAll()
	delete(all, "films")
	assert.Equal(t, 3, m.Count(), "GetAll must return a copy")
}

func TestConnectorManager_InitializeAll_Empty(t *testing.T) {
	m := NewConnectorManagerWithFactory(func(context.Context, *domain.Adapter) (interfaces.Connector, error) {
		t.Fatal("factory must not be called")
		return nil, nil
	})
	require.NoError(t, m.InitializeAll(context.Background(), nil))
	assert.Zero(t, m.Count())
}

func TestConnectorManager_InitializeAll_FailureClosesOpened(t *testing.T) {
	factory := &fakeFactory{opened: map[string]*fakeConnector{}, failFor: "broken"}
	m := NewConnectorManagerWithFactory(factory.open)

	err := m.InitializeAll(context.Background(), adapters("films", "broken", "people"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "adapter 'broken'")
	assert.Zero(t, m.Count())

	factory.mu.Lock()
	defer factory.mu.Unlock()
	for name, conn := range factory.opened {
		assert.True(t, conn.closed.Load(), "connector %s should be closed", name)
	}
}

func TestConnectorManager_CloseAll(t *testing.T) {
	factory := &fakeFactory{opened: map[string]*fakeConnector{}}
	m := NewConnectorManagerWithFactory(factory.open)
	require.NoError(t, m.InitializeAll(context.Background(), adapters("films", "people")))

	factory.opened["people"].closeErr = errors.New("already closed")

	err := m.CloseAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connector 'people'")
	assert.True(t, factory.opened["films"].closed.Load())
	assert.Zero(t, m.Count())

	assert.NoError(t, m.CloseAll())
}

func TestNewConnector_RejectsInvalidAdapter(t *testing.T) {
	tests := []struct {
		name    string
		adapter *domain.Adapter
	}{
		{name: "nil adapter", adapter: nil},
		{name: "missing name", adapter: &domain.Adapter{Connector: domain.ConnectorRedis, ConnectionString: "redis://localhost"}},
		{name: "unknown connector", adapter: &domain.Adapter{Name: "x", Connector: "oracle", ConnectionString: "oracle://"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, err := NewConnector(context.Background(), tt.adapter)
			assert.Nil(t, conn)
			assert.Error(t, err)
		})
	}
}

func TestNewConnector_MissingEnvironmentVariable(t *testing.T) {
	_, err := NewConnector(context.Background(), &domain.Adapter{
		Name:             "films",
		Connector:        domain.ConnectorPostgres,
		ConnectionString: "postgres://{{ env.GRAPHGATE_UNSET_FOR_TEST }}/films",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GRAPHGATE_UNSET_FOR_TEST")
}
