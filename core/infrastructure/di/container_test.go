package di

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperterse/graphgate/core/domain"
	"github.com/hyperterse/graphgate/core/domain/interfaces"
)

type stubConnector struct {
	value  string
	mu     sync.Mutex
	closed bool

	// when set, Execute signals entered and waits on proceed
	entered chan struct{}
	proceed chan struct{}
}

func (s *stubConnector) Execute(context.Context, string, map[string]any) ([]map[string]any, error) {
	if s.entered != nil {
		s.entered <- struct{}{}
		<-s.proceed
	}
	if s.isClosed() {
		return nil, errors.New("connector closed")
	}
	return []map[string]any{{"value": s.value}}, nil
}

func (s *stubConnector) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *stubConnector) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type stubFactory struct {
	mu      sync.Mutex
	value   string
	fail    bool
	opened  []*stubConnector
	entered chan struct{}
	proceed chan struct{}
}

func (f *stubFactory) open(context.Context, *domain.Adapter) (interfaces.Connector, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errors.New("connection refused")
	}
	conn := &stubConnector{value: f.value, entered: f.entered, proceed: f.proceed}
	f.opened = append(f.opened, conn)
	return conn, nil
}

func greetingModel(statement string) *domain.Model {
	return &domain.Model{
		Name: "greetings",
		Adapters: []*domain.Adapter{{
			Name:             "kv",
			Connector:        domain.ConnectorRedis,
			ConnectionString: "redis://localhost:6379/0",
		}},
		Queries: []*domain.Field{{
			Name:      "greeting",
			Type:      "String",
			Use:       "kv",
			Statement: statement,
		}},
	}
}

func query(t *testing.T, c *Container) map[string]any {
	t.Helper()
	return c.Gateway.Handle(context.Background(), map[string]any{"query": "{ greeting }"}, "POST", nil)
}

func TestContainer_WiresGateway(t *testing.T) {
	factory := &stubFactory{value: "hello"}
	c, err := NewContainerWithFactory(context.Background(), greetingModel("GET greeting"), factory.open)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	assert.Equal(t, 1, c.ConnectorManager.Count())
	assert.Equal(t, map[string]any{"data": map[string]any{"greeting": "hello"}}, query(t, c))
}

func TestContainer_ReloadSwapsEngineAndClosesOldConnectors(t *testing.T) {
	factory := &stubFactory{value: "hello"}
	c, err := NewContainerWithFactory(context.Background(), greetingModel("GET greeting"), factory.open)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	factory.value = "bonjour"
	require.NoError(t, c.Reload(context.Background(), greetingModel("GET greeting:fr")))

	assert.Equal(t, map[string]any{"data": map[string]any{"greeting": "bonjour"}}, query(t, c))
	require.Len(t, factory.opened, 2)
	assert.True(t, factory.opened[0].isClosed())
	assert.False(t, factory.opened[1].isClosed())
}

func TestContainer_ReloadWaitsForInFlightRequests(t *testing.T) {
	factory := &stubFactory{value: "hello", entered: make(chan struct{}), proceed: make(chan struct{})}
	model := greetingModel("GET greeting")
	model.Queries[0].CacheTTL = time.Minute
	c, err := NewContainerWithFactory(context.Background(), model, factory.open)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	inflight := make(chan map[string]any, 1)
	go func() { inflight <- query(t, c) }()
	<-factory.entered

	factory.mu.Lock()
	factory.value, factory.entered, factory.proceed = "bonjour", nil, nil
	factory.mu.Unlock()
	next := greetingModel("GET greeting:fr")
	next.Queries[0].CacheTTL = time.Minute
	require.NoError(t, c.Reload(context.Background(), next))

	assert.False(t, factory.opened[0].isClosed(), "connector in use must stay open")
	assert.Equal(t, map[string]any{"data": map[string]any{"greeting": "bonjour"}}, query(t, c))

	factory.opened[0].proceed <- struct{}{}
	assert.Equal(t, map[string]any{"data": map[string]any{"greeting": "hello"}}, <-inflight)
	assert.Eventually(t, factory.opened[0].isClosed, time.Second, 10*time.Millisecond)
	assert.False(t, factory.opened[1].isClosed())
}

func TestContainer_ConcurrentQueriesAcrossReloads(t *testing.T) {
	factory := &stubFactory{value: "hello"}
	model := greetingModel("GET greeting")
	model.Queries[0].CacheTTL = time.Minute
	c, err := NewContainerWithFactory(context.Background(), model, factory.open)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					res := query(t, c)
					assert.Nil(t, res["errors"])
				}
			}
		}()
	}
	for range 20 {
		require.NoError(t, c.Reload(context.Background(), model))
	}
	close(stop)
	wg.Wait()

	factory.mu.Lock()
	defer factory.mu.Unlock()
	require.Len(t, factory.opened, 21)
	for _, conn := range factory.opened[:20] {
		assert.True(t, conn.isClosed())
	}
	assert.False(t, factory.opened[20].isClosed())
}

func TestContainer_FailedReloadKeepsRunningEngine(t *testing.T) {
	factory := &stubFactory{value: "hello"}
	c, err := NewContainerWithFactory(context.Background(), greetingModel("GET greeting"), factory.open)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	factory.fail = true
	err = c.Reload(context.Background(), greetingModel("GET greeting:fr"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")

	assert.Equal(t, map[string]any{"data": map[string]any{"greeting": "hello"}}, query(t, c))
	assert.False(t, factory.opened[0].isClosed())
}

func TestContainer_InitFailure(t *testing.T) {
	factory := &stubFactory{fail: true}
	_, err := NewContainerWithFactory(context.Background(), greetingModel("GET greeting"), factory.open)
	require.Error(t, err)
}
