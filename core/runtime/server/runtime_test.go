package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperterse/graphgate/core/domain"
	"github.com/hyperterse/graphgate/core/domain/interfaces"
)

type valueConnector struct {
	value string
}

func (v valueConnector) Execute(context.Context, string, map[string]any) ([]map[string]any, error) {
	return []map[string]any{{"value": v.value}}, nil
}

func (valueConnector) Close() error { return nil }

func factoryReturning(value string) func(context.Context, *domain.Adapter) (interfaces.Connector, error) {
	return func(context.Context, *domain.Adapter) (interfaces.Connector, error) {
		return valueConnector{value: value}, nil
	}
}

type switchableFactory struct {
	value atomic.Value
}

func (f *switchableFactory) open(context.Context, *domain.Adapter) (interfaces.Connector, error) {
	return valueConnector{value: f.value.Load().(string)}, nil
}

func lifecycleModel(name string) *domain.Model {
	return &domain.Model{
		Name: name,
		Adapters: []*domain.Adapter{{
			Name:             "kv",
			Connector:        domain.ConnectorRedis,
			ConnectionString: "redis://localhost:6379/0",
		}},
		Queries: []*domain.Field{{Name: "greeting", Type: "String", Use: "kv", Statement: "GET greeting"}},
	}
}

func TestRuntimeLifecycle_StartReloadStop(t *testing.T) {
	port := freePort(t)

	factory := &switchableFactory{}
	factory.value.Store("hello")

	rt, err := NewRuntime(context.Background(), lifecycleModel("runtime-lifecycle"),
		WithPort(port), WithConnectorFactory(factory.open))
	require.NoError(t, err)

	require.NoError(t, rt.StartAsync())
	started := true
	defer func() {
		if started {
			_ = rt.Stop()
		}
	}()

	base := fmt.Sprintf("http://127.0.0.1:%s", port)
	require.NoError(t, waitForHTTP200(base+"/heartbeat", 5*time.Second))
	assert.Equal(t, map[string]any{"data": map[string]any{"greeting": "hello"}}, postQuery(t, base))

	// CORS preflight stays active on /graphql.
	req, err := http.NewRequest(http.MethodOptions, base+"/graphql", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	factory.value.Store("bonjour")
	require.NoError(t, rt.ReloadModel(context.Background(), lifecycleModel("runtime-lifecycle-reloaded")))
	require.NoError(t, waitForHTTP200(base+"/heartbeat", 5*time.Second))
	assert.Equal(t, map[string]any{"data": map[string]any{"greeting": "bonjour"}}, postQuery(t, base))

	require.NoError(t, rt.Stop())
	started = false
}

func TestRuntime_InvalidRateLimitURL(t *testing.T) {
	model := lifecycleModel("rate-limited")
	model.Server.RateLimit = &domain.RateLimitConfig{RedisURL: "not-a-url", Requests: 10, Window: time.Minute}

	_, err := NewRuntime(context.Background(), model, WithPort(freePort(t)), WithConnectorFactory(factoryReturning("x")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
}

func TestRuntime_GRPCHealthEnabled(t *testing.T) {
	rt, err := NewRuntime(context.Background(), lifecycleModel("grpc"),
		WithPort(freePort(t)), WithGRPCPort(freePort(t)), WithConnectorFactory(factoryReturning("x")))
	require.NoError(t, err)
	require.NotNil(t, rt.Server().GRPC())

	require.NoError(t, rt.StartAsync())
	assert.NotNil(t, rt.Server().GRPC().Addr())
	require.NoError(t, rt.Stop())
}

func postQuery(t *testing.T, base string) map[string]any {
	t.Helper()
	resp, err := http.Post(base+"/graphql", "application/json", strings.NewReader(`{"query":"{ greeting }"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func freePort(t *testing.T) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	addr, ok := listener.Addr().(*net.TCPAddr)
	require.True(t, ok)
	return fmt.Sprintf("%d", addr.Port)
}

func waitForHTTP200(url string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(50 * time.Millisecond)
	}
	return fmt.Errorf("timed out waiting for %s", url)
}
