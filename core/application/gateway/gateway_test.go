package gateway

import (
	"context"
	"fmt"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hyperterse/graphgate/core/domain"
)

type mockEngine struct {
	mock.Mock
}

func (m *mockEngine) Execute(ctx context.Context, input domain.ExecutionInput) domain.ExecutionResult {
	return m.Called(ctx, input).Get(0).(domain.ExecutionResult)
}

type staticResult map[string]any

func (r staticResult) ToSpecification() map[string]any { return r }

type recordingLogger struct {
	mu    sync.Mutex
	info  []string
	trace []string
}

func (l *recordingLogger) Infof(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.info = append(l.info, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Tracef(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.trace = append(l.trace, fmt.Sprintf(format, args...))
}

func TestHandle_ForwardsQueryAndRequestOnce(t *testing.T) {
	engine := &mockEngine{}
	log := &recordingLogger{}
	req := httptest.NewRequest("POST", "/graphql", nil)
	envelope := staticResult{"data": map[string]any{"myField": "value"}}

	engine.On("Execute", mock.Anything, domain.ExecutionInput{Query: "{ myField }", Context: req}).
		Return(envelope).Once()

	got := New(engine, log).Handle(context.Background(), map[string]any{"query": "{ myField }"}, "POST", req)

	assert.Equal(t, map[string]any(envelope), got)
	engine.AssertExpectations(t)
	engine.AssertNumberOfCalls(t, "Execute", 1)

	require.Len(t, log.info, 2)
	assert.Equal(t, "GraphQL gateway received POST request", log.info[0])
	assert.Regexp(t, `^Request completed in \d+ms$`, log.info[1])
	assert.Equal(t, []string{"{ myField }"}, log.trace)
}

func TestHandle_PostAndOptionsAreIdentical(t *testing.T) {
	engine := &mockEngine{}
	req := httptest.NewRequest("POST", "/graphql", nil)
	envelope := staticResult{"data": map[string]any{"a": 1}}
	input := domain.ExecutionInput{Query: "{ a }", Context: req}
	engine.On("Execute", mock.Anything, input).Return(envelope).Twice()

	g := New(engine, &recordingLogger{})
	body := map[string]any{"query": "{ a }"}

	post := g.Handle(context.Background(), body, "POST", req)
	options := g.Handle(context.Background(), body, "OPTIONS", req)

	assert.Equal(t, post, options)
	engine.AssertExpectations(t)
}

func TestHandle_QueryPlaceholder(t *testing.T) {
	tests := []struct {
		name     string
		body     map[string]any
		expected string
	}{
		{name: "missing query", body: map[string]any{}, expected: "null"},
		{name: "null query", body: map[string]any{"query": nil}, expected: "null"},
		{name: "nil body", body: nil, expected: "null"},
		{name: "numeric query", body: map[string]any{"query": 42.0}, expected: "42"},
		{name: "variables ignored", body: map[string]any{"query": "{ a }", "variables": map[string]any{"x": 1}, "operationName": "Op"}, expected: "{ a }"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &mockEngine{}
			engine.On("Execute", mock.Anything, domain.ExecutionInput{Query: tt.expected}).
				Return(staticResult{"errors": []any{}}).Once()

			New(engine, &recordingLogger{}).Handle(context.Background(), tt.body, "POST", nil)

			engine.AssertExpectations(t)
		})
	}
}

func TestHandle_ErrorsPassThrough(t *testing.T) {
	engine := &mockEngine{}
	envelope := staticResult{
		"data":   nil,
		"errors": []any{map[string]any{"message": "Syntax Error"}},
	}
	engine.On("Execute", mock.Anything, mock.Anything).Return(envelope)

	got := New(engine, &recordingLogger{}).Handle(context.Background(), map[string]any{"query": "{"}, "POST", nil)

	assert.Equal(t, map[string]any(envelope), got)
}

func TestHandle_AppliesTimeout(t *testing.T) {
	engine := &mockEngine{}
	engine.On("Execute", mock.MatchedBy(func(ctx context.Context) bool {
		deadline, ok := ctx.Deadline()
		return ok && time.Until(deadline) <= 5*time.Second
	}), mock.Anything).Return(staticResult{}).Once()

	New(engine, &recordingLogger{}, WithTimeout(5*time.Second)).
		Handle(context.Background(), map[string]any{"query": "{ a }"}, "POST", nil)

	engine.AssertExpectations(t)
}

func TestHandle_ZeroTimeoutIsUnbounded(t *testing.T) {
	engine := &mockEngine{}
	engine.On("Execute", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return !ok
	}), mock.Anything).Return(staticResult{}).Once()

	New(engine, &recordingLogger{}, WithTimeout(0)).
		Handle(context.Background(), map[string]any{"query": "{ a }"}, "POST", nil)

	engine.AssertExpectations(t)
}

func TestHandle_EnginePanicPropagates(t *testing.T) {
	engine := &mockEngine{}
	engine.On("Execute", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		panic("engine exploded")
	})

	assert.PanicsWithValue(t, "engine exploded", func() {
		New(engine, &recordingLogger{}).Handle(context.Background(), map[string]any{"query": "{ a }"}, "POST", nil)
	})
}

type echoEngine struct{}

func (echoEngine) Execute(_ context.Context, input domain.ExecutionInput) domain.ExecutionResult {
	return staticResult{"data": map[string]any{"query": input.Query, "ctx": input.Context}}
}

func TestHandle_ConcurrentCallsDoNotInterfere(t *testing.T) {
	g := New(echoEngine{}, &recordingLogger{})

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			query := fmt.Sprintf("{ field%d }", i)
			got := g.Handle(context.Background(), map[string]any{"query": query}, "POST", i)
			data := got["data"].(map[string]any)
			assert.Equal(t, query, data["query"])
			assert.Equal(t, i, data["ctx"])
		}()
	}
	wg.Wait()
}
