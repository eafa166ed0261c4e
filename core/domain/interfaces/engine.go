package interfaces

import (
	"context"

	"github.com/hyperterse/graphgate/core/domain"
)

// Engine executes GraphQL requests. Implementations must be safe for
// concurrent use. Failures are reported inside the result, not returned.
type Engine interface {
	// Execute runs a single request synchronously
	Execute(ctx context.Context, input domain.ExecutionInput) domain.ExecutionResult
}

// Gateway adapts transport requests onto an Engine
type Gateway interface {
	// Handle executes the query found in body and returns the response envelope
	Handle(ctx context.Context, body map[string]any, method string, request any) map[string]any
}
