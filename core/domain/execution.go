package domain

// ExecutionInput is what the gateway hands to the engine for one request.
// Context is opaque request-scoped data, normally the transport request, made
// available to field resolvers.
type ExecutionInput struct {
	Query   string
	Context any
}

// ExecutionResult is the engine's answer to one ExecutionInput
type ExecutionResult interface {
	// ToSpecification converts the result into the standard GraphQL response
	// envelope with "data" and, when present, "errors" and "extensions".
	ToSpecification() map[string]any
}
