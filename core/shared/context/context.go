package context

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"net/http"
)

type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
	// ExecutionContextKey is the context key for the opaque execution context
	ExecutionContextKey contextKey = "execution_context"
)

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// WithExecutionContext attaches the request-scoped execution context that
// field resolvers may consult.
func WithExecutionContext(ctx context.Context, value any) context.Context {
	if value == nil {
		return ctx
	}
	return context.WithValue(ctx, ExecutionContextKey, value)
}

// GetExecutionContext retrieves the execution context, or nil
func GetExecutionContext(ctx context.Context) any {
	return ctx.Value(ExecutionContextKey)
}

// GetHTTPRequest returns the execution context when it is an HTTP request
func GetHTTPRequest(ctx context.Context) (*http.Request, bool) {
	req, ok := GetExecutionContext(ctx).(*http.Request)
	return req, ok && req != nil
}

// GenerateRequestID generates a unique request ID
func GenerateRequestID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
