package dto

// HealthResponse represents a health check response
type HealthResponse struct {
	Success bool `json:"success"`
}

// ErrorExtensions carries the machine-readable error code
type ErrorExtensions struct {
	Code string `json:"code"`
}

// ErrorDetail is one entry of an error response, shaped like a GraphQL error
type ErrorDetail struct {
	Message    string          `json:"message"`
	Extensions ErrorExtensions `json:"extensions"`
}

// ErrorResponse is returned for requests rejected before reaching the gateway
type ErrorResponse struct {
	Errors []ErrorDetail `json:"errors"`
}
