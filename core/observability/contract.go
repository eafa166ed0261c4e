package observability

import "strings"

const (
	AttrAdapterName   = "adapter.name"
	AttrConnectorType = "connector.type"
	AttrFieldPath     = "graphql.field.path"
	AttrFieldName     = "graphql.field.name"
	AttrHTTPMethod    = "http.request.method"
	AttrCacheHit      = "graphgate.cache.hit"
	AttrRowCount      = "graphgate.rows"
	AttrSuccess       = "success"
)

var secretKeySubstrings = []string{
	"password",
	"passwd",
	"secret",
	"token",
	"api_key",
	"apikey",
	"authorization",
	"cookie",
	"connection_string",
	"dsn",
}

// RedactAttributeValue masks values for known-sensitive keys
func RedactAttributeValue(key string, value string) string {
	lower := strings.ToLower(key)
	for _, needle := range secretKeySubstrings {
		if strings.Contains(lower, needle) {
			return "[REDACTED]"
		}
	}
	return value
}
