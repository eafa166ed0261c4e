package connectors

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// withURLOptions merges options into the query string of a URL-style
// connection string. Options override keys already present.
func withURLOptions(connectionString string, options map[string]string) (string, error) {
	if len(options) == 0 {
		return connectionString, nil
	}
	parsed, err := url.Parse(connectionString)
	if err != nil {
		return "", fmt.Errorf("failed to parse connection string: %w", err)
	}
	query := parsed.Query()
	for key, value := range options {
		query.Set(key, value)
	}
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

// withKeywordOptions appends options as sorted key=value pairs joined by sep.
// A connection string that already carries pairs gets continuation instead of
// lead as the separator before the first new pair.
func withKeywordOptions(connectionString string, options map[string]string, lead, continuation, sep string) string {
	if len(options) == 0 {
		return connectionString
	}
	keys := make([]string, 0, len(options))
	for key := range options {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+"="+options[key])
	}

	prefix := lead
	if lead != "" && strings.Contains(connectionString, lead) {
		prefix = continuation
	}
	return connectionString + prefix + strings.Join(parts, sep)
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
