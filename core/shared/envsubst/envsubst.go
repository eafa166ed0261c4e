// Package envsubst resolves {{ env.NAME }} placeholders at runtime so that
// connection strings and statements in the configuration can reference
// secrets without embedding them.
package envsubst

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

var envVarPattern = regexp.MustCompile(`\{\{\s*env\.(\w+)\s*\}\}`)

// Substitute replaces every {{ env.NAME }} placeholder with the value of the
// environment variable NAME. A referenced variable that is unset is an error.
func Substitute(value string) (string, error) {
	return substitute(value, os.LookupEnv)
}

func substitute(value string, lookup func(string) (string, bool)) (string, error) {
	result := value
	seen := make(map[string]bool)

	for _, match := range envVarPattern.FindAllStringSubmatch(value, -1) {
		placeholder, name := match[0], match[1]
		if seen[placeholder] {
			continue
		}
		seen[placeholder] = true

		envValue, exists := lookup(name)
		if !exists {
			return "", fmt.Errorf("environment variable '%s' not found", name)
		}
		result = strings.ReplaceAll(result, placeholder, envValue)
	}

	return result, nil
}

// References returns the distinct variable names referenced by value
func References(value string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, match := range envVarPattern.FindAllStringSubmatch(value, -1) {
		if !seen[match[1]] {
			seen[match[1]] = true
			names = append(names, match[1])
		}
	}
	return names
}
