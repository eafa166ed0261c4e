package domain

import "regexp"

// Placeholder scopes usable inside statements
const (
	ScopeArgs    = "args"
	ScopeParent  = "parent"
	ScopeHeaders = "headers"
	ScopeEnv     = "env"
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z_]+)\.([a-zA-Z_][a-zA-Z0-9_-]*)\s*\}\}`)

// Placeholder is one {{ scope.name }} occurrence in a statement
type Placeholder struct {
	Raw   string
	Scope string
	Name  string
}

// Placeholders returns the distinct placeholders in statement in order of
// first appearance.
func Placeholders(statement string) []Placeholder {
	var out []Placeholder
	seen := make(map[string]bool)
	for _, m := range placeholderPattern.FindAllStringSubmatch(statement, -1) {
		if seen[m[0]] {
			continue
		}
		seen[m[0]] = true
		out = append(out, Placeholder{Raw: m[0], Scope: m[1], Name: m[2]})
	}
	return out
}

// ReplacePlaceholders rewrites every placeholder with the result of fn.
// Returning ok=false leaves the placeholder untouched.
func ReplacePlaceholders(statement string, fn func(Placeholder) (string, bool)) string {
	return placeholderPattern.ReplaceAllStringFunc(statement, func(raw string) string {
		m := placeholderPattern.FindStringSubmatch(raw)
		if s, ok := fn(Placeholder{Raw: raw, Scope: m[1], Name: m[2]}); ok {
			return s
		}
		return raw
	})
}
