package domain

import (
	"fmt"
	"strings"
)

// Built-in scalar type names
var BuiltinScalars = []string{"String", "Int", "Float", "Boolean", "ID"}

// TypeRef is a parsed GraphQL type reference such as "[Movie!]!"
type TypeRef struct {
	// Name is set for named types and empty for lists
	Name    string
	Elem    *TypeRef
	NonNull bool
}

// ParseTypeRef parses SDL type notation
func ParseTypeRef(s string) (*TypeRef, error) {
	ref, rest, err := parseTypeRef(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid type '%s': %w", s, err)
	}
	if rest != "" {
		return nil, fmt.Errorf("invalid type '%s': unexpected '%s'", s, rest)
	}
	return ref, nil
}

func parseTypeRef(s string) (*TypeRef, string, error) {
	if s == "" {
		return nil, "", fmt.Errorf("empty type")
	}

	var ref *TypeRef
	if s[0] == '[' {
		elem, rest, err := parseTypeRef(strings.TrimSpace(s[1:]))
		if err != nil {
			return nil, "", err
		}
		rest = strings.TrimSpace(rest)
		if rest == "" || rest[0] != ']' {
			return nil, "", fmt.Errorf("missing ']'")
		}
		ref = &TypeRef{Elem: elem}
		s = strings.TrimSpace(rest[1:])
	} else {
		end := 0
		for end < len(s) && isNameChar(s[end], end == 0) {
			end++
		}
		if end == 0 {
			return nil, "", fmt.Errorf("expected type name at '%s'", s)
		}
		ref = &TypeRef{Name: s[:end]}
		s = strings.TrimSpace(s[end:])
	}

	if strings.HasPrefix(s, "!") {
		ref.NonNull = true
		s = strings.TrimSpace(s[1:])
	}
	return ref, s, nil
}

func isNameChar(c byte, first bool) bool {
	switch {
	case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return !first
	}
	return false
}

// IsList reports whether the reference is a list, ignoring non-null wrapping
func (t *TypeRef) IsList() bool {
	return t.Elem != nil
}

// NamedType returns the innermost named type
func (t *TypeRef) NamedType() string {
	for t.Elem != nil {
		t = t.Elem
	}
	return t.Name
}

func (t *TypeRef) String() string {
	var s string
	if t.Elem != nil {
		s = "[" + t.Elem.String() + "]"
	} else {
		s = t.Name
	}
	if t.NonNull {
		s += "!"
	}
	return s
}

// IsBuiltinScalar reports whether name is one of the built-in scalars
func IsBuiltinScalar(name string) bool {
	for _, s := range BuiltinScalars {
		if s == name {
			return true
		}
	}
	return false
}
