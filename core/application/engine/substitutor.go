package engine

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/hyperterse/graphgate/core/domain"
)

// valueFormatter renders a placeholder value as a literal in a connector's
// statement language.
type valueFormatter func(any) string

func formatterFor(c domain.ConnectorType) valueFormatter {
	switch c {
	case domain.ConnectorPostgres:
		return formatPostgres
	case domain.ConnectorMySQL:
		return formatMySQL
	case domain.ConnectorMongoDB:
		return formatJSON
	default:
		return formatRaw
	}
}

// placeholderValues supplies the values a statement may reference
type placeholderValues struct {
	args    map[string]any
	parent  map[string]any
	headers http.Header
	lookup  func(string) (string, bool)
}

// renderStatement substitutes every placeholder. Environment values are
// inserted verbatim; everything else goes through format. An unset
// environment variable is an error, any other missing value renders as null.
func renderStatement(statement string, values placeholderValues, format valueFormatter) (string, error) {
	lookup := values.lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}

	var missing []string
	rendered := domain.ReplacePlaceholders(statement, func(p domain.Placeholder) (string, bool) {
		switch p.Scope {
		case domain.ScopeArgs:
			return format(values.args[p.Name]), true
		case domain.ScopeParent:
			return format(normalizeValue(values.parent[p.Name])), true
		case domain.ScopeHeaders:
			if values.headers == nil || len(values.headers.Values(p.Name)) == 0 {
				return format(nil), true
			}
			return format(values.headers.Get(p.Name)), true
		case domain.ScopeEnv:
			v, ok := lookup(p.Name)
			if !ok {
				missing = append(missing, p.Name)
				return "", false
			}
			return v, true
		}
		return "", false
	})

	if len(missing) > 0 {
		return "", fmt.Errorf("environment variable '%s' not found", missing[0])
	}
	return rendered, nil
}

func formatPostgres(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return pq.QuoteLiteral(val)
	case bool:
		return strings.ToUpper(strconv.FormatBool(val))
	case []any:
		return joinFormatted(val, formatPostgres)
	default:
		if s, ok := formatNumber(val); ok {
			return s
		}
		return pq.QuoteLiteral(fmt.Sprint(val))
	}
}

func formatMySQL(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return quoteMySQL(val)
	case bool:
		return strings.ToUpper(strconv.FormatBool(val))
	case []any:
		return joinFormatted(val, formatMySQL)
	default:
		if s, ok := formatNumber(val); ok {
			return s
		}
		return quoteMySQL(fmt.Sprint(val))
	}
}

var mysqlEscaper = strings.NewReplacer(`\`, `\\`, `'`, `''`, "\x00", `\0`)

func quoteMySQL(s string) string {
	return "'" + mysqlEscaper.Replace(s) + "'"
}

func formatJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		b, _ = json.Marshal(fmt.Sprint(v))
	}
	return string(b)
}

// formatRaw is used for redis, whose commands are whitespace-tokenized.
// Anything that could split or open a quote is double-quoted with
// backslash escapes, so a value always stays exactly one argument.
func formatRaw(v any) string {
	if v == nil {
		return `""`
	}
	s := fmt.Sprint(v)
	if s != "" && !strings.ContainsAny(s, " \t\r\n\"'\\") {
		return s
	}
	return `"` + redisEscaper.Replace(s) + `"`
}

var redisEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func formatNumber(v any) (string, bool) {
	switch n := v.(type) {
	case int:
		return strconv.Itoa(n), true
	case int32:
		return strconv.FormatInt(int64(n), 10), true
	case int64:
		return strconv.FormatInt(n, 10), true
	case uint64:
		return strconv.FormatUint(n, 10), true
	case float32:
		return strconv.FormatFloat(float64(n), 'g', -1, 32), true
	case float64:
		return strconv.FormatFloat(n, 'g', -1, 64), true
	}
	return "", false
}

func joinFormatted(items []any, format valueFormatter) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = format(item)
	}
	return strings.Join(parts, ", ")
}
