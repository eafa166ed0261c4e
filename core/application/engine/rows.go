package engine

import (
	"encoding/hex"
	"time"

	"github.com/hyperterse/graphgate/core/domain"
)

// shapeRows fits connector rows to the field's declared type. Lists take
// every row, objects take the first row, and scalars read a single column
// from the first row.
func shapeRows(rows []map[string]any, ref *domain.TypeRef, fieldName string) any {
	named := ref.NamedType()
	_, scalar := scalars[named]

	if ref.IsList() {
		out := make([]any, 0, len(rows))
		for _, row := range rows {
			if scalar {
				out = append(out, scalarFromRow(row, fieldName))
			} else {
				out = append(out, row)
			}
		}
		return out
	}

	if len(rows) == 0 {
		return nil
	}
	if scalar {
		return scalarFromRow(rows[0], fieldName)
	}
	return rows[0]
}

// scalarFromRow picks the "value" column, then a column named after the
// field, then the only column when there is exactly one.
func scalarFromRow(row map[string]any, fieldName string) any {
	if v, ok := row["value"]; ok {
		return normalizeValue(v)
	}
	if v, ok := row[fieldName]; ok {
		return normalizeValue(v)
	}
	if len(row) == 1 {
		for _, v := range row {
			return normalizeValue(v)
		}
	}
	return nil
}

// normalizeValue converts driver values that graphql-go would otherwise
// render with %v into their conventional text forms.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case []byte:
		return string(val)
	case [16]byte:
		return formatUUID(val)
	default:
		return v
	}
}

func formatUUID(b [16]byte) string {
	var buf [36]byte
	hex.Encode(buf[0:8], b[0:4])
	buf[8] = '-'
	hex.Encode(buf[9:13], b[4:6])
	buf[13] = '-'
	hex.Encode(buf[14:18], b[6:8])
	buf[18] = '-'
	hex.Encode(buf[19:23], b[8:10])
	buf[23] = '-'
	hex.Encode(buf[24:], b[10:])
	return string(buf[:])
}
