package engine

import "github.com/graphql-go/graphql/gqlerrors"

// Result is the outcome of one execution
type Result struct {
	Data       any
	Errors     []gqlerrors.FormattedError
	Extensions map[string]any
}

// ToSpecification renders the GraphQL response envelope. "errors" appears
// only when non-empty, and "data" is omitted only when it is nil and errors
// were raised before execution began.
func (r *Result) ToSpecification() map[string]any {
	out := make(map[string]any, 3)
	if len(r.Errors) > 0 {
		errs := make([]any, 0, len(r.Errors))
		for _, e := range r.Errors {
			errs = append(errs, formatError(e))
		}
		out["errors"] = errs
	}
	if r.Data != nil || len(r.Errors) == 0 {
		out["data"] = r.Data
	}
	if r.Extensions != nil {
		out["extensions"] = r.Extensions
	}
	return out
}

func formatError(e gqlerrors.FormattedError) map[string]any {
	m := map[string]any{"message": e.Message}
	if len(e.Locations) > 0 {
		locs := make([]any, 0, len(e.Locations))
		for _, l := range e.Locations {
			locs = append(locs, map[string]any{"line": l.Line, "column": l.Column})
		}
		m["locations"] = locs
	}
	if len(e.Path) > 0 {
		m["path"] = e.Path
	}
	if len(e.Extensions) > 0 {
		m["extensions"] = e.Extensions
	}
	return m
}
