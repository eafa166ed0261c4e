package parser

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hyperterse/graphgate/core/domain"
	"github.com/hyperterse/graphgate/core/logger"
)

var (
	validate = validator.New(validator.WithRequiredStructEnabled())

	modelNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)
	namePattern      = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)
	graphqlName      = regexp.MustCompile(`^[_a-zA-Z][_a-zA-Z0-9]*$`)
)

// ValidationErrors represents a collection of validation errors
type ValidationErrors struct {
	Errors []string
}

// Error returns a short summary; the individual errors are in Errors
func (ve *ValidationErrors) Error() string {
	if len(ve.Errors) == 0 {
		return ""
	}
	return fmt.Sprintf("validation failed with %d error(s)", len(ve.Errors))
}

// AsValidationErrors extracts the error list from err when it carries one
func AsValidationErrors(err error) ([]string, bool) {
	var ve *ValidationErrors
	if errors.As(err, &ve) {
		return ve.Errors, true
	}
	return nil, false
}

// structErrors runs tag validation and renders failures as "path.field: rule"
func structErrors(path string, v any) []string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{fmt.Sprintf("%s: %v", path, err)}
	}
	out := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, fmt.Sprintf("%s.%s: %s", path, yamlName(fe.StructField()), describeRule(fe)))
	}
	return out
}

func describeRule(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_with":
		return fmt.Sprintf("is required when %s is set", strings.ToLower(fe.Param()))
	case "oneof":
		return fmt.Sprintf("'%v' must be one of: %s", fe.Value(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "numeric":
		return fmt.Sprintf("'%v' must be numeric", fe.Value())
	case "min", "max":
		return fmt.Sprintf("must be %s %s", map[string]string{"min": ">=", "max": "<="}[fe.Tag()], fe.Param())
	default:
		return "failed '" + fe.Tag() + "' check"
	}
}

var yamlNames = map[string]string{
	"ConnectionString": "connection_string",
	"GRPCPort":         "grpc_port",
	"LogLevel":         "log_level",
	"RedisURL":         "redis_url",
	"TTL":              "ttl",
}

func yamlName(structField string) string {
	if n, ok := yamlNames[structField]; ok {
		return n
	}
	return strings.ToLower(structField)
}

// validateModel performs the cross-reference checks tags cannot express
func validateModel(model *domain.Model) []string {
	var errs []string

	if model.Name != "" && !modelNamePattern.MatchString(model.Name) {
		errs = append(errs, fmt.Sprintf("name '%s' is invalid. Must start with a letter and be in lower-snake-case or lower-kebab-case", model.Name))
	}

	adapterNames := make([]string, 0, len(model.Adapters))
	for _, a := range model.Adapters {
		if !namePattern.MatchString(a.Name) {
			errs = append(errs, fmt.Sprintf("Adapter '%s' - name is invalid. Must start with a letter and can contain letters, numbers, hyphens, and underscores", a.Name))
		}
		adapterNames = append(adapterNames, a.Name)
	}

	if len(model.Queries) == 0 {
		errs = append(errs, "queries is required and should have at least one entry")
	}

	for _, t := range model.Types {
		if !graphqlName.MatchString(t.Name) {
			errs = append(errs, fmt.Sprintf("Type '%s' - name is not a valid GraphQL name", t.Name))
		}
		if domain.IsBuiltinScalar(t.Name) || t.Name == "Query" {
			errs = append(errs, fmt.Sprintf("Type '%s' - name is reserved", t.Name))
		}
		if len(t.Fields) == 0 {
			errs = append(errs, fmt.Sprintf("Type '%s' - fields is required and should have at least one entry", t.Name))
		}
		for _, f := range t.Fields {
			errs = append(errs, validateField(model, "Type '"+t.Name+"' field '"+f.Name+"'", f, true, adapterNames)...)
		}
	}

	for _, q := range model.Queries {
		errs = append(errs, validateField(model, "Query '"+q.Name+"'", q, false, adapterNames)...)
	}

	return errs
}

func validateField(model *domain.Model, prefix string, f *domain.Field, hasParent bool, adapterNames []string) []string {
	var errs []string

	if !graphqlName.MatchString(f.Name) {
		errs = append(errs, fmt.Sprintf("%s - name is not a valid GraphQL name", prefix))
	}
	if f.Type != "" {
		errs = append(errs, validateTypeRef(model, prefix+" - type", f.Type)...)
	}

	argNames := make(map[string]bool, len(f.Args))
	for _, arg := range f.Args {
		if !graphqlName.MatchString(arg.Name) {
			errs = append(errs, fmt.Sprintf("%s - argument '%s' is not a valid GraphQL name", prefix, arg.Name))
		}
		argNames[arg.Name] = true
		if arg.Type == "" {
			continue
		}
		ref, err := domain.ParseTypeRef(arg.Type)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s - argument '%s': %v", prefix, arg.Name, err))
			continue
		}
		if !domain.IsBuiltinScalar(ref.NamedType()) {
			errs = append(errs, fmt.Sprintf("%s - argument '%s' type '%s' must be built from: %s", prefix, arg.Name, arg.Type, strings.Join(domain.BuiltinScalars, ", ")))
		}
	}

	if f.Use != "" && !slices.Contains(adapterNames, f.Use) {
		errs = append(errs, fmt.Sprintf("%s - use '%s' is invalid. Must reference one of the defined adapter names: %s", prefix, f.Use, strings.Join(adapterNames, ", ")))
	}

	if !f.Resolved() && !hasParent {
		errs = append(errs, fmt.Sprintf("%s - statement is required for root queries", prefix))
	}
	if f.Column != "" && f.Resolved() {
		errs = append(errs, fmt.Sprintf("%s - column cannot be combined with statement", prefix))
	}
	if f.CacheTTL > 0 && !f.Resolved() {
		errs = append(errs, fmt.Sprintf("%s - cache requires a statement", prefix))
	}

	for _, p := range domain.Placeholders(f.Statement) {
		switch p.Scope {
		case domain.ScopeArgs:
			if !argNames[p.Name] {
				errs = append(errs, fmt.Sprintf("%s - statement references '%s' but args does not contain '%s'", prefix, p.Raw, p.Name))
			}
		case domain.ScopeParent:
			if !hasParent {
				errs = append(errs, fmt.Sprintf("%s - statement references '%s' but root queries have no parent", prefix, p.Raw))
			}
		case domain.ScopeHeaders, domain.ScopeEnv:
		default:
			errs = append(errs, fmt.Sprintf("%s - statement placeholder '%s' has unknown scope '%s'", prefix, p.Raw, p.Scope))
		}
	}
	return errs
}

func validateTypeRef(model *domain.Model, prefix, typ string) []string {
	ref, err := domain.ParseTypeRef(typ)
	if err != nil {
		return []string{fmt.Sprintf("%s: %v", prefix, err)}
	}
	named := ref.NamedType()
	if domain.IsBuiltinScalar(named) {
		return nil
	}
	if _, ok := model.Type(named); !ok {
		return []string{fmt.Sprintf("%s '%s' references undefined type '%s'", prefix, typ, named)}
	}
	return nil
}

// LogValidationErrors prints the numbered error list the way the CLI shows it
func LogValidationErrors(err error) {
	log := logger.New("parser")
	if errs, ok := AsValidationErrors(err); ok {
		log.PrintValidationErrors(errs)
		return
	}
	log.PrintError("Configuration error", err)
}
