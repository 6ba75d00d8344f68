package schema

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Rule is one validation rule in the engine's fixed, ordered set.
type Rule interface {
	// ID is the stable rule identifier used in rules_applied and in
	// constraints_checked entries.
	ID() string
	// AppliesTo reports whether the rule has anything to say about the
	// schema. Inapplicable rules are skipped and not counted as applied.
	AppliesTo(s *SchemaDefinition) bool
	// Evaluate returns the rule's findings. Parent may be nil.
	Evaluate(s, parent *SchemaDefinition) []Violation
}

// DefaultRules returns the rule set in canonical evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		structureRule{},
		fieldTypeRule{},
		constraintRule{},
		requiredFieldRule{},
		deprecationRule{},
		namingConventionRule{},
		versionRule{},
	}
}

var (
	snakeCaseRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
	semverRe    = regexp.MustCompile(`^\d+\.\d+\.\d+(-[a-zA-Z0-9.]+)?(\+[a-zA-Z0-9.]+)?$`)
)

// sortedFieldNames fixes the iteration order so findings are deterministic
// across runs regardless of map layout.
func sortedFieldNames(fields map[string]FieldDefinition) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// structureRule checks the skeleton: identity fields present, at least one
// field defined.
type structureRule struct{}

func (structureRule) ID() string                       { return "structure" }
func (structureRule) AppliesTo(*SchemaDefinition) bool { return true }

func (r structureRule) Evaluate(s, _ *SchemaDefinition) []Violation {
	var out []Violation
	if s.ID == "" {
		out = append(out, NewError("SCHEMA_ID_REQUIRED", "schema id must not be empty").withRule(r.ID()))
	}
	if s.Name == "" {
		out = append(out, NewError("SCHEMA_NAME_REQUIRED", "schema name must not be empty").withRule(r.ID()))
	}
	if len(s.Fields) == 0 {
		out = append(out, NewWarning("SCHEMA_NO_FIELDS", "schema defines no fields").withRule(r.ID()))
	}
	return out
}

// fieldTypeRule checks type-tag legality, secret marking, object nesting and
// array constraints. Nested schemas are checked recursively with the path
// prefixed.
type fieldTypeRule struct{}

func (fieldTypeRule) ID() string { return "field_type" }

func (fieldTypeRule) AppliesTo(s *SchemaDefinition) bool {
	return len(s.Fields) > 0
}

func (r fieldTypeRule) Evaluate(s, _ *SchemaDefinition) []Violation {
	return r.checkFields("", s.Fields)
}

func (r fieldTypeRule) checkFields(prefix string, fields map[string]FieldDefinition) []Violation {
	var out []Violation
	for _, name := range sortedFieldNames(fields) {
		field := fields[name]
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}
		if !field.Type.Known() {
			out = append(out, NewError("UNKNOWN_FIELD_TYPE",
				fmt.Sprintf("field %q has unknown type %q", path, field.Type)).
				WithPath(path).withRule(r.ID()))
			continue
		}
		switch field.Type {
		case TypeSecret:
			if !field.Secret {
				out = append(out, NewError("SECRET_NOT_MARKED",
					fmt.Sprintf("field %q has secret type but is not marked secret", path)).
					WithPath(path).
					WithSuggestion("set secret: true on the field").
					withRule(r.ID()))
			}
		case TypeObject:
			if field.NestedSchema == nil {
				out = append(out, NewWarning("OBJECT_NO_SCHEMA",
					fmt.Sprintf("object field %q has no nested schema", path)).
					WithPath(path).withRule(r.ID()))
			} else {
				out = append(out, r.checkFields(path, field.NestedSchema.Fields)...)
			}
		case TypeArray:
			if len(field.Constraints) == 0 {
				out = append(out, NewWarning("ARRAY_NO_CONSTRAINTS",
					fmt.Sprintf("array field %q has no constraints", path)).
					WithPath(path).
					WithSuggestion("bound the array with min_length or max_length").
					withRule(r.ID()))
			}
		}
	}
	return out
}

// constraintRule checks that every declared constraint is internally
// consistent and legal for the field's type.
type constraintRule struct{}

func (constraintRule) ID() string { return "constraint" }

func (constraintRule) AppliesTo(s *SchemaDefinition) bool {
	for _, field := range s.Fields {
		if len(field.Constraints) > 0 {
			return true
		}
	}
	return false
}

func (r constraintRule) Evaluate(s, _ *SchemaDefinition) []Violation {
	var out []Violation
	for _, name := range sortedFieldNames(s.Fields) {
		field := s.Fields[name]
		for _, c := range field.Constraints {
			out = append(out, r.checkConstraint(name, field, c)...)
		}
	}
	return out
}

func (r constraintRule) checkConstraint(path string, field FieldDefinition, c Constraint) []Violation {
	var out []Violation
	switch c.Type {
	case ConstraintPattern:
		if _, err := regexp.Compile(c.Pattern); err != nil {
			out = append(out, NewError("INVALID_REGEX",
				fmt.Sprintf("field %q has an invalid pattern: %v", path, err)).
				WithPath(path).withRule(r.ID()))
		}
	case ConstraintRange:
		if c.Min != nil && c.Max != nil && *c.Min > *c.Max {
			out = append(out, NewError("INVALID_RANGE",
				fmt.Sprintf("field %q has range with min greater than max", path)).
				WithPath(path).
				WithExpectedActual("min <= max",
					fmt.Sprintf("min=%v max=%v", *c.Min, *c.Max)).
				withRule(r.ID()))
		}
	case ConstraintMinLength, ConstraintMaxLength, ConstraintLength:
		if field.Type != TypeString && field.Type != TypeArray {
			out = append(out, NewError("INVALID_CONSTRAINT_TYPE",
				fmt.Sprintf("field %q has a length constraint but type %q has no length", path, field.Type)).
				WithPath(path).withRule(r.ID()))
		}
	case ConstraintEnum:
		if len(c.Values) == 0 {
			out = append(out, NewError("EMPTY_ENUM",
				fmt.Sprintf("field %q has an enum constraint with no values", path)).
				WithPath(path).withRule(r.ID()))
		}
	}
	return out
}

// requiredFieldRule checks required/default interplay and that environment
// rules reference fields that exist.
type requiredFieldRule struct{}

func (requiredFieldRule) ID() string { return "required_field" }

func (requiredFieldRule) AppliesTo(s *SchemaDefinition) bool {
	if len(s.EnvironmentRules) > 0 {
		return true
	}
	for _, field := range s.Fields {
		if field.Required {
			return true
		}
	}
	return false
}

func (r requiredFieldRule) Evaluate(s, _ *SchemaDefinition) []Violation {
	var out []Violation
	for _, name := range sortedFieldNames(s.Fields) {
		field := s.Fields[name]
		if field.Required && field.Default != nil {
			out = append(out, NewWarning("REQUIRED_WITH_DEFAULT",
				fmt.Sprintf("field %q is required but also has a default value", name)).
				WithPath(name).
				WithSuggestion("drop the default or make the field optional").
				withRule(r.ID()))
		}
	}
	for _, rule := range s.EnvironmentRules {
		if _, ok := s.Fields[rule.Field]; !ok {
			out = append(out, NewError("REQUIRED_FIELD_MISSING",
				fmt.Sprintf("environment rule %q references undefined field %q", rule.Type, rule.Field)).
				WithPath(rule.Field).withRule(r.ID()))
		}
	}
	return out
}

// deprecationRule checks that deprecated fields carry a reason and a
// migration path, are not still required, and are not past removal.
type deprecationRule struct{}

func (deprecationRule) ID() string { return "deprecation" }

func (deprecationRule) AppliesTo(s *SchemaDefinition) bool {
	for _, field := range s.Fields {
		if field.Deprecated != nil {
			return true
		}
	}
	return false
}

func (r deprecationRule) Evaluate(s, _ *SchemaDefinition) []Violation {
	var out []Violation
	for _, name := range sortedFieldNames(s.Fields) {
		field := s.Fields[name]
		dep := field.Deprecated
		if dep == nil {
			continue
		}
		if dep.Reason == "" {
			out = append(out, NewWarning("DEPRECATION_NO_REASON",
				fmt.Sprintf("deprecated field %q has no reason", name)).
				WithPath(name).withRule(r.ID()))
		}
		if dep.Replacement == "" && dep.MigrationGuide == "" {
			out = append(out, NewWarning("DEPRECATION_NO_MIGRATION",
				fmt.Sprintf("deprecated field %q has no replacement or migration guide", name)).
				WithPath(name).withRule(r.ID()))
		}
		if field.Required {
			out = append(out, NewWarning("DEPRECATED_STILL_REQUIRED",
				fmt.Sprintf("deprecated field %q is still required", name)).
				WithPath(name).
				WithSuggestion("make the field optional before removing it").
				withRule(r.ID()))
		}
		if dep.RemovalVersion != "" && semverLTE(dep.RemovalVersion, s.Version) {
			out = append(out, NewWarning("DEPRECATION_PAST_REMOVAL",
				fmt.Sprintf("deprecated field %q is past its removal version %s", name, dep.RemovalVersion)).
				WithPath(name).withRule(r.ID()))
		}
	}
	return out
}

// semverLTE reports a <= b over the numeric major.minor.patch core. Versions
// that do not parse compare as not-less, so malformed input never triggers
// removal findings (the version rule reports the malformation).
func semverLTE(a, b string) bool {
	av, aok := parseSemverCore(a)
	bv, bok := parseSemverCore(b)
	if !aok || !bok {
		return false
	}
	for i := 0; i < 3; i++ {
		if av[i] != bv[i] {
			return av[i] < bv[i]
		}
	}
	return true
}

func parseSemverCore(v string) ([3]int, bool) {
	var out [3]int
	core := v
	if i := strings.IndexAny(core, "-+"); i >= 0 {
		core = core[:i]
	}
	parts := strings.Split(core, ".")
	if len(parts) != 3 {
		return out, false
	}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return out, false
		}
		out[i] = n
	}
	return out, true
}

// namingConventionRule checks snake_case field names and namespaced ids.
type namingConventionRule struct{}

func (namingConventionRule) ID() string                       { return "naming_convention" }
func (namingConventionRule) AppliesTo(*SchemaDefinition) bool { return true }

func (r namingConventionRule) Evaluate(s, _ *SchemaDefinition) []Violation {
	var out []Violation
	for _, name := range sortedFieldNames(s.Fields) {
		if !snakeCaseRe.MatchString(name) {
			out = append(out, NewWarning("NAMING_NOT_SNAKE_CASE",
				fmt.Sprintf("field %q is not snake_case", name)).
				WithPath(name).
				WithExpectedActual("^[a-z][a-z0-9_]*$", name).
				withRule(r.ID()))
		}
	}
	if s.ID != "" && !strings.ContainsAny(s.ID, "/.") {
		out = append(out, NewWarning("SCHEMA_ID_NO_NAMESPACE",
			fmt.Sprintf("schema id %q has no namespace separator", s.ID)).
			WithSuggestion("namespace the id, e.g. team/service or service.component").
			withRule(r.ID()))
	}
	return out
}

// versionRule checks version presence and semver shape.
type versionRule struct{}

func (versionRule) ID() string                       { return "version" }
func (versionRule) AppliesTo(*SchemaDefinition) bool { return true }

func (r versionRule) Evaluate(s, _ *SchemaDefinition) []Violation {
	if s.Version == "" {
		return []Violation{NewError("VERSION_REQUIRED", "schema version must not be empty").withRule(r.ID())}
	}
	if !semverRe.MatchString(s.Version) {
		return []Violation{NewWarning("VERSION_NOT_SEMVER",
			fmt.Sprintf("schema version %q is not semantic versioning", s.Version)).
			WithExpectedActual("major.minor.patch", s.Version).
			withRule(r.ID())}
	}
	return nil
}
