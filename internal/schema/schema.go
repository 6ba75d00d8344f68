// Package schema implements the schema validation engine: the canonical
// schema definition model and the fixed, ordered rule set evaluated against
// it. Validation is a pure function of its input; nothing is persisted.
package schema

import (
	"time"

	"github.com/google/uuid"
)

// FieldType is the closed set of type tags a field may carry.
type FieldType string

const (
	TypeString    FieldType = "string"
	TypeInteger   FieldType = "integer"
	TypeFloat     FieldType = "float"
	TypeBoolean   FieldType = "boolean"
	TypeArray     FieldType = "array"
	TypeObject    FieldType = "object"
	TypeSecret    FieldType = "secret"
	TypeDuration  FieldType = "duration"
	TypeURL       FieldType = "url"
	TypeEmail     FieldType = "email"
	TypeIPAddress FieldType = "ip_address"
	TypeFilePath  FieldType = "file_path"
	TypeRegex     FieldType = "regex"
	TypeJSON      FieldType = "json"
	TypeTimestamp FieldType = "timestamp"
	TypeAny       FieldType = "any"
)

var knownFieldTypes = map[FieldType]bool{
	TypeString: true, TypeInteger: true, TypeFloat: true, TypeBoolean: true,
	TypeArray: true, TypeObject: true, TypeSecret: true, TypeDuration: true,
	TypeURL: true, TypeEmail: true, TypeIPAddress: true, TypeFilePath: true,
	TypeRegex: true, TypeJSON: true, TypeTimestamp: true, TypeAny: true,
}

// Known reports whether the type tag is a member of the closed set.
func (t FieldType) Known() bool {
	return knownFieldTypes[t]
}

// ConstraintType discriminates the Constraint variants.
type ConstraintType string

const (
	ConstraintMin         ConstraintType = "min"
	ConstraintMax         ConstraintType = "max"
	ConstraintRange       ConstraintType = "range"
	ConstraintMinLength   ConstraintType = "min_length"
	ConstraintMaxLength   ConstraintType = "max_length"
	ConstraintLength      ConstraintType = "length"
	ConstraintPattern     ConstraintType = "pattern"
	ConstraintStartsWith  ConstraintType = "starts_with"
	ConstraintEndsWith    ConstraintType = "ends_with"
	ConstraintContains    ConstraintType = "contains"
	ConstraintNotEmpty    ConstraintType = "not_empty"
	ConstraintUniqueItems ConstraintType = "unique_items"
	ConstraintEnum        ConstraintType = "enum"
	ConstraintCustom      ConstraintType = "custom"
)

// Constraint is one typed validation constraint on a field. Only the fields
// relevant to Type are populated; the rest stay at their zero values.
type Constraint struct {
	Type ConstraintType `json:"type"`

	// Min/Max/Range.
	Value     *float64 `json:"value,omitempty"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	Inclusive bool     `json:"inclusive,omitempty"`

	// Length bounds.
	Length *int `json:"length,omitempty"`

	// Pattern.
	Pattern     string `json:"regex,omitempty"`
	Description string `json:"description,omitempty"`

	// String shape.
	Prefix    string `json:"prefix,omitempty"`
	Suffix    string `json:"suffix,omitempty"`
	Substring string `json:"substring,omitempty"`

	// Enum.
	Values []any `json:"values,omitempty"`

	// Custom expression.
	Expression string `json:"expression,omitempty"`
	Message    string `json:"message,omitempty"`
}

// DeprecationInfo records why a field is deprecated and how to migrate away.
type DeprecationInfo struct {
	SinceVersion   string `json:"since_version"`
	Reason         string `json:"reason"`
	Replacement    string `json:"replacement,omitempty"`
	RemovalVersion string `json:"removal_version,omitempty"`
	MigrationGuide string `json:"migration_guide,omitempty"`
}

// FieldDefinition describes one configuration field within a schema.
type FieldDefinition struct {
	Type         FieldType         `json:"field_type"`
	Required     bool              `json:"required,omitempty"`
	Default      any               `json:"default,omitempty"`
	Description  string            `json:"description,omitempty"`
	Constraints  []Constraint      `json:"constraints,omitempty"`
	Deprecated   *DeprecationInfo  `json:"deprecated,omitempty"`
	Secret       bool              `json:"secret,omitempty"`
	NestedSchema *SchemaDefinition `json:"nested_schema,omitempty"`
}

// Metadata carries cosmetic schema attributes. Metadata never participates
// in the inputs hash: two schemas that differ only here hash identically.
type Metadata struct {
	Owner     string         `json:"owner,omitempty"`
	Tags      []string       `json:"tags,omitempty"`
	CreatedAt string         `json:"created_at,omitempty"`
	UpdatedAt string         `json:"updated_at,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// EnvironmentRuleType discriminates the EnvironmentRule variants.
type EnvironmentRuleType string

const (
	EnvRequiredIn         EnvironmentRuleType = "required_in"
	EnvForbiddenIn        EnvironmentRuleType = "forbidden_in"
	EnvConstraintOverride EnvironmentRuleType = "constraint_override"
	EnvMustDiffer         EnvironmentRuleType = "must_differ"
	EnvMustEncrypt        EnvironmentRuleType = "must_encrypt"
)

// EnvironmentRule is a cross-environment obligation on a field.
type EnvironmentRule struct {
	Type         EnvironmentRuleType `json:"rule_type"`
	Field        string              `json:"field"`
	Environments []string            `json:"environments,omitempty"`
	Environment  string              `json:"environment,omitempty"`
	Constraints  []Constraint        `json:"constraints,omitempty"`
}

// CompatibilityType discriminates the CompatibilityConstraint variants.
type CompatibilityType string

const (
	CompatRequiresSchema  CompatibilityType = "requires_schema"
	CompatFieldFormat     CompatibilityType = "field_format"
	CompatProtocolVersion CompatibilityType = "protocol_version"
	CompatCustom          CompatibilityType = "custom"
)

// CompatibilityConstraint is a cross-schema obligation.
type CompatibilityConstraint struct {
	Type         CompatibilityType `json:"constraint_type"`
	SchemaID     string            `json:"schema_id,omitempty"`
	MinVersion   string            `json:"min_version,omitempty"`
	Field        string            `json:"field,omitempty"`
	TargetSchema string            `json:"target_schema,omitempty"`
	TargetField  string            `json:"target_field,omitempty"`
	Min          string            `json:"min,omitempty"`
	Max          string            `json:"max,omitempty"`
	Expression   string            `json:"expression,omitempty"`
	Message      string            `json:"message,omitempty"`
}

// SchemaDefinition is the source of truth for a configuration's structure.
// Constructed from external input once per request, read-only thereafter.
type SchemaDefinition struct {
	ID               string                     `json:"id"`
	Version          string                     `json:"version"`
	Name             string                     `json:"name"`
	Description      string                     `json:"description,omitempty"`
	Fields           map[string]FieldDefinition `json:"fields"`
	Metadata         Metadata                   `json:"metadata,omitempty"`
	EnvironmentRules []EnvironmentRule          `json:"environment_rules,omitempty"`
	Compatibility    []CompatibilityConstraint  `json:"compatibility,omitempty"`
}

// ValidationInput is one schema validation request.
type ValidationInput struct {
	RequestID    uuid.UUID         `json:"request_id"`
	Schema       SchemaDefinition  `json:"schema"`
	ParentSchema *SchemaDefinition `json:"parent_schema,omitempty"`
	Context      map[string]string `json:"context,omitempty"`
	RequestedAt  time.Time         `json:"requested_at"`
	RequestedBy  string            `json:"requested_by"`
}

// ValidationOutput is the result of one engine run. Immutable once built.
type ValidationOutput struct {
	RequestID          uuid.UUID   `json:"request_id"`
	IsValid            bool        `json:"is_valid"`
	Violations         []Violation `json:"violations"`
	Warnings           []Violation `json:"warnings"`
	RulesApplied       []string    `json:"rules_applied"`
	ConstraintsChecked []string    `json:"constraints_checked"`
	Coverage           float64     `json:"coverage"`
	CompletedAt        time.Time   `json:"completed_at"`
	DurationMS         int64       `json:"duration_ms"`
}
