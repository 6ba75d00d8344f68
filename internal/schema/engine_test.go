package schema

import (
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func testEngine() *Engine {
	return NewEngine(slog.New(slog.NewTextHandler(io.Discard, nil)), 0)
}

func validSchema() SchemaDefinition {
	return SchemaDefinition{
		ID:      "payments/gateway",
		Version: "1.2.0",
		Name:    "Payment Gateway Config",
		Fields: map[string]FieldDefinition{
			"endpoint": {Type: TypeURL, Required: true},
			"api_key":  {Type: TypeSecret, Secret: true},
			"timeout_ms": {
				Type:        TypeInteger,
				Constraints: []Constraint{{Type: ConstraintRange, Min: f(100), Max: f(30000)}},
			},
		},
	}
}

func validate(s SchemaDefinition) *ValidationOutput {
	return testEngine().Validate(&ValidationInput{
		RequestID:   uuid.New(),
		Schema:      s,
		RequestedAt: time.Now().UTC(),
		RequestedBy: "test",
	})
}

func f(v float64) *float64 { return &v }

func hasCode(vs []Violation, code string) bool {
	for _, v := range vs {
		if v.Code == code {
			return true
		}
	}
	return false
}

func TestValidateCleanSchema(t *testing.T) {
	out := validate(validSchema())

	if !out.IsValid {
		t.Fatalf("expected valid, got violations: %+v", out.Violations)
	}
	if len(out.Violations) != 0 || len(out.Warnings) != 0 {
		t.Fatalf("expected no findings, got %+v / %+v", out.Violations, out.Warnings)
	}
	// structure, field_type, constraint, required_field, naming_convention,
	// version apply; deprecation does not.
	if len(out.RulesApplied) != 6 {
		t.Fatalf("expected 6 rules applied, got %v", out.RulesApplied)
	}
	if out.Coverage < 0.85 || out.Coverage > 0.86 {
		t.Fatalf("expected coverage 6/7, got %f", out.Coverage)
	}
}

func TestValidateEmptyIDIsBlocking(t *testing.T) {
	s := validSchema()
	s.ID = ""
	out := validate(s)

	if out.IsValid {
		t.Fatal("empty id must make the schema invalid")
	}
	if !hasCode(out.Violations, "SCHEMA_ID_REQUIRED") {
		t.Fatalf("missing SCHEMA_ID_REQUIRED: %+v", out.Violations)
	}
}

func TestValidateWarningsDoNotBlock(t *testing.T) {
	s := validSchema()
	s.Version = "v1.2"
	out := validate(s)

	if !out.IsValid {
		t.Fatalf("warnings must not block validity: %+v", out.Violations)
	}
	if !hasCode(out.Warnings, "VERSION_NOT_SEMVER") {
		t.Fatalf("missing VERSION_NOT_SEMVER: %+v", out.Warnings)
	}
}

func TestValidateConstraintsCheckedEntries(t *testing.T) {
	s := validSchema()
	s.ID = ""
	out := validate(s)

	found := false
	for _, entry := range out.ConstraintsChecked {
		if entry == "structure:SCHEMA_ID_REQUIRED" {
			found = true
		}
		if !strings.Contains(entry, ":") {
			t.Fatalf("entry %q is not ruleID:CODE", entry)
		}
	}
	if !found {
		t.Fatalf("missing structure:SCHEMA_ID_REQUIRED in %v", out.ConstraintsChecked)
	}
}

func TestValidateDeterministicAcrossRuns(t *testing.T) {
	s := validSchema()
	s.Fields["BadName"] = FieldDefinition{Type: TypeString}
	s.Fields["AnotherBad"] = FieldDefinition{Type: TypeString}

	first := validate(s)
	for i := 0; i < 5; i++ {
		again := validate(s)
		if len(again.Warnings) != len(first.Warnings) {
			t.Fatalf("finding count varies across runs")
		}
		for j := range again.Warnings {
			if again.Warnings[j].Path != first.Warnings[j].Path {
				t.Fatalf("finding order varies across runs: %q vs %q",
					again.Warnings[j].Path, first.Warnings[j].Path)
			}
		}
	}
}

func TestConfidenceCleanSchema(t *testing.T) {
	e := testEngine()
	out := validate(validSchema())

	conf := e.Confidence(out)
	if conf != out.Coverage {
		t.Fatalf("expected confidence == coverage with no warnings, got %f vs %f", conf, out.Coverage)
	}
}

func TestConfidenceDropsPerWarning(t *testing.T) {
	e := testEngine()
	clean := validate(validSchema())

	s := validSchema()
	s.Version = "not-semver"
	warned := validate(s)

	if e.Confidence(warned) >= e.Confidence(clean) {
		t.Fatal("warnings must lower confidence")
	}
}

func TestInputsHashIgnoresMetadataAndFraming(t *testing.T) {
	a := &ValidationInput{RequestID: uuid.New(), Schema: validSchema(), RequestedBy: "alice"}

	b := &ValidationInput{RequestID: uuid.New(), Schema: validSchema(), RequestedBy: "bob"}
	b.Schema.Metadata = Metadata{Owner: "platform", Tags: []string{"prod"}}
	b.Schema.Description = "different description"

	if InputsHash(a) != InputsHash(b) {
		t.Fatal("hash must cover only id, version and fields")
	}
}

func TestInputsHashChangesWithFields(t *testing.T) {
	a := &ValidationInput{Schema: validSchema()}
	b := &ValidationInput{Schema: validSchema()}
	b.Schema.Fields["extra"] = FieldDefinition{Type: TypeBoolean}

	if InputsHash(a) == InputsHash(b) {
		t.Fatal("field changes must change the hash")
	}
}
