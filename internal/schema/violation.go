package schema

// Severity grades a finding. Error and Critical block validity; Warning and
// Info are advisory.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Blocking reports whether the severity makes the schema invalid.
func (s Severity) Blocking() bool {
	return s == SeverityError || s == SeverityCritical
}

// Violation is one finding produced by a validation rule.
type Violation struct {
	Code       string   `json:"code"`
	Severity   Severity `json:"severity"`
	Message    string   `json:"message"`
	Path       string   `json:"path,omitempty"`
	Expected   string   `json:"expected,omitempty"`
	Actual     string   `json:"actual,omitempty"`
	Suggestion string   `json:"suggestion,omitempty"`
	RuleID     string   `json:"rule_id,omitempty"`
}

// NewError creates a blocking violation.
func NewError(code, message string) Violation {
	return Violation{Code: code, Severity: SeverityError, Message: message}
}

// NewWarning creates an advisory violation.
func NewWarning(code, message string) Violation {
	return Violation{Code: code, Severity: SeverityWarning, Message: message}
}

// WithPath attaches the field path the finding refers to.
func (v Violation) WithPath(path string) Violation {
	v.Path = path
	return v
}

// WithExpectedActual attaches the expected/actual pair.
func (v Violation) WithExpectedActual(expected, actual string) Violation {
	v.Expected = expected
	v.Actual = actual
	return v
}

// WithSuggestion attaches a remediation hint.
func (v Violation) WithSuggestion(s string) Violation {
	v.Suggestion = s
	return v
}

func (v Violation) withRule(ruleID string) Violation {
	v.RuleID = ruleID
	return v
}
