package schema

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/agentics-ai/kansa/internal/scoring"
)

// DefaultLatencyBudget bounds one validation run. The budget is checked
// between rules; a rule that is already running finishes.
const DefaultLatencyBudget = 1500 * time.Millisecond

// Engine evaluates the ordered rule set against a schema. It holds no
// per-request state and is safe for concurrent use.
type Engine struct {
	rules  []Rule
	budget time.Duration
	policy scoring.Policy
	logger *slog.Logger
}

// NewEngine creates an engine with the canonical rule set. A zero budget
// selects DefaultLatencyBudget.
func NewEngine(logger *slog.Logger, budget time.Duration) *Engine {
	if budget <= 0 {
		budget = DefaultLatencyBudget
	}
	return &Engine{
		rules:  DefaultRules(),
		budget: budget,
		policy: scoring.DefaultPolicy(),
		logger: logger,
	}
}

// Validate runs every applicable rule in order and partitions findings by
// severity. Blocking findings land in violations, the rest in warnings, and
// is_valid means no blocking findings. If the latency budget is exhausted the
// remaining rules are skipped and coverage reports the shortfall.
func (e *Engine) Validate(in *ValidationInput) *ValidationOutput {
	start := time.Now()
	out := &ValidationOutput{
		RequestID:          in.RequestID,
		Violations:         []Violation{},
		Warnings:           []Violation{},
		RulesApplied:       []string{},
		ConstraintsChecked: []string{},
	}

	for _, rule := range e.rules {
		if !rule.AppliesTo(&in.Schema) {
			continue
		}
		out.RulesApplied = append(out.RulesApplied, rule.ID())
		for _, v := range rule.Evaluate(&in.Schema, in.ParentSchema) {
			out.ConstraintsChecked = append(out.ConstraintsChecked,
				fmt.Sprintf("%s:%s", rule.ID(), v.Code))
			if v.Severity.Blocking() {
				out.Violations = append(out.Violations, v)
			} else {
				out.Warnings = append(out.Warnings, v)
			}
		}
		if time.Since(start) > e.budget {
			e.logger.Warn("validation budget exhausted, skipping remaining rules",
				"schema_id", in.Schema.ID,
				"rules_applied", len(out.RulesApplied),
				"budget_ms", e.budget.Milliseconds())
			break
		}
	}

	out.IsValid = len(out.Violations) == 0
	out.Coverage = float64(len(out.RulesApplied)) / float64(len(e.rules))
	out.CompletedAt = time.Now().UTC()
	out.DurationMS = time.Since(start).Milliseconds()
	return out
}

// Confidence scores a validation run: coverage as the base, penalized per
// warning and for thin rule coverage.
func (e *Engine) Confidence(out *ValidationOutput) float64 {
	return e.policy.Confidence(out.Coverage, len(out.Warnings), 0, len(out.RulesApplied))
}

// InputsHash returns the deterministic digest of the validated schema's
// identity: id, version and the canonical JSON of its fields. Request
// framing and schema metadata never contribute.
func InputsHash(in *ValidationInput) string {
	fields, err := json.Marshal(in.Schema.Fields)
	if err != nil {
		// Fields came in over JSON, so this cannot fire for real input.
		fields = []byte("{}")
	}
	return scoring.NewDigest().
		WriteField(in.Schema.ID).
		WriteField(in.Schema.Version).
		WriteField(string(fields)).
		Sum()
}
