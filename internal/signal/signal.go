// Package signal defines the decision signal contract emitted to the
// collector: one signal per engine run, batched when runs are grouped.
package signal

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/agentics-ai/kansa/internal/adapter"
	"github.com/agentics-ai/kansa/internal/schema"
)

// Emitting agent identities.
const (
	SchemaAgentID    = "schema-truth-agent"
	SchemaSignalType = "schema_violation_signal"
	HealthAgentID    = "integration-health-agent"
	HealthSignalType = "integration_health_signal"
	AgentVersion     = "0.1.0"
)

// DecisionType names what kind of decision a signal records.
type DecisionType string

const (
	DecisionHealthCheck          DecisionType = "health_check"
	DecisionConnectivityTest     DecisionType = "connectivity_test"
	DecisionLatencyMeasurement   DecisionType = "latency_measurement"
	DecisionAvailabilityCheck    DecisionType = "availability_check"
	DecisionCapacityCheck        DecisionType = "capacity_check"
	DecisionSchemaValidation     DecisionType = "schema_validation"
	DecisionSchemaCompatibility  DecisionType = "schema_compatibility"
	DecisionSchemaEvolution      DecisionType = "schema_evolution"
	DecisionFieldTypeValidation  DecisionType = "field_type_validation"
	DecisionConstraintValidation DecisionType = "constraint_validation"
)

// HighConfidenceThreshold separates signals trustworthy enough to act on
// without review.
const HighConfidenceThreshold = 0.8

// PerformanceMetrics records how expensive the decision was to make.
type PerformanceMetrics struct {
	LatencyMS      int64 `json:"latency_ms"`
	UnitsEvaluated int   `json:"units_evaluated"`
}

// Signal is one decision record. Outputs carries the engine-specific
// payload; InputsHash is the deduplication key over the decision's inputs.
type Signal struct {
	EventID            uuid.UUID           `json:"event_id"`
	AgentID            string              `json:"agent_id"`
	AgentVersion       string              `json:"agent_version"`
	SignalType         string              `json:"signal_type"`
	DecisionType       DecisionType        `json:"decision_type"`
	InputsHash         string              `json:"inputs_hash"`
	Outputs            any                 `json:"outputs"`
	Confidence         float64             `json:"confidence"`
	ConstraintsApplied []string            `json:"constraints_applied,omitempty"`
	ExecutionRef       string              `json:"execution_ref,omitempty"`
	Timestamp          time.Time           `json:"timestamp"`
	Metadata           map[string]string   `json:"metadata,omitempty"`
	Performance        *PerformanceMetrics `json:"performance,omitempty"`
	CorrelationIDs     []string            `json:"correlation_ids,omitempty"`
}

// SchemaOutputs is the signal payload for a schema validation run. Only
// finding codes travel; the schema contents stay with the caller.
type SchemaOutputs struct {
	IsValid        bool     `json:"is_valid"`
	ViolationCount int      `json:"violation_count"`
	WarningCount   int      `json:"warning_count"`
	Coverage       float64  `json:"coverage"`
	ViolationCodes []string `json:"violation_codes,omitempty"`
}

// HealthOutputs is the signal payload for a health check run.
type HealthOutputs struct {
	HealthScore    float64 `json:"health_score"`
	IsHealthy      bool    `json:"is_healthy"`
	HealthyCount   int     `json:"healthy_count"`
	DegradedCount  int     `json:"degraded_count"`
	UnhealthyCount int     `json:"unhealthy_count"`
}

// FromValidation builds the signal for one schema validation run.
func FromValidation(in *schema.ValidationInput, out *schema.ValidationOutput, confidence float64, executionRef string) Signal {
	codes := make([]string, 0, len(out.Violations))
	for _, v := range out.Violations {
		codes = append(codes, v.Code)
	}
	return Signal{
		EventID:      uuid.New(),
		AgentID:      SchemaAgentID,
		AgentVersion: AgentVersion,
		SignalType:   SchemaSignalType,
		DecisionType: DecisionSchemaValidation,
		InputsHash:   schema.InputsHash(in),
		Outputs: SchemaOutputs{
			IsValid:        out.IsValid,
			ViolationCount: len(out.Violations),
			WarningCount:   len(out.Warnings),
			Coverage:       out.Coverage,
			ViolationCodes: codes,
		},
		Confidence:         confidence,
		ConstraintsApplied: out.ConstraintsChecked,
		ExecutionRef:       executionRef,
		Timestamp:          time.Now().UTC(),
		Performance: &PerformanceMetrics{
			LatencyMS:      out.DurationMS,
			UnitsEvaluated: len(out.RulesApplied),
		},
	}
}

// FromHealthCheck builds the signal for one adapter health check run.
func FromHealthCheck(in *adapter.CheckInput, out *adapter.CheckOutput, confidence float64, executionRef string) Signal {
	applied := make([]string, 0, len(out.Results))
	for _, r := range out.Results {
		applied = append(applied, fmt.Sprintf("%s:%s", r.AdapterID, r.Status))
	}
	return Signal{
		EventID:      uuid.New(),
		AgentID:      HealthAgentID,
		AgentVersion: AgentVersion,
		SignalType:   HealthSignalType,
		DecisionType: DecisionHealthCheck,
		InputsHash:   adapter.InputsHash(in),
		Outputs: HealthOutputs{
			HealthScore:    out.HealthScore,
			IsHealthy:      out.IsHealthy,
			HealthyCount:   out.HealthyCount,
			DegradedCount:  out.DegradedCount,
			UnhealthyCount: out.UnhealthyCount,
		},
		Confidence:         confidence,
		ConstraintsApplied: applied,
		ExecutionRef:       executionRef,
		Timestamp:          time.Now().UTC(),
		Performance: &PerformanceMetrics{
			LatencyMS:      out.DurationMS,
			UnitsEvaluated: len(out.Results),
		},
	}
}

// Summary renders a one-line human description for logs.
func (s Signal) Summary() string {
	return fmt.Sprintf("%s %s decision=%s confidence=%.2f inputs=%s",
		s.AgentID, s.SignalType, s.DecisionType, s.Confidence, shortHash(s.InputsHash))
}

// HighConfidence reports whether the signal clears the action threshold.
func (s Signal) HighConfidence() bool {
	return s.Confidence >= HighConfidenceThreshold
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

// Batch groups signals produced by one logical execution.
type Batch struct {
	BatchID   uuid.UUID `json:"batch_id"`
	Signals   []Signal  `json:"signals"`
	CreatedAt time.Time `json:"created_at"`
	Source    string    `json:"source"`
}

// NewBatch wraps signals with batch identity.
func NewBatch(source string, signals []Signal) Batch {
	return Batch{
		BatchID:   uuid.New(),
		Signals:   signals,
		CreatedAt: time.Now().UTC(),
		Source:    source,
	}
}
