package adapter

import (
	"time"

	"github.com/google/uuid"

	"github.com/agentics-ai/kansa/internal/scoring"
)

// Check option defaults.
const (
	DefaultTimeoutMS = 500
)

// CheckOptions tune one health check run.
type CheckOptions struct {
	// TimeoutMS bounds each individual adapter probe.
	TimeoutMS int64 `json:"timeout_ms"`
	// Parallel fans the probes out concurrently. Results keep request order
	// either way.
	Parallel bool `json:"parallel"`
	// IncludeDiagnostics asks checkers for per-adapter diagnostics.
	IncludeDiagnostics bool `json:"include_diagnostics"`
	// RetryFailed re-probes unhealthy adapters once before reporting.
	RetryFailed bool `json:"retry_failed"`
}

// DefaultCheckOptions returns the options used when the request omits them.
func DefaultCheckOptions() CheckOptions {
	return CheckOptions{
		TimeoutMS: DefaultTimeoutMS,
		Parallel:  true,
	}
}

// Timeout returns the per-adapter probe timeout.
func (o CheckOptions) Timeout() time.Duration {
	if o.TimeoutMS <= 0 {
		return DefaultTimeoutMS * time.Millisecond
	}
	return time.Duration(o.TimeoutMS) * time.Millisecond
}

// CheckInput is one health check request.
type CheckInput struct {
	RequestID   uuid.UUID         `json:"request_id"`
	Adapters    []Config          `json:"adapters"`
	Options     CheckOptions      `json:"options"`
	Context     map[string]string `json:"context,omitempty"`
	RequestedAt time.Time         `json:"requested_at"`
	RequestedBy string            `json:"requested_by"`
}

// CheckOutput aggregates the per-adapter results of one run.
type CheckOutput struct {
	RequestID      uuid.UUID      `json:"request_id"`
	Results        []HealthResult `json:"results"`
	HealthyCount   int            `json:"healthy_count"`
	DegradedCount  int            `json:"degraded_count"`
	UnhealthyCount int            `json:"unhealthy_count"`
	HealthScore    float64        `json:"health_score"`
	IsHealthy      bool           `json:"is_healthy"`
	CompletedAt    time.Time      `json:"completed_at"`
	DurationMS     int64          `json:"duration_ms"`
}

// NewCheckOutput counts and scores the results. The health score weighs
// degraded adapters at half; an empty run scores 1.0. A run is healthy as
// long as nothing is outright unhealthy.
func NewCheckOutput(requestID uuid.UUID, results []HealthResult, duration time.Duration) *CheckOutput {
	out := &CheckOutput{
		RequestID:   requestID,
		Results:     results,
		CompletedAt: time.Now().UTC(),
		DurationMS:  duration.Milliseconds(),
	}
	for _, r := range results {
		switch r.Status {
		case StatusHealthy:
			out.HealthyCount++
		case StatusDegraded:
			out.DegradedCount++
		case StatusUnhealthy:
			out.UnhealthyCount++
		}
	}
	if len(results) == 0 {
		out.HealthScore = 1.0
	} else {
		out.HealthScore = (float64(out.HealthyCount) + 0.5*float64(out.DegradedCount)) / float64(len(results))
	}
	out.IsHealthy = out.UnhealthyCount == 0
	return out
}

// Confidence scores the run: health score as the base, penalized per
// degraded and unhealthy adapter. Small adapter sets are normal, so no
// thin-coverage penalty applies.
func (o *CheckOutput) Confidence(pol scoring.Policy) float64 {
	pol.MinUnits = 0
	return pol.Confidence(o.HealthScore, o.DegradedCount, o.UnhealthyCount, len(o.Results))
}

// InputsHash returns the deterministic digest of the checked adapters'
// identity: each adapter's id and endpoint in request order. Options and
// request framing never contribute.
func InputsHash(in *CheckInput) string {
	d := scoring.NewDigest()
	for _, a := range in.Adapters {
		d.WriteField(a.ID).WriteField(a.Endpoint)
	}
	return d.Sum()
}
