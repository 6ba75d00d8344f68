package adapter

import "time"

// HealthStatus grades one adapter check.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusDegraded  HealthStatus = "degraded"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusUnknown   HealthStatus = "unknown"
)

// HealthResult is the outcome of checking one adapter.
type HealthResult struct {
	AdapterID   string            `json:"adapter_id"`
	AdapterType Type              `json:"adapter_type"`
	Status      HealthStatus      `json:"status"`
	Message     string            `json:"message,omitempty"`
	LatencyMS   int64             `json:"latency_ms"`
	CheckedAt   time.Time         `json:"checked_at"`
	Diagnostics map[string]string `json:"diagnostics,omitempty"`
}

// Healthy builds a passing result.
func Healthy(cfg Config, latency time.Duration) HealthResult {
	return newResult(cfg, StatusHealthy, "", latency)
}

// Degraded builds a degraded result with the reason.
func Degraded(cfg Config, message string, latency time.Duration) HealthResult {
	return newResult(cfg, StatusDegraded, message, latency)
}

// Unhealthy builds a failing result with the reason.
func Unhealthy(cfg Config, message string, latency time.Duration) HealthResult {
	return newResult(cfg, StatusUnhealthy, message, latency)
}

func newResult(cfg Config, status HealthStatus, message string, latency time.Duration) HealthResult {
	return HealthResult{
		AdapterID:   cfg.ID,
		AdapterType: cfg.Type,
		Status:      status,
		Message:     message,
		LatencyMS:   latency.Milliseconds(),
		CheckedAt:   time.Now().UTC(),
	}
}

// WithDiagnostics attaches checker diagnostics to the result.
func (r HealthResult) WithDiagnostics(d map[string]string) HealthResult {
	r.Diagnostics = d
	return r
}
