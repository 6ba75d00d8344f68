// Package scoring provides the confidence scoring and deterministic input
// hashing shared by all evaluation engines. All functions are pure.
package scoring

// Default penalty weights shared by the schema and health engines.
const (
	DefaultWarningPenalty  = 0.05
	DefaultErrorPenalty    = 0.1
	DefaultMinUnits        = 3
	DefaultMinUnitsPenalty = 0.1
)

// Policy controls how confidence is derived from an engine's base score.
// The min-units threshold is policy, not a constant: small unit sets are
// legitimate for some agents.
type Policy struct {
	// WarningPenalty is subtracted per warning or degraded finding.
	WarningPenalty float64
	// ErrorPenalty is subtracted per error or unhealthy finding.
	ErrorPenalty float64
	// MinUnits is the number of applied units below which MinUnitsPenalty
	// is subtracted once, instead of per-finding error penalties being
	// meaningful on their own.
	MinUnits int
	// MinUnitsPenalty is the flat penalty for thin unit coverage.
	MinUnitsPenalty float64
}

// DefaultPolicy returns the penalty weights both engines ship with.
func DefaultPolicy() Policy {
	return Policy{
		WarningPenalty:  DefaultWarningPenalty,
		ErrorPenalty:    DefaultErrorPenalty,
		MinUnits:        DefaultMinUnits,
		MinUnitsPenalty: DefaultMinUnitsPenalty,
	}
}

// Confidence derives a trust score from an engine's base score (its own
// coverage or health score), penalized per warning-grade and error-grade
// finding and for thin unit coverage, then clamped to [0,1].
func (p Policy) Confidence(base float64, warnings, errors, unitsApplied int) float64 {
	conf := base
	conf -= float64(warnings) * p.WarningPenalty
	conf -= float64(errors) * p.ErrorPenalty
	if unitsApplied < p.MinUnits {
		conf -= p.MinUnitsPenalty
	}
	return Clamp(conf)
}

// Clamp bounds a score to [0,1].
func Clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
