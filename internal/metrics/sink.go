package metrics

import "time"

// Sink defines the interface for recording metrics.
// All methods are fire-and-forget: implementations MUST NOT block or propagate errors.
// If the metrics backend is unavailable, implementations log warnings and continue.
type Sink interface {
	// Cache metrics
	CacheLookup(key string, outcome string)
	CacheReset()
	RefreshCycleCompleted(duration time.Duration, failures int)

	// Leader election metrics
	LeaderStatusChanged(resource string, isLeader bool)

	// Job scheduler metrics
	JobCycleCompleted(duration time.Duration, targets int)
	JobTargetCompleted(result string, duration time.Duration)
	JobTriggerSkipped()
}

// Outcome constants for CacheLookup.
const (
	OutcomeHit    = "hit"
	OutcomeMiss   = "miss"
	OutcomeFailed = "failed"
)

// Result constants for JobTargetCompleted.
const (
	ResultSuccess = "success"
	ResultFailed  = "failed"
	ResultTimeout = "timeout"
	ResultError   = "error"
)
