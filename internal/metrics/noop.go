package metrics

import "time"

// NoopSink is a no-op implementation of Sink.
// Used when metrics are disabled to avoid nil checks.
type NoopSink struct{}

// NewNoopSink returns a no-op metrics sink.
func NewNoopSink() *NoopSink {
	return &NoopSink{}
}

func (n *NoopSink) CacheLookup(key string, outcome string)                    {}
func (n *NoopSink) CacheReset()                                               {}
func (n *NoopSink) RefreshCycleCompleted(duration time.Duration, failures int) {}
func (n *NoopSink) LeaderStatusChanged(resource string, isLeader bool)        {}
func (n *NoopSink) JobCycleCompleted(duration time.Duration, targets int)     {}
func (n *NoopSink) JobTargetCompleted(result string, duration time.Duration)  {}
func (n *NoopSink) JobTriggerSkipped()                                        {}
