package metrics

import (
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusSink implements Sink using the Prometheus client library.
// All methods are non-blocking and fire-and-forget.
// Registration errors are logged but never propagated.
type PrometheusSink struct {
	cacheLookupsTotal    *prometheus.CounterVec
	cacheResetsTotal     prometheus.Counter
	refreshCyclesTotal   prometheus.Counter
	refreshFailuresTotal prometheus.Counter
	refreshDuration      prometheus.Histogram

	leaderStatus *prometheus.GaugeVec

	jobCyclesTotal     prometheus.Counter
	jobCycleDuration   prometheus.Histogram
	jobTargetsTotal    *prometheus.CounterVec
	jobTargetDuration  prometheus.Histogram
	jobTriggersSkipped prometheus.Counter
}

// NewPrometheusSink creates a new Prometheus metrics sink.
// Metrics that fail to register are replaced with unregistered collectors,
// so the sink stays functional.
func NewPrometheusSink(reg prometheus.Registerer) *PrometheusSink {
	s := &PrometheusSink{}
	s.initCacheMetrics(reg)
	s.initLeaderMetrics(reg)
	s.initJobMetrics(reg)
	return s
}

func (s *PrometheusSink) initCacheMetrics(reg prometheus.Registerer) {
	s.cacheLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "myastroboard_cache_lookups_total",
		Help: "Total number of report cache lookups by key and outcome.",
	}, []string{"key", "outcome"})
	s.cacheResetsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "myastroboard_cache_resets_total",
		Help: "Total number of full cache resets (location changes).",
	})
	s.refreshCyclesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "myastroboard_refresh_cycles_total",
		Help: "Total number of cache refresh cycles completed.",
	})
	s.refreshFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "myastroboard_refresh_generator_failures_total",
		Help: "Total number of generator failures across refresh cycles.",
	})
	s.refreshDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "myastroboard_refresh_cycle_duration_seconds",
		Help:    "Duration of each cache refresh cycle in seconds.",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
	})

	s.register(reg, s.cacheLookupsTotal, "myastroboard_cache_lookups_total")
	s.register(reg, s.cacheResetsTotal, "myastroboard_cache_resets_total")
	s.register(reg, s.refreshCyclesTotal, "myastroboard_refresh_cycles_total")
	s.register(reg, s.refreshFailuresTotal, "myastroboard_refresh_generator_failures_total")
	s.register(reg, s.refreshDuration, "myastroboard_refresh_cycle_duration_seconds")
}

func (s *PrometheusSink) initLeaderMetrics(reg prometheus.Registerer) {
	s.leaderStatus = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "myastroboard_leader_status",
		Help: "Whether this process holds the leader lock (1) or not (0), per resource.",
	}, []string{"resource"})

	s.register(reg, s.leaderStatus, "myastroboard_leader_status")
}

func (s *PrometheusSink) initJobMetrics(reg prometheus.Registerer) {
	s.jobCyclesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "myastroboard_job_cycles_total",
		Help: "Total number of job scheduler cycles completed.",
	})
	s.jobCycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "myastroboard_job_cycle_duration_seconds",
		Help:    "Duration of each full job cycle in seconds.",
		Buckets: []float64{10, 60, 300, 600, 1200, 3600},
	})
	s.jobTargetsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "myastroboard_job_targets_total",
		Help: "Total number of per-target job runs by result.",
	}, []string{"result"})
	s.jobTargetDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "myastroboard_job_target_duration_seconds",
		Help:    "Duration of each per-target job run in seconds.",
		Buckets: []float64{5, 30, 60, 120, 300, 600},
	})
	s.jobTriggersSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "myastroboard_job_triggers_skipped_total",
		Help: "Total number of manual triggers dropped because a cycle was running.",
	})

	s.register(reg, s.jobCyclesTotal, "myastroboard_job_cycles_total")
	s.register(reg, s.jobCycleDuration, "myastroboard_job_cycle_duration_seconds")
	s.register(reg, s.jobTargetsTotal, "myastroboard_job_targets_total")
	s.register(reg, s.jobTargetDuration, "myastroboard_job_target_duration_seconds")
	s.register(reg, s.jobTriggersSkipped, "myastroboard_job_triggers_skipped_total")
}

func (s *PrometheusSink) register(reg prometheus.Registerer, c prometheus.Collector, name string) {
	if err := reg.Register(c); err != nil {
		log.Printf("metrics: failed to register %s: %v", name, err)
	}
}

func (s *PrometheusSink) CacheLookup(key string, outcome string) {
	s.cacheLookupsTotal.WithLabelValues(key, outcome).Inc()
}

func (s *PrometheusSink) CacheReset() {
	s.cacheResetsTotal.Inc()
}

func (s *PrometheusSink) RefreshCycleCompleted(duration time.Duration, failures int) {
	s.refreshCyclesTotal.Inc()
	s.refreshDuration.Observe(duration.Seconds())
	if failures > 0 {
		s.refreshFailuresTotal.Add(float64(failures))
	}
}

func (s *PrometheusSink) LeaderStatusChanged(resource string, isLeader bool) {
	v := 0.0
	if isLeader {
		v = 1.0
	}
	s.leaderStatus.WithLabelValues(resource).Set(v)
}

func (s *PrometheusSink) JobCycleCompleted(duration time.Duration, targets int) {
	s.jobCyclesTotal.Inc()
	s.jobCycleDuration.Observe(duration.Seconds())
}

func (s *PrometheusSink) JobTargetCompleted(result string, duration time.Duration) {
	s.jobTargetsTotal.WithLabelValues(result).Inc()
	s.jobTargetDuration.Observe(duration.Seconds())
}

func (s *PrometheusSink) JobTriggerSkipped() {
	s.jobTriggersSkipped.Inc()
}
