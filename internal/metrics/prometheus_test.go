package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func newTestSink(t *testing.T) (*PrometheusSink, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	sink := NewPrometheusSink(reg)
	return sink, reg
}

func getCounterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() == name {
			for _, m := range mf.GetMetric() {
				if m.GetCounter() != nil {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func getCounterVecValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() == name {
			for _, m := range mf.GetMetric() {
				if matchLabels(m.GetLabel(), labels) {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func getGaugeVecValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() == name {
			for _, m := range mf.GetMetric() {
				if matchLabels(m.GetLabel(), labels) {
					return m.GetGauge().GetValue()
				}
			}
		}
	}
	return 0
}

func matchLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	if len(pairs) != len(want) {
		return false
	}
	for _, p := range pairs {
		if v, ok := want[p.GetName()]; !ok || v != p.GetValue() {
			return false
		}
	}
	return true
}

func TestPrometheusSink_Registration(t *testing.T) {
	// Should not panic or error with a fresh registry.
	reg := prometheus.NewRegistry()
	sink := NewPrometheusSink(reg)
	if sink == nil {
		t.Fatal("NewPrometheusSink returned nil")
	}
}

func TestPrometheusSink_CacheLookupLabels(t *testing.T) {
	sink, reg := newTestSink(t)

	sink.CacheLookup("moon_report", OutcomeHit)
	sink.CacheLookup("moon_report", OutcomeHit)
	sink.CacheLookup("weather", OutcomeMiss)

	hits := getCounterVecValue(t, reg, "myastroboard_cache_lookups_total",
		map[string]string{"key": "moon_report", "outcome": "hit"})
	if hits != 2 {
		t.Errorf("key=moon_report,outcome=hit = %v, want 2", hits)
	}

	misses := getCounterVecValue(t, reg, "myastroboard_cache_lookups_total",
		map[string]string{"key": "weather", "outcome": "miss"})
	if misses != 1 {
		t.Errorf("key=weather,outcome=miss = %v, want 1", misses)
	}
}

func TestPrometheusSink_RefreshCycleFailures(t *testing.T) {
	sink, reg := newTestSink(t)

	// No failures
	sink.RefreshCycleCompleted(30*time.Second, 0)
	failures := getCounterValue(t, reg, "myastroboard_refresh_generator_failures_total")
	if failures != 0 {
		t.Errorf("failures_total = %v after clean cycle, want 0", failures)
	}

	// With failures
	sink.RefreshCycleCompleted(30*time.Second, 3)
	failures = getCounterValue(t, reg, "myastroboard_refresh_generator_failures_total")
	if failures != 3 {
		t.Errorf("failures_total = %v, want 3", failures)
	}

	cycles := getCounterValue(t, reg, "myastroboard_refresh_cycles_total")
	if cycles != 2 {
		t.Errorf("cycles_total = %v, want 2", cycles)
	}
}

func TestPrometheusSink_LeaderStatus(t *testing.T) {
	sink, reg := newTestSink(t)

	sink.LeaderStatusChanged("cache_scheduler", true)
	sink.LeaderStatusChanged("scheduler", false)

	refresh := getGaugeVecValue(t, reg, "myastroboard_leader_status",
		map[string]string{"resource": "cache_scheduler"})
	if refresh != 1 {
		t.Errorf("resource=cache_scheduler = %v, want 1", refresh)
	}

	job := getGaugeVecValue(t, reg, "myastroboard_leader_status",
		map[string]string{"resource": "scheduler"})
	if job != 0 {
		t.Errorf("resource=scheduler = %v, want 0", job)
	}

	// Losing the lock flips the gauge back down.
	sink.LeaderStatusChanged("cache_scheduler", false)
	refresh = getGaugeVecValue(t, reg, "myastroboard_leader_status",
		map[string]string{"resource": "cache_scheduler"})
	if refresh != 0 {
		t.Errorf("resource=cache_scheduler after release = %v, want 0", refresh)
	}
}

func TestPrometheusSink_JobTargetResults(t *testing.T) {
	sink, reg := newTestSink(t)

	sink.JobTargetCompleted(ResultSuccess, time.Minute)
	sink.JobTargetCompleted(ResultSuccess, 2*time.Minute)
	sink.JobTargetCompleted(ResultTimeout, 10*time.Minute)
	sink.JobTriggerSkipped()

	success := getCounterVecValue(t, reg, "myastroboard_job_targets_total",
		map[string]string{"result": "success"})
	if success != 2 {
		t.Errorf("result=success = %v, want 2", success)
	}

	timeout := getCounterVecValue(t, reg, "myastroboard_job_targets_total",
		map[string]string{"result": "timeout"})
	if timeout != 1 {
		t.Errorf("result=timeout = %v, want 1", timeout)
	}

	skipped := getCounterValue(t, reg, "myastroboard_job_triggers_skipped_total")
	if skipped != 1 {
		t.Errorf("triggers_skipped_total = %v, want 1", skipped)
	}
}

func TestPrometheusSink_DuplicateRegistration_NoPanic(t *testing.T) {
	// Registering metrics twice with the same registry should not panic.
	// The second registration will fail, but should be handled gracefully.
	reg := prometheus.NewRegistry()

	sink1 := NewPrometheusSink(reg)
	if sink1 == nil {
		t.Fatal("first NewPrometheusSink returned nil")
	}

	// Second registration will fail for all metrics, but should not panic.
	sink2 := NewPrometheusSink(reg)
	if sink2 == nil {
		t.Fatal("second NewPrometheusSink returned nil")
	}
}

// Verify PrometheusSink implements Sink interface.
var _ Sink = (*PrometheusSink)(nil)
