// Package jobsched implements the leader-only loop that runs the
// external batch job once per configured target, sequentially, with
// per-run logs and shared-file-based status for non-leader workers.
package jobsched

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/WorldOfGZ/myastroboard/internal/domain"
	"github.com/WorldOfGZ/myastroboard/internal/report"
	"github.com/WorldOfGZ/myastroboard/internal/settings"
)

const (
	statusFileName  = "scheduler_status.json"
	triggerFileName = "scheduler_trigger"
	logFileName     = "uptonight.log"
)

// SettingsLoader loads the current user configuration.
type SettingsLoader interface {
	Load() (settings.Settings, error)
}

// ConditionsProvider supplies current weather conditions for the job
// environment. Optional; defaults are used when nil or on failure.
type ConditionsProvider interface {
	CurrentConditions(ctx context.Context, loc report.Location) (report.Conditions, error)
}

// MetricsSink records job scheduler metrics. Methods must not block.
type MetricsSink interface {
	JobCycleCompleted(duration time.Duration, targets int)
	JobTargetCompleted(result string, duration time.Duration)
	JobTriggerSkipped()
}

// TriggerResult reports the outcome of a manual trigger request.
type TriggerResult struct {
	Status string `json:"status"` // "triggered" or "skipped"
	Reason string `json:"reason,omitempty"`
}

// Config holds the scheduler's timing and paths.
type Config struct {
	PollInterval time.Duration // how often the loop checks for work
	Interval     time.Duration // gap between scheduled full cycles
	RunTimeout   time.Duration // hard timeout per target run

	// CronExpression optionally replaces the fixed interval with a cron
	// schedule (standard 5-field syntax).
	CronExpression string

	DataDir   string // status + trigger files
	ConfigDir string // generated per-target configs
	OutputDir string // per-target artifacts and logs
}

// Scheduler owns the job execution loop. Only the process holding the
// job_scheduler leader lock should Run it; other processes use
// ReadRemoteStatus and WriteTriggerMarker.
type Scheduler struct {
	config     Config
	loader     SettingsLoader
	runner     JobRunner
	conditions ConditionsProvider // optional, nil = defaults
	metrics    MetricsSink        // optional, nil = disabled
	clock      func() time.Time
	cronSched  cron.Schedule // nil unless CronExpression set

	// execMu is held for the duration of a full cycle; TryLock gives
	// the "skipped - already running" trigger semantics.
	execMu sync.Mutex

	mu       sync.Mutex // guards the status fields below
	running  bool
	lastRun  *time.Time
	progress domain.JobProgress
	execFlag bool
	started  time.Time
}

// New creates a scheduler. Returns an error for an invalid cron
// expression; timing defaults are applied for zero values.
func New(config Config, loader SettingsLoader, runner JobRunner) (*Scheduler, error) {
	if config.PollInterval == 0 {
		config.PollInterval = time.Minute
	}
	if config.Interval == 0 {
		config.Interval = 7201 * time.Second
	}
	if config.RunTimeout == 0 {
		config.RunTimeout = 10 * time.Minute
	}

	s := &Scheduler{
		config: config,
		loader: loader,
		runner: runner,
		clock:  time.Now,
	}

	if config.CronExpression != "" {
		sched, err := cron.ParseStandard(config.CronExpression)
		if err != nil {
			return nil, fmt.Errorf("parse cron expression: %w", err)
		}
		s.cronSched = sched
	}

	for _, dir := range []string{config.DataDir, config.ConfigDir, config.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create dir %s: %w", dir, err)
		}
	}
	return s, nil
}

// WithConditions attaches a weather conditions provider.
func (s *Scheduler) WithConditions(p ConditionsProvider) *Scheduler {
	s.conditions = p
	return s
}

// WithMetrics attaches a metrics sink to the scheduler.
func (s *Scheduler) WithMetrics(sink MetricsSink) *Scheduler {
	s.metrics = sink
	return s
}

// Run polls for work until ctx is cancelled. Each poll consumes the
// manual trigger marker if present and starts a cycle when triggered or
// when the schedule is due.
func (s *Scheduler) Run(ctx context.Context) {
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()
	s.publishStatus()

	log.Printf("jobsched: started (poll=%s, interval=%s, cron=%q)",
		s.config.PollInterval, s.config.Interval, s.config.CronExpression)

	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
			s.publishStatus()
			log.Println("jobsched: stopped")
			return
		case <-ticker.C:
			manual := s.consumeTrigger()
			if manual {
				log.Println("jobsched: manual trigger detected")
			}
			if manual || s.due() {
				s.runCycle(ctx)
			}
		}
	}
}

// TriggerNow requests an immediate cycle. If a cycle is already
// executing the request is dropped, not queued.
func (s *Scheduler) TriggerNow(ctx context.Context) TriggerResult {
	if !s.execMu.TryLock() {
		log.Println("jobsched: manual trigger requested but execution already in progress")
		if s.metrics != nil {
			s.metrics.JobTriggerSkipped()
		}
		return TriggerResult{Status: "skipped", Reason: "execution already in progress"}
	}

	log.Println("jobsched: manual trigger requested")
	go func() {
		defer s.execMu.Unlock()
		s.runCycleLocked(ctx)
	}()
	return TriggerResult{Status: "triggered"}
}

// Status returns the current snapshot and publishes it to the status
// file for remote workers.
func (s *Scheduler) Status() domain.SchedulerStatus {
	status := s.snapshot()
	s.writeStatusFile(status)
	return status
}

func (s *Scheduler) snapshot() domain.SchedulerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := domain.SchedulerStatus{
		Running:     s.running,
		LastRun:     s.lastRun,
		IsExecuting: s.execFlag,
		Progress:    s.progress,
	}
	if s.lastRun != nil {
		next := s.nextRunAfter(*s.lastRun)
		status.NextRun = &next
	}
	if s.execFlag && !s.started.IsZero() {
		elapsed := int64(s.clock().Sub(s.started).Seconds())
		status.Progress.ExecutionDurationSeconds = &elapsed
	}
	return status
}

func (s *Scheduler) nextRunAfter(last time.Time) time.Time {
	if s.cronSched != nil {
		return s.cronSched.Next(last)
	}
	return last.Add(s.config.Interval)
}

func (s *Scheduler) due() bool {
	s.mu.Lock()
	last := s.lastRun
	s.mu.Unlock()

	if last == nil {
		return true
	}
	return !s.clock().Before(s.nextRunAfter(*last))
}

// consumeTrigger checks for and deletes the manual trigger marker.
func (s *Scheduler) consumeTrigger() bool {
	path := filepath.Join(s.config.DataDir, triggerFileName)
	if _, err := os.Stat(path); err != nil {
		return false
	}
	if err := os.Remove(path); err != nil {
		log.Printf("jobsched: failed to remove trigger marker: %v", err)
		return false
	}
	return true
}

func (s *Scheduler) runCycle(ctx context.Context) {
	if !s.execMu.TryLock() {
		log.Println("jobsched: execution already in progress, skipping new run")
		return
	}
	defer s.execMu.Unlock()
	s.runCycleLocked(ctx)
}

// runCycleLocked executes one full cycle. Caller holds execMu.
func (s *Scheduler) runCycleLocked(ctx context.Context) {
	cycleStart := s.clock()
	log.Println("jobsched: starting execution cycle")

	s.mu.Lock()
	s.lastRun = &cycleStart
	s.execFlag = true
	s.mu.Unlock()
	s.publishStatus()

	defer func() {
		s.mu.Lock()
		s.progress = domain.JobProgress{}
		s.execFlag = false
		s.started = time.Time{}
		s.mu.Unlock()
		s.publishStatus()
	}()

	cfg, err := s.loader.Load()
	if err != nil {
		log.Printf("jobsched: cannot load settings, aborting cycle: %v", err)
		return
	}

	targets := cfg.SelectedCatalogues
	if len(targets) == 0 {
		log.Println("jobsched: no targets selected, skipping cycle")
		return
	}

	if p, ok := s.runner.(Preparer); ok {
		if err := p.Prepare(ctx); err != nil {
			log.Printf("jobsched: runner prepare failed: %v", err)
		}
	}

	cond := s.currentConditions(ctx, cfg)
	log.Printf("jobsched: executing %d targets (T=%.1f°C, P=%.3f bar, RH=%.0f%%)",
		len(targets), cond.Temperature, cond.Pressure, cond.RelativeHumidity*100)

	for idx, target := range targets {
		if ctx.Err() != nil {
			log.Println("jobsched: stop requested mid-cycle")
			return
		}

		s.mu.Lock()
		s.progress = domain.JobProgress{
			CurrentTarget: target,
			CurrentIndex:  idx + 1,
			TotalTargets:  len(targets),
		}
		s.started = s.clock()
		s.mu.Unlock()
		s.publishStatus()

		log.Printf("jobsched: processing target %d/%d: %s", idx+1, len(targets), target)
		if err := s.runTarget(ctx, cfg, target, cond); err != nil {
			log.Printf("jobsched: target %s failed: %v", target, err)
		}
	}

	log.Println("jobsched: execution cycle completed")
	if s.metrics != nil {
		s.metrics.JobCycleCompleted(s.clock().Sub(cycleStart), len(targets))
	}
}

func (s *Scheduler) currentConditions(ctx context.Context, cfg settings.Settings) report.Conditions {
	if s.conditions == nil {
		return report.DefaultConditions()
	}
	loc := report.Location{
		Latitude:  cfg.Location.Latitude,
		Longitude: cfg.Location.Longitude,
		Elevation: cfg.Location.Elevation,
		Timezone:  cfg.Location.Timezone,
	}
	cond, err := s.conditions.CurrentConditions(ctx, loc)
	if err != nil {
		log.Printf("jobsched: weather unavailable, using default conditions: %v", err)
		return report.DefaultConditions()
	}
	return cond
}

// runTarget executes the job for one target: clean output dir, write
// config, run with the hard timeout, write the log artifact.
func (s *Scheduler) runTarget(ctx context.Context, cfg settings.Settings, target string, cond report.Conditions) error {
	safe := safeTargetName(target)
	outputDir := filepath.Join(s.config.OutputDir, safe)
	configPath := filepath.Join(s.config.ConfigDir, "config_"+safe+".yaml")

	if err := cleanDir(outputDir); err != nil {
		return fmt.Errorf("clean output dir: %w", err)
	}

	configData, err := buildTargetConfig(cfg, target, cond)
	if err != nil {
		return fmt.Errorf("build config: %w", err)
	}
	if err := os.WriteFile(configPath, configData, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	runID := uuid.New()
	result := s.runner.Run(ctx, configPath, outputDir, s.config.RunTimeout)

	if err := s.writeRunLog(outputDir, runID, result); err != nil {
		log.Printf("jobsched: could not write run log for %s: %v", target, err)
	}

	outcome := "success"
	switch {
	case result.TimedOut:
		outcome = "timeout"
		log.Printf("jobsched: target %s timed out after %s (run=%s)", target, s.config.RunTimeout, runID)
	case result.Err != nil:
		outcome = "error"
		log.Printf("jobsched: target %s runner error: %v (run=%s)", target, result.Err, runID)
	case result.ExitCode != 0:
		outcome = "failed"
		log.Printf("jobsched: target %s exited with code %d (run=%s)", target, result.ExitCode, runID)
	default:
		log.Printf("jobsched: target %s completed in %s (run=%s)", target, result.Duration, runID)
	}

	if s.metrics != nil {
		s.metrics.JobTargetCompleted(outcome, result.Duration)
	}
	if result.Failed() {
		return fmt.Errorf("run %s: outcome=%s exit=%d", runID, outcome, result.ExitCode)
	}
	return nil
}

func (s *Scheduler) writeRunLog(outputDir string, runID uuid.UUID, result RunResult) error {
	content := fmt.Sprintf("=== Run %s ===\n=== STDOUT ===\n%s\n=== STDERR ===\n%s\n\n=== Exit code: %d ===\n",
		runID, result.Stdout, result.Stderr, result.ExitCode)
	if result.TimedOut {
		content += "=== Timed out ===\n"
	}
	return os.WriteFile(filepath.Join(outputDir, logFileName), []byte(content), 0o644)
}

// publishStatus serializes the current snapshot to the status file so
// non-leader workers answer status queries faithfully.
func (s *Scheduler) publishStatus() {
	s.writeStatusFile(s.snapshot())
}

func (s *Scheduler) writeStatusFile(status domain.SchedulerStatus) {
	raw, err := json.Marshal(status)
	if err != nil {
		log.Printf("jobsched: marshal status: %v", err)
		return
	}
	path := filepath.Join(s.config.DataDir, statusFileName)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		log.Printf("jobsched: write status file: %v", err)
	}
}

// cleanDir empties dir (creating it if absent) so a cycle never mixes
// its artifacts with a previous run's.
func cleanDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

// ReadRemoteStatus reads the leader's status file. Used by workers that
// did not win the job_scheduler lock. Returns an error when the leader
// has not published yet.
func ReadRemoteStatus(dataDir string) (domain.SchedulerStatus, error) {
	raw, err := os.ReadFile(filepath.Join(dataDir, statusFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.SchedulerStatus{}, fmt.Errorf("status file not published yet")
		}
		return domain.SchedulerStatus{}, fmt.Errorf("read status file: %w", err)
	}

	var status domain.SchedulerStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		return domain.SchedulerStatus{}, fmt.Errorf("parse status file: %w", err)
	}
	status.Worker = "remote"
	return status, nil
}

// WriteTriggerMarker creates the trigger marker a non-leader worker uses
// to request a run it cannot perform itself. The leader consumes the
// marker on its next poll.
func WriteTriggerMarker(dataDir string) error {
	path := filepath.Join(dataDir, triggerFileName)
	if err := os.WriteFile(path, []byte("trigger_now"), 0o644); err != nil {
		return fmt.Errorf("write trigger marker: %w", err)
	}
	return nil
}
