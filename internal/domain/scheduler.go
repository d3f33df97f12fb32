package domain

import "time"

// JobProgress tracks the position of an executing job cycle.
// Mutated only by the scheduler leader; serialized into the status file
// so non-leader workers can answer status queries.
type JobProgress struct {
	CurrentTarget            string `json:"current_target"`
	CurrentIndex             int    `json:"current_index"`
	TotalTargets             int    `json:"total_targets"`
	ExecutionDurationSeconds *int64 `json:"execution_duration_seconds"`
}

// SchedulerStatus is the status snapshot published after every job
// scheduler state transition.
type SchedulerStatus struct {
	Running     bool        `json:"running"`
	LastRun     *time.Time  `json:"last_run"`
	NextRun     *time.Time  `json:"next_run"`
	IsExecuting bool        `json:"is_executing"`
	Progress    JobProgress `json:"progress"`

	// Worker is "remote" when the snapshot was read from the status file
	// by a process that is not the scheduler leader.
	Worker string `json:"worker,omitempty"`
}
