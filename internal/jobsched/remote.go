package jobsched

import (
	"context"
	"log"

	"github.com/WorldOfGZ/myastroboard/internal/domain"
)

// Remote answers scheduler status and trigger requests on workers that
// did not win the job_scheduler leader lock. Status comes from the
// leader's published file; triggers are forwarded through the marker.
type Remote struct {
	dataDir string
}

// NewRemote creates a remote control rooted at dataDir.
func NewRemote(dataDir string) *Remote {
	return &Remote{dataDir: dataDir}
}

// Status returns the last status the leader published. When the leader
// has not published yet, a zero status tagged "remote" is returned so
// the dashboard still renders.
func (r *Remote) Status() domain.SchedulerStatus {
	status, err := ReadRemoteStatus(r.dataDir)
	if err != nil {
		log.Printf("jobsched: remote status unavailable: %v", err)
		return domain.SchedulerStatus{Worker: "remote"}
	}
	return status
}

// TriggerNow writes the trigger marker for the leader to consume on its
// next poll.
func (r *Remote) TriggerNow(ctx context.Context) TriggerResult {
	if err := WriteTriggerMarker(r.dataDir); err != nil {
		return TriggerResult{Status: "error", Reason: err.Error()}
	}
	return TriggerResult{Status: "triggered", Reason: "forwarded to scheduler leader"}
}
