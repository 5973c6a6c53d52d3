package models

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus is the outcome of a job run.
type JobStatus string

// JobStatus constants.
const (
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusSkipped   JobStatus = "skipped"
)

// JobRun is the summary record of one job execution.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type JobRun struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Task       string    `db:"task" json:"task"`
	Status     JobStatus `db:"status" json:"status"`
	Processed  int       `db:"processed" json:"processed"`
	Created    int       `db:"created" json:"created"`
	Deleted    int       `db:"deleted" json:"deleted"`
	Attempts   int       `db:"attempts" json:"attempts"`
	Error      *string   `db:"error" json:"error,omitempty"`
	StartedAt  time.Time `db:"started_at" json:"started_at"`
	FinishedAt time.Time `db:"finished_at" json:"timestamp"`
}

// NewJobRun starts a summary record for task.
func NewJobRun(task string, now time.Time) *JobRun {
	return &JobRun{
		ID:        uuid.New(),
		Task:      task,
		StartedAt: now,
	}
}

// Finish stamps the outcome. A nil error means completed.
func (r *JobRun) Finish(err error, now time.Time) {
	r.FinishedAt = now
	if err != nil {
		msg := err.Error()
		r.Error = &msg
		r.Status = JobStatusFailed
		return
	}
	r.Status = JobStatusCompleted
}

// Skip marks a run that never executed.
func (r *JobRun) Skip(reason string, now time.Time) {
	r.FinishedAt = now
	r.Status = JobStatusSkipped
	r.Error = &reason
}

// Duration is the wall time the run took.
func (r *JobRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
