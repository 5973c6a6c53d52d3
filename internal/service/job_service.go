package service

import (
	"context"
	"errors"

	"github.com/ad-tracker/video-engagement-sim/internal/db"
	"github.com/ad-tracker/video-engagement-sim/internal/db/models"
	"github.com/ad-tracker/video-engagement-sim/internal/db/repository"
	"github.com/ad-tracker/video-engagement-sim/internal/generator"
	"github.com/ad-tracker/video-engagement-sim/internal/jobs"
)

// Enqueuer hands a job to the task queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, name string, params jobs.Params, source string) (string, error)
}

// JobService runs jobs on demand and lists their history.
type JobService struct {
	runner   *jobs.Runner
	enqueuer Enqueuer
	runs     repository.JobRunRepository
}

// NewJobService creates a JobService. enqueuer may be nil, in which case
// Enqueue reports the queue as unavailable.
func NewJobService(runner *jobs.Runner, enqueuer Enqueuer, runs repository.JobRunRepository) *JobService {
	return &JobService{runner: runner, enqueuer: enqueuer, runs: runs}
}

// ErrQueueUnavailable is returned by Enqueue when no queue is configured.
var ErrQueueUnavailable = errors.New("task queue is not configured")

// Names lists the registered jobs.
func (s *JobService) Names() []string {
	return s.runner.Names()
}

// Run executes a job synchronously with the runner's retry policy. A run that
// failed after its retries is returned without an error; its status and message
// carry the outcome.
func (s *JobService) Run(ctx context.Context, name string, params jobs.Params) (*models.JobRun, error) {
	run, err := s.runner.Run(ctx, name, params)
	return s.outcome(run, err, params)
}

// RunOnce executes a single attempt with no retries. HTTP callers use it so a
// request never waits out the retry delays; retried runs go through Enqueue.
func (s *JobService) RunOnce(ctx context.Context, name string, params jobs.Params) (*models.JobRun, error) {
	run, err := s.runner.Attempt(ctx, name, params, 1, true)
	return s.outcome(run, err, params)
}

func (s *JobService) outcome(run *models.JobRun, err error, params jobs.Params) (*models.JobRun, error) {
	switch {
	case err == nil:
		return run, nil
	case errors.Is(err, jobs.ErrUnknownJob), errors.Is(err, jobs.ErrMissingVideoID):
		return nil, &ValidationError{Message: err.Error()}
	case errors.Is(err, generator.ErrNoCategories), errors.Is(err, generator.ErrNoVideos):
		return run, err
	case db.IsNotFound(err):
		return nil, &NotFoundError{Resource: "video", ID: params.VideoID}
	case run != nil:
		return run, nil
	}
	return nil, &ProcessingError{Message: "failed to run job", Cause: err}
}

// Enqueue hands a job to the worker and returns the task id.
func (s *JobService) Enqueue(ctx context.Context, name string, params jobs.Params, source string) (string, error) {
	if !jobs.Known(name) {
		return "", &ValidationError{Message: jobs.ErrUnknownJob.Error() + ": " + name}
	}
	if name == jobs.TaskUserCommentsBatch && params.VideoID == 0 {
		return "", &ValidationError{Message: jobs.ErrMissingVideoID.Error()}
	}
	if s.enqueuer == nil {
		return "", &ProcessingError{Message: "failed to enqueue job", Cause: ErrQueueUnavailable}
	}

	id, err := s.enqueuer.Enqueue(ctx, name, params, source)
	if err != nil {
		return "", &ProcessingError{Message: "failed to enqueue job", Cause: err}
	}
	return id, nil
}

// ListRuns returns recorded runs, newest first.
func (s *JobService) ListRuns(ctx context.Context, filters repository.JobRunFilters) ([]*models.JobRun, int, error) {
	if filters.Task != "" && !jobs.Known(filters.Task) {
		return nil, 0, &ValidationError{Message: jobs.ErrUnknownJob.Error() + ": " + filters.Task}
	}
	runs, total, err := s.runs.List(ctx, filters)
	if err != nil {
		return nil, 0, &ProcessingError{Message: "failed to list job runs", Cause: err}
	}
	return runs, total, nil
}
