package jobs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/ad-tracker/video-engagement-sim/internal/db/models"
	"github.com/ad-tracker/video-engagement-sim/internal/db/repository"
	"github.com/ad-tracker/video-engagement-sim/internal/engagement"
	"github.com/ad-tracker/video-engagement-sim/internal/generator"
	"github.com/ad-tracker/video-engagement-sim/internal/metrics"
	"github.com/ad-tracker/video-engagement-sim/pkg/logger"
)

// Deps are the collaborators a Runner needs. Locker and Publisher may be nil.
type Deps struct {
	Categories repository.CategoryRepository
	Videos     repository.VideoRepository
	Comments   repository.CommentRepository
	Runs       repository.JobRunRepository
	Engine     *engagement.Engine
	Source     *generator.Source
	Locker     Locker
	Publisher  Publisher
}

// Config tunes retries, leases and timeouts.
type Config struct {
	MaxRetries int
	RetryDelay time.Duration
	LeaseTTL   time.Duration
	Timeout    time.Duration
}

// DefaultConfig retries three times, one minute apart.
func DefaultConfig() Config {
	return Config{
		MaxRetries: 3,
		RetryDelay: 60 * time.Second,
		LeaseTTL:   30 * time.Minute,
		Timeout:    10 * time.Minute,
	}
}

// Runner executes registered jobs.
type Runner struct {
	deps     Deps
	cfg      Config
	videoGen *generator.VideoGenerator
	registry map[string]JobFunc
	now      func() time.Time
}

// NewRunner creates a Runner with every job registered.
func NewRunner(deps Deps, cfg Config) *Runner {
	r := &Runner{
		deps:     deps,
		cfg:      cfg,
		videoGen: generator.NewVideoGenerator(deps.Source),
		now:      time.Now,
	}

	r.registry = map[string]JobFunc{
		TaskPopularComments:   r.popularComments,
		TaskReplyRecent:       r.replyRecent,
		TaskCleanupAI:         r.cleanupAI,
		TaskUpdateStats:       r.updateStats,
		TaskUserCommentsBatch: r.userCommentsBatch,
		TaskGenerateContent:   r.generateContent,
	}

	return r
}

// Config returns the runner's retry settings.
func (r *Runner) Config() Config {
	return r.cfg
}

// Names lists the registered jobs in sorted order.
func (r *Runner) Names() []string {
	names := make([]string, 0, len(r.registry))
	for name := range r.registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether name is registered.
func (r *Runner) Has(name string) bool {
	_, ok := r.registry[name]
	return ok
}

// Run executes name now, retrying transient failures with a constant delay.
// The returned run is the last attempt's record.
func (r *Runner) Run(ctx context.Context, name string, params Params) (*models.JobRun, error) {
	if !r.Has(name) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}

	var (
		run     *models.JobRun
		attempt int
	)

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(r.cfg.RetryDelay), uint64(r.cfg.MaxRetries)),
		ctx,
	)

	op := func() error {
		attempt++
		var err error
		run, err = r.Attempt(ctx, name, params, attempt, attempt > r.cfg.MaxRetries)
		if err != nil && IsPermanent(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		logger.Log.Warn("Job attempt failed, retrying",
			zap.String("task", name),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err))
	}

	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return run, err
	}
	return run, nil
}

// Attempt executes name once. attempt is 1-based. The run is recorded and
// published when it completes, is skipped, fails permanently, or when final
// is set; intermediate failures are left to the caller's retry.
func (r *Runner) Attempt(ctx context.Context, name string, params Params, attempt int, final bool) (*models.JobRun, error) {
	job, ok := r.registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}

	run := models.NewJobRun(name, r.now())
	run.Attempts = attempt

	release, err := r.lock(ctx, name)
	if err != nil {
		if errors.Is(err, ErrLeaseHeld) {
			run.Skip(ErrLeaseHeld.Error(), r.now())
			logger.Log.Info("Job skipped, lease held", zap.String("task", name))
			r.finish(ctx, run)
			return run, nil
		}
		return nil, fmt.Errorf("acquire lease for %s: %w", name, err)
	}
	defer release()

	jobCtx := ctx
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	logger.Log.Info("Job started", zap.String("task", name), zap.Int("attempt", attempt))

	jobErr := job(jobCtx, params, run)
	run.Finish(jobErr, r.now())

	if jobErr == nil || final || IsPermanent(jobErr) {
		r.finish(ctx, run)
	}

	if jobErr != nil {
		logger.Log.Error("Job failed",
			zap.String("task", name),
			zap.Int("attempt", attempt),
			zap.Bool("final", final),
			zap.Error(jobErr))
		return run, fmt.Errorf("job %s: %w", name, jobErr)
	}

	logger.Log.Info("Job completed",
		zap.String("task", name),
		zap.Int("processed", run.Processed),
		zap.Int("created", run.Created),
		zap.Int("deleted", run.Deleted),
		zap.Duration("duration", run.Duration()))

	return run, nil
}

// lock takes the job's lease. Without a Locker every run proceeds.
func (r *Runner) lock(ctx context.Context, name string) (func(), error) {
	if r.deps.Locker == nil {
		return func() {}, nil
	}

	unlock, err := r.deps.Locker.TryLock(ctx, leaseKey(name), r.cfg.LeaseTTL)
	if err != nil {
		return nil, err
	}

	return func() {
		// The job context may be done; release on a fresh one.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := unlock(releaseCtx); err != nil {
			logger.Log.Warn("Failed to release job lease", zap.String("task", name), zap.Error(err))
		}
	}, nil
}

// finish persists, publishes and counts a run. Failures here never fail the job.
func (r *Runner) finish(ctx context.Context, run *models.JobRun) {
	metrics.ObserveJob(run.Task, string(run.Status), run.Attempts, run.Duration())

	if r.deps.Runs != nil {
		if err := r.deps.Runs.Record(ctx, run); err != nil {
			logger.Log.Warn("Failed to record job run", zap.String("task", run.Task), zap.Error(err))
		}
	}

	if r.deps.Publisher != nil {
		if err := r.deps.Publisher.PublishJobRun(ctx, run); err != nil {
			logger.Log.Warn("Failed to publish job run", zap.String("task", run.Task), zap.Error(err))
		}
	}
}
