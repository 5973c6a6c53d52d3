package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/ad-tracker/video-engagement-sim/internal/jobs"
	"github.com/ad-tracker/video-engagement-sim/pkg/logger"
)

// Schedule fires Task every Interval.
type Schedule struct {
	Task     string
	Interval time.Duration
}

// Spec is the cron spec asynq registers the schedule under.
func (s Schedule) Spec() string {
	return fmt.Sprintf("@every %s", s.Interval)
}

// Scheduler enqueues periodic jobs as a supervised service.
type Scheduler struct {
	redisOpt  asynq.RedisClientOpt
	schedules []Schedule
	jobCfg    jobs.Config
}

// NewScheduler creates a Scheduler. Schedules with a non-positive interval are dropped.
func NewScheduler(redisOpt asynq.RedisClientOpt, schedules []Schedule, jobCfg jobs.Config) *Scheduler {
	active := make([]Schedule, 0, len(schedules))
	for _, s := range schedules {
		if s.Interval > 0 {
			active = append(active, s)
		}
	}
	return &Scheduler{redisOpt: redisOpt, schedules: active, jobCfg: jobCfg}
}

// Schedules returns the active schedules.
func (s *Scheduler) Schedules() []Schedule {
	return s.schedules
}

// Serve implements suture.Service.
func (s *Scheduler) Serve(ctx context.Context) error {
	sch := asynq.NewScheduler(s.redisOpt, &asynq.SchedulerOpts{
		Logger: logger.Named("asynq-scheduler").Sugar(),
		PostEnqueueFunc: func(info *asynq.TaskInfo, err error) {
			if err != nil {
				logger.Log.Warn("Scheduled enqueue failed", zap.Error(err))
				return
			}
			logger.Log.Debug("Scheduled job enqueued", zap.String("task", info.Type), zap.String("task_id", info.ID))
		},
	})

	for _, sched := range s.schedules {
		task, err := NewJobTask(sched.Task, jobs.Params{}, "scheduler")
		if err != nil {
			return err
		}

		// At most one pending copy per interval.
		opts := append(taskOptions(s.jobCfg.MaxRetries, s.jobCfg.Timeout), asynq.Unique(sched.Interval))
		if _, err := sch.Register(sched.Spec(), task, opts...); err != nil {
			return fmt.Errorf("register schedule for %s: %w", sched.Task, err)
		}
		logger.Log.Info("Registered schedule", zap.String("task", sched.Task), zap.Duration("interval", sched.Interval))
	}

	if err := sch.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	<-ctx.Done()

	sch.Shutdown()
	return ctx.Err()
}

// String implements fmt.Stringer for supervisor logs.
func (s *Scheduler) String() string {
	return "scheduler"
}
