package queue

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/ad-tracker/video-engagement-sim/internal/db/models"
	"github.com/ad-tracker/video-engagement-sim/internal/jobs"
	"github.com/ad-tracker/video-engagement-sim/pkg/logger"
)

// JobExecutor runs a single attempt of a job.
type JobExecutor interface {
	Attempt(ctx context.Context, name string, params jobs.Params, attempt int, final bool) (*models.JobRun, error)
}

// TaskHandler adapts a JobExecutor to asynq.
type TaskHandler struct {
	executor JobExecutor
}

// NewTaskHandler creates a TaskHandler.
func NewTaskHandler(executor JobExecutor) *TaskHandler {
	return &TaskHandler{executor: executor}
}

// ProcessTask implements asynq.Handler.
func (h *TaskHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	payload, err := UnmarshalJobPayload(task.Payload())
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	retried, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)
	attempt := retried + 1
	final := retried >= maxRetry

	run, err := h.executor.Attempt(ctx, task.Type(), payload.Params, attempt, final)
	if err != nil {
		if jobs.IsPermanent(err) {
			return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
		}
		return err
	}

	if w := task.ResultWriter(); w != nil {
		if body, mErr := json.Marshal(run); mErr == nil {
			if _, wErr := w.Write(body); wErr != nil {
				logger.Log.Debug("Failed to write task result", zap.String("task", task.Type()), zap.Error(wErr))
			}
		}
	}

	return nil
}

// Mux routes every known job name to h.
func (h *TaskHandler) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	for _, name := range jobs.All {
		mux.Handle(name, h)
	}
	return mux
}
