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

// Client enqueues jobs for the worker.
type Client struct {
	asynqClient *asynq.Client
	maxRetry    int
	timeout     time.Duration
}

// NewClient creates a queue client from a redis URL.
func NewClient(redisURL string, cfg jobs.Config) (*Client, error) {
	redisOpt, err := ParseRedisURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	return &Client{
		asynqClient: asynq.NewClient(redisOpt),
		maxRetry:    cfg.MaxRetries,
		timeout:     cfg.Timeout,
	}, nil
}

// Close closes the client connection.
func (c *Client) Close() error {
	return c.asynqClient.Close()
}

// Enqueue schedules job name for asynchronous execution and returns the task id.
func (c *Client) Enqueue(ctx context.Context, name string, params jobs.Params, source string) (string, error) {
	task, err := NewJobTask(name, params, source)
	if err != nil {
		return "", err
	}

	info, err := c.asynqClient.EnqueueContext(ctx, task, taskOptions(c.maxRetry, c.timeout)...)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue task: %w", err)
	}

	logger.Log.Info("Enqueued job",
		zap.String("task", name),
		zap.String("task_id", info.ID),
		zap.String("source", source))

	return info.ID, nil
}

func taskOptions(maxRetry int, timeout time.Duration) []asynq.Option {
	opts := []asynq.Option{
		asynq.MaxRetry(maxRetry),
		asynq.Queue(QueueDefault),
	}
	if timeout > 0 {
		opts = append(opts, asynq.Timeout(timeout))
	}
	return opts
}
