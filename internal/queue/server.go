package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/ad-tracker/video-engagement-sim/pkg/logger"
)

// ServerConfig tunes the task server.
type ServerConfig struct {
	Concurrency     int
	RetryDelay      time.Duration
	ShutdownTimeout time.Duration
}

// TaskServer runs the asynq worker as a supervised service. Each Serve call
// builds a fresh asynq server since a stopped one cannot be restarted.
type TaskServer struct {
	redisOpt asynq.RedisClientOpt
	handler  *TaskHandler
	cfg      ServerConfig
}

// NewTaskServer creates a TaskServer.
func NewTaskServer(redisOpt asynq.RedisClientOpt, handler *TaskHandler, cfg ServerConfig) *TaskServer {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 60 * time.Second
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	return &TaskServer{redisOpt: redisOpt, handler: handler, cfg: cfg}
}

func (s *TaskServer) asynqConfig() asynq.Config {
	delay := s.cfg.RetryDelay
	return asynq.Config{
		Concurrency: s.cfg.Concurrency,
		Queues: map[string]int{
			QueueCritical: 6,
			QueueDefault:  3,
		},
		RetryDelayFunc: func(int, error, *asynq.Task) time.Duration {
			return delay
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(_ context.Context, task *asynq.Task, err error) {
			logger.Log.Error("Task failed",
				zap.String("task", task.Type()),
				zap.Bool("skip_retry", errors.Is(err, asynq.SkipRetry)),
				zap.Error(err))
		}),
		Logger:          logger.Named("asynq").Sugar(),
		ShutdownTimeout: s.cfg.ShutdownTimeout,
	}
}

// Serve implements suture.Service.
func (s *TaskServer) Serve(ctx context.Context) error {
	srv := asynq.NewServer(s.redisOpt, s.asynqConfig())

	if err := srv.Start(s.handler.Mux()); err != nil {
		return fmt.Errorf("start task server: %w", err)
	}
	logger.Log.Info("Task server started", zap.Int("concurrency", s.cfg.Concurrency))

	<-ctx.Done()

	srv.Shutdown()
	logger.Log.Info("Task server stopped")
	return ctx.Err()
}

// String implements fmt.Stringer for supervisor logs.
func (s *TaskServer) String() string {
	return "task-server"
}
