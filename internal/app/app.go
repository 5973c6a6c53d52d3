// Package app wires repositories, the engagement engine and services for the
// server, worker and simctl processes.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/ad-tracker/video-engagement-sim/internal/config"
	"github.com/ad-tracker/video-engagement-sim/internal/db"
	"github.com/ad-tracker/video-engagement-sim/internal/db/repository"
	"github.com/ad-tracker/video-engagement-sim/internal/engagement"
	"github.com/ad-tracker/video-engagement-sim/internal/generator"
	"github.com/ad-tracker/video-engagement-sim/internal/jobs"
	"github.com/ad-tracker/video-engagement-sim/internal/queue"
	"github.com/ad-tracker/video-engagement-sim/internal/service"
	"github.com/ad-tracker/video-engagement-sim/internal/validation"
	"github.com/ad-tracker/video-engagement-sim/pkg/logger"
)

// Repositories are the postgres-backed stores.
type Repositories struct {
	Categories repository.CategoryRepository
	Videos     repository.VideoRepository
	Comments   repository.CommentRepository
	Runs       repository.JobRunRepository
}

// App holds everything a process shares.
type App struct {
	Config *config.Config
	Pool   *pgxpool.Pool
	Repos  Repositories
	Source *generator.Source
	Engine *engagement.Engine
	Valid  *validation.Validator
}

// New connects to postgres and builds the shared collaborators.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	pool, err := db.NewPool(ctx, cfg.DB())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	logger.Log.Info("Database connection established",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.Name),
		zap.Int32("max_conns", pool.Config().MaxConns))

	repos := Repositories{
		Categories: repository.NewCategoryRepository(pool),
		Videos:     repository.NewVideoRepository(pool),
		Comments:   repository.NewCommentRepository(pool),
		Runs:       repository.NewJobRunRepository(pool),
	}

	src := generator.NewSource(cfg.Generator.Seed)

	return &App{
		Config: cfg,
		Pool:   pool,
		Repos:  repos,
		Source: src,
		Engine: engagement.NewEngine(repos.Comments, src),
		Valid:  validation.New(),
	}, nil
}

// Close releases the database pool.
func (a *App) Close() {
	db.Close(a.Pool)
}

// Runner builds a job runner. locker and publisher may be nil.
func (a *App) Runner(locker jobs.Locker, publisher jobs.Publisher) *jobs.Runner {
	return jobs.NewRunner(jobs.Deps{
		Categories: a.Repos.Categories,
		Videos:     a.Repos.Videos,
		Comments:   a.Repos.Comments,
		Runs:       a.Repos.Runs,
		Engine:     a.Engine,
		Source:     a.Source,
		Locker:     locker,
		Publisher:  publisher,
	}, a.Config.JobRunner())
}

// Locker connects the redis that holds job leases. When redis is unusable the
// locker is nil and jobs run without a lease; the returned func closes the client.
func (a *App) Locker(ctx context.Context) (jobs.Locker, func()) {
	client, err := queue.NewRedisClient(a.Config.Redis.URL)
	if err != nil {
		logger.Log.Warn("Invalid redis URL, job leases disabled", zap.Error(err))
		return nil, func() {}
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		logger.Log.Warn("Redis unreachable, job leases disabled",
			zap.String("redis_url", a.Config.Redis.URL),
			zap.Error(err))
		return nil, func() {}
	}

	return queue.NewRedisLocker(client), func() { _ = client.Close() }
}

// Services groups the application services.
type Services struct {
	Categories *service.CategoryService
	Videos     *service.VideoService
	Comments   *service.CommentService
	Engagement *service.EngagementService
	Jobs       *service.JobService
	Seed       *service.SeedService
}

// Services builds every service over the shared repositories. enqueuer may be nil.
func (a *App) Services(runner *jobs.Runner, enqueuer service.Enqueuer) *Services {
	r := a.Repos
	return &Services{
		Categories: service.NewCategoryService(r.Categories, a.Valid),
		Videos:     service.NewVideoService(r.Videos, r.Categories, a.Valid),
		Comments:   service.NewCommentService(r.Comments, r.Videos, a.Valid),
		Engagement: service.NewEngagementService(r.Videos, r.Comments, r.Categories, r.Runs, a.Engine, a.Valid),
		Jobs:       service.NewJobService(runner, enqueuer, r.Runs),
		Seed:       service.NewSeedService(r.Categories, r.Videos, r.Comments, a.Engine, a.Source),
	}
}

// Publisher connects the job event publisher when RabbitMQ is enabled.
// Connection failures are logged and leave the publisher nil.
func (a *App) Publisher() *service.MessagePublisher {
	if !a.Config.RabbitMQ.Enabled {
		logger.Log.Info("RabbitMQ disabled, job runs will not be published")
		return nil
	}

	publisher, err := service.NewMessagePublisher(&a.Config.RabbitMQ)
	if err != nil {
		logger.Log.Warn("Failed to connect to RabbitMQ, job runs will not be published", zap.Error(err))
		return nil
	}

	logger.Log.Info("RabbitMQ publisher connected", zap.String("exchange", a.Config.RabbitMQ.Exchange))
	return publisher
}
