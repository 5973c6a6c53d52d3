package jobs

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ad-tracker/video-engagement-sim/internal/db"
	"github.com/ad-tracker/video-engagement-sim/internal/db/models"
	"github.com/ad-tracker/video-engagement-sim/internal/generator"
	"github.com/ad-tracker/video-engagement-sim/internal/metrics"
	"github.com/ad-tracker/video-engagement-sim/pkg/logger"
)

// maxRefreshFailures consecutive store errors fail an updateStats run.
const maxRefreshFailures = 3

// updateStats nudges views and likes of every published video upward and
// recomputes its comment count. A single failed video is skipped; a streak of
// failures fails the run so it is retried.
func (r *Runner) updateStats(ctx context.Context, _ Params, run *models.JobRun) error {
	ids, err := r.deps.Videos.ListPublishedIDs(ctx)
	if err != nil {
		return fmt.Errorf("list published videos: %w", err)
	}

	failures := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}

		views := int64(r.deps.Source.IntRange(0, 20))
		likes := int64(r.deps.Source.IntRange(0, 3))

		if _, err := r.deps.Videos.RefreshStatistics(ctx, id, views, likes); err != nil {
			if errors.Is(err, db.ErrNotFound) {
				continue
			}
			failures++
			if failures >= maxRefreshFailures {
				return fmt.Errorf("refresh video %d after %d consecutive failures: %w", id, failures, err)
			}
			logger.Log.Warn("Failed to refresh video statistics", zap.Int64("video_id", id), zap.Error(err))
			continue
		}
		failures = 0
		run.Processed++
	}

	return nil
}

// generateContent creates Count videos in the named category, or across all
// active categories when no name is given or the name is unknown.
func (r *Runner) generateContent(ctx context.Context, params Params, run *models.JobRun) error {
	categories, err := r.contentCategories(ctx, params.Category)
	if err != nil {
		return err
	}
	if len(categories) == 0 {
		return generator.ErrNoCategories
	}

	count := params.Count
	if count <= 0 {
		count = 1
	}

	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		video, err := r.videoGen.Generate(categories)
		if err != nil {
			return err
		}

		if err := r.deps.Videos.Create(ctx, video); err != nil {
			logger.Log.Warn("Failed to create generated video", zap.String("title", video.Title), zap.Error(err))
			continue
		}

		run.Created++
		metrics.VideosCreated.Inc()
	}

	run.Processed = count
	return nil
}

func (r *Runner) contentCategories(ctx context.Context, name string) ([]*models.Category, error) {
	if name != "" {
		category, err := r.deps.Categories.GetByName(ctx, name)
		switch {
		case err == nil:
			return []*models.Category{category}, nil
		case !errors.Is(err, db.ErrNotFound):
			return nil, fmt.Errorf("load category %q: %w", name, err)
		}
		logger.Log.Info("Unknown category, using all active", zap.String("category", name))
	}

	categories, err := r.deps.Categories.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}
