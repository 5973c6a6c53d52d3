package jobs

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ad-tracker/video-engagement-sim/internal/db/models"
	"github.com/ad-tracker/video-engagement-sim/internal/metrics"
	"github.com/ad-tracker/video-engagement-sim/pkg/logger"
)

// popularComments adds viewer comments to the most popular recent videos,
// answers some of them and occasionally posts a channel promotion.
func (r *Runner) popularComments(ctx context.Context, _ Params, run *models.JobRun) error {
	videos, err := r.deps.Videos.ListPopular(ctx, r.now().Add(-popularWindow), popularMinViews, popularLimit)
	if err != nil {
		return fmt.Errorf("select popular videos: %w", err)
	}

	for _, video := range videos {
		if err := ctx.Err(); err != nil {
			return err
		}

		n := r.deps.Source.IntRange(1, 3)
		for i := 0; i < n; i++ {
			comment := r.deps.Engine.UserComment(video)
			if !r.createComment(ctx, comment, metrics.SourceUser, run) {
				continue
			}

			if r.deps.Source.Chance(replyChance) {
				r.reply(ctx, comment, video, run)
			}
		}

		if r.deps.Source.Chance(promoChance) {
			promo, err := r.deps.Engine.Promotion(video, "")
			if err != nil {
				logger.Log.Warn("Failed to build promotion", zap.Int64("video_id", video.ID), zap.Error(err))
			} else {
				r.createComment(ctx, promo, metrics.SourcePromo, run)
			}
		}

		run.Processed++
	}

	return nil
}

// replyRecent answers recent viewer comments that have no replies yet.
func (r *Runner) replyRecent(ctx context.Context, _ Params, run *models.JobRun) error {
	comments, err := r.deps.Comments.ListReplyCandidates(ctx, r.now().Add(-replyWindow), replyLimit)
	if err != nil {
		return fmt.Errorf("select reply candidates: %w", err)
	}

	videos := make(map[int64]*models.Video)
	for _, comment := range comments {
		if err := ctx.Err(); err != nil {
			return err
		}

		video, ok := videos[comment.VideoID]
		if !ok {
			video, err = r.deps.Videos.GetByID(ctx, comment.VideoID)
			if err != nil {
				logger.Log.Warn("Skipping comment, video unavailable",
					zap.Int64("comment_id", comment.ID), zap.Error(err))
				continue
			}
			videos[comment.VideoID] = video
		}

		run.Processed++
		r.reply(ctx, comment, video, run)
	}

	return nil
}

// cleanupAI removes AI comments older than thirty days.
func (r *Runner) cleanupAI(ctx context.Context, _ Params, run *models.JobRun) error {
	deleted, err := r.deps.Comments.DeleteAIOlderThan(ctx, r.now().Add(-aiCommentMaxAge))
	if err != nil {
		return fmt.Errorf("delete old AI comments: %w", err)
	}

	run.Deleted = int(deleted)
	run.Processed = int(deleted)
	return nil
}

// userCommentsBatch adds Count simulated viewer comments to one video.
func (r *Runner) userCommentsBatch(ctx context.Context, params Params, run *models.JobRun) error {
	if params.VideoID == 0 {
		return ErrMissingVideoID
	}

	count := params.Count
	if count <= 0 {
		count = defaultBatchCount
	}

	video, err := r.deps.Videos.GetByID(ctx, params.VideoID)
	if err != nil {
		return fmt.Errorf("load video %d: %w", params.VideoID, err)
	}

	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.createComment(ctx, r.deps.Engine.UserComment(video), metrics.SourceUser, run)
	}

	run.Processed = 1
	return nil
}

// reply analyzes comment and writes the channel's answer when one is due.
func (r *Runner) reply(ctx context.Context, comment *models.Comment, video *models.Video, run *models.JobRun) {
	analysis, err := r.deps.Engine.Analyze(ctx, comment, video)
	if err != nil {
		logger.Log.Warn("Failed to analyze comment", zap.Int64("comment_id", comment.ID), zap.Error(err))
		return
	}

	if !analysis.ShouldReply {
		metrics.RepliesSkipped.Inc()
		logger.Log.Debug("No reply",
			zap.Int64("comment_id", comment.ID),
			zap.String("reasoning", analysis.Reasoning),
			zap.Float64("confidence", analysis.Confidence))
		return
	}

	r.createComment(ctx, r.deps.Engine.Reply(comment, video, analysis), metrics.SourceReply, run)
}

// createComment stores c and counts it. Item failures are logged and skipped.
func (r *Runner) createComment(ctx context.Context, c *models.Comment, source string, run *models.JobRun) bool {
	if err := r.deps.Comments.Create(ctx, c); err != nil {
		logger.Log.Warn("Failed to create comment",
			zap.Int64("video_id", c.VideoID),
			zap.String("source", source),
			zap.Error(err))
		return false
	}

	run.Created++
	metrics.CommentsCreated.WithLabelValues(source).Inc()
	return true
}
