package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/ad-tracker/video-engagement-sim/internal/db/models"
	"github.com/ad-tracker/video-engagement-sim/internal/db/repository"
	"github.com/ad-tracker/video-engagement-sim/internal/engagement"
	"github.com/ad-tracker/video-engagement-sim/internal/metrics"
	"github.com/ad-tracker/video-engagement-sim/internal/validation"
	"github.com/ad-tracker/video-engagement-sim/pkg/logger"
)

const (
	defaultCommentCount = 5
	analyzeReplyLimit   = 10
)

// ReplyResult pairs an analyzed comment with the reply it produced, if any.
type ReplyResult struct {
	Comment  *models.Comment      `json:"comment"`
	Analysis *engagement.Analysis `json:"analysis"`
	Reply    *models.Comment      `json:"reply,omitempty"`
}

// StatusStats is the API status summary.
type StatusStats struct {
	Videos     *repository.VideoStats   `json:"videos"`
	Comments   *repository.CommentStats `json:"comments"`
	Categories int                      `json:"categories"`
	JobRuns    map[string]int           `json:"job_runs"`
	Timestamp  time.Time                `json:"timestamp"`
}

// EngagementService exposes the engine's operations on stored records.
type EngagementService struct {
	videos     repository.VideoRepository
	comments   repository.CommentRepository
	categories repository.CategoryRepository
	runs       repository.JobRunRepository
	engine     *engagement.Engine
	validator  *validation.Validator
}

// NewEngagementService creates an EngagementService.
func NewEngagementService(
	videos repository.VideoRepository,
	comments repository.CommentRepository,
	categories repository.CategoryRepository,
	runs repository.JobRunRepository,
	engine *engagement.Engine,
	v *validation.Validator,
) *EngagementService {
	return &EngagementService{
		videos:     videos,
		comments:   comments,
		categories: categories,
		runs:       runs,
		engine:     engine,
		validator:  v,
	}
}

func (s *EngagementService) video(ctx context.Context, id int64) (*models.Video, error) {
	video, err := s.videos.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "video", id, "load video")
	}
	return video, nil
}

func (s *EngagementService) comment(ctx context.Context, id int64) (*models.Comment, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "comment", id, "load comment")
	}
	return comment, nil
}

// GenerateUserComments adds count simulated viewer comments to a video.
// A zero count means the default of five.
func (s *EngagementService) GenerateUserComments(ctx context.Context, videoID int64, count int) ([]*models.Comment, error) {
	if count == 0 {
		count = defaultCommentCount
	}
	if err := s.validator.Var("count", count, "gte=1,lte=20"); err != nil {
		return nil, invalid(err)
	}

	video, err := s.video(ctx, videoID)
	if err != nil {
		return nil, err
	}

	created := make([]*models.Comment, 0, count)
	for i := 0; i < count; i++ {
		comment := s.engine.UserComment(video)
		if err := s.comments.Create(ctx, comment); err != nil {
			return created, &ProcessingError{Message: "failed to create comment", Cause: err}
		}
		metrics.CommentsCreated.WithLabelValues(metrics.SourceUser).Inc()
		created = append(created, comment)
	}

	logger.Log.Info("Generated user comments",
		zap.Int64("video_id", videoID),
		zap.Int("count", len(created)))

	return created, nil
}

// AnalyzeAndReply analyzes the newest top-level comments of a video and
// writes the channel's reply where one is recommended.
func (s *EngagementService) AnalyzeAndReply(ctx context.Context, videoID int64) ([]ReplyResult, error) {
	video, err := s.video(ctx, videoID)
	if err != nil {
		return nil, err
	}

	comments, err := s.comments.ListRecentTopLevel(ctx, videoID, analyzeReplyLimit)
	if err != nil {
		return nil, &ProcessingError{Message: "failed to list comments", Cause: err}
	}

	results := make([]ReplyResult, 0, len(comments))
	for _, comment := range comments {
		result, err := s.reply(ctx, comment, video)
		if err != nil {
			return results, err
		}
		results = append(results, *result)
	}
	return results, nil
}

// GeneratePromotion posts a channel promotion. An empty offer picks one at random.
func (s *EngagementService) GeneratePromotion(ctx context.Context, videoID int64, offer string) (*models.Comment, error) {
	video, err := s.video(ctx, videoID)
	if err != nil {
		return nil, err
	}

	promo, err := s.engine.Promotion(video, offer)
	if errors.Is(err, engagement.ErrUnknownOffer) {
		return nil, &ValidationError{Message: err.Error() + ": " + offer}
	}
	if err != nil {
		return nil, &ProcessingError{Message: "failed to build promotion", Cause: err}
	}

	if err := s.comments.Create(ctx, promo); err != nil {
		return nil, &ProcessingError{Message: "failed to create promotion", Cause: err}
	}
	metrics.CommentsCreated.WithLabelValues(metrics.SourcePromo).Inc()
	return promo, nil
}

// AnalyzeComment scores a comment without writing anything.
func (s *EngagementService) AnalyzeComment(ctx context.Context, commentID int64) (*engagement.Analysis, error) {
	comment, err := s.comment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	video, err := s.video(ctx, comment.VideoID)
	if err != nil {
		return nil, err
	}

	analysis, err := s.engine.Analyze(ctx, comment, video)
	if err != nil {
		return nil, &ProcessingError{Message: "failed to analyze comment", Cause: err}
	}
	return analysis, nil
}

// ReplyToComment analyzes one comment and replies when recommended.
func (s *EngagementService) ReplyToComment(ctx context.Context, commentID int64) (*ReplyResult, error) {
	comment, err := s.comment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	video, err := s.video(ctx, comment.VideoID)
	if err != nil {
		return nil, err
	}
	return s.reply(ctx, comment, video)
}

func (s *EngagementService) reply(ctx context.Context, comment *models.Comment, video *models.Video) (*ReplyResult, error) {
	analysis, err := s.engine.Analyze(ctx, comment, video)
	if err != nil {
		return nil, &ProcessingError{Message: "failed to analyze comment", Cause: err}
	}

	result := &ReplyResult{Comment: comment, Analysis: analysis}
	if !analysis.ShouldReply {
		metrics.RepliesSkipped.Inc()
		return result, nil
	}

	reply := s.engine.Reply(comment, video, analysis)
	if err := s.comments.Create(ctx, reply); err != nil {
		return nil, &ProcessingError{Message: "failed to create reply", Cause: err}
	}
	metrics.CommentsCreated.WithLabelValues(metrics.SourceReply).Inc()

	result.Reply = reply
	return result, nil
}

// Stats summarises the store for the status endpoint.
func (s *EngagementService) Stats(ctx context.Context) (*StatusStats, error) {
	videoStats, err := s.videos.Stats(ctx)
	if err != nil {
		return nil, &ProcessingError{Message: "failed to load video stats", Cause: err}
	}
	commentStats, err := s.comments.Stats(ctx)
	if err != nil {
		return nil, &ProcessingError{Message: "failed to load comment stats", Cause: err}
	}
	categories, err := s.categories.List(ctx, true)
	if err != nil {
		return nil, &ProcessingError{Message: "failed to list categories", Cause: err}
	}
	runs, err := s.runs.Stats(ctx)
	if err != nil {
		return nil, &ProcessingError{Message: "failed to load job stats", Cause: err}
	}

	return &StatusStats{
		Videos:     videoStats,
		Comments:   commentStats,
		Categories: len(categories),
		JobRuns:    runs,
		Timestamp:  time.Now().UTC(),
	}, nil
}
