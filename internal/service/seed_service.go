package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ad-tracker/video-engagement-sim/internal/db/models"
	"github.com/ad-tracker/video-engagement-sim/internal/db/repository"
	"github.com/ad-tracker/video-engagement-sim/internal/engagement"
	"github.com/ad-tracker/video-engagement-sim/internal/generator"
	"github.com/ad-tracker/video-engagement-sim/internal/metrics"
	"github.com/ad-tracker/video-engagement-sim/pkg/logger"
)

const (
	candidateWindow  = 50
	parentCandidates = 50
)

// SeedVideosOptions controls SeedVideos.
type SeedVideosOptions struct {
	Count     int
	BatchSize int
	Clear     bool
}

// SeedCommentsOptions controls SeedComments.
type SeedCommentsOptions struct {
	Count        int
	VideoID      int64
	AIRatio      float64
	RepliesRatio float64
	Clear        bool
}

// SeedReport counts what a seed run wrote.
type SeedReport struct {
	Cleared   int64 `json:"cleared"`
	Created   int   `json:"created"`
	Skipped   int   `json:"skipped"`
	Replies   int   `json:"replies"`
	Simulated int   `json:"simulated"`
}

// Progress is called after each batch or every fifty comments.
type Progress func(done, total int)

// SeedService bulk-loads synthetic videos and comments.
type SeedService struct {
	categories repository.CategoryRepository
	videos     repository.VideoRepository
	comments   repository.CommentRepository
	videoGen   *generator.VideoGenerator
	commentGen *generator.CommentGenerator
	engine     *engagement.Engine
	src        *generator.Source
}

// NewSeedService creates a SeedService.
func NewSeedService(
	categories repository.CategoryRepository,
	videos repository.VideoRepository,
	comments repository.CommentRepository,
	engine *engagement.Engine,
	src *generator.Source,
) *SeedService {
	return &SeedService{
		categories: categories,
		videos:     videos,
		comments:   comments,
		videoGen:   generator.NewVideoGenerator(src),
		commentGen: generator.NewCommentGenerator(src),
		engine:     engine,
		src:        src,
	}
}

// SeedVideos generates opts.Count published videos and inserts them in batches.
// Videos colliding with existing ones are skipped.
func (s *SeedService) SeedVideos(ctx context.Context, opts SeedVideosOptions, progress Progress) (*SeedReport, error) {
	if opts.Count <= 0 {
		return nil, &ValidationError{Message: "count must be positive"}
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}

	report := &SeedReport{}
	if opts.Clear {
		n, err := s.videos.DeleteAll(ctx)
		if err != nil {
			return nil, &ProcessingError{Message: "failed to clear videos", Cause: err}
		}
		report.Cleared = n
	}

	categories, err := s.categories.List(ctx, true)
	if err != nil {
		return nil, &ProcessingError{Message: "failed to list categories", Cause: err}
	}

	batch := make([]*models.Video, 0, opts.BatchSize)
	flush := func(done int) error {
		if len(batch) == 0 {
			return nil
		}
		n, err := s.videos.CreateBatch(ctx, batch)
		if err != nil {
			return &ProcessingError{Message: "failed to insert videos", Cause: err}
		}
		report.Created += n
		report.Skipped += len(batch) - n
		metrics.VideosCreated.Add(float64(n))
		batch = batch[:0]
		if progress != nil {
			progress(done, opts.Count)
		}
		return nil
	}

	for i := 1; i <= opts.Count; i++ {
		video, err := s.videoGen.Generate(categories)
		if err != nil {
			return report, err
		}
		batch = append(batch, video)
		if len(batch) >= opts.BatchSize {
			if err := flush(i); err != nil {
				return report, err
			}
		}
	}
	if err := flush(opts.Count); err != nil {
		return report, err
	}

	logger.Log.Info("Videos seeded",
		zap.Int("created", report.Created),
		zap.Int("skipped", report.Skipped))

	return report, nil
}

// SeedComments spreads opts.Count comments over published videos, favouring
// those with fewer comments. RepliesRatio of them answer an existing top-level
// comment; AIRatio of the remaining top-level ones come from the engine's
// viewer simulation.
func (s *SeedService) SeedComments(ctx context.Context, opts SeedCommentsOptions, progress Progress) (*SeedReport, error) {
	if opts.Count <= 0 {
		return nil, &ValidationError{Message: "count must be positive"}
	}
	if opts.AIRatio < 0 || opts.AIRatio > 1 || opts.RepliesRatio < 0 || opts.RepliesRatio > 1 {
		return nil, &ValidationError{Message: "ratios must be between 0 and 1"}
	}

	report := &SeedReport{}
	if opts.Clear {
		n, err := s.comments.DeleteAll(ctx)
		if err != nil {
			return nil, &ProcessingError{Message: "failed to clear comments", Cause: err}
		}
		report.Cleared = n
	}

	videos, err := s.targets(ctx, opts.VideoID)
	if err != nil {
		return nil, err
	}

	names, err := s.categoryNames(ctx)
	if err != nil {
		return nil, err
	}

	for i := 1; i <= opts.Count; i++ {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		video, err := generator.PickWeighted(s.src, videos)
		if err != nil {
			return report, err
		}

		var parent *models.Comment
		if s.src.Chance(opts.RepliesRatio) {
			parent, err = s.pickParent(ctx, video.ID)
			if err != nil {
				return report, err
			}
		}

		var comment *models.Comment
		if parent == nil && s.src.Chance(opts.AIRatio) {
			comment = s.engine.UserComment(video)
			report.Simulated++
		} else {
			comment = s.commentGen.Human(video, names[categoryKey(video)], parent)
		}

		if err := s.comments.Create(ctx, comment); err != nil {
			return report, &ProcessingError{Message: fmt.Sprintf("failed to create comment on video %d", video.ID), Cause: err}
		}
		metrics.CommentsCreated.WithLabelValues(metrics.SourceSeeded).Inc()

		// Keep the draw weights in step with the stored counts.
		if comment.IsApproved {
			video.CommentCount++
		}

		if parent != nil {
			report.Replies++
		} else {
			report.Created++
		}

		if progress != nil && (i%50 == 0 || i == opts.Count) {
			progress(i, opts.Count)
		}
	}

	logger.Log.Info("Comments seeded",
		zap.Int("top_level", report.Created),
		zap.Int("replies", report.Replies),
		zap.Int("simulated", report.Simulated))

	return report, nil
}

func (s *SeedService) targets(ctx context.Context, videoID int64) ([]*models.Video, error) {
	if videoID != 0 {
		video, err := s.videos.GetByID(ctx, videoID)
		if err != nil {
			return nil, storeError(err, "video", videoID, "load video")
		}
		if video.Status != models.VideoStatusPublished {
			return nil, &ValidationError{Message: fmt.Sprintf("video %d is not published", videoID)}
		}
		return []*models.Video{video}, nil
	}

	videos, err := s.videos.ListCommentCandidates(ctx, candidateWindow)
	if err != nil {
		return nil, &ProcessingError{Message: "failed to select videos", Cause: err}
	}
	if len(videos) == 0 {
		return nil, generator.ErrNoVideos
	}
	return videos, nil
}

func (s *SeedService) pickParent(ctx context.Context, videoID int64) (*models.Comment, error) {
	candidates, err := s.comments.ListRecentTopLevel(ctx, videoID, parentCandidates)
	if err != nil {
		return nil, &ProcessingError{Message: "failed to list comments", Cause: err}
	}
	approved := candidates[:0]
	for _, c := range candidates {
		if c.IsApproved {
			approved = append(approved, c)
		}
	}
	if len(approved) == 0 {
		return nil, nil
	}
	return approved[s.src.IntN(len(approved))], nil
}

func (s *SeedService) categoryNames(ctx context.Context) (map[int64]string, error) {
	categories, err := s.categories.List(ctx, false)
	if err != nil {
		return nil, &ProcessingError{Message: "failed to list categories", Cause: err}
	}
	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names, nil
}

func categoryKey(v *models.Video) int64 {
	if v.CategoryID == nil {
		return 0
	}
	return *v.CategoryID
}
