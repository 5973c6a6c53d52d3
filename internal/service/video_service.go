// Package service holds the API-facing operations over the store, the
// generators and the engagement engine.
package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ad-tracker/video-engagement-sim/internal/db"
	"github.com/ad-tracker/video-engagement-sim/internal/db/models"
	"github.com/ad-tracker/video-engagement-sim/internal/db/repository"
	"github.com/ad-tracker/video-engagement-sim/internal/validation"
	"github.com/ad-tracker/video-engagement-sim/pkg/logger"
)

const trendingLimit = 10

// VideoInput is the editable part of a video.
type VideoInput struct {
	Title         string   `json:"title" validate:"notblank,min=3,max=200"`
	Description   string   `json:"description" validate:"max=5000"`
	Duration      int      `json:"duration" validate:"gte=1,lte=86400"`
	Status        string   `json:"status" validate:"omitempty,oneof=draft published unlisted private"`
	CategoryID    *int64   `json:"category_id"`
	ChannelName   string   `json:"channel_name" validate:"notblank,max=100"`
	ChannelAvatar string   `json:"channel_avatar" validate:"omitempty,url"`
	Tags          []string `json:"tags" validate:"max=20,dive,max=50"`
	Language      string   `json:"language" validate:"omitempty,max=10"`
}

func (in *VideoInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.ChannelName = strings.TrimSpace(in.ChannelName)
	if in.Tags == nil {
		in.Tags = []string{}
	}
	if in.Language == "" {
		in.Language = models.DefaultLanguage
	}
	if in.Status == "" {
		in.Status = string(models.VideoStatusDraft)
	}
}

// VideoService manages videos and their counters.
type VideoService struct {
	videos     repository.VideoRepository
	categories repository.CategoryRepository
	validator  *validation.Validator
	now        func() time.Time
}

// NewVideoService creates a VideoService.
func NewVideoService(videos repository.VideoRepository, categories repository.CategoryRepository, v *validation.Validator) *VideoService {
	return &VideoService{
		videos:     videos,
		categories: categories,
		validator:  v,
		now:        time.Now,
	}
}

func (s *VideoService) check(ctx context.Context, in *VideoInput) error {
	in.normalize()
	if err := s.validator.Struct(in); err != nil {
		return invalid(err)
	}
	if in.CategoryID != nil {
		_, err := s.categories.GetByID(ctx, *in.CategoryID)
		if db.IsNotFound(err) {
			return &ValidationError{Message: "category_id does not exist"}
		}
		if err != nil {
			return storeError(err, "category", *in.CategoryID, "load category")
		}
	}
	return nil
}

// Create validates and stores a new video.
func (s *VideoService) Create(ctx context.Context, in VideoInput) (*models.Video, error) {
	if err := s.check(ctx, &in); err != nil {
		return nil, err
	}

	video := models.NewVideo(in.Title, in.ChannelName, in.Duration)
	apply(video, &in)
	video.SetStatus(models.VideoStatus(in.Status), s.now())

	if err := s.videos.Create(ctx, video); err != nil {
		return nil, storeError(err, "video", 0, "create video")
	}

	logger.Log.Info("Video created",
		zap.Int64("video_id", video.ID),
		zap.String("slug", video.Slug),
		zap.String("status", string(video.Status)))

	return video, nil
}

// Update replaces the editable fields of a video. The slug stays fixed once
// assigned; published_at is stamped on the first publish only.
func (s *VideoService) Update(ctx context.Context, id int64, in VideoInput) (*models.Video, error) {
	if err := s.check(ctx, &in); err != nil {
		return nil, err
	}

	video, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	video.Title = in.Title
	apply(video, &in)
	video.SetStatus(models.VideoStatus(in.Status), s.now())
	video.UpdatedAt = s.now()

	if err := s.videos.Update(ctx, video); err != nil {
		return nil, storeError(err, "video", id, "update video")
	}
	return video, nil
}

func apply(video *models.Video, in *VideoInput) {
	video.Description = in.Description
	video.Duration = in.Duration
	video.CategoryID = in.CategoryID
	video.ChannelName = in.ChannelName
	video.ChannelAvatar = in.ChannelAvatar
	video.Tags = in.Tags
	video.Language = in.Language
}

// Get returns a visible video.
func (s *VideoService) Get(ctx context.Context, id int64) (*models.Video, error) {
	video, err := s.videos.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "video", id, "load video")
	}
	return video, nil
}

// List returns a filtered page of videos and the total count.
func (s *VideoService) List(ctx context.Context, filters repository.VideoFilters) ([]*models.Video, int, error) {
	if filters.Status != "" && !models.VideoStatus(filters.Status).Valid() {
		return nil, 0, &ValidationError{Message: "status must be one of [draft published unlisted private]"}
	}
	videos, total, err := s.videos.List(ctx, filters)
	if err != nil {
		return nil, 0, &ProcessingError{Message: "failed to list videos", Cause: err}
	}
	return videos, total, nil
}

// Delete soft deletes a video.
func (s *VideoService) Delete(ctx context.Context, id int64) error {
	return storeError(s.videos.SoftDelete(ctx, id), "video", id, "delete video")
}

// Restore undoes a soft delete.
func (s *VideoService) Restore(ctx context.Context, id int64) (*models.Video, error) {
	if err := s.videos.Restore(ctx, id); err != nil {
		return nil, storeError(err, "video", id, "restore video")
	}
	return s.Get(ctx, id)
}

// Trending returns the top published videos by views, then likes.
func (s *VideoService) Trending(ctx context.Context) ([]*models.Video, error) {
	videos, err := s.videos.ListTrending(ctx, trendingLimit)
	if err != nil {
		return nil, &ProcessingError{Message: "failed to list trending videos", Cause: err}
	}
	return videos, nil
}

// ByCategory lists the published videos of one category.
func (s *VideoService) ByCategory(ctx context.Context, categoryID int64, limit, offset int) ([]*models.Video, int, error) {
	if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
		return nil, 0, storeError(err, "category", categoryID, "load category")
	}
	return s.List(ctx, repository.VideoFilters{
		CategoryID: &categoryID,
		Status:     string(models.VideoStatusPublished),
		Limit:      limit,
		Offset:     offset,
		OrderBy:    "published_at",
		OrderDir:   "desc",
	})
}

// Like adds one like.
func (s *VideoService) Like(ctx context.Context, id int64) (*models.Video, error) {
	return s.increment(ctx, id, repository.CounterDelta{Likes: 1})
}

// Dislike adds one dislike.
func (s *VideoService) Dislike(ctx context.Context, id int64) (*models.Video, error) {
	return s.increment(ctx, id, repository.CounterDelta{Dislikes: 1})
}

// View adds one view.
func (s *VideoService) View(ctx context.Context, id int64) (*models.Video, error) {
	return s.increment(ctx, id, repository.CounterDelta{Views: 1})
}

func (s *VideoService) increment(ctx context.Context, id int64, delta repository.CounterDelta) (*models.Video, error) {
	video, err := s.videos.IncrementCounters(ctx, id, delta)
	if err != nil {
		return nil, storeError(err, "video", id, "update counters")
	}
	return video, nil
}
