package service

import (
	"context"
	"strings"
	"time"

	"github.com/ad-tracker/video-engagement-sim/internal/db/models"
	"github.com/ad-tracker/video-engagement-sim/internal/db/repository"
	"github.com/ad-tracker/video-engagement-sim/internal/metrics"
	"github.com/ad-tracker/video-engagement-sim/internal/validation"
)

// CommentInput is a new human comment.
type CommentInput struct {
	VideoID      int64  `json:"video_id" validate:"gt=0"`
	ParentID     *int64 `json:"parent_id" validate:"omitempty,gt=0"`
	Content      string `json:"content" validate:"notblank,max=1000"`
	AuthorName   string `json:"author_name" validate:"notblank,max=100"`
	AuthorAvatar string `json:"author_avatar" validate:"omitempty,url"`
}

// CommentUpdate is the editable part of a comment.
type CommentUpdate struct {
	Content    string `json:"content" validate:"notblank,max=1000"`
	IsApproved *bool  `json:"is_approved"`
}

// CommentService manages comments. Every write recomputes the video's
// comment_count in the store.
type CommentService struct {
	comments  repository.CommentRepository
	videos    repository.VideoRepository
	validator *validation.Validator
	now       func() time.Time
}

// NewCommentService creates a CommentService.
func NewCommentService(comments repository.CommentRepository, videos repository.VideoRepository, v *validation.Validator) *CommentService {
	return &CommentService{
		comments:  comments,
		videos:    videos,
		validator: v,
		now:       time.Now,
	}
}

// Create stores a human comment. A reply must target a comment on the same video.
func (s *CommentService) Create(ctx context.Context, in CommentInput) (*models.Comment, error) {
	in.AuthorName = strings.TrimSpace(in.AuthorName)
	if err := s.validator.Struct(&in); err != nil {
		return nil, invalid(err)
	}

	if _, err := s.videos.GetByID(ctx, in.VideoID); err != nil {
		return nil, storeError(err, "video", in.VideoID, "load video")
	}

	comment := models.NewComment(in.VideoID, in.AuthorName, in.Content)
	if in.AuthorAvatar != "" {
		comment.AuthorAvatar = in.AuthorAvatar
	}

	if in.ParentID != nil {
		parent, err := s.Get(ctx, *in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.VideoID != in.VideoID {
			return nil, &ValidationError{Message: "parent comment belongs to a different video"}
		}
		comment.ReplyTo(parent)
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, storeError(err, "comment", 0, "create comment")
	}
	metrics.CommentsCreated.WithLabelValues(metrics.SourceUser).Inc()
	return comment, nil
}

// Get returns one comment.
func (s *CommentService) Get(ctx context.Context, id int64) (*models.Comment, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "comment", id, "load comment")
	}
	return comment, nil
}

// List returns a filtered page of comments and the total count.
func (s *CommentService) List(ctx context.Context, filters repository.CommentFilters) ([]*models.Comment, int, error) {
	comments, total, err := s.comments.List(ctx, filters)
	if err != nil {
		return nil, 0, &ProcessingError{Message: "failed to list comments", Cause: err}
	}
	return comments, total, nil
}

// Update edits content and approval.
func (s *CommentService) Update(ctx context.Context, id int64, in CommentUpdate) (*models.Comment, error) {
	if err := s.validator.Struct(&in); err != nil {
		return nil, invalid(err)
	}

	comment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	comment.Content = in.Content
	if in.IsApproved != nil {
		comment.IsApproved = *in.IsApproved
	}
	comment.UpdatedAt = s.now()

	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, storeError(err, "comment", id, "update comment")
	}
	return comment, nil
}

// Delete removes a comment and its replies.
func (s *CommentService) Delete(ctx context.Context, id int64) error {
	return storeError(s.comments.Delete(ctx, id), "comment", id, "delete comment")
}

// Like adds one like.
func (s *CommentService) Like(ctx context.Context, id int64) (*models.Comment, error) {
	comment, err := s.comments.IncrementLikes(ctx, id)
	if err != nil {
		return nil, storeError(err, "comment", id, "like comment")
	}
	return comment, nil
}
