// Package mocks provides testify mocks of the repository interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/ad-tracker/video-engagement-sim/internal/db/models"
	"github.com/ad-tracker/video-engagement-sim/internal/db/repository"
)

// CategoryRepository mocks repository.CategoryRepository.
type CategoryRepository struct {
	mock.Mock
}

var _ repository.CategoryRepository = (*CategoryRepository)(nil)

func (m *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *CategoryRepository) GetOrCreate(ctx context.Context, name, description string) (*models.Category, bool, error) {
	args := m.Called(ctx, name, description)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Category), args.Bool(1), args.Error(2)
}

func (m *CategoryRepository) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *CategoryRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *CategoryRepository) List(ctx context.Context, activeOnly bool) ([]*models.Category, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Category), args.Error(1)
}

func (m *CategoryRepository) Update(ctx context.Context, category *models.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *CategoryRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// VideoRepository mocks repository.VideoRepository.
type VideoRepository struct {
	mock.Mock
}

var _ repository.VideoRepository = (*VideoRepository)(nil)

func (m *VideoRepository) Create(ctx context.Context, video *models.Video) error {
	args := m.Called(ctx, video)
	return args.Error(0)
}

func (m *VideoRepository) CreateBatch(ctx context.Context, videos []*models.Video) (int, error) {
	args := m.Called(ctx, videos)
	return args.Int(0), args.Error(1)
}

func (m *VideoRepository) GetByID(ctx context.Context, id int64) (*models.Video, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Video), args.Error(1)
}

func (m *VideoRepository) List(ctx context.Context, filters repository.VideoFilters) ([]*models.Video, int, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.Video), args.Int(1), args.Error(2)
}

func (m *VideoRepository) Update(ctx context.Context, video *models.Video) error {
	args := m.Called(ctx, video)
	return args.Error(0)
}

func (m *VideoRepository) SoftDelete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *VideoRepository) Restore(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *VideoRepository) HardDelete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *VideoRepository) DeleteAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *VideoRepository) IncrementCounters(ctx context.Context, id int64, delta repository.CounterDelta) (*models.Video, error) {
	args := m.Called(ctx, id, delta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Video), args.Error(1)
}

func (m *VideoRepository) RecomputeCommentCount(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *VideoRepository) RefreshStatistics(ctx context.Context, id int64, views, likes int64) (*models.Video, error) {
	args := m.Called(ctx, id, views, likes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Video), args.Error(1)
}

func (m *VideoRepository) ListPublishedIDs(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *VideoRepository) ListPopular(ctx context.Context, since time.Time, minViews int64, limit int) ([]*models.Video, error) {
	args := m.Called(ctx, since, minViews, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Video), args.Error(1)
}

func (m *VideoRepository) ListTrending(ctx context.Context, limit int) ([]*models.Video, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Video), args.Error(1)
}

func (m *VideoRepository) ListCommentCandidates(ctx context.Context, limit int) ([]*models.Video, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Video), args.Error(1)
}

func (m *VideoRepository) Stats(ctx context.Context) (*repository.VideoStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.VideoStats), args.Error(1)
}

// CommentRepository mocks repository.CommentRepository.
type CommentRepository struct {
	mock.Mock
}

var _ repository.CommentRepository = (*CommentRepository)(nil)

func (m *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *CommentRepository) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *CommentRepository) List(ctx context.Context, filters repository.CommentFilters) ([]*models.Comment, int, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.Comment), args.Int(1), args.Error(2)
}

func (m *CommentRepository) Update(ctx context.Context, comment *models.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *CommentRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *CommentRepository) DeleteAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *CommentRepository) IncrementLikes(ctx context.Context, id int64) (*models.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *CommentRepository) HasReplyFrom(ctx context.Context, parentID int64, author string) (bool, error) {
	args := m.Called(ctx, parentID, author)
	return args.Bool(0), args.Error(1)
}

func (m *CommentRepository) ListReplyCandidates(ctx context.Context, since time.Time, limit int) ([]*models.Comment, error) {
	args := m.Called(ctx, since, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Comment), args.Error(1)
}

func (m *CommentRepository) ListRecentTopLevel(ctx context.Context, videoID int64, limit int) ([]*models.Comment, error) {
	args := m.Called(ctx, videoID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Comment), args.Error(1)
}

func (m *CommentRepository) DeleteAIOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *CommentRepository) Stats(ctx context.Context) (*repository.CommentStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.CommentStats), args.Error(1)
}

// JobRunRepository mocks repository.JobRunRepository.
type JobRunRepository struct {
	mock.Mock
}

var _ repository.JobRunRepository = (*JobRunRepository)(nil)

func (m *JobRunRepository) Record(ctx context.Context, run *models.JobRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *JobRunRepository) List(ctx context.Context, filters repository.JobRunFilters) ([]*models.JobRun, int, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.JobRun), args.Int(1), args.Error(2)
}

func (m *JobRunRepository) Stats(ctx context.Context) (map[string]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}
