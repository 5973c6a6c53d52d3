//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ad-tracker/video-engagement-sim/internal/db"
	"github.com/ad-tracker/video-engagement-sim/internal/db/models"
	"github.com/ad-tracker/video-engagement-sim/internal/db/testutil"
)

func TestCommentRepository(t *testing.T) {
	td := testutil.SetupTestDatabase(t)
	defer td.Cleanup(t)

	repo := NewCommentRepository(td.Pool)
	videos := NewVideoRepository(td.Pool)
	ctx := context.Background()

	newVideo := func(t *testing.T, title string) *models.Video {
		t.Helper()
		v := publishedVideo(title, "Channel", 0)
		require.NoError(t, videos.Create(ctx, v))
		return v
	}

	commentCount := func(t *testing.T, id int64) int64 {
		t.Helper()
		v, err := videos.GetByID(ctx, id)
		require.NoError(t, err)
		return v.CommentCount
	}

	t.Run("writes keep comment_count in step", func(t *testing.T) {
		td.TruncateTables(t)
		video := newVideo(t, "Count Me")

		first := models.NewComment(video.ID, "alice", "first!")
		second := models.NewComment(video.ID, "bob", "second")
		require.NoError(t, repo.Create(ctx, first))
		require.NoError(t, repo.Create(ctx, second))
		assert.Equal(t, int64(2), commentCount(t, video.ID))
		assert.Contains(t, first.AuthorAvatar, "ui-avatars.com")

		second.IsApproved = false
		require.NoError(t, repo.Update(ctx, second))
		assert.Equal(t, int64(1), commentCount(t, video.ID))

		require.NoError(t, repo.Delete(ctx, first.ID))
		assert.Equal(t, int64(0), commentCount(t, video.ID))

		assert.True(t, db.IsNotFound(repo.Delete(ctx, first.ID)))
	})

	t.Run("deleting a parent removes replies", func(t *testing.T) {
		td.TruncateTables(t)
		video := newVideo(t, "Threads")

		parent := models.NewComment(video.ID, "alice", "question?")
		require.NoError(t, repo.Create(ctx, parent))
		reply := models.NewAIComment(video.ID, "Channel", "answer", "rule-based")
		reply.ReplyTo(parent)
		require.NoError(t, repo.Create(ctx, reply))

		has, err := repo.HasReplyFrom(ctx, parent.ID, "Channel")
		require.NoError(t, err)
		assert.True(t, has)

		require.NoError(t, repo.Delete(ctx, parent.ID))
		_, err = repo.GetByID(ctx, reply.ID)
		assert.True(t, db.IsNotFound(err))
		assert.Zero(t, td.CountRows(t, "comments", "video_id = $1", video.ID))
		assert.Equal(t, int64(0), commentCount(t, video.ID))
	})

	t.Run("comment on missing video", func(t *testing.T) {
		td.TruncateTables(t)

		err := repo.Create(ctx, models.NewComment(999, "alice", "hello"))
		require.Error(t, err)
		assert.True(t, db.IsForeignKeyViolation(err))
	})

	t.Run("reply candidates are unanswered human top-level comments", func(t *testing.T) {
		td.TruncateTables(t)
		video := newVideo(t, "Candidates")

		answered := models.NewComment(video.ID, "alice", "answered")
		open := models.NewComment(video.ID, "bob", "open")
		open.LikeCount = 3
		old := models.NewComment(video.ID, "carol", "old")
		old.CreatedAt = time.Now().Add(-2 * time.Hour)
		ai := models.NewAIComment(video.ID, "bot", "ai", "rule-based")
		for _, c := range []*models.Comment{answered, open, old, ai} {
			require.NoError(t, repo.Create(ctx, c))
		}
		reply := models.NewComment(video.ID, "Channel", "thanks")
		reply.ReplyTo(answered)
		require.NoError(t, repo.Create(ctx, reply))

		got, err := repo.ListReplyCandidates(ctx, time.Now().Add(-30*time.Minute), 10)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, open.ID, got[0].ID)
	})

	t.Run("cleanup removes old AI comments and recomputes", func(t *testing.T) {
		td.TruncateTables(t)
		video := newVideo(t, "Cleanup")

		stale := models.NewAIComment(video.ID, "bot", "stale", "rule-based")
		stale.CreatedAt = time.Now().Add(-31 * 24 * time.Hour)
		fresh := models.NewAIComment(video.ID, "bot", "fresh", "rule-based")
		human := models.NewComment(video.ID, "alice", "old but human")
		human.CreatedAt = time.Now().Add(-60 * 24 * time.Hour)
		for _, c := range []*models.Comment{stale, fresh, human} {
			require.NoError(t, repo.Create(ctx, c))
		}
		assert.Equal(t, int64(3), commentCount(t, video.ID))

		deleted, err := repo.DeleteAIOlderThan(ctx, time.Now().Add(-30*24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)
		assert.Equal(t, 1, td.CountRows(t, "comments", "is_ai_generated"))
		assert.Equal(t, int64(2), commentCount(t, video.ID))
	})

	t.Run("list, likes and stats", func(t *testing.T) {
		td.TruncateTables(t)
		video := newVideo(t, "Listing")

		top := models.NewComment(video.ID, "alice", "top")
		require.NoError(t, repo.Create(ctx, top))
		reply := models.NewComment(video.ID, "bob", "reply")
		reply.ReplyTo(top)
		require.NoError(t, repo.Create(ctx, reply))

		list, total, err := repo.List(ctx, CommentFilters{VideoID: &video.ID, TopLevelOnly: true})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Equal(t, top.ID, list[0].ID)

		list, total, err = repo.List(ctx, CommentFilters{ParentID: &top.ID})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Equal(t, reply.ID, list[0].ID)

		liked, err := repo.IncrementLikes(ctx, top.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), liked.LikeCount)

		recent, err := repo.ListRecentTopLevel(ctx, video.ID, 10)
		require.NoError(t, err)
		assert.Len(t, recent, 1)

		stats, err := repo.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), stats.Total)
		assert.Equal(t, int64(1), stats.Replies)

		cleared, err := repo.DeleteAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), cleared)
		assert.Equal(t, int64(0), commentCount(t, video.ID))
	})
}
