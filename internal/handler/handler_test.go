package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ad-tracker/video-engagement-sim/internal/db"
	"github.com/ad-tracker/video-engagement-sim/internal/db/models"
	"github.com/ad-tracker/video-engagement-sim/internal/db/repository/mocks"
	"github.com/ad-tracker/video-engagement-sim/internal/engagement"
	"github.com/ad-tracker/video-engagement-sim/internal/generator"
	"github.com/ad-tracker/video-engagement-sim/internal/jobs"
	dto "github.com/ad-tracker/video-engagement-sim/internal/models"
	"github.com/ad-tracker/video-engagement-sim/internal/service"
	"github.com/ad-tracker/video-engagement-sim/internal/validation"
)

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

type fakeHealth bool

func (h fakeHealth) IsHealthy() bool { return bool(h) }

type fixture struct {
	categories *mocks.CategoryRepository
	videos     *mocks.VideoRepository
	comments   *mocks.CommentRepository
	runs       *mocks.JobRunRepository
	router     *gin.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &fixture{
		categories: &mocks.CategoryRepository{},
		videos:     &mocks.VideoRepository{},
		comments:   &mocks.CommentRepository{},
		runs:       &mocks.JobRunRepository{},
	}

	v := validation.New()
	src := generator.NewSource(3)
	engine := engagement.NewEngine(f.comments, src)

	videoSvc := service.NewVideoService(f.videos, f.categories, v)
	categorySvc := service.NewCategoryService(f.categories, v)
	commentSvc := service.NewCommentService(f.comments, f.videos, v)
	engagementSvc := service.NewEngagementService(f.videos, f.comments, f.categories, f.runs, engine, v)
	runner := jobs.NewRunner(jobs.Deps{
		Categories: f.categories,
		Videos:     f.videos,
		Comments:   f.comments,
		Runs:       f.runs,
		Engine:     engine,
		Source:     src,
	}, jobs.Config{MaxRetries: 0, RetryDelay: time.Millisecond})
	jobSvc := service.NewJobService(runner, nil, f.runs)

	f.router = NewRouter(Handlers{
		Health:     NewHealthHandler(fakePinger{}, nil),
		Status:     NewStatusHandler(engagementSvc, "test"),
		Categories: NewCategoryHandler(categorySvc, videoSvc),
		Videos:     NewVideoHandler(videoSvc, engagementSvc),
		Comments:   NewCommentHandler(commentSvc, engagementSvc),
		Jobs:       NewJobHandler(jobSvc),
	})

	t.Cleanup(func() {
		f.categories.AssertExpectations(t)
		f.videos.AssertExpectations(t)
		f.comments.AssertExpectations(t)
		f.runs.AssertExpectations(t)
	})
	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func video(id int64) *models.Video {
	v := models.NewVideo("Go Channels Explained", "Gopher TV", 754)
	v.ID = id
	v.SetStatus(models.VideoStatusPublished, time.Now())
	v.ViewCount = 200
	v.LikeCount = 20
	return v
}

func TestHealthHandler_LivenessProbe(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewHealthHandler(fakePinger{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health/live", nil)

	handler.LivenessProbe(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"UP"`)
}

func TestHealthHandler_ReadinessProbe(t *testing.T) {
	tests := []struct {
		name      string
		db        Pinger
		publisher HealthChecker
		wantCode  int
		wantBody  string
	}{
		{"healthy without publisher", fakePinger{}, nil, http.StatusOK, `"rabbitmq":"disabled"`},
		{"healthy with publisher", fakePinger{}, fakeHealth(true), http.StatusOK, `"rabbitmq":"healthy"`},
		{"database down", fakePinger{err: errors.New("refused")}, nil, http.StatusServiceUnavailable, `"database":"unhealthy"`},
		{"publisher down", fakePinger{}, fakeHealth(false), http.StatusServiceUnavailable, `"rabbitmq":"unhealthy"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			handler := NewHealthHandler(tt.db, tt.publisher)

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/health/ready", nil)

			handler.ReadinessProbe(c)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestVideoRoutes_BadID(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/v1/videos/abc", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "id must be a positive integer", decodeError(t, w).Message)
}

func TestVideoRoutes_NotFound(t *testing.T) {
	f := newFixture(t)
	f.videos.On("GetByID", mock.Anything, int64(5)).Return(nil, fmt.Errorf("get: %w", db.ErrNotFound)).Once()

	w := f.do(http.MethodGet, "/api/v1/videos/5", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "video 5 not found", resp.Message)
	assert.Equal(t, "/api/v1/videos/5", resp.Path)
}

func TestVideoRoutes_Get(t *testing.T) {
	f := newFixture(t)
	f.videos.On("GetByID", mock.Anything, int64(5)).Return(video(5), nil).Once()

	w := f.do(http.MethodGet, "/api/v1/videos/5", "")

	require.Equal(t, http.StatusOK, w.Code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "12:34", got["duration_formatted"])
	assert.InDelta(t, 10.0, got["engagement_rate"], 0.001)
	assert.InDelta(t, 100.0, got["like_ratio"], 0.001)
}

func TestVideoRoutes_CreateInvalid(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/v1/videos", `{"title":"ok title","duration":0,"channel_name":"Gopher TV"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	require.Len(t, resp.Details, 1)
	assert.Equal(t, "duration", resp.Details[0].Field)
}

func TestVideoRoutes_Trending(t *testing.T) {
	f := newFixture(t)
	f.videos.On("ListTrending", mock.Anything, 10).Return([]*models.Video{video(1), video(2)}, nil).Once()

	w := f.do(http.MethodGet, "/api/v1/videos/trending", "")

	require.Equal(t, http.StatusOK, w.Code)
	var got []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got, 2)
}

func TestVideoRoutes_GenerateComments(t *testing.T) {
	f := newFixture(t)
	f.videos.On("GetByID", mock.Anything, int64(1)).Return(video(1), nil).Once()
	f.comments.On("Create", mock.Anything, mock.AnythingOfType("*models.Comment")).Return(nil).Twice()

	w := f.do(http.MethodPost, "/api/v1/videos/1/generate-comments", `{"count":2}`)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"created":2`)
}

func TestVideoRoutes_GenerateCommentsTooMany(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/v1/videos/1/generate-comments", `{"count":50}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "count must be <= 20", decodeError(t, w).Message)
}

func TestVideoRoutes_Like(t *testing.T) {
	f := newFixture(t)
	liked := video(1)
	liked.LikeCount = 21
	f.videos.On("IncrementCounters", mock.Anything, int64(1), mock.Anything).Return(liked, nil).Once()

	w := f.do(http.MethodPost, "/api/v1/videos/1/like", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"like_count":21`)
}

func TestCategoryRoutes_CreateDuplicate(t *testing.T) {
	f := newFixture(t)
	f.categories.On("Create", mock.Anything, mock.AnythingOfType("*models.Category")).
		Return(fmt.Errorf("create: %w", db.ErrDuplicateKey)).Once()

	w := f.do(http.MethodPost, "/api/v1/categories", `{"name":"Gaming"}`)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCommentRoutes_Actions(t *testing.T) {
	t.Run("like", func(t *testing.T) {
		f := newFixture(t)
		liked := models.NewComment(1, "Ann", "Great video")
		liked.ID = 9
		liked.LikeCount = 4
		f.comments.On("IncrementLikes", mock.Anything, int64(9)).Return(liked, nil).Once()

		w := f.do(http.MethodPost, "/api/v1/comments/9/like", "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"like_count":4`)
	})

	t.Run("analyze", func(t *testing.T) {
		f := newFixture(t)
		comment := models.NewComment(1, "Ann", "This is the first tutorial I loved, thanks")
		comment.ID = 9
		f.comments.On("GetByID", mock.Anything, int64(9)).Return(comment, nil).Once()
		f.videos.On("GetByID", mock.Anything, int64(1)).Return(video(1), nil).Once()
		f.comments.On("HasReplyFrom", mock.Anything, int64(9), "Gopher TV").Return(false, nil).Once()

		w := f.do(http.MethodPost, "/api/v1/comments/9/analyze", "")

		require.Equal(t, http.StatusOK, w.Code)
		var got engagement.Analysis
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.True(t, got.ShouldReply)
		assert.Equal(t, engagement.ReplyFirstComment, got.ReplyType)
		assert.Equal(t, 1.0, got.Confidence)
	})

	t.Run("unknown action", func(t *testing.T) {
		f := newFixture(t)

		w := f.do(http.MethodPost, "/api/v1/comments/9/share", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, decodeError(t, w).Message, "share")
	})
}

func TestCommentHandler_ActionsTable(t *testing.T) {
	h := NewCommentHandler(nil, nil)
	assert.Equal(t, []string{"analyze", "like", "reply"}, h.Actions())
}

func TestJobRoutes(t *testing.T) {
	t.Run("no categories is unprocessable", func(t *testing.T) {
		f := newFixture(t)
		f.categories.On("List", mock.Anything, true).Return([]*models.Category{}, nil).Once()
		f.runs.On("Record", mock.Anything, mock.AnythingOfType("*models.JobRun")).Return(nil).Once()

		w := f.do(http.MethodPost, "/api/v1/jobs/videos:generate_content/run", "")

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, decodeError(t, w).Message, generator.ErrNoCategories.Error())
	})

	t.Run("cleanup runs", func(t *testing.T) {
		f := newFixture(t)
		f.comments.On("DeleteAIOlderThan", mock.Anything, mock.AnythingOfType("time.Time")).Return(int64(0), nil).Once()
		f.runs.On("Record", mock.Anything, mock.AnythingOfType("*models.JobRun")).Return(nil).Once()

		w := f.do(http.MethodPost, "/api/v1/jobs/engagement:cleanup_ai/run", "")

		require.Equal(t, http.StatusOK, w.Code)
		var run models.JobRun
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &run))
		assert.Equal(t, models.JobStatusCompleted, run.Status)
		assert.Zero(t, run.Deleted)
	})

	t.Run("failed attempt is reported, not retried", func(t *testing.T) {
		f := newFixture(t)
		f.videos.On("ListPublishedIDs", mock.Anything).Return(nil, errors.New("connection reset")).Once()
		f.runs.On("Record", mock.Anything, mock.AnythingOfType("*models.JobRun")).Return(nil).Once()

		w := f.do(http.MethodPost, "/api/v1/jobs/videos:update_stats/run", "")

		require.Equal(t, http.StatusOK, w.Code)
		var run models.JobRun
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &run))
		assert.Equal(t, models.JobStatusFailed, run.Status)
		assert.Equal(t, 1, run.Attempts)
		f.videos.AssertNumberOfCalls(t, "ListPublishedIDs", 1)
	})

	t.Run("unknown job", func(t *testing.T) {
		f := newFixture(t)

		w := f.do(http.MethodPost, "/api/v1/jobs/videos:nope/run", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("enqueue without queue", func(t *testing.T) {
		f := newFixture(t)

		w := f.do(http.MethodPost, "/api/v1/jobs/engagement:cleanup_ai/enqueue", "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "failed to enqueue job", decodeError(t, w).Message)
	})

	t.Run("names", func(t *testing.T) {
		f := newFixture(t)

		w := f.do(http.MethodGet, "/api/v1/jobs", "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), jobs.TaskPopularComments)
	})
}
