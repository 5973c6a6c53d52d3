// Package jobs implements the background jobs and the runner that executes them.
package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/ad-tracker/video-engagement-sim/internal/db"
	"github.com/ad-tracker/video-engagement-sim/internal/db/models"
	"github.com/ad-tracker/video-engagement-sim/internal/engagement"
	"github.com/ad-tracker/video-engagement-sim/internal/generator"
)

// Job names. They double as the task type names on the queue.
const (
	TaskPopularComments   = "engagement:popular_comments"
	TaskReplyRecent       = "engagement:reply_recent"
	TaskCleanupAI         = "engagement:cleanup_ai"
	TaskUpdateStats       = "videos:update_stats"
	TaskUserCommentsBatch = "engagement:user_comments_batch"
	TaskGenerateContent   = "videos:generate_content"
)

// Periodic lists the jobs the scheduler fires on an interval.
var Periodic = []string{
	TaskPopularComments,
	TaskReplyRecent,
	TaskCleanupAI,
	TaskUpdateStats,
}

// All lists every job name.
var All = append([]string{TaskUserCommentsBatch, TaskGenerateContent}, Periodic...)

// Known reports whether name is a job name.
func Known(name string) bool {
	for _, n := range All {
		if n == name {
			return true
		}
	}
	return false
}

// Selection windows and limits.
const (
	popularWindow     = time.Hour
	popularMinViews   = 100
	popularLimit      = 5
	replyWindow       = 30 * time.Minute
	replyLimit        = 10
	aiCommentMaxAge   = 30 * 24 * time.Hour
	replyChance       = 0.3
	promoChance       = 0.2
	defaultBatchCount = 5
)

var (
	// ErrUnknownJob is returned for a name missing from the registry.
	ErrUnknownJob = errors.New("unknown job")

	// ErrMissingVideoID is returned when a per-video job has no target.
	ErrMissingVideoID = errors.New("video_id is required")

	// ErrLeaseHeld is returned by a Locker when another run holds the lease.
	ErrLeaseHeld = errors.New("job lease held by another run")
)

// Params carries the optional inputs of on-demand jobs.
type Params struct {
	VideoID  int64  `json:"video_id,omitempty"`
	Count    int    `json:"count,omitempty"`
	Category string `json:"category,omitempty"`
}

// JobFunc does the work of one job and records its counts on run.
type JobFunc func(ctx context.Context, params Params, run *models.JobRun) error

// Locker grants exclusive leases. TryLock returns ErrLeaseHeld when the key is
// taken; the returned func releases the lease.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error)
}

// Publisher announces finished runs.
type Publisher interface {
	PublishJobRun(ctx context.Context, run *models.JobRun) error
}

// IsPermanent reports whether retrying err cannot help.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrUnknownJob) ||
		errors.Is(err, ErrMissingVideoID) ||
		errors.Is(err, db.ErrNotFound) ||
		errors.Is(err, generator.ErrNoCategories) ||
		errors.Is(err, generator.ErrNoVideos) ||
		errors.Is(err, engagement.ErrUnknownOffer)
}

func leaseKey(name string) string {
	return "job_lease:" + name
}
