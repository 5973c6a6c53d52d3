package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ad-tracker/video-engagement-sim/internal/db"
	"github.com/ad-tracker/video-engagement-sim/internal/db/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	slugConstraint  = "videos_slug_key"
	maxSlugAttempts = 20
)

// CounterDelta is an additive change applied to a video's counters in SQL.
type CounterDelta struct {
	Views    int64
	Likes    int64
	Dislikes int64
}

// VideoStats summarises the video table.
type VideoStats struct {
	Total      int64 `json:"total_videos"`
	Published  int64 `json:"published_videos"`
	TotalViews int64 `json:"total_views"`
	TotalLikes int64 `json:"total_likes"`
}

// VideoRepository defines operations for managing videos. Soft-deleted videos
// are invisible to every read except Restore.
type VideoRepository interface {
	// Create inserts a video, suffixing the slug when it collides.
	Create(ctx context.Context, video *models.Video) error

	// CreateBatch inserts videos in one round trip, skipping any that collide
	// with an existing slug or channel/title pair. Returns the number inserted.
	CreateBatch(ctx context.Context, videos []*models.Video) (int, error)

	GetByID(ctx context.Context, id int64) (*models.Video, error)

	// List returns a filtered page of videos and the total match count.
	List(ctx context.Context, filters VideoFilters) ([]*models.Video, int, error)

	// Update persists editable fields. Counters are never written here.
	Update(ctx context.Context, video *models.Video) error

	SoftDelete(ctx context.Context, id int64) error
	Restore(ctx context.Context, id int64) error
	HardDelete(ctx context.Context, id int64) error

	// DeleteAll removes every video and, by cascade, every comment.
	DeleteAll(ctx context.Context) (int64, error)

	// IncrementCounters applies delta atomically and returns the updated row.
	IncrementCounters(ctx context.Context, id int64, delta CounterDelta) (*models.Video, error)

	// RecomputeCommentCount sets comment_count to the number of approved comments.
	RecomputeCommentCount(ctx context.Context, id int64) (int64, error)

	// RefreshStatistics adds views and likes and recomputes comment_count in one statement.
	RefreshStatistics(ctx context.Context, id int64, views, likes int64) (*models.Video, error)

	// ListPublishedIDs returns the ids of every visible published video.
	ListPublishedIDs(ctx context.Context) ([]int64, error)

	// ListPopular returns published videos with more than minViews views or at
	// least one comment since the given time, ranked by views then recent comments.
	ListPopular(ctx context.Context, since time.Time, minViews int64, limit int) ([]*models.Video, error)

	// ListTrending returns published videos ranked by views then likes.
	ListTrending(ctx context.Context, limit int) ([]*models.Video, error)

	// ListCommentCandidates returns up to limit published videos with the fewest
	// approved comments, CommentCount holding the live count.
	ListCommentCandidates(ctx context.Context, limit int) ([]*models.Video, error)

	Stats(ctx context.Context) (*VideoStats, error)
}

type videoRepository struct {
	pool *pgxpool.Pool
}

// NewVideoRepository creates a new VideoRepository.
func NewVideoRepository(pool *pgxpool.Pool) VideoRepository {
	return &videoRepository{pool: pool}
}

var videoColumnNames = []string{
	"id", "title", "slug", "description", "duration", "status", "published_at",
	"category_id", "channel_name", "channel_avatar", "video_url", "thumbnail_url",
	"view_count", "like_count", "dislike_count", "comment_count", "tags", "language",
	"created_at", "updated_at", "deleted_at",
}

var videoColumns = strings.Join(videoColumnNames, ", ")

const liveCommentCountExpr = `(SELECT COUNT(*) FROM comments c WHERE c.video_id = v.id AND c.is_approved)`

// videoColumnsAs qualifies every column with a table alias. Columns named in
// overrides are replaced by the given expression, aliased back to the column name.
func videoColumnsAs(alias string, overrides map[string]string) string {
	cols := make([]string, len(videoColumnNames))
	for i, c := range videoColumnNames {
		if expr, ok := overrides[c]; ok {
			cols[i] = expr + " AS " + c
			continue
		}
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

func videoFields(v *models.Video) []any {
	return []any{
		&v.ID, &v.Title, &v.Slug, &v.Description, &v.Duration, &v.Status, &v.PublishedAt,
		&v.CategoryID, &v.ChannelName, &v.ChannelAvatar, &v.VideoURL, &v.ThumbnailURL,
		&v.ViewCount, &v.LikeCount, &v.DislikeCount, &v.CommentCount, &v.Tags, &v.Language,
		&v.CreatedAt, &v.UpdatedAt, &v.DeletedAt,
	}
}

const insertVideoSQL = `
	INSERT INTO videos (
		title, slug, description, duration, status, published_at, category_id,
		channel_name, channel_avatar, video_url, thumbnail_url,
		view_count, like_count, dislike_count, tags, language, created_at, updated_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
`

func insertVideoArgs(v *models.Video) []any {
	tags := v.Tags
	if tags == nil {
		tags = []string{}
	}
	language := v.Language
	if language == "" {
		language = models.DefaultLanguage
	}
	return []any{
		v.Title, v.Slug, v.Description, v.Duration, v.Status, v.PublishedAt, v.CategoryID,
		v.ChannelName, v.ChannelAvatar, v.VideoURL, v.ThumbnailURL,
		v.ViewCount, v.LikeCount, v.DislikeCount, tags, language, v.CreatedAt, v.UpdatedAt,
	}
}

func (r *videoRepository) Create(ctx context.Context, video *models.Video) error {
	base := video.Slug
	query := insertVideoSQL + ` RETURNING id, created_at, updated_at`

	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		err := r.pool.QueryRow(ctx, query, insertVideoArgs(video)...).
			Scan(&video.ID, &video.CreatedAt, &video.UpdatedAt)
		if err == nil {
			return nil
		}

		wrapped := db.WrapError(err, "create video")
		if !db.IsDuplicateKey(wrapped) || db.ViolatedConstraint(wrapped) != slugConstraint {
			return wrapped
		}
		video.SetSlug(fmt.Sprintf("%s-%d", base, attempt+1))
	}

	return fmt.Errorf("create video: no free slug for %q after %d attempts", base, maxSlugAttempts)
}

func (r *videoRepository) CreateBatch(ctx context.Context, videos []*models.Video) (int, error) {
	if len(videos) == 0 {
		return 0, nil
	}

	query := insertVideoSQL + ` ON CONFLICT DO NOTHING RETURNING id, created_at, updated_at`

	batch := &pgx.Batch{}
	for _, v := range videos {
		batch.Queue(query, insertVideoArgs(v)...)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for _, v := range videos {
		err := results.QueryRow().Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return inserted, db.WrapError(err, "create video batch")
		}
		inserted++
	}

	return inserted, nil
}

func (r *videoRepository) GetByID(ctx context.Context, id int64) (*models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE id = $1 AND deleted_at IS NULL`

	video := &models.Video{}
	if err := r.pool.QueryRow(ctx, query, id).Scan(videoFields(video)...); err != nil {
		return nil, db.WrapError(err, "get video by id")
	}

	return video, nil
}

func (r *videoRepository) List(ctx context.Context, filters VideoFilters) ([]*models.Video, int, error) {
	w := &whereBuilder{}
	w.raw("deleted_at IS NULL")
	if filters.CategoryID != nil {
		w.add("category_id = $%d", *filters.CategoryID)
	}
	if filters.Status != "" {
		w.add("status = $%d", filters.Status)
	}
	if filters.Language != "" {
		w.add("language = $%d", filters.Language)
	}
	if filters.ChannelName != "" {
		w.add("channel_name = $%d", filters.ChannelName)
	}
	if filters.Tag != "" {
		w.add("$%d = ANY(tags)", filters.Tag)
	}
	if filters.Search != "" {
		w.add("(title ILIKE '%%' || $%[1]d || '%%' OR description ILIKE '%%' || $%[1]d || '%%')", filters.Search)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)::int FROM videos`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, db.WrapError(err, "count videos")
	}

	pageClause, args := w.page(filters.Limit, filters.Offset)
	query := `SELECT ` + videoColumns + ` FROM videos` + w.String() +
		orderClause(videoOrderColumns, filters.OrderBy, filters.OrderDir, "created_at") +
		pageClause

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, db.WrapError(err, "list videos")
	}
	defer rows.Close()

	videos, err := scanVideos(rows)
	if err != nil {
		return nil, 0, err
	}

	return videos, total, nil
}

func (r *videoRepository) Update(ctx context.Context, video *models.Video) error {
	query := `
		UPDATE videos
		SET title = $2, slug = $3, description = $4, duration = $5, status = $6,
		    published_at = COALESCE(published_at, $7), category_id = $8,
		    channel_name = $9, channel_avatar = $10, video_url = $11, thumbnail_url = $12,
		    tags = $13, language = $14, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING published_at, updated_at
	`

	tags := video.Tags
	if tags == nil {
		tags = []string{}
	}

	err := r.pool.QueryRow(ctx, query,
		video.ID,
		video.Title,
		video.Slug,
		video.Description,
		video.Duration,
		video.Status,
		video.PublishedAt,
		video.CategoryID,
		video.ChannelName,
		video.ChannelAvatar,
		video.VideoURL,
		video.ThumbnailURL,
		tags,
		video.Language,
	).Scan(&video.PublishedAt, &video.UpdatedAt)
	if err != nil {
		return db.WrapError(err, "update video")
	}

	return nil
}

func (r *videoRepository) SoftDelete(ctx context.Context, id int64) error {
	return r.execOne(ctx, "soft delete video",
		`UPDATE videos SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
}

func (r *videoRepository) Restore(ctx context.Context, id int64) error {
	return r.execOne(ctx, "restore video",
		`UPDATE videos SET deleted_at = NULL, updated_at = NOW() WHERE id = $1 AND deleted_at IS NOT NULL`, id)
}

func (r *videoRepository) HardDelete(ctx context.Context, id int64) error {
	return r.execOne(ctx, "hard delete video", `DELETE FROM videos WHERE id = $1`, id)
}

func (r *videoRepository) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM videos`)
	if err != nil {
		return 0, db.WrapError(err, "delete all videos")
	}
	return tag.RowsAffected(), nil
}

func (r *videoRepository) execOne(ctx context.Context, op, query string, args ...any) error {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return db.WrapError(err, op)
	}
	if tag.RowsAffected() == 0 {
		return db.WrapError(pgx.ErrNoRows, op)
	}
	return nil
}

func (r *videoRepository) IncrementCounters(ctx context.Context, id int64, delta CounterDelta) (*models.Video, error) {
	query := `
		UPDATE videos
		SET view_count = view_count + $2,
		    like_count = like_count + $3,
		    dislike_count = dislike_count + $4,
		    updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING ` + videoColumns

	video := &models.Video{}
	err := r.pool.QueryRow(ctx, query, id, delta.Views, delta.Likes, delta.Dislikes).Scan(videoFields(video)...)
	if err != nil {
		return nil, db.WrapError(err, "increment video counters")
	}

	return video, nil
}

func (r *videoRepository) RecomputeCommentCount(ctx context.Context, id int64) (int64, error) {
	return recomputeCommentCount(ctx, r.pool, id)
}

const recomputeCommentCountSQL = `
	UPDATE videos
	SET comment_count = (SELECT COUNT(*) FROM comments WHERE video_id = $1 AND is_approved),
	    updated_at = NOW()
	WHERE id = $1
	RETURNING comment_count
`

func recomputeCommentCount(ctx context.Context, q db.Querier, videoID int64) (int64, error) {
	var count int64
	if err := q.QueryRow(ctx, recomputeCommentCountSQL, videoID).Scan(&count); err != nil {
		return 0, db.WrapError(err, "recompute comment count")
	}
	return count, nil
}

func (r *videoRepository) RefreshStatistics(ctx context.Context, id int64, views, likes int64) (*models.Video, error) {
	query := `
		UPDATE videos
		SET view_count = view_count + $2,
		    like_count = like_count + $3,
		    comment_count = (SELECT COUNT(*) FROM comments WHERE video_id = $1 AND is_approved),
		    updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING ` + videoColumns

	video := &models.Video{}
	if err := r.pool.QueryRow(ctx, query, id, views, likes).Scan(videoFields(video)...); err != nil {
		return nil, db.WrapError(err, "refresh video statistics")
	}

	return video, nil
}

func (r *videoRepository) ListPublishedIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id FROM videos
		WHERE status = 'published' AND deleted_at IS NULL
		ORDER BY id
	`)
	if err != nil {
		return nil, db.WrapError(err, "list published video ids")
	}
	defer rows.Close()

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, db.WrapError(err, "collect published video ids")
	}
	return ids, nil
}

func (r *videoRepository) ListPopular(ctx context.Context, since time.Time, minViews int64, limit int) ([]*models.Video, error) {
	query := `
		SELECT ` + videoColumnsAs("v", nil) + `
		FROM videos v
		LEFT JOIN comments c ON c.video_id = v.id AND c.created_at >= $1
		WHERE v.status = 'published' AND v.deleted_at IS NULL AND v.published_at <= NOW()
		GROUP BY v.id
		HAVING v.view_count > $2 OR COUNT(c.id) > 0
		ORDER BY v.view_count DESC, COUNT(c.id) DESC, v.id
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, since, minViews, limit)
	if err != nil {
		return nil, db.WrapError(err, "list popular videos")
	}
	defer rows.Close()

	return scanVideos(rows)
}

func (r *videoRepository) ListTrending(ctx context.Context, limit int) ([]*models.Video, error) {
	query := `
		SELECT ` + videoColumns + `
		FROM videos
		WHERE status = 'published' AND deleted_at IS NULL
		ORDER BY view_count DESC, like_count DESC, id
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, db.WrapError(err, "list trending videos")
	}
	defer rows.Close()

	return scanVideos(rows)
}

func (r *videoRepository) ListCommentCandidates(ctx context.Context, limit int) ([]*models.Video, error) {
	// The stored count may lag behind; rank on the live approved count.
	query := `
		SELECT ` + videoColumnsAs("v", map[string]string{"comment_count": liveCommentCountExpr}) + `
		FROM videos v
		WHERE v.status = 'published' AND v.deleted_at IS NULL
		ORDER BY comment_count ASC, v.id
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, db.WrapError(err, "list comment candidates")
	}
	defer rows.Close()

	return scanVideos(rows)
}

func (r *videoRepository) Stats(ctx context.Context) (*VideoStats, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'published'),
		       COALESCE(SUM(view_count), 0)::bigint,
		       COALESCE(SUM(like_count), 0)::bigint
		FROM videos
		WHERE deleted_at IS NULL
	`

	stats := &VideoStats{}
	if err := r.pool.QueryRow(ctx, query).Scan(&stats.Total, &stats.Published, &stats.TotalViews, &stats.TotalLikes); err != nil {
		return nil, db.WrapError(err, "video stats")
	}
	return stats, nil
}

func scanVideos(rows pgx.Rows) ([]*models.Video, error) {
	var videos []*models.Video

	for rows.Next() {
		video := &models.Video{}
		if err := rows.Scan(videoFields(video)...); err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		videos = append(videos, video)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate videos: %w", err)
	}

	return videos, nil
}
