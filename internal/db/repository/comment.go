package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/ad-tracker/video-engagement-sim/internal/db"
	"github.com/ad-tracker/video-engagement-sim/internal/db/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CommentStats summarises the comment table.
type CommentStats struct {
	Total       int64 `json:"total_comments"`
	AIGenerated int64 `json:"ai_comments"`
	Replies     int64 `json:"replies"`
}

// CommentRepository defines operations for managing comments. Every write
// recomputes the owning video's comment_count in the same transaction.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error

	GetByID(ctx context.Context, id int64) (*models.Comment, error)

	List(ctx context.Context, filters CommentFilters) ([]*models.Comment, int, error)

	// Update persists content and approval.
	Update(ctx context.Context, comment *models.Comment) error

	// Delete removes the comment and, by cascade, its replies.
	Delete(ctx context.Context, id int64) error

	// DeleteAll removes every comment and zeroes all comment counts.
	DeleteAll(ctx context.Context) (int64, error)

	// IncrementLikes adds one like atomically and returns the updated row.
	IncrementLikes(ctx context.Context, id int64) (*models.Comment, error)

	// HasReplyFrom reports whether author has replied to the comment.
	HasReplyFrom(ctx context.Context, parentID int64, author string) (bool, error)

	// ListReplyCandidates returns top-level, human, unanswered comments created
	// since the given time, ranked by likes then recency.
	ListReplyCandidates(ctx context.Context, since time.Time, limit int) ([]*models.Comment, error)

	// ListRecentTopLevel returns the newest top-level comments of a video.
	ListRecentTopLevel(ctx context.Context, videoID int64, limit int) ([]*models.Comment, error)

	// DeleteAIOlderThan removes AI-generated comments created before cutoff and
	// recomputes the affected videos. Returns the number deleted.
	DeleteAIOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	Stats(ctx context.Context) (*CommentStats, error)
}

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository creates a new CommentRepository.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

const commentColumns = `id, video_id, parent_id, content, author_name, author_avatar, like_count,
	is_approved, is_ai_generated, ai_model_used, created_at, updated_at`

func commentFields(c *models.Comment) []any {
	return []any{
		&c.ID, &c.VideoID, &c.ParentID, &c.Content, &c.AuthorName, &c.AuthorAvatar, &c.LikeCount,
		&c.IsApproved, &c.IsAIGenerated, &c.AIModelUsed, &c.CreatedAt, &c.UpdatedAt,
	}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if comment.AuthorAvatar == "" {
		comment.AuthorAvatar = models.DefaultAvatar(comment.AuthorName)
	}

	query := `
		INSERT INTO comments (
			video_id, parent_id, content, author_name, author_avatar, like_count,
			is_approved, is_ai_generated, ai_model_used, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`

	return db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, query,
			comment.VideoID,
			comment.ParentID,
			comment.Content,
			comment.AuthorName,
			comment.AuthorAvatar,
			comment.LikeCount,
			comment.IsApproved,
			comment.IsAIGenerated,
			comment.AIModelUsed,
			comment.CreatedAt,
			comment.UpdatedAt,
		).Scan(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt)
		if err != nil {
			return db.WrapError(err, "create comment")
		}

		_, err = recomputeCommentCount(ctx, tx, comment.VideoID)
		return err
	})
}

func (r *commentRepository) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE id = $1`

	comment := &models.Comment{}
	if err := r.pool.QueryRow(ctx, query, id).Scan(commentFields(comment)...); err != nil {
		return nil, db.WrapError(err, "get comment by id")
	}

	return comment, nil
}

func (r *commentRepository) List(ctx context.Context, filters CommentFilters) ([]*models.Comment, int, error) {
	w := &whereBuilder{}
	if filters.VideoID != nil {
		w.add("video_id = $%d", *filters.VideoID)
	}
	if filters.ParentID != nil {
		w.add("parent_id = $%d", *filters.ParentID)
	} else if filters.TopLevelOnly {
		w.raw("parent_id IS NULL")
	}
	if filters.IsApproved != nil {
		w.add("is_approved = $%d", *filters.IsApproved)
	}
	if filters.IsAIGenerated != nil {
		w.add("is_ai_generated = $%d", *filters.IsAIGenerated)
	}
	if filters.Since != nil {
		w.add("created_at >= $%d", *filters.Since)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)::int FROM comments`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, db.WrapError(err, "count comments")
	}

	pageClause, args := w.page(filters.Limit, filters.Offset)
	query := `SELECT ` + commentColumns + ` FROM comments` + w.String() +
		orderClause(commentOrderColumns, filters.OrderBy, filters.OrderDir, "created_at") +
		pageClause

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, db.WrapError(err, "list comments")
	}
	defer rows.Close()

	comments, err := scanComments(rows)
	if err != nil {
		return nil, 0, err
	}

	return comments, total, nil
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	query := `
		UPDATE comments
		SET content = $2, is_approved = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING video_id, updated_at
	`

	return db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, query, comment.ID, comment.Content, comment.IsApproved).
			Scan(&comment.VideoID, &comment.UpdatedAt)
		if err != nil {
			return db.WrapError(err, "update comment")
		}

		_, err = recomputeCommentCount(ctx, tx, comment.VideoID)
		return err
	})
}

func (r *commentRepository) Delete(ctx context.Context, id int64) error {
	return db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		var videoID int64
		err := tx.QueryRow(ctx, `DELETE FROM comments WHERE id = $1 RETURNING video_id`, id).Scan(&videoID)
		if err != nil {
			return db.WrapError(err, "delete comment")
		}

		_, err = recomputeCommentCount(ctx, tx, videoID)
		return err
	})
}

func (r *commentRepository) DeleteAll(ctx context.Context) (int64, error) {
	var deleted int64
	err := db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM comments`)
		if err != nil {
			return db.WrapError(err, "delete all comments")
		}
		deleted = tag.RowsAffected()

		if _, err := tx.Exec(ctx, `UPDATE videos SET comment_count = 0 WHERE comment_count <> 0`); err != nil {
			return db.WrapError(err, "reset comment counts")
		}
		return nil
	})
	return deleted, err
}

func (r *commentRepository) IncrementLikes(ctx context.Context, id int64) (*models.Comment, error) {
	query := `
		UPDATE comments
		SET like_count = like_count + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + commentColumns

	comment := &models.Comment{}
	if err := r.pool.QueryRow(ctx, query, id).Scan(commentFields(comment)...); err != nil {
		return nil, db.WrapError(err, "increment comment likes")
	}

	return comment, nil
}

func (r *commentRepository) HasReplyFrom(ctx context.Context, parentID int64, author string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM comments WHERE parent_id = $1 AND author_name = $2)`,
		parentID, author,
	).Scan(&exists)
	if err != nil {
		return false, db.WrapError(err, "check existing reply")
	}
	return exists, nil
}

func (r *commentRepository) ListReplyCandidates(ctx context.Context, since time.Time, limit int) ([]*models.Comment, error) {
	query := `
		SELECT ` + commentColumns + `
		FROM comments c
		WHERE c.created_at >= $1
		  AND c.parent_id IS NULL
		  AND NOT c.is_ai_generated
		  AND NOT EXISTS (SELECT 1 FROM comments r WHERE r.parent_id = c.id)
		  AND EXISTS (SELECT 1 FROM videos v WHERE v.id = c.video_id AND v.deleted_at IS NULL)
		ORDER BY c.like_count DESC, c.created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, since, limit)
	if err != nil {
		return nil, db.WrapError(err, "list reply candidates")
	}
	defer rows.Close()

	return scanComments(rows)
}

func (r *commentRepository) ListRecentTopLevel(ctx context.Context, videoID int64, limit int) ([]*models.Comment, error) {
	query := `
		SELECT ` + commentColumns + `
		FROM comments
		WHERE video_id = $1 AND parent_id IS NULL
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, videoID, limit)
	if err != nil {
		return nil, db.WrapError(err, "list recent comments")
	}
	defer rows.Close()

	return scanComments(rows)
}

func (r *commentRepository) DeleteAIOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	var deleted int64

	err := db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			DELETE FROM comments
			WHERE is_ai_generated AND created_at < $1
			RETURNING video_id
		`, cutoff)
		if err != nil {
			return db.WrapError(err, "delete old ai comments")
		}

		videoIDs, err := pgx.CollectRows(rows, pgx.RowTo[int64])
		if err != nil {
			return db.WrapError(err, "collect deleted comment videos")
		}
		deleted = int64(len(videoIDs))

		seen := make(map[int64]struct{}, len(videoIDs))
		for _, id := range videoIDs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			if _, err := recomputeCommentCount(ctx, tx, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return deleted, nil
}

func (r *commentRepository) Stats(ctx context.Context) (*CommentStats, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE is_ai_generated),
		       COUNT(*) FILTER (WHERE parent_id IS NOT NULL)
		FROM comments
	`

	stats := &CommentStats{}
	if err := r.pool.QueryRow(ctx, query).Scan(&stats.Total, &stats.AIGenerated, &stats.Replies); err != nil {
		return nil, db.WrapError(err, "comment stats")
	}
	return stats, nil
}

func scanComments(rows pgx.Rows) ([]*models.Comment, error) {
	var comments []*models.Comment

	for rows.Next() {
		comment := &models.Comment{}
		if err := rows.Scan(commentFields(comment)...); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, comment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}

	return comments, nil
}
