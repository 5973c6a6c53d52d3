package repository

import (
	"context"
	"fmt"

	"github.com/ad-tracker/video-engagement-sim/internal/db"
	"github.com/ad-tracker/video-engagement-sim/internal/db/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// JobRunRepository stores the summary records of job executions.
type JobRunRepository interface {
	Record(ctx context.Context, run *models.JobRun) error

	// List returns runs newest first, with the total match count.
	List(ctx context.Context, filters JobRunFilters) ([]*models.JobRun, int, error)

	// Stats counts runs per status over the last seven days.
	Stats(ctx context.Context) (map[string]int, error)
}

type jobRunRepository struct {
	pool *pgxpool.Pool
}

// NewJobRunRepository creates a new JobRunRepository.
func NewJobRunRepository(pool *pgxpool.Pool) JobRunRepository {
	return &jobRunRepository{pool: pool}
}

func (r *jobRunRepository) Record(ctx context.Context, run *models.JobRun) error {
	query := `
		INSERT INTO job_runs (id, task, status, processed, created, deleted, attempts, error, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		run.ID,
		run.Task,
		run.Status,
		run.Processed,
		run.Created,
		run.Deleted,
		run.Attempts,
		run.Error,
		run.StartedAt,
		run.FinishedAt,
	)
	if err != nil {
		return db.WrapError(err, "record job run")
	}

	return nil
}

func (r *jobRunRepository) List(ctx context.Context, filters JobRunFilters) ([]*models.JobRun, int, error) {
	w := &whereBuilder{}
	if filters.Task != "" {
		w.add("task = $%d", filters.Task)
	}
	if filters.Status != "" {
		w.add("status = $%d", filters.Status)
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*)::int FROM job_runs"+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, db.WrapError(err, "count job runs")
	}

	pageClause, args := w.page(filters.Limit, filters.Offset)
	query := `
		SELECT id, task, status, processed, created, deleted, attempts, error, started_at, finished_at
		FROM job_runs` + w.String() + ` ORDER BY finished_at DESC` + pageClause

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, db.WrapError(err, "list job runs")
	}
	defer rows.Close()

	var runs []*models.JobRun
	for rows.Next() {
		run := &models.JobRun{}
		err := rows.Scan(
			&run.ID, &run.Task, &run.Status,
			&run.Processed, &run.Created, &run.Deleted, &run.Attempts,
			&run.Error, &run.StartedAt, &run.FinishedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan job run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, db.WrapError(err, "iterate job runs")
	}

	return runs, total, nil
}

func (r *jobRunRepository) Stats(ctx context.Context) (map[string]int, error) {
	query := `
		SELECT status, COUNT(*)::int AS count
		FROM job_runs
		WHERE finished_at >= NOW() - INTERVAL '7 days'
		GROUP BY status
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, db.WrapError(err, "job run stats")
	}
	defer rows.Close()

	stats := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, db.WrapError(err, "scan job run stats")
		}
		stats[status] = count
	}

	return stats, rows.Err()
}
