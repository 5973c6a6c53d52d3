package repository

import (
	"context"
	"fmt"

	"github.com/ad-tracker/video-engagement-sim/internal/db"
	"github.com/ad-tracker/video-engagement-sim/internal/db/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CategoryRepository defines operations for managing video categories.
type CategoryRepository interface {
	// Create inserts a category. Names are unique ignoring case.
	Create(ctx context.Context, category *models.Category) error

	// GetOrCreate returns the category with the given name, creating it when missing.
	GetOrCreate(ctx context.Context, name, description string) (*models.Category, bool, error)

	GetByID(ctx context.Context, id int64) (*models.Category, error)

	GetByName(ctx context.Context, name string) (*models.Category, error)

	// List returns categories ordered by name.
	List(ctx context.Context, activeOnly bool) ([]*models.Category, error)

	Update(ctx context.Context, category *models.Category) error

	// Delete removes the category; its videos keep existing with no category.
	Delete(ctx context.Context, id int64) error
}

type categoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(pool *pgxpool.Pool) CategoryRepository {
	return &categoryRepository{pool: pool}
}

const categoryColumns = `id, name, slug, description, is_active, created_at`

func categoryFields(c *models.Category) []any {
	return []any{&c.ID, &c.Name, &c.Slug, &c.Description, &c.IsActive, &c.CreatedAt}
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	query := `
		INSERT INTO categories (name, slug, description, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		category.Name,
		category.Slug,
		category.Description,
		category.IsActive,
		category.CreatedAt,
	).Scan(&category.ID, &category.CreatedAt)
	if err != nil {
		return db.WrapError(err, "create category")
	}

	return nil
}

func (r *categoryRepository) GetOrCreate(ctx context.Context, name, description string) (*models.Category, bool, error) {
	existing, err := r.GetByName(ctx, name)
	if err == nil {
		return existing, false, nil
	}
	if !db.IsNotFound(err) {
		return nil, false, err
	}

	category := models.NewCategory(name, description)
	if err := r.Create(ctx, category); err != nil {
		// Lost a race with a concurrent seeder.
		if db.IsDuplicateKey(err) {
			existing, getErr := r.GetByName(ctx, name)
			return existing, false, getErr
		}
		return nil, false, err
	}

	return category, true, nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`

	category := &models.Category{}
	if err := r.pool.QueryRow(ctx, query, id).Scan(categoryFields(category)...); err != nil {
		return nil, db.WrapError(err, "get category by id")
	}

	return category, nil
}

func (r *categoryRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE LOWER(name) = LOWER($1)`

	category := &models.Category{}
	if err := r.pool.QueryRow(ctx, query, name).Scan(categoryFields(category)...); err != nil {
		return nil, db.WrapError(err, "get category by name")
	}

	return category, nil
}

func (r *categoryRepository) List(ctx context.Context, activeOnly bool) ([]*models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, db.WrapError(err, "list categories")
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		category := &models.Category{}
		if err := rows.Scan(categoryFields(category)...); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	return categories, nil
}

func (r *categoryRepository) Update(ctx context.Context, category *models.Category) error {
	query := `
		UPDATE categories
		SET name = $2, slug = $3, description = $4, is_active = $5
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		category.ID,
		category.Name,
		category.Slug,
		category.Description,
		category.IsActive,
	)
	if err != nil {
		return db.WrapError(err, "update category")
	}
	if tag.RowsAffected() == 0 {
		return db.WrapError(pgx.ErrNoRows, "update category")
	}

	return nil
}

func (r *categoryRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return db.WrapError(err, "delete category")
	}
	if tag.RowsAffected() == 0 {
		return db.WrapError(pgx.ErrNoRows, "delete category")
	}
	return nil
}
