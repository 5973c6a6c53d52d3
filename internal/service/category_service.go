package service

import (
	"context"
	"strings"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"github.com/ad-tracker/video-engagement-sim/internal/db/models"
	"github.com/ad-tracker/video-engagement-sim/internal/db/repository"
	"github.com/ad-tracker/video-engagement-sim/internal/generator"
	"github.com/ad-tracker/video-engagement-sim/internal/validation"
	"github.com/ad-tracker/video-engagement-sim/pkg/logger"
)

// CategoryInput is the editable part of a category.
type CategoryInput struct {
	Name        string `json:"name" validate:"notblank,max=50"`
	Description string `json:"description" validate:"max=500"`
	IsActive    *bool  `json:"is_active"`
}

// SeedResult reports what SeedCategories did.
type SeedResult struct {
	Created    int                `json:"created"`
	Existing   int                `json:"existing"`
	Categories []*models.Category `json:"categories"`
}

// CategoryService manages video categories.
type CategoryService struct {
	categories repository.CategoryRepository
	validator  *validation.Validator
}

// NewCategoryService creates a CategoryService.
func NewCategoryService(categories repository.CategoryRepository, v *validation.Validator) *CategoryService {
	return &CategoryService{categories: categories, validator: v}
}

// Create stores a new category.
func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*models.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validator.Struct(&in); err != nil {
		return nil, invalid(err)
	}

	category := models.NewCategory(in.Name, in.Description)
	if in.IsActive != nil {
		category.IsActive = *in.IsActive
	}

	if err := s.categories.Create(ctx, category); err != nil {
		return nil, storeError(err, "category", 0, "create category")
	}
	return category, nil
}

// Get returns one category.
func (s *CategoryService) Get(ctx context.Context, id int64) (*models.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "category", id, "load category")
	}
	return category, nil
}

// List returns categories ordered by name.
func (s *CategoryService) List(ctx context.Context, activeOnly bool) ([]*models.Category, error) {
	categories, err := s.categories.List(ctx, activeOnly)
	if err != nil {
		return nil, &ProcessingError{Message: "failed to list categories", Cause: err}
	}
	return categories, nil
}

// Update renames or toggles a category. The slug follows the name.
func (s *CategoryService) Update(ctx context.Context, id int64, in CategoryInput) (*models.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validator.Struct(&in); err != nil {
		return nil, invalid(err)
	}

	category, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	category.Name = in.Name
	category.Slug = slug.Make(in.Name)
	category.Description = in.Description
	if in.IsActive != nil {
		category.IsActive = *in.IsActive
	}

	if err := s.categories.Update(ctx, category); err != nil {
		return nil, storeError(err, "category", id, "update category")
	}
	return category, nil
}

// Delete removes a category; its videos become uncategorized.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	return storeError(s.categories.Delete(ctx, id), "category", id, "delete category")
}

// SeedCategories creates the default categories that are missing.
func (s *CategoryService) SeedCategories(ctx context.Context) (*SeedResult, error) {
	result := &SeedResult{}
	for _, seed := range generator.DefaultCategories() {
		category, created, err := s.categories.GetOrCreate(ctx, seed.Name, seed.Description)
		if err != nil {
			return result, &ProcessingError{Message: "failed to seed category " + seed.Name, Cause: err}
		}
		if created {
			result.Created++
		} else {
			result.Existing++
		}
		result.Categories = append(result.Categories, category)
	}

	logger.Log.Info("Categories seeded",
		zap.Int("created", result.Created),
		zap.Int("existing", result.Existing))

	return result, nil
}
