package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ad-tracker/video-engagement-sim/internal/service"
)

// CategoryHandler serves /categories.
type CategoryHandler struct {
	categories *service.CategoryService
	videos     *service.VideoService
}

// NewCategoryHandler creates a CategoryHandler.
func NewCategoryHandler(categories *service.CategoryService, videos *service.VideoService) *CategoryHandler {
	return &CategoryHandler{categories: categories, videos: videos}
}

// List returns categories; ?active=true hides inactive ones.
func (h *CategoryHandler) List(c *gin.Context) {
	active, ok := queryBool(c, "active")
	if !ok {
		return
	}
	categories, err := h.categories.List(c.Request.Context(), active != nil && *active)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// Create adds a category.
func (h *CategoryHandler) Create(c *gin.Context) {
	var in service.CategoryInput
	if !bindJSON(c, &in) {
		return
	}
	category, err := h.categories.Create(c.Request.Context(), in)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// Get returns one category.
func (h *CategoryHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	category, err := h.categories.Get(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// Update replaces a category's fields.
func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in service.CategoryInput
	if !bindJSON(c, &in) {
		return
	}
	category, err := h.categories.Update(c.Request.Context(), id, in)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// Delete removes a category.
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.categories.Delete(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Seed creates the default categories that are missing.
func (h *CategoryHandler) Seed(c *gin.Context) {
	result, err := h.categories.SeedCategories(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Videos lists the published videos in a category.
func (h *CategoryHandler) Videos(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	limit, offset := queryLimit(c), queryOffset(c)
	videos, total, err := h.videos.ByCategory(c.Request.Context(), id, limit, offset)
	if err != nil {
		handleError(c, err)
		return
	}
	list(c, views(videos), len(videos), total, limit, offset)
}
