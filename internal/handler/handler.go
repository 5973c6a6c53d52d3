// Package handler provides HTTP request handlers for the application.
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ad-tracker/video-engagement-sim/internal/db/repository"
	"github.com/ad-tracker/video-engagement-sim/internal/generator"
	"github.com/ad-tracker/video-engagement-sim/internal/models"
	"github.com/ad-tracker/video-engagement-sim/internal/service"
	"github.com/ad-tracker/video-engagement-sim/pkg/logger"
)

func respondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Timestamp: time.Now(),
		Path:      c.Request.URL.Path,
	})
}

// handleError maps service errors onto status codes.
func handleError(c *gin.Context, err error) {
	var (
		validationErr *service.ValidationError
		notFoundErr   *service.NotFoundError
		conflictErr   *service.ConflictError
		processingErr *service.ProcessingError
	)

	switch {
	case errors.As(err, &validationErr):
		logger.Log.Warn("Validation error",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{
			Status:    http.StatusBadRequest,
			Error:     "Bad Request",
			Message:   validationErr.Message,
			Details:   validationErr.Fields,
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
	case errors.As(err, &notFoundErr):
		respondError(c, http.StatusNotFound, notFoundErr.Error())
	case errors.As(err, &conflictErr):
		respondError(c, http.StatusConflict, conflictErr.Error())
	case errors.Is(err, generator.ErrNoCategories), errors.Is(err, generator.ErrNoVideos):
		respondError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &processingErr):
		logger.Log.Error("Processing error",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
		respondError(c, http.StatusInternalServerError, processingErr.Message)
	default:
		logger.Log.Error("Unexpected error",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
		respondError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

// bindOptionalJSON decodes the body when there is one.
func bindOptionalJSON(c *gin.Context, dst any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return false
	}
	return true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return false
	}
	return true
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, name+" must be a positive integer")
		return 0, false
	}
	return id, true
}

func queryLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 {
		return repository.DefaultLimit
	}
	if limit > repository.MaxLimit {
		return repository.MaxLimit
	}
	return limit
}

func queryOffset(c *gin.Context) int {
	offset, err := strconv.Atoi(c.Query("offset"))
	if err != nil || offset < 0 {
		return 0
	}
	return offset
}

func queryBool(c *gin.Context, key string) (*bool, bool) {
	val := c.Query(key)
	if val == "" {
		return nil, true
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid boolean value for "+key)
		return nil, false
	}
	return &b, true
}

func queryInt64(c *gin.Context, key string) (*int64, bool) {
	val := c.Query(key)
	if val == "" {
		return nil, true
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, key+" must be an integer")
		return nil, false
	}
	return &n, true
}

func queryOrderDir(c *gin.Context) string {
	if strings.EqualFold(c.Query("order"), "asc") {
		return "asc"
	}
	return "desc"
}

func list(c *gin.Context, items any, count, total, limit, offset int) {
	c.JSON(http.StatusOK, models.ListResponse{
		Items:  items,
		Count:  count,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}
