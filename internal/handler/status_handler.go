package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ad-tracker/video-engagement-sim/internal/service"
)

// StatusHandler serves the API status summary.
type StatusHandler struct {
	engagement *service.EngagementService
	version    string
}

// NewStatusHandler creates a StatusHandler.
func NewStatusHandler(engagement *service.EngagementService, version string) *StatusHandler {
	return &StatusHandler{engagement: engagement, version: version}
}

// Status returns store counts and recent job outcomes.
func (h *StatusHandler) Status(c *gin.Context) {
	stats, err := h.engagement.Stats(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "running",
		"version": h.version,
		"stats":   stats,
	})
}
