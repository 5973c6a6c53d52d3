package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ad-tracker/video-engagement-sim/internal/db/models"
	"github.com/ad-tracker/video-engagement-sim/internal/db/repository"
	dto "github.com/ad-tracker/video-engagement-sim/internal/models"
	"github.com/ad-tracker/video-engagement-sim/internal/service"
)

// VideoHandler serves /videos.
type VideoHandler struct {
	videos     *service.VideoService
	engagement *service.EngagementService
}

// NewVideoHandler creates a VideoHandler.
func NewVideoHandler(videos *service.VideoService, engagement *service.EngagementService) *VideoHandler {
	return &VideoHandler{videos: videos, engagement: engagement}
}

func views(videos []*models.Video) []models.VideoView {
	out := make([]models.VideoView, len(videos))
	for i, v := range videos {
		out[i] = v.View()
	}
	return out
}

// List returns a filtered page of videos.
func (h *VideoHandler) List(c *gin.Context) {
	categoryID, ok := queryInt64(c, "category_id")
	if !ok {
		return
	}

	filters := repository.VideoFilters{
		CategoryID:  categoryID,
		Status:      c.Query("status"),
		Language:    c.Query("language"),
		ChannelName: c.Query("channel"),
		Search:      c.Query("q"),
		Tag:         c.Query("tag"),
		Limit:       queryLimit(c),
		Offset:      queryOffset(c),
		OrderBy:     c.DefaultQuery("order_by", "created_at"),
		OrderDir:    queryOrderDir(c),
	}

	videos, total, err := h.videos.List(c.Request.Context(), filters)
	if err != nil {
		handleError(c, err)
		return
	}
	list(c, views(videos), len(videos), total, filters.Limit, filters.Offset)
}

// Trending returns the top published videos.
func (h *VideoHandler) Trending(c *gin.Context) {
	videos, err := h.videos.Trending(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, views(videos))
}

// Create adds a video.
func (h *VideoHandler) Create(c *gin.Context) {
	var in service.VideoInput
	if !bindJSON(c, &in) {
		return
	}
	video, err := h.videos.Create(c.Request.Context(), in)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, video.View())
}

// Get returns one video.
func (h *VideoHandler) Get(c *gin.Context) {
	h.withVideo(c, h.videos.Get)
}

// Update replaces a video's editable fields.
func (h *VideoHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in service.VideoInput
	if !bindJSON(c, &in) {
		return
	}
	video, err := h.videos.Update(c.Request.Context(), id, in)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, video.View())
}

// Delete soft deletes a video.
func (h *VideoHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.videos.Delete(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Restore undoes a soft delete.
func (h *VideoHandler) Restore(c *gin.Context) { h.withVideo(c, h.videos.Restore) }

// Like adds a like.
func (h *VideoHandler) Like(c *gin.Context) { h.withVideo(c, h.videos.Like) }

// Dislike adds a dislike.
func (h *VideoHandler) Dislike(c *gin.Context) { h.withVideo(c, h.videos.Dislike) }

// View counts a view.
func (h *VideoHandler) View(c *gin.Context) { h.withVideo(c, h.videos.View) }

func (h *VideoHandler) withVideo(c *gin.Context, fn func(context.Context, int64) (*models.Video, error)) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	video, err := fn(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, video.View())
}

// GenerateComments adds simulated viewer comments.
func (h *VideoHandler) GenerateComments(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.GenerateCommentsRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	comments, err := h.engagement.GenerateUserComments(c.Request.Context(), id, req.Count)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"video_id": id,
		"created":  len(comments),
		"comments": comments,
	})
}

// AnalyzeReplies analyzes recent comments and replies where due.
func (h *VideoHandler) AnalyzeReplies(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	results, err := h.engagement.AnalyzeAndReply(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	replies := 0
	for _, r := range results {
		if r.Reply != nil {
			replies++
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"video_id": id,
		"analyzed": len(results),
		"replies":  replies,
		"results":  results,
	})
}

// Promote posts a channel promotion.
func (h *VideoHandler) Promote(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.PromotionRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	promo, err := h.engagement.GeneratePromotion(c.Request.Context(), id, req.Offer)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, promo)
}
