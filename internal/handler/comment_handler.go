package handler

import (
	"context"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/ad-tracker/video-engagement-sim/internal/db/repository"
	"github.com/ad-tracker/video-engagement-sim/internal/service"
)

// commentAction runs one named operation on a comment.
type commentAction func(ctx context.Context, id int64) (any, error)

// CommentHandler serves /comments.
type CommentHandler struct {
	comments *service.CommentService
	actions  map[string]commentAction
}

// NewCommentHandler creates a CommentHandler with its fixed action table.
func NewCommentHandler(comments *service.CommentService, engagement *service.EngagementService) *CommentHandler {
	return &CommentHandler{
		comments: comments,
		actions: map[string]commentAction{
			"like": func(ctx context.Context, id int64) (any, error) {
				return comments.Like(ctx, id)
			},
			"analyze": func(ctx context.Context, id int64) (any, error) {
				return engagement.AnalyzeComment(ctx, id)
			},
			"reply": func(ctx context.Context, id int64) (any, error) {
				return engagement.ReplyToComment(ctx, id)
			},
		},
	}
}

// Actions lists the supported action names.
func (h *CommentHandler) Actions() []string {
	names := make([]string, 0, len(h.actions))
	for name := range h.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List returns a filtered page of comments.
func (h *CommentHandler) List(c *gin.Context) {
	videoID, ok := queryInt64(c, "video_id")
	if !ok {
		return
	}
	parentID, ok := queryInt64(c, "parent_id")
	if !ok {
		return
	}
	approved, ok := queryBool(c, "approved")
	if !ok {
		return
	}
	ai, ok := queryBool(c, "ai")
	if !ok {
		return
	}
	topLevel, ok := queryBool(c, "top_level")
	if !ok {
		return
	}

	filters := repository.CommentFilters{
		VideoID:       videoID,
		ParentID:      parentID,
		TopLevelOnly:  topLevel != nil && *topLevel,
		IsApproved:    approved,
		IsAIGenerated: ai,
		Limit:         queryLimit(c),
		Offset:        queryOffset(c),
		OrderBy:       c.DefaultQuery("order_by", "created_at"),
		OrderDir:      queryOrderDir(c),
	}

	comments, total, err := h.comments.List(c.Request.Context(), filters)
	if err != nil {
		handleError(c, err)
		return
	}
	list(c, comments, len(comments), total, filters.Limit, filters.Offset)
}

// Create adds a human comment.
func (h *CommentHandler) Create(c *gin.Context) {
	var in service.CommentInput
	if !bindJSON(c, &in) {
		return
	}
	comment, err := h.comments.Create(c.Request.Context(), in)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// Get returns one comment.
func (h *CommentHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	comment, err := h.comments.Get(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// Update edits a comment.
func (h *CommentHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in service.CommentUpdate
	if !bindJSON(c, &in) {
		return
	}
	comment, err := h.comments.Update(c.Request.Context(), id, in)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// Delete removes a comment and its replies.
func (h *CommentHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.comments.Delete(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Action dispatches POST /comments/:id/:action through the action table.
func (h *CommentHandler) Action(c *gin.Context) {
	name := c.Param("action")
	action, found := h.actions[name]
	if !found {
		respondError(c, http.StatusNotFound, "unknown comment action: "+name)
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	result, err := action(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
