package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ad-tracker/video-engagement-sim/internal/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Health     *HealthHandler
	Status     *StatusHandler
	Categories *CategoryHandler
	Videos     *VideoHandler
	Comments   *CommentHandler
	Jobs       *JobHandler
}

// NewRouter builds the gin engine with all routes under /api/v1.
func NewRouter(h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), middleware.Recovery())

	r.GET("/health/live", h.Health.LivenessProbe)
	r.GET("/health/ready", h.Health.ReadinessProbe)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	api.GET("/status", h.Status.Status)

	categories := api.Group("/categories")
	categories.GET("", h.Categories.List)
	categories.POST("", h.Categories.Create)
	categories.POST("/seed", h.Categories.Seed)
	categories.GET("/:id", h.Categories.Get)
	categories.PUT("/:id", h.Categories.Update)
	categories.DELETE("/:id", h.Categories.Delete)
	categories.GET("/:id/videos", h.Categories.Videos)

	videos := api.Group("/videos")
	videos.GET("", h.Videos.List)
	videos.POST("", h.Videos.Create)
	videos.GET("/trending", h.Videos.Trending)
	videos.GET("/:id", h.Videos.Get)
	videos.PUT("/:id", h.Videos.Update)
	videos.DELETE("/:id", h.Videos.Delete)
	videos.POST("/:id/restore", h.Videos.Restore)
	videos.POST("/:id/like", h.Videos.Like)
	videos.POST("/:id/dislike", h.Videos.Dislike)
	videos.POST("/:id/view", h.Videos.View)
	videos.POST("/:id/generate-comments", h.Videos.GenerateComments)
	videos.POST("/:id/analyze-replies", h.Videos.AnalyzeReplies)
	videos.POST("/:id/promote", h.Videos.Promote)

	comments := api.Group("/comments")
	comments.GET("", h.Comments.List)
	comments.POST("", h.Comments.Create)
	comments.GET("/:id", h.Comments.Get)
	comments.PUT("/:id", h.Comments.Update)
	comments.DELETE("/:id", h.Comments.Delete)
	comments.POST("/:id/:action", h.Comments.Action)

	jobs := api.Group("/jobs")
	jobs.GET("", h.Jobs.Names)
	jobs.GET("/runs", h.Jobs.Runs)
	jobs.POST("/:name/run", h.Jobs.Run)
	jobs.POST("/:name/enqueue", h.Jobs.Enqueue)

	return r
}
