package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const readinessTimeout = 2 * time.Second

// Pinger checks a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker reports whether a dependency is usable.
type HealthChecker interface {
	IsHealthy() bool
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	db        Pinger
	publisher HealthChecker
}

// NewHealthHandler creates a new HealthHandler instance. publisher may be nil
// when event publishing is disabled.
func NewHealthHandler(db Pinger, publisher HealthChecker) *HealthHandler {
	return &HealthHandler{
		db:        db,
		publisher: publisher,
	}
}

// LivenessProbe checks if the application is running.
func (h *HealthHandler) LivenessProbe(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "UP",
		"time":   time.Now(),
	})
}

// ReadinessProbe checks if the application is ready to serve traffic.
func (h *HealthHandler) ReadinessProbe(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "DOWN",
			"database": "unhealthy",
			"error":    err.Error(),
			"time":     time.Now(),
		})
		return
	}

	rabbit := "disabled"
	if h.publisher != nil {
		if !h.publisher.IsHealthy() {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "DOWN",
				"database": "healthy",
				"rabbitmq": "unhealthy",
				"time":     time.Now(),
			})
			return
		}
		rabbit = "healthy"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "UP",
		"database": "healthy",
		"rabbitmq": rabbit,
		"time":     time.Now(),
	})
}
