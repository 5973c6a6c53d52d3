package service

import (
	"context"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"

	"github.com/ad-tracker/video-engagement-sim/internal/config"
	"github.com/ad-tracker/video-engagement-sim/internal/db/models"
	"github.com/ad-tracker/video-engagement-sim/internal/jobs"
)

func TestMessagePublisher_BreakerOpensWithoutChannel(t *testing.T) {
	mp := &MessagePublisher{
		config:  &config.RabbitMQConfig{Exchange: "test.jobs"},
		breaker: newBreaker("test-publisher"),
	}
	run := models.NewJobRun(jobs.TaskUpdateStats, time.Now())

	for i := 0; i < 5; i++ {
		err := mp.PublishJobRun(context.Background(), run)
		assert.ErrorContains(t, err, "channel is not initialized")
	}

	err := mp.PublishJobRun(context.Background(), run)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, gobreaker.StateOpen, mp.breaker.State())
	assert.False(t, mp.IsHealthy())
}
