// Package metrics holds the Prometheus collectors shared by the server and worker.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// JobRunsTotal counts finished job runs by task and status.
	JobRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sim_job_runs_total",
		Help: "Total number of job runs by task and status",
	}, []string{"task", "status"})

	// JobDuration measures job run duration.
	JobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sim_job_duration_seconds",
		Help:    "Job run duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"task"})

	// JobAttempts counts attempts including retries.
	JobAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sim_job_attempts_total",
		Help: "Total number of job attempts including retries",
	}, []string{"task"})

	// CommentsCreated counts comments written by generators and the engine.
	CommentsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sim_comments_created_total",
		Help: "Total number of comments created by source",
	}, []string{"source"})

	// VideosCreated counts generated videos.
	VideosCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sim_videos_created_total",
		Help: "Total number of generated videos",
	})

	// RepliesSkipped counts comments the engine declined to answer.
	RepliesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sim_replies_skipped_total",
		Help: "Total number of analyzed comments that did not get a reply",
	})

	// EventsPublished counts job run events sent to the broker by outcome.
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sim_events_published_total",
		Help: "Total number of job run events published by outcome",
	}, []string{"outcome"})

	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sim_api_requests_total",
		Help: "Total number of API requests",
	}, []string{"method", "route", "status_code"})

	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sim_api_request_duration_seconds",
		Help:    "API request duration in seconds",
		Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"method", "route"})
)

// Comment sources.
const (
	SourceUser   = "user"
	SourceReply  = "reply"
	SourcePromo  = "promo"
	SourceSeeded = "seeded"
)

// ObserveJob records a finished run.
func ObserveJob(task, status string, attempts int, elapsed time.Duration) {
	JobRunsTotal.WithLabelValues(task, status).Inc()
	JobDuration.WithLabelValues(task).Observe(elapsed.Seconds())
	JobAttempts.WithLabelValues(task).Add(float64(attempts))
}

// RecordAPIRequest records one served request.
func RecordAPIRequest(method, route, statusCode string, elapsed time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
