// Package models contains the request and response DTOs of the HTTP API.
package models

import (
	"time"

	"github.com/ad-tracker/video-engagement-sim/internal/validation"
)

// ErrorResponse represents an error response.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type ErrorResponse struct {
	Timestamp time.Time               `json:"timestamp"`
	Status    int                     `json:"status"`
	Error     string                  `json:"error"`
	Message   string                  `json:"message"`
	Path      string                  `json:"path"`
	Details   []validation.FieldError `json:"details,omitempty"`
}

// ListResponse wraps a page of items with its pagination metadata.
type ListResponse struct {
	Items  any `json:"items"`
	Count  int `json:"count"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// GenerateCommentsRequest asks for simulated viewer comments on a video.
type GenerateCommentsRequest struct {
	Count int `json:"count"`
}

// PromotionRequest names the offer to promote; empty picks one.
type PromotionRequest struct {
	Offer string `json:"offer"`
}

// JobRequest carries the optional parameters of a job.
type JobRequest struct {
	VideoID  int64  `json:"video_id"`
	Count    int    `json:"count"`
	Category string `json:"category"`
}

// EnqueueResponse is returned when a job is handed to the worker.
type EnqueueResponse struct {
	TaskID string `json:"task_id"`
	Task   string `json:"task"`
	Status string `json:"status"`
}
