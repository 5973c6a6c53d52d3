package queue

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/hibiken/asynq"

	"github.com/ad-tracker/video-engagement-sim/internal/jobs"
)

// Queue names.
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// JobPayload is the body of every job task. The task type is the job name.
type JobPayload struct {
	Params     jobs.Params `json:"params"`
	Source     string      `json:"source"`
	EnqueuedAt time.Time   `json:"enqueued_at"`
}

// NewJobPayload creates a payload for a job triggered from source.
func NewJobPayload(params jobs.Params, source string) *JobPayload {
	return &JobPayload{
		Params:     params,
		Source:     source,
		EnqueuedAt: time.Now().UTC(),
	}
}

// Marshal serializes the payload to JSON.
func (p *JobPayload) Marshal() ([]byte, error) {
	return json.Marshal(p)
}

// UnmarshalJobPayload deserializes a task payload. An empty body is a
// payload with no params.
func UnmarshalJobPayload(data []byte) (*JobPayload, error) {
	var payload JobPayload
	if len(data) == 0 {
		return &payload, nil
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return &payload, nil
}

// NewJobTask builds the asynq task for job name.
func NewJobTask(name string, params jobs.Params, source string) (*asynq.Task, error) {
	if !jobs.Known(name) {
		return nil, fmt.Errorf("%w: %s", jobs.ErrUnknownJob, name)
	}

	body, err := NewJobPayload(params, source).Marshal()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	return asynq.NewTask(name, body), nil
}
