package queue

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/ad-tracker/video-engagement-sim/internal/db/models"
	"github.com/ad-tracker/video-engagement-sim/pkg/logger"
)

// RunCallback is called with every finished job run.
type RunCallback func(ctx context.Context, run *models.JobRun) error

// CallbackManager fans finished runs out to registered callbacks. It
// satisfies jobs.Publisher.
type CallbackManager struct {
	callbacks []RunCallback
	mu        sync.RWMutex
}

// NewCallbackManager creates an empty CallbackManager.
func NewCallbackManager() *CallbackManager {
	return &CallbackManager{}
}

// RegisterCallback adds cb.
func (m *CallbackManager) RegisterCallback(cb RunCallback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, cb)
}

// PublishJobRun calls every callback in order. A failing callback does not
// stop the rest; the failures are joined.
func (m *CallbackManager) PublishJobRun(ctx context.Context, run *models.JobRun) error {
	m.mu.RLock()
	callbacks := make([]RunCallback, len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.mu.RUnlock()

	var errs []error
	for i, cb := range callbacks {
		if err := cb(ctx, run); err != nil {
			logger.Log.Warn("Run callback failed",
				zap.Int("callback", i),
				zap.String("task", run.Task),
				zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CallbackCount returns the number of registered callbacks.
func (m *CallbackManager) CallbackCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.callbacks)
}
