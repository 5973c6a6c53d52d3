package supervisor

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thejerf/suture/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type blockingService struct {
	name   string
	starts atomic.Int32
	fails  atomic.Int32
}

func (s *blockingService) Serve(ctx context.Context) error {
	if s.starts.Add(1) <= s.fails.Load() {
		return errors.New("simulated failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *blockingService) String() string { return s.name }

var _ suture.Service = (*blockingService)(nil)

func TestTreeDefaults(t *testing.T) {
	tree := NewTree("test", zap.NewNop(), TreeConfig{})
	assert.Equal(t, DefaultTreeConfig(), tree.config)
}

func TestTreeStartsAndStops(t *testing.T) {
	tree := NewTree("test", zap.NewNop(), TreeConfig{FailureBackoff: 10 * time.Millisecond, ShutdownTimeout: time.Second})

	jobs := &blockingService{name: "jobs"}
	api := &blockingService{name: "api"}
	tree.AddJobService(jobs)
	tree.AddAPIService(api)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- tree.Serve(ctx) }()

	require.Eventually(t, func() bool {
		return jobs.starts.Load() == 1 && api.starts.Load() == 1
	}, time.Second, 10*time.Millisecond)

	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			assert.ErrorIs(t, err, context.Canceled)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not shut down in time")
	}
}

func TestTreeRestartsFailedService(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	tree := NewTree("test", zap.New(core), TreeConfig{FailureBackoff: 10 * time.Millisecond, ShutdownTimeout: time.Second})

	svc := &blockingService{name: "flaky"}
	svc.fails.Store(2)
	tree.AddJobService(svc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = tree.Serve(ctx) }()

	require.Eventually(t, func() bool { return svc.starts.Load() >= 3 }, 2*time.Second, 10*time.Millisecond)
	assert.NotZero(t, logs.FilterLevelExact(zap.ErrorLevel).Len())
}

type fakeHTTPServer struct {
	listenErr error
	stop      chan struct{}
	shutdowns atomic.Int32
}

func newFakeHTTPServer() *fakeHTTPServer {
	return &fakeHTTPServer{stop: make(chan struct{})}
}

func (f *fakeHTTPServer) ListenAndServe() error {
	if f.listenErr != nil {
		return f.listenErr
	}
	<-f.stop
	return http.ErrServerClosed
}

func (f *fakeHTTPServer) Shutdown(context.Context) error {
	f.shutdowns.Add(1)
	close(f.stop)
	return nil
}

func TestHTTPService(t *testing.T) {
	t.Run("graceful shutdown", func(t *testing.T) {
		server := newFakeHTTPServer()
		svc := NewHTTPService(server, time.Second)

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() { errCh <- svc.Serve(ctx) }()

		cancel()
		assert.ErrorIs(t, <-errCh, context.Canceled)
		assert.Equal(t, int32(1), server.shutdowns.Load())
	})

	t.Run("listen failure", func(t *testing.T) {
		server := newFakeHTTPServer()
		server.listenErr = errors.New("address in use")

		err := NewHTTPService(server, 0).Serve(context.Background())
		assert.ErrorContains(t, err, "address in use")
	})

	t.Run("name", func(t *testing.T) {
		assert.Equal(t, "http-server", NewHTTPService(newFakeHTTPServer(), 0).String())
	})
}
