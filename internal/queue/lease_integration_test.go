//go:build integration
// +build integration

package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/ad-tracker/video-engagement-sim/internal/jobs"
)

func setupTestRedis(t *testing.T) *RedisLocker {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate redis container: %v", err)
		}
	})

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := NewRedisClient(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Ping(ctx).Err())
	return NewRedisLocker(client)
}

func TestRedisLocker_Exclusive(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	locker := setupTestRedis(t)
	ctx := context.Background()
	key := "job_lease:" + jobs.TaskUpdateStats

	unlock, err := locker.TryLock(ctx, key, time.Minute)
	require.NoError(t, err)

	_, err = locker.TryLock(ctx, key, time.Minute)
	assert.ErrorIs(t, err, jobs.ErrLeaseHeld)

	require.NoError(t, unlock(ctx))

	holder, err := locker.Holder(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, holder)

	unlock2, err := locker.TryLock(ctx, key, time.Minute)
	require.NoError(t, err)
	require.NoError(t, unlock2(ctx))
}

func TestRedisLocker_ExpiredLeaseIsNotReleasedByOldHolder(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	locker := setupTestRedis(t)
	ctx := context.Background()
	key := "job_lease:" + jobs.TaskCleanupAI

	staleUnlock, err := locker.TryLock(ctx, key, 200*time.Millisecond)
	require.NoError(t, err)

	time.Sleep(400 * time.Millisecond)

	freshUnlock, err := locker.TryLock(ctx, key, time.Minute)
	require.NoError(t, err)

	require.NoError(t, staleUnlock(ctx))

	holder, err := locker.Holder(ctx, key)
	require.NoError(t, err)
	assert.NotEmpty(t, holder, "stale release must not drop the new holder's lease")

	require.NoError(t, freshUnlock(ctx))
}
