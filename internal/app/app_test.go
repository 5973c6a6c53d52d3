package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ad-tracker/video-engagement-sim/internal/config"
)

func TestApp_LockerFallsBackWithoutRedis(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{name: "unsupported scheme", url: "memcached://localhost:11211"},
		{name: "nothing listening", url: "redis://127.0.0.1:1/0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &App{Config: &config.Config{Redis: config.RedisConfig{URL: tt.url}}}

			locker, closeLocker := a.Locker(context.Background())
			require.NotNil(t, closeLocker)
			defer closeLocker()

			assert.Nil(t, locker)
		})
	}
}
