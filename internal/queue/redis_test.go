package queue

import (
	"crypto/tls"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRedisURL(t *testing.T) {
	tests := []struct {
		name      string
		redisURL  string
		want      asynq.RedisClientOpt
		wantError bool
	}{
		{
			name:     "host:port",
			redisURL: "localhost:6379",
			want:     asynq.RedisClientOpt{Addr: "localhost:6379"},
		},
		{
			name:     "plain URL",
			redisURL: "redis://localhost:6379",
			want:     asynq.RedisClientOpt{Addr: "localhost:6379"},
		},
		{
			name:     "password and database",
			redisURL: "redis://:secretpass@redis.example.com:6379/1",
			want:     asynq.RedisClientOpt{Addr: "redis.example.com:6379", Password: "secretpass", DB: 1},
		},
		{
			name:     "username and password",
			redisURL: "redis://sim:pw@localhost:6379/2",
			want:     asynq.RedisClientOpt{Addr: "localhost:6379", Username: "sim", Password: "pw", DB: 2},
		},
		{
			name:     "encoded password",
			redisURL: "redis://:p%40ssw0rd%21@localhost:6379/0",
			want:     asynq.RedisClientOpt{Addr: "localhost:6379", Password: "p@ssw0rd!"},
		},
		{
			name:     "TLS",
			redisURL: "rediss://:password@secure.example.com:6380",
			want: asynq.RedisClientOpt{
				Addr:      "secure.example.com:6380",
				Password:  "password",
				TLSConfig: &tls.Config{MinVersion: tls.VersionTLS12},
			},
		},
		{name: "bad scheme", redisURL: "http://localhost:6379", wantError: true},
		{name: "bad database", redisURL: "redis://localhost:6379/abc", wantError: true},
		{name: "missing host", redisURL: "redis://:password@/0", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRedisURL(tt.redisURL)
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, tt.want.Addr, got.Addr)
			assert.Equal(t, tt.want.Username, got.Username)
			assert.Equal(t, tt.want.Password, got.Password)
			assert.Equal(t, tt.want.DB, got.DB)
			if tt.want.TLSConfig == nil {
				assert.Nil(t, got.TLSConfig)
			} else {
				require.NotNil(t, got.TLSConfig)
				assert.Equal(t, tt.want.TLSConfig.MinVersion, got.TLSConfig.MinVersion)
			}
		})
	}
}

func TestNewRedisClient(t *testing.T) {
	client, err := NewRedisClient("redis://:pw@cache:6379/3")
	require.NoError(t, err)
	defer client.Close()

	opts := client.Options()
	assert.Equal(t, "cache:6379", opts.Addr)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 3, opts.DB)

	_, err = NewRedisClient("ftp://cache")
	assert.Error(t, err)
}
