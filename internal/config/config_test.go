package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ad-tracker/video-engagement-sim/internal/jobs"
)

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "video_sim", cfg.Database.Name)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.False(t, cfg.RabbitMQ.Enabled)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, 10*time.Minute, cfg.Scheduler.PopularComments)
	assert.Equal(t, 15*time.Minute, cfg.Scheduler.ReplyRecent)
	assert.Equal(t, 15*time.Minute, cfg.Scheduler.UpdateStats)
	assert.Equal(t, 24*time.Hour, cfg.Scheduler.CleanupAI)
	assert.Equal(t, 3, cfg.Jobs.MaxRetries)
	assert.Equal(t, 60*time.Second, cfg.Jobs.RetryDelay)
	assert.Zero(t, cfg.Generator.Seed)
}

func TestLoad_Environment(t *testing.T) {
	viper.Reset()
	t.Setenv("APP_SERVER_PORT", "9090")
	t.Setenv("APP_DATABASE_HOST", "testdb")
	t.Setenv("APP_REDIS_URL", "redis://cache:6379/2")
	t.Setenv("APP_RABBITMQ_ENABLED", "true")
	t.Setenv("APP_SCHEDULER_CLEANUPAI", "0s")
	t.Setenv("APP_GENERATOR_SEED", "42")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "testdb", cfg.Database.Host)
	assert.Equal(t, "redis://cache:6379/2", cfg.Redis.URL)
	assert.True(t, cfg.RabbitMQ.Enabled)
	assert.Zero(t, cfg.Scheduler.CleanupAI)
	assert.Equal(t, uint64(42), cfg.Generator.Seed)
}

func TestLoad_ConfigFile(t *testing.T) {
	viper.Reset()

	dir := t.TempDir()
	yaml := []byte("server:\n  port: 7070\nscheduler:\n  popularcomments: 5m\njobs:\n  concurrency: 8\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 5*time.Minute, cfg.Scheduler.PopularComments)
	assert.Equal(t, 8, cfg.Jobs.Concurrency)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{Port: 8080},
			Redis:  RedisConfig{URL: "redis://localhost:6379"},
			Jobs:   JobsConfig{Concurrency: 1, MaxRetries: 3},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: true},
		{name: "negative retries", mutate: func(c *Config) { c.Jobs.MaxRetries = -1 }, wantErr: true},
		{name: "no workers", mutate: func(c *Config) { c.Jobs.Concurrency = 0 }, wantErr: true},
		{name: "no redis", mutate: func(c *Config) { c.Redis.URL = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_Conversions(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{Host: "db", Port: 5433, Name: "sim", User: "u", Password: "p", SSLMode: "disable", MaxConnections: 7},
		Jobs:     JobsConfig{MaxRetries: 2, RetryDelay: time.Second, LeaseTTL: time.Minute, Timeout: time.Hour},
		Scheduler: SchedulerConfig{
			PopularComments: time.Minute,
			ReplyRecent:     2 * time.Minute,
			UpdateStats:     3 * time.Minute,
			CleanupAI:       4 * time.Minute,
		},
		RabbitMQ: RabbitMQConfig{User: "guest", Password: "guest", Host: "mq", Port: 5672},
	}

	dbCfg := cfg.DB()
	assert.Equal(t, "postgres://u:p@db:5433/sim?sslmode=disable", dbCfg.URL())
	assert.Equal(t, int32(7), dbCfg.MaxConns)

	assert.Equal(t, jobs.Config{MaxRetries: 2, RetryDelay: time.Second, LeaseTTL: time.Minute, Timeout: time.Hour}, cfg.JobRunner())

	schedules := cfg.Schedules()
	require.Len(t, schedules, 4)
	assert.Equal(t, jobs.TaskCleanupAI, schedules[3].Task)
	assert.Equal(t, 4*time.Minute, schedules[3].Interval)

	assert.Equal(t, "amqp://guest:guest@mq:5672/", cfg.RabbitMQ.URL())
}
