// Package config loads process configuration from config.yaml and APP_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ad-tracker/video-engagement-sim/internal/db"
	"github.com/ad-tracker/video-engagement-sim/internal/jobs"
	"github.com/ad-tracker/video-engagement-sim/internal/queue"
)

// Config holds all configuration for the application.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	RabbitMQ  RabbitMQConfig
	Logging   LoggingConfig
	Scheduler SchedulerConfig
	Jobs      JobsConfig
	Generator GeneratorConfig
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
}

// DatabaseConfig contains database connection configuration.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type DatabaseConfig struct {
	Host           string
	Name           string
	User           string
	Password       string
	SSLMode        string
	Port           int
	MaxConnections int
	MinConnections int
	MaxIdleTime    time.Duration
	MaxLifetime    time.Duration
}

// RedisConfig points at the redis used by the task queue and job leases.
type RedisConfig struct {
	URL string
}

// RabbitMQConfig contains the job event publisher configuration.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type RabbitMQConfig struct {
	Enabled    bool
	Host       string
	User       string
	Password   string
	Exchange   string
	Queue      string
	RoutingKey string
	Port       int
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string
	File   string
	Format string
}

// SchedulerConfig sets the periodic job intervals. A zero interval disables the job.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type SchedulerConfig struct {
	Enabled         bool
	PopularComments time.Duration
	ReplyRecent     time.Duration
	UpdateStats     time.Duration
	CleanupAI       time.Duration
}

// JobsConfig tunes the job runner and task server.
type JobsConfig struct {
	Concurrency int
	MaxRetries  int
	RetryDelay  time.Duration
	LeaseTTL    time.Duration
	Timeout     time.Duration
}

// GeneratorConfig seeds the random source. Zero seeds from the clock.
type GeneratorConfig struct {
	Seed uint64
}

// Load loads configuration from file and environment variables.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()

	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects settings the processes cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Jobs.MaxRetries < 0 {
		return fmt.Errorf("jobs.maxretries must not be negative")
	}
	if c.Jobs.Concurrency <= 0 {
		return fmt.Errorf("jobs.concurrency must be positive")
	}
	if c.Redis.URL == "" {
		return fmt.Errorf("redis.url is required")
	}
	return nil
}

// DB converts the database section for db.NewPool.
func (c *Config) DB() *db.Config {
	return &db.Config{
		Host:            c.Database.Host,
		Port:            c.Database.Port,
		User:            c.Database.User,
		Password:        c.Database.Password,
		Database:        c.Database.Name,
		SSLMode:         c.Database.SSLMode,
		MaxConns:        int32(c.Database.MaxConnections),
		MinConns:        int32(c.Database.MinConnections),
		MaxConnLifetime: c.Database.MaxLifetime,
		MaxConnIdleTime: c.Database.MaxIdleTime,
	}
}

// JobRunner converts the jobs section for jobs.NewRunner.
func (c *Config) JobRunner() jobs.Config {
	return jobs.Config{
		MaxRetries: c.Jobs.MaxRetries,
		RetryDelay: c.Jobs.RetryDelay,
		LeaseTTL:   c.Jobs.LeaseTTL,
		Timeout:    c.Jobs.Timeout,
	}
}

// Schedules lists the periodic jobs with their intervals.
func (c *Config) Schedules() []queue.Schedule {
	return []queue.Schedule{
		{Task: jobs.TaskPopularComments, Interval: c.Scheduler.PopularComments},
		{Task: jobs.TaskReplyRecent, Interval: c.Scheduler.ReplyRecent},
		{Task: jobs.TaskUpdateStats, Interval: c.Scheduler.UpdateStats},
		{Task: jobs.TaskCleanupAI, Interval: c.Scheduler.CleanupAI},
	}
}

// URL renders the broker address.
func (r RabbitMQConfig) URL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/", r.User, r.Password, r.Host, r.Port)
}

func setDefaults() {
	// Server
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.shutdowntimeout", 30*time.Second)

	// Database
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "video_sim")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.maxconnections", 10)
	viper.SetDefault("database.minconnections", 2)
	viper.SetDefault("database.maxidletime", 10*time.Minute)
	viper.SetDefault("database.maxlifetime", 1*time.Hour)

	// Redis
	viper.SetDefault("redis.url", "redis://localhost:6379/0")

	// RabbitMQ
	viper.SetDefault("rabbitmq.enabled", false)
	viper.SetDefault("rabbitmq.host", "localhost")
	viper.SetDefault("rabbitmq.port", 5672)
	viper.SetDefault("rabbitmq.user", "guest")
	viper.SetDefault("rabbitmq.password", "guest")
	viper.SetDefault("rabbitmq.exchange", "video_sim.jobs")
	viper.SetDefault("rabbitmq.queue", "video_sim.jobs.runs")
	viper.SetDefault("rabbitmq.routingkey", "job.#")

	// Logging
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.file", "")
	viper.SetDefault("logging.format", "console")

	// Scheduler
	viper.SetDefault("scheduler.enabled", true)
	viper.SetDefault("scheduler.popularcomments", 10*time.Minute)
	viper.SetDefault("scheduler.replyrecent", 15*time.Minute)
	viper.SetDefault("scheduler.updatestats", 15*time.Minute)
	viper.SetDefault("scheduler.cleanupai", 24*time.Hour)

	// Jobs
	viper.SetDefault("jobs.concurrency", 4)
	viper.SetDefault("jobs.maxretries", 3)
	viper.SetDefault("jobs.retrydelay", 60*time.Second)
	viper.SetDefault("jobs.leasettl", 30*time.Minute)
	viper.SetDefault("jobs.timeout", 10*time.Minute)

	// Generator
	viper.SetDefault("generator.seed", 0)
}
