package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/ad-tracker/video-engagement-sim/internal/config"
	"github.com/ad-tracker/video-engagement-sim/internal/db/models"
	"github.com/ad-tracker/video-engagement-sim/internal/metrics"
	"github.com/ad-tracker/video-engagement-sim/pkg/logger"
)

const confirmTimeout = 5 * time.Second

// MessagePublisher sends job run summaries to a topic exchange. Publishing
// goes through a circuit breaker so a dead broker does not slow every job.
type MessagePublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	config  *config.RabbitMQConfig
	breaker *gobreaker.CircuitBreaker[struct{}]
	mu      sync.RWMutex
}

// NewMessagePublisher connects and declares the exchange and queue.
func NewMessagePublisher(cfg *config.RabbitMQConfig) (*MessagePublisher, error) {
	mp := &MessagePublisher{
		config:  cfg,
		breaker: newBreaker("rabbitmq-publisher"),
	}

	if err := mp.connect(); err != nil {
		return nil, err
	}

	return mp, nil
}

func newBreaker(name string) *gobreaker.CircuitBreaker[struct{}] {
	return gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Log.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
}

func (mp *MessagePublisher) connect() error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	conn, err := amqp.Dial(mp.config.URL())
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	fail := func(format string, err error) error {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf(format, err)
	}

	if err := ch.Confirm(false); err != nil {
		return fail("failed to enable publisher confirms: %w", err)
	}

	if err := ch.ExchangeDeclare(mp.config.Exchange, "topic", true, false, false, false, nil); err != nil {
		return fail("failed to declare exchange: %w", err)
	}

	_, err = ch.QueueDeclare(mp.config.Queue, true, false, false, false, amqp.Table{
		"x-message-ttl": 86400000,
		"x-max-length":  100000,
	})
	if err != nil {
		return fail("failed to declare queue: %w", err)
	}

	if err := ch.QueueBind(mp.config.Queue, mp.config.RoutingKey, mp.config.Exchange, false, nil); err != nil {
		return fail("failed to bind queue: %w", err)
	}

	mp.conn = conn
	mp.channel = ch

	logger.Log.Info("Connected to RabbitMQ",
		zap.String("exchange", mp.config.Exchange),
		zap.String("queue", mp.config.Queue),
	)

	return nil
}

// RoutingKey is job.<task>.<status>.
func RoutingKey(run *models.JobRun) string {
	return fmt.Sprintf("job.%s.%s", run.Task, run.Status)
}

// PublishJobRun implements jobs.Publisher.
func (mp *MessagePublisher) PublishJobRun(ctx context.Context, run *models.JobRun) error {
	_, err := mp.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, mp.publish(ctx, run)
	})
	if err != nil {
		metrics.EventsPublished.WithLabelValues("failed").Inc()
		return err
	}
	metrics.EventsPublished.WithLabelValues("published").Inc()
	return nil
}

func (mp *MessagePublisher) publish(ctx context.Context, run *models.JobRun) error {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	if mp.channel == nil {
		return fmt.Errorf("channel is not initialized")
	}

	body, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal job run: %w", err)
	}

	key := RoutingKey(run)
	confirm, err := mp.channel.PublishWithDeferredConfirmWithContext(ctx, mp.config.Exchange, key, false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			MessageId:    run.ID.String(),
			Type:         run.Task,
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, confirmTimeout)
	defer cancel()

	acked, err := confirm.WaitContext(waitCtx)
	if err != nil {
		return fmt.Errorf("waiting for publish confirmation: %w", err)
	}
	if !acked {
		return fmt.Errorf("message was not acknowledged by broker")
	}

	logger.Log.Debug("Published job run",
		zap.String("runId", run.ID.String()),
		zap.String("routingKey", key),
	)

	return nil
}

// Close closes the channel and connection.
func (mp *MessagePublisher) Close() error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	var errs []error
	if mp.channel != nil {
		if err := mp.channel.Close(); err != nil {
			errs = append(errs, err)
		}
		mp.channel = nil
	}
	if mp.conn != nil {
		if err := mp.conn.Close(); err != nil {
			errs = append(errs, err)
		}
		mp.conn = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing publisher: %v", errs)
	}

	logger.Log.Info("RabbitMQ publisher closed")
	return nil
}

// IsHealthy reports whether the connection is open and the breaker is not tripped.
func (mp *MessagePublisher) IsHealthy() bool {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return mp.conn != nil && !mp.conn.IsClosed() && mp.channel != nil &&
		mp.breaker.State() != gobreaker.StateOpen
}
