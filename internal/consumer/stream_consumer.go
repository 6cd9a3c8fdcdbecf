package consumer

import (
	"context"
	"fmt"
	"time"

	rediscommon "pmd-directory/common/redis"

	"github.com/go-redis/redis/v8"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// Stream is the consumer-group view of one Redis stream.
type Stream interface {
	EnsureGroup(ctx context.Context) error
	Read(ctx context.Context) ([]rediscommon.StreamMessage, error)
	Ack(ctx context.Context, id string) error
}

// RedisStream reads a stream through a consumer group.
type RedisStream struct {
	client       *redis.Client
	stream       string
	groupName    string
	consumerName string
	batchSize    int64
	block        time.Duration
}

func NewRedisStream(client *redis.Client, stream, groupName, consumerName string, batchSize int64) *RedisStream {
	return &RedisStream{
		client:       client,
		stream:       stream,
		groupName:    groupName,
		consumerName: consumerName,
		batchSize:    batchSize,
		block:        5 * time.Second,
	}
}

func (s *RedisStream) EnsureGroup(ctx context.Context) error {
	return rediscommon.CreateConsumerGroup(ctx, s.client, s.stream, s.groupName)
}

func (s *RedisStream) Read(ctx context.Context) ([]rediscommon.StreamMessage, error) {
	return rediscommon.ReadFromStream(ctx, s.client, s.stream, s.groupName, s.consumerName, s.batchSize, s.block)
}

func (s *RedisStream) Ack(ctx context.Context, id string) error {
	return rediscommon.Ack(ctx, s.client, s.stream, s.groupName, id)
}

// EventConsumer 事件消费者（Redis Streams 消费者组）
type EventConsumer struct {
	stream  Stream
	handler Handler
	clock   clockwork.Clock
	logger  *zap.Logger
}

// NewEventConsumer 创建事件消费者
func NewEventConsumer(stream Stream, handler Handler, clock clockwork.Clock, logger *zap.Logger) *EventConsumer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &EventConsumer{
		stream:  stream,
		handler: handler,
		clock:   clock,
		logger:  logger,
	}
}

// Start 启动事件消费者，阻塞直到 ctx 结束
func (c *EventConsumer) Start(ctx context.Context) error {
	if err := c.stream.EnsureGroup(ctx); err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	c.logger.Info("Directory event consumer started")

	// 消费事件（带指数退避）
	backoff := initialBackoff
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if err := c.consumeEvents(ctx); err != nil {
			c.logger.Error("Failed to consume events",
				zap.Error(err),
				zap.Duration("backoff", backoff),
			)

			select {
			case <-ctx.Done():
				return nil
			case <-c.clock.After(backoff):
				backoff = nextBackoff(backoff)
			}
			continue
		}

		// 成功时重置退避时间
		backoff = initialBackoff
	}
}

func nextBackoff(d time.Duration) time.Duration {
	d *= 2
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func (c *EventConsumer) consumeEvents(ctx context.Context) error {
	messages, err := c.stream.Read(ctx)
	if err != nil {
		return fmt.Errorf("failed to read from stream: %w", err)
	}

	for _, msg := range messages {
		if err := c.processEvent(ctx, msg); err != nil {
			// 不确认，留在 pending 列表里等待重新投递
			c.logger.Error("Failed to process event",
				zap.String("message_id", msg.ID),
				zap.Error(err),
			)
			continue
		}
		if err := c.stream.Ack(ctx, msg.ID); err != nil {
			c.logger.Warn("Failed to ack message",
				zap.String("message_id", msg.ID),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (c *EventConsumer) processEvent(ctx context.Context, msg rediscommon.StreamMessage) error {
	event, err := parseStreamEvent(msg)
	if err != nil {
		return fmt.Errorf("failed to parse event: %w", err)
	}

	if !event.Known() {
		c.logger.Warn("Unknown event type", zap.String("event_type", event.EventType))
		return nil
	}

	c.logger.Info("Processing directory event",
		zap.String("event_type", event.EventType),
		zap.String("event_id", event.EventID),
	)
	return c.handler.HandleChange(ctx, *event)
}
