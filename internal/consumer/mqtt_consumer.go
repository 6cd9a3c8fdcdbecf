package consumer

import (
	"context"
	"fmt"

	mqttcommon "pmd-directory/common/mqtt"

	"go.uber.org/zap"
)

// Subscriber is the part of the MQTT client the consumer needs.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqttcommon.MessageHandler) error
	Unsubscribe(topics ...string) error
}

// MQTTConsumer 订阅目录变更主题
type MQTTConsumer struct {
	sub     Subscriber
	topic   string
	qos     byte
	handler Handler
	logger  *zap.Logger
}

func NewMQTTConsumer(sub Subscriber, topic string, qos byte, handler Handler, logger *zap.Logger) *MQTTConsumer {
	return &MQTTConsumer{
		sub:     sub,
		topic:   topic,
		qos:     qos,
		handler: handler,
		logger:  logger,
	}
}

// Start subscribes and blocks until ctx is done.
func (c *MQTTConsumer) Start(ctx context.Context) error {
	err := c.sub.Subscribe(c.topic, c.qos, func(topic string, payload []byte) error {
		event, err := ParsePayload(payload)
		if err != nil {
			return err
		}
		if !event.Known() {
			c.logger.Warn("Unknown event type",
				zap.String("topic", topic),
				zap.String("event_type", event.EventType),
			)
			return nil
		}
		return c.handler.HandleChange(ctx, *event)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	c.logger.Info("Directory MQTT consumer started", zap.String("topic", c.topic))
	<-ctx.Done()

	if err := c.sub.Unsubscribe(c.topic); err != nil {
		c.logger.Warn("Failed to unsubscribe", zap.String("topic", c.topic), zap.Error(err))
	}
	return nil
}
