package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	rediscommon "pmd-directory/common/redis"

	"github.com/go-redis/redis/v8"
)

// Publisher announces a change to every directory instance.
type Publisher interface {
	Publish(ctx context.Context, event ChangeEvent) error
}

// StreamPublisher appends events to a Redis stream.
type StreamPublisher struct {
	client *redis.Client
	stream string
}

func NewStreamPublisher(client *redis.Client, stream string) *StreamPublisher {
	return &StreamPublisher{client: client, stream: stream}
}

func (p *StreamPublisher) Publish(ctx context.Context, event ChangeEvent) error {
	if _, err := rediscommon.PublishJSONToStream(ctx, p.client, p.stream, event); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.EventType, err)
	}
	return nil
}

// MQTTSender is the part of the MQTT client the publisher needs.
type MQTTSender interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
}

// MQTTPublisher sends events as JSON payloads.
type MQTTPublisher struct {
	client MQTTSender
	topic  string
	qos    byte
}

func NewMQTTPublisher(client MQTTSender, topic string, qos byte) *MQTTPublisher {
	return &MQTTPublisher{client: client, topic: topic, qos: qos}
}

func (p *MQTTPublisher) Publish(_ context.Context, event ChangeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.client.Publish(p.topic, p.qos, false, payload)
}

// MultiPublisher publishes to every target and joins the errors.
type MultiPublisher []Publisher

func (m MultiPublisher) Publish(ctx context.Context, event ChangeEvent) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
