// Package kafka streams audit events to a Kafka topic for downstream consumers.
// It is a write-only sink; reads are served by the durable store.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	kafkaclient "zkid/internal/platform/kafka"
	audit "zkid/pkg/platform/audit"
)

// Producer is the subset of kafkaclient.Producer used by the sink.
type Producer interface {
	Produce(ctx context.Context, msg *kafkaclient.Message) error
}

// Sink publishes audit events as JSON records keyed by subject, so every
// event for one credential holder lands on the same partition.
type Sink struct {
	producer Producer
	topic    string
}

// New creates a Kafka audit sink.
func New(p Producer, topic string) *Sink {
	return &Sink{producer: p, topic: topic}
}

func (s *Sink) Append(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}

	key := event.Subject
	if key == "" {
		key = event.Actor
	}

	headers := map[string]string{"action": event.Action}
	if event.RequestID != "" {
		headers["request_id"] = event.RequestID
	}

	if err := s.producer.Produce(ctx, &kafkaclient.Message{
		Topic:   s.topic,
		Key:     []byte(key),
		Value:   payload,
		Headers: headers,
	}); err != nil {
		return fmt.Errorf("publish audit event: %w", err)
	}
	return nil
}

func (s *Sink) ListBySubject(context.Context, string) ([]audit.Event, error) {
	return nil, nil
}

func (s *Sink) ListRecent(context.Context, int) ([]audit.Event, error) {
	return nil, nil
}
