// Package kafka publishes audit events to a Kafka topic as JSON, keyed by account ID
// so every event for an account lands on one partition in order.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"backupauth/internal/platform/kafka/producer"
	audit "backupauth/pkg/platform/audit"
)

// DefaultTopic is the topic audit events are written to when none is configured.
const DefaultTopic = "backup.audit"

// Producer is the subset of the Kafka producer used by the sink.
type Producer interface {
	Produce(ctx context.Context, msg *producer.Message) error
}

// Store implements audit.Store on top of a Kafka producer.
type Store struct {
	producer Producer
	topic    string
}

func New(p Producer, topic string) *Store {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Store{producer: p, topic: topic}
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	msg := &producer.Message{
		Topic: s.topic,
		Key:   []byte(event.AccountID.String()),
		Value: payload,
		Headers: map[string]string{
			"action":     event.Action,
			"request_id": event.RequestID,
		},
	}
	if err := s.producer.Produce(ctx, msg); err != nil {
		return fmt.Errorf("publish audit event: %w", err)
	}
	return nil
}
