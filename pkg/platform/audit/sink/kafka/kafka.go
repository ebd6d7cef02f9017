// Package kafka publishes audit events to a Kafka-compatible broker for
// tamper-evident compliance retention.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"

	"openid-gateway/pkg/platform/audit"
)

type Sink struct {
	client *kgo.Client
}

// NewSink connects to the given brokers and produces to topic. Events are
// keyed by user ID so one user's trail stays ordered within a partition.
func NewSink(brokers []string, topic string) (*Sink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("connect audit broker: %w", err)
	}
	return &Sink{client: client}, nil
}

func (s *Sink) Write(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	record := &kgo.Record{Key: []byte(event.UserID), Value: payload}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

func (s *Sink) Close() error {
	s.client.Close()
	return nil
}
