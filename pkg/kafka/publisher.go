// Package kafka publishes domain events to a Kafka topic.
package kafka

import (
	"context"
	"fmt"
	"time"

	"inventorycart/internal/events"
	"inventorycart/internal/metrics"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

// MessageWriter is the subset of *kafka.Writer used by Publisher.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes events to a topic, keyed by the entity they concern so
// that events for one item or line stay ordered within a partition.
type Publisher struct {
	writer MessageWriter
}

// Config holds Kafka connection details.
type Config struct {
	Brokers []string
	Topic   string
}

// NewWriter builds an asynchronous kafka.Writer for the event topic.
// WriteMessages only enqueues; broker failures surface in reportDelivery.
func NewWriter(cfg Config) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           5 * time.Second,
		AllowAutoTopicCreation: true,
		Async:                  true,
		Completion:             reportDelivery,
	}
}

// reportDelivery logs and counts batches the broker did not accept.
func reportDelivery(messages []kafka.Message, err error) {
	if err == nil {
		return
	}
	for _, msg := range messages {
		eventType := headerValue(msg, "event-type")
		metrics.EventsPublished.WithLabelValues(eventType, "delivery_error").Inc()
		log.Warn().Err(err).
			Str("event_type", eventType).
			Str("event_id", headerValue(msg, "event-id")).
			Str("key", string(msg.Key)).
			Msg("kafka delivery failed")
	}
}

func headerValue(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

// NewPublisher creates a Publisher over w.
func NewPublisher(w MessageWriter) *Publisher {
	return &Publisher{writer: w}
}

// Publish writes one event.
func (p *Publisher) Publish(ctx context.Context, event events.Event) error {
	msg, err := toMessage(event)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write %s event to kafka: %w", event.Type, err)
	}
	return nil
}

// Close flushes and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

func toMessage(event events.Event) (kafka.Message, error) {
	body, err := event.Marshal()
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal event: %w", err)
	}
	key := event.Key
	if key == "" {
		key = event.Type
	}
	return kafka.Message{
		Key:   []byte(key),
		Value: body,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
			{Key: "event-id", Value: []byte(event.ID)},
		},
	}, nil
}
