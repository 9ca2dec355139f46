package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"inventorycart/internal/events"

	"github.com/rs/zerolog/log"
	amqp "github.com/streadway/amqp"
)

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	// amqp channels are not safe for concurrent publishing.
	mu sync.Mutex
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL   string
	Queue string
}

// NewClient connects to RabbitMQ, opens a channel and declares the durable
// event queue.
func NewClient(cfg Config) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareQueue(ch, cfg.Queue); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log.Info().Str("queue", cfg.Queue).Msg("RabbitMQ client connected")

	return &Client{
		conn:    conn,
		channel: ch,
		queue:   cfg.Queue,
	}, nil
}

func declareQueue(ch *amqp.Channel, name string) error {
	_, err := ch.QueueDeclare(
		name,  // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", name, err)
	}
	return nil
}

// Close closes the RabbitMQ channel and connection.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Publish sends a domain event to the event queue as a persistent JSON message.
func (c *Client) Publish(_ context.Context, event events.Event) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	body, err := event.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	err = c.channel.Publish(
		"",      // default exchange
		c.queue, // routing key: the queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         event.Type,
			MessageId:    event.ID,
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.OccurredAt,
		})
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}
	return nil
}

// ConsumeEvents decodes every message on the event queue and hands it to
// handler in a background goroutine. Messages are acked when handler returns
// nil; undecodable messages are dropped, failed ones requeued once.
func (c *Client) ConsumeEvents(handler func(events.Event) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		c.queue, // queue
		"",      // consumer tag
		false,   // auto-ack
		false,   // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	go func() {
		for msg := range msgs {
			settle(msg, msg.Body, msg.DeliveryTag, msg.Redelivered, handler)
		}
		log.Info().Str("queue", c.queue).Msg("RabbitMQ consumer stopped")
	}()
	return nil
}

// Acknowledger settles a delivered message; amqp.Delivery implements it.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func settle(ack Acknowledger, body []byte, tag uint64, redelivered bool, handler func(events.Event) error) {
	event, err := events.Unmarshal(body)
	if err != nil {
		log.Warn().Err(err).Uint64("tag", tag).Msg("dropping undecodable event")
		if nackErr := ack.Nack(false, false); nackErr != nil {
			log.Error().Err(nackErr).Uint64("tag", tag).Msg("failed to nack message")
		}
		return
	}
	if err := handler(event); err != nil {
		log.Warn().Err(err).Uint64("tag", tag).Str("event_type", event.Type).Msg("failed to handle event")
		if nackErr := ack.Nack(false, !redelivered); nackErr != nil {
			log.Error().Err(nackErr).Uint64("tag", tag).Msg("failed to nack message")
		}
		return
	}
	if ackErr := ack.Ack(false); ackErr != nil {
		log.Error().Err(ackErr).Uint64("tag", tag).Msg("failed to ack message")
	}
}

// AuditHandler logs every consumed event.
func AuditHandler(event events.Event) error {
	log.Info().
		Str("event_id", event.ID).
		Str("event_type", event.Type).
		Str("key", event.Key).
		Time("occurred_at", event.OccurredAt).
		Interface("payload", event.Payload).
		Msg("audit event")
	return nil
}
