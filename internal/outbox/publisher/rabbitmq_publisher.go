// Package publisher delivers outbox events to a message broker.
package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/allisson/sentinel/internal/outbox/domain"
)

// Publisher sends an outbox event to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event *domain.OutboxEvent) error
	Close() error
}

// RabbitMQPublisher publishes outbox events to a durable topic exchange, using the event
// type as routing key. With an empty URL it is disabled and only logs.
type RabbitMQPublisher struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
	enabled  bool
	logger   *slog.Logger
}

// NewRabbitMQPublisher dials the broker and declares the exchange.
func NewRabbitMQPublisher(url, exchange string, logger *slog.Logger) (*RabbitMQPublisher, error) {
	if url == "" {
		logger.Warn("rabbitmq url is empty, outbox events will only be logged")
		return &RabbitMQPublisher{exchange: exchange, logger: logger}, nil
	}

	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	logger.Info("outbox publisher initialized", slog.String("exchange", exchange))

	return &RabbitMQPublisher{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
		enabled:  true,
		logger:   logger,
	}, nil
}

// Enabled reports whether events reach a broker.
func (p *RabbitMQPublisher) Enabled() bool {
	return p.enabled
}

// Publish sends the event payload as a persistent message.
func (p *RabbitMQPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	if !p.enabled {
		p.logger.Info("outbox event",
			slog.String("event_id", event.ID.String()),
			slog.String("event_type", event.EventType),
			slog.String("payload", event.Payload),
		)
		return nil
	}

	err := p.channel.PublishWithContext(
		ctx,
		p.exchange,      // exchange
		event.EventType, // routing key
		false,           // mandatory
		false,           // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    event.ID.String(),
			Timestamp:    time.Now().UTC(),
			Body:         []byte(event.Payload),
			Headers: amqp091.Table{
				"event_type": event.EventType,
			},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Close releases the channel and connection.
func (p *RabbitMQPublisher) Close() error {
	if !p.enabled {
		return nil
	}
	if err := p.channel.Close(); err != nil {
		_ = p.conn.Close()
		return err
	}
	return p.conn.Close()
}
