package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/mmynk/catalog/internal/metrics"
)

const publishTimeout = 5 * time.Second

// AMQPClient publishes and consumes notification events on a durable queue
// bound to a direct exchange.
type AMQPClient struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
}

// NewAMQPClient dials the broker and declares the exchange, queue and binding.
func NewAMQPClient(url, exchangeName, queueName string) (*AMQPClient, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	c := &AMQPClient{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
	}
	if err := c.setup(); err != nil {
		c.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}
	return c, nil
}

func (c *AMQPClient) setup() error {
	if err := c.channel.ExchangeDeclare(c.exchangeName, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := c.channel.QueueDeclare(c.queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	// Routing key is the queue name.
	if err := c.channel.QueueBind(c.queueName, c.queueName, c.exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// Publish sends a persistent event message.
func (c *AMQPClient) Publish(ctx context.Context, e *Event) error {
	body, err := e.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = c.channel.PublishWithContext(ctx, c.exchangeName, c.queueName, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    e.Timestamp,
		Type:         string(e.Type),
		Body:         body,
	})
	if err != nil {
		metrics.NotificationsPublished.WithLabelValues(string(e.Type), "error").Inc()
		return fmt.Errorf("publish event: %w", err)
	}
	metrics.NotificationsPublished.WithLabelValues(string(e.Type), "ok").Inc()

	slog.InfoContext(ctx, "Published notification event",
		"type", e.Type,
		"recipients", len(e.Recipients),
		"exchange", c.exchangeName,
		"queue", c.queueName)
	return nil
}

// Consume delivers events to handle until ctx is cancelled. Malformed
// messages are dropped; handler failures are requeued.
func (c *AMQPClient) Consume(ctx context.Context, handle func(context.Context, *Event) error) error {
	msgs, err := c.channel.Consume(c.queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming notification events", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping event consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return ErrChannelClosed
			}

			e, err := EventFromJSON(delivery.Body)
			if err != nil {
				slog.ErrorContext(ctx, "Failed to decode event", "error", err)
				delivery.Nack(false, false)
				continue
			}

			if err := handle(ctx, e); err != nil {
				slog.ErrorContext(ctx, "Failed to handle event", "error", err, "type", e.Type)
				delivery.Nack(false, !delivery.Redelivered)
				continue
			}
			delivery.Ack(false)
		}
	}
}

// Close closes the channel and the connection.
func (c *AMQPClient) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// ErrChannelClosed is returned by Consume when the broker closes the delivery
// channel.
var ErrChannelClosed = errors.New("message channel closed")

const maxBackoff = 30 * time.Second

// exponentialBackoff returns the wait before reconnect attempt n: 1s doubling
// up to 30s.
func exponentialBackoff(attempt int) time.Duration {
	if attempt >= 5 {
		return maxBackoff
	}
	d := time.Second << attempt
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

// ConsumeWithReconnect keeps a consumer running across broker restarts,
// redialing with exponential backoff.
func ConsumeWithReconnect(ctx context.Context, url, exchangeName, queueName string, handle func(context.Context, *Event) error) error {
	for attempt := 0; ; attempt++ {
		client, err := NewAMQPClient(url, exchangeName, queueName)
		if err == nil {
			attempt = 0
			err = client.Consume(ctx, handle)
			client.Close()
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}

		wait := exponentialBackoff(attempt)
		slog.WarnContext(ctx, "AMQP consumer disconnected, retrying", "error", err, "wait", wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}
