package amqp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	url          string
	exchangeName string
	queueName    string
}

func NewClient(url, exchangeName, queueName string) (*Client, error) {
	client := &Client{
		url:          url,
		exchangeName: exchangeName,
		queueName:    queueName,
	}

	if err := client.connect(); err != nil {
		return nil, err
	}

	return client, nil
}

func (c *Client) connect() error {
	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	c.conn = conn
	c.channel = channel

	if err := c.setup(); err != nil {
		c.Close()
		return fmt.Errorf("setup exchange and queue: %w", err)
	}

	return nil
}

func (c *Client) setup() error {
	// Declare exchange
	err := c.channel.ExchangeDeclare(
		c.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	// Declare queue
	_, err = c.channel.QueueDeclare(
		c.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// Bind queue to exchange
	err = c.channel.QueueBind(
		c.queueName,    // queue name
		c.queueName,    // routing key (same as queue name for direct exchange)
		c.exchangeName, // exchange
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// maxPublishAttempts bounds reconnect retries on connection-level failures.
const maxPublishAttempts = 3

// PublishExpenseSync publishes an expense sync message. Connection-level
// failures trigger a reconnect with exponential backoff.
func (c *Client) PublishExpenseSync(ctx context.Context, id, version int64) error {
	msg := NewExpenseSyncMessage(id, version)
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	if err := c.publishWithRetry(ctx, TypeExpenseSync, body); err != nil {
		return fmt.Errorf("publish sync message: %w", err)
	}

	slog.InfoContext(ctx, "Published expense sync message",
		"id", id,
		"version", version,
		"exchange", c.exchangeName,
		"queue", c.queueName)
	return nil
}

// PublishExpenseDelete publishes an expense delete message with the same
// retry behavior as sync publishing.
func (c *Client) PublishExpenseDelete(ctx context.Context, id int64) error {
	msg := NewExpenseDeleteMessage(id)
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	if err := c.publishWithRetry(ctx, TypeExpenseDelete, body); err != nil {
		return fmt.Errorf("publish delete message: %w", err)
	}

	slog.InfoContext(ctx, "Published expense delete message",
		"id", id,
		"exchange", c.exchangeName,
		"queue", c.queueName)
	return nil
}

func (c *Client) publishWithRetry(ctx context.Context, msgType string, body []byte) error {
	var lastErr error
	for attempt := 0; attempt < maxPublishAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(exponentialBackoff(attempt - 1)):
			}
			if err := c.connect(); err != nil {
				lastErr = err
				continue
			}
		}

		lastErr = c.publish(ctx, msgType, body)
		if lastErr == nil {
			return nil
		}
		if !isConnectionError(lastErr) {
			break
		}
		slog.WarnContext(ctx, "Publish failed on connection error, reconnecting",
			"error", lastErr, "attempt", attempt+1)
	}

	return lastErr
}

func (c *Client) publish(ctx context.Context, msgType string, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return c.channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		c.queueName,    // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent, // make message persistent
			Type:         msgType,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

// SyncHandler processes an expense sync message.
type SyncHandler func(ctx context.Context, msg *ExpenseSyncMessage) error

// DeleteHandler processes an expense delete message.
type DeleteHandler func(ctx context.Context, msg *ExpenseDeleteMessage) error

// ConsumeMessages consumes sync and delete messages until ctx is done,
// dispatching on the delivery's Type property. Handler failures requeue the
// delivery; malformed bodies are rejected without requeue.
func (c *Client) ConsumeMessages(ctx context.Context, syncHandler SyncHandler, deleteHandler DeleteHandler) error {
	msgs, err := c.channel.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack (we want manual ack)
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming expense messages", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}
			c.dispatch(ctx, delivery, syncHandler, deleteHandler)
		}
	}
}

func (c *Client) dispatch(ctx context.Context, delivery amqp091.Delivery, syncHandler SyncHandler, deleteHandler DeleteHandler) {
	switch delivery.Type {
	case TypeExpenseDelete:
		msg, err := ExpenseDeleteMessageFromJSON(delivery.Body)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to unmarshal delete message", "error", err)
			delivery.Nack(false, false) // reject and don't requeue
			return
		}
		if err := deleteHandler(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to handle delete message",
				"error", err,
				"id", msg.ID)
			delivery.Nack(false, true) // reject and requeue
			return
		}
		delivery.Ack(false)
		slog.DebugContext(ctx, "Processed expense delete message", "id", msg.ID)
	default:
		// TypeExpenseSync, plus deliveries from producers that predate
		// the Type property.
		msg, err := ExpenseSyncMessageFromJSON(delivery.Body)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to unmarshal sync message", "error", err)
			delivery.Nack(false, false) // reject and don't requeue
			return
		}
		if err := syncHandler(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to handle sync message",
				"error", err,
				"id", msg.ID,
				"version", msg.Version)
			delivery.Nack(false, true) // reject and requeue
			return
		}
		delivery.Ack(false)
		slog.DebugContext(ctx, "Processed expense sync message",
			"id", msg.ID,
			"version", msg.Version)
	}
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// exponentialBackoff returns 1s, 2s, 4s, ... capped at 30s.
func exponentialBackoff(attempt int) time.Duration {
	d := time.Second << uint(attempt)
	if d > 30*time.Second || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// isConnectionError reports whether err looks like a broken AMQP connection
// worth a reconnect, as opposed to a permanent failure.
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, fragment := range []string{
		"connection refused",
		"connection closed",
		"EOF",
		"broken pipe",
		"use of closed network connection",
	} {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}
