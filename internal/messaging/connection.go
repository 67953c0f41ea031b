// Package messaging publishes order events to RabbitMQ.
package messaging

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// OrdersExchange is the topic exchange order events are published to.
const OrdersExchange = "orders_topic"

const dialAttempts = 5

// Connection wraps a RabbitMQ connection and its channel.
type Connection struct {
	url     string
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

// Dial connects to RabbitMQ, retrying with a growing delay, and declares the
// exchange. Retries stop when ctx is done.
func Dial(ctx context.Context, url string) (*Connection, error) {
	c := &Connection{url: url}
	if err := c.connect(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Connection) connect(ctx context.Context) error {
	var err error
	for i := 0; i < dialAttempts; i++ {
		if err = c.open(); err == nil {
			return nil
		}
		if i < dialAttempts-1 {
			wait := time.Duration(i+1) * 2 * time.Second
			log.Printf("WARN: rabbitmq connect failed, retrying in %v: %v", wait, err)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return fmt.Errorf("connect to rabbitmq: %w", ctx.Err())
			}
		}
	}
	return fmt.Errorf("connect to rabbitmq after %d attempts: %w", dialAttempts, err)
}

func (c *Connection) open() error {
	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		OrdersExchange, // name
		"topic",        // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("declare %s exchange: %w", OrdersExchange, err)
	}
	c.conn, c.channel = conn, ch
	return nil
}

func (c *Connection) Publish(ctx context.Context, exchange, routingKey string, msg amqp091.Publishing) error {
	return c.channel.PublishWithContext(ctx, exchange, routingKey, false, false, msg)
}

func (c *Connection) IsClosed() bool {
	return c.conn == nil || c.conn.IsClosed()
}

func (c *Connection) Reconnect(ctx context.Context) error {
	c.Close() //nolint:errcheck
	return c.connect(ctx)
}

func (c *Connection) Close() error {
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}
