package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/cristijna/SaboresGo/internal/events"
	"github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 10 * time.Second

// ErrDisconnected is returned while the broker connection is being restored.
var ErrDisconnected = errors.New("rabbitmq disconnected")

// Broker is the part of a Connection the publisher needs.
type Broker interface {
	Publish(ctx context.Context, exchange, routingKey string, msg amqp091.Publishing) error
	IsClosed() bool
	Reconnect(ctx context.Context) error
	Close() error
}

// Publisher sends order events to OrdersExchange. An amqp channel is not safe
// for concurrent use, so calls are serialized. A lost connection is restored
// in the background; events published meanwhile fail with ErrDisconnected.
type Publisher struct {
	mu           sync.Mutex
	broker       Broker
	now          func() time.Time
	reconnecting bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewPublisher(broker Broker) *Publisher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Publisher{broker: broker, now: time.Now, ctx: ctx, cancel: cancel}
}

// Publish implements events.Publisher.
func (p *Publisher) Publish(ctx context.Context, ev events.OrderEvent) error {
	msg, err := newPublishing(ev, p.now())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.reconnecting {
		return ErrDisconnected
	}
	if p.broker.IsClosed() {
		p.startReconnect()
		return ErrDisconnected
	}

	if err := p.broker.Publish(ctx, OrdersExchange, ev.RoutingKey(), msg); err != nil {
		return fmt.Errorf("publish %s: %w", ev.RoutingKey(), err)
	}
	return nil
}

// startReconnect must be called with p.mu held.
func (p *Publisher) startReconnect() {
	if p.ctx.Err() != nil {
		return
	}
	p.reconnecting = true
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		err := p.broker.Reconnect(p.ctx)

		p.mu.Lock()
		p.reconnecting = false
		p.mu.Unlock()

		if err != nil {
			log.Printf("ERROR: rabbitmq reconnect: %v", err)
			return
		}
		log.Println("Reconnected to RabbitMQ")
	}()
}

// Close stops any reconnect in progress and closes the broker.
func (p *Publisher) Close() error {
	p.mu.Lock()
	p.cancel()
	p.mu.Unlock()
	p.wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.broker.Close()
}

func newPublishing(ev events.OrderEvent, now time.Time) (amqp091.Publishing, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return amqp091.Publishing{}, fmt.Errorf("marshal order event: %w", err)
	}
	return amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    ev.OrderID.String(),
		Type:         ev.Type,
		Timestamp:    now,
		Body:         body,
	}, nil
}
