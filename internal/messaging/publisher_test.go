package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cristijna/SaboresGo/internal/events"
	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
)

type published struct {
	exchange   string
	routingKey string
	msg        amqp091.Publishing
}

type fakeBroker struct {
	mu           sync.Mutex
	closed       bool
	reconnectErr error
	publishErr   error
	reconnects   int
	sent         []published

	// holdReconnect, when set, keeps Reconnect waiting until it is closed
	// or ctx is done.
	holdReconnect chan struct{}
}

func (b *fakeBroker) Publish(ctx context.Context, exchange, routingKey string, msg amqp091.Publishing) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("publish without deadline")
	}
	if b.publishErr != nil {
		return b.publishErr
	}
	b.sent = append(b.sent, published{exchange, routingKey, msg})
	return nil
}
func (b *fakeBroker) IsClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}
func (b *fakeBroker) Reconnect(ctx context.Context) error {
	b.mu.Lock()
	b.reconnects++
	hold := b.holdReconnect
	b.mu.Unlock()

	if hold != nil {
		select {
		case <-hold:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.reconnectErr != nil {
		return b.reconnectErr
	}
	b.closed = false
	return nil
}
func (b *fakeBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func TestPublish(t *testing.T) {
	broker := &fakeBroker{}
	p := NewPublisher(broker)
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return at }

	ev := events.OrderEvent{
		Type:       events.TypeOrderConfirmed,
		OrderID:    uuid.New(),
		SupplierID: uuid.New(),
		Status:     "pendiente",
		Confirmed:  true,
	}
	if err := p.Publish(context.Background(), ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(broker.sent) != 1 {
		t.Fatalf("sent: got %d, want 1", len(broker.sent))
	}
	got := broker.sent[0]
	if got.exchange != "orders_topic" || got.routingKey != "order.confirmed" {
		t.Errorf("route: %s / %s", got.exchange, got.routingKey)
	}
	if got.msg.DeliveryMode != amqp091.Persistent || got.msg.ContentType != "application/json" {
		t.Errorf("publishing: %+v", got.msg)
	}
	if !got.msg.Timestamp.Equal(at) || got.msg.MessageId != ev.OrderID.String() {
		t.Errorf("metadata: %v %s", got.msg.Timestamp, got.msg.MessageId)
	}
	var decoded events.OrderEvent
	if err := json.Unmarshal(got.msg.Body, &decoded); err != nil {
		t.Fatalf("body: %v", err)
	}
	if decoded.OrderID != ev.OrderID || !decoded.Confirmed {
		t.Errorf("decoded: %+v", decoded)
	}
}

func TestPublish_Reconnects(t *testing.T) {
	broker := &fakeBroker{closed: true}
	p := NewPublisher(broker)

	err := p.Publish(context.Background(), events.OrderEvent{Type: events.TypeStatusChanged})
	if !errors.Is(err, ErrDisconnected) {
		t.Fatalf("expected ErrDisconnected while reconnecting, got %v", err)
	}
	p.wg.Wait()

	if err := p.Publish(context.Background(), events.OrderEvent{Type: events.TypeStatusChanged}); err != nil {
		t.Fatalf("unexpected error after reconnect: %v", err)
	}
	if broker.reconnects != 1 || len(broker.sent) != 1 {
		t.Errorf("reconnects=%d sent=%d", broker.reconnects, len(broker.sent))
	}
	if broker.sent[0].routingKey != "order.status_changed" {
		t.Errorf("routing key: %s", broker.sent[0].routingKey)
	}
}

func TestPublish_DoesNotWaitForReconnect(t *testing.T) {
	broker := &fakeBroker{closed: true, holdReconnect: make(chan struct{})}
	p := NewPublisher(broker)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	start := time.Now()
	for i := 0; i < 3; i++ {
		err := p.Publish(ctx, events.OrderEvent{Type: events.TypeOrderConfirmed, OrderID: uuid.New()})
		if !errors.Is(err, ErrDisconnected) {
			t.Fatalf("publish %d: expected ErrDisconnected, got %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("publish blocked for %v while broker was reconnecting", elapsed)
	}

	broker.mu.Lock()
	reconnects := broker.reconnects
	broker.mu.Unlock()
	if reconnects != 1 {
		t.Errorf("reconnects: got %d, want 1", reconnects)
	}

	// Close cancels the pending reconnect instead of waiting for it.
	done := make(chan error, 1)
	go func() { done <- p.Close() }()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close did not cancel the pending reconnect")
	}
	if len(broker.sent) != 0 {
		t.Errorf("sent: got %d, want 0", len(broker.sent))
	}
}

func TestPublish_Errors(t *testing.T) {
	broker := &fakeBroker{closed: true, reconnectErr: errors.New("refused")}
	p := NewPublisher(broker)
	if err := p.Publish(context.Background(), events.OrderEvent{Type: "x"}); err == nil {
		t.Error("expected error while disconnected")
	}
	p.wg.Wait()
	if err := p.Publish(context.Background(), events.OrderEvent{Type: "x"}); !errors.Is(err, ErrDisconnected) {
		t.Errorf("failed reconnect: expected ErrDisconnected, got %v", err)
	}
	p.Close() //nolint:errcheck

	broker = &fakeBroker{publishErr: errors.New("channel closed")}
	p = NewPublisher(broker)
	if err := p.Publish(context.Background(), events.OrderEvent{Type: "x"}); err == nil {
		t.Error("expected publish error")
	}
}

func TestPublish_Concurrent(t *testing.T) {
	broker := &fakeBroker{}
	p := NewPublisher(broker)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = p.Publish(context.Background(), events.OrderEvent{Type: events.TypeOrderConfirmed, OrderID: uuid.New()})
		}()
	}
	wg.Wait()
	if len(broker.sent) != 20 {
		t.Errorf("sent: got %d, want 20", len(broker.sent))
	}
}
