package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cristijna/SaboresGo/internal/database"
	"github.com/google/uuid"
)

type recorder struct {
	got []OrderEvent
	err error
}

func (r *recorder) Publish(_ context.Context, ev OrderEvent) error {
	r.got = append(r.got, ev)
	return r.err
}

func TestMultiPublishesToAll(t *testing.T) {
	a := &recorder{}
	b := &recorder{err: errors.New("broker down")}
	c := &recorder{}

	err := Multi{a, b, c}.Publish(context.Background(), OrderEvent{Type: TypeOrderConfirmed})
	if err == nil {
		t.Fatal("expected joined error")
	}
	if len(a.got) != 1 || len(b.got) != 1 || len(c.got) != 1 {
		t.Errorf("expected every publisher to receive the event: %d %d %d", len(a.got), len(b.got), len(c.got))
	}
}

func TestMultiNoErrors(t *testing.T) {
	if err := (Multi{Nop{}, &recorder{}}).Publish(context.Background(), OrderEvent{}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFromOrderLine(t *testing.T) {
	line := database.OrderLine{
		ID:         uuid.New(),
		CustomerID: uuid.New(),
		DishID:     uuid.New(),
		SupplierID: uuid.New(),
		Status:     "preparando",
		Confirmed:  true,
	}
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	ev := FromOrderLine(TypeStatusChanged, line, at)
	if ev.OrderID != line.ID || ev.SupplierID != line.SupplierID || ev.Status != "preparando" || !ev.Confirmed {
		t.Errorf("unexpected event: %+v", ev)
	}
	if ev.RoutingKey() != "order.status_changed" {
		t.Errorf("routing key: got %q", ev.RoutingKey())
	}
}
