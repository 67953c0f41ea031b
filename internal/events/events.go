// Package events defines the order notifications emitted after cart
// confirmations and status changes, and the publishers that carry them.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/cristijna/SaboresGo/internal/database"
	"github.com/google/uuid"
)

const (
	TypeOrderConfirmed = "confirmed"
	TypeStatusChanged  = "status_changed"
)

type OrderEvent struct {
	Type       string    `json:"type"`
	OrderID    uuid.UUID `json:"order_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	SupplierID uuid.UUID `json:"supplier_id"`
	DishID     uuid.UUID `json:"dish_id"`
	Status     string    `json:"status"`
	Confirmed  bool      `json:"confirmed"`
	At         time.Time `json:"at"`
}

// RoutingKey is the topic used on the message broker, e.g. "order.confirmed".
func (e OrderEvent) RoutingKey() string {
	return "order." + e.Type
}

// FromOrderLine builds an event from the joined order row.
func FromOrderLine(eventType string, line database.OrderLine, at time.Time) OrderEvent {
	return OrderEvent{
		Type:       eventType,
		OrderID:    line.ID,
		CustomerID: line.CustomerID,
		SupplierID: line.SupplierID,
		DishID:     line.DishID,
		Status:     line.Status,
		Confirmed:  line.Confirmed,
		At:         at,
	}
}

type Publisher interface {
	Publish(ctx context.Context, ev OrderEvent) error
}

// Multi publishes to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, ev OrderEvent) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type Nop struct{}

func (Nop) Publish(context.Context, OrderEvent) error { return nil }
