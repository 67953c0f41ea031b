package service

import (
	"context"
	"log"

	"github.com/cristijna/SaboresGo/internal/events"
)

// publish never fails the caller; the write it reports is already committed.
func publish(ctx context.Context, pub events.Publisher, ev events.OrderEvent) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, ev); err != nil {
		log.Printf("ERROR: publish %s event for order %s: %v", ev.Type, ev.OrderID, err)
	}
}
