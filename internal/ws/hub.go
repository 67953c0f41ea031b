package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/cristijna/SaboresGo/internal/events"
	"github.com/google/uuid"
)

// AdminRoom receives every order event regardless of supplier.
var AdminRoom = uuid.Nil

// Event represents a WebSocket message to be broadcast
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// roomEvent routes an event to a single room
type roomEvent struct {
	RoomID uuid.UUID
	Event  Event
}

// Hub maintains the set of active clients and broadcasts messages to them.
// Suppliers join the room of their supplier id, admins join AdminRoom.
type Hub struct {
	rooms map[uuid.UUID]map[*Client]bool

	register   chan *Client
	unregister chan *Client

	broadcast chan *roomEvent

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *roomEvent, 256),
	}
}

// Run starts the hub's main loop
// This should be called as a goroutine: go hub.Run()
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.roomID] == nil {
				h.rooms[client.roomID] = make(map[*Client]bool)
			}
			h.rooms[client.roomID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case event := <-h.broadcast:
			message, err := json.Marshal(event.Event)
			if err != nil {
				continue
			}

			h.mu.Lock()
			for client := range h.rooms[event.RoomID] {
				select {
				case client.send <- message:
				default:
					// Slow consumer, drop it
					h.remove(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// remove must be called with mu held.
func (h *Hub) remove(client *Client) {
	clients, ok := h.rooms[client.roomID]
	if !ok {
		return
	}
	if _, exists := clients[client]; !exists {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.rooms, client.roomID)
	}
}

// BroadcastToRoom queues an event for every client in one room. It gives up
// when ctx is done before the event could be queued.
func (h *Hub) BroadcastToRoom(ctx context.Context, roomID uuid.UUID, event Event) error {
	select {
	case h.broadcast <- &roomEvent{RoomID: roomID, Event: event}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Publish implements events.Publisher. The event goes to the supplier's room
// and to AdminRoom.
func (h *Hub) Publish(ctx context.Context, ev events.OrderEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}
	msg := Event{Type: ev.RoutingKey(), Payload: payload}

	if ev.SupplierID != AdminRoom {
		if err := h.BroadcastToRoom(ctx, ev.SupplierID, msg); err != nil {
			return err
		}
	}
	return h.BroadcastToRoom(ctx, AdminRoom, msg)
}
