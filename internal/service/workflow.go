package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cristijna/SaboresGo/internal/auth"
	"github.com/cristijna/SaboresGo/internal/database"
	"github.com/cristijna/SaboresGo/internal/enum"
	"github.com/cristijna/SaboresGo/internal/events"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Errors returned by the order status workflow.
var (
	ErrInvalidWorkflow   = errors.New("invalid order workflow")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrStatusConflict    = errors.New("order status changed, please retry")
	ErrForbidden         = errors.New("forbidden")
)

// Workflow is an ordered list of order statuses. An order moves forward one
// step at a time and stops at the last one.
type Workflow struct {
	states []string
	index  map[string]int
}

// NewWorkflow validates a configured flow: at least two known statuses, no
// duplicates, starting at pendiente.
func NewWorkflow(states []string) (*Workflow, error) {
	if len(states) < 2 {
		return nil, fmt.Errorf("%w: needs at least two statuses", ErrInvalidWorkflow)
	}
	if states[0] != enum.OrderStatusPending {
		return nil, fmt.Errorf("%w: must start at %s", ErrInvalidWorkflow, enum.OrderStatusPending)
	}
	index := make(map[string]int, len(states))
	for i, s := range states {
		if !enum.IsKnownOrderStatus(s) {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidWorkflow, s)
		}
		if _, dup := index[s]; dup {
			return nil, fmt.Errorf("%w: duplicate status %q", ErrInvalidWorkflow, s)
		}
		index[s] = i
	}
	return &Workflow{states: append([]string(nil), states...), index: index}, nil
}

func (w *Workflow) States() []string {
	return append([]string(nil), w.states...)
}

func (w *Workflow) Initial() string { return w.states[0] }

func (w *Workflow) Terminal() string { return w.states[len(w.states)-1] }

func (w *Workflow) Valid(status string) bool {
	_, ok := w.index[status]
	return ok
}

// Next returns the immediate successor of status.
func (w *Workflow) Next(status string) (string, bool) {
	i, ok := w.index[status]
	if !ok || i == len(w.states)-1 {
		return "", false
	}
	return w.states[i+1], true
}

func (w *Workflow) CanTransition(from, to string) bool {
	next, ok := w.Next(from)
	return ok && next == to
}

// OrderStatusStore defines the DB methods needed to advance orders.
// Satisfied by *database.Queries; narrow interface for testability.
type OrderStatusStore interface {
	GetOrderLine(ctx context.Context, id uuid.UUID) (database.OrderLine, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
}

type OrderStatusService struct {
	store     OrderStatusStore
	flow      *Workflow
	publisher events.Publisher
}

func NewOrderStatusService(store OrderStatusStore, flow *Workflow, pub events.Publisher) *OrderStatusService {
	return &OrderStatusService{store: store, flow: flow, publisher: pub}
}

func (s *OrderStatusService) Workflow() *Workflow { return s.flow }

// Advance moves an order to requested. Admins may advance any order, suppliers
// only orders of their own dishes; a foreign order looks like a missing one.
func (s *OrderStatusService) Advance(ctx context.Context, acct auth.Account, orderID uuid.UUID, requested string) (database.OrderLine, error) {
	if !s.flow.Valid(requested) {
		return database.OrderLine{}, ErrInvalidStatus
	}

	line, err := s.store.GetOrderLine(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.OrderLine{}, ErrOrderNotFound
		}
		return database.OrderLine{}, fmt.Errorf("get order: %w", err)
	}

	if !acct.IsAdmin() {
		supplierID, ok := acct.Supplier()
		if !ok {
			return database.OrderLine{}, ErrForbidden
		}
		if line.SupplierID != supplierID {
			return database.OrderLine{}, ErrOrderNotFound
		}
	}

	if !s.flow.CanTransition(line.Status, requested) {
		return database.OrderLine{}, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, line.Status, requested)
	}

	updated, err := s.store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{
		ID:         orderID,
		Status:     requested,
		PrevStatus: line.Status,
		Confirm:    line.Status == s.flow.Initial(),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.OrderLine{}, ErrStatusConflict
		}
		return database.OrderLine{}, fmt.Errorf("update order status: %w", err)
	}

	line.Status = updated.Status
	line.Confirmed = updated.Confirmed
	publish(ctx, s.publisher, events.FromOrderLine(events.TypeStatusChanged, line, time.Now()))
	return line, nil
}
