package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cristijna/SaboresGo/internal/database"
	"github.com/cristijna/SaboresGo/internal/events"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Errors returned by the cart service.
var (
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrDishNotFound    = errors.New("dish not found")
	ErrOrderNotFound   = errors.New("order not found")
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// CartStore defines the DB methods needed by the cart.
// Satisfied by *database.Queries (and its WithTx variant).
type CartStore interface {
	GetDish(ctx context.Context, id uuid.UUID) (database.Dish, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (database.Customer, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	ListCartLines(ctx context.Context, customerID uuid.UUID) ([]database.OrderLine, error)
	ConfirmCart(ctx context.Context, customerID uuid.UUID) ([]database.OrderLine, error)
	GetCustomerOrder(ctx context.Context, arg database.GetCustomerOrderParams) (database.OrderLine, error)
	UpdateCartLine(ctx context.Context, arg database.UpdateCartLineParams) (database.Order, error)
	DeleteCartLine(ctx context.Context, arg database.DeleteCartLineParams) (uuid.UUID, error)
	ListActiveCustomerOrders(ctx context.Context, arg database.ListActiveCustomerOrdersParams) ([]database.OrderLine, error)
}

// NewCartStore creates a CartStore from a DBTX (pool or tx).
type NewCartStore func(db database.DBTX) CartStore

// Cart is the customer's unconfirmed order lines and their total.
type Cart struct {
	Lines []database.OrderLine
	Total decimal.Decimal
}

// CartService manages cart lines: orders that are not confirmed yet.
type CartService struct {
	pool      TxBeginner
	store     CartStore
	newStore  NewCartStore
	flow      *Workflow
	publisher events.Publisher
}

// NewCartService creates a new CartService. store serves reads outside a
// transaction; newStore binds a store to a transaction for ConfirmCart.
func NewCartService(pool TxBeginner, store CartStore, newStore NewCartStore, flow *Workflow, pub events.Publisher) *CartService {
	return &CartService{pool: pool, store: store, newStore: newStore, flow: flow, publisher: pub}
}

// ParseQuantity reads a quantity field. Empty input means 1.
func ParseQuantity(s string) (int32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 1, nil
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil || n <= 0 {
		return 0, ErrInvalidQuantity
	}
	return int32(n), nil
}

// CartTotal sums price × quantity over the lines.
func CartTotal(lines []database.OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(numericToDecimal(l.DishPrice).Mul(decimal.NewFromInt32(l.Quantity)))
	}
	return total
}

// AddToCart creates an unconfirmed order line. An empty address falls back to
// the customer's delivery address.
func (s *CartService) AddToCart(ctx context.Context, customerID, dishID uuid.UUID, quantity int32, address string) (database.Order, error) {
	if quantity <= 0 {
		return database.Order{}, ErrInvalidQuantity
	}

	if _, err := s.store.GetDish(ctx, dishID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrDishNotFound
		}
		return database.Order{}, fmt.Errorf("get dish: %w", err)
	}

	address = strings.TrimSpace(address)
	if address == "" {
		customer, err := s.store.GetCustomer(ctx, customerID)
		if err != nil {
			return database.Order{}, fmt.Errorf("get customer: %w", err)
		}
		address = customer.Address
	}

	order, err := s.store.CreateOrder(ctx, database.CreateOrderParams{
		CustomerID:      customerID,
		DishID:          dishID,
		Quantity:        quantity,
		DeliveryAddress: address,
	})
	if err != nil {
		return database.Order{}, fmt.Errorf("create order: %w", err)
	}
	return order, nil
}

func (s *CartService) ListCart(ctx context.Context, customerID uuid.UUID) (*Cart, error) {
	lines, err := s.store.ListCartLines(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("list cart lines: %w", err)
	}
	return &Cart{Lines: lines, Total: CartTotal(lines)}, nil
}

// ConfirmCart confirms every cart line of the customer in one transaction.
// An empty cart confirms nothing and is not an error.
func (s *CartService) ConfirmCart(ctx context.Context, customerID uuid.UUID) ([]database.OrderLine, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	lines, err := store.ConfirmCart(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("confirm cart: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	now := time.Now()
	for _, line := range lines {
		publish(ctx, s.publisher, events.FromOrderLine(events.TypeOrderConfirmed, line, now))
	}
	return lines, nil
}

// EditCartLine changes quantity and address of an unconfirmed line owned by
// the customer. An empty address keeps the current one.
func (s *CartService) EditCartLine(ctx context.Context, customerID, orderID uuid.UUID, quantity int32, address string) (database.Order, error) {
	if quantity <= 0 {
		return database.Order{}, ErrInvalidQuantity
	}

	current, err := s.store.GetCustomerOrder(ctx, database.GetCustomerOrderParams{ID: orderID, CustomerID: customerID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, fmt.Errorf("get order: %w", err)
	}
	if current.Confirmed {
		return database.Order{}, ErrOrderNotFound
	}

	address = strings.TrimSpace(address)
	if address == "" {
		address = current.DeliveryAddress
	}

	order, err := s.store.UpdateCartLine(ctx, database.UpdateCartLineParams{
		ID:              orderID,
		CustomerID:      customerID,
		Quantity:        quantity,
		DeliveryAddress: address,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, fmt.Errorf("update cart line: %w", err)
	}
	return order, nil
}

func (s *CartService) RemoveCartLine(ctx context.Context, customerID, orderID uuid.UUID) error {
	_, err := s.store.DeleteCartLine(ctx, database.DeleteCartLineParams{ID: orderID, CustomerID: customerID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("delete cart line: %w", err)
	}
	return nil
}

// ActiveOrders returns confirmed orders that have not reached the final status, newest first.
func (s *CartService) ActiveOrders(ctx context.Context, customerID uuid.UUID) ([]database.OrderLine, error) {
	lines, err := s.store.ListActiveCustomerOrders(ctx, database.ListActiveCustomerOrdersParams{
		CustomerID:    customerID,
		ExcludeStatus: s.flow.Terminal(),
	})
	if err != nil {
		return nil, fmt.Errorf("list active orders: %w", err)
	}
	return lines, nil
}

func (s *CartService) OrderDetail(ctx context.Context, customerID, orderID uuid.UUID) (database.OrderLine, error) {
	line, err := s.store.GetCustomerOrder(ctx, database.GetCustomerOrderParams{ID: orderID, CustomerID: customerID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.OrderLine{}, ErrOrderNotFound
		}
		return database.OrderLine{}, fmt.Errorf("get order: %w", err)
	}
	return line, nil
}
