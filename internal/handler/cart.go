package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cristijna/SaboresGo/internal/database"
	"github.com/cristijna/SaboresGo/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// CartServicer defines the service methods needed by customer order handlers.
// Satisfied by *service.CartService; narrow interface for testability.
type CartServicer interface {
	AddToCart(ctx context.Context, customerID, dishID uuid.UUID, quantity int32, address string) (database.Order, error)
	ListCart(ctx context.Context, customerID uuid.UUID) (*service.Cart, error)
	ConfirmCart(ctx context.Context, customerID uuid.UUID) ([]database.OrderLine, error)
	EditCartLine(ctx context.Context, customerID, orderID uuid.UUID, quantity int32, address string) (database.Order, error)
	RemoveCartLine(ctx context.Context, customerID, orderID uuid.UUID) error
	ActiveOrders(ctx context.Context, customerID uuid.UUID) ([]database.OrderLine, error)
	OrderDetail(ctx context.Context, customerID, orderID uuid.UUID) (database.OrderLine, error)
}

// CartHandler handles the customer's cart and order tracking endpoints.
type CartHandler struct {
	svc CartServicer
}

func NewCartHandler(svc CartServicer) *CartHandler {
	return &CartHandler{svc: svc}
}

// RegisterRoutes registers customer order endpoints on the given Chi router.
// Expected to be mounted behind the customer role check.
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Get("/cliente/pedidos", h.ListCart)
	r.Post("/cliente/pedidos", h.ConfirmCart)
	r.Post("/cliente/pedidos/crear", h.Add)
	r.Get("/cliente/pedidos/{id}", h.Get)
	r.Put("/cliente/pedidos/{id}", h.Edit)
	r.Delete("/cliente/pedidos/{id}", h.Remove)
	r.Get("/mis-pedidos", h.MyOrders)
	r.Post("/pedido/rapido/{dish_id}", h.QuickOrder)
}

// --- Request / Response types ---

// quantityField accepts a JSON number or a numeric string. Absent means 1.
type quantityField string

func (q *quantityField) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		s = ""
	}
	*q = quantityField(strings.Trim(s, `"`))
	return nil
}

type addToCartRequest struct {
	DishID          string        `json:"dish_id"`
	Quantity        quantityField `json:"quantity"`
	DeliveryAddress string        `json:"delivery_address"`
}

type quickOrderRequest struct {
	Quantity        quantityField `json:"quantity"`
	DeliveryAddress string        `json:"delivery_address"`
}

type editCartLineRequest struct {
	Quantity        quantityField `json:"quantity"`
	DeliveryAddress string        `json:"delivery_address"`
}

type confirmCartRequest struct {
	ConfirmCart bool `json:"confirmar_carrito"`
}

type orderResponse struct {
	ID              uuid.UUID `json:"id"`
	CustomerID      uuid.UUID `json:"customer_id"`
	DishID          uuid.UUID `json:"dish_id"`
	Quantity        int32     `json:"quantity"`
	Status          string    `json:"status"`
	Confirmed       bool      `json:"confirmed"`
	DeliveryAddress string    `json:"delivery_address"`
	CreatedAt       time.Time `json:"created_at"`
}

func toOrderResponse(o database.Order) orderResponse {
	return orderResponse{
		ID:              o.ID,
		CustomerID:      o.CustomerID,
		DishID:          o.DishID,
		Quantity:        o.Quantity,
		Status:          o.Status,
		Confirmed:       o.Confirmed,
		DeliveryAddress: o.DeliveryAddress,
		CreatedAt:       o.CreatedAt,
	}
}

type cartResponse struct {
	Lines []orderLineResponse `json:"lines"`
	Total string              `json:"total"`
}

func writeCartError(w http.ResponseWriter, what string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrDishNotFound):
		writeError(w, http.StatusNotFound, "dish not found")
	case errors.Is(err, service.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, "order not found")
	default:
		writeInternal(w, what, err)
	}
}

// --- Handlers ---

func (h *CartHandler) ListCart(w http.ResponseWriter, r *http.Request) {
	customerID, ok := requireCustomer(w, r)
	if !ok {
		return
	}

	cart, err := h.svc.ListCart(r.Context(), customerID)
	if err != nil {
		writeInternal(w, "list cart", err)
		return
	}
	writeJSON(w, http.StatusOK, cartResponse{
		Lines: toOrderLineResponses(cart.Lines),
		Total: decimalToString(cart.Total),
	})
}

// ConfirmCart handles POST /cliente/pedidos with {"confirmar_carrito": true}.
func (h *CartHandler) ConfirmCart(w http.ResponseWriter, r *http.Request) {
	customerID, ok := requireCustomer(w, r)
	if !ok {
		return
	}

	var req confirmCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.ConfirmCart {
		writeError(w, http.StatusBadRequest, "confirmar_carrito must be true")
		return
	}

	lines, err := h.svc.ConfirmCart(r.Context(), customerID)
	if err != nil {
		writeInternal(w, "confirm cart", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"confirmed": toOrderLineResponses(lines),
	})
}

// Add handles POST /cliente/pedidos/crear.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	customerID, ok := requireCustomer(w, r)
	if !ok {
		return
	}

	var req addToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	dishID, err := uuid.Parse(req.DishID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid dish_id")
		return
	}
	h.add(w, r, customerID, dishID, req.Quantity, req.DeliveryAddress)
}

// QuickOrder handles POST /pedido/rapido/{dish_id}: one-click add from the catalog.
func (h *CartHandler) QuickOrder(w http.ResponseWriter, r *http.Request) {
	customerID, ok := requireCustomer(w, r)
	if !ok {
		return
	}
	dishID, ok := parseIDParam(w, r, "dish_id", "dish")
	if !ok {
		return
	}

	// The body is optional here.
	var req quickOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.add(w, r, customerID, dishID, req.Quantity, req.DeliveryAddress)
}

func (h *CartHandler) add(w http.ResponseWriter, r *http.Request, customerID, dishID uuid.UUID, qty quantityField, address string) {
	quantity, err := service.ParseQuantity(string(qty))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.svc.AddToCart(r.Context(), customerID, dishID, quantity, address)
	if err != nil {
		writeCartError(w, "add to cart", err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(order))
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	customerID, ok := requireCustomer(w, r)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(w, r, "id", "order")
	if !ok {
		return
	}

	line, err := h.svc.OrderDetail(r.Context(), customerID, orderID)
	if err != nil {
		writeCartError(w, "get order", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderLineResponse(line))
}

func (h *CartHandler) Edit(w http.ResponseWriter, r *http.Request) {
	customerID, ok := requireCustomer(w, r)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(w, r, "id", "order")
	if !ok {
		return
	}

	var req editCartLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	quantity, err := service.ParseQuantity(string(req.Quantity))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.svc.EditCartLine(r.Context(), customerID, orderID, quantity, req.DeliveryAddress)
	if err != nil {
		writeCartError(w, "edit cart line", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	customerID, ok := requireCustomer(w, r)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(w, r, "id", "order")
	if !ok {
		return
	}

	if err := h.svc.RemoveCartLine(r.Context(), customerID, orderID); err != nil {
		writeCartError(w, "remove cart line", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MyOrders lists confirmed orders still on their way.
func (h *CartHandler) MyOrders(w http.ResponseWriter, r *http.Request) {
	customerID, ok := requireCustomer(w, r)
	if !ok {
		return
	}

	lines, err := h.svc.ActiveOrders(r.Context(), customerID)
	if err != nil {
		writeInternal(w, "list active orders", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderLineResponses(lines))
}
