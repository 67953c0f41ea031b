package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cristijna/SaboresGo/internal/auth"
	"github.com/cristijna/SaboresGo/internal/database"
	"github.com/cristijna/SaboresGo/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// StatusAdvancer moves orders through the status workflow.
// Satisfied by *service.OrderStatusService.
type StatusAdvancer interface {
	Advance(ctx context.Context, acct auth.Account, orderID uuid.UUID, requested string) (database.OrderLine, error)
}

// SupplierOrderStore defines the database methods needed by the supplier order panel.
// Satisfied by *database.Queries; narrow interface for testability.
type SupplierOrderStore interface {
	ListSupplierOrders(ctx context.Context, supplierID uuid.UUID) ([]database.OrderLine, error)
}

// SupplierOrderHandler serves the supplier's order panel.
type SupplierOrderHandler struct {
	store  SupplierOrderStore
	status StatusAdvancer
}

func NewSupplierOrderHandler(store SupplierOrderStore, status StatusAdvancer) *SupplierOrderHandler {
	return &SupplierOrderHandler{store: store, status: status}
}

// RegisterRoutes registers endpoints under /proveedor/pedidos.
func (h *SupplierOrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Patch("/{id}/estado", h.UpdateStatus)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// List returns orders of the supplier's dishes, newest first.
func (h *SupplierOrderHandler) List(w http.ResponseWriter, r *http.Request) {
	supplierID, ok := requireSupplier(w, r)
	if !ok {
		return
	}

	lines, err := h.store.ListSupplierOrders(r.Context(), supplierID)
	if err != nil {
		writeInternal(w, "list supplier orders", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderLineResponses(lines))
}

// UpdateStatus handles PATCH /proveedor/pedidos/{id}/estado.
func (h *SupplierOrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	advanceStatus(w, r, h.status)
}

// advanceStatus is shared by the supplier and admin status endpoints; the
// service decides what the account may touch.
func advanceStatus(w http.ResponseWriter, r *http.Request, status StatusAdvancer) {
	acct, ok := requireAccount(w, r)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(w, r, "id", "order")
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Status == "" {
		writeError(w, http.StatusBadRequest, "status is required")
		return
	}

	line, err := status.Advance(r.Context(), acct, orderID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus):
			writeError(w, http.StatusBadRequest, "invalid status")
		case errors.Is(err, service.ErrOrderNotFound):
			writeError(w, http.StatusNotFound, "order not found")
		case errors.Is(err, service.ErrForbidden):
			writeError(w, http.StatusForbidden, "insufficient permissions")
		case errors.Is(err, service.ErrInvalidTransition):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrStatusConflict):
			writeError(w, http.StatusConflict, "order status changed, please retry")
		default:
			writeInternal(w, "advance order status", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, toOrderLineResponse(line))
}
