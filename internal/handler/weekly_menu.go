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

// WeeklyMenuServicer defines the service methods needed by weekly menu handlers.
// Satisfied by *service.WeeklyMenuService; narrow interface for testability.
type WeeklyMenuServicer interface {
	Week(ctx context.Context, acct auth.Account) (*service.Week, error)
	SlotOptions(ctx context.Context, acct auth.Account, weekday string) (*service.SlotOptions, error)
	AssignDish(ctx context.Context, acct auth.Account, weekday string, dishID uuid.UUID) (*service.Week, error)
	Pay(ctx context.Context, acct auth.Account) (*service.PayResult, error)
}

type WeeklyMenuHandler struct {
	svc WeeklyMenuServicer
}

func NewWeeklyMenuHandler(svc WeeklyMenuServicer) *WeeklyMenuHandler {
	return &WeeklyMenuHandler{svc: svc}
}

// RegisterRoutes registers endpoints under /menu-semanal. Any authenticated
// account may call them; the service rejects non-customers.
func (h *WeeklyMenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Week)
	r.Post("/", h.Pay)
	r.Get("/select/{weekday}", h.SlotOptions)
	r.Post("/select/{weekday}", h.Assign)
}

// --- Request / Response types ---

type payRequest struct {
	Pay bool `json:"pagar"`
}

type assignDishRequest struct {
	DishID string `json:"dish_id"`
}

type menuItemResponse struct {
	ID        uuid.UUID  `json:"id"`
	DishID    *uuid.UUID `json:"dish_id"`
	DishName  *string    `json:"dish_name"`
	DishPrice string     `json:"dish_price"`
	Quantity  int32      `json:"quantity"`
}

type weekSlotResponse struct {
	Weekday string            `json:"weekday"`
	Label   string            `json:"label"`
	Item    *menuItemResponse `json:"item"`
}

type weekResponse struct {
	ID    uuid.UUID          `json:"id"`
	Total string             `json:"total"`
	Paid  bool               `json:"paid"`
	Slots []weekSlotResponse `json:"slots"`
}

type slotOptionsResponse struct {
	MenuID uuid.UUID        `json:"menu_id"`
	Paid   bool             `json:"paid"`
	Slot   weekSlotResponse `json:"slot"`
	Dishes []dishResponse   `json:"dishes"`
}

func toWeekSlotResponse(s service.WeekSlot) weekSlotResponse {
	resp := weekSlotResponse{Weekday: s.Weekday, Label: s.Label}
	if s.Item != nil {
		item := &menuItemResponse{
			ID:        s.Item.ID,
			DishName:  textPtr(s.Item.DishName),
			DishPrice: numericToString(s.Item.DishPrice),
			Quantity:  s.Item.Quantity,
		}
		if s.Item.DishID.Valid {
			id := uuid.UUID(s.Item.DishID.Bytes)
			item.DishID = &id
		}
		resp.Item = item
	}
	return resp
}

func toWeekResponse(menu database.WeeklyMenu, slots []service.WeekSlot) weekResponse {
	resp := weekResponse{
		ID:    menu.ID,
		Total: numericToString(menu.Total),
		Paid:  menu.Paid,
		Slots: make([]weekSlotResponse, len(slots)),
	}
	for i, s := range slots {
		resp.Slots[i] = toWeekSlotResponse(s)
	}
	return resp
}

func writeWeeklyMenuError(w http.ResponseWriter, what string, err error) {
	switch {
	case errors.Is(err, service.ErrSupplierExcluded),
		errors.Is(err, service.ErrNotCustomer),
		errors.Is(err, service.ErrNoAgreement):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidWeekday):
		writeError(w, http.StatusBadRequest, "invalid weekday")
	case errors.Is(err, service.ErrDishNotFound):
		writeError(w, http.StatusNotFound, "dish not found")
	case errors.Is(err, service.ErrMenuPaid),
		errors.Is(err, service.ErrEmptyMenu),
		errors.Is(err, service.ErrInsufficientBalance):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeInternal(w, what, err)
	}
}

// --- Handlers ---

func (h *WeeklyMenuHandler) Week(w http.ResponseWriter, r *http.Request) {
	acct, ok := requireAccount(w, r)
	if !ok {
		return
	}

	week, err := h.svc.Week(r.Context(), acct)
	if err != nil {
		writeWeeklyMenuError(w, "get weekly menu", err)
		return
	}
	writeJSON(w, http.StatusOK, toWeekResponse(week.Menu, week.Slots))
}

// Pay handles POST /menu-semanal with {"pagar": true}.
func (h *WeeklyMenuHandler) Pay(w http.ResponseWriter, r *http.Request) {
	acct, ok := requireAccount(w, r)
	if !ok {
		return
	}

	var req payRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.Pay {
		writeError(w, http.StatusBadRequest, "pagar must be true")
		return
	}

	res, err := h.svc.Pay(r.Context(), acct)
	if err != nil {
		writeWeeklyMenuError(w, "pay weekly menu", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":      res.Menu.ID,
		"total":   numericToString(res.Menu.Total),
		"paid":    res.Menu.Paid,
		"balance": decimalToString(res.Balance),
	})
}

func (h *WeeklyMenuHandler) SlotOptions(w http.ResponseWriter, r *http.Request) {
	acct, ok := requireAccount(w, r)
	if !ok {
		return
	}

	opts, err := h.svc.SlotOptions(r.Context(), acct, chi.URLParam(r, "weekday"))
	if err != nil {
		writeWeeklyMenuError(w, "get slot options", err)
		return
	}

	dishes := make([]dishResponse, len(opts.Dishes))
	for i, d := range opts.Dishes {
		dishes[i] = toDishResponse(d)
	}
	writeJSON(w, http.StatusOK, slotOptionsResponse{
		MenuID: opts.Menu.ID,
		Paid:   opts.Menu.Paid,
		Slot:   toWeekSlotResponse(opts.Slot),
		Dishes: dishes,
	})
}

func (h *WeeklyMenuHandler) Assign(w http.ResponseWriter, r *http.Request) {
	acct, ok := requireAccount(w, r)
	if !ok {
		return
	}

	var req assignDishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	dishID, err := uuid.Parse(req.DishID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid dish_id")
		return
	}

	week, err := h.svc.AssignDish(r.Context(), acct, chi.URLParam(r, "weekday"), dishID)
	if err != nil {
		writeWeeklyMenuError(w, "assign weekly menu dish", err)
		return
	}
	writeJSON(w, http.StatusOK, toWeekResponse(week.Menu, week.Slots))
}
