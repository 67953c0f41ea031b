package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/cristijna/SaboresGo/internal/database"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// DishStore defines the database methods needed by supplier dish handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type DishStore interface {
	ListDishesBySupplier(ctx context.Context, supplierID uuid.UUID) ([]database.Dish, error)
	GetSupplierDish(ctx context.Context, arg database.GetSupplierDishParams) (database.Dish, error)
	CreateDish(ctx context.Context, arg database.CreateDishParams) (database.Dish, error)
	UpdateDish(ctx context.Context, arg database.UpdateDishParams) (database.Dish, error)
	DeleteDish(ctx context.Context, arg database.DeleteDishParams) (uuid.UUID, error)
}

// DishHandler lets a supplier manage its own dishes.
type DishHandler struct {
	store DishStore
}

// NewDishHandler creates a new DishHandler.
func NewDishHandler(store DishStore) *DishHandler {
	return &DishHandler{store: store}
}

// RegisterRoutes registers dish CRUD endpoints on the given Chi router.
// Expected to be mounted at /proveedor/platos behind the supplier role check.
func (h *DishHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request types ---

type dishRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Ingredients string `json:"ingredients"`
	Price       string `json:"price"`
	ImageURL    string `json:"image_url"`
}

// --- Helpers ---

var maxDishPrice = decimal.RequireFromString("999999.99")

var (
	errPriceNotPositive = errors.New("price must be greater than 0")
	errPriceTooLarge    = errors.New("price must be at most 999999.99")
	errPricePrecision   = errors.New("price must have at most 2 decimal places")
)

func parseDishPrice(s string) (pgtype.Numeric, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return pgtype.Numeric{}, err
	}
	if !d.IsPositive() {
		return pgtype.Numeric{}, errPriceNotPositive
	}
	if d.GreaterThan(maxDishPrice) {
		return pgtype.Numeric{}, errPriceTooLarge
	}
	if !d.Equal(d.Truncate(2)) {
		return pgtype.Numeric{}, errPricePrecision
	}
	var n pgtype.Numeric
	if err := n.Scan(d.StringFixed(2)); err != nil {
		return pgtype.Numeric{}, err
	}
	return n, nil
}

// normalizeIngredients trims the comma separated entries and drops empty ones.
func normalizeIngredients(s string) string {
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}

// decodeDish validates the request body; on failure it writes the 400 itself.
func decodeDish(w http.ResponseWriter, r *http.Request) (dishRequest, pgtype.Numeric, bool) {
	var req dishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return req, pgtype.Numeric{}, false
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return req, pgtype.Numeric{}, false
	}
	if len([]rune(req.Name)) > 150 {
		writeError(w, http.StatusBadRequest, "name must be at most 150 characters")
		return req, pgtype.Numeric{}, false
	}

	price, err := parseDishPrice(req.Price)
	if err != nil {
		msg := "invalid price"
		if errors.Is(err, errPriceNotPositive) || errors.Is(err, errPriceTooLarge) || errors.Is(err, errPricePrecision) {
			msg = err.Error()
		}
		writeError(w, http.StatusBadRequest, msg)
		return req, pgtype.Numeric{}, false
	}

	req.Description = strings.TrimSpace(req.Description)
	req.Ingredients = normalizeIngredients(req.Ingredients)
	if len([]rune(req.Ingredients)) > 500 {
		writeError(w, http.StatusBadRequest, "ingredients must be at most 500 characters")
		return req, pgtype.Numeric{}, false
	}
	return req, price, true
}

// --- Handlers ---

func (h *DishHandler) List(w http.ResponseWriter, r *http.Request) {
	supplierID, ok := requireSupplier(w, r)
	if !ok {
		return
	}

	dishes, err := h.store.ListDishesBySupplier(r.Context(), supplierID)
	if err != nil {
		writeInternal(w, "list supplier dishes", err)
		return
	}

	resp := make([]dishResponse, len(dishes))
	for i, d := range dishes {
		resp[i] = toDishResponse(d)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *DishHandler) Get(w http.ResponseWriter, r *http.Request) {
	supplierID, ok := requireSupplier(w, r)
	if !ok {
		return
	}
	dishID, ok := parseIDParam(w, r, "id", "dish")
	if !ok {
		return
	}

	dish, err := h.store.GetSupplierDish(r.Context(), database.GetSupplierDishParams{
		ID:         dishID,
		SupplierID: supplierID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "dish not found")
			return
		}
		writeInternal(w, "get supplier dish", err)
		return
	}
	writeJSON(w, http.StatusOK, toDishResponse(dish))
}

func (h *DishHandler) Create(w http.ResponseWriter, r *http.Request) {
	supplierID, ok := requireSupplier(w, r)
	if !ok {
		return
	}
	req, price, ok := decodeDish(w, r)
	if !ok {
		return
	}

	dish, err := h.store.CreateDish(r.Context(), database.CreateDishParams{
		SupplierID:  supplierID,
		Name:        req.Name,
		Description: req.Description,
		Ingredients: req.Ingredients,
		Price:       price,
		ImageUrl:    optionalText(req.ImageURL),
	})
	if err != nil {
		writeInternal(w, "create dish", err)
		return
	}
	writeJSON(w, http.StatusCreated, toDishResponse(dish))
}

func (h *DishHandler) Update(w http.ResponseWriter, r *http.Request) {
	supplierID, ok := requireSupplier(w, r)
	if !ok {
		return
	}
	dishID, ok := parseIDParam(w, r, "id", "dish")
	if !ok {
		return
	}
	req, price, ok := decodeDish(w, r)
	if !ok {
		return
	}

	dish, err := h.store.UpdateDish(r.Context(), database.UpdateDishParams{
		ID:          dishID,
		SupplierID:  supplierID,
		Name:        req.Name,
		Description: req.Description,
		Ingredients: req.Ingredients,
		Price:       price,
		ImageUrl:    optionalText(req.ImageURL),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "dish not found")
			return
		}
		writeInternal(w, "update dish", err)
		return
	}
	writeJSON(w, http.StatusOK, toDishResponse(dish))
}

// Delete removes a dish. Dishes that were already ordered cannot be deleted.
func (h *DishHandler) Delete(w http.ResponseWriter, r *http.Request) {
	supplierID, ok := requireSupplier(w, r)
	if !ok {
		return
	}
	dishID, ok := parseIDParam(w, r, "id", "dish")
	if !ok {
		return
	}

	_, err := h.store.DeleteDish(r.Context(), database.DeleteDishParams{
		ID:         dishID,
		SupplierID: supplierID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "dish not found")
			return
		}
		if isForeignKeyViolation(err) {
			writeError(w, http.StatusConflict, "dish has orders and cannot be deleted")
			return
		}
		writeInternal(w, "delete dish", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
