package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cristijna/SaboresGo/internal/database"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CatalogStore defines the database methods needed by the public catalog.
// Satisfied by *database.Queries; narrow interface for testability.
type CatalogStore interface {
	ListSuppliers(ctx context.Context) ([]database.Supplier, error)
	ListApprovedSuppliers(ctx context.Context) ([]database.Supplier, error)
	ListDishes(ctx context.Context) ([]database.Dish, error)
	GetDishWithSupplier(ctx context.Context, id uuid.UUID) (database.GetDishWithSupplierRow, error)
}

// CatalogHandler serves the public catalog pages.
type CatalogHandler struct {
	store CatalogStore
}

func NewCatalogHandler(store CatalogStore) *CatalogHandler {
	return &CatalogHandler{store: store}
}

func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Catalog)
	r.Get("/proveedores", h.ApprovedSuppliers)
	r.Get("/plato/{id}", h.Dish)
}

// --- Response types ---

type dishResponse struct {
	ID          uuid.UUID `json:"id"`
	SupplierID  uuid.UUID `json:"supplier_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Ingredients string    `json:"ingredients"`
	Price       string    `json:"price"`
	ImageURL    *string   `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
}

func toDishResponse(d database.Dish) dishResponse {
	return dishResponse{
		ID:          d.ID,
		SupplierID:  d.SupplierID,
		Name:        d.Name,
		Description: d.Description,
		Ingredients: d.Ingredients,
		Price:       numericToString(d.Price),
		ImageURL:    textPtr(d.ImageUrl),
		CreatedAt:   d.CreatedAt,
	}
}

type supplierResponse struct {
	ID          uuid.UUID `json:"id"`
	CompanyName string    `json:"company_name"`
	Description *string   `json:"description"`
	Phone       *string   `json:"phone"`
	Approved    bool      `json:"approved"`
}

func toSupplierResponse(s database.Supplier) supplierResponse {
	return supplierResponse{
		ID:          s.ID,
		CompanyName: s.CompanyName,
		Description: textPtr(s.Description),
		Phone:       textPtr(s.Phone),
		Approved:    s.Approved,
	}
}

type catalogSupplier struct {
	supplierResponse
	Dishes []dishResponse `json:"dishes"`
}

type dishDetailResponse struct {
	dishResponse
	SupplierName     string `json:"supplier_name"`
	SupplierApproved bool   `json:"supplier_approved"`
}

// --- Handlers ---

// Catalog lists every supplier with its dishes.
func (h *CatalogHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.store.ListSuppliers(r.Context())
	if err != nil {
		writeInternal(w, "list suppliers", err)
		return
	}
	dishes, err := h.store.ListDishes(r.Context())
	if err != nil {
		writeInternal(w, "list dishes", err)
		return
	}

	bySupplier := make(map[uuid.UUID][]dishResponse, len(suppliers))
	for _, d := range dishes {
		bySupplier[d.SupplierID] = append(bySupplier[d.SupplierID], toDishResponse(d))
	}

	resp := make([]catalogSupplier, len(suppliers))
	for i, s := range suppliers {
		ds := bySupplier[s.ID]
		if ds == nil {
			ds = []dishResponse{}
		}
		resp[i] = catalogSupplier{supplierResponse: toSupplierResponse(s), Dishes: ds}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CatalogHandler) ApprovedSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.store.ListApprovedSuppliers(r.Context())
	if err != nil {
		writeInternal(w, "list approved suppliers", err)
		return
	}
	resp := make([]supplierResponse, len(suppliers))
	for i, s := range suppliers {
		resp[i] = toSupplierResponse(s)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Dish returns any dish, including those of suppliers awaiting approval.
func (h *CatalogHandler) Dish(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "dish")
	if !ok {
		return
	}

	d, err := h.store.GetDishWithSupplier(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "dish not found")
			return
		}
		writeInternal(w, "get dish", err)
		return
	}

	writeJSON(w, http.StatusOK, dishDetailResponse{
		dishResponse:     toDishResponse(d.Dish),
		SupplierName:     d.SupplierName,
		SupplierApproved: d.SupplierApproved,
	})
}
