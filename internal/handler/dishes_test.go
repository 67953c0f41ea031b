package handler_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/cristijna/SaboresGo/internal/database"
	"github.com/cristijna/SaboresGo/internal/handler"
	"github.com/cristijna/SaboresGo/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- Mock DishStore ---

type mockDishStore struct {
	dishes map[uuid.UUID]database.Dish
	// ordered dishes fail deletion with a foreign key violation
	ordered map[uuid.UUID]bool
}

func newMockDishStore() *mockDishStore {
	return &mockDishStore{
		dishes:  make(map[uuid.UUID]database.Dish),
		ordered: make(map[uuid.UUID]bool),
	}
}

func (m *mockDishStore) ListDishesBySupplier(ctx context.Context, supplierID uuid.UUID) ([]database.Dish, error) {
	var out []database.Dish
	for _, d := range m.dishes {
		if d.SupplierID == supplierID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockDishStore) GetSupplierDish(ctx context.Context, arg database.GetSupplierDishParams) (database.Dish, error) {
	d, ok := m.dishes[arg.ID]
	if !ok || d.SupplierID != arg.SupplierID {
		return database.Dish{}, pgx.ErrNoRows
	}
	return d, nil
}

func (m *mockDishStore) CreateDish(ctx context.Context, arg database.CreateDishParams) (database.Dish, error) {
	d := database.Dish{
		ID:          uuid.New(),
		SupplierID:  arg.SupplierID,
		Name:        arg.Name,
		Description: arg.Description,
		Ingredients: arg.Ingredients,
		Price:       arg.Price,
		ImageUrl:    arg.ImageUrl,
		CreatedAt:   time.Now(),
	}
	m.dishes[d.ID] = d
	return d, nil
}

func (m *mockDishStore) UpdateDish(ctx context.Context, arg database.UpdateDishParams) (database.Dish, error) {
	d, ok := m.dishes[arg.ID]
	if !ok || d.SupplierID != arg.SupplierID {
		return database.Dish{}, pgx.ErrNoRows
	}
	d.Name = arg.Name
	d.Description = arg.Description
	d.Ingredients = arg.Ingredients
	d.Price = arg.Price
	d.ImageUrl = arg.ImageUrl
	m.dishes[d.ID] = d
	return d, nil
}

func (m *mockDishStore) DeleteDish(ctx context.Context, arg database.DeleteDishParams) (uuid.UUID, error) {
	d, ok := m.dishes[arg.ID]
	if !ok || d.SupplierID != arg.SupplierID {
		return uuid.Nil, pgx.ErrNoRows
	}
	if m.ordered[arg.ID] {
		return uuid.Nil, &pgconn.PgError{Code: "23503"}
	}
	delete(m.dishes, arg.ID)
	return arg.ID, nil
}

func setupDishRouter(store *mockDishStore) *chi.Mux {
	h := handler.NewDishHandler(store)
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testJWTSecret))
	r.Route("/proveedor/platos", h.RegisterRoutes)
	return r
}

func (m *mockDishStore) seed(supplierID uuid.UUID, name string) database.Dish {
	d := database.Dish{ID: uuid.New(), SupplierID: supplierID, Name: name, Price: numeric("4990")}
	m.dishes[d.ID] = d
	return d
}

// --- Tests ---

func TestDishCreate(t *testing.T) {
	store := newMockDishStore()
	router := setupDishRouter(store)
	acct := supplierAccount()

	rr := doRequest(t, router, http.MethodPost, "/proveedor/platos", map[string]string{
		"name":        "  Porotos granados ",
		"ingredients": "porotos, , zapallo ,choclo",
		"price":       "5490.5",
	}, &acct)
	expectStatus(t, rr, http.StatusCreated)

	resp := decodeResponse(t, rr)
	if resp["name"] != "Porotos granados" {
		t.Errorf("expected trimmed name, got %v", resp["name"])
	}
	if resp["ingredients"] != "porotos, zapallo, choclo" {
		t.Errorf("expected normalized ingredients, got %v", resp["ingredients"])
	}
	if resp["price"] != "5490.50" {
		t.Errorf("expected price 5490.50, got %v", resp["price"])
	}
	if resp["supplier_id"] != acct.ProfileID.String() {
		t.Errorf("dish must belong to the caller, got %v", resp["supplier_id"])
	}
	if resp["image_url"] != nil {
		t.Errorf("expected null image_url, got %v", resp["image_url"])
	}
}

func TestDishCreate_Validation(t *testing.T) {
	tests := []struct {
		name string
		body map[string]string
		msg  string
	}{
		{"missing name", map[string]string{"price": "100"}, "name is required"},
		{"long name", map[string]string{"name": strings.Repeat("ñ", 151), "price": "100"}, "name must be at most 150 characters"},
		{"zero price", map[string]string{"name": "Sopa", "price": "0"}, "price must be greater than 0"},
		{"negative price", map[string]string{"name": "Sopa", "price": "-3"}, "price must be greater than 0"},
		{"huge price", map[string]string{"name": "Sopa", "price": "1000000"}, "price must be at most 999999.99"},
		{"bad price", map[string]string{"name": "Sopa", "price": "gratis"}, "invalid price"},
		{"sub-cent price", map[string]string{"name": "Sopa", "price": "0.004"}, "price must have at most 2 decimal places"},
		{"three decimals", map[string]string{"name": "Sopa", "price": "1200.555"}, "price must have at most 2 decimal places"},
		{"long ingredients", map[string]string{"name": "Sopa", "price": "1", "ingredients": strings.Repeat("a", 501)}, "ingredients must be at most 500 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockDishStore()
			router := setupDishRouter(store)
			acct := supplierAccount()

			rr := doRequest(t, router, http.MethodPost, "/proveedor/platos", tt.body, &acct)
			expectStatus(t, rr, http.StatusBadRequest)
			expectError(t, rr, tt.msg)
			if len(store.dishes) != 0 {
				t.Error("no dish should be created")
			}
		})
	}
}

func TestDishCreate_RequiresSupplier(t *testing.T) {
	router := setupDishRouter(newMockDishStore())
	acct := customerAccount()

	rr := doRequest(t, router, http.MethodPost, "/proveedor/platos", map[string]string{"name": "Sopa", "price": "1"}, &acct)
	expectStatus(t, rr, http.StatusForbidden)
	expectError(t, rr, "supplier account required")

	rr = doRequest(t, router, http.MethodGet, "/proveedor/platos", nil, nil)
	expectStatus(t, rr, http.StatusUnauthorized)
}

func TestDishList_OnlyOwn(t *testing.T) {
	store := newMockDishStore()
	router := setupDishRouter(store)
	acct := supplierAccount()
	store.seed(acct.ProfileID, "Charquicán")
	store.seed(uuid.New(), "Ajena")

	rr := doRequest(t, router, http.MethodGet, "/proveedor/platos", nil, &acct)
	expectStatus(t, rr, http.StatusOK)

	resp := decodeListResponse(t, rr)
	if len(resp) != 1 || resp[0]["name"] != "Charquicán" {
		t.Errorf("expected only own dish, got %v", resp)
	}
}

func TestDishUpdate(t *testing.T) {
	store := newMockDishStore()
	router := setupDishRouter(store)
	acct := supplierAccount()
	dish := store.seed(acct.ProfileID, "Charquicán")

	rr := doRequest(t, router, http.MethodPut, "/proveedor/platos/"+dish.ID.String(), map[string]string{
		"name":      "Charquicán con huevo",
		"price":     "5200",
		"image_url": "https://img.example.com/charquican.jpg",
	}, &acct)
	expectStatus(t, rr, http.StatusOK)

	resp := decodeResponse(t, rr)
	if resp["name"] != "Charquicán con huevo" || resp["price"] != "5200.00" {
		t.Errorf("unexpected dish %v", resp)
	}
	if resp["image_url"] != "https://img.example.com/charquican.jpg" {
		t.Errorf("unexpected image_url %v", resp["image_url"])
	}
}

func TestDishForeignIsNotFound(t *testing.T) {
	store := newMockDishStore()
	router := setupDishRouter(store)
	acct := supplierAccount()
	other := store.seed(uuid.New(), "Ajena")
	path := "/proveedor/platos/" + other.ID.String()

	rr := doRequest(t, router, http.MethodGet, path, nil, &acct)
	expectStatus(t, rr, http.StatusNotFound)

	rr = doRequest(t, router, http.MethodPut, path, map[string]string{"name": "Mía", "price": "1"}, &acct)
	expectStatus(t, rr, http.StatusNotFound)

	rr = doRequest(t, router, http.MethodDelete, path, nil, &acct)
	expectStatus(t, rr, http.StatusNotFound)

	if store.dishes[other.ID].Name != "Ajena" {
		t.Error("foreign dish must be untouched")
	}
}

func TestDishDelete(t *testing.T) {
	store := newMockDishStore()
	router := setupDishRouter(store)
	acct := supplierAccount()
	dish := store.seed(acct.ProfileID, "Charquicán")
	ordered := store.seed(acct.ProfileID, "Cazuela")
	store.ordered[ordered.ID] = true

	rr := doRequest(t, router, http.MethodDelete, "/proveedor/platos/"+dish.ID.String(), nil, &acct)
	expectStatus(t, rr, http.StatusNoContent)
	if _, ok := store.dishes[dish.ID]; ok {
		t.Error("dish should be deleted")
	}

	rr = doRequest(t, router, http.MethodDelete, "/proveedor/platos/"+ordered.ID.String(), nil, &acct)
	expectStatus(t, rr, http.StatusConflict)
	expectError(t, rr, "dish has orders and cannot be deleted")
}

