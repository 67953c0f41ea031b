package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/cristijna/SaboresGo/internal/auth"
	"github.com/cristijna/SaboresGo/internal/database"
	"github.com/cristijna/SaboresGo/internal/enum"
	"github.com/cristijna/SaboresGo/internal/handler"
	"github.com/cristijna/SaboresGo/internal/middleware"
	"github.com/cristijna/SaboresGo/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// --- Mock WeeklyMenuServicer ---

type mockWeeklyMenuService struct {
	weekFn    func(ctx context.Context, acct auth.Account) (*service.Week, error)
	optionsFn func(ctx context.Context, acct auth.Account, weekday string) (*service.SlotOptions, error)
	assignFn  func(ctx context.Context, acct auth.Account, weekday string, dishID uuid.UUID) (*service.Week, error)
	payFn     func(ctx context.Context, acct auth.Account) (*service.PayResult, error)
}

func (m *mockWeeklyMenuService) Week(ctx context.Context, acct auth.Account) (*service.Week, error) {
	return m.weekFn(ctx, acct)
}

func (m *mockWeeklyMenuService) SlotOptions(ctx context.Context, acct auth.Account, weekday string) (*service.SlotOptions, error) {
	return m.optionsFn(ctx, acct, weekday)
}

func (m *mockWeeklyMenuService) AssignDish(ctx context.Context, acct auth.Account, weekday string, dishID uuid.UUID) (*service.Week, error) {
	return m.assignFn(ctx, acct, weekday, dishID)
}

func (m *mockWeeklyMenuService) Pay(ctx context.Context, acct auth.Account) (*service.PayResult, error) {
	return m.payFn(ctx, acct)
}

func setupWeeklyMenuRouter(svc *mockWeeklyMenuService) *chi.Mux {
	h := handler.NewWeeklyMenuHandler(svc)
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testJWTSecret))
	r.Route("/menu-semanal", h.RegisterRoutes)
	return r
}

func sampleWeek(dishID uuid.UUID) *service.Week {
	menu := database.WeeklyMenu{ID: uuid.New(), Total: numeric("13000")}
	items := []database.ListWeeklyMenuItemsRow{{
		WeeklyMenuItem: database.WeeklyMenuItem{
			ID:       uuid.New(),
			MenuID:   menu.ID,
			Weekday:  enum.WeekdayWednesday,
			DishID:   pgtype.UUID{Bytes: dishID, Valid: true},
			Quantity: 2,
		},
		DishName:  pgtype.Text{String: "Cazuela", Valid: true},
		DishPrice: numeric("6500"),
	}}
	return service.BuildWeek(menu, items)
}

// --- Tests ---

func TestWeeklyMenu_Week(t *testing.T) {
	dishID := uuid.New()
	router := setupWeeklyMenuRouter(&mockWeeklyMenuService{
		weekFn: func(ctx context.Context, acct auth.Account) (*service.Week, error) {
			return sampleWeek(dishID), nil
		},
	})
	acct := customerAccount()

	rr := doRequest(t, router, http.MethodGet, "/menu-semanal", nil, &acct)
	expectStatus(t, rr, http.StatusOK)

	resp := decodeResponse(t, rr)
	if resp["total"] != "13000.00" || resp["paid"] != false {
		t.Errorf("unexpected menu %v", resp)
	}
	slots := resp["slots"].([]interface{})
	if len(slots) != 7 {
		t.Fatalf("expected 7 slots, got %d", len(slots))
	}
	monday := slots[0].(map[string]interface{})
	if monday["weekday"] != enum.WeekdayMonday || monday["item"] != nil {
		t.Errorf("expected empty monday, got %v", monday)
	}
	wednesday := slots[2].(map[string]interface{})
	item := wednesday["item"].(map[string]interface{})
	if item["dish_id"] != dishID.String() || item["dish_name"] != "Cazuela" || item["quantity"] != float64(2) {
		t.Errorf("unexpected wednesday item %v", item)
	}
}

func TestWeeklyMenu_AccessErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"supplier", service.ErrSupplierExcluded, http.StatusForbidden},
		{"admin", service.ErrNotCustomer, http.StatusForbidden},
		{"no agreement", service.ErrNoAgreement, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupWeeklyMenuRouter(&mockWeeklyMenuService{
				weekFn: func(ctx context.Context, acct auth.Account) (*service.Week, error) {
					return nil, tt.err
				},
			})
			acct := customerAccount()

			rr := doRequest(t, router, http.MethodGet, "/menu-semanal", nil, &acct)
			expectStatus(t, rr, tt.status)
			expectError(t, rr, tt.err.Error())
		})
	}
}

func TestWeeklyMenu_SlotOptions(t *testing.T) {
	var gotDay string
	router := setupWeeklyMenuRouter(&mockWeeklyMenuService{
		optionsFn: func(ctx context.Context, acct auth.Account, weekday string) (*service.SlotOptions, error) {
			gotDay = weekday
			if weekday == "feriado" {
				return nil, service.ErrInvalidWeekday
			}
			week := sampleWeek(uuid.New())
			return &service.SlotOptions{
				Menu:   week.Menu,
				Slot:   week.Slots[0],
				Dishes: []database.Dish{{ID: uuid.New(), Name: "Humitas", Price: numeric("3000")}},
			}, nil
		},
	})
	acct := customerAccount()

	rr := doRequest(t, router, http.MethodGet, "/menu-semanal/select/lunes", nil, &acct)
	expectStatus(t, rr, http.StatusOK)
	if gotDay != enum.WeekdayMonday {
		t.Errorf("expected weekday lunes, got %q", gotDay)
	}
	resp := decodeResponse(t, rr)
	dishes := resp["dishes"].([]interface{})
	if len(dishes) != 1 || dishes[0].(map[string]interface{})["name"] != "Humitas" {
		t.Errorf("unexpected dishes %v", dishes)
	}
	if slot := resp["slot"].(map[string]interface{}); slot["label"] != "Lunes" {
		t.Errorf("unexpected slot %v", slot)
	}

	rr = doRequest(t, router, http.MethodGet, "/menu-semanal/select/feriado", nil, &acct)
	expectStatus(t, rr, http.StatusBadRequest)
	expectError(t, rr, "invalid weekday")
}

func TestWeeklyMenu_Assign(t *testing.T) {
	var gotDish uuid.UUID
	router := setupWeeklyMenuRouter(&mockWeeklyMenuService{
		assignFn: func(ctx context.Context, acct auth.Account, weekday string, dishID uuid.UUID) (*service.Week, error) {
			gotDish = dishID
			switch weekday {
			case enum.WeekdaySunday:
				return nil, service.ErrMenuPaid
			case enum.WeekdaySaturday:
				return nil, service.ErrDishNotFound
			}
			return sampleWeek(dishID), nil
		},
	})
	acct := customerAccount()
	want := uuid.New()

	rr := doRequest(t, router, http.MethodPost, "/menu-semanal/select/miercoles", map[string]string{"dish_id": want.String()}, &acct)
	expectStatus(t, rr, http.StatusOK)
	if gotDish != want {
		t.Errorf("expected dish %s, got %s", want, gotDish)
	}

	rr = doRequest(t, router, http.MethodPost, "/menu-semanal/select/miercoles", map[string]string{"dish_id": "x"}, &acct)
	expectStatus(t, rr, http.StatusBadRequest)
	expectError(t, rr, "invalid dish_id")

	rr = doRequest(t, router, http.MethodPost, "/menu-semanal/select/domingo", map[string]string{"dish_id": want.String()}, &acct)
	expectStatus(t, rr, http.StatusConflict)
	expectError(t, rr, "weekly menu already paid")

	rr = doRequest(t, router, http.MethodPost, "/menu-semanal/select/sabado", map[string]string{"dish_id": want.String()}, &acct)
	expectStatus(t, rr, http.StatusNotFound)
}

func TestWeeklyMenu_Pay(t *testing.T) {
	var calls int
	router := setupWeeklyMenuRouter(&mockWeeklyMenuService{
		payFn: func(ctx context.Context, acct auth.Account) (*service.PayResult, error) {
			calls++
			if calls > 1 {
				return nil, service.ErrInsufficientBalance
			}
			return &service.PayResult{
				Menu:    database.WeeklyMenu{ID: uuid.New(), Total: numeric("13000"), Paid: true},
				Balance: decimal.RequireFromString("7000"),
			}, nil
		},
	})
	acct := customerAccount()

	rr := doRequest(t, router, http.MethodPost, "/menu-semanal", map[string]bool{}, &acct)
	expectStatus(t, rr, http.StatusBadRequest)
	expectError(t, rr, "pagar must be true")
	if calls != 0 {
		t.Fatal("menu must not be paid without the flag")
	}

	rr = doRequest(t, router, http.MethodPost, "/menu-semanal", map[string]bool{"pagar": true}, &acct)
	expectStatus(t, rr, http.StatusOK)
	resp := decodeResponse(t, rr)
	if resp["paid"] != true || resp["balance"] != "7000.00" || resp["total"] != "13000.00" {
		t.Errorf("unexpected payment %v", resp)
	}

	rr = doRequest(t, router, http.MethodPost, "/menu-semanal", map[string]bool{"pagar": true}, &acct)
	expectStatus(t, rr, http.StatusConflict)
	expectError(t, rr, "insufficient balance")
}
