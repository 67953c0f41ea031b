package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/cristijna/SaboresGo/internal/auth"
	"github.com/cristijna/SaboresGo/internal/database"
	"github.com/cristijna/SaboresGo/internal/middleware"
	"github.com/cristijna/SaboresGo/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeInternal(w http.ResponseWriter, what string, err error) {
	log.Printf("ERROR: %s: %v", what, err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func numericToString(n pgtype.Numeric) string {
	return service.NumericToDecimal(n).StringFixed(2)
}

func decimalToString(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}

// parseIDParam reads a UUID URL parameter, writing 400 on failure.
func parseIDParam(w http.ResponseWriter, r *http.Request, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+label+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// requireAccount returns the authenticated account, writing 401 when absent.
func requireAccount(w http.ResponseWriter, r *http.Request) (auth.Account, bool) {
	acct, ok := middleware.AccountFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return auth.Account{}, false
	}
	return acct, true
}

// requireCustomer returns the customer id of the authenticated account.
func requireCustomer(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	acct, ok := requireAccount(w, r)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := acct.Customer()
	if !ok {
		writeError(w, http.StatusForbidden, "customer account required")
		return uuid.Nil, false
	}
	return id, true
}

// requireSupplier returns the supplier id of the authenticated account.
func requireSupplier(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	acct, ok := requireAccount(w, r)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := acct.Supplier()
	if !ok {
		writeError(w, http.StatusForbidden, "supplier account required")
		return uuid.Nil, false
	}
	return id, true
}

// --- Shared order response ---

type orderLineResponse struct {
	ID               uuid.UUID `json:"id"`
	DishID           uuid.UUID `json:"dish_id"`
	DishName         string    `json:"dish_name"`
	DishPrice        string    `json:"dish_price"`
	SupplierID       uuid.UUID `json:"supplier_id"`
	SupplierName     string    `json:"supplier_name"`
	CustomerID       uuid.UUID `json:"customer_id"`
	CustomerUsername string    `json:"customer_username"`
	Quantity         int32     `json:"quantity"`
	Subtotal         string    `json:"subtotal"`
	Status           string    `json:"status"`
	Confirmed        bool      `json:"confirmed"`
	DeliveryAddress  string    `json:"delivery_address"`
	CreatedAt        time.Time `json:"created_at"`
}

func toOrderLineResponse(l database.OrderLine) orderLineResponse {
	price := service.NumericToDecimal(l.DishPrice)
	return orderLineResponse{
		ID:               l.ID,
		DishID:           l.DishID,
		DishName:         l.DishName,
		DishPrice:        price.StringFixed(2),
		SupplierID:       l.SupplierID,
		SupplierName:     l.SupplierName,
		CustomerID:       l.CustomerID,
		CustomerUsername: l.CustomerUsername,
		Quantity:         l.Quantity,
		Subtotal:         price.Mul(decimal.NewFromInt32(l.Quantity)).StringFixed(2),
		Status:           l.Status,
		Confirmed:        l.Confirmed,
		DeliveryAddress:  l.DeliveryAddress,
		CreatedAt:        l.CreatedAt,
	}
}

func toOrderLineResponses(lines []database.OrderLine) []orderLineResponse {
	resp := make([]orderLineResponse, len(lines))
	for i, l := range lines {
		resp[i] = toOrderLineResponse(l)
	}
	return resp
}

func optionalText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}
