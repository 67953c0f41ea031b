package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cristijna/SaboresGo/internal/database"
	"github.com/cristijna/SaboresGo/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ReportsServicer defines the service methods needed by the admin panel.
// Satisfied by *service.ReportsService; narrow interface for testability.
type ReportsServicer interface {
	Dashboard(ctx context.Context) (*service.Dashboard, error)
	CustomerSummaries(ctx context.Context) ([]service.CustomerSummary, error)
	CustomerDetail(ctx context.Context, id uuid.UUID) (*service.CustomerDetail, error)
	SupplierSummaries(ctx context.Context) ([]service.SupplierSummary, error)
	SupplierDetail(ctx context.Context, id uuid.UUID) (*service.SupplierDetail, error)
	ListOrders(ctx context.Context, f service.OrderFilter) (*service.OrderPage, error)
}

// SupplierApprovalStore defines the database methods needed to approve suppliers.
// Satisfied by *database.Queries; narrow interface for testability.
type SupplierApprovalStore interface {
	SetSupplierApproval(ctx context.Context, arg database.SetSupplierApprovalParams) (database.Supplier, error)
}

// AdminHandler serves the administrator panel.
type AdminHandler struct {
	reports   ReportsServicer
	suppliers SupplierApprovalStore
	status    StatusAdvancer
}

func NewAdminHandler(reports ReportsServicer, suppliers SupplierApprovalStore, status StatusAdvancer) *AdminHandler {
	return &AdminHandler{reports: reports, suppliers: suppliers, status: status}
}

// RegisterRoutes registers endpoints under /admin. Expected to be mounted
// behind the ADMIN role check.
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Dashboard)
	r.Post("/proveedores/{id}/aprobar", h.ApproveSupplier)
	r.Post("/proveedores/{id}/rechazar", h.RejectSupplier)
	r.Get("/pedidos", h.ListOrders)
	r.Patch("/pedidos/{id}/estado", h.UpdateOrderStatus)
	r.Get("/clientes", h.ListCustomers)
	r.Get("/clientes/{id}", h.GetCustomer)
	r.Get("/proveedores", h.ListSuppliers)
	r.Get("/proveedores/{id}", h.GetSupplier)
}

// --- Response types ---

type statusCountResponse struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type dailyRevenueResponse struct {
	Date  string `json:"date"`
	Label string `json:"label"`
	Total string `json:"total"`
}

type topDishResponse struct {
	DishID   uuid.UUID `json:"dish_id"`
	Name     string    `json:"name"`
	Quantity int64     `json:"quantity"`
}

type dashboardResponse struct {
	TotalOrders       int64                  `json:"total_orders"`
	OrdersByStatus    []statusCountResponse  `json:"orders_by_status"`
	TotalSuppliers    int64                  `json:"total_suppliers"`
	ApprovedSuppliers int64                  `json:"approved_suppliers"`
	PendingSuppliers  int64                  `json:"pending_suppliers"`
	TotalCustomers    int64                  `json:"total_customers"`
	RevenueTotal      string                 `json:"revenue_total"`
	RevenueToday      string                 `json:"revenue_today"`
	RevenueMonth      string                 `json:"revenue_month"`
	LastSevenDays     []dailyRevenueResponse `json:"last_seven_days"`
	TopDishes         []topDishResponse      `json:"top_dishes"`
	RecentOrders      []orderLineResponse    `json:"recent_orders"`
}

type customerSummaryResponse struct {
	ID          uuid.UUID  `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	Address     string     `json:"address"`
	Agreement   *string    `json:"agreement"`
	Balance     string     `json:"balance"`
	OrderCount  int64      `json:"order_count"`
	TotalSpent  string     `json:"total_spent"`
	LastOrderAt *time.Time `json:"last_order_at"`
}

type customerDetailResponse struct {
	customerSummaryResponse
	FirstName string              `json:"first_name"`
	LastName  string              `json:"last_name"`
	Orders    []orderLineResponse `json:"orders"`
	TopDishes []topDishResponse   `json:"top_dishes"`
}

type supplierSummaryResponse struct {
	ID          uuid.UUID `json:"id"`
	CompanyName string    `json:"company_name"`
	Username    string    `json:"username"`
	Approved    bool      `json:"approved"`
	DishCount   int64     `json:"dish_count"`
	OrderCount  int64     `json:"order_count"`
	Revenue     string    `json:"revenue"`
}

type supplierDetailResponse struct {
	supplierResponse
	DishCount  int64               `json:"dish_count"`
	OrderCount int64               `json:"order_count"`
	Revenue    string              `json:"revenue"`
	Orders     []orderLineResponse `json:"orders"`
	TopDishes  []topDishResponse   `json:"top_dishes"`
}

type orderPageResponse struct {
	Orders   []orderLineResponse `json:"orders"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"page_size"`
	Total    int64               `json:"total"`
	Pages    int                 `json:"pages"`
}

func toTopDishResponses(top []service.TopDish) []topDishResponse {
	resp := make([]topDishResponse, len(top))
	for i, d := range top {
		resp[i] = topDishResponse{DishID: d.DishID, Name: d.Name, Quantity: d.Quantity}
	}
	return resp
}

func toCustomerSummaryResponse(c service.CustomerSummary) customerSummaryResponse {
	resp := customerSummaryResponse{
		ID:          c.ID,
		Username:    c.Username,
		Email:       c.Email,
		Address:     c.Address,
		Balance:     decimalToString(c.Balance),
		OrderCount:  c.OrderCount,
		TotalSpent:  decimalToString(c.TotalSpent),
		LastOrderAt: c.LastOrderAt,
	}
	if c.Agreement != "" {
		a := c.Agreement
		resp.Agreement = &a
	}
	return resp
}

// --- Helpers ---

// parseOrderFilter reads the admin order list query. Dates are calendar days
// (YYYY-MM-DD) in the configured time zone; both ends are inclusive.
func parseOrderFilter(r *http.Request) (service.OrderFilter, error) {
	const layout = "2006-01-02"
	q := r.URL.Query()

	f := service.OrderFilter{
		Status:   q.Get("status"),
		Customer: q.Get("customer"),
		Page:     1,
	}

	if s := q.Get("supplier_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return f, fmt.Errorf("invalid supplier_id")
		}
		f.SupplierID = id
	}

	if s := q.Get("date_from"); s != "" {
		t, err := time.Parse(layout, s)
		if err != nil {
			return f, fmt.Errorf("invalid date_from format: %w", err)
		}
		f.DateFrom = t
	}

	if s := q.Get("date_to"); s != "" {
		t, err := time.Parse(layout, s)
		if err != nil {
			return f, fmt.Errorf("invalid date_to format: %w", err)
		}
		f.DateTo = t
	}

	if !f.DateFrom.IsZero() && !f.DateTo.IsZero() && f.DateFrom.After(f.DateTo) {
		return f, fmt.Errorf("date_from must not be after date_to")
	}

	// Like a paginator's get_page: anything unparsable is the first page.
	if s := q.Get("page"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			f.Page = n
		}
	}
	return f, nil
}

// --- Handlers ---

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.reports.Dashboard(r.Context())
	if err != nil {
		writeInternal(w, "admin dashboard", err)
		return
	}

	byStatus := make([]statusCountResponse, len(d.OrdersByStatus))
	for i, s := range d.OrdersByStatus {
		byStatus[i] = statusCountResponse{Status: s.Status, Count: s.Count}
	}
	days := make([]dailyRevenueResponse, len(d.LastSevenDays))
	for i, day := range d.LastSevenDays {
		days[i] = dailyRevenueResponse{
			Date:  day.Date.Format("2006-01-02"),
			Label: day.Label,
			Total: decimalToString(day.Total),
		}
	}

	writeJSON(w, http.StatusOK, dashboardResponse{
		TotalOrders:       d.TotalOrders,
		OrdersByStatus:    byStatus,
		TotalSuppliers:    d.Suppliers.Total,
		ApprovedSuppliers: d.Suppliers.Approved,
		PendingSuppliers:  d.Suppliers.Pending,
		TotalCustomers:    d.Customers,
		RevenueTotal:      decimalToString(d.Revenue.Total),
		RevenueToday:      decimalToString(d.Revenue.Today),
		RevenueMonth:      decimalToString(d.Revenue.Month),
		LastSevenDays:     days,
		TopDishes:         toTopDishResponses(d.TopDishes),
		RecentOrders:      toOrderLineResponses(d.RecentOrders),
	})
}

func (h *AdminHandler) ApproveSupplier(w http.ResponseWriter, r *http.Request) {
	h.setApproval(w, r, true)
}

func (h *AdminHandler) RejectSupplier(w http.ResponseWriter, r *http.Request) {
	h.setApproval(w, r, false)
}

func (h *AdminHandler) setApproval(w http.ResponseWriter, r *http.Request, approved bool) {
	id, ok := parseIDParam(w, r, "id", "supplier")
	if !ok {
		return
	}

	s, err := h.suppliers.SetSupplierApproval(r.Context(), database.SetSupplierApprovalParams{
		ID:       id,
		Approved: approved,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "supplier not found")
			return
		}
		writeInternal(w, "set supplier approval", err)
		return
	}
	writeJSON(w, http.StatusOK, toSupplierResponse(s))
}

// ListOrders handles GET /admin/pedidos?status=&supplier_id=&customer=&date_from=&date_to=&page=
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	f, err := parseOrderFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.reports.ListOrders(r.Context(), f)
	if err != nil {
		if errors.Is(err, service.ErrInvalidStatus) {
			writeError(w, http.StatusBadRequest, "invalid status")
			return
		}
		writeInternal(w, "list admin orders", err)
		return
	}

	writeJSON(w, http.StatusOK, orderPageResponse{
		Orders:   toOrderLineResponses(page.Orders),
		Page:     page.Page,
		PageSize: page.PageSize,
		Total:    page.Total,
		Pages:    page.Pages,
	})
}

func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	advanceStatus(w, r, h.status)
}

func (h *AdminHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.reports.CustomerSummaries(r.Context())
	if err != nil {
		writeInternal(w, "list customer summaries", err)
		return
	}
	resp := make([]customerSummaryResponse, len(customers))
	for i, c := range customers {
		resp[i] = toCustomerSummaryResponse(c)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AdminHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "customer")
	if !ok {
		return
	}

	c, err := h.reports.CustomerDetail(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrCustomerNotFound) {
			writeError(w, http.StatusNotFound, "customer not found")
			return
		}
		writeInternal(w, "get customer detail", err)
		return
	}

	writeJSON(w, http.StatusOK, customerDetailResponse{
		customerSummaryResponse: toCustomerSummaryResponse(c.CustomerSummary),
		FirstName:               c.FirstName,
		LastName:                c.LastName,
		Orders:                  toOrderLineResponses(c.Orders),
		TopDishes:               toTopDishResponses(c.TopDishes),
	})
}

func (h *AdminHandler) ListSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.reports.SupplierSummaries(r.Context())
	if err != nil {
		writeInternal(w, "list supplier summaries", err)
		return
	}
	resp := make([]supplierSummaryResponse, len(suppliers))
	for i, s := range suppliers {
		resp[i] = supplierSummaryResponse{
			ID:          s.ID,
			CompanyName: s.CompanyName,
			Username:    s.Username,
			Approved:    s.Approved,
			DishCount:   s.DishCount,
			OrderCount:  s.OrderCount,
			Revenue:     decimalToString(s.Revenue),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AdminHandler) GetSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "supplier")
	if !ok {
		return
	}

	s, err := h.reports.SupplierDetail(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrSupplierNotFound) {
			writeError(w, http.StatusNotFound, "supplier not found")
			return
		}
		writeInternal(w, "get supplier detail", err)
		return
	}

	writeJSON(w, http.StatusOK, supplierDetailResponse{
		supplierResponse: toSupplierResponse(s.Supplier),
		DishCount:        s.DishCount,
		OrderCount:       s.OrderCount,
		Revenue:          decimalToString(s.Revenue),
		Orders:           toOrderLineResponses(s.Orders),
		TopDishes:        toTopDishResponses(s.TopDishes),
	})
}
