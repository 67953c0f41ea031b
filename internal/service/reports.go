package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/cristijna/SaboresGo/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const (
	topDishLimit       = 5
	recentOrderLimit   = 5
	trailingDays       = 7
	AdminOrdersPerPage = 12
)

var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrSupplierNotFound = errors.New("supplier not found")
)

// ReportsStore defines the database methods needed by the admin reports.
// Satisfied by *database.Queries; narrow interface for testability.
type ReportsStore interface {
	CountConfirmedOrdersByStatus(ctx context.Context) ([]database.CountConfirmedOrdersByStatusRow, error)
	CountSuppliers(ctx context.Context) (database.CountSuppliersRow, error)
	CountCustomersWithOrders(ctx context.Context) (int64, error)
	GetRevenueSummary(ctx context.Context, arg database.GetRevenueSummaryParams) (database.GetRevenueSummaryRow, error)
	GetDailyRevenue(ctx context.Context, arg database.GetDailyRevenueParams) ([]database.GetDailyRevenueRow, error)
	GetTopDishes(ctx context.Context, limit int32) ([]database.GetTopDishesRow, error)
	ListRecentConfirmedOrders(ctx context.Context, limit int32) ([]database.OrderLine, error)
	ListCustomerSummaries(ctx context.Context) ([]database.ListCustomerSummariesRow, error)
	GetCustomerDetail(ctx context.Context, id uuid.UUID) (database.GetCustomerDetailRow, error)
	ListConfirmedCustomerOrders(ctx context.Context, customerID uuid.UUID) ([]database.OrderLine, error)
	ListSupplierSummaries(ctx context.Context) ([]database.ListSupplierSummariesRow, error)
	GetSupplier(ctx context.Context, id uuid.UUID) (database.Supplier, error)
	ListDishesBySupplier(ctx context.Context, supplierID uuid.UUID) ([]database.Dish, error)
	ListConfirmedSupplierOrders(ctx context.Context, supplierID uuid.UUID) ([]database.OrderLine, error)
	ListAdminOrders(ctx context.Context, arg database.ListAdminOrdersParams) ([]database.OrderLine, error)
	CountAdminOrders(ctx context.Context, arg database.AdminOrderFilter) (int64, error)
}

type StatusCount struct {
	Status string
	Count  int64
}

type SupplierCounts struct {
	Total    int64
	Approved int64
	Pending  int64
}

type Revenue struct {
	Total decimal.Decimal
	Today decimal.Decimal
	Month decimal.Decimal
}

type DailyRevenue struct {
	Date  time.Time
	Label string
	Total decimal.Decimal
}

type TopDish struct {
	DishID   uuid.UUID
	Name     string
	Quantity int64
}

type Dashboard struct {
	TotalOrders    int64
	OrdersByStatus []StatusCount
	Suppliers      SupplierCounts
	Customers      int64
	Revenue        Revenue
	LastSevenDays  []DailyRevenue
	TopDishes      []TopDish
	RecentOrders   []database.OrderLine
}

type CustomerSummary struct {
	ID          uuid.UUID
	Username    string
	Email       string
	Address     string
	Agreement   string
	Balance     decimal.Decimal
	OrderCount  int64
	TotalSpent  decimal.Decimal
	LastOrderAt *time.Time
}

type CustomerDetail struct {
	CustomerSummary
	FirstName string
	LastName  string
	Orders    []database.OrderLine
	TopDishes []TopDish
}

type SupplierSummary struct {
	ID          uuid.UUID
	CompanyName string
	Username    string
	Approved    bool
	DishCount   int64
	OrderCount  int64
	Revenue     decimal.Decimal
}

type SupplierDetail struct {
	Supplier   database.Supplier
	DishCount  int64
	OrderCount int64
	Revenue    decimal.Decimal
	Orders     []database.OrderLine
	TopDishes  []TopDish
}

// OrderFilter narrows the admin order list. Zero values do not filter.
type OrderFilter struct {
	Status     string
	SupplierID uuid.UUID
	Customer   string
	DateFrom   time.Time
	DateTo     time.Time
	Page       int
}

type OrderPage struct {
	Orders   []database.OrderLine
	Page     int
	PageSize int
	Total    int64
	Pages    int
}

// ReportsService computes the admin dashboard. Day boundaries are in loc.
type ReportsService struct {
	store ReportsStore
	flow  *Workflow
	loc   *time.Location
	now   func() time.Time
}

func NewReportsService(store ReportsStore, flow *Workflow, loc *time.Location) *ReportsService {
	return &ReportsService{store: store, flow: flow, loc: loc, now: time.Now}
}

// today returns the local calendar date as UTC midnight.
func (s *ReportsService) today() time.Time {
	now := s.now().In(s.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func pgDate(t time.Time) pgtype.Date {
	return pgtype.Date{Time: t, Valid: true}
}

func (s *ReportsService) Dashboard(ctx context.Context) (*Dashboard, error) {
	statusRows, err := s.store.CountConfirmedOrdersByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count orders by status: %w", err)
	}
	suppliers, err := s.store.CountSuppliers(ctx)
	if err != nil {
		return nil, fmt.Errorf("count suppliers: %w", err)
	}
	customers, err := s.store.CountCustomersWithOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}

	today := s.today()
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	from := today.AddDate(0, 0, -(trailingDays - 1))

	revenue, err := s.store.GetRevenueSummary(ctx, database.GetRevenueSummaryParams{
		TimeZone:   s.loc.String(),
		Today:      pgDate(today),
		MonthStart: pgDate(monthStart),
	})
	if err != nil {
		return nil, fmt.Errorf("get revenue summary: %w", err)
	}
	daily, err := s.store.GetDailyRevenue(ctx, database.GetDailyRevenueParams{
		TimeZone: s.loc.String(),
		FromDate: pgDate(from),
		ToDate:   pgDate(today),
	})
	if err != nil {
		return nil, fmt.Errorf("get daily revenue: %w", err)
	}
	top, err := s.store.GetTopDishes(ctx, topDishLimit)
	if err != nil {
		return nil, fmt.Errorf("get top dishes: %w", err)
	}
	recent, err := s.store.ListRecentConfirmedOrders(ctx, recentOrderLimit)
	if err != nil {
		return nil, fmt.Errorf("list recent orders: %w", err)
	}

	byStatus, total := StatusCounts(s.flow.States(), statusRows)
	topDishes := make([]TopDish, len(top))
	for i, row := range top {
		topDishes[i] = TopDish{DishID: row.DishID, Name: row.DishName, Quantity: row.Quantity}
	}

	return &Dashboard{
		TotalOrders:    total,
		OrdersByStatus: byStatus,
		Suppliers: SupplierCounts{
			Total:    suppliers.Total,
			Approved: suppliers.Approved,
			Pending:  suppliers.Pending,
		},
		Customers: customers,
		Revenue: Revenue{
			Total: numericToDecimal(revenue.Total),
			Today: numericToDecimal(revenue.Today),
			Month: numericToDecimal(revenue.Month),
		},
		LastSevenDays: DailySeries(today, daily),
		TopDishes:     topDishes,
		RecentOrders:  recent,
	}, nil
}

// StatusCounts zero-fills the configured statuses in flow order. Statuses found
// in the data but missing from the flow are appended so the total still adds up.
func StatusCounts(flow []string, rows []database.CountConfirmedOrdersByStatusRow) ([]StatusCount, int64) {
	counts := make(map[string]int64, len(rows))
	var total int64
	for _, r := range rows {
		counts[r.Status] += r.Count
		total += r.Count
	}
	out := make([]StatusCount, 0, len(flow))
	seen := make(map[string]bool, len(flow))
	for _, st := range flow {
		out = append(out, StatusCount{Status: st, Count: counts[st]})
		seen[st] = true
	}
	for _, r := range rows {
		if !seen[r.Status] {
			out = append(out, StatusCount{Status: r.Status, Count: counts[r.Status]})
			seen[r.Status] = true
		}
	}
	return out, total
}

// DailySeries returns trailingDays buckets ending at today, oldest first,
// labeled dd/mm. Days without revenue are zero.
func DailySeries(today time.Time, rows []database.GetDailyRevenueRow) []DailyRevenue {
	const key = "2006-01-02"
	totals := make(map[string]decimal.Decimal, len(rows))
	for _, r := range rows {
		if r.Day.Valid {
			totals[r.Day.Time.Format(key)] = numericToDecimal(r.Total)
		}
	}
	series := make([]DailyRevenue, trailingDays)
	for i := 0; i < trailingDays; i++ {
		day := today.AddDate(0, 0, i-(trailingDays-1))
		total, ok := totals[day.Format(key)]
		if !ok {
			total = decimal.Zero
		}
		series[i] = DailyRevenue{Date: day, Label: day.Format("02/01"), Total: total}
	}
	return series
}

// TopDishesFromLines ranks dishes by quantity. Ties keep the order in which
// the dishes first appear in lines.
func TopDishesFromLines(lines []database.OrderLine, n int) []TopDish {
	var ranked []TopDish
	pos := map[uuid.UUID]int{}
	for _, l := range lines {
		i, ok := pos[l.DishID]
		if !ok {
			i = len(ranked)
			pos[l.DishID] = i
			ranked = append(ranked, TopDish{DishID: l.DishID, Name: l.DishName})
		}
		ranked[i].Quantity += int64(l.Quantity)
	}
	sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].Quantity > ranked[b].Quantity })
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	if ranked == nil {
		ranked = []TopDish{}
	}
	return ranked
}

func linesRevenue(lines []database.OrderLine) decimal.Decimal {
	return CartTotal(lines)
}

func (s *ReportsService) CustomerSummaries(ctx context.Context) ([]CustomerSummary, error) {
	rows, err := s.store.ListCustomerSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list customer summaries: %w", err)
	}
	out := make([]CustomerSummary, len(rows))
	for i, r := range rows {
		out[i] = CustomerSummary{
			ID:          r.CustomerID,
			Username:    r.Username,
			Email:       r.Email,
			Address:     r.Address,
			Agreement:   r.AgreementName.String,
			Balance:     numericToDecimal(r.Balance),
			OrderCount:  r.OrderCount,
			TotalSpent:  numericToDecimal(r.TotalSpent),
			LastOrderAt: timestamptzPtr(r.LastOrderAt),
		}
	}
	return out, nil
}

func (s *ReportsService) CustomerDetail(ctx context.Context, id uuid.UUID) (*CustomerDetail, error) {
	c, err := s.store.GetCustomerDetail(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("get customer detail: %w", err)
	}
	orders, err := s.store.ListConfirmedCustomerOrders(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list customer orders: %w", err)
	}

	detail := &CustomerDetail{
		CustomerSummary: CustomerSummary{
			ID:         c.ID,
			Username:   c.Username,
			Email:      c.Email,
			Address:    c.Address,
			Agreement:  c.AgreementName.String,
			Balance:    numericToDecimal(c.Balance),
			OrderCount: int64(len(orders)),
			TotalSpent: linesRevenue(orders),
		},
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Orders:    orders,
		TopDishes: TopDishesFromLines(orders, topDishLimit),
	}
	if len(orders) > 0 {
		last := orders[0].CreatedAt
		detail.LastOrderAt = &last
	}
	return detail, nil
}

func (s *ReportsService) SupplierSummaries(ctx context.Context) ([]SupplierSummary, error) {
	rows, err := s.store.ListSupplierSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list supplier summaries: %w", err)
	}
	out := make([]SupplierSummary, len(rows))
	for i, r := range rows {
		out[i] = SupplierSummary{
			ID:          r.SupplierID,
			CompanyName: r.CompanyName,
			Username:    r.Username,
			Approved:    r.Approved,
			DishCount:   r.DishCount,
			OrderCount:  r.OrderCount,
			Revenue:     numericToDecimal(r.Revenue),
		}
	}
	return out, nil
}

func (s *ReportsService) SupplierDetail(ctx context.Context, id uuid.UUID) (*SupplierDetail, error) {
	supplier, err := s.store.GetSupplier(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSupplierNotFound
		}
		return nil, fmt.Errorf("get supplier: %w", err)
	}
	dishes, err := s.store.ListDishesBySupplier(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list supplier dishes: %w", err)
	}
	orders, err := s.store.ListConfirmedSupplierOrders(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list supplier orders: %w", err)
	}

	return &SupplierDetail{
		Supplier:   supplier,
		DishCount:  int64(len(dishes)),
		OrderCount: int64(len(orders)),
		Revenue:    linesRevenue(orders),
		Orders:     orders,
		TopDishes:  TopDishesFromLines(orders, topDishLimit),
	}, nil
}

// ListOrders pages through all orders, cart lines included, newest first.
func (s *ReportsService) ListOrders(ctx context.Context, f OrderFilter) (*OrderPage, error) {
	filter := database.AdminOrderFilter{TimeZone: s.loc.String()}
	if f.Status != "" {
		if !s.flow.Valid(f.Status) {
			return nil, ErrInvalidStatus
		}
		filter.Status = pgtype.Text{String: f.Status, Valid: true}
	}
	if f.SupplierID != uuid.Nil {
		filter.SupplierID = pgtype.UUID{Bytes: f.SupplierID, Valid: true}
	}
	if f.Customer != "" {
		filter.CustomerUsername = pgtype.Text{String: f.Customer, Valid: true}
	}
	if !f.DateFrom.IsZero() {
		filter.DateFrom = pgDate(f.DateFrom)
	}
	if !f.DateTo.IsZero() {
		filter.DateTo = pgDate(f.DateTo)
	}

	page := f.Page
	if page < 1 {
		page = 1
	}

	total, err := s.store.CountAdminOrders(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count admin orders: %w", err)
	}
	pages := int((total + AdminOrdersPerPage - 1) / AdminOrdersPerPage)
	if pages < 1 {
		pages = 1
	}
	// Past the end means the last page.
	if page > pages {
		page = pages
	}

	orders, err := s.store.ListAdminOrders(ctx, database.ListAdminOrdersParams{
		AdminOrderFilter: filter,
		Limit:            AdminOrdersPerPage,
		Offset:           int32((page - 1) * AdminOrdersPerPage),
	})
	if err != nil {
		return nil, fmt.Errorf("list admin orders: %w", err)
	}

	return &OrderPage{
		Orders:   orders,
		Page:     page,
		PageSize: AdminOrdersPerPage,
		Total:    total,
		Pages:    pages,
	}, nil
}

func timestamptzPtr(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time
	return &t
}
