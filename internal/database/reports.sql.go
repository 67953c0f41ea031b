package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const countConfirmedOrdersByStatus = `
SELECT status, COUNT(*) FROM orders
WHERE confirmed = true
GROUP BY status
`

type CountConfirmedOrdersByStatusRow struct {
	Status string
	Count  int64
}

func (q *Queries) CountConfirmedOrdersByStatus(ctx context.Context) ([]CountConfirmedOrdersByStatusRow, error) {
	rows, err := q.db.Query(ctx, countConfirmedOrdersByStatus)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []CountConfirmedOrdersByStatusRow{}
	for rows.Next() {
		var i CountConfirmedOrdersByStatusRow
		if err := rows.Scan(&i.Status, &i.Count); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countCustomersWithOrders = `
SELECT COUNT(DISTINCT customer_id) FROM orders WHERE confirmed = true
`

func (q *Queries) CountCustomersWithOrders(ctx context.Context) (int64, error) {
	row := q.db.QueryRow(ctx, countCustomersWithOrders)
	var count int64
	err := row.Scan(&count)
	return count, err
}

// Day boundaries are taken in TimeZone.
const getRevenueSummary = `
SELECT
    COALESCE(SUM(d.price * o.quantity), 0)::numeric AS total,
    COALESCE(SUM(d.price * o.quantity) FILTER (
        WHERE (o.created_at AT TIME ZONE $1::text)::date = $2::date
    ), 0)::numeric AS today,
    COALESCE(SUM(d.price * o.quantity) FILTER (
        WHERE (o.created_at AT TIME ZONE $1::text)::date BETWEEN $3::date AND $2::date
    ), 0)::numeric AS month
FROM orders o
JOIN dishes d ON d.id = o.dish_id
WHERE o.confirmed = true
`

type GetRevenueSummaryParams struct {
	TimeZone   string
	Today      pgtype.Date
	MonthStart pgtype.Date
}

type GetRevenueSummaryRow struct {
	Total pgtype.Numeric
	Today pgtype.Numeric
	Month pgtype.Numeric
}

func (q *Queries) GetRevenueSummary(ctx context.Context, arg GetRevenueSummaryParams) (GetRevenueSummaryRow, error) {
	row := q.db.QueryRow(ctx, getRevenueSummary, arg.TimeZone, arg.Today, arg.MonthStart)
	var i GetRevenueSummaryRow
	err := row.Scan(&i.Total, &i.Today, &i.Month)
	return i, err
}

const getDailyRevenue = `
SELECT (o.created_at AT TIME ZONE $1::text)::date AS day,
       SUM(d.price * o.quantity)::numeric AS total
FROM orders o
JOIN dishes d ON d.id = o.dish_id
WHERE o.confirmed = true
  AND (o.created_at AT TIME ZONE $1::text)::date BETWEEN $2::date AND $3::date
GROUP BY day
ORDER BY day
`

type GetDailyRevenueParams struct {
	TimeZone string
	FromDate pgtype.Date
	ToDate   pgtype.Date
}

type GetDailyRevenueRow struct {
	Day   pgtype.Date
	Total pgtype.Numeric
}

func (q *Queries) GetDailyRevenue(ctx context.Context, arg GetDailyRevenueParams) ([]GetDailyRevenueRow, error) {
	rows, err := q.db.Query(ctx, getDailyRevenue, arg.TimeZone, arg.FromDate, arg.ToDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []GetDailyRevenueRow{}
	for rows.Next() {
		var i GetDailyRevenueRow
		if err := rows.Scan(&i.Day, &i.Total); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getTopDishes = `
SELECT d.id, d.name, SUM(o.quantity)::bigint AS quantity
FROM orders o
JOIN dishes d ON d.id = o.dish_id
WHERE o.confirmed = true
GROUP BY d.id, d.name
ORDER BY quantity DESC
LIMIT $1
`

type GetTopDishesRow struct {
	DishID   uuid.UUID
	DishName string
	Quantity int64
}

func (q *Queries) GetTopDishes(ctx context.Context, limit int32) ([]GetTopDishesRow, error) {
	rows, err := q.db.Query(ctx, getTopDishes, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []GetTopDishesRow{}
	for rows.Next() {
		var i GetTopDishesRow
		if err := rows.Scan(&i.DishID, &i.DishName, &i.Quantity); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listCustomerSummaries = `
SELECT c.id, u.username, u.email, c.address, c.balance, a.name AS agreement_name,
       COUNT(o.id) AS order_count,
       COALESCE(SUM(d.price * o.quantity), 0)::numeric AS total_spent,
       MAX(o.created_at) AS last_order_at
FROM customers c
JOIN users u ON u.id = c.user_id
LEFT JOIN company_agreements a ON a.id = c.agreement_id
LEFT JOIN orders o ON o.customer_id = c.id AND o.confirmed = true
LEFT JOIN dishes d ON d.id = o.dish_id
GROUP BY c.id, u.id, a.id
ORDER BY u.username
`

type ListCustomerSummariesRow struct {
	CustomerID    uuid.UUID
	Username      string
	Email         string
	Address       string
	Balance       pgtype.Numeric
	AgreementName pgtype.Text
	OrderCount    int64
	TotalSpent    pgtype.Numeric
	LastOrderAt   pgtype.Timestamptz
}

func (q *Queries) ListCustomerSummaries(ctx context.Context) ([]ListCustomerSummariesRow, error) {
	rows, err := q.db.Query(ctx, listCustomerSummaries)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ListCustomerSummariesRow{}
	for rows.Next() {
		var i ListCustomerSummariesRow
		if err := rows.Scan(
			&i.CustomerID,
			&i.Username,
			&i.Email,
			&i.Address,
			&i.Balance,
			&i.AgreementName,
			&i.OrderCount,
			&i.TotalSpent,
			&i.LastOrderAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listSupplierSummaries = `
SELECT s.id, s.company_name, u.username, s.approved,
       (SELECT COUNT(*) FROM dishes dd WHERE dd.supplier_id = s.id) AS dish_count,
       COUNT(o.id) AS order_count,
       COALESCE(SUM(d.price * o.quantity), 0)::numeric AS revenue
FROM suppliers s
JOIN users u ON u.id = s.user_id
LEFT JOIN dishes d ON d.supplier_id = s.id
LEFT JOIN orders o ON o.dish_id = d.id AND o.confirmed = true
GROUP BY s.id, u.id
ORDER BY s.company_name
`

type ListSupplierSummariesRow struct {
	SupplierID  uuid.UUID
	CompanyName string
	Username    string
	Approved    bool
	DishCount   int64
	OrderCount  int64
	Revenue     pgtype.Numeric
}

func (q *Queries) ListSupplierSummaries(ctx context.Context) ([]ListSupplierSummariesRow, error) {
	rows, err := q.db.Query(ctx, listSupplierSummaries)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ListSupplierSummariesRow{}
	for rows.Next() {
		var i ListSupplierSummariesRow
		if err := rows.Scan(
			&i.SupplierID,
			&i.CompanyName,
			&i.Username,
			&i.Approved,
			&i.DishCount,
			&i.OrderCount,
			&i.Revenue,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
