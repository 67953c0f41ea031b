package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, customer_id, dish_id, quantity, status, confirmed, delivery_address, created_at`

const orderLineSelect = `
SELECT o.id, o.customer_id, o.dish_id, o.quantity, o.status, o.confirmed, o.delivery_address, o.created_at,
       d.name, d.price, d.supplier_id, s.company_name, u.username
`

const orderLineJoins = `
JOIN dishes d ON d.id = o.dish_id
JOIN suppliers s ON s.id = d.supplier_id
JOIN customers c ON c.id = o.customer_id
JOIN users u ON u.id = c.user_id
`

func scanOrder(row interface{ Scan(...any) error }) (Order, error) {
	var i Order
	err := row.Scan(
		&i.ID,
		&i.CustomerID,
		&i.DishID,
		&i.Quantity,
		&i.Status,
		&i.Confirmed,
		&i.DeliveryAddress,
		&i.CreatedAt,
	)
	return i, err
}

func scanOrderLine(row interface{ Scan(...any) error }) (OrderLine, error) {
	var i OrderLine
	err := row.Scan(
		&i.ID,
		&i.CustomerID,
		&i.DishID,
		&i.Quantity,
		&i.Status,
		&i.Confirmed,
		&i.DeliveryAddress,
		&i.CreatedAt,
		&i.DishName,
		&i.DishPrice,
		&i.SupplierID,
		&i.SupplierName,
		&i.CustomerUsername,
	)
	return i, err
}

func collectOrderLines(rows pgx.Rows) ([]OrderLine, error) {
	defer rows.Close()
	items := []OrderLine{}
	for rows.Next() {
		i, err := scanOrderLine(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createOrder = `
INSERT INTO orders (customer_id, dish_id, quantity, delivery_address)
VALUES ($1, $2, $3, $4)
RETURNING ` + orderColumns

type CreateOrderParams struct {
	CustomerID      uuid.UUID
	DishID          uuid.UUID
	Quantity        int32
	DeliveryAddress string
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, createOrder,
		arg.CustomerID,
		arg.DishID,
		arg.Quantity,
		arg.DeliveryAddress,
	)
	return scanOrder(row)
}

const listCartLines = orderLineSelect + `FROM orders o` + orderLineJoins + `
WHERE o.customer_id = $1 AND o.confirmed = false
ORDER BY o.created_at
`

func (q *Queries) ListCartLines(ctx context.Context, customerID uuid.UUID) ([]OrderLine, error) {
	rows, err := q.db.Query(ctx, listCartLines, customerID)
	if err != nil {
		return nil, err
	}
	return collectOrderLines(rows)
}

// ConfirmCart flips every cart line of the customer and returns them joined.
const confirmCart = `
WITH o AS (
    UPDATE orders
    SET confirmed = true, status = 'pendiente'
    WHERE customer_id = $1 AND confirmed = false
    RETURNING ` + orderColumns + `
)` + orderLineSelect + `FROM o` + orderLineJoins + `
ORDER BY o.created_at
`

func (q *Queries) ConfirmCart(ctx context.Context, customerID uuid.UUID) ([]OrderLine, error) {
	rows, err := q.db.Query(ctx, confirmCart, customerID)
	if err != nil {
		return nil, err
	}
	return collectOrderLines(rows)
}

const updateCartLine = `
UPDATE orders
SET quantity = $3, delivery_address = $4
WHERE id = $1 AND customer_id = $2 AND confirmed = false
RETURNING ` + orderColumns

type UpdateCartLineParams struct {
	ID              uuid.UUID
	CustomerID      uuid.UUID
	Quantity        int32
	DeliveryAddress string
}

func (q *Queries) UpdateCartLine(ctx context.Context, arg UpdateCartLineParams) (Order, error) {
	row := q.db.QueryRow(ctx, updateCartLine,
		arg.ID,
		arg.CustomerID,
		arg.Quantity,
		arg.DeliveryAddress,
	)
	return scanOrder(row)
}

const deleteCartLine = `
DELETE FROM orders
WHERE id = $1 AND customer_id = $2 AND confirmed = false
RETURNING id
`

type DeleteCartLineParams struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
}

func (q *Queries) DeleteCartLine(ctx context.Context, arg DeleteCartLineParams) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, deleteCartLine, arg.ID, arg.CustomerID)
	var id uuid.UUID
	err := row.Scan(&id)
	return id, err
}

const getOrderLine = orderLineSelect + `FROM orders o` + orderLineJoins + `WHERE o.id = $1`

func (q *Queries) GetOrderLine(ctx context.Context, id uuid.UUID) (OrderLine, error) {
	return scanOrderLine(q.db.QueryRow(ctx, getOrderLine, id))
}

const getCustomerOrder = orderLineSelect + `FROM orders o` + orderLineJoins + `
WHERE o.id = $1 AND o.customer_id = $2
`

type GetCustomerOrderParams struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
}

func (q *Queries) GetCustomerOrder(ctx context.Context, arg GetCustomerOrderParams) (OrderLine, error) {
	return scanOrderLine(q.db.QueryRow(ctx, getCustomerOrder, arg.ID, arg.CustomerID))
}

const listActiveCustomerOrders = orderLineSelect + `FROM orders o` + orderLineJoins + `
WHERE o.customer_id = $1 AND o.confirmed = true AND o.status <> $2
ORDER BY o.created_at DESC
`

type ListActiveCustomerOrdersParams struct {
	CustomerID    uuid.UUID
	ExcludeStatus string
}

func (q *Queries) ListActiveCustomerOrders(ctx context.Context, arg ListActiveCustomerOrdersParams) ([]OrderLine, error) {
	rows, err := q.db.Query(ctx, listActiveCustomerOrders, arg.CustomerID, arg.ExcludeStatus)
	if err != nil {
		return nil, err
	}
	return collectOrderLines(rows)
}

const listSupplierOrders = orderLineSelect + `FROM orders o` + orderLineJoins + `
WHERE d.supplier_id = $1
ORDER BY o.created_at DESC
`

func (q *Queries) ListSupplierOrders(ctx context.Context, supplierID uuid.UUID) ([]OrderLine, error) {
	rows, err := q.db.Query(ctx, listSupplierOrders, supplierID)
	if err != nil {
		return nil, err
	}
	return collectOrderLines(rows)
}

const listConfirmedCustomerOrders = orderLineSelect + `FROM orders o` + orderLineJoins + `
WHERE o.customer_id = $1 AND o.confirmed = true
ORDER BY o.created_at DESC
`

func (q *Queries) ListConfirmedCustomerOrders(ctx context.Context, customerID uuid.UUID) ([]OrderLine, error) {
	rows, err := q.db.Query(ctx, listConfirmedCustomerOrders, customerID)
	if err != nil {
		return nil, err
	}
	return collectOrderLines(rows)
}

const listConfirmedSupplierOrders = orderLineSelect + `FROM orders o` + orderLineJoins + `
WHERE d.supplier_id = $1 AND o.confirmed = true
ORDER BY o.created_at DESC
`

func (q *Queries) ListConfirmedSupplierOrders(ctx context.Context, supplierID uuid.UUID) ([]OrderLine, error) {
	rows, err := q.db.Query(ctx, listConfirmedSupplierOrders, supplierID)
	if err != nil {
		return nil, err
	}
	return collectOrderLines(rows)
}

const listRecentConfirmedOrders = orderLineSelect + `FROM orders o` + orderLineJoins + `
WHERE o.confirmed = true
ORDER BY o.created_at DESC
LIMIT $1
`

func (q *Queries) ListRecentConfirmedOrders(ctx context.Context, limit int32) ([]OrderLine, error) {
	rows, err := q.db.Query(ctx, listRecentConfirmedOrders, limit)
	if err != nil {
		return nil, err
	}
	return collectOrderLines(rows)
}

// UpdateOrderStatus only applies when the row still holds PrevStatus.
// Confirm is OR-ed into the confirmed flag, it never clears it.
const updateOrderStatus = `
UPDATE orders
SET status = $2, confirmed = confirmed OR $4
WHERE id = $1 AND status = $3
RETURNING ` + orderColumns

type UpdateOrderStatusParams struct {
	ID         uuid.UUID
	Status     string
	PrevStatus string
	Confirm    bool
}

func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	row := q.db.QueryRow(ctx, updateOrderStatus,
		arg.ID,
		arg.Status,
		arg.PrevStatus,
		arg.Confirm,
	)
	return scanOrder(row)
}

const adminOrderFilter = `
WHERE ($1::text IS NULL OR o.status = $1)
  AND ($2::uuid IS NULL OR d.supplier_id = $2)
  AND ($3::text IS NULL OR u.username ILIKE '%' || $3 || '%')
  AND ($4::date IS NULL OR (o.created_at AT TIME ZONE $6::text)::date >= $4)
  AND ($5::date IS NULL OR (o.created_at AT TIME ZONE $6::text)::date <= $5)
`

// AdminOrderFilter holds the optional filters of the admin order list.
// Unset (invalid) fields do not restrict the result.
type AdminOrderFilter struct {
	Status           pgtype.Text
	SupplierID       pgtype.UUID
	CustomerUsername pgtype.Text
	DateFrom         pgtype.Date
	DateTo           pgtype.Date
	TimeZone         string
}

const listAdminOrders = orderLineSelect + `FROM orders o` + orderLineJoins + adminOrderFilter + `
ORDER BY o.created_at DESC
LIMIT $7 OFFSET $8
`

type ListAdminOrdersParams struct {
	AdminOrderFilter
	Limit  int32
	Offset int32
}

func (q *Queries) ListAdminOrders(ctx context.Context, arg ListAdminOrdersParams) ([]OrderLine, error) {
	rows, err := q.db.Query(ctx, listAdminOrders,
		arg.Status,
		arg.SupplierID,
		arg.CustomerUsername,
		arg.DateFrom,
		arg.DateTo,
		arg.TimeZone,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	return collectOrderLines(rows)
}

const countAdminOrders = `SELECT COUNT(*) FROM orders o` + orderLineJoins + adminOrderFilter

func (q *Queries) CountAdminOrders(ctx context.Context, arg AdminOrderFilter) (int64, error) {
	row := q.db.QueryRow(ctx, countAdminOrders,
		arg.Status,
		arg.SupplierID,
		arg.CustomerUsername,
		arg.DateFrom,
		arg.DateTo,
		arg.TimeZone,
	)
	var count int64
	err := row.Scan(&count)
	return count, err
}
