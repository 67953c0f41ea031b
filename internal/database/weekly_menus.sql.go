package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const weeklyMenuColumns = `id, customer_id, total, paid, created_at`

func scanWeeklyMenu(row interface{ Scan(...any) error }) (WeeklyMenu, error) {
	var i WeeklyMenu
	err := row.Scan(
		&i.ID,
		&i.CustomerID,
		&i.Total,
		&i.Paid,
		&i.CreatedAt,
	)
	return i, err
}

// GetOrCreateWeeklyMenu takes a row lock on the menu when run inside a transaction.
const getOrCreateWeeklyMenu = `
INSERT INTO weekly_menus (customer_id)
VALUES ($1)
ON CONFLICT (customer_id) DO UPDATE SET customer_id = EXCLUDED.customer_id
RETURNING ` + weeklyMenuColumns

func (q *Queries) GetOrCreateWeeklyMenu(ctx context.Context, customerID uuid.UUID) (WeeklyMenu, error) {
	return scanWeeklyMenu(q.db.QueryRow(ctx, getOrCreateWeeklyMenu, customerID))
}

const listWeeklyMenuItems = `
SELECT i.id, i.menu_id, i.weekday, i.dish_id, i.quantity, d.name, d.price
FROM weekly_menu_items i
LEFT JOIN dishes d ON d.id = i.dish_id
WHERE i.menu_id = $1
`

type ListWeeklyMenuItemsRow struct {
	WeeklyMenuItem
	DishName  pgtype.Text
	DishPrice pgtype.Numeric
}

func (q *Queries) ListWeeklyMenuItems(ctx context.Context, menuID uuid.UUID) ([]ListWeeklyMenuItemsRow, error) {
	rows, err := q.db.Query(ctx, listWeeklyMenuItems, menuID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ListWeeklyMenuItemsRow{}
	for rows.Next() {
		var i ListWeeklyMenuItemsRow
		if err := rows.Scan(
			&i.ID,
			&i.MenuID,
			&i.Weekday,
			&i.DishID,
			&i.Quantity,
			&i.DishName,
			&i.DishPrice,
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

const upsertWeeklyMenuItem = `
INSERT INTO weekly_menu_items (menu_id, weekday, dish_id, quantity)
VALUES ($1, $2, $3, 1)
ON CONFLICT (menu_id, weekday) DO UPDATE SET dish_id = EXCLUDED.dish_id, quantity = 1
RETURNING id, menu_id, weekday, dish_id, quantity
`

type UpsertWeeklyMenuItemParams struct {
	MenuID  uuid.UUID
	Weekday string
	DishID  uuid.UUID
}

func (q *Queries) UpsertWeeklyMenuItem(ctx context.Context, arg UpsertWeeklyMenuItemParams) (WeeklyMenuItem, error) {
	row := q.db.QueryRow(ctx, upsertWeeklyMenuItem, arg.MenuID, arg.Weekday, arg.DishID)
	var i WeeklyMenuItem
	err := row.Scan(&i.ID, &i.MenuID, &i.Weekday, &i.DishID, &i.Quantity)
	return i, err
}

const updateWeeklyMenuTotal = `
UPDATE weekly_menus SET total = $2
WHERE id = $1
RETURNING ` + weeklyMenuColumns

type UpdateWeeklyMenuTotalParams struct {
	ID    uuid.UUID
	Total pgtype.Numeric
}

func (q *Queries) UpdateWeeklyMenuTotal(ctx context.Context, arg UpdateWeeklyMenuTotalParams) (WeeklyMenu, error) {
	return scanWeeklyMenu(q.db.QueryRow(ctx, updateWeeklyMenuTotal, arg.ID, arg.Total))
}

const markWeeklyMenuPaid = `
UPDATE weekly_menus SET paid = true
WHERE id = $1 AND paid = false
RETURNING ` + weeklyMenuColumns

func (q *Queries) MarkWeeklyMenuPaid(ctx context.Context, id uuid.UUID) (WeeklyMenu, error) {
	return scanWeeklyMenu(q.db.QueryRow(ctx, markWeeklyMenuPaid, id))
}
