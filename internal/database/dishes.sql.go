package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const dishColumns = `id, supplier_id, name, description, ingredients, price, image_url, created_at`

func scanDish(row interface{ Scan(...any) error }) (Dish, error) {
	var i Dish
	err := row.Scan(
		&i.ID,
		&i.SupplierID,
		&i.Name,
		&i.Description,
		&i.Ingredients,
		&i.Price,
		&i.ImageUrl,
		&i.CreatedAt,
	)
	return i, err
}

func collectDishes(rows pgx.Rows) ([]Dish, error) {
	defer rows.Close()
	items := []Dish{}
	for rows.Next() {
		i, err := scanDish(rows)
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

const createDish = `
INSERT INTO dishes (supplier_id, name, description, ingredients, price, image_url)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + dishColumns

type CreateDishParams struct {
	SupplierID  uuid.UUID
	Name        string
	Description string
	Ingredients string
	Price       pgtype.Numeric
	ImageUrl    pgtype.Text
}

func (q *Queries) CreateDish(ctx context.Context, arg CreateDishParams) (Dish, error) {
	row := q.db.QueryRow(ctx, createDish,
		arg.SupplierID,
		arg.Name,
		arg.Description,
		arg.Ingredients,
		arg.Price,
		arg.ImageUrl,
	)
	return scanDish(row)
}

const getDish = `SELECT ` + dishColumns + ` FROM dishes WHERE id = $1`

func (q *Queries) GetDish(ctx context.Context, id uuid.UUID) (Dish, error) {
	return scanDish(q.db.QueryRow(ctx, getDish, id))
}

const getSupplierDish = `SELECT ` + dishColumns + ` FROM dishes WHERE id = $1 AND supplier_id = $2`

type GetSupplierDishParams struct {
	ID         uuid.UUID
	SupplierID uuid.UUID
}

func (q *Queries) GetSupplierDish(ctx context.Context, arg GetSupplierDishParams) (Dish, error) {
	return scanDish(q.db.QueryRow(ctx, getSupplierDish, arg.ID, arg.SupplierID))
}

const listDishes = `SELECT ` + dishColumns + ` FROM dishes ORDER BY name`

func (q *Queries) ListDishes(ctx context.Context) ([]Dish, error) {
	rows, err := q.db.Query(ctx, listDishes)
	if err != nil {
		return nil, err
	}
	return collectDishes(rows)
}

const listDishesBySupplier = `
SELECT ` + dishColumns + ` FROM dishes
WHERE supplier_id = $1
ORDER BY created_at DESC
`

func (q *Queries) ListDishesBySupplier(ctx context.Context, supplierID uuid.UUID) ([]Dish, error) {
	rows, err := q.db.Query(ctx, listDishesBySupplier, supplierID)
	if err != nil {
		return nil, err
	}
	return collectDishes(rows)
}

const listApprovedDishes = `
SELECT d.id, d.supplier_id, d.name, d.description, d.ingredients, d.price, d.image_url, d.created_at
FROM dishes d
JOIN suppliers s ON s.id = d.supplier_id
WHERE s.approved = true
ORDER BY d.name
`

func (q *Queries) ListApprovedDishes(ctx context.Context) ([]Dish, error) {
	rows, err := q.db.Query(ctx, listApprovedDishes)
	if err != nil {
		return nil, err
	}
	return collectDishes(rows)
}

const getDishWithSupplier = `
SELECT d.id, d.supplier_id, d.name, d.description, d.ingredients, d.price, d.image_url, d.created_at,
       s.company_name, s.approved
FROM dishes d
JOIN suppliers s ON s.id = d.supplier_id
WHERE d.id = $1
`

type GetDishWithSupplierRow struct {
	Dish
	SupplierName     string
	SupplierApproved bool
}

func (q *Queries) GetDishWithSupplier(ctx context.Context, id uuid.UUID) (GetDishWithSupplierRow, error) {
	row := q.db.QueryRow(ctx, getDishWithSupplier, id)
	var i GetDishWithSupplierRow
	err := row.Scan(
		&i.ID,
		&i.SupplierID,
		&i.Name,
		&i.Description,
		&i.Ingredients,
		&i.Price,
		&i.ImageUrl,
		&i.CreatedAt,
		&i.SupplierName,
		&i.SupplierApproved,
	)
	return i, err
}

const updateDish = `
UPDATE dishes
SET name = $3, description = $4, ingredients = $5, price = $6, image_url = $7
WHERE id = $1 AND supplier_id = $2
RETURNING ` + dishColumns

type UpdateDishParams struct {
	ID          uuid.UUID
	SupplierID  uuid.UUID
	Name        string
	Description string
	Ingredients string
	Price       pgtype.Numeric
	ImageUrl    pgtype.Text
}

func (q *Queries) UpdateDish(ctx context.Context, arg UpdateDishParams) (Dish, error) {
	row := q.db.QueryRow(ctx, updateDish,
		arg.ID,
		arg.SupplierID,
		arg.Name,
		arg.Description,
		arg.Ingredients,
		arg.Price,
		arg.ImageUrl,
	)
	return scanDish(row)
}

const deleteDish = `DELETE FROM dishes WHERE id = $1 AND supplier_id = $2 RETURNING id`

type DeleteDishParams struct {
	ID         uuid.UUID
	SupplierID uuid.UUID
}

func (q *Queries) DeleteDish(ctx context.Context, arg DeleteDishParams) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, deleteDish, arg.ID, arg.SupplierID)
	var id uuid.UUID
	err := row.Scan(&id)
	return id, err
}
