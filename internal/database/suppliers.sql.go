package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const supplierColumns = `id, user_id, company_name, description, phone, approved, created_at`

func scanSupplier(row interface{ Scan(...any) error }) (Supplier, error) {
	var i Supplier
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.CompanyName,
		&i.Description,
		&i.Phone,
		&i.Approved,
		&i.CreatedAt,
	)
	return i, err
}

func collectSuppliers(rows pgx.Rows) ([]Supplier, error) {
	defer rows.Close()
	items := []Supplier{}
	for rows.Next() {
		i, err := scanSupplier(rows)
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

const createSupplier = `
INSERT INTO suppliers (user_id, company_name, description, phone)
VALUES ($1, $2, $3, $4)
RETURNING ` + supplierColumns

type CreateSupplierParams struct {
	UserID      uuid.UUID
	CompanyName string
	Description pgtype.Text
	Phone       pgtype.Text
}

func (q *Queries) CreateSupplier(ctx context.Context, arg CreateSupplierParams) (Supplier, error) {
	row := q.db.QueryRow(ctx, createSupplier,
		arg.UserID,
		arg.CompanyName,
		arg.Description,
		arg.Phone,
	)
	return scanSupplier(row)
}

const getSupplier = `SELECT ` + supplierColumns + ` FROM suppliers WHERE id = $1`

func (q *Queries) GetSupplier(ctx context.Context, id uuid.UUID) (Supplier, error) {
	return scanSupplier(q.db.QueryRow(ctx, getSupplier, id))
}

const getSupplierByUserID = `SELECT ` + supplierColumns + ` FROM suppliers WHERE user_id = $1`

func (q *Queries) GetSupplierByUserID(ctx context.Context, userID uuid.UUID) (Supplier, error) {
	return scanSupplier(q.db.QueryRow(ctx, getSupplierByUserID, userID))
}

const listApprovedSuppliers = `
SELECT ` + supplierColumns + ` FROM suppliers
WHERE approved = true
ORDER BY company_name
`

func (q *Queries) ListApprovedSuppliers(ctx context.Context) ([]Supplier, error) {
	rows, err := q.db.Query(ctx, listApprovedSuppliers)
	if err != nil {
		return nil, err
	}
	return collectSuppliers(rows)
}

const setSupplierApproval = `
UPDATE suppliers SET approved = $2
WHERE id = $1
RETURNING ` + supplierColumns

type SetSupplierApprovalParams struct {
	ID       uuid.UUID
	Approved bool
}

func (q *Queries) SetSupplierApproval(ctx context.Context, arg SetSupplierApprovalParams) (Supplier, error) {
	return scanSupplier(q.db.QueryRow(ctx, setSupplierApproval, arg.ID, arg.Approved))
}

const countSuppliers = `
SELECT
    COUNT(*)                               AS total,
    COUNT(*) FILTER (WHERE approved)       AS approved,
    COUNT(*) FILTER (WHERE NOT approved)   AS pending
FROM suppliers
`

type CountSuppliersRow struct {
	Total    int64
	Approved int64
	Pending  int64
}

func (q *Queries) CountSuppliers(ctx context.Context) (CountSuppliersRow, error) {
	row := q.db.QueryRow(ctx, countSuppliers)
	var i CountSuppliersRow
	err := row.Scan(&i.Total, &i.Approved, &i.Pending)
	return i, err
}

const listSuppliers = `SELECT ` + supplierColumns + ` FROM suppliers ORDER BY company_name`

func (q *Queries) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	rows, err := q.db.Query(ctx, listSuppliers)
	if err != nil {
		return nil, err
	}
	return collectSuppliers(rows)
}
