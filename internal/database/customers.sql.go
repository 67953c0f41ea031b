package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const customerColumns = `id, user_id, address, agreement_id, balance, created_at`

func scanCustomer(row interface{ Scan(...any) error }) (Customer, error) {
	var i Customer
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Address,
		&i.AgreementID,
		&i.Balance,
		&i.CreatedAt,
	)
	return i, err
}

const createCustomer = `
INSERT INTO customers (user_id, address, agreement_id, balance)
VALUES ($1, $2, $3, $4)
RETURNING ` + customerColumns

type CreateCustomerParams struct {
	UserID      uuid.UUID
	Address     string
	AgreementID pgtype.UUID
	Balance     pgtype.Numeric
}

func (q *Queries) CreateCustomer(ctx context.Context, arg CreateCustomerParams) (Customer, error) {
	row := q.db.QueryRow(ctx, createCustomer,
		arg.UserID,
		arg.Address,
		arg.AgreementID,
		arg.Balance,
	)
	return scanCustomer(row)
}

const getCustomer = `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

func (q *Queries) GetCustomer(ctx context.Context, id uuid.UUID) (Customer, error) {
	return scanCustomer(q.db.QueryRow(ctx, getCustomer, id))
}

const getCustomerByUserID = `SELECT ` + customerColumns + ` FROM customers WHERE user_id = $1`

func (q *Queries) GetCustomerByUserID(ctx context.Context, userID uuid.UUID) (Customer, error) {
	return scanCustomer(q.db.QueryRow(ctx, getCustomerByUserID, userID))
}

const getCustomerAgreement = `
SELECT c.id, c.balance, c.agreement_id, COALESCE(a.is_active, false) AS agreement_active
FROM customers c
LEFT JOIN company_agreements a ON a.id = c.agreement_id
WHERE c.id = $1
`

type GetCustomerAgreementRow struct {
	ID              uuid.UUID
	Balance         pgtype.Numeric
	AgreementID     pgtype.UUID
	AgreementActive bool
}

func (q *Queries) GetCustomerAgreement(ctx context.Context, id uuid.UUID) (GetCustomerAgreementRow, error) {
	row := q.db.QueryRow(ctx, getCustomerAgreement, id)
	var i GetCustomerAgreementRow
	err := row.Scan(&i.ID, &i.Balance, &i.AgreementID, &i.AgreementActive)
	return i, err
}

// JoinCustomerAgreement returns pgx.ErrNoRows when the customer already
// belongs to the agreement, so the grant is credited once.
const joinCustomerAgreement = `
UPDATE customers
SET agreement_id = $2, balance = balance + $3
WHERE id = $1 AND agreement_id IS DISTINCT FROM $2
RETURNING ` + customerColumns

type JoinCustomerAgreementParams struct {
	ID          uuid.UUID
	AgreementID uuid.UUID
	Credit      pgtype.Numeric
}

func (q *Queries) JoinCustomerAgreement(ctx context.Context, arg JoinCustomerAgreementParams) (Customer, error) {
	return scanCustomer(q.db.QueryRow(ctx, joinCustomerAgreement, arg.ID, arg.AgreementID, arg.Credit))
}

// DebitCustomerBalance returns pgx.ErrNoRows when the balance does not cover the amount.
const debitCustomerBalance = `
UPDATE customers
SET balance = balance - $2
WHERE id = $1 AND balance >= $2
RETURNING balance
`

type DebitCustomerBalanceParams struct {
	ID     uuid.UUID
	Amount pgtype.Numeric
}

func (q *Queries) DebitCustomerBalance(ctx context.Context, arg DebitCustomerBalanceParams) (pgtype.Numeric, error) {
	row := q.db.QueryRow(ctx, debitCustomerBalance, arg.ID, arg.Amount)
	var balance pgtype.Numeric
	err := row.Scan(&balance)
	return balance, err
}

const getCustomerDetail = `
SELECT c.id, u.username, u.email, u.first_name, u.last_name, c.address, c.balance,
       a.name AS agreement_name, c.created_at
FROM customers c
JOIN users u ON u.id = c.user_id
LEFT JOIN company_agreements a ON a.id = c.agreement_id
WHERE c.id = $1
`

type GetCustomerDetailRow struct {
	ID            uuid.UUID
	Username      string
	Email         string
	FirstName     string
	LastName      string
	Address       string
	Balance       pgtype.Numeric
	AgreementName pgtype.Text
	CreatedAt     time.Time
}

func (q *Queries) GetCustomerDetail(ctx context.Context, id uuid.UUID) (GetCustomerDetailRow, error) {
	row := q.db.QueryRow(ctx, getCustomerDetail, id)
	var i GetCustomerDetailRow
	err := row.Scan(
		&i.ID,
		&i.Username,
		&i.Email,
		&i.FirstName,
		&i.LastName,
		&i.Address,
		&i.Balance,
		&i.AgreementName,
		&i.CreatedAt,
	)
	return i, err
}
