package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const agreementColumns = `id, name, monthly_balance, is_active, created_at`

func scanAgreement(row interface{ Scan(...any) error }) (CompanyAgreement, error) {
	var i CompanyAgreement
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.MonthlyBalance,
		&i.IsActive,
		&i.CreatedAt,
	)
	return i, err
}

const createAgreement = `
INSERT INTO company_agreements (name, monthly_balance)
VALUES ($1, $2)
RETURNING ` + agreementColumns

type CreateAgreementParams struct {
	Name           string
	MonthlyBalance pgtype.Numeric
}

func (q *Queries) CreateAgreement(ctx context.Context, arg CreateAgreementParams) (CompanyAgreement, error) {
	return scanAgreement(q.db.QueryRow(ctx, createAgreement, arg.Name, arg.MonthlyBalance))
}

const listAgreements = `SELECT ` + agreementColumns + ` FROM company_agreements ORDER BY name`

func (q *Queries) ListAgreements(ctx context.Context) ([]CompanyAgreement, error) {
	rows, err := q.db.Query(ctx, listAgreements)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []CompanyAgreement{}
	for rows.Next() {
		i, err := scanAgreement(rows)
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

const setAgreementActive = `
UPDATE company_agreements SET is_active = $2
WHERE id = $1
RETURNING ` + agreementColumns

type SetAgreementActiveParams struct {
	ID       uuid.UUID
	IsActive bool
}

func (q *Queries) SetAgreementActive(ctx context.Context, arg SetAgreementActiveParams) (CompanyAgreement, error) {
	return scanAgreement(q.db.QueryRow(ctx, setAgreementActive, arg.ID, arg.IsActive))
}

// GetAgreementByCode only matches active agreements.
const getAgreementByCode = `
SELECT a.id, a.name, a.monthly_balance, a.is_active, a.created_at
FROM agreement_codes c
JOIN company_agreements a ON a.id = c.agreement_id
WHERE c.code = $1 AND a.is_active = true
`

func (q *Queries) GetAgreementByCode(ctx context.Context, code string) (CompanyAgreement, error) {
	return scanAgreement(q.db.QueryRow(ctx, getAgreementByCode, code))
}

const createAgreementCode = `
INSERT INTO agreement_codes (agreement_id, code)
VALUES ($1, $2)
RETURNING id, agreement_id, code
`

type CreateAgreementCodeParams struct {
	AgreementID uuid.UUID
	Code        string
}

func (q *Queries) CreateAgreementCode(ctx context.Context, arg CreateAgreementCodeParams) (AgreementCode, error) {
	row := q.db.QueryRow(ctx, createAgreementCode, arg.AgreementID, arg.Code)
	var i AgreementCode
	err := row.Scan(&i.ID, &i.AgreementID, &i.Code)
	return i, err
}

const listAgreementCodes = `
SELECT id, agreement_id, code FROM agreement_codes
WHERE agreement_id = $1
ORDER BY code
`

func (q *Queries) ListAgreementCodes(ctx context.Context, agreementID uuid.UUID) ([]AgreementCode, error) {
	rows, err := q.db.Query(ctx, listAgreementCodes, agreementID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []AgreementCode{}
	for rows.Next() {
		var i AgreementCode
		if err := rows.Scan(&i.ID, &i.AgreementID, &i.Code); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
