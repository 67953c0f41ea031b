package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cristijna/SaboresGo/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var (
	ErrAgreementNotFound  = errors.New("agreement not found")
	ErrAgreementExists    = errors.New("agreement name or code already exists")
	ErrAlreadyJoined      = errors.New("customer already belongs to this agreement")
	ErrInvalidAgreement   = errors.New("agreement name is required and monthly balance must be >= 0")
	ErrAgreementCodeEmpty = errors.New("code is required")
)

// AgreementStore defines the DB methods needed for company agreements.
// Satisfied by *database.Queries; narrow interface for testability.
type AgreementStore interface {
	CreateAgreement(ctx context.Context, arg database.CreateAgreementParams) (database.CompanyAgreement, error)
	ListAgreements(ctx context.Context) ([]database.CompanyAgreement, error)
	ListAgreementCodes(ctx context.Context, agreementID uuid.UUID) ([]database.AgreementCode, error)
	CreateAgreementCode(ctx context.Context, arg database.CreateAgreementCodeParams) (database.AgreementCode, error)
	SetAgreementActive(ctx context.Context, arg database.SetAgreementActiveParams) (database.CompanyAgreement, error)
	GetAgreementByCode(ctx context.Context, code string) (database.CompanyAgreement, error)
	JoinCustomerAgreement(ctx context.Context, arg database.JoinCustomerAgreementParams) (database.Customer, error)
}

type AgreementWithCodes struct {
	Agreement database.CompanyAgreement
	Codes     []database.AgreementCode
}

type AgreementService struct {
	store AgreementStore
}

func NewAgreementService(store AgreementStore) *AgreementService {
	return &AgreementService{store: store}
}

func (s *AgreementService) Create(ctx context.Context, name string, monthly decimal.Decimal) (database.CompanyAgreement, error) {
	name = strings.TrimSpace(name)
	if name == "" || monthly.IsNegative() {
		return database.CompanyAgreement{}, ErrInvalidAgreement
	}
	a, err := s.store.CreateAgreement(ctx, database.CreateAgreementParams{
		Name:           name,
		MonthlyBalance: decimalToNumeric(monthly),
	})
	if err != nil {
		if isUniqueViolation(err) {
			return database.CompanyAgreement{}, ErrAgreementExists
		}
		return database.CompanyAgreement{}, fmt.Errorf("create agreement: %w", err)
	}
	return a, nil
}

func (s *AgreementService) List(ctx context.Context) ([]AgreementWithCodes, error) {
	agreements, err := s.store.ListAgreements(ctx)
	if err != nil {
		return nil, fmt.Errorf("list agreements: %w", err)
	}
	out := make([]AgreementWithCodes, len(agreements))
	for i, a := range agreements {
		codes, err := s.store.ListAgreementCodes(ctx, a.ID)
		if err != nil {
			return nil, fmt.Errorf("list agreement codes: %w", err)
		}
		out[i] = AgreementWithCodes{Agreement: a, Codes: codes}
	}
	return out, nil
}

func (s *AgreementService) AddCode(ctx context.Context, agreementID uuid.UUID, code string) (database.AgreementCode, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return database.AgreementCode{}, ErrAgreementCodeEmpty
	}
	c, err := s.store.CreateAgreementCode(ctx, database.CreateAgreementCodeParams{
		AgreementID: agreementID,
		Code:        code,
	})
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return database.AgreementCode{}, ErrAgreementExists
		case isForeignKeyViolation(err):
			return database.AgreementCode{}, ErrAgreementNotFound
		}
		return database.AgreementCode{}, fmt.Errorf("create agreement code: %w", err)
	}
	return c, nil
}

func (s *AgreementService) SetActive(ctx context.Context, id uuid.UUID, active bool) (database.CompanyAgreement, error) {
	a, err := s.store.SetAgreementActive(ctx, database.SetAgreementActiveParams{ID: id, IsActive: active})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.CompanyAgreement{}, ErrAgreementNotFound
		}
		return database.CompanyAgreement{}, fmt.Errorf("set agreement active: %w", err)
	}
	return a, nil
}

// JoinAgreement links the customer to the active agreement owning code and
// credits its monthly balance.
func (s *AgreementService) JoinAgreement(ctx context.Context, customerID uuid.UUID, code string) (database.Customer, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return database.Customer{}, ErrAgreementCodeEmpty
	}
	agreement, err := s.store.GetAgreementByCode(ctx, code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Customer{}, ErrInvalidAgreementCode
		}
		return database.Customer{}, fmt.Errorf("get agreement by code: %w", err)
	}
	c, err := s.store.JoinCustomerAgreement(ctx, database.JoinCustomerAgreementParams{
		ID:          customerID,
		AgreementID: agreement.ID,
		Credit:      agreement.MonthlyBalance,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Customer{}, ErrAlreadyJoined
		}
		return database.Customer{}, fmt.Errorf("join agreement: %w", err)
	}
	return c, nil
}
