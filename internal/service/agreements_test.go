package service

import (
	"context"
	"errors"
	"testing"

	"github.com/cristijna/SaboresGo/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

type mockAgreementStore struct {
	createFn     func(ctx context.Context, arg database.CreateAgreementParams) (database.CompanyAgreement, error)
	listFn       func(ctx context.Context) ([]database.CompanyAgreement, error)
	listCodesFn  func(ctx context.Context, agreementID uuid.UUID) ([]database.AgreementCode, error)
	createCodeFn func(ctx context.Context, arg database.CreateAgreementCodeParams) (database.AgreementCode, error)
	setActiveFn  func(ctx context.Context, arg database.SetAgreementActiveParams) (database.CompanyAgreement, error)
	byCodeFn     func(ctx context.Context, code string) (database.CompanyAgreement, error)
	joinFn       func(ctx context.Context, arg database.JoinCustomerAgreementParams) (database.Customer, error)
}

func (m *mockAgreementStore) CreateAgreement(ctx context.Context, arg database.CreateAgreementParams) (database.CompanyAgreement, error) {
	return m.createFn(ctx, arg)
}
func (m *mockAgreementStore) ListAgreements(ctx context.Context) ([]database.CompanyAgreement, error) {
	return m.listFn(ctx)
}
func (m *mockAgreementStore) ListAgreementCodes(ctx context.Context, agreementID uuid.UUID) ([]database.AgreementCode, error) {
	return m.listCodesFn(ctx, agreementID)
}
func (m *mockAgreementStore) CreateAgreementCode(ctx context.Context, arg database.CreateAgreementCodeParams) (database.AgreementCode, error) {
	return m.createCodeFn(ctx, arg)
}
func (m *mockAgreementStore) SetAgreementActive(ctx context.Context, arg database.SetAgreementActiveParams) (database.CompanyAgreement, error) {
	return m.setActiveFn(ctx, arg)
}
func (m *mockAgreementStore) GetAgreementByCode(ctx context.Context, code string) (database.CompanyAgreement, error) {
	return m.byCodeFn(ctx, code)
}
func (m *mockAgreementStore) JoinCustomerAgreement(ctx context.Context, arg database.JoinCustomerAgreementParams) (database.Customer, error) {
	return m.joinFn(ctx, arg)
}

func TestAgreementCreate(t *testing.T) {
	var got database.CreateAgreementParams
	store := &mockAgreementStore{
		createFn: func(ctx context.Context, arg database.CreateAgreementParams) (database.CompanyAgreement, error) {
			got = arg
			return database.CompanyAgreement{ID: uuid.New(), Name: arg.Name, IsActive: true}, nil
		},
	}
	svc := NewAgreementService(store)

	a, err := svc.Create(context.Background(), "  Acme  ", decimal.RequireFromString("45.50"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Name != "Acme" || !numericEquals(got.MonthlyBalance, "45.50") {
		t.Errorf("params: %+v", got)
	}

	for _, tc := range []struct {
		name    string
		monthly string
	}{{"", "10"}, {"Acme", "-1"}} {
		if _, err := svc.Create(context.Background(), tc.name, decimal.RequireFromString(tc.monthly)); !errors.Is(err, ErrInvalidAgreement) {
			t.Errorf("%q/%s: expected ErrInvalidAgreement, got %v", tc.name, tc.monthly, err)
		}
	}

	store.createFn = func(ctx context.Context, arg database.CreateAgreementParams) (database.CompanyAgreement, error) {
		return database.CompanyAgreement{}, &pgconn.PgError{Code: "23505"}
	}
	if _, err := svc.Create(context.Background(), "Acme", decimal.Zero); !errors.Is(err, ErrAgreementExists) {
		t.Errorf("expected ErrAgreementExists, got %v", err)
	}
}

func TestAgreementList(t *testing.T) {
	a1, a2 := uuid.New(), uuid.New()
	store := &mockAgreementStore{
		listFn: func(ctx context.Context) ([]database.CompanyAgreement, error) {
			return []database.CompanyAgreement{{ID: a1}, {ID: a2}}, nil
		},
		listCodesFn: func(ctx context.Context, agreementID uuid.UUID) ([]database.AgreementCode, error) {
			if agreementID == a1 {
				return []database.AgreementCode{{AgreementID: a1, Code: "X1"}, {AgreementID: a1, Code: "X2"}}, nil
			}
			return []database.AgreementCode{}, nil
		},
	}

	list, err := NewAgreementService(store).List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 || len(list[0].Codes) != 2 || len(list[1].Codes) != 0 {
		t.Errorf("list: %+v", list)
	}
}

func TestAgreementAddCode(t *testing.T) {
	store := &mockAgreementStore{}
	svc := NewAgreementService(store)

	if _, err := svc.AddCode(context.Background(), uuid.New(), "   "); !errors.Is(err, ErrAgreementCodeEmpty) {
		t.Errorf("expected ErrAgreementCodeEmpty, got %v", err)
	}

	tests := []struct {
		code string
		want error
	}{
		{"23505", ErrAgreementExists},
		{"23503", ErrAgreementNotFound},
	}
	for _, tt := range tests {
		store.createCodeFn = func(ctx context.Context, arg database.CreateAgreementCodeParams) (database.AgreementCode, error) {
			return database.AgreementCode{}, &pgconn.PgError{Code: tt.code}
		}
		if _, err := svc.AddCode(context.Background(), uuid.New(), "ACME"); !errors.Is(err, tt.want) {
			t.Errorf("pg %s: expected %v, got %v", tt.code, tt.want, err)
		}
	}
}

func TestAgreementSetActive_NotFound(t *testing.T) {
	store := &mockAgreementStore{
		setActiveFn: func(ctx context.Context, arg database.SetAgreementActiveParams) (database.CompanyAgreement, error) {
			return database.CompanyAgreement{}, pgx.ErrNoRows
		},
	}
	if _, err := NewAgreementService(store).SetActive(context.Background(), uuid.New(), false); !errors.Is(err, ErrAgreementNotFound) {
		t.Errorf("expected ErrAgreementNotFound, got %v", err)
	}
}

func TestJoinAgreement(t *testing.T) {
	agreementID, customerID := uuid.New(), uuid.New()
	var joined database.JoinCustomerAgreementParams
	calls := 0
	store := &mockAgreementStore{
		byCodeFn: func(ctx context.Context, code string) (database.CompanyAgreement, error) {
			if code != "ACME" {
				return database.CompanyAgreement{}, pgx.ErrNoRows
			}
			return database.CompanyAgreement{ID: agreementID, MonthlyBalance: makeNumeric("30.00"), IsActive: true}, nil
		},
		joinFn: func(ctx context.Context, arg database.JoinCustomerAgreementParams) (database.Customer, error) {
			calls++
			if calls > 1 {
				return database.Customer{}, pgx.ErrNoRows
			}
			joined = arg
			return database.Customer{ID: arg.ID, Balance: arg.Credit}, nil
		},
	}
	svc := NewAgreementService(store)

	c, err := svc.JoinAgreement(context.Background(), customerID, " ACME ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if joined.ID != customerID || joined.AgreementID != agreementID || !numericEquals(joined.Credit, "30.00") {
		t.Errorf("join params: %+v", joined)
	}
	if !numericEquals(c.Balance, "30.00") {
		t.Errorf("balance: %v", c.Balance)
	}

	if _, err := svc.JoinAgreement(context.Background(), customerID, "ACME"); !errors.Is(err, ErrAlreadyJoined) {
		t.Errorf("second join: expected ErrAlreadyJoined, got %v", err)
	}
	if _, err := svc.JoinAgreement(context.Background(), customerID, "OTHER"); !errors.Is(err, ErrInvalidAgreementCode) {
		t.Errorf("unknown code: expected ErrInvalidAgreementCode, got %v", err)
	}
	if _, err := svc.JoinAgreement(context.Background(), customerID, ""); !errors.Is(err, ErrAgreementCodeEmpty) {
		t.Errorf("empty code: expected ErrAgreementCodeEmpty, got %v", err)
	}
}
