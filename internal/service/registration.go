package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cristijna/SaboresGo/internal/auth"
	"github.com/cristijna/SaboresGo/internal/database"
	"github.com/cristijna/SaboresGo/internal/enum"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Errors returned by registration.
var (
	ErrUsernameTaken        = errors.New("username already taken")
	ErrInvalidAgreementCode = errors.New("invalid agreement code")
)

// ValidationError lists every problem found in a request.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Problems, "; ")
}

// RegisterRequest is the signup form. Role is "cliente" or "proveedor".
// Password strength is checked by auth.ValidatePassword, not by tags.
type RegisterRequest struct {
	Username  string `validate:"required"`
	Email     string `validate:"required,email"`
	FirstName string
	LastName  string
	Password  string
	Password2 string `validate:"eqfield=Password"`
	Role      string `validate:"oneof=cliente proveedor"`

	CompanyName string `validate:"required_if=Role proveedor"`
	Description string
	Phone       string

	Address       string
	AgreementCode string
}

// RegistrationStore defines the DB methods needed to create accounts.
// Satisfied by *database.Queries (and its WithTx variant).
type RegistrationStore interface {
	CreateUser(ctx context.Context, arg database.CreateUserParams) (database.User, error)
	CreateSupplier(ctx context.Context, arg database.CreateSupplierParams) (database.Supplier, error)
	CreateCustomer(ctx context.Context, arg database.CreateCustomerParams) (database.Customer, error)
	GetAgreementByCode(ctx context.Context, code string) (database.CompanyAgreement, error)
}

type NewRegistrationStore func(db database.DBTX) RegistrationStore

type RegistrationService struct {
	pool     TxBeginner
	newStore NewRegistrationStore
}

func NewRegistrationService(pool TxBeginner, newStore NewRegistrationStore) *RegistrationService {
	return &RegistrationService{pool: pool, newStore: newStore}
}

func registrationRole(role string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "cliente":
		return enum.UserRoleCustomer, true
	case "proveedor":
		return enum.UserRoleSupplier, true
	}
	return "", false
}

var validate = validator.New()

// Validate trims the request and reports every problem with it, or nil.
func (req *RegisterRequest) Validate() error {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	req.Role = strings.ToLower(strings.TrimSpace(req.Role))
	req.CompanyName = strings.TrimSpace(req.CompanyName)

	var problems []string
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate register request: %w", err)
		}
		for _, fe := range verrs {
			problems = append(problems, registerProblem(fe))
		}
	}
	problems = append(problems, auth.ValidatePassword(req.Password)...)

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func registerProblem(fe validator.FieldError) string {
	switch fe.Field() {
	case "Username":
		return "username is required"
	case "Email":
		if fe.Tag() == "required" {
			return "email is required"
		}
		return "email is invalid"
	case "Password2":
		return "passwords do not match"
	case "Role":
		return "role must be cliente or proveedor"
	case "CompanyName":
		return "company name is required"
	}
	return strings.ToLower(fe.Field()) + " is invalid"
}

func optionalText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// Register creates the user and its customer or supplier profile in one
// transaction and returns the resolved account.
func (s *RegistrationService) Register(ctx context.Context, req RegisterRequest) (auth.Account, error) {
	if err := req.Validate(); err != nil {
		return auth.Account{}, err
	}
	role, _ := registrationRole(req.Role)

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return auth.Account{}, fmt.Errorf("hash password: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return auth.Account{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	user, err := store.CreateUser(ctx, database.CreateUserParams{
		Username:       strings.TrimSpace(req.Username),
		Email:          strings.TrimSpace(req.Email),
		FirstName:      strings.TrimSpace(req.FirstName),
		LastName:       strings.TrimSpace(req.LastName),
		HashedPassword: hash,
		Role:           role,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return auth.Account{}, ErrUsernameTaken
		}
		return auth.Account{}, fmt.Errorf("create user: %w", err)
	}

	acct := auth.Account{UserID: user.ID, Role: role}

	switch role {
	case enum.UserRoleSupplier:
		supplier, err := store.CreateSupplier(ctx, database.CreateSupplierParams{
			UserID:      user.ID,
			CompanyName: strings.TrimSpace(req.CompanyName),
			Description: optionalText(req.Description),
			Phone:       optionalText(req.Phone),
		})
		if err != nil {
			return auth.Account{}, fmt.Errorf("create supplier: %w", err)
		}
		acct.ProfileID = supplier.ID

	case enum.UserRoleCustomer:
		params := database.CreateCustomerParams{
			UserID:  user.ID,
			Address: strings.TrimSpace(req.Address),
			Balance: decimalToNumeric(decimal.Zero),
		}
		if code := strings.TrimSpace(req.AgreementCode); code != "" {
			agreement, err := store.GetAgreementByCode(ctx, code)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return auth.Account{}, ErrInvalidAgreementCode
				}
				return auth.Account{}, fmt.Errorf("get agreement by code: %w", err)
			}
			params.AgreementID = pgtype.UUID{Bytes: agreement.ID, Valid: true}
			params.Balance = agreement.MonthlyBalance
		}
		customer, err := store.CreateCustomer(ctx, params)
		if err != nil {
			return auth.Account{}, fmt.Errorf("create customer: %w", err)
		}
		acct.ProfileID = customer.ID
	}

	if err := tx.Commit(ctx); err != nil {
		return auth.Account{}, fmt.Errorf("commit tx: %w", err)
	}
	return acct, nil
}
