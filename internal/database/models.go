package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type User struct {
	ID             uuid.UUID
	Username       string
	Email          string
	FirstName      string
	LastName       string
	HashedPassword string
	Role           string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Supplier struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	CompanyName string
	Description pgtype.Text
	Phone       pgtype.Text
	Approved    bool
	CreatedAt   time.Time
}

type Dish struct {
	ID          uuid.UUID
	SupplierID  uuid.UUID
	Name        string
	Description string
	Ingredients string
	Price       pgtype.Numeric
	ImageUrl    pgtype.Text
	CreatedAt   time.Time
}

type CompanyAgreement struct {
	ID             uuid.UUID
	Name           string
	MonthlyBalance pgtype.Numeric
	IsActive       bool
	CreatedAt      time.Time
}

type AgreementCode struct {
	ID          uuid.UUID
	AgreementID uuid.UUID
	Code        string
}

type Customer struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Address     string
	AgreementID pgtype.UUID
	Balance     pgtype.Numeric
	CreatedAt   time.Time
}

type Order struct {
	ID              uuid.UUID
	CustomerID      uuid.UUID
	DishID          uuid.UUID
	Quantity        int32
	Status          string
	Confirmed       bool
	DeliveryAddress string
	CreatedAt       time.Time
}

type WeeklyMenu struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
	Total      pgtype.Numeric
	Paid       bool
	CreatedAt  time.Time
}

type WeeklyMenuItem struct {
	ID       uuid.UUID
	MenuID   uuid.UUID
	Weekday  string
	DishID   pgtype.UUID
	Quantity int32
}

// OrderLine is an order joined with its dish, supplier and customer username.
// Every list/detail query over orders returns this shape.
type OrderLine struct {
	ID               uuid.UUID
	CustomerID       uuid.UUID
	DishID           uuid.UUID
	Quantity         int32
	Status           string
	Confirmed        bool
	DeliveryAddress  string
	CreatedAt        time.Time
	DishName         string
	DishPrice        pgtype.Numeric
	SupplierID       uuid.UUID
	SupplierName     string
	CustomerUsername string
}
