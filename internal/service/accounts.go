package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/cristijna/SaboresGo/internal/auth"
	"github.com/cristijna/SaboresGo/internal/database"
	"github.com/cristijna/SaboresGo/internal/enum"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProfileStore looks up the profile behind a user.
// Satisfied by *database.Queries; narrow interface for testability.
type ProfileStore interface {
	GetCustomerByUserID(ctx context.Context, userID uuid.UUID) (database.Customer, error)
	GetSupplierByUserID(ctx context.Context, userID uuid.UUID) (database.Supplier, error)
}

// ResolveAccount builds the Account of a user. A missing profile leaves
// ProfileID as uuid.Nil; protected routes reject such tokens.
func ResolveAccount(ctx context.Context, store ProfileStore, user database.User) (auth.Account, error) {
	acct := auth.Account{UserID: user.ID, Role: user.Role}

	switch user.Role {
	case enum.UserRoleCustomer:
		c, err := store.GetCustomerByUserID(ctx, user.ID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return auth.Account{}, fmt.Errorf("get customer: %w", err)
		}
		acct.ProfileID = c.ID
	case enum.UserRoleSupplier:
		s, err := store.GetSupplierByUserID(ctx, user.ID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return auth.Account{}, fmt.Errorf("get supplier: %w", err)
		}
		acct.ProfileID = s.ID
	}
	return acct, nil
}
