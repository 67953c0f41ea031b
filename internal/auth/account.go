package auth

import (
	"github.com/cristijna/SaboresGo/internal/enum"
	"github.com/google/uuid"
)

// Account is the authenticated party of a request. ProfileID is the customer
// id for CLIENTE, the supplier id for PROVEEDOR and uuid.Nil for ADMIN.
type Account struct {
	UserID    uuid.UUID
	Role      string
	ProfileID uuid.UUID
}

func (a Account) Customer() (uuid.UUID, bool) {
	if a.Role != enum.UserRoleCustomer || a.ProfileID == uuid.Nil {
		return uuid.Nil, false
	}
	return a.ProfileID, true
}

func (a Account) Supplier() (uuid.UUID, bool) {
	if a.Role != enum.UserRoleSupplier || a.ProfileID == uuid.Nil {
		return uuid.Nil, false
	}
	return a.ProfileID, true
}

func (a Account) IsAdmin() bool {
	return a.Role == enum.UserRoleAdmin
}
