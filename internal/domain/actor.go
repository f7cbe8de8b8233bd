package domain

type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleProvider UserRole = "provider"
)

func (r UserRole) Valid() bool {
	return r == RoleCustomer || r == RoleProvider
}

// Actor is the caller on whose behalf a lifecycle operation runs.
// For RoleProvider the ID is the provider's ID; for RoleCustomer it is the user ID.
type Actor struct {
	ID   int64    `json:"id"`
	Role UserRole `json:"role"`
}

func (a Actor) IsProvider(providerID int64) bool {
	return a.Role == RoleProvider && a.ID != 0 && a.ID == providerID
}

func (a Actor) IsCustomer(userID int64) bool {
	return a.Role == RoleCustomer && a.ID != 0 && a.ID == userID
}
