package enums

import "slices"

// UserRole is carried in access tokens minted by the identity provider.
type UserRole string

const (
	UserRoleCustomer UserRole = "customer"
	UserRoleAdmin    UserRole = "admin"
)

var validUserRoles = []UserRole{
	UserRoleCustomer,
	UserRoleAdmin,
}

func (v UserRole) String() string { return string(v) }

func (v UserRole) IsValid() bool { return slices.Contains(validUserRoles, v) }

func ParseUserRole(value string) (UserRole, error) {
	return parseEnum(validUserRoles, "user role", value)
}
