package enums

import "strings"

// Role is read from the identity provider's token.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// ParseRole maps unknown or empty roles to customer.
func ParseRole(value string) Role {
	if strings.EqualFold(strings.TrimSpace(value), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleCustomer
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}
