package enums

import "fmt"

// OperatorRole maps to the operator_role enum in Postgres.
type OperatorRole string

const (
	OperatorRoleAdmin   OperatorRole = "admin"
	OperatorRoleAnalyst OperatorRole = "analyst"
	OperatorRoleViewer  OperatorRole = "viewer"
)

var validOperatorRoles = []OperatorRole{
	OperatorRoleAdmin,
	OperatorRoleAnalyst,
	OperatorRoleViewer,
}

// String implements fmt.Stringer.
func (r OperatorRole) String() string {
	return string(r)
}

// IsValid reports whether the value matches the canonical operator_role enum.
func (r OperatorRole) IsValid() bool {
	for _, candidate := range validOperatorRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseOperatorRole converts raw input into OperatorRole.
func ParseOperatorRole(value string) (OperatorRole, error) {
	for _, candidate := range validOperatorRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid operator role %q", value)
}
