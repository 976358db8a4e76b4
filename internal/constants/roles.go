package constants

import "fmt"

// Role mirrors the backend's user role enum.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// String implements fmt.Stringer for logs.
func (r Role) String() string { return string(r) }

// ParseRole accepts the backend spelling of a role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("Role: unknown value %q", s)
	}
}
