package domain

import "strings"

// User is a customer known to the shop. Users are registered the first time
// they add something to their cart.
type User struct {
	ID        int64   `json:"id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Phone     *string `json:"phone,omitempty"`
}

// FullName joins first and last name, skipping empty parts.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// StaffRole is a registry that a Telegram id can belong to.
type StaffRole string

// Staff roles.
const (
	RoleAdmin   StaffRole = "admin"
	RoleCourier StaffRole = "courier"
)

// IsValid reports whether r is a known role.
func (r StaffRole) IsValid() bool {
	return r == RoleAdmin || r == RoleCourier
}
