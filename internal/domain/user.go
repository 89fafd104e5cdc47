package domain

import "time"

// Role is the coarse authorization tier attached to a user account
// and to the session snapshot taken at login.
type Role string

// Roles.
const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// IsValid checks if the role is one of the known tiers.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

// HasPermission reports whether the role satisfies the required minimum tier.
func (r Role) HasPermission(min Role) bool {
	if min == RoleAdmin {
		return r == RoleAdmin
	}
	return r.IsValid()
}

// User represents a registered account.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin returns true if the account holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
