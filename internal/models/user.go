package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin    UserRole = "ADMIN"
	RoleStudent  UserRole = "STUDENT"
	RoleLecturer UserRole = "LECTURER"
)

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleStudent, RoleLecturer:
		return true
	}
	return false
}

// User represents an application account stored in the users table.
// Accounts are never removed; deleting a profile disables its user.
type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         UserRole  `db:"role" json:"role"`
	Enabled      bool      `db:"enabled" json:"enabled"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}
