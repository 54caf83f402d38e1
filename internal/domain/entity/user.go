package entity

import "time"

// Role is the closed set of authorization roles. The Authorization Engine
// switches exhaustively on this type; adding a role requires revisiting
// every decision table.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleMember  Role = "MEMBER"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleMember:
		return true
	}
	return false
}

// User is the aggregate root for the identity domain.
// PasswordHash holds a bcrypt hash; an empty hash marks an unusable
// credential (the account exists but cannot authenticate).
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CanAuthenticate reports whether the account holds a usable credential.
func (u *User) CanAuthenticate() bool {
	return u.PasswordHash != ""
}
