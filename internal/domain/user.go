package domain

import "time"

// Role is a user's permission level. Roles are totally ordered:
// end-user < agent < admin.
type Role string

const (
	RoleEndUser Role = "end-user"
	RoleAgent   Role = "agent"
	RoleAdmin   Role = "admin"
)

// Roles lists every role from least to most privileged.
var Roles = []Role{RoleEndUser, RoleAgent, RoleAdmin}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleEndUser, RoleAgent, RoleAdmin:
		return true
	}
	return false
}

// User is an account that can sign in.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity returns the acting identity for u.
func (u *User) Identity() Identity {
	return Identity{UserID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// Identity is the caller on whose behalf an operation runs.
type Identity struct {
	UserID string
	Name   string
	Email  string
	Role   Role
}
