package domain

import "time"

// Role controls what a user may do. Admins and managers can mutate
// correspondence; staff have read and comment access only.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"
)

// CanMutate reports whether the role is allowed to create or update
// correspondence items.
func (r Role) CanMutate() bool {
	return r == RoleAdmin || r == RoleManager
}

// User is an internal staff account.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash *string
	Role         Role
	Department   *string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ActingUser identifies the caller of a mutating operation. It is passed
// explicitly into services; nothing reads identity from ambient state.
type ActingUser struct {
	ID   int64
	Role Role
}
