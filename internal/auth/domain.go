package auth

import "time"

// Role labels what a user account may do.
type Role string

const (
	// RoleAdmin manages shops and manager assignments.
	RoleAdmin Role = "admin"
	// RoleManager operates a single shop's ledger.
	RoleManager Role = "manager"
)

// User represents an authenticated user account.
type User struct {
	ID           int64
	Email        string
	Name         string
	Role         Role
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
}
