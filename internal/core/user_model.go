package core

import (
	"context"
	"time"
)

// Roles a portal user can hold.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// User is a portal login. Its ID is recorded as actor on orders, invoices,
// expenses and timeline entries.
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserService provides user lookup and credential checks.
type UserService interface {
	// CreateUser stores a new active user with a bcrypt hash of password.
	CreateUser(ctx context.Context, username, email, password, role string) (*User, error)

	// GetByUsername finds an active user by username.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// GetByID returns a user by primary key.
	GetByID(ctx context.Context, userID int) (*User, error)

	// Authenticate returns the active user matching username and password.
	// Unknown users and wrong passwords yield the same ValidationError.
	Authenticate(ctx context.Context, username, password string) (*User, error)
}
