package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

var errBadCredentials = &ValidationError{Field: "credentials", Message: "invalid username or password"}

type userService struct {
	pool *pgxpool.Pool
}

// NewUserService constructs a UserService backed by PostgreSQL.
func NewUserService(pool *pgxpool.Pool) UserService {
	return &userService{pool: pool}
}

const userColumns = "id, username, email, password_hash, role, is_active, created_at"

func scanUser(row pgx.Row) (*User, error) {
	u := &User{}
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt)
	return u, err
}

func (s *userService) CreateUser(ctx context.Context, username, email, password, role string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, newValidation("username", "username is required")
	}
	if len(password) < minPasswordLength {
		return nil, newValidation("password", "password must be at least %d characters", minPasswordLength)
	}
	if role == "" {
		role = RoleStaff
	}
	if role != RoleAdmin && role != RoleStaff {
		return nil, newValidation("role", "unknown role %q", role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u, err := scanUser(s.pool.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns,
		username, strings.TrimSpace(email), string(hash), role,
	))
	if err != nil {
		if uniqueViolation(err) {
			return nil, newConflict("username %q is already taken", username)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE username = $1 AND is_active = true LIMIT 1",
		username,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Resource: "user", ID: username}
		}
		return nil, fmt.Errorf("failed to get user %q: %w", username, err)
	}
	return u, nil
}

func (s *userService) GetByID(ctx context.Context, userID int) (*User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Resource: "user", ID: userID}
		}
		return nil, fmt.Errorf("failed to get user id=%d: %w", userID, err)
	}
	return u, nil
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*User, error) {
	u, err := s.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if IsNotFound(err) {
			return nil, errBadCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, errBadCredentials
	}
	return u, nil
}
