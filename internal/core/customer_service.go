package core

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CustomerInput is the data needed to register a customer.
type CustomerInput struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// CustomerService manages the customer records orders are issued to.
type CustomerService interface {
	CreateCustomer(ctx context.Context, in CustomerInput) (*Customer, error)
	GetCustomer(ctx context.Context, id int) (*Customer, error)
	ListCustomers(ctx context.Context) ([]Customer, error)
}

type customerService struct {
	pool *pgxpool.Pool
}

func NewCustomerService(pool *pgxpool.Pool) CustomerService {
	return &customerService{pool: pool}
}

func (s *customerService) CreateCustomer(ctx context.Context, in CustomerInput) (*Customer, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, newValidation("name", "customer name is required")
	}
	email := strings.TrimSpace(in.Email)
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, newValidation("email", "%q is not a valid email address", email)
		}
	}

	var c Customer
	err := s.pool.QueryRow(ctx, `
		INSERT INTO customers (name, email, phone, address)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, email, phone, address, created_at
	`, name, email, strings.TrimSpace(in.Phone), strings.TrimSpace(in.Address)).Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return &c, nil
}

func (s *customerService) GetCustomer(ctx context.Context, id int) (*Customer, error) {
	var c Customer
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, email, phone, address, created_at
		FROM customers
		WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Resource: "customer", ID: id}
		}
		return nil, fmt.Errorf("failed to get customer %d: %w", id, err)
	}
	return &c, nil
}

func (s *customerService) ListCustomers(ctx context.Context) ([]Customer, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, email, phone, address, created_at
		FROM customers
		ORDER BY name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	customers := []Customer{}
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}
