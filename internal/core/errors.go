package core

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Error codes surfaced to callers. Adapters map them to transport status codes.
const (
	CodeValidation = "VALIDATION_FAILED"
	CodeNotFound   = "NOT_FOUND"
	CodeConflict   = "CONFLICT"
	CodeState      = "INVALID_STATE"
)

// ValidationError reports missing or malformed input. Nothing has been written.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError reports a missing order, invoice, expense, customer or parent order.
type NotFoundError struct {
	Resource string
	ID       any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Resource, e.ID)
}

// ConflictError reports a violated cross-row invariant, e.g. a second invoice for one order.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// StateError reports an action that the order's current status does not permit.
type StateError struct {
	Action string
	Status OrderStatus
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s an order in status %s", e.Action, e.Status)
}

func newValidation(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func newConflict(format string, args ...any) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// ErrorCode returns the machine code for a domain error, or "" for infrastructure errors.
func ErrorCode(err error) string {
	var (
		ve *ValidationError
		ne *NotFoundError
		ce *ConflictError
		se *StateError
	)
	switch {
	case errors.As(err, &ve):
		return CodeValidation
	case errors.As(err, &ne):
		return CodeNotFound
	case errors.As(err, &ce):
		return CodeConflict
	case errors.As(err, &se):
		return CodeState
	}
	return ""
}

func IsValidation(err error) bool { return ErrorCode(err) == CodeValidation }
func IsNotFound(err error) bool   { return ErrorCode(err) == CodeNotFound }
func IsConflict(err error) bool   { return ErrorCode(err) == CodeConflict }
func IsState(err error) bool      { return ErrorCode(err) == CodeState }

// uniqueViolation reports whether err is a Postgres unique_violation (SQLSTATE 23505).
func uniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
