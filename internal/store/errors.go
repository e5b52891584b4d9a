package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors for errors.Is checks. Concrete error types below carry
// the offending values for user-facing messages.
var (
	ErrNotFound         = errors.New("not found")
	ErrDuplicateEmail   = errors.New("duplicate email")
	ErrInvalidReference = errors.New("invalid customer reference")
	ErrConstraint       = errors.New("constraint violation")
)

// PostgreSQL error codes this package cares about.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// DuplicateEmailError reports an insert rejected by the unique email rule.
type DuplicateEmailError struct {
	Email string
}

func (e *DuplicateEmailError) Error() string {
	return fmt.Sprintf("a customer with email %q already exists", e.Email)
}

func (e *DuplicateEmailError) Is(target error) bool {
	return target == ErrDuplicateEmail
}

// InvalidReferenceError reports an order naming a customer that does not exist.
type InvalidReferenceError struct {
	CustomerID int32
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("customer with ID %d does not exist", e.CustomerID)
}

func (e *InvalidReferenceError) Is(target error) bool {
	return target == ErrInvalidReference
}

// ConstraintError reports a domain rule rejected by the store.
type ConstraintError struct {
	Reason string
}

func (e *ConstraintError) Error() string {
	return e.Reason
}

func (e *ConstraintError) Is(target error) bool {
	return target == ErrConstraint
}

// IsUnavailable reports whether err indicates the database itself is
// unreachable (as opposed to a single rejected statement). A commit loop
// aborts its remaining records when this returns true.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}

	// Class 08 covers connection exceptions.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, "08") {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{"connection refused", "connection reset", "closed pool", "broken pipe"} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// isUniqueViolation reports whether err is a unique-index violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// mapOrderError converts low-level pg errors from an order insert into the
// store's typed errors. Non-pg errors pass through unchanged.
func mapOrderError(err error, customerID int32) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgForeignKeyViolation:
		return &InvalidReferenceError{CustomerID: customerID}
	case pgCheckViolation:
		return &ConstraintError{Reason: "quantity must be between 1 and 1000"}
	}
	return err
}
