package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const customerColumns = `id, name, email, coalesce(phone, ''), coalesce(address, ''), created_at`

func scanCustomer(row pgx.Row) (*Customer, error) {
	var c Customer
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// queryCustomer runs a single-row customer query over db, which may be the
// pool or a transaction.
func queryCustomer(ctx context.Context, db DBTX, query string, args ...interface{}) (*Customer, error) {
	return scanCustomer(db.QueryRow(ctx, query, args...))
}

// collectCustomers runs a multi-row customer query over db.
func collectCustomers(ctx context.Context, db DBTX, query string, args ...interface{}) ([]Customer, error) {
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var customers []Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return customers, nil
}

// emailExists reports whether a customer with the email exists, matched
// case-insensitively.
func emailExists(ctx context.Context, db DBTX, email string) (bool, error) {
	var exists bool
	err := db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM customers WHERE lower(email) = lower($1))`,
		email).Scan(&exists)
	return exists, err
}

// ListCustomers returns all customers ordered by name.
func (s *Store) ListCustomers(ctx context.Context) ([]Customer, error) {
	return collectCustomers(ctx, s.pool,
		`SELECT `+customerColumns+` FROM customers ORDER BY name`)
}

// CustomerByID returns the customer with the given ID, or ErrNotFound.
func (s *Store) CustomerByID(ctx context.Context, id int32) (*Customer, error) {
	c, err := queryCustomer(ctx, s.pool,
		`SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("customer by id %d: %w", id, err)
	}
	return c, nil
}

// CustomerByName returns the customer with the given name, matched
// case-insensitively, or ErrNotFound.
func (s *Store) CustomerByName(ctx context.Context, name string) (*Customer, error) {
	c, err := queryCustomer(ctx, s.pool,
		`SELECT `+customerColumns+` FROM customers WHERE lower(name) = lower($1)`, name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("customer by name %q: %w", name, err)
	}
	return c, nil
}

// CustomerByEmail returns the customer with the given email, matched
// case-insensitively, or ErrNotFound.
func (s *Store) CustomerByEmail(ctx context.Context, email string) (*Customer, error) {
	c, err := queryCustomer(ctx, s.pool,
		`SELECT `+customerColumns+` FROM customers WHERE lower(email) = lower($1)`, email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("customer by email %q: %w", email, err)
	}
	return c, nil
}

// CountCustomers returns the number of customers.
func (s *Store) CountCustomers(ctx context.Context) (int64, error) {
	count, err := queryCount(ctx, s.pool, `SELECT COUNT(*) FROM customers`)
	if err != nil {
		return 0, fmt.Errorf("count customers: %w", err)
	}
	return count, nil
}

// CreateCustomer inserts a new customer. The duplicate-email check and the
// insert run in one transaction scoped to this single record, so a rejection
// here cannot roll back other records committed by the caller.
func (s *Store) CreateCustomer(ctx context.Context, arg CreateCustomerParams) (*Customer, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	exists, err := emailExists(ctx, tx, arg.Email)
	if err != nil {
		return nil, fmt.Errorf("duplicate check: %w", err)
	}
	if exists {
		return nil, &DuplicateEmailError{Email: arg.Email}
	}

	c, err := queryCustomer(ctx, tx,
		`INSERT INTO customers (name, email, phone, address)
		 VALUES ($1, $2, nullif($3, ''), nullif($4, ''))
		 RETURNING `+customerColumns,
		arg.Name, arg.Email, arg.Phone, arg.Address)
	if err != nil {
		// The unique index can still fire on a concurrent insert.
		if isUniqueViolation(err) {
			return nil, &DuplicateEmailError{Email: arg.Email}
		}
		return nil, fmt.Errorf("insert customer: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return c, nil
}
