package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

const orderColumns = `id, customer_id, quantity, order_date, is_deleted, created_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.CustomerID, &o.Quantity, &o.OrderDate, &o.IsDeleted, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// queryOrder runs a single-row order query over db, which may be the pool or
// a transaction.
func queryOrder(ctx context.Context, db DBTX, query string, args ...interface{}) (*Order, error) {
	return scanOrder(db.QueryRow(ctx, query, args...))
}

// collectOrders runs a multi-row order query over db.
func collectOrders(ctx context.Context, db DBTX, query string, args ...interface{}) ([]Order, error) {
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// customerExists reports whether a customer with the ID exists.
func customerExists(ctx context.Context, db DBTX, id int32) (bool, error) {
	var exists bool
	err := db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM customers WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

// ListActiveOrders returns all orders that are not soft-deleted,
// newest first.
func (s *Store) ListActiveOrders(ctx context.Context) ([]Order, error) {
	return collectOrders(ctx, s.pool,
		`SELECT `+orderColumns+` FROM orders
		 WHERE NOT is_deleted
		 ORDER BY order_date DESC, id DESC`)
}

// ListAllOrders returns every order including soft-deleted ones. The
// soft-delete filter is an explicit method choice, not hidden query state.
func (s *Store) ListAllOrders(ctx context.Context) ([]Order, error) {
	return collectOrders(ctx, s.pool,
		`SELECT `+orderColumns+` FROM orders
		 ORDER BY order_date DESC, id DESC`)
}

// OrdersByCustomer returns all active orders for one customer, newest first.
func (s *Store) OrdersByCustomer(ctx context.Context, customerID int32) ([]Order, error) {
	return collectOrders(ctx, s.pool,
		`SELECT `+orderColumns+` FROM orders
		 WHERE customer_id = $1 AND NOT is_deleted
		 ORDER BY order_date DESC, id DESC`, customerID)
}

// OrderByID returns the active order with the given ID, or ErrNotFound.
func (s *Store) OrderByID(ctx context.Context, id int32) (*Order, error) {
	o, err := queryOrder(ctx, s.pool,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 AND NOT is_deleted`, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("order by id %d: %w", id, err)
	}
	return o, nil
}

// CountActiveOrders returns the number of orders that are not soft-deleted.
func (s *Store) CountActiveOrders(ctx context.Context) (int64, error) {
	count, err := queryCount(ctx, s.pool,
		`SELECT COUNT(*) FROM orders WHERE NOT is_deleted`)
	if err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return count, nil
}

// TotalOrderQuantity returns the summed quantity across active orders.
func (s *Store) TotalOrderQuantity(ctx context.Context) (int64, error) {
	total, err := queryCount(ctx, s.pool,
		`SELECT COALESCE(SUM(quantity), 0) FROM orders WHERE NOT is_deleted`)
	if err != nil {
		return 0, fmt.Errorf("total quantity: %w", err)
	}
	return total, nil
}

// CreateOrder inserts a new order. The customer-existence check and the
// insert run in one transaction scoped to this single record.
func (s *Store) CreateOrder(ctx context.Context, arg CreateOrderParams) (*Order, error) {
	if arg.Quantity < 1 || arg.Quantity > 1000 {
		return nil, &ConstraintError{Reason: "quantity must be between 1 and 1000"}
	}
	if arg.OrderDate.After(time.Now()) {
		return nil, &ConstraintError{Reason: "order date cannot be in the future"}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	exists, err := customerExists(ctx, tx, arg.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("customer check: %w", err)
	}
	if !exists {
		return nil, &InvalidReferenceError{CustomerID: arg.CustomerID}
	}

	o, err := queryOrder(ctx, tx,
		`INSERT INTO orders (customer_id, quantity, order_date, is_deleted)
		 VALUES ($1, $2, $3, false)
		 RETURNING `+orderColumns,
		arg.CustomerID, arg.Quantity, arg.OrderDate)
	if err != nil {
		return nil, mapOrderError(err, arg.CustomerID)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return o, nil
}

// SoftDeleteOrder marks an order deleted without removing the row.
// Returns ErrNotFound if the order does not exist or is already deleted.
func (s *Store) SoftDeleteOrder(ctx context.Context, id int32) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE orders SET is_deleted = true WHERE id = $1 AND NOT is_deleted`, id)
	if err != nil {
		return fmt.Errorf("soft delete order %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RestoreOrder clears the soft-delete flag on an order.
// Returns ErrNotFound if the order does not exist or is not deleted.
func (s *Store) RestoreOrder(ctx context.Context, id int32) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE orders SET is_deleted = false WHERE id = $1 AND is_deleted`, id)
	if err != nil {
		return fmt.Errorf("restore order %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
