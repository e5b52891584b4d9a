// Package store provides PostgreSQL persistence for customers and orders.
//
// Every create operation runs inside its own transaction so that a failed
// insert (duplicate email, missing customer) never affects sibling inserts
// issued by the same import run.
package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Customer is a persisted customer row.
type Customer struct {
	ID        int32     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Order is a persisted order row.
type Order struct {
	ID         int32     `json:"id"`
	CustomerID int32     `json:"customerId"`
	Quantity   int32     `json:"quantity"`
	OrderDate  time.Time `json:"orderDate"`
	IsDeleted  bool      `json:"isDeleted"`
	CreatedAt  time.Time `json:"createdAt"`
}

// CreateCustomerParams holds the fields for a new customer.
type CreateCustomerParams struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// CreateOrderParams holds the fields for a new order.
type CreateOrderParams struct {
	CustomerID int32
	Quantity   int32
	OrderDate  time.Time
}

// queryCount runs a single-value aggregate query over db, which may be the
// pool or a transaction.
func queryCount(ctx context.Context, db DBTX, query string, args ...interface{}) (int64, error) {
	var count int64
	err := db.QueryRow(ctx, query, args...).Scan(&count)
	return count, err
}

// Store wraps a pgx connection pool with typed queries.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store backed by the given pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Ping verifies database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
