package store

import (
	"context"
	"fmt"
)

// Schema statements run in order. Each is idempotent so Migrate can run on
// every startup.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		id         serial PRIMARY KEY,
		name       varchar(100) NOT NULL,
		email      varchar(100) NOT NULL,
		phone      varchar(20),
		address    varchar(200),
		created_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS customers_email_lower_idx
		ON customers (lower(email))`,
	`CREATE TABLE IF NOT EXISTS orders (
		id          serial PRIMARY KEY,
		customer_id integer NOT NULL REFERENCES customers (id),
		quantity    integer NOT NULL CHECK (quantity BETWEEN 1 AND 1000),
		order_date  date NOT NULL,
		is_deleted  boolean NOT NULL DEFAULT false,
		created_at  timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS orders_customer_id_idx
		ON orders (customer_id)`,
}

// Migrate creates the customers and orders tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	for i, stmt := range migrations {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}
