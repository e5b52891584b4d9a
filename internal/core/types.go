package core

import (
	"context"

	"github.com/orderdesk/importer/internal/store"
)

// RecordKind identifies which import pipeline a session runs.
type RecordKind string

const (
	KindCustomers RecordKind = "customers"
	KindOrders    RecordKind = "orders"
)

// EntityStore is the persistence interface the pipeline depends on.
// Satisfied by *store.Store; tests substitute an in-memory fake.
type EntityStore interface {
	ListCustomers(ctx context.Context) ([]store.Customer, error)
	CustomerByID(ctx context.Context, id int32) (*store.Customer, error)
	CustomerByName(ctx context.Context, name string) (*store.Customer, error)
	CustomerByEmail(ctx context.Context, email string) (*store.Customer, error)
	CreateCustomer(ctx context.Context, arg store.CreateCustomerParams) (*store.Customer, error)
	CreateOrder(ctx context.Context, arg store.CreateOrderParams) (*store.Order, error)
}

// FieldSpec declares one logical CSV field and the header names accepted
// for it. Aliases are matched case-insensitively.
type FieldSpec struct {
	Name    string
	Aliases []string
}

// HeaderIndex maps logical field names to column positions in a CSV row.
type HeaderIndex map[string]int

// RecordSchema describes how CSV rows map into records of type T.
// Field declaration order doubles as the positional layout for headerless
// files.
type RecordSchema[T any] struct {
	Fields  []FieldSpec
	FromRow func(row []string, idx HeaderIndex) T
}

// ImportPreview is the aggregate result of one parse+validate(+resolve)
// pass. No persistence has happened when a preview is returned, so building
// one is idempotent. When FileErrors is empty,
// TotalRecords == len(ValidRecords) + len(InvalidRecords).
type ImportPreview[T any] struct {
	TotalRecords   int      `json:"totalRecords"`
	ValidRecords   []T      `json:"validRecords"`
	InvalidRecords []T      `json:"invalidRecords"`
	FileErrors     []string `json:"fileErrors,omitempty"`
}

// SaveResult reports the outcome of committing a preview's valid records.
// Errors holds one entry per failed record; records never attempted (after
// cancellation or store loss) are not counted as failures.
type SaveResult struct {
	SuccessCount int      `json:"successCount"`
	FailureCount int      `json:"failureCount"`
	Errors       []string `json:"errors,omitempty"`
}
