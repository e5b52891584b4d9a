package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// CustomerSnapshot is a point-in-time view of existing customers. It is
// built once per import run, before any row resolution begins, so every row
// resolves against the same view.
type CustomerSnapshot struct {
	byName map[string]int32
	ids    map[int32]struct{}
}

// BuildCustomerSnapshot loads all customers from the store.
func BuildCustomerSnapshot(ctx context.Context, st EntityStore) (*CustomerSnapshot, error) {
	customers, err := st.ListCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}

	snap := &CustomerSnapshot{
		byName: make(map[string]int32, len(customers)),
		ids:    make(map[int32]struct{}, len(customers)),
	}
	for _, c := range customers {
		snap.byName[strings.ToLower(c.Name)] = c.ID
		snap.ids[c.ID] = struct{}{}
	}
	return snap, nil
}

// Len returns the number of customers in the snapshot.
func (s *CustomerSnapshot) Len() int { return len(s.ids) }

// Resolve fills ResolvedCustomerID or records a violation. An explicit
// customer ID takes precedence over a name; the name lookup is
// case-insensitive. The snapshot is never mutated. The reference-presence
// rule is owned here, not in ValidateOrder, so each record reports it at
// most once.
func (s *CustomerSnapshot) Resolve(rec *OrderRecord) {
	switch {
	case rec.CustomerID.Valid:
		if _, ok := s.ids[rec.CustomerID.Int32]; ok {
			rec.ResolvedCustomerID = rec.CustomerID
		} else {
			rec.Violations = append(rec.Violations,
				fmt.Sprintf("Customer ID %d not found", rec.CustomerID.Int32))
		}
	case rec.CustomerName.Valid:
		if id, ok := s.byName[strings.ToLower(rec.CustomerName.String)]; ok {
			rec.ResolvedCustomerID = pgtype.Int4{Int32: id, Valid: true}
		} else {
			rec.Violations = append(rec.Violations,
				fmt.Sprintf("Customer '%s' not found", rec.CustomerName.String))
		}
	default:
		rec.Violations = append(rec.Violations,
			"Either Customer ID or Customer Name is required")
	}
}
