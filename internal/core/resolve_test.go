package core

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
)

func snapshotWith(t *testing.T, customers map[int32]string) *CustomerSnapshot {
	t.Helper()
	st := newFakeStore()
	for id, name := range customers {
		st.seedCustomer(id, name, name+"@x.com")
	}
	snap, err := BuildCustomerSnapshot(context.Background(), st)
	if err != nil {
		t.Fatalf("BuildCustomerSnapshot: %v", err)
	}
	return snap
}

func TestResolve(t *testing.T) {
	snap := snapshotWith(t, map[int32]string{1: "Acme Corp", 2: "Globex"})

	id := func(n int32) pgtype.Int4 { return pgtype.Int4{Int32: n, Valid: true} }
	name := func(s string) pgtype.Text { return pgtype.Text{String: s, Valid: true} }

	tests := []struct {
		name           string
		rec            OrderRecord
		wantResolved   int32
		wantViolations []string
	}{
		{
			name:         "id found",
			rec:          OrderRecord{CustomerID: id(1)},
			wantResolved: 1,
		},
		{
			name:           "id not found",
			rec:            OrderRecord{CustomerID: id(99)},
			wantViolations: []string{"Customer ID 99 not found"},
		},
		{
			name:         "name found",
			rec:          OrderRecord{CustomerName: name("Acme Corp")},
			wantResolved: 1,
		},
		{
			name:         "name found case-insensitively",
			rec:          OrderRecord{CustomerName: name("ACME corp")},
			wantResolved: 1,
		},
		{
			name:           "name not found",
			rec:            OrderRecord{CustomerName: name("Initech")},
			wantViolations: []string{"Customer 'Initech' not found"},
		},
		{
			name:           "neither id nor name",
			rec:            OrderRecord{},
			wantViolations: []string{"Either Customer ID or Customer Name is required"},
		},
		{
			name:         "id takes precedence over name",
			rec:          OrderRecord{CustomerID: id(2), CustomerName: name("Acme Corp")},
			wantResolved: 2,
		},
		{
			name: "bad id not rescued by valid name",
			rec:  OrderRecord{CustomerID: id(99), CustomerName: name("Acme Corp")},
			wantViolations: []string{"Customer ID 99 not found"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tt.rec
			snap.Resolve(&rec)
			assertViolations(t, rec.Violations, tt.wantViolations)
			if tt.wantResolved != 0 {
				if !rec.ResolvedCustomerID.Valid || rec.ResolvedCustomerID.Int32 != tt.wantResolved {
					t.Errorf("ResolvedCustomerID = %+v, want %d", rec.ResolvedCustomerID, tt.wantResolved)
				}
			} else if rec.ResolvedCustomerID.Valid {
				t.Errorf("ResolvedCustomerID = %+v, want unset", rec.ResolvedCustomerID)
			}
		})
	}
}

func TestResolveEmptySnapshot(t *testing.T) {
	snap := snapshotWith(t, nil)
	if snap.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", snap.Len())
	}

	rec := OrderRecord{CustomerID: pgtype.Int4{Int32: 1, Valid: true}}
	snap.Resolve(&rec)
	assertViolations(t, rec.Violations, []string{"Customer ID 1 not found"})
}
