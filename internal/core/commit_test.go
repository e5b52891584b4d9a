package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/orderdesk/importer/internal/store"
)

func customerRecords(n int) []CustomerRecord {
	recs := make([]CustomerRecord, n)
	for i := range recs {
		recs[i] = CustomerRecord{
			Name:    fmt.Sprintf("Cust %d", i),
			Email:   fmt.Sprintf("c%d@x.com", i),
			Phone:   "555-1111",
			Address: "1 Main St",
		}
	}
	return recs
}

func TestSaveCustomersAllSucceed(t *testing.T) {
	st := newFakeStore()
	svc := newTestService(st)

	result := svc.SaveCustomers(context.Background(), customerRecords(5))
	if result.SuccessCount != 5 || result.FailureCount != 0 || len(result.Errors) != 0 {
		t.Errorf("result = %+v, want 5 successes", result)
	}
	if len(st.customers) != 5 {
		t.Errorf("store has %d customers, want 5", len(st.customers))
	}
}

func TestSaveCustomersOneFailureDoesNotStopBatch(t *testing.T) {
	st := newFakeStore()
	st.seedCustomer(1, "Existing", "c2@x.com")
	svc := newTestService(st)

	result := svc.SaveCustomers(context.Background(), customerRecords(5))
	if result.SuccessCount != 4 {
		t.Errorf("SuccessCount = %d, want 4", result.SuccessCount)
	}
	if result.FailureCount != 1 {
		t.Errorf("FailureCount = %d, want 1", result.FailureCount)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("Errors = %v, want one entry", result.Errors)
	}
	if !strings.HasPrefix(result.Errors[0], "Customer 'Cust 2':") {
		t.Errorf("Errors[0] = %q, want Customer 'Cust 2' prefix", result.Errors[0])
	}
	if !strings.Contains(result.Errors[0], "already exists") {
		t.Errorf("Errors[0] = %q, want duplicate-email reason", result.Errors[0])
	}
}

func TestSaveCustomersCancellationStopsQuietly(t *testing.T) {
	st := newFakeStore()
	svc := newTestService(st)

	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	st.createCustomerErr = func(arg store.CreateCustomerParams) error {
		attempts++
		if attempts == 3 {
			cancel()
		}
		return nil
	}

	result := svc.SaveCustomers(ctx, customerRecords(10))

	// Records after the cancellation point are never attempted and are not
	// failures; already-committed records stay counted.
	if result.SuccessCount != 3 {
		t.Errorf("SuccessCount = %d, want 3", result.SuccessCount)
	}
	if result.FailureCount != 0 {
		t.Errorf("FailureCount = %d, want 0", result.FailureCount)
	}
	if len(result.Errors) != 0 {
		t.Errorf("Errors = %v, want none", result.Errors)
	}
}

func TestSaveCustomersAbortsWhenStoreUnavailable(t *testing.T) {
	st := newFakeStore()
	svc := newTestService(st)

	attempts := 0
	st.createCustomerErr = func(arg store.CreateCustomerParams) error {
		attempts++
		if attempts == 2 {
			return errors.New("dial tcp 127.0.0.1:5432: connection refused")
		}
		return nil
	}

	result := svc.SaveCustomers(context.Background(), customerRecords(5))
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2 (remainder abandoned)", attempts)
	}
	if result.SuccessCount != 1 {
		t.Errorf("SuccessCount = %d, want 1", result.SuccessCount)
	}
	if result.FailureCount != 1 {
		t.Errorf("FailureCount = %d, want 1", result.FailureCount)
	}
	if len(result.Errors) != 2 {
		t.Fatalf("Errors = %v, want record error plus abort notice", result.Errors)
	}
	if !strings.Contains(result.Errors[1], "database unavailable") {
		t.Errorf("Errors[1] = %q", result.Errors[1])
	}
}

func TestSaveOrders(t *testing.T) {
	st := newFakeStore()
	st.seedCustomer(1, "Acme Corp", "acme@x.com")
	svc := newTestService(st)

	resolved := func(id int32) pgtype.Int4 { return pgtype.Int4{Int32: id, Valid: true} }
	day := pgtype.Date{Time: time.Now().UTC(), Valid: true}

	records := []OrderRecord{
		{ResolvedCustomerID: resolved(1), Quantity: pgtype.Int4{Int32: 5, Valid: true}, OrderDate: day},
		{ResolvedCustomerID: resolved(99), Quantity: pgtype.Int4{Int32: 3, Valid: true}, OrderDate: day},
		{ResolvedCustomerID: resolved(1), Quantity: pgtype.Int4{Int32: 2, Valid: true}, OrderDate: day},
	}

	result := svc.SaveOrders(context.Background(), records)
	if result.SuccessCount != 2 {
		t.Errorf("SuccessCount = %d, want 2", result.SuccessCount)
	}
	if result.FailureCount != 1 {
		t.Errorf("FailureCount = %d, want 1", result.FailureCount)
	}
	if len(result.Errors) != 1 || !strings.HasPrefix(result.Errors[0], "Order for customer ID 99:") {
		t.Errorf("Errors = %v, want order error for customer 99", result.Errors)
	}
	if len(st.orders) != 2 {
		t.Errorf("store has %d orders, want 2", len(st.orders))
	}
}

func TestSaveEmptyBatch(t *testing.T) {
	svc := newTestService(newFakeStore())

	if result := svc.SaveCustomers(context.Background(), nil); result.SuccessCount != 0 || result.FailureCount != 0 {
		t.Errorf("SaveCustomers(nil) = %+v, want zero result", result)
	}
	if result := svc.SaveOrders(context.Background(), nil); result.SuccessCount != 0 || result.FailureCount != 0 {
		t.Errorf("SaveOrders(nil) = %+v, want zero result", result)
	}
}
