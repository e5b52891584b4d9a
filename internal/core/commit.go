package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/orderdesk/importer/internal/store"
)

// SaveCustomers persists valid customer records one at a time. Each insert
// runs in its own transaction inside the store, so a rejected record never
// rolls back its siblings. A cancelled context stops the loop; records never
// attempted are not counted as failures. If the store becomes unreachable
// the remainder is abandoned, and records already committed stay committed.
func (s *Service) SaveCustomers(ctx context.Context, records []CustomerRecord) *SaveResult {
	result := &SaveResult{}

	for _, rec := range records {
		if ctx.Err() != nil {
			break
		}

		_, err := s.store.CreateCustomer(ctx, store.CreateCustomerParams{
			Name:    strings.TrimSpace(rec.Name),
			Email:   strings.TrimSpace(rec.Email),
			Phone:   strings.TrimSpace(rec.Phone),
			Address: strings.TrimSpace(rec.Address),
		})
		if err != nil {
			result.FailureCount++
			result.Errors = append(result.Errors,
				fmt.Sprintf("Customer '%s': %v", rec.Name, err))
			s.logger.Error("save customer failed", "name", rec.Name, "error", err)
			if store.IsUnavailable(err) {
				result.Errors = append(result.Errors,
					"Save operation failed: database unavailable")
				break
			}
			continue
		}
		result.SuccessCount++
	}

	s.logger.Info("customer import completed",
		"saved", result.SuccessCount, "failed", result.FailureCount)
	return result
}

// SaveOrders persists valid order records one at a time, with the same
// per-record isolation and cancellation behavior as SaveCustomers. Records
// must already carry a ResolvedCustomerID.
func (s *Service) SaveOrders(ctx context.Context, records []OrderRecord) *SaveResult {
	result := &SaveResult{}

	for _, rec := range records {
		if ctx.Err() != nil {
			break
		}

		_, err := s.store.CreateOrder(ctx, store.CreateOrderParams{
			CustomerID: rec.ResolvedCustomerID.Int32,
			Quantity:   rec.Quantity.Int32,
			OrderDate:  rec.OrderDate.Time,
		})
		if err != nil {
			result.FailureCount++
			result.Errors = append(result.Errors,
				fmt.Sprintf("Order for customer ID %d: %v", rec.ResolvedCustomerID.Int32, err))
			s.logger.Error("save order failed",
				"customer_id", rec.ResolvedCustomerID.Int32, "error", err)
			if store.IsUnavailable(err) {
				result.Errors = append(result.Errors,
					"Save operation failed: database unavailable")
				break
			}
			continue
		}
		result.SuccessCount++
	}

	s.logger.Info("order import completed",
		"saved", result.SuccessCount, "failed", result.FailureCount)
	return result
}
