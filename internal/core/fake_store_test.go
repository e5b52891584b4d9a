package core

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/orderdesk/importer/internal/store"
)

// fakeStore is an in-memory EntityStore for pipeline tests.
type fakeStore struct {
	mu        sync.Mutex
	customers []store.Customer
	orders    []store.Order
	nextID    int32

	// Optional error hooks. When set they run before the default behavior
	// and a non-nil return aborts the call.
	listCustomersErr  error
	createCustomerErr func(arg store.CreateCustomerParams) error
	createOrderErr    func(arg store.CreateOrderParams) error
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1}
}

func (f *fakeStore) seedCustomer(id int32, name, email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.customers = append(f.customers, store.Customer{
		ID: id, Name: name, Email: email, CreatedAt: time.Now(),
	})
	if id >= f.nextID {
		f.nextID = id + 1
	}
}

func (f *fakeStore) ListCustomers(ctx context.Context) ([]store.Customer, error) {
	if f.listCustomersErr != nil {
		return nil, f.listCustomersErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]store.Customer, len(f.customers))
	copy(out, f.customers)
	return out, nil
}

func (f *fakeStore) CustomerByID(ctx context.Context, id int32) (*store.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.customers {
		if f.customers[i].ID == id {
			c := f.customers[i]
			return &c, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) CustomerByName(ctx context.Context, name string) (*store.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.customers {
		if strings.EqualFold(f.customers[i].Name, name) {
			c := f.customers[i]
			return &c, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) CustomerByEmail(ctx context.Context, email string) (*store.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.customers {
		if strings.EqualFold(f.customers[i].Email, email) {
			c := f.customers[i]
			return &c, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) CreateCustomer(ctx context.Context, arg store.CreateCustomerParams) (*store.Customer, error) {
	if f.createCustomerErr != nil {
		if err := f.createCustomerErr(arg); err != nil {
			return nil, err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.customers {
		if strings.EqualFold(f.customers[i].Email, arg.Email) {
			return nil, &store.DuplicateEmailError{Email: arg.Email}
		}
	}
	c := store.Customer{
		ID:        f.nextID,
		Name:      arg.Name,
		Email:     arg.Email,
		Phone:     arg.Phone,
		Address:   arg.Address,
		CreatedAt: time.Now(),
	}
	f.nextID++
	f.customers = append(f.customers, c)
	return &c, nil
}

func (f *fakeStore) CreateOrder(ctx context.Context, arg store.CreateOrderParams) (*store.Order, error) {
	if f.createOrderErr != nil {
		if err := f.createOrderErr(arg); err != nil {
			return nil, err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	found := false
	for i := range f.customers {
		if f.customers[i].ID == arg.CustomerID {
			found = true
			break
		}
	}
	if !found {
		return nil, &store.InvalidReferenceError{CustomerID: arg.CustomerID}
	}
	o := store.Order{
		ID:         int32(len(f.orders) + 1),
		CustomerID: arg.CustomerID,
		Quantity:   arg.Quantity,
		OrderDate:  arg.OrderDate,
		CreatedAt:  time.Now(),
	}
	f.orders = append(f.orders, o)
	return &o, nil
}
