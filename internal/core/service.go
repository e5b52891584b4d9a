package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionTTL is how long an uncommitted import session is kept before it is
// dropped.
var SessionTTL = 30 * time.Minute

// ErrSessionNotFound is returned when a session ID is unknown or expired.
var ErrSessionNotFound = errors.New("import session not found")

// Service runs import previews and commits against an EntityStore.
type Service struct {
	store  EntityStore
	logger *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*ImportSession
}

// ImportSession holds a preview between the preview and commit phases.
// Exactly one of Customers or Orders is set, matching Kind.
type ImportSession struct {
	ID        string
	Kind      RecordKind
	FileName  string
	CreatedAt time.Time

	Customers *ImportPreview[CustomerRecord]
	Orders    *ImportPreview[OrderRecord]

	timer *time.Timer
}

// NewService creates a Service backed by the given store.
func NewService(st EntityStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    st,
		logger:   logger,
		sessions: make(map[string]*ImportSession),
	}
}

// ImportCustomers builds a preview from raw CSV bytes. Nothing is persisted;
// calling it repeatedly with the same input yields the same preview.
func (s *Service) ImportCustomers(ctx context.Context, data []byte, hasHeader bool) *ImportPreview[CustomerRecord] {
	preview := &ImportPreview[CustomerRecord]{}

	records, err := ParseRecords(data, hasHeader, CustomerSchema())
	if err != nil {
		preview.FileErrors = append(preview.FileErrors,
			fmt.Sprintf("Failed to read CSV file: %v", err))
		return preview
	}

	preview.TotalRecords = len(records)
	for i := range records {
		ValidateCustomer(&records[i])
		if records[i].Valid() {
			preview.ValidRecords = append(preview.ValidRecords, records[i])
		} else {
			preview.InvalidRecords = append(preview.InvalidRecords, records[i])
		}
	}

	s.logger.Info("customer preview built",
		"total", preview.TotalRecords,
		"valid", len(preview.ValidRecords),
		"invalid", len(preview.InvalidRecords))
	return preview
}

// ImportOrders builds a preview from raw CSV bytes. The customer snapshot is
// fetched once, before any row resolution, so every row resolves against the
// same view. Resolver and validator violations accumulate independently.
func (s *Service) ImportOrders(ctx context.Context, data []byte, hasHeader bool) *ImportPreview[OrderRecord] {
	preview := &ImportPreview[OrderRecord]{}

	records, err := ParseRecords(data, hasHeader, OrderSchema())
	if err != nil {
		preview.FileErrors = append(preview.FileErrors,
			fmt.Sprintf("Failed to read CSV file: %v", err))
		return preview
	}

	snap, err := BuildCustomerSnapshot(ctx, s.store)
	if err != nil {
		preview.FileErrors = append(preview.FileErrors,
			fmt.Sprintf("Failed to load customers: %v", err))
		return preview
	}

	now := time.Now().UTC()
	preview.TotalRecords = len(records)
	for i := range records {
		snap.Resolve(&records[i])
		ValidateOrder(&records[i], now)
		if records[i].Valid() {
			preview.ValidRecords = append(preview.ValidRecords, records[i])
		} else {
			preview.InvalidRecords = append(preview.InvalidRecords, records[i])
		}
	}

	s.logger.Info("order preview built",
		"total", preview.TotalRecords,
		"valid", len(preview.ValidRecords),
		"invalid", len(preview.InvalidRecords),
		"known_customers", snap.Len())
	return preview
}

// ImportCustomersFile reads a CSV file from disk and builds a preview.
// Read failures are demoted to file errors on the preview.
func (s *Service) ImportCustomersFile(ctx context.Context, path string, hasHeader bool) *ImportPreview[CustomerRecord] {
	data, err := readCSVFile(path)
	if err != nil {
		return &ImportPreview[CustomerRecord]{
			FileErrors: []string{fmt.Sprintf("Failed to read CSV file: %v", err)},
		}
	}
	return s.ImportCustomers(ctx, data, hasHeader)
}

// ImportOrdersFile reads a CSV file from disk and builds a preview.
func (s *Service) ImportOrdersFile(ctx context.Context, path string, hasHeader bool) *ImportPreview[OrderRecord] {
	data, err := readCSVFile(path)
	if err != nil {
		return &ImportPreview[OrderRecord]{
			FileErrors: []string{fmt.Sprintf("Failed to read CSV file: %v", err)},
		}
	}
	return s.ImportOrders(ctx, data, hasHeader)
}

func readCSVFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("file exceeds %dMB limit", MaxFileSize/(1024*1024))
	}
	return os.ReadFile(path)
}

// StartCustomerImport builds a preview and tracks it under a new session ID
// so the caller can inspect it and then commit exactly the records it saw.
func (s *Service) StartCustomerImport(ctx context.Context, data []byte, hasHeader bool, fileName string) *ImportSession {
	sess := &ImportSession{
		ID:        uuid.New().String(),
		Kind:      KindCustomers,
		FileName:  fileName,
		CreatedAt: time.Now(),
		Customers: s.ImportCustomers(ctx, data, hasHeader),
	}
	s.track(sess)
	return sess
}

// StartOrderImport builds an order preview and tracks it as a session.
func (s *Service) StartOrderImport(ctx context.Context, data []byte, hasHeader bool, fileName string) *ImportSession {
	sess := &ImportSession{
		ID:        uuid.New().String(),
		Kind:      KindOrders,
		FileName:  fileName,
		CreatedAt: time.Now(),
		Orders:    s.ImportOrders(ctx, data, hasHeader),
	}
	s.track(sess)
	return sess
}

// Session returns a tracked session by ID.
func (s *Service) Session(id string) (*ImportSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// AbandonSession drops a session without committing. Previews perform no
// writes, so there is nothing else to clean up.
func (s *Service) AbandonSession(id string) bool {
	_, ok := s.claim(id)
	return ok
}

// claim removes a session from the map and returns it. Exactly one caller
// can claim a given ID, so concurrent commits of the same session cannot
// both persist its records.
func (s *Service) claim(id string) (*ImportSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if sess.timer != nil {
		sess.timer.Stop()
	}
	delete(s.sessions, id)
	return sess, true
}

// CommitSession persists the valid records of a tracked session. The session
// is claimed before any write, so it is dropped regardless of outcome and a
// second commit of the same ID gets ErrSessionNotFound.
func (s *Service) CommitSession(ctx context.Context, id string) (*SaveResult, error) {
	sess, ok := s.claim(id)
	if !ok {
		return nil, ErrSessionNotFound
	}

	switch sess.Kind {
	case KindCustomers:
		return s.SaveCustomers(ctx, sess.Customers.ValidRecords), nil
	case KindOrders:
		return s.SaveOrders(ctx, sess.Orders.ValidRecords), nil
	default:
		return nil, fmt.Errorf("unknown import kind: %s", sess.Kind)
	}
}

// track registers the session and schedules its expiry.
func (s *Service) track(sess *ImportSession) {
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	sess.timer = time.AfterFunc(SessionTTL, func() {
		s.mu.Lock()
		delete(s.sessions, sess.ID)
		s.mu.Unlock()
	})
}
