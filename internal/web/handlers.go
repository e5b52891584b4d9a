package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/orderdesk/importer/internal/core"
	"github.com/orderdesk/importer/internal/store"
)

// sessionResponse is the JSON shape returned for import sessions.
// Preview holds the kind-specific ImportPreview.
type sessionResponse struct {
	SessionID string          `json:"session_id"`
	Kind      core.RecordKind `json:"kind"`
	FileName  string          `json:"file_name"`
	CreatedAt time.Time       `json:"created_at"`
	Preview   any             `json:"preview"`
}

func toSessionResponse(sess *core.ImportSession) sessionResponse {
	resp := sessionResponse{
		SessionID: sess.ID,
		Kind:      sess.Kind,
		FileName:  sess.FileName,
		CreatedAt: sess.CreatedAt,
	}
	switch sess.Kind {
	case core.KindCustomers:
		resp.Preview = sess.Customers
	case core.KindOrders:
		resp.Preview = sess.Orders
	}
	return resp
}

// handleStartImport parses an uploaded CSV, builds a preview, and opens an
// import session. Nothing is persisted until the session is committed.
func (s *Server) handleStartImport(w http.ResponseWriter, r *http.Request) {
	kind := core.RecordKind(chi.URLParam(r, "kind"))
	if kind != core.KindCustomers && kind != core.KindOrders {
		s.respondErrorStatus(w, r, fmt.Errorf("unknown import kind %q", kind), http.StatusBadRequest)
		return
	}

	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		s.respondErrorStatus(w, r, fmt.Errorf("file exceeds %dMB limit", maxSize/(1024*1024)), http.StatusRequestEntityTooLarge)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondErrorStatus(w, r, errors.New("no file provided"), http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondErrorStatus(w, r, fmt.Errorf("Failed to read CSV file: %v", err), http.StatusBadRequest)
		return
	}

	// Files without a header row are accepted with has_header=false; columns
	// are then taken positionally.
	hasHeader := true
	if v := r.FormValue("has_header"); v != "" {
		hasHeader, err = strconv.ParseBool(v)
		if err != nil {
			s.respondErrorStatus(w, r, fmt.Errorf("invalid has_header value %q", v), http.StatusBadRequest)
			return
		}
	}

	var sess *core.ImportSession
	if kind == core.KindCustomers {
		sess = s.service.StartCustomerImport(r.Context(), data, hasHeader, header.Filename)
	} else {
		sess = s.service.StartOrderImport(r.Context(), data, hasHeader, header.Filename)
	}

	writeJSON(w, http.StatusCreated, toSessionResponse(sess))
}

// handleGetSession returns the preview for an open import session.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.service.Session(chi.URLParam(r, "sessionID"))
	if !ok {
		s.respondError(w, r, core.ErrSessionNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

// handleCommitSession saves the valid records of a session and returns the
// per-record outcome. The session is dropped afterwards.
func (s *Server) handleCommitSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Import.CommitTimeout)
	defer cancel()

	result, err := s.service.CommitSession(ctx, chi.URLParam(r, "sessionID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleAbandonSession discards an open session without saving anything.
func (s *Server) handleAbandonSession(w http.ResponseWriter, r *http.Request) {
	if !s.service.AbandonSession(chi.URLParam(r, "sessionID")) {
		s.respondError(w, r, core.ErrSessionNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListCustomers returns all customers, or a single customer matched by
// the optional name query parameter.
func (s *Server) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	if name := r.URL.Query().Get("name"); name != "" {
		customer, err := s.db.CustomerByName(r.Context(), name)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, []store.Customer{*customer})
		return
	}

	customers, err := s.db.ListCustomers(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if customers == nil {
		customers = []store.Customer{}
	}
	writeJSON(w, http.StatusOK, customers)
}

func (s *Server) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "customerID")
	if err != nil {
		s.respondErrorStatus(w, r, err, http.StatusBadRequest)
		return
	}

	customer, err := s.db.CustomerByID(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

// handleCustomerOrders returns a customer's active orders.
func (s *Server) handleCustomerOrders(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "customerID")
	if err != nil {
		s.respondErrorStatus(w, r, err, http.StatusBadRequest)
		return
	}

	if _, err := s.db.CustomerByID(r.Context(), id); err != nil {
		s.respondError(w, r, err)
		return
	}

	orders, err := s.db.OrdersByCustomer(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if orders == nil {
		orders = []store.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

// handleListOrders returns active orders, or all orders when
// include_deleted=true.
func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	var (
		orders []store.Order
		err    error
	)
	if r.URL.Query().Get("include_deleted") == "true" {
		orders, err = s.db.ListAllOrders(r.Context())
	} else {
		orders, err = s.db.ListActiveOrders(r.Context())
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if orders == nil {
		orders = []store.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "orderID")
	if err != nil {
		s.respondErrorStatus(w, r, err, http.StatusBadRequest)
		return
	}

	order, err := s.db.OrderByID(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// handleDeleteOrder soft-deletes an order. The row stays in the database and
// can be restored.
func (s *Server) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "orderID")
	if err != nil {
		s.respondErrorStatus(w, r, err, http.StatusBadRequest)
		return
	}

	if err := s.db.SoftDeleteOrder(r.Context(), id); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRestoreOrder brings a soft-deleted order back.
func (s *Server) handleRestoreOrder(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "orderID")
	if err != nil {
		s.respondErrorStatus(w, r, err, http.StatusBadRequest)
		return
	}

	if err := s.db.RestoreOrder(r.Context(), id); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "restored"})
}

// statsResponse aggregates headline counts for the dashboard.
type statsResponse struct {
	Customers     int64 `json:"customers"`
	ActiveOrders  int64 `json:"active_orders"`
	TotalQuantity int64 `json:"total_quantity"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	var (
		stats statsResponse
		err   error
	)
	if stats.Customers, err = s.db.CountCustomers(r.Context()); err != nil {
		s.respondError(w, r, err)
		return
	}
	if stats.ActiveOrders, err = s.db.CountActiveOrders(r.Context()); err != nil {
		s.respondError(w, r, err)
		return
	}
	if stats.TotalQuantity, err = s.db.TotalOrderQuantity(r.Context()); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		s.respondErrorStatus(w, r, err, http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// idParam parses a positive int32 URL parameter.
func idParam(r *http.Request, name string) (int32, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return int32(id), nil
}
