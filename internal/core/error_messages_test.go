package core

import (
	"errors"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{name: "nil error", err: nil, wantCode: ""},
		{name: "duplicate email", err: errors.New(`a customer with email "x@y.com" already exists`), wantCode: "DB001"},
		{name: "missing customer", err: errors.New("customer with ID 42 does not exist"), wantCode: "DB002"},
		{name: "quantity constraint", err: errors.New("quantity must be between 1 and 1000"), wantCode: "DB003"},
		{name: "connection refused", err: errors.New("dial tcp: connection refused"), wantCode: "DB004"},
		{name: "timeout", err: errors.New("operation timeout"), wantCode: "DB006"},
		{name: "unreadable file", err: errors.New("Failed to read CSV file: no such file"), wantCode: "FILE001"},
		{name: "oversized file", err: errors.New("file exceeds 100MB limit"), wantCode: "FILE002"},
		{name: "expired session", err: ErrSessionNotFound, wantCode: "SES001"},
		{name: "cancelled request", err: errors.New("context canceled"), wantCode: "SES002"},
		{name: "unknown error falls back", err: errors.New("something novel"), wantCode: "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError(%v).Code = %q, want %q", tt.err, got.Code, tt.wantCode)
			}
		})
	}
}

func TestIsUserFacing(t *testing.T) {
	if IsUserFacing(nil) {
		t.Error("IsUserFacing(nil) = true")
	}
	if IsUserFacing(errors.New("something novel")) {
		t.Error("unmapped error should not be user-facing")
	}
	if !IsUserFacing(errors.New("connection refused")) {
		t.Error("mapped error should be user-facing")
	}
}

func TestMapErrorActionText(t *testing.T) {
	got := MapError(errors.New("connection refused"))
	if got.Message != "Unable to connect to database" {
		t.Errorf("Message = %q", got.Message)
	}
	if got.Action != "Please try again in a few moments" {
		t.Errorf("Action = %q", got.Action)
	}
}
