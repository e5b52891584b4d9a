package core

import (
	"regexp"
	"time"
	"unicode/utf8"
)

// Field length limits match the persisted column sizes.
const (
	maxNameLen  = 100
	maxEmailLen = 100
)

// emailRegex accepts local@domain.tld with no whitespace on either side
// of the @.
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateCustomer runs every customer field rule and accumulates
// violations. Rules never short-circuit; a record can carry several
// violations at once.
func ValidateCustomer(rec *CustomerRecord) {
	rec.Violations = nil

	if rec.Name == "" {
		rec.Violations = append(rec.Violations, "Name is required")
	} else if utf8.RuneCountInString(rec.Name) > maxNameLen {
		rec.Violations = append(rec.Violations, "Name cannot exceed 100 characters")
	}

	if rec.Email == "" {
		rec.Violations = append(rec.Violations, "Email is required")
	} else if utf8.RuneCountInString(rec.Email) > maxEmailLen {
		rec.Violations = append(rec.Violations, "Email cannot exceed 100 characters")
	} else if !emailRegex.MatchString(rec.Email) {
		rec.Violations = append(rec.Violations, "Email format is invalid")
	}

	if rec.Phone == "" {
		rec.Violations = append(rec.Violations, "Phone is required")
	}

	if rec.Address == "" {
		rec.Violations = append(rec.Violations, "Address is required")
	}
}

// ValidateOrder runs the order field rules, appending to any violations the
// resolver already recorded. The customer-reference presence rule lives in
// the resolver, which always runs for orders, so it is not duplicated here.
// now anchors the one-year date window so tests stay deterministic.
func ValidateOrder(rec *OrderRecord, now time.Time) {
	if !rec.Quantity.Valid {
		rec.Violations = append(rec.Violations, "Quantity is required")
	} else if rec.Quantity.Int32 < 1 || rec.Quantity.Int32 > 1000 {
		rec.Violations = append(rec.Violations, "Quantity must be between 1 and 1000")
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch {
	case !rec.OrderDate.Valid:
		rec.Violations = append(rec.Violations, "Order Date is required")
	case rec.OrderDate.Time.After(today):
		rec.Violations = append(rec.Violations, "Order Date cannot be in the future")
	case rec.OrderDate.Time.Before(today.AddDate(0, 0, -365)):
		rec.Violations = append(rec.Violations, "Order Date cannot be more than one year ago")
	}
}
