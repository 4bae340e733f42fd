package order

import (
	"strings"

	"quickinvoice/internal/core/apperror"
)

// Status is the order lifecycle state.
type Status string

const (
	StatusUnpaid    Status = "unpaid"
	StatusPaid      Status = "paid"
	StatusDelivered Status = "delivered"
)

// Severity is a presentation tag for a status; renderers map it to colors.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
)

// AllStatuses lists every representable status in lifecycle order.
func AllStatuses() []Status {
	return []Status{StatusUnpaid, StatusPaid, StatusDelivered}
}

// ParseStatus converts external input into a Status.
// Anything outside the closed set is a validation error.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", apperror.NewValidation("unknown order status").
			WithDetail("field", "status").
			WithDetail("value", s)
	}
	return st, nil
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusUnpaid, StatusPaid, StatusDelivered:
		return true
	}
	return false
}

// Label is the badge text printed on invoices.
func (s Status) Label() string {
	switch s {
	case StatusPaid:
		return "PAID"
	case StatusDelivered:
		return "DELIVERED"
	default:
		return "UNPAID"
	}
}

// Severity returns the presentation tag for the status badge.
func (s Status) Severity() Severity {
	switch s {
	case StatusPaid:
		return SeveritySuccess
	case StatusDelivered:
		return SeverityInfo
	default:
		return SeverityWarning
	}
}

// rank orders statuses along the forward lifecycle.
func (s Status) rank() int {
	switch s {
	case StatusPaid:
		return 1
	case StatusDelivered:
		return 2
	default:
		return 0
	}
}
