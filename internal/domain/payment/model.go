package payment

import (
	"errors"
	"time"

	"gymdesk/internal/domain/record"
)

// Status values reported by the backend.
const (
	StatusPending   = "PENDING"
	StatusPaid      = "PAID"
	StatusFailed    = "FAILED"
	StatusRefunded  = "REFUNDED"
	StatusCancelled = "CANCELLED"
)

// Payment types carried in metadata.
const (
	TypeBooking      = "booking"
	TypeSubscription = "subscription"
)

// Statuses lists every payment status in display order.
var Statuses = []string{StatusPending, StatusPaid, StatusFailed, StatusRefunded, StatusCancelled}

// Domain errors
var (
	ErrNegativeAmount = errors.New("payment amount cannot be negative")
	ErrInvalidStatus  = errors.New("payment status is not recognised")
)

// Metadata links a payment to what it paid for.
type Metadata struct {
	PaymentType  string `json:"payment_type"`
	Invoice      string `json:"invoice,omitempty"`
	Booking      string `json:"booking,omitempty"`
	Subscription string `json:"subscription,omitempty"`
}

// Payment is a record of funds received, or attempted, against an invoice.
type Payment struct {
	ID          record.ID  `json:"id"`
	Reference   string     `json:"reference"`
	AmountCents int64      `json:"amount_cents"`
	Currency    string     `json:"currency"`
	Status      string     `json:"status"`
	PaidAt      *time.Time `json:"paid_at"`
	Metadata    Metadata   `json:"metadata"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

// RecordID returns the backend identifier.
func (p Payment) RecordID() string { return p.ID.String() }

// Validate checks the invariants the UI relies on.
// PRE: Payment decoded from the backend
// POST: Returns error if amount is negative or status unknown
// INVARIANT: AmountCents is a non-negative count of minor units
func (p Payment) Validate() error {
	if p.AmountCents < 0 {
		return ErrNegativeAmount
	}
	if !IsValidStatus(p.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// IsPaid reports whether the payment settled.
func (p Payment) IsPaid() bool {
	return p.Status == StatusPaid
}

// NaturalKey returns the reference, falling back to the id.
func (p Payment) NaturalKey() string {
	if p.Reference != "" {
		return p.Reference
	}
	return p.ID.String()
}

// IsValidStatus reports whether s is a known payment status.
func IsValidStatus(s string) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}
