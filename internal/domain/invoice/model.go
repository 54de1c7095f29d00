package invoice

import (
	"errors"
	"fmt"
	"time"

	"gymdesk/internal/domain/record"
)

// Status values reported by the backend.
const (
	StatusDraft     = "DRAFT"
	StatusPending   = "PENDING"
	StatusPaid      = "PAID"
	StatusCancelled = "CANCELLED"
)

// Statuses lists every invoice status in lifecycle order.
var Statuses = []string{StatusDraft, StatusPending, StatusPaid, StatusCancelled}

// transitions is the DRAFT -> PENDING -> PAID | CANCELLED lifecycle.
var transitions = map[string][]string{
	StatusDraft:   {StatusPending, StatusCancelled},
	StatusPending: {StatusPaid, StatusCancelled},
}

// Domain errors
var (
	ErrInvalidStatus     = errors.New("invoice status is not recognised")
	ErrInvalidTransition = errors.New("invoice status change is not allowed")
	ErrNegativeTotal     = errors.New("invoice total cannot be negative")
)

// Metadata links an invoice to what it bills for. Extra keys are kept in Extra.
type Metadata struct {
	PaymentType    string            `json:"payment_type"`
	BookingID      string            `json:"booking_id,omitempty"`
	SubscriptionID string            `json:"subscription_id,omitempty"`
	Description    string            `json:"description,omitempty"`
	Extra          map[string]string `json:"-"`
}

// Invoice is a server-issued billing document for a booking or subscription.
type Invoice struct {
	ID         record.ID   `json:"id"`
	Number     string      `json:"number"`
	Member     record.Ref  `json:"member"`
	IssueDate  record.Date `json:"issue_date"`
	DueDate    record.Date `json:"due_date"`
	TotalCents int64       `json:"total_cents"`
	Currency   string      `json:"currency"`
	Status     string      `json:"status"`
	Notes      string      `json:"notes,omitempty"`
	Metadata   Metadata    `json:"metadata"`
}

// RecordID returns the backend identifier.
func (i Invoice) RecordID() string { return i.ID.String() }

// Validate checks the invariants the UI relies on.
// PRE: Invoice decoded from the backend
// POST: Returns error if total is negative or status unknown
// INVARIANT: DueDate >= IssueDate is assumed but not enforced here
func (i Invoice) Validate() error {
	if i.TotalCents < 0 {
		return ErrNegativeTotal
	}
	if !IsValidStatus(i.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// NaturalKey returns the invoice number, falling back to the id.
func (i Invoice) NaturalKey() string {
	if i.Number != "" {
		return i.Number
	}
	return i.ID.String()
}

// IsOpen reports whether the invoice still expects payment.
func (i Invoice) IsOpen() bool {
	return i.Status == StatusDraft || i.Status == StatusPending
}

// IsOverdue reports whether an open invoice is past its due date on the given day.
func (i Invoice) IsOverdue(today time.Time) bool {
	if !i.IsOpen() || i.DueDate.IsZero() {
		return false
	}
	y, m, d := today.Date()
	return i.DueDate.Before(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// LineItemDescription describes what the invoice bills for.
func (i Invoice) LineItemDescription() string {
	if i.Metadata.Description != "" {
		return i.Metadata.Description
	}
	switch {
	case i.Metadata.PaymentType == "subscription" && i.Metadata.SubscriptionID != "":
		return fmt.Sprintf("Membership subscription #%s", i.Metadata.SubscriptionID)
	case i.Metadata.PaymentType == "subscription":
		return "Membership subscription"
	case i.Metadata.PaymentType == "booking" && i.Metadata.BookingID != "":
		return fmt.Sprintf("Class booking #%s", i.Metadata.BookingID)
	case i.Metadata.PaymentType == "booking":
		return "Class booking"
	}
	return "Gym services"
}

// CanTransition reports whether an invoice may move from one status to another.
// PRE: from and to are invoice statuses
// POST: Returns nil if the lifecycle allows the change
func CanTransition(from, to string) error {
	if !IsValidStatus(to) {
		return ErrInvalidStatus
	}
	for _, next := range transitions[from] {
		if next == to {
			return nil
		}
	}
	return ErrInvalidTransition
}

// NextStatuses returns the statuses reachable from the given one.
func NextStatuses(from string) []string {
	return transitions[from]
}

// IsValidStatus reports whether s is a known invoice status.
func IsValidStatus(s string) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}
