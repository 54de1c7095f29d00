package membershipplan

import (
	"errors"
	"strings"

	"gymdesk/internal/domain/record"
)

// Domain errors
var (
	ErrEmptyName       = errors.New("plan name cannot be empty")
	ErrNegativePrice   = errors.New("plan price cannot be negative")
	ErrInvalidDuration = errors.New("plan duration must be at least one day")
	ErrInvalidCurrency = errors.New("currency must be a three-letter ISO code")
)

// MembershipPlan is a purchasable subscription.
type MembershipPlan struct {
	ID           record.ID `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	PriceCents   int64     `json:"price_cents"`
	Currency     string    `json:"currency"`
	DurationDays int       `json:"duration_days"`
	IsActive     bool      `json:"is_active"`
}

// RecordID returns the backend identifier.
func (p MembershipPlan) RecordID() string { return p.ID.String() }

// Validate checks form input before it is sent to the backend.
// PRE: MembershipPlan populated from a form
// POST: Returns error if validation fails, nil otherwise
func (p MembershipPlan) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if p.PriceCents < 0 {
		return ErrNegativePrice
	}
	if p.DurationDays < 1 {
		return ErrInvalidDuration
	}
	if p.Currency != "" && len(p.Currency) != 3 {
		return ErrInvalidCurrency
	}
	return nil
}

// BillingPeriod describes the plan length for display.
func (p MembershipPlan) BillingPeriod() string {
	switch {
	case p.DurationDays == 7:
		return "week"
	case p.DurationDays >= 28 && p.DurationDays <= 31:
		return "month"
	case p.DurationDays >= 365 && p.DurationDays <= 366:
		return "year"
	case p.DurationDays == 1:
		return "day"
	}
	return ""
}
