package booking

import (
	"time"

	"gymdesk/internal/domain/record"
)

// Status values reported by the backend.
const (
	StatusBooked    = "BOOKED"
	StatusCancelled = "CANCELLED"
	StatusAttended  = "ATTENDED"
	StatusNoShow    = "NO_SHOW"
)

// Statuses lists every booking status in display order.
var Statuses = []string{StatusBooked, StatusCancelled, StatusAttended, StatusNoShow}

// Booking is a member's reservation of a place in a class.
type Booking struct {
	ID           record.ID  `json:"id"`
	Member       record.Ref `json:"member"`
	FitnessClass record.Ref `json:"fitness_class"`
	Status       string     `json:"status"`
	BookedAt     time.Time  `json:"booked_at"`
	ClassStart   *time.Time `json:"class_start,omitempty"`
}

// RecordID returns the backend identifier.
func (b Booking) RecordID() string { return b.ID.String() }

// IsCancellable reports whether the member may still cancel the booking.
// PRE: now is the current time
// POST: true only for BOOKED bookings whose class has not started
func (b Booking) IsCancellable(now time.Time) bool {
	if b.Status != StatusBooked {
		return false
	}
	return b.ClassStart == nil || now.Before(*b.ClassStart)
}

// IsValidStatus reports whether s is a known booking status.
func IsValidStatus(s string) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}
