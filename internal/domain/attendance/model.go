package attendance

import (
	"time"

	"gymdesk/internal/domain/record"
)

// Status values reported by the backend.
const (
	StatusPresent = "PRESENT"
	StatusAbsent  = "ABSENT"
	StatusLate    = "LATE"
)

// Statuses lists every attendance status in display order.
var Statuses = []string{StatusPresent, StatusAbsent, StatusLate}

// Attendance is a staff-marked record of a member at a class.
type Attendance struct {
	ID           record.ID  `json:"id"`
	Booking      record.ID  `json:"booking,omitempty"`
	Member       record.Ref `json:"member"`
	FitnessClass record.Ref `json:"fitness_class"`
	Status       string     `json:"status"`
	MarkedAt     time.Time  `json:"marked_at"`
}

// RecordID returns the backend identifier.
func (a Attendance) RecordID() string { return a.ID.String() }

// Attended reports whether the member turned up, late or not.
func (a Attendance) Attended() bool {
	return a.Status == StatusPresent || a.Status == StatusLate
}

// IsValidStatus reports whether s is a known attendance status.
func IsValidStatus(s string) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}
