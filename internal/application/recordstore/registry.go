package recordstore

import (
	"sync"
	"time"

	"gymdesk/internal/domain/attendance"
	"gymdesk/internal/domain/booking"
	"gymdesk/internal/domain/feedback"
	"gymdesk/internal/domain/fitnessclass"
	"gymdesk/internal/domain/invoice"
	"gymdesk/internal/domain/membershipplan"
	"gymdesk/internal/domain/payment"
)

// Set is the group of stores belonging to one session.
type Set struct {
	Invoices    *Store[invoice.Invoice]
	Payments    *Store[payment.Payment]
	Bookings    *Store[booking.Booking]
	Attendance  *Store[attendance.Attendance]
	Classes     *Store[fitnessclass.FitnessClass]
	Plans       *Store[membershipplan.MembershipPlan]
	Feedback    *Store[feedback.Feedback]
	lastTouched time.Time
}

func newSet(ttl time.Duration) *Set {
	return &Set{
		Invoices:   New[invoice.Invoice](ttl),
		Payments:   New[payment.Payment](ttl),
		Bookings:   New[booking.Booking](ttl),
		Attendance: New[attendance.Attendance](ttl),
		Classes:    New[fitnessclass.FitnessClass](ttl),
		Plans:      New[membershipplan.MembershipPlan](ttl),
		Feedback:   New[feedback.Feedback](ttl),
	}
}

// Registry holds one Set per session id.
type Registry struct {
	mu   sync.Mutex
	ttl  time.Duration
	sets map[string]*Set
}

// NewRegistry creates an empty registry whose stores use ttl.
func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{ttl: ttl, sets: make(map[string]*Set)}
}

// For returns the Set for a session, creating it on first use.
// PRE: sessionID is non-empty
func (r *Registry) For(sessionID string) *Set {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sets[sessionID]
	if !ok {
		s = newSet(r.ttl)
		r.sets[sessionID] = s
	}
	s.lastTouched = time.Now()
	return s
}

// Drop discards a session's stores, e.g. on logout.
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sets, sessionID)
}

// Sweep discards sets not touched within idle and returns how many were removed.
func (r *Registry) Sweep(idle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, s := range r.sets {
		if time.Since(s.lastTouched) > idle {
			delete(r.sets, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of sessions with cached data.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sets)
}
