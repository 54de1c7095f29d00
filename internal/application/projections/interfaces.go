package projections

import (
	"context"

	"gymdesk/internal/domain/attendance"
	"gymdesk/internal/domain/booking"
	"gymdesk/internal/domain/feedback"
	"gymdesk/internal/domain/fitnessclass"
	"gymdesk/internal/domain/invoice"
	"gymdesk/internal/domain/membershipplan"
	"gymdesk/internal/domain/payment"
)

// Lister returns every record of one kind visible to the signed-in session.
// recordstore.Loader satisfies it.
type Lister[T any] interface {
	List(ctx context.Context) ([]T, error)
}

// AttendanceLister interface for attendance queries.
type AttendanceLister = Lister[attendance.Attendance]

// BookingLister interface for booking queries.
type BookingLister = Lister[booking.Booking]

// ClassLister interface for fitness class queries.
type ClassLister = Lister[fitnessclass.FitnessClass]

// PaymentLister interface for payment queries.
type PaymentLister = Lister[payment.Payment]

// InvoiceLister interface for invoice queries.
type InvoiceLister = Lister[invoice.Invoice]

// FeedbackLister interface for feedback queries.
type FeedbackLister = Lister[feedback.Feedback]

// PlanLister interface for membership plan queries.
type PlanLister = Lister[membershipplan.MembershipPlan]
