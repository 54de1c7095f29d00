package projections

import (
	"cmp"
	"context"
	"slices"
	"time"

	"gymdesk/internal/domain/account"
	"gymdesk/internal/domain/attendance"
	"gymdesk/internal/domain/booking"
	"gymdesk/internal/domain/feedback"
	"gymdesk/internal/domain/fitnessclass"
	"gymdesk/internal/domain/invoice"
	"gymdesk/internal/domain/payment"
)

// recentLimit caps the "recent" panels on every dashboard.
const recentLimit = 5

// Money is a total in one currency.
type Money struct {
	Currency string
	Cents    int64
}

// AdminDashboard is the admin's overview.
type AdminDashboard struct {
	BookingsToday   int
	PendingInvoices int
	Revenue         []Money
	NewFeedback     int
	RecentPayments  []payment.Payment
}

// StaffDashboard is the staff overview of today's floor.
type StaffDashboard struct {
	TodaysClasses    []fitnessclass.FitnessClass
	AttendanceCounts map[string]int
	RecentAttendance []attendance.Attendance
}

// MemberDashboard is the member's own overview.
type MemberDashboard struct {
	UpcomingBookings []booking.Booking
	OpenInvoices     []invoice.Invoice
	RecentPayments   []payment.Payment
}

// GetDashboardQuery carries input for the dashboard projection.
type GetDashboardQuery struct {
	User account.User
	Now  time.Time
	Loc  *time.Location
}

// GetDashboardResult carries the dashboard for the user's role. Exactly one of
// Admin, Staff or Member is set.
type GetDashboardResult struct {
	Role   string
	Admin  *AdminDashboard
	Staff  *StaffDashboard
	Member *MemberDashboard
}

// GetDashboardDeps holds dependencies for the dashboard projection.
type GetDashboardDeps struct {
	Bookings   BookingLister
	Attendance AttendanceLister
	Classes    ClassLister
	Payments   PaymentLister
	Invoices   InvoiceLister
	Feedback   FeedbackLister
}

// QueryGetDashboard builds the dashboard for the signed-in user's role.
// PRE: query.User.Role is a valid role
// POST: Returns the role's dashboard; "today" is the calendar day of Now in Loc
func QueryGetDashboard(ctx context.Context, query GetDashboardQuery, deps GetDashboardDeps) (GetDashboardResult, error) {
	if query.Loc == nil {
		query.Loc = time.UTC
	}
	result := GetDashboardResult{Role: query.User.Role}
	var err error
	switch query.User.Role {
	case account.RoleAdmin:
		result.Admin, err = adminDashboard(ctx, query, deps)
	case account.RoleStaff:
		result.Staff, err = staffDashboard(ctx, query, deps)
	default:
		result.Member, err = memberDashboard(ctx, query, deps)
	}
	return result, err
}

func adminDashboard(ctx context.Context, q GetDashboardQuery, deps GetDashboardDeps) (*AdminDashboard, error) {
	bookings, err := deps.Bookings.List(ctx)
	if err != nil {
		return nil, err
	}
	invoices, err := deps.Invoices.List(ctx)
	if err != nil {
		return nil, err
	}
	payments, err := deps.Payments.List(ctx)
	if err != nil {
		return nil, err
	}
	fb, err := deps.Feedback.List(ctx)
	if err != nil {
		return nil, err
	}

	d := &AdminDashboard{}
	for _, b := range bookings {
		if sameDay(b.BookedAt, q.Now, q.Loc) {
			d.BookingsToday++
		}
	}
	for _, inv := range invoices {
		if inv.Status == invoice.StatusPending {
			d.PendingInvoices++
		}
	}
	d.Revenue = revenue(payments)
	for _, f := range fb {
		if f.Status == feedback.StatusNew {
			d.NewFeedback++
		}
	}
	d.RecentPayments = recentPayments(payments)
	return d, nil
}

func staffDashboard(ctx context.Context, q GetDashboardQuery, deps GetDashboardDeps) (*StaffDashboard, error) {
	classes, err := deps.Classes.List(ctx)
	if err != nil {
		return nil, err
	}
	marks, err := deps.Attendance.List(ctx)
	if err != nil {
		return nil, err
	}

	d := &StaffDashboard{AttendanceCounts: make(map[string]int, len(attendance.Statuses))}
	for _, s := range attendance.Statuses {
		d.AttendanceCounts[s] = 0
	}
	for _, c := range classes {
		if c.IsActive && sameDay(c.StartTime, q.Now, q.Loc) {
			d.TodaysClasses = append(d.TodaysClasses, c)
		}
	}
	slices.SortStableFunc(d.TodaysClasses, func(a, b fitnessclass.FitnessClass) int { return a.StartTime.Compare(b.StartTime) })

	var today []attendance.Attendance
	for _, a := range marks {
		if sameDay(a.MarkedAt, q.Now, q.Loc) {
			d.AttendanceCounts[a.Status]++
			today = append(today, a)
		}
	}
	slices.SortStableFunc(today, func(a, b attendance.Attendance) int { return b.MarkedAt.Compare(a.MarkedAt) })
	d.RecentAttendance = head(today, recentLimit)
	return d, nil
}

func memberDashboard(ctx context.Context, q GetDashboardQuery, deps GetDashboardDeps) (*MemberDashboard, error) {
	bookings, err := deps.Bookings.List(ctx)
	if err != nil {
		return nil, err
	}
	invoices, err := deps.Invoices.List(ctx)
	if err != nil {
		return nil, err
	}
	payments, err := deps.Payments.List(ctx)
	if err != nil {
		return nil, err
	}

	own := ListQuery{MemberID: q.User.ID.String()}
	d := &MemberDashboard{}
	for _, b := range bookings {
		if ownedBy(own, b.Member) && b.IsCancellable(q.Now) {
			d.UpcomingBookings = append(d.UpcomingBookings, b)
		}
	}
	slices.SortStableFunc(d.UpcomingBookings, func(a, b booking.Booking) int {
		return optionalTime(a.ClassStart).Compare(optionalTime(b.ClassStart))
	})
	for _, inv := range invoices {
		if ownedBy(own, inv.Member) && inv.IsOpen() {
			d.OpenInvoices = append(d.OpenInvoices, inv)
		}
	}
	slices.SortStableFunc(d.OpenInvoices, func(a, b invoice.Invoice) int { return a.DueDate.Compare(b.DueDate.Time) })
	d.RecentPayments = recentPayments(payments)
	return d, nil
}

// revenue sums PAID payments per currency, ordered by currency code.
func revenue(payments []payment.Payment) []Money {
	totals := make(map[string]int64)
	for _, p := range payments {
		if p.IsPaid() {
			totals[p.Currency] += p.AmountCents
		}
	}
	out := make([]Money, 0, len(totals))
	for code, cents := range totals {
		out = append(out, Money{Currency: code, Cents: cents})
	}
	slices.SortFunc(out, func(a, b Money) int { return cmp.Compare(a.Currency, b.Currency) })
	return out
}

// recentPayments returns the newest payments by paid_at, unpaid ones last.
func recentPayments(payments []payment.Payment) []payment.Payment {
	sorted := slices.Clone(payments)
	slices.SortStableFunc(sorted, func(a, b payment.Payment) int {
		return optionalTime(b.PaidAt).Compare(optionalTime(a.PaidAt))
	})
	return head(sorted, recentLimit)
}

func sameDay(t, now time.Time, loc *time.Location) bool {
	if t.IsZero() {
		return false
	}
	y1, m1, d1 := t.In(loc).Date()
	y2, m2, d2 := now.In(loc).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
