package web

import (
	"errors"
	"net/http"
	"time"

	"gymdesk/internal/adapters/api"
	"gymdesk/internal/application/projections"
	"gymdesk/internal/domain/attendance"
	"gymdesk/internal/domain/booking"
	"gymdesk/internal/domain/feedback"
	"gymdesk/internal/domain/fitnessclass"
	"gymdesk/internal/domain/invoice"
	"gymdesk/internal/domain/membershipplan"
	"gymdesk/internal/domain/payment"
)

// listPage is the data every list template receives.
type listPage[T any] struct {
	Title    string
	Path     string
	Result   projections.ListResult[T]
	Statuses []string
	Now      time.Time
	Error    string
}

// renderList renders one list screen. A revoked token ends the session; any other
// backend failure renders the screen empty with the error shown.
func renderList[T any](w http.ResponseWriter, r *http.Request, tmpl string, page listPage[T], res projections.ListResult[T], err error) {
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			backendFailed(w, r, err, "/login")
			return
		}
		page.Error = api.UserMessage(err)
	}
	page.Result = res
	page.Path = r.URL.Path
	page.Now = timeNow()
	renderTemplate(w, r, tmpl, page)
}

// handleAttendanceList handles GET /attendance
func handleAttendanceList(w http.ResponseWriter, r *http.Request) {
	rec := recordsFor(r)
	q := rec.listQuery(r, projections.AttendanceSortColumns, projections.AttendanceFilterKeys)
	res, err := projections.QueryGetAttendanceList(r.Context(), q, projections.GetAttendanceListDeps{Attendance: rec.Attendance})
	renderList(w, r, "attendance.html", listPage[attendance.Attendance]{Title: "Attendance", Statuses: attendance.Statuses}, res, err)
}

// handleBookingList handles GET /bookings
func handleBookingList(w http.ResponseWriter, r *http.Request) {
	rec := recordsFor(r)
	q := rec.listQuery(r, projections.BookingSortColumns, projections.BookingFilterKeys)
	res, err := projections.QueryGetBookingList(r.Context(), q, projections.GetBookingListDeps{Bookings: rec.Bookings})
	renderList(w, r, "bookings.html", listPage[booking.Booking]{Title: "Bookings", Statuses: booking.Statuses}, res, err)
}

// handleClassList handles GET /classes
func handleClassList(w http.ResponseWriter, r *http.Request) {
	rec := recordsFor(r)
	q := rec.listQuery(r, projections.ClassSortColumns, projections.ClassFilterKeys)
	res, err := projections.QueryGetClassList(r.Context(), q, projections.GetClassListDeps{Classes: rec.Classes})
	page := listPage[fitnessclass.FitnessClass]{Title: "Classes", Statuses: []string{projections.ClassActive, projections.ClassInactive}}
	renderList(w, r, "classes.html", page, res, err)
}

// handlePaymentList handles GET /payments
func handlePaymentList(w http.ResponseWriter, r *http.Request) {
	rec := recordsFor(r)
	q := rec.listQuery(r, projections.PaymentSortColumns, projections.PaymentFilterKeys)
	res, err := projections.QueryGetPaymentList(r.Context(), q, projections.GetPaymentListDeps{Payments: rec.Payments})
	renderList(w, r, "payments.html", listPage[payment.Payment]{Title: "Payments", Statuses: payment.Statuses}, res, err)
}

// handleInvoiceList handles GET /invoices
func handleInvoiceList(w http.ResponseWriter, r *http.Request) {
	rec := recordsFor(r)
	q := rec.listQuery(r, projections.InvoiceSortColumns, projections.InvoiceFilterKeys)
	res, err := projections.QueryGetInvoiceList(r.Context(), q, projections.GetInvoiceListDeps{Invoices: rec.Invoices})
	renderList(w, r, "invoices.html", listPage[invoice.Invoice]{Title: "Invoices", Statuses: invoice.Statuses}, res, err)
}

// handleFeedbackList handles GET /feedback
func handleFeedbackList(w http.ResponseWriter, r *http.Request) {
	rec := recordsFor(r)
	q := rec.listQuery(r, projections.FeedbackSortColumns, projections.FeedbackFilterKeys)
	res, err := projections.QueryGetFeedbackList(r.Context(), q, projections.GetFeedbackListDeps{Feedback: rec.Feedback})
	renderList(w, r, "feedback.html", listPage[feedback.Feedback]{Title: "Feedback", Statuses: feedback.Statuses}, res, err)
}

// handlePlanList handles GET /plans
func handlePlanList(w http.ResponseWriter, r *http.Request) {
	rec := recordsFor(r)
	q := rec.listQuery(r, projections.PlanSortColumns, projections.PlanFilterKeys)
	res, err := projections.QueryGetPlanList(r.Context(), q, projections.GetPlanListDeps{Plans: rec.Plans})
	page := listPage[membershipplan.MembershipPlan]{Title: "Membership plans", Statuses: []string{projections.ClassActive, projections.ClassInactive}}
	renderList(w, r, "plans.html", page, res, err)
}
