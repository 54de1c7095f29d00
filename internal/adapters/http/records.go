package web

import (
	"errors"
	"log/slog"
	"net/http"

	"gymdesk/internal/adapters/api"
	"gymdesk/internal/adapters/http/middleware"
	"gymdesk/internal/application/listutil"
	"gymdesk/internal/application/orchestrators"
	"gymdesk/internal/application/projections"
	"gymdesk/internal/application/recordstore"
	"gymdesk/internal/domain/account"
	"gymdesk/internal/domain/attendance"
	"gymdesk/internal/domain/booking"
	"gymdesk/internal/domain/feedback"
	"gymdesk/internal/domain/fitnessclass"
	"gymdesk/internal/domain/invoice"
	"gymdesk/internal/domain/membershipplan"
	"gymdesk/internal/domain/payment"
	domainSession "gymdesk/internal/domain/session"
)

// sessionRecords bundles the signed-in session with read-through loaders over
// its record cache.
type sessionRecords struct {
	Session    domainSession.Session
	Set        *recordstore.Set
	Invoices   recordstore.Loader[invoice.Invoice]
	Payments   recordstore.Loader[payment.Payment]
	Bookings   recordstore.Loader[booking.Booking]
	Attendance recordstore.Loader[attendance.Attendance]
	Classes    recordstore.Loader[fitnessclass.FitnessClass]
	Plans      recordstore.Loader[membershipplan.MembershipPlan]
	Feedback   recordstore.Loader[feedback.Feedback]
}

// recordsFor returns the caller's session and loaders.
// PRE: route is guarded by RequireAuth or RequireRole
func recordsFor(r *http.Request) sessionRecords {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	set := app.Records.For(sess.Key)
	token := sess.BackendToken
	b := app.Backend
	return sessionRecords{
		Session:    sess,
		Set:        set,
		Invoices:   recordstore.NewLoader[invoice.Invoice](set.Invoices, b.Invoices, token),
		Payments:   recordstore.NewLoader[payment.Payment](set.Payments, b.Payments, token),
		Bookings:   recordstore.NewLoader[booking.Booking](set.Bookings, b.Bookings, token),
		Attendance: recordstore.NewLoader[attendance.Attendance](set.Attendance, b.Attendance, token),
		Classes:    recordstore.NewLoader[fitnessclass.FitnessClass](set.Classes, b.Classes, token),
		Plans:      recordstore.NewLoader[membershipplan.MembershipPlan](set.Plans, b.Plans, token),
		Feedback:   recordstore.NewLoader[feedback.Feedback](set.Feedback, b.Feedback, token),
	}
}

func (s sessionRecords) Token() string      { return s.Session.BackendToken }
func (s sessionRecords) User() account.User { return s.Session.User }
func (s sessionRecords) IsMember() bool     { return s.Session.Role() == account.RoleMember }

// listQuery parses list parameters for a screen. Members only see their own rows.
func (s sessionRecords) listQuery(r *http.Request, sortCols, filterKeys []string) projections.ListQuery {
	loc := app.Export.Formatter.Loc
	q := projections.ListQuery{
		Params: listutil.ParseListParams(r.URL.Query(), sortCols, filterKeys, loc),
		Loc:    loc,
	}
	if s.IsMember() {
		q.MemberID = s.Session.User.ID.String()
	}
	return q
}

// backendFailed maps a backend error onto the user-facing outcome:
// a revoked token ends the session, a missing record goes back to the dashboard,
// anything else is an error toast on fallback.
func backendFailed(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, api.ErrUnauthorized):
		endSession(w, r)
		redirectWithFlash(w, r, "/login", Flash{Kind: FlashError, Message: "Your session has expired. Please sign in again."})
	case errors.Is(err, api.ErrNotFound):
		redirectWithFlash(w, r, "/dashboard", Flash{Kind: FlashError, Message: "That record no longer exists."})
	default:
		slog.Warn("backend_call_failed", "path", r.URL.Path, "error", err.Error())
		redirectWithFlash(w, r, fallback, Flash{Kind: FlashError, Message: api.UserMessage(err)})
	}
}

// endSession deletes the caller's session and clears the cookie.
func endSession(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	token := ""
	if c, err := r.Cookie(middleware.SessionCookieName); err == nil {
		token = c.Value
	}
	deps := orchestrators.LogoutDeps{Sessions: app.Sessions, Cache: app.Records}
	if err := orchestrators.ExecuteLogout(r.Context(), token, sess, deps); err != nil {
		slog.Error("logout_failed", "error", err.Error())
	}
	middleware.ClearSessionCookie(w)
}
