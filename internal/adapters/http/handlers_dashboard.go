package web

import (
	"errors"
	"net/http"

	"gymdesk/internal/adapters/api"
	"gymdesk/internal/application/projections"
	"gymdesk/internal/domain/account"
)

type dashboardPage struct {
	projections.GetDashboardResult
	Error string
}

// handleDashboard handles GET /dashboard and renders the role's overview.
func handleDashboard(w http.ResponseWriter, r *http.Request) {
	rec := recordsFor(r)
	query := projections.GetDashboardQuery{
		User: rec.User(),
		Now:  timeNow(),
		Loc:  app.Export.Formatter.Loc,
	}
	deps := projections.GetDashboardDeps{
		Bookings:   rec.Bookings,
		Attendance: rec.Attendance,
		Classes:    rec.Classes,
		Payments:   rec.Payments,
		Invoices:   rec.Invoices,
		Feedback:   rec.Feedback,
	}

	result, err := projections.QueryGetDashboard(r.Context(), query, deps)
	page := dashboardPage{GetDashboardResult: result}
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			backendFailed(w, r, err, "/login")
			return
		}
		page.Error = api.UserMessage(err)
	}

	var templateName string
	switch rec.Session.Role() {
	case account.RoleAdmin:
		templateName = "dashboard_admin.html"
	case account.RoleStaff:
		templateName = "dashboard_staff.html"
	default:
		templateName = "dashboard_member.html"
	}
	renderTemplate(w, r, templateName, page)
}
