package web

import (
	"context"
	"embed"
	"log/slog"
	"net/http"
	"strings"

	"gymdesk/internal/application/projections"
	"gymdesk/internal/domain/membershipplan"
)

//go:embed content/*.md
var contentFS embed.FS

type marketingPage struct {
	Title string
	Body  string // markdown
	Plans []membershipplan.MembershipPlan
	Error string
}

// loadContent reads an embedded markdown page. The first "# " heading is the title.
func loadContent(name string) (marketingPage, error) {
	raw, err := contentFS.ReadFile("content/" + name + ".md")
	if err != nil {
		return marketingPage{}, err
	}
	body := string(raw)
	title := ""
	if first, rest, ok := strings.Cut(body, "\n"); ok && strings.HasPrefix(first, "# ") {
		title = strings.TrimPrefix(first, "# ")
		body = rest
	}
	return marketingPage{Title: title, Body: body}, nil
}

func renderContent(w http.ResponseWriter, r *http.Request, name string) {
	page, err := loadContent(name)
	if err != nil {
		internalError(w, err)
		return
	}
	renderTemplate(w, r, "marketing.html", page)
}

// handleHome handles GET /
func handleHome(w http.ResponseWriter, r *http.Request) { renderContent(w, r, "home") }

// handleAbout handles GET /about
func handleAbout(w http.ResponseWriter, r *http.Request) { renderContent(w, r, "about") }

// handleContact handles GET /contact
func handleContact(w http.ResponseWriter, r *http.Request) { renderContent(w, r, "contact") }

// publicPlans lists plans without a session token.
type publicPlans struct{}

// List implements projections.PlanLister.
func (publicPlans) List(ctx context.Context) ([]membershipplan.MembershipPlan, error) {
	return app.Backend.Plans.List(ctx, "", nil)
}

// handlePricing handles GET /pricing. A backend failure still renders the page,
// without plans.
func handlePricing(w http.ResponseWriter, r *http.Request) {
	page, err := loadContent("pricing")
	if err != nil {
		internalError(w, err)
		return
	}
	plans, err := projections.QueryActivePlans(r.Context(), projections.GetPlanListDeps{Plans: publicPlans{}})
	if err != nil {
		slog.Warn("pricing_plans_unavailable", "error", err.Error())
		page.Error = "Plans are unavailable right now. Please check back shortly."
	}
	page.Plans = plans
	renderTemplate(w, r, "pricing.html", page)
}
