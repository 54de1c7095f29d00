package projections

import (
	"cmp"
	"context"
	"slices"

	"gymdesk/internal/application/listutil"
	"gymdesk/internal/domain/membershipplan"
)

func planState(p membershipplan.MembershipPlan) string {
	if p.IsActive {
		return ClassActive
	}
	return ClassInactive
}

var planScreen = screen[membershipplan.MembershipPlan]{
	matches: func(p membershipplan.MembershipPlan, fp listutil.FilterParams, _ ListQuery) bool {
		return listutil.MatchesSearch(fp.Search, p.Name, p.Description) &&
			listutil.MatchesEnum(fp.Filters["status"], planState(p))
	},
	sorters: map[string]func(a, b membershipplan.MembershipPlan) int{
		"name":     func(a, b membershipplan.MembershipPlan) int { return byText(a.Name, b.Name) },
		"price":    func(a, b membershipplan.MembershipPlan) int { return cmp.Compare(a.PriceCents, b.PriceCents) },
		"duration": func(a, b membershipplan.MembershipPlan) int { return cmp.Compare(a.DurationDays, b.DurationDays) },
	},
}

// PlanSortColumns and PlanFilterKeys are the query keys the plans screen accepts.
var (
	PlanSortColumns = sortKeys(planScreen)
	PlanFilterKeys  = []string{"status"}
)

// GetPlanListDeps holds dependencies for GetPlanList.
type GetPlanListDeps struct {
	Plans PlanLister
}

// QueryGetPlanList filters plans by name/description and active state. Plans have no date.
func QueryGetPlanList(ctx context.Context, q ListQuery, deps GetPlanListDeps) (ListResult[membershipplan.MembershipPlan], error) {
	return runList(ctx, deps.Plans, q, planScreen)
}

// QueryActivePlans returns active plans cheapest first, for the pricing page.
// POST: Returns an empty slice when the backend fails, with the error
func QueryActivePlans(ctx context.Context, deps GetPlanListDeps) ([]membershipplan.MembershipPlan, error) {
	all, err := deps.Plans.List(ctx)
	if err != nil {
		return []membershipplan.MembershipPlan{}, err
	}
	active := listutil.Filter(all, func(p membershipplan.MembershipPlan) bool { return p.IsActive })
	slices.SortStableFunc(active, func(a, b membershipplan.MembershipPlan) int { return cmp.Compare(a.PriceCents, b.PriceCents) })
	return active, nil
}
