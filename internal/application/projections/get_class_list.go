package projections

import (
	"cmp"
	"context"

	"gymdesk/internal/application/listutil"
	"gymdesk/internal/domain/fitnessclass"
)

// Class availability filter values.
const (
	ClassActive   = "active"
	ClassInactive = "inactive"
)

func classState(c fitnessclass.FitnessClass) string {
	if c.IsActive {
		return ClassActive
	}
	return ClassInactive
}

var classScreen = screen[fitnessclass.FitnessClass]{
	matches: func(c fitnessclass.FitnessClass, fp listutil.FilterParams, _ ListQuery) bool {
		return listutil.MatchesSearch(fp.Search, c.Name, c.Trainer, c.Location) &&
			listutil.MatchesEnum(fp.Filters["status"], classState(c)) &&
			fp.Range.Contains(c.StartTime)
	},
	sorters: map[string]func(a, b fitnessclass.FitnessClass) int{
		"name":       func(a, b fitnessclass.FitnessClass) int { return byText(a.Name, b.Name) },
		"trainer":    func(a, b fitnessclass.FitnessClass) int { return byText(a.Trainer, b.Trainer) },
		"start_time": func(a, b fitnessclass.FitnessClass) int { return byTime(a.StartTime, b.StartTime) },
		"spots":      func(a, b fitnessclass.FitnessClass) int { return cmp.Compare(a.SpotsLeft(), b.SpotsLeft()) },
	},
}

// ClassSortColumns and ClassFilterKeys are the query keys the classes screen accepts.
var (
	ClassSortColumns = sortKeys(classScreen)
	ClassFilterKeys  = []string{"status"}
)

// GetClassListDeps holds dependencies for GetClassList.
type GetClassListDeps struct {
	Classes ClassLister
}

// QueryGetClassList filters classes by name/trainer/location, active state and start time.
// PRE: q.Params parsed with ClassSortColumns and ClassFilterKeys
// POST: Returns one page of matching rows
func QueryGetClassList(ctx context.Context, q ListQuery, deps GetClassListDeps) (ListResult[fitnessclass.FitnessClass], error) {
	return runList(ctx, deps.Classes, q, classScreen)
}
