package projections

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"gymdesk/internal/application/listutil"
	"gymdesk/internal/domain/record"
)

// ListQuery carries parsed list parameters for any list screen.
type ListQuery struct {
	Params listutil.ListParams
	// MemberID, when set, restricts member-owned rows to that member.
	MemberID string
	Loc      *time.Location
}

// ListResult is one page of a filtered, sorted list.
type ListResult[T any] struct {
	Rows   []T
	Page   listutil.PageInfo
	Params listutil.ListParams
}

// screen describes how one list screen filters and sorts its rows.
type screen[T any] struct {
	matches func(row T, fp listutil.FilterParams, q ListQuery) bool
	sorters map[string]func(a, b T) int
}

// runList fetches, filters, sorts and paginates.
// INVARIANT: search, enum filters and the date range combine with AND
func runList[T any](ctx context.Context, src Lister[T], q ListQuery, s screen[T]) (ListResult[T], error) {
	all, err := src.List(ctx)
	if err != nil {
		return ListResult[T]{}, err
	}
	rows := listutil.Filter(all, func(r T) bool { return s.matches(r, q.Params.FilterParams, q) })

	if less, ok := s.sorters[q.Params.Sort]; ok {
		slices.SortStableFunc(rows, func(a, b T) int {
			if q.Params.Dir == "desc" {
				return less(b, a)
			}
			return less(a, b)
		})
	}

	page := listutil.NewPageInfo(q.Params.Page, q.Params.PerPage, len(rows))
	return ListResult[T]{
		Rows:   listutil.Paginate(rows, page),
		Page:   page,
		Params: q.Params,
	}, nil
}

// sortKeys returns the sortable column names of a screen in a stable order.
func sortKeys[T any](s screen[T]) []string {
	keys := make([]string, 0, len(s.sorters))
	for k := range s.sorters {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func ownedBy(q ListQuery, ref record.Ref) bool {
	return q.MemberID == "" || ref.ID.String() == q.MemberID
}

// dateInZone places a calendar date at midnight in loc so it can be checked
// against a DateRange built in the same zone.
func dateInZone(d record.Date, loc *time.Location) time.Time {
	if d.IsZero() {
		return time.Time{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
}

func optionalTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func byText(a, b string) int {
	return cmp.Compare(strings.ToLower(a), strings.ToLower(b))
}

func byTime(a, b time.Time) int {
	return a.Compare(b)
}
