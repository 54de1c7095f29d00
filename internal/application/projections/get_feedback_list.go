package projections

import (
	"cmp"
	"context"

	"gymdesk/internal/application/listutil"
	"gymdesk/internal/domain/feedback"
)

var feedbackScreen = screen[feedback.Feedback]{
	matches: func(f feedback.Feedback, fp listutil.FilterParams, q ListQuery) bool {
		return ownedBy(q, f.Member) &&
			listutil.MatchesSearch(fp.Search, f.Member.Name, f.Member.Email, f.ClassName(), f.Comment) &&
			listutil.MatchesEnum(fp.Filters["status"], f.Status) &&
			fp.Range.Contains(f.CreatedAt)
	},
	sorters: map[string]func(a, b feedback.Feedback) int{
		"member":     func(a, b feedback.Feedback) int { return byText(a.Member.Name, b.Member.Name) },
		"rating":     func(a, b feedback.Feedback) int { return cmp.Compare(a.Rating, b.Rating) },
		"status":     func(a, b feedback.Feedback) int { return byText(a.Status, b.Status) },
		"created_at": func(a, b feedback.Feedback) int { return byTime(a.CreatedAt, b.CreatedAt) },
	},
}

// FeedbackSortColumns and FeedbackFilterKeys are the query keys the feedback screen accepts.
var (
	FeedbackSortColumns = sortKeys(feedbackScreen)
	FeedbackFilterKeys  = []string{"status"}
)

// GetFeedbackListDeps holds dependencies for GetFeedbackList.
type GetFeedbackListDeps struct {
	Feedback FeedbackLister
}

// QueryGetFeedbackList filters feedback by member/class/comment search, status and created_at range.
func QueryGetFeedbackList(ctx context.Context, q ListQuery, deps GetFeedbackListDeps) (ListResult[feedback.Feedback], error) {
	return runList(ctx, deps.Feedback, q, feedbackScreen)
}
