package projections

import (
	"context"

	"gymdesk/internal/application/listutil"
	"gymdesk/internal/domain/attendance"
)

var attendanceScreen = screen[attendance.Attendance]{
	matches: func(a attendance.Attendance, fp listutil.FilterParams, q ListQuery) bool {
		return ownedBy(q, a.Member) &&
			listutil.MatchesSearch(fp.Search, a.Member.Name, a.Member.Email, a.FitnessClass.Name) &&
			listutil.MatchesEnum(fp.Filters["status"], a.Status) &&
			fp.Range.Contains(a.MarkedAt)
	},
	sorters: map[string]func(a, b attendance.Attendance) int{
		"member":    func(a, b attendance.Attendance) int { return byText(a.Member.Name, b.Member.Name) },
		"class":     func(a, b attendance.Attendance) int { return byText(a.FitnessClass.Name, b.FitnessClass.Name) },
		"status":    func(a, b attendance.Attendance) int { return byText(a.Status, b.Status) },
		"marked_at": func(a, b attendance.Attendance) int { return byTime(a.MarkedAt, b.MarkedAt) },
	},
}

// AttendanceSortColumns and AttendanceFilterKeys are the query keys the attendance screen accepts.
var (
	AttendanceSortColumns = sortKeys(attendanceScreen)
	AttendanceFilterKeys  = []string{"status"}
)

// GetAttendanceListDeps holds dependencies for GetAttendanceList.
type GetAttendanceListDeps struct {
	Attendance AttendanceLister
}

// QueryGetAttendanceList filters attendance by member/class search, status and marked_at range.
// PRE: q.Params parsed with AttendanceSortColumns and AttendanceFilterKeys
// POST: Returns one page of matching rows
func QueryGetAttendanceList(ctx context.Context, q ListQuery, deps GetAttendanceListDeps) (ListResult[attendance.Attendance], error) {
	return runList(ctx, deps.Attendance, q, attendanceScreen)
}
