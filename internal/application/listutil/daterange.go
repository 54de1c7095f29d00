package listutil

import (
	"strings"
	"time"
)

const dateParamLayout = "2006-01-02"

// DateRange is an inclusive calendar window. A zero bound is open.
// Start is 00:00:00.000 of the start day; End is 23:59:59.999 of the end day.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ParseDateRange builds a DateRange from YYYY-MM-DD strings in loc.
// PRE: none
// POST: invalid or empty bounds are left open
func ParseDateRange(start, end string, loc *time.Location) DateRange {
	if loc == nil {
		loc = time.UTC
	}
	var r DateRange
	if d, err := time.ParseInLocation(dateParamLayout, strings.TrimSpace(start), loc); err == nil {
		r.Start = d
	}
	if d, err := time.ParseInLocation(dateParamLayout, strings.TrimSpace(end), loc); err == nil {
		r.End = d.AddDate(0, 0, 1).Add(-time.Millisecond)
	}
	return r
}

// IsZero reports whether neither bound is set.
func (r DateRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// Contains reports whether t falls inside the window, bounds included.
// A zero t is only contained by an open range.
func (r DateRange) Contains(t time.Time) bool {
	if r.IsZero() {
		return true
	}
	if t.IsZero() {
		return false
	}
	if !r.Start.IsZero() && t.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && t.After(r.End) {
		return false
	}
	return true
}

// StartParam returns the start bound as a query value.
func (r DateRange) StartParam() string {
	if r.Start.IsZero() {
		return ""
	}
	return r.Start.Format(dateParamLayout)
}

// EndParam returns the end bound as a query value.
func (r DateRange) EndParam() string {
	if r.End.IsZero() {
		return ""
	}
	return r.End.Format(dateParamLayout)
}
